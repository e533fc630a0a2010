package users

import (
	"context"
	"errors"
	"net/mail"

	"github.com/google/uuid"

	"github.com/ariefcatur/go-inventory-api.git/internal/apperr"
	"github.com/ariefcatur/go-inventory-api.git/internal/auth"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("incorrect login credentials")
)

type Store interface {
	Create(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	UpdateMetadata(ctx context.Context, id string, metadata map[string]any) (*User, error)
	SetAdmin(ctx context.Context, id string, isAdmin bool) error
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

type RegisterInput struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
	Address   string `json:"address"`
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	fe := apperr.FieldErrors{}
	if in.Name == "" {
		fe.Add("name", "required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		fe.Add("email", "invalid email address")
	}
	if len(in.Password) < 8 {
		fe.Add("password", "must be at least 8 characters")
	}
	if in.Password != in.Password2 {
		fe.Add("password", "password fields didn't match")
	}
	if !fe.Empty() {
		return nil, fe
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Address:      in.Address,
		Metadata:     DefaultMetadata(),
	}
	if err := s.store.Create(ctx, u); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			fe.Add("email", "already registered")
			return nil, fe
		}
		return nil, err
	}
	return u, nil
}

func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	return s.store.GetByID(ctx, id)
}

// UpdateMetadata replaces the user's metadata and then re-syncs role membership.
// The sync is an explicit step here, never a side effect of persisting the user.
func (s *Service) UpdateMetadata(ctx context.Context, id string, metadata map[string]any) (*User, error) {
	if metadata == nil {
		metadata = DefaultMetadata()
	}
	u, err := s.store.UpdateMetadata(ctx, id, metadata)
	if err != nil {
		return nil, err
	}
	if err := s.SyncAdminRole(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// SyncAdminRole recomputes admin membership from metadata and persists it.
func (s *Service) SyncAdminRole(ctx context.Context, u *User) error {
	isAdmin, _ := u.Metadata["is_admin"].(bool)
	if err := s.store.SetAdmin(ctx, u.ID, isAdmin); err != nil {
		return err
	}
	u.IsAdmin = isAdmin
	return nil
}
