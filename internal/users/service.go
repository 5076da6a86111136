package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/notpazar/notpazar-backend/pkg/config"
	pkgerrors "github.com/notpazar/notpazar-backend/pkg/errors"
	"github.com/notpazar/notpazar-backend/pkg/jsonstore"
	"github.com/notpazar/notpazar-backend/pkg/models"
	"github.com/notpazar/notpazar-backend/pkg/security"
)

// CollectionName is the users file under the store root, kept from the
// original deployment layout.
const CollectionName = "kullanicibilgileri.json"

// RegisterInput carries the fields collected at registration.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
	Phone    string
}

// ProfileUpdate carries the editable profile fields. An empty Password
// leaves the stored hash untouched.
type ProfileUpdate struct {
	Name     string
	Phone    string
	Password string
}

// Service manages registered accounts, keyed by email. Credentials are
// hashed with Argon2id before they touch disk.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (models.User, error)
	Authenticate(ctx context.Context, email, password string) (models.User, error)
	Get(ctx context.Context, email string) (models.User, error)
	UpdateProfile(ctx context.Context, email string, update ProfileUpdate) (models.User, error)
}

type service struct {
	users       *jsonstore.Collection[map[string]models.User]
	passwordCfg config.PasswordConfig
}

// NewService wires a users service over the users collection.
func NewService(store *jsonstore.Store, passwordCfg config.PasswordConfig) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("store required")
	}
	return &service{
		users:       jsonstore.NewCollection(store, CollectionName, func() map[string]models.User { return map[string]models.User{} }),
		passwordCfg: passwordCfg,
	}, nil
}

// Register creates a new account. The email is the record key and must
// be unused.
func (s *service) Register(ctx context.Context, input RegisterInput) (models.User, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" {
		return models.User{}, pkgerrors.New(pkgerrors.CodeValidation, "email required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return models.User{}, pkgerrors.New(pkgerrors.CodeValidation, "name required")
	}
	if input.Password == "" {
		return models.User{}, pkgerrors.New(pkgerrors.CodeValidation, "password required")
	}

	hash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return models.User{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
	}

	user := models.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         strings.TrimSpace(input.Role),
		Phone:        strings.TrimSpace(input.Phone),
	}

	_, err = s.users.Update(ctx, func(users map[string]models.User) (map[string]models.User, error) {
		if _, exists := users[email]; exists {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "this email is already registered")
		}
		users[email] = user
		return users, nil
	})
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Authenticate verifies the password against the stored hash. Unknown
// email and wrong password are indistinguishable to the caller.
func (s *service) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	users, err := s.users.Load(ctx)
	if err != nil {
		return models.User{}, err
	}

	user, ok := users[email]
	if !ok {
		return models.User{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "email or password is incorrect")
	}

	match, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil || !match {
		return models.User{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "email or password is incorrect")
	}
	return user, nil
}

// Get returns the account for the email.
func (s *service) Get(ctx context.Context, email string) (models.User, error) {
	users, err := s.users.Load(ctx)
	if err != nil {
		return models.User{}, err
	}
	user, ok := users[email]
	if !ok {
		return models.User{}, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return user, nil
}

// UpdateProfile mutates the editable fields in place. A non-empty
// password is re-hashed; empty keeps the current credential.
func (s *service) UpdateProfile(ctx context.Context, email string, update ProfileUpdate) (models.User, error) {
	var newHash string
	if update.Password != "" {
		hash, err := security.HashPassword(update.Password, s.passwordCfg)
		if err != nil {
			return models.User{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
		}
		newHash = hash
	}

	var updated models.User
	_, err := s.users.Update(ctx, func(users map[string]models.User) (map[string]models.User, error) {
		user, ok := users[email]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		if name := strings.TrimSpace(update.Name); name != "" {
			user.Name = name
		}
		user.Phone = strings.TrimSpace(update.Phone)
		if newHash != "" {
			user.PasswordHash = newHash
		}
		users[email] = user
		updated = user
		return users, nil
	})
	if err != nil {
		return models.User{}, err
	}
	return updated, nil
}
