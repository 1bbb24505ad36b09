package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/novastudy/internal/auth/domain"
	"github.com/aussiebroadwan/novastudy/internal/auth/store"
	"github.com/aussiebroadwan/novastudy/pkg/cryptox"
	"github.com/aussiebroadwan/novastudy/pkg/idx"
	"github.com/aussiebroadwan/novastudy/pkg/slogx"
)

// RegisterInput is an already validated registration request.
type RegisterInput struct {
	Username string
	Password string
	Email    string
	FullName string
}

type UserService struct {
	Store store.Store
}

// Register creates a user and grants it ROLE_USER.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	l := slogx.FromContext(ctx)

	taken, err := s.Store.Users().ExistsByUsername(ctx, in.Username)
	if err != nil {
		return domain.User{}, err
	}
	if taken {
		return domain.User{}, ErrUsernameTaken
	}

	taken, err = s.Store.Users().ExistsByEmail(ctx, in.Email)
	if err != nil {
		return domain.User{}, err
	}
	if taken {
		return domain.User{}, ErrEmailTaken
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return domain.User{}, err
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           idx.New().String(),
		Username:     in.Username,
		Email:        in.Email,
		FullName:     in.FullName,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		role, err := tx.Roles().GetRoleByName(ctx, domain.RoleUser)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrRoleNotFound
			}
			return err
		}

		if err := tx.Users().CreateUser(ctx, user); err != nil {
			// Lost a race with a concurrent registration.
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrUsernameTaken
			}
			return err
		}
		return tx.Roles().AssignRole(ctx, user.ID, role.ID)
	})
	if err != nil {
		return domain.User{}, err
	}

	l.Info("user registered", slog.String("user_id", user.ID), slog.String("username", user.Username))
	return user, nil
}

// Authenticate checks a username and password. Unknown users and wrong
// passwords are indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (domain.Account, error) {
	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, ErrInvalidCredentials
		}
		return domain.Account{}, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return domain.Account{}, ErrInvalidCredentials
		}
		return domain.Account{}, err
	}

	return s.account(ctx, user)
}

// GetAccount loads a user with its current roles and authorities.
func (s *UserService) GetAccount(ctx context.Context, userID string) (domain.Account, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, ErrUserNotFound
		}
		return domain.Account{}, err
	}
	return s.account(ctx, user)
}

func (s *UserService) account(ctx context.Context, user domain.User) (domain.Account, error) {
	roles, err := s.Store.Roles().ListRolesForUser(ctx, user.ID)
	if err != nil {
		return domain.Account{}, err
	}
	return domain.Account{
		User:        user,
		Roles:       domain.RoleNames(roles),
		Authorities: domain.Authorities(roles),
	}, nil
}
