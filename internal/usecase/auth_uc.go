package usecase

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"applecare-activation/internal/domain"
	"applecare-activation/internal/domain/model"
	"applecare-activation/internal/domain/ports/repository"
)

var _ AuthUseCase = (*authUC)(nil)

type AuthUseCase interface {
	// Login verifies credentials and returns the matching user.
	Login(ctx context.Context, email, password string) (*model.User, error)
	// GetUser resolves the user behind a validated token subject.
	GetUser(ctx context.Context, id string) (*model.User, error)
	// ChangePassword rejects a wrong current password with ErrWrongPassword.
	ChangePassword(ctx context.Context, userID, current, next string) error
}

type authUC struct {
	users repository.UserRepository
}

func NewAuthUseCase(users repository.UserRepository) *authUC {
	return &authUC{users: users}
}

func (uc *authUC) Login(ctx context.Context, email, password string) (*model.User, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	u, err := uc.users.FindByEmail(ctx, repository.NoTX, email)
	if err != nil {
		if err == domain.ErrNotFound {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return u, nil
}

func (uc *authUC) GetUser(ctx context.Context, id string) (*model.User, error) {
	return uc.users.FindByID(ctx, repository.NoTX, id)
}

func (uc *authUC) ChangePassword(ctx context.Context, userID, current, next string) error {
	if next == "" {
		return domain.ErrInvalidArgument
	}
	u, err := uc.users.FindByID(ctx, repository.NoTX, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)) != nil {
		return domain.ErrWrongPassword
	}
	hash, err := HashPassword(next)
	if err != nil {
		return err
	}
	return uc.users.UpdatePassword(ctx, repository.NoTX, userID, hash)
}

// HashPassword produces a bcrypt hash at the default cost.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
