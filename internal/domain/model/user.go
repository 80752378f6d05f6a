package model

import (
	"time"

	"applecare-activation/internal/domain"

	"github.com/google/uuid"
)

// User is an admin account able to log in to the dashboard.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewUser(id, email, name, passwordHash string) (*User, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if email == "" || name == "" || passwordHash == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &User{
		ID:           id,
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}, nil
}

func (u *User) IsZero() bool { return u == nil || u.ID == "" }
