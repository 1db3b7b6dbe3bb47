package domain

import (
	"context"
	"time"

	"github.com/google/uuid"

	"gin-gorm-scaffold/internal/core/repository"
)

// User is the read view; the password hash never leaves the repository.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"` // "user"/"admin"
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateUser struct {
	Email    string `json:"email"    binding:"required,email,max=255"`
	Name     string `json:"name"     binding:"required,max=64"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Role     string `json:"role"     binding:"omitempty,oneof=user admin"`
}

// UpdateUser is a partial update: nil fields are left untouched.
type UpdateUser struct {
	ID       uuid.UUID `json:"id"`
	Email    *string   `json:"email,omitempty"    binding:"omitempty,email,max=255"`
	Name     *string   `json:"name,omitempty"     binding:"omitempty,min=1,max=64"`
	Password *string   `json:"password,omitempty" binding:"omitempty,min=8,max=72"`
	Role     *string   `json:"role,omitempty"     binding:"omitempty,oneof=user admin"`
}

type UserRepository interface {
	repository.CRUD[User, CreateUser, UpdateUser]
	// FindByEmail returns nil when no user has that email.
	FindByEmail(ctx context.Context, email string) (*User, error)
	// Credentials returns the user and its password hash, or ErrObjectNotFound.
	Credentials(ctx context.Context, email string) (User, string, error)
}
