package repo

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"gin-gorm-scaffold/internal/core/repository"
	"gin-gorm-scaffold/internal/domain"
	"gin-gorm-scaffold/internal/feature/user"
	"gin-gorm-scaffold/pkg/utils"
)

type userGorm = repository.Gorm[user.UserModel, domain.User, domain.CreateUser, domain.UpdateUser]

// UserRepo is the generic engine plus email lookups.
type UserRepo struct {
	*userGorm
}

var _ domain.UserRepository = (*UserRepo)(nil)

func NewUserRepo(db *gorm.DB, opts ...repository.Option) *UserRepo {
	return &UserRepo{userGorm: repository.New(db, UserMapping(), opts...)}
}

func normEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// UserMapping describes users to the generic repository.
func UserMapping() repository.Mapping[user.UserModel, domain.User, domain.CreateUser, domain.UpdateUser] {
	return repository.Mapping[user.UserModel, domain.User, domain.CreateUser, domain.UpdateUser]{
		Entity: "User",
		FromCreate: func(in domain.CreateUser) (user.UserModel, error) {
			hash, err := utils.HashPassword(in.Password)
			if err != nil {
				return user.UserModel{}, err
			}
			role := in.Role
			if role == "" {
				role = "user"
			}
			return user.UserModel{
				Email:        normEmail(in.Email),
				Name:         strings.TrimSpace(in.Name),
				PasswordHash: hash,
				Role:         role,
			}, nil
		},
		ToView:   toUser,
		UpdateID: func(in domain.UpdateUser) uuid.UUID { return in.ID },
		Changes: func(in domain.UpdateUser) (map[string]any, error) {
			m := map[string]any{}
			if in.Email != nil {
				m["email"] = normEmail(*in.Email)
			}
			if in.Name != nil {
				m["name"] = strings.TrimSpace(*in.Name)
			}
			if in.Role != nil {
				m["role"] = *in.Role
			}
			if in.Password != nil {
				hash, err := utils.HashPassword(*in.Password)
				if err != nil {
					return nil, err
				}
				m["password_hash"] = hash
			}
			return m, nil
		},
	}
}

func toUser(u *user.UserModel) domain.User {
	return domain.User{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (r *UserRepo) byEmail(ctx context.Context, op, email string) (*user.UserModel, error) {
	var found *user.UserModel
	err := r.Session(ctx, op, func(tx *gorm.DB) error {
		var u user.UserModel
		res := tx.Where("email = ?", normEmail(email)).Limit(1).Find(&u)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			found = &u
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := r.byEmail(ctx, "find_by_email", email)
	if err != nil || u == nil {
		return nil, err
	}
	v := toUser(u)
	return &v, nil
}

func (r *UserRepo) Credentials(ctx context.Context, email string) (domain.User, string, error) {
	u, err := r.byEmail(ctx, "credentials", email)
	if err != nil {
		return domain.User{}, "", err
	}
	if u == nil {
		return domain.User{}, "", &repository.Error{Kind: repository.KindNotFound, Detail: "User with email: " + normEmail(email) + " not found"}
	}
	return toUser(u), u.PasswordHash, nil
}
