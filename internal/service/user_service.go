package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"gin-gorm-scaffold/internal/core/auth"
	"gin-gorm-scaffold/internal/core/pagination"
	"gin-gorm-scaffold/internal/core/repository"
	"gin-gorm-scaffold/internal/domain"
	"gin-gorm-scaffold/pkg/utils"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type LoginInput struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Name     string `json:"name"     binding:"omitempty,max=64"` // 首次注册可用
}

type LoginResult struct {
	Token string      `json:"token"`
	IsNew bool        `json:"isNew"`
	User  domain.User `json:"user"`
}

type UserService struct {
	repo  domain.UserRepository
	jwter *auth.JWTer
	log   *zap.Logger
}

func NewUserService(repo domain.UserRepository, jwter *auth.JWTer, l *zap.Logger) *UserService {
	if l == nil {
		l = zap.NewNop()
	}
	return &UserService{repo: repo, jwter: jwter, log: l}
}

// Login checks the password of an existing user, or registers the email
// on first sight. A concurrent registration of the same email falls back
// to the password check.
func (s *UserService) Login(ctx context.Context, in LoginInput) (LoginResult, error) {
	u, hash, err := s.repo.Credentials(ctx, in.Email)
	switch {
	case err == nil:
		if !utils.CheckPassword(in.Password, hash) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return s.issue(u, false)
	case !errors.Is(err, repository.ErrObjectNotFound):
		return LoginResult{}, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		if at := strings.IndexByte(in.Email, '@'); at > 0 {
			name = in.Email[:at]
		} else {
			name = "user"
		}
	}
	created, err := s.repo.Create(ctx, domain.CreateUser{
		Email:    in.Email,
		Name:     name,
		Password: in.Password,
		Role:     auth.RoleUser,
	})
	if errors.Is(err, repository.ErrIntegrity) {
		// 并发注册：唯一冲突 → 走已存在分支
		u, hash, err := s.repo.Credentials(ctx, in.Email)
		if err != nil {
			return LoginResult{}, err
		}
		if !utils.CheckPassword(in.Password, hash) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return s.issue(u, false)
	}
	if err != nil {
		return LoginResult{}, err
	}
	s.log.Info("user registered", zap.String("uid", created.ID.String()))
	return s.issue(created, true)
}

func (s *UserService) issue(u domain.User, isNew bool) (LoginResult, error) {
	tok, err := s.jwter.Issue(u.ID.String(), u.Role)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: tok, IsNew: isNew, User: u}, nil
}

func (s *UserService) Profile(ctx context.Context, id uuid.UUID) (domain.User, error) {
	return s.repo.Get(ctx, id)
}

func (s *UserService) List(ctx context.Context, req pagination.Request) (*pagination.Page[domain.User], error) {
	return s.repo.ListPaginated(ctx, req)
}

// Ban removes the account. There is no soft delete.
func (s *UserService) Ban(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return repository.NotFound("User", id)
	}
	s.log.Info("user banned", zap.String("uid", id.String()))
	return nil
}
