package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/goldlab/assay-api/internal/config"
	"github.com/goldlab/assay-api/internal/domain"
	"github.com/goldlab/assay-api/internal/repository"
)

var (
	ErrUsernameExists = repository.ErrUsernameExists
	ErrWrongPassword  = errors.New("wrong password")
)

var comparePassword = bcrypt.CompareHashAndPassword

// dummyHash is compared against for unknown usernames so both login
// failures take the same bcrypt time.
var dummyHash = sync.OnceValue(func() []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte("assay-unknown-user"), bcrypt.DefaultCost)
	if err != nil {
		zap.L().Error("bcrypt.GenerateFromPassword", zap.Error(err))
	}
	return hash
})

type AuthUserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	FindByUsername(ctx context.Context, username string) (domain.User, error)
	Count(ctx context.Context) (int64, error)
}

type AuthService struct {
	repo AuthUserRepository
}

func NewAuthService(repo AuthUserRepository) *AuthService {
	return &AuthService{
		repo: repo,
	}
}

func (s *AuthService) Login(ctx context.Context, username, password string) (domain.User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			_ = comparePassword(dummyHash(), []byte(password))
			return domain.User{}, ErrUserNotFound
		}

		return domain.User{}, fmt.Errorf("s.repo.FindByUsername -> %w", err)
	}

	if err = comparePassword([]byte(user.Password), []byte(password)); err != nil {
		return domain.User{}, ErrWrongPassword
	}

	return user, nil
}

// EnsureAdmin creates the configured admin when the users table is empty.
func (s *AuthService) EnsureAdmin(ctx context.Context, conf *config.AdminConfig) error {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("s.repo.Count -> %w", err)
	}
	if n > 0 {
		return nil
	}
	if conf == nil || conf.Username == "" || conf.Password == "" {
		return errors.New("no users exist and admin credentials are not configured")
	}

	hash, err := hashPassword(conf.Password)
	if err != nil {
		return err
	}

	created, err := s.repo.Create(ctx, domain.User{
		Username: conf.Username,
		Password: hash,
		Name:     conf.Name,
		Role:     domain.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("s.repo.Create -> %w", err)
	}

	zap.L().Info("initial admin created", zap.String("username", created.Username))

	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
