package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/infoabcd/Warehouse-Query-System/internal/domain"
	"gorm.io/gorm"
)

var ErrBadCredentials = errors.New("auth: invalid username or password")

// UserRepository interface for user data access
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// GormUserRepository is the GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Authenticator checks credentials against stored users.
type Authenticator struct {
	users UserRepository
}

func NewAuthenticator(users UserRepository) *Authenticator {
	return &Authenticator{users: users}
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// Authenticate returns the identity of username when password matches.
// Unknown users and wrong passwords both yield ErrBadCredentials.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (*Identity, error) {
	user, err := a.users.GetByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// compare anyway so unknown users cost the same as wrong passwords
		dummyHashOnce.Do(func() { dummyHash, _ = HashPassword("warehouse-dummy") })
		CheckPassword(dummyHash, password)
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user %s: %w", username, err)
	}
	if !CheckPassword(user.Password, password) {
		return nil, ErrBadCredentials
	}
	return &Identity{ID: user.ID, Username: user.Username, Admin: user.Role}, nil
}
