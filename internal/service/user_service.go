package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"consignment-service/internal/entity"
)

const sessionTTL = 24 * time.Hour

// UserStore is the persistence the user workflow needs.
type UserStore interface {
	GetUserByID(ctx context.Context, id int) (*entity.User, error)
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	CreateUser(ctx context.Context, user *entity.User) (*entity.User, error)
}

type JwtCustomClaims struct {
	UserID int    `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type UserService struct {
	repo      UserStore
	rdb       *redis.Client
	jwtSecret []byte
}

// NewUserService creates a new instance of UserService.
func NewUserService(repo UserStore, rdb *redis.Client, jwtSecret string) *UserService {
	return &UserService{repo: repo, rdb: rdb, jwtSecret: []byte(jwtSecret)}
}

// Register creates a user with a bcrypt password hash. An empty role means
// consignor.
func (s *UserService) Register(ctx context.Context, name, email, password, role string) (*entity.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email", ErrInvalidArgument)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidArgument)
	}
	switch role {
	case "":
		role = entity.RoleConsignor
	case entity.RoleConsignor, entity.RoleAdmin:
	default:
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidArgument, role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.CreateUser(ctx, &entity.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	})
	if err != nil {
		logger.Error().Err(err).Msg("Error creating user")
		return nil, err
	}

	return user, nil
}

// EnsureAdmin creates the bootstrap admin account unless the email is
// already registered.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) error {
	_, err := s.repo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	_, err = s.Register(ctx, "admin", email, password, entity.RoleAdmin)
	return err
}

// GetUserByID retrieves a user by ID.
func (s *UserService) GetUserByID(ctx context.Context, id int) (*entity.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
		}
		logger.Error().Err(err).Msgf("Error getting user by ID %d", id)
		return nil, err
	}

	return user, nil
}

// Login checks the credentials and issues a signed token valid for 24h.
// The token is also kept in redis so that it can be revoked.
func (s *UserService) Login(ctx context.Context, email, password string) (token string, err error) {
	user, err := s.repo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrUnauthorized
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrUnauthorized
	}

	now := time.Now()
	claims := &JwtCustomClaims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
		},
	}

	t, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", err
	}

	if err := s.rdb.Set(ctx, sessionKey(user.ID), t, sessionTTL).Err(); err != nil {
		return "", err
	}

	return t, nil
}

// ValidateSession reports whether token is the live session of userID.
func (s *UserService) ValidateSession(ctx context.Context, userID int, token string) error {
	stored, err := s.rdb.Get(ctx, sessionKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("session not found: %w", ErrUnauthorized)
		}
		return err
	}
	if stored != token {
		return fmt.Errorf("session replaced: %w", ErrUnauthorized)
	}
	return nil
}

// Logout revokes the session of userID.
func (s *UserService) Logout(ctx context.Context, userID int) error {
	return s.rdb.Del(ctx, sessionKey(userID)).Err()
}

func sessionKey(userID int) string {
	return fmt.Sprintf("session:%d", userID)
}
