package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/MidnightMr/parking-service/internal/models"
	"github.com/MidnightMr/parking-service/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserExists         = errors.New("username or phone already registered")
	ErrTokenInvalid       = errors.New("token is invalid or expired")
)

type RegisterCommand struct {
	Username string
	Password string
	Name     string
	Phone    string
}

type AuthService struct {
	users  repository.UserRepository
	secret []byte
	expiry time.Duration
}

func NewAuthService(users repository.UserRepository, secret string, expiry time.Duration) *AuthService {
	return &AuthService{users: users, secret: []byte(secret), expiry: expiry}
}

// Register hashes the password as an explicit step before the insert; nothing
// happens behind the save.
func (s *AuthService) Register(ctx context.Context, cmd RegisterCommand) (*models.User, error) {
	if _, err := s.users.FindByUsername(ctx, cmd.Username); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username: cmd.Username,
		Password: string(hash),
		Name:     cmd.Name,
		Phone:    cmd.Phone,
		Role:     models.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, ErrUserExists
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) issueToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":  strconv.FormatUint(uint64(user.ID), 10),
		"role": string(user.Role),
		"exp":  time.Now().Add(s.expiry).Unix(),
		"iat":  time.Now().Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ValidateToken resolves a bearer token into the caller identity.
func (s *AuthService) ValidateToken(tokenString string) (Actor, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return Actor{}, ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Actor{}, ErrTokenInvalid
	}
	sub, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	userID, err := strconv.ParseUint(sub, 10, 64)
	if err != nil || role == "" {
		return Actor{}, ErrTokenInvalid
	}

	return Actor{UserID: uint(userID), Role: models.Role(role)}, nil
}
