package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/SebastianPineiro10/servidor-ecommerce-backend2/internal/domain"
	"github.com/SebastianPineiro10/servidor-ecommerce-backend2/internal/repository"
)

type AuthService struct {
	users    repository.UserRepository
	secret   []byte
	tokenTTL time.Duration
	log      *slog.Logger
}

func NewAuthService(users repository.UserRepository, secret string, tokenTTL time.Duration, log *slog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		log:      log,
	}
}

type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Age       int
	Password  string
	Role      string
}

type tokenClaims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	if in.FirstName == "" || in.LastName == "" || in.Email == "" || in.Age <= 0 || in.Password == "" {
		return nil, fmt.Errorf("all fields are required: %w", domain.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}

	user := &domain.User{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Age:       in.Age,
		Password:  string(hash),
		Role:      role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("user registered", "id", user.ID.Hex(), "email", user.Email)
	return user, nil
}

// Login verifies credentials and issues a signed token carrying the user id
// and role. The token is meant to travel in an HTTP-only cookie.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, fmt.Errorf("wrong password: %w", domain.ErrUnauthorized)
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		UserID: user.ID.Hex(),
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	s.log.Info("user logged in", "id", user.ID.Hex())
	return signed, user, nil
}

// CurrentUser resolves a token back to the public profile of its user.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*domain.Profile, error) {
	if token == "" {
		return nil, fmt.Errorf("token not provided: %w", domain.ErrUnauthorized)
	}

	var claims tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("invalid or expired token: %w", domain.ErrUnauthorized)
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	profile := user.Profile()
	return &profile, nil
}

// TokenTTL is exposed so the HTTP layer can align the cookie lifetime with
// the token expiry.
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokenTTL
}
