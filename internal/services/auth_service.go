package services

import (
	"context"
	"errors"
	"regexp"
	"time"

	"pairchat/internal/domain/user"
	"pairchat/internal/repository"
	"pairchat/internal/secrets"
	pairchat_errors "pairchat/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	userRepo  repository.UserRepository
	secrets   secrets.Provider
	accessTTL time.Duration
}

func NewAuthService(userRepo repository.UserRepository, provider secrets.Provider, accessTTL time.Duration) *AuthService {
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	return &AuthService{
		userRepo:  userRepo,
		secrets:   provider,
		accessTTL: accessTTL,
	}
}

type RegisterInput struct {
	Username       string
	HashedPassword string
}

type LoginInput struct {
	Username string
	Password string
}

type AuthResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
	Username  string `json:"user"`
}

type AccessClaims struct {
	Username string `json:"usr"`
	jwt.RegisteredClaims
}

// Usernames become document ids and map keys inside conversation
// documents, so they must stay clear of Mongo field name syntax
// ('.', '$') and of the '|' pair key delimiter.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,32}$`)

// Register stores the client-supplied bcrypt hash and issues a token.
// The password is hashed on the client before it ever reaches the API;
// the server only checks the value is a parseable bcrypt hash.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (AuthResponse, error) {
	if !usernamePattern.MatchString(in.Username) {
		return AuthResponse{}, pairchat_errors.ErrInvalidInput
	}
	if _, err := bcrypt.Cost([]byte(in.HashedPassword)); err != nil {
		return AuthResponse{}, pairchat_errors.ErrInvalidInput
	}

	newUser := &user.User{
		Username:       in.Username,
		HashedPassword: in.HashedPassword,
	}
	if err := s.userRepo.Create(ctx, newUser); err != nil {
		if errors.Is(err, pairchat_errors.ErrAlreadyExists) {
			return AuthResponse{}, pairchat_errors.ErrConflict
		}
		return AuthResponse{}, err
	}

	return s.issueToken(ctx, in.Username)
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (AuthResponse, error) {
	if in.Username == "" || in.Password == "" {
		return AuthResponse{}, pairchat_errors.ErrInvalidInput
	}

	u, err := s.userRepo.Get(ctx, in.Username)
	if err != nil {
		return AuthResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(in.Password)); err != nil {
		return AuthResponse{}, pairchat_errors.ErrUnauthorized
	}

	return s.issueToken(ctx, in.Username)
}

func (s *AuthService) issueToken(ctx context.Context, username string) (AuthResponse, error) {
	secret, err := s.secrets.SigningSecret(ctx)
	if err != nil {
		return AuthResponse{}, pairchat_errors.ErrServiceUnavailable
	}

	now := time.Now()
	claims := AccessClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return AuthResponse{}, err
	}

	return AuthResponse{
		Token:     token,
		ExpiresIn: int64(s.accessTTL.Seconds()),
		Username:  username,
	}, nil
}

// ParseAccessToken verifies the bearer token against the current
// signing secret and returns the authenticated username.
func (s *AuthService) ParseAccessToken(ctx context.Context, tokenString string) (string, error) {
	if tokenString == "" {
		return "", pairchat_errors.ErrUnauthorized
	}

	secret, err := s.secrets.SigningSecret(ctx)
	if err != nil {
		return "", pairchat_errors.ErrServiceUnavailable
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, pairchat_errors.ErrUnauthorized
		}
		return secret, nil
	})
	if err != nil {
		return "", pairchat_errors.ErrUnauthorized
	}

	claims, ok := parsed.Claims.(*AccessClaims)
	if !ok || !parsed.Valid || claims.Username == "" {
		return "", pairchat_errors.ErrUnauthorized
	}

	return claims.Username, nil
}

func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, pairchat_errors.ErrInvalidInput):
		return 400
	case errors.Is(err, pairchat_errors.ErrUnauthorized):
		return 401
	case errors.Is(err, pairchat_errors.ErrForbidden):
		return 403
	case errors.Is(err, pairchat_errors.ErrNotFound):
		return 404
	case errors.Is(err, pairchat_errors.ErrAlreadyExists), errors.Is(err, pairchat_errors.ErrConflict):
		return 409
	case errors.Is(err, pairchat_errors.ErrRateLimited):
		return 429
	case errors.Is(err, pairchat_errors.ErrServiceUnavailable):
		return 503
	default:
		return 500
	}
}

type ctxKey string

var usernameKey ctxKey = "username"

func WithUsernameContext(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, usernameKey, username)
}

func UsernameFromContext(ctx context.Context) (string, bool) {
	value := ctx.Value(usernameKey)
	if value == nil {
		return "", false
	}
	username, ok := value.(string)
	return username, ok
}
