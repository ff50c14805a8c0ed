package usecases

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PavaniTiago/workflow-insights-api/internal/domain/entities"
	"github.com/PavaniTiago/workflow-insights-api/internal/domain/repositories"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	// ErrTokensDisabled é retornado quando nenhum JWT_SECRET foi configurado
	ErrTokensDisabled = errors.New("token authentication is not configured")
)

const tokenIssuer = "workflow-insights-api"

// Claims são as claims JWT de um usuário do dashboard
type Claims struct {
	Role  entities.ViewerRole `json:"role"`
	Email string              `json:"email"`
	jwt.RegisteredClaims
}

// UserID returns the numeric subject.
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return uint(id), nil
}

// LoginResult é retornado após um login bem-sucedido
type LoginResult struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expiresAt"`
	User      *entities.User `json:"user"`
}

// AuthUseCase valida credenciais (bcrypt) e emite/valida tokens JWT
type AuthUseCase struct {
	users  repositories.IUserRepository
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewAuthUseCase creates the auth use case. An empty secret disables token
// issuing and parsing entirely.
func NewAuthUseCase(users repositories.IUserRepository, secret string, ttl time.Duration) *AuthUseCase {
	return &AuthUseCase{
		users:  users,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Login checks the password hash and issues a token. Unknown emails and
// wrong passwords return the same error.
func (u *AuthUseCase) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if len(u.secret) == 0 {
		return nil, ErrTokensDisabled
	}
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("erro ao buscar usuário: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := u.IssueToken(user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// IssueToken signs an HS256 token for user.
func (u *AuthUseCase) IssueToken(user *entities.User) (string, time.Time, error) {
	if len(u.secret) == 0 {
		return "", time.Time{}, ErrTokensDisabled
	}
	now := u.now()
	expiresAt := now.Add(u.ttl)
	claims := &Claims{
		Role:  user.Role,
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(u.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("erro ao assinar token: %w", err)
	}
	return signed, expiresAt, nil
}

// ParseToken validates signature, expiry and role of a token.
func (u *AuthUseCase) ParseToken(tokenString string) (*Claims, error) {
	if len(u.secret) == 0 {
		return nil, ErrTokensDisabled
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return u.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(u.now),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Role.Rank() == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
