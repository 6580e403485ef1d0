package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/testgest/testgest-backend/internal/model"
	"golang.org/x/crypto/bcrypt"
)

// AuthService authenticates administrators and issues JWTs for the admin API.
type AuthService struct {
	admins AdminStore
	secret []byte
	expiry time.Duration
	now    func() time.Time
	logger zerolog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(admins AdminStore, secret string, expiry time.Duration) *AuthService {
	return &AuthService{
		admins: admins,
		secret: []byte(secret),
		expiry: expiry,
		now:    time.Now,
		logger: log.With().Str("component", "auth_service").Logger(),
	}
}

// Login verifies the credentials and returns a signed token with the admin.
// Unknown emails and wrong passwords both return ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *model.Administrator, error) {
	admin, err := s.admins.GetByEmail(ctx, email)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   strconv.Itoa(admin.ID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", nil, err
	}
	s.logger.Info().Int("admin_id", admin.ID).Msg("Administrator logged in")
	return signed, admin, nil
}

// VerifyToken parses and validates a token, returning the admin ID.
func (s *AuthService) VerifyToken(tokenString string) (int, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.secret, nil
	})
	if err != nil {
		return 0, err
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return 0, jwt.ErrTokenInvalidClaims
	}
	id, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return 0, jwt.ErrTokenInvalidSubject
	}
	return id, nil
}

// GetAdmin retrieves an administrator by ID, for the token middleware.
func (s *AuthService) GetAdmin(ctx context.Context, id int) (*model.Administrator, error) {
	admin, err := s.admins.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	return admin, nil
}
