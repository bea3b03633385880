package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/roomly/roomly-backend/internal/data/repos"
	"github.com/roomly/roomly-backend/internal/domain"
	apperr "github.com/roomly/roomly-backend/internal/pkg/errors"
	"github.com/roomly/roomly-backend/internal/platform/dbctx"
	"github.com/roomly/roomly-backend/internal/platform/envutil"
	"github.com/roomly/roomly-backend/internal/platform/logger"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 30 * 24 * time.Hour
)

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type AuthService interface {
	Register(ctx context.Context, email, password, firstName, lastName string) (*domain.User, *TokenPair, error)
	Login(ctx context.Context, email, password string) (*domain.User, *TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	ParseAccessToken(tokenString string) (uuid.UUID, error)
}

type authService struct {
	log    *logger.Logger
	db     *gorm.DB
	users  repos.UserRepo
	tokens repos.UserTokenRepo
	secret []byte
}

func NewAuthService(log *logger.Logger, db *gorm.DB, users repos.UserRepo, tokens repos.UserTokenRepo) AuthService {
	return &authService{
		log:    log.With("service", "AuthService"),
		db:     db,
		users:  users,
		tokens: tokens,
		secret: []byte(envutil.Str("JWT_SECRET", "dev-secret-change-me")),
	}
}

func (s *authService) Register(ctx context.Context, email, password, firstName, lastName string) (*domain.User, *TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || len(password) < 8 {
		return nil, nil, fmt.Errorf("%w: email and a password of at least 8 characters are required", apperr.ErrInvalidArgument)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	row := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
	}

	var pair *TokenPair
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		existing, err := s.users.GetByEmail(dbc, email)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: email already registered", apperr.ErrInvalidArgument)
		}
		if err := s.users.Create(dbc, row); err != nil {
			return err
		}
		pair, err = s.issueTokens(dbc, row.ID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	s.log.Info("user registered", "user_id", row.ID.String())
	return row, pair, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.User, *TokenPair, error) {
	dbc := dbctx.Context{Ctx: ctx}
	row, err := s.users.GetByEmail(dbc, email)
	if err != nil {
		return nil, nil, err
	}
	if row == nil {
		return nil, nil, apperr.ErrUnauthorized
	}
	if bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(password)) != nil {
		return nil, nil, apperr.ErrUnauthorized
	}

	var pair *TokenPair
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		pair, err = s.issueTokens(dbctx.Context{Ctx: ctx, Tx: tx}, row.ID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return row, pair, nil
}

// Refresh rotates the refresh token: the presented one is revoked and a
// fresh pair is issued in the same transaction.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	var pair *TokenPair
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		row, err := s.tokens.GetByHash(dbc, hashToken(refreshToken))
		if err != nil {
			return err
		}
		if row == nil || row.RevokedAt != nil || time.Now().UTC().After(row.ExpiresAt) {
			return apperr.ErrUnauthorized
		}
		if err := s.tokens.Revoke(dbc, row.ID); err != nil {
			return err
		}
		pair, err = s.issueTokens(dbc, row.UserID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	dbc := dbctx.Context{Ctx: ctx}
	row, err := s.tokens.GetByHash(dbc, hashToken(refreshToken))
	if err != nil {
		return err
	}
	if row == nil {
		return nil
	}
	return s.tokens.Revoke(dbc, row.ID)
}

func (s *authService) ParseAccessToken(tokenString string) (uuid.UUID, error) {
	tok, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !tok.Valid {
		return uuid.Nil, apperr.ErrUnauthorized
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, apperr.ErrUnauthorized
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return uuid.Nil, apperr.ErrUnauthorized
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, apperr.ErrUnauthorized
	}
	return id, nil
}

func (s *authService) issueTokens(dbc dbctx.Context, userID uuid.UUID) (*TokenPair, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub": userID.String(),
		"iat": now.Unix(),
		"exp": now.Add(accessTokenTTL).Unix(),
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refresh, err := randomToken()
	if err != nil {
		return nil, err
	}
	row := &domain.UserToken{
		ID:        uuid.New(),
		UserID:    userID,
		TokenHash: hashToken(refresh),
		ExpiresAt: now.Add(refreshTokenTTL),
	}
	if err := s.tokens.Create(dbc, row); err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh tokens are opaque; only their sha256 hash touches the database.
func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
