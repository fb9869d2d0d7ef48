package auth

import (
	"errors"
	"fmt"
	"time"

	"gateway-dashboard/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken wraps every reason a presented token is rejected.
var ErrInvalidToken = errors.New("auth: invalid token")

const clockSkew = 30 * time.Second

// Subject is the identity a token pair speaks for.
type Subject struct {
	UserID    string
	SessionID string
	Role      string
}

// Manager signs and checks the HS256 tokens bound to dashboard sessions.
type Manager struct {
	secret     []byte
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewManager(cfg config.AuthConfig) (*Manager, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if cfg.AccessTokenTTL <= 0 || cfg.RefreshTokenTTL <= 0 {
		return nil, errors.New("token TTLs must be positive")
	}
	return &Manager{
		secret:     []byte(cfg.JWTSecret),
		issuer:     cfg.JWTIssuer,
		audience:   cfg.JWTAudience,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
	}, nil
}

type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	ExpiresAt        time.Time
	RefreshExpiresAt time.Time
}

// IssuePair signs an access token carrying the role and a role-less refresh
// token, both pointing at s.SessionID.
func (m *Manager) IssuePair(now time.Time, s Subject) (TokenPair, error) {
	if s.UserID == "" || s.SessionID == "" || s.Role == "" {
		return TokenPair{}, errors.New("auth: subject needs user, session and role")
	}
	access, err := m.sign(m.claims(now, TokenTypeAccess, s, m.accessTTL))
	if err != nil {
		return TokenPair{}, fmt.Errorf("auth: sign access token: %w", err)
	}
	s.Role = ""
	refresh, err := m.sign(m.claims(now, TokenTypeRefresh, s, m.refreshTTL))
	if err != nil {
		return TokenPair{}, fmt.Errorf("auth: sign refresh token: %w", err)
	}
	return TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		ExpiresAt:        now.Add(m.accessTTL),
		RefreshExpiresAt: now.Add(m.refreshTTL),
	}, nil
}

// Refresh exchanges a refresh token for a new pair on the same session.
// roleOf reads the session's current role; its errors are returned wrapped so
// callers can tell a vanished session from a storage failure.
func (m *Manager) Refresh(refreshToken string, now time.Time, roleOf func(sessionID string) (string, error)) (TokenPair, Subject, error) {
	claims, err := m.Verify(refreshToken, TokenTypeRefresh, now)
	if err != nil {
		return TokenPair{}, Subject{}, err
	}
	role, err := roleOf(claims.SessionID)
	if err != nil {
		return TokenPair{}, Subject{}, fmt.Errorf("auth: session role: %w", err)
	}
	if role == "" {
		return TokenPair{}, Subject{}, fmt.Errorf("%w: session has no role", ErrInvalidToken)
	}

	s := Subject{UserID: claims.UserID, SessionID: claims.SessionID, Role: role}
	pair, err := m.IssuePair(now, s)
	if err != nil {
		return TokenPair{}, Subject{}, err
	}
	return pair, s, nil
}

// Verify checks signature, registered claims against now, and the token type.
// All rejections wrap ErrInvalidToken.
func (m *Manager) Verify(tokenString string, expected TokenType, now time.Time) (Claims, error) {
	var claims Claims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if _, err := parser.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if err := m.validator(now).Validate(claims.RegisteredClaims); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	switch {
	case claims.TokenType != expected:
		return Claims{}, fmt.Errorf("%w: want %s token, got %q", ErrInvalidToken, expected, claims.TokenType)
	case claims.UserID == "" || claims.SessionID == "":
		return Claims{}, fmt.Errorf("%w: user_id and session_id are required", ErrInvalidToken)
	case expected == TokenTypeAccess && claims.Role == "":
		return Claims{}, fmt.Errorf("%w: access token without role", ErrInvalidToken)
	}
	return claims, nil
}

func (m *Manager) validator(now time.Time) *jwt.Validator {
	opts := []jwt.ParserOption{
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithLeeway(clockSkew),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}
	if m.audience != "" {
		opts = append(opts, jwt.WithAudience(m.audience))
	}
	return jwt.NewValidator(opts...)
}

func (m *Manager) claims(now time.Time, typ TokenType, s Subject, ttl time.Duration) Claims {
	rc := jwt.RegisteredClaims{
		Issuer:    m.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
	}
	if m.audience != "" {
		rc.Audience = jwt.ClaimStrings{m.audience}
	}
	return Claims{
		RegisteredClaims: rc,
		UserID:           s.UserID,
		SessionID:        s.SessionID,
		Role:             s.Role,
		TokenType:        typ,
	}
}

func (m *Manager) sign(c Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.secret)
}
