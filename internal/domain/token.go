package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"idcore/api/internal/apperr"
	"idcore/api/internal/ids"
)

// TokenType tags a persisted JWT record as access or refresh.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims is the wire payload of every issued JWT.
type Claims struct {
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// JTI returns the token's unique id.
func (c *Claims) JTI() string { return c.ID }

// UserID returns the subject claim.
func (c *Claims) UserID() string { return c.Subject }

// JwtToken is the persisted record of an issued JWT, kept so tokens can
// be revoked. The jti is unique and immutable; once revoked a token
// never becomes un-revoked.
type JwtToken struct {
	ID        string
	UserID    string
	TokenType TokenType
	JTI       string
	ExpiresAt time.Time
	Revoked   bool
	RevokedAt *time.Time
	CreatedAt time.Time
}

// IsExpired is computed at check time; expiry is not a stored state.
func (t *JwtToken) IsExpired() bool {
	return time.Now().UTC().After(t.ExpiresAt)
}

func (t *JwtToken) IsRevoked() bool {
	return t.Revoked
}

// IsValid reports whether the token is neither expired nor revoked.
func (t *JwtToken) IsValid() bool {
	return !t.IsExpired() && !t.IsRevoked()
}

// Revoke marks the token revoked. Revoking twice is a no-op.
func (t *JwtToken) Revoke() {
	if t.Revoked {
		return
	}
	now := time.Now().UTC()
	t.Revoked = true
	t.RevokedAt = &now
}

// TokenPair is the transient response bundle returned to API clients.
// It is derived at generation time and never reconstructed from storage.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// GenerateTokenPair mints an access/refresh pair for userID with two
// independent JTIs, signed HS256 with secret. It returns the public
// pair plus the two unsaved JwtToken records for the caller to persist.
// ExpiresIn on the pair equals the access-token TTL.
func GenerateTokenPair(userID string, secret []byte, accessTTL, refreshTTL time.Duration) (TokenPair, *JwtToken, *JwtToken, error) {
	now := time.Now().UTC()

	accessToken, accessRecord, err := mintToken(userID, secret, TokenTypeAccess, now, accessTTL)
	if err != nil {
		return TokenPair{}, nil, nil, err
	}

	refreshToken, refreshRecord, err := mintToken(userID, secret, TokenTypeRefresh, now, refreshTTL)
	if err != nil {
		return TokenPair{}, nil, nil, err
	}

	pair := TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(accessTTL.Seconds()),
	}
	return pair, accessRecord, refreshRecord, nil
}

func mintToken(userID string, secret []byte, tokenType TokenType, now time.Time, ttl time.Duration) (string, *JwtToken, error) {
	jti := ids.New()
	expiresAt := now.Add(ttl)

	claims := Claims{
		TokenType: string(tokenType),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", nil, apperr.Internal(fmt.Sprintf("failed to sign %s token", tokenType), err)
	}

	record := &JwtToken{
		ID:        ids.New(),
		UserID:    userID,
		TokenType: tokenType,
		JTI:       jti,
		ExpiresAt: expiresAt,
		Revoked:   false,
		CreatedAt: now,
	}
	return signed, record, nil
}

// DecodeToken verifies the signature and expiry of token and returns
// its claims. It never consults storage; revocation is checked
// separately by the caller using the decoded jti.
func DecodeToken(token string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, apperr.Authentication("Token has expired")
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, apperr.Authentication("Invalid token")
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, apperr.Authentication("Invalid token signature")
		default:
			return nil, apperr.Authentication("Token validation failed")
		}
	}
	if !parsed.Valid {
		return nil, apperr.Authentication("Invalid token")
	}
	return claims, nil
}
