package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenClaims is the wire shape of the claims JSON. The expiry travels as an
// RFC3339 string rather than a numeric exp claim, for compatibility with
// tokens already in circulation.
type tokenClaims struct {
	UserID      int64    `json:"user_id"`
	ExpiredAt   string   `json:"expired_at"`
	Permissions []string `json:"permissions"`
}

func (c tokenClaims) GetExpirationTime() (*jwt.NumericDate, error) {
	expiresAt, err := time.Parse(time.RFC3339, c.ExpiredAt)
	if err != nil {
		return nil, fmt.Errorf("auth: parse expired_at: %w", err)
	}
	return jwt.NewNumericDate(expiresAt), nil
}

func (c tokenClaims) GetIssuedAt() (*jwt.NumericDate, error)  { return nil, nil }
func (c tokenClaims) GetNotBefore() (*jwt.NumericDate, error) { return nil, nil }
func (c tokenClaims) GetIssuer() (string, error)              { return "", nil }
func (c tokenClaims) GetSubject() (string, error)             { return "", nil }
func (c tokenClaims) GetAudience() (jwt.ClaimStrings, error)  { return nil, nil }

// TokenCodec signs and verifies credential tokens with a symmetric
// HMAC-SHA256 key.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenCodec constructs a codec issuing tokens valid for ttlDays.
func NewTokenCodec(secret string, ttlDays int) *TokenCodec {
	return &TokenCodec{
		secret: []byte(secret),
		ttl:    time.Duration(ttlDays) * 24 * time.Hour,
		now:    time.Now,
	}
}

// Encode materializes a credential for userID into a signed token string.
func (c *TokenCodec) Encode(userID int64, permissions []string) (string, Credential, error) {
	if permissions == nil {
		permissions = []string{}
	}
	expiresAt := c.now().UTC().Add(c.ttl).Truncate(time.Second)
	claims := tokenClaims{
		UserID:      userID,
		ExpiredAt:   expiresAt.Format(time.RFC3339),
		Permissions: permissions,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", Credential{}, fmt.Errorf("auth: sign token: %w", err)
	}
	return token, Credential{UserID: userID, ExpiresAt: expiresAt, Permissions: permissions}, nil
}

// Decode verifies signature and expiry and returns the embedded credential.
// Every failure mode collapses into ErrVerification.
func (c *TokenCodec) Decode(token string) (Credential, error) {
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return Credential{}, ErrVerification
	}
	expiresAt, err := time.Parse(time.RFC3339, claims.ExpiredAt)
	if err != nil {
		return Credential{}, ErrVerification
	}
	permissions := claims.Permissions
	if permissions == nil {
		permissions = []string{}
	}
	return Credential{
		UserID:      claims.UserID,
		ExpiresAt:   expiresAt.UTC(),
		Permissions: permissions,
	}, nil
}
