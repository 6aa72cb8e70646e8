// Package auth implements credential issuance and verification: password
// hashing, the signed token codec, the sign-in flow and the bearer
// middleware guarding the API.
package auth

import (
	"errors"
	"time"
)

// ErrVerification is the single caller-visible denial outcome: wrong
// credentials, bad signature, malformed token or expired token. It
// deliberately hides whether a username exists.
var ErrVerification = errors.New("auth: verification failed")

// Credential is the claims payload carried by a signed token. It is
// materialized into the token string at issuance and never stored
// server-side.
type Credential struct {
	UserID      int64
	ExpiresAt   time.Time
	Permissions []string
}

// SignedInfo is the sign-in response: the user id plus the signed token.
type SignedInfo struct {
	UserID int64  `json:"user_id"`
	Token  string `json:"jwt_token"`
}
