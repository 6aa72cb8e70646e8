package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gatewarden/gatewarden/internal/store"
)

// PasswordHasher derives the stored hash for a raw password.
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
}

// Service orchestrates hasher, repository and codec for the sign-in and
// token flows. It is stateless; every call is a pure request/response.
type Service struct {
	logger *slog.Logger
	repo   Repository
	hasher PasswordHasher
	codec  *TokenCodec
}

// NewService constructs a Service.
func NewService(logger *slog.Logger, repo Repository, hasher PasswordHasher, codec *TokenCodec) *Service {
	return &Service{logger: logger, repo: repo, hasher: hasher, codec: codec}
}

// SignIn verifies the credentials and issues a signed token embedding the
// user's current permission tokens. A missing user and a wrong password are
// both ErrVerification; nothing leaks whether the username exists.
func (s *Service) SignIn(ctx context.Context, username, password string) (SignedInfo, error) {
	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return SignedInfo{}, err
	}

	userID, err := s.repo.VerifyCredentials(ctx, username, hash)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return SignedInfo{}, ErrVerification
		case errors.Is(err, store.ErrTemporary):
			return SignedInfo{}, fmt.Errorf("auth: verify credentials: %w", store.ErrTemporary)
		default:
			return SignedInfo{}, fmt.Errorf("auth: verify credentials: %w", store.ErrFatal)
		}
	}

	permissions, err := s.permissionTokens(ctx, userID)
	if err != nil {
		return SignedInfo{}, err
	}

	token, _, err := s.codec.Encode(userID, permissions)
	if err != nil {
		s.logger.Error("sign token", slog.Any("error", err))
		return SignedInfo{}, fmt.Errorf("auth: issue token: %w", store.ErrFatal)
	}
	return SignedInfo{UserID: userID, Token: token}, nil
}

// Verify is the fast path: signature and expiry only. The permission
// snapshot embedded at issuance is trusted as-is, so the result may be stale
// until the token expires. No storage round-trip happens here.
func (s *Service) Verify(token string) (Credential, error) {
	return s.codec.Decode(token)
}

// Revalidate is the slow path: verify the token, then replace the embedded
// snapshot with the live permission set from storage. Callers needing
// current authority use this instead of Verify.
func (s *Service) Revalidate(ctx context.Context, token string) (Credential, error) {
	credential, err := s.codec.Decode(token)
	if err != nil {
		return Credential{}, err
	}
	permissions, err := s.permissionTokens(ctx, credential.UserID)
	if err != nil {
		return Credential{}, err
	}
	credential.Permissions = permissions
	return credential, nil
}

func (s *Service) permissionTokens(ctx context.Context, userID int64) ([]string, error) {
	permissions, err := s.repo.PermissionTokens(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrTemporary) {
			return nil, fmt.Errorf("auth: aggregate permissions: %w", store.ErrTemporary)
		}
		return nil, fmt.Errorf("auth: aggregate permissions: %w", store.ErrFatal)
	}
	if permissions == nil {
		permissions = []string{}
	}
	return permissions, nil
}
