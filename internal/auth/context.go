package auth

import "context"

type credentialContextKey struct{}

// ContextWithCredential stores the verified credential in ctx.
func ContextWithCredential(ctx context.Context, credential Credential) context.Context {
	return context.WithValue(ctx, credentialContextKey{}, credential)
}

// CredentialFromContext extracts the verified credential, if any.
func CredentialFromContext(ctx context.Context) (Credential, bool) {
	credential, ok := ctx.Value(credentialContextKey{}).(Credential)
	return credential, ok
}
