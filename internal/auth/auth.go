// Package auth carries transport-level database credentials through a
// request context.
package auth

import "context"

type contextKey string

const credentialsKey contextKey = "databaseCredentials"

// Credentials is a database principal and secret taken from the transport,
// e.g. an HTTP Basic Authorization header.
type Credentials struct {
	Username string
	Password string
}

// WithCredentials attaches transport credentials to ctx.
func WithCredentials(ctx context.Context, creds Credentials) context.Context {
	return context.WithValue(ctx, credentialsKey, creds)
}

// CredentialsFromContext returns the transport credentials, if any.
func CredentialsFromContext(ctx context.Context) (Credentials, bool) {
	creds, ok := ctx.Value(credentialsKey).(Credentials)
	return creds, ok
}

// Resolve picks the credentials for a call. Explicit tool arguments win;
// only when both are empty are the transport credentials used.
func Resolve(ctx context.Context, username, password string) (string, string) {
	if username != "" || password != "" {
		return username, password
	}
	if creds, ok := CredentialsFromContext(ctx); ok {
		return creds.Username, creds.Password
	}
	return "", ""
}
