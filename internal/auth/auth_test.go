package auth

import (
	"context"
	"testing"
)

func TestWithCredentials(t *testing.T) {
	ctx := WithCredentials(context.Background(), Credentials{Username: "memgraph", Password: "secret"})

	creds, ok := CredentialsFromContext(ctx)
	if !ok {
		t.Fatal("Expected credentials in context, but none found")
	}
	if creds.Username != "memgraph" {
		t.Errorf("Expected user %q, got %q", "memgraph", creds.Username)
	}
	if creds.Password != "secret" {
		t.Errorf("Expected pass %q, got %q", "secret", creds.Password)
	}
}

func TestCredentialsFromContext_Missing(t *testing.T) {
	creds, ok := CredentialsFromContext(context.Background())
	if ok {
		t.Error("Expected no credentials in context, but found some")
	}
	if creds != (Credentials{}) {
		t.Errorf("Expected zero credentials, got %+v", creds)
	}
}

func TestResolve(t *testing.T) {
	withTransport := WithCredentials(context.Background(), Credentials{Username: "header-user", Password: "header-pass"})

	tests := []struct {
		name     string
		ctx      context.Context
		username string
		password string
		wantUser string
		wantPass string
	}{
		{
			name:     "explicit arguments win",
			ctx:      withTransport,
			username: "arg-user",
			password: "arg-pass",
			wantUser: "arg-user",
			wantPass: "arg-pass",
		},
		{
			name:     "username alone counts as explicit",
			ctx:      withTransport,
			username: "arg-user",
			wantUser: "arg-user",
		},
		{
			name:     "falls back to transport credentials",
			ctx:      withTransport,
			wantUser: "header-user",
			wantPass: "header-pass",
		},
		{
			name: "nothing anywhere",
			ctx:  context.Background(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, pass := Resolve(tt.ctx, tt.username, tt.password)
			if user != tt.wantUser || pass != tt.wantPass {
				t.Errorf("Resolve() = (%q, %q), want (%q, %q)", user, pass, tt.wantUser, tt.wantPass)
			}
		})
	}
}
