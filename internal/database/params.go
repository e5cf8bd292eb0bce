package database

import (
	"errors"
	"fmt"
)

// ConnectionParams identifies the database and principal for one call. It is
// never stored beyond the call.
type ConnectionParams struct {
	URI      string
	Username string
	Password string
	// Database selects a named database; empty means the server default.
	Database string
}

// HasCredentials reports whether a principal or credential was supplied.
func (p ConnectionParams) HasCredentials() bool {
	return p.Username != "" || p.Password != ""
}

// Validate checks the parameters that must be present before dialing.
func (p ConnectionParams) Validate() error {
	if p.URI == "" {
		return errors.New("connection URI is required but was empty")
	}
	return nil
}

// String never includes the password.
func (p ConnectionParams) String() string {
	return fmt.Sprintf("uri=%s user=%s database=%s", p.URI, p.Username, p.Database)
}
