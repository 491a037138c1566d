// Package auth verifies credentials, issues session tokens and guards role-restricted routes.
package auth

import "context"

type Role string

const (
	RoleUser   Role = "user"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleSeller, RoleAdmin:
		return true
	default:
		return false
	}
}

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Credentials is what a client submits to sign in or sign up.
type Credentials struct {
	Email    string `json:"email"    validate:"omitempty,email"`
	Password string `json:"password" validate:"max=128"`
	Name     string `json:"name"     validate:"max=100"`
	Role     Role   `json:"role"     validate:"omitempty,oneof=user seller admin"`
}

// Verifier checks credentials and returns the matching user.
type Verifier interface {
	SignIn(ctx context.Context, creds Credentials) (*User, error)
	SignUp(ctx context.Context, creds Credentials) (*User, error)
}

const (
	mockUserID    = "1"
	mockUserName  = "John Doe"
	mockUserEmail = "user@example.com"
)

// MockVerifier accepts any credentials and fabricates a user from them.
// It stands in for a real identity provider in the demo storefront.
type MockVerifier struct{}

var _ Verifier = MockVerifier{}

func (MockVerifier) SignIn(_ context.Context, creds Credentials) (*User, error) {
	return mockUser(creds), nil
}

func (MockVerifier) SignUp(_ context.Context, creds Credentials) (*User, error) {
	return mockUser(creds), nil
}

func mockUser(creds Credentials) *User {
	u := &User{ID: mockUserID, Name: mockUserName, Email: mockUserEmail, Role: RoleUser}
	if creds.Email != "" {
		u.Email = creds.Email
	}
	if creds.Role.Valid() {
		u.Role = creds.Role
	}
	return u
}

type userKey struct{}

// WithUser stores the authenticated user in the context.
func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(userKey{}).(*User)
	return u, ok && u != nil
}
