// Package models contains the wire-level data shapes of the pet manager API.
// JSON tags follow the backend contract (Portuguese field names for the
// registry resources).
package models

// User is the account profile optionally returned by the login endpoint.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// TokenPair is the response of both the login and the refresh endpoints.
// ExpiresIn is the access token lifetime in seconds; some backend versions
// omit it, in which case the token's own exp claim is used instead.
type TokenPair struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
	User         *User  `json:"user,omitempty"`
}
