package api

import (
	"context"
	"net/http"

	"github.com/petmanager/petman/internal/models"
)

// AuthClient talks to the authentication endpoints. It deliberately uses
// its own bare http.Client: these calls run below the authorized pipeline
// so a refresh can never recurse into itself.
type AuthClient struct {
	c *Client
}

// NewAuthClient builds the auth endpoint client. baseURL is the API root
// and authPath the mount point of the authentication service.
func NewAuthClient(hc *http.Client, baseURL, authPath string) *AuthClient {
	return &AuthClient{c: NewClient(hc, baseURL+authPath)}
}

// Login exchanges credentials for a token pair.
func (a *AuthClient) Login(ctx context.Context, email, password string) (models.TokenPair, error) {
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: password}

	var pair models.TokenPair
	if err := a.c.doJSON(ctx, http.MethodPost, "/login", body, &pair); err != nil {
		return models.TokenPair{}, err
	}
	return pair, nil
}

// Refresh exchanges a refresh token for a new pair. The refresh token
// itself travels as the bearer credential.
func (a *AuthClient) Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, a.c.baseURL+"/refresh", nil)
	if err != nil {
		return models.TokenPair{}, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+refreshToken)

	var pair models.TokenPair
	if err := a.c.do(req, &pair); err != nil {
		return models.TokenPair{}, err
	}
	return pair, nil
}
