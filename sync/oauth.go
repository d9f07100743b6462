// ABOUTME: OAuth configuration and token management for Google APIs
// ABOUTME: Handles token storage at XDG paths; credentials come from config
package sync

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Scopes requested for contact and calendar import.
var Scopes = []string{
	"https://www.googleapis.com/auth/contacts.readonly",
	"https://www.googleapis.com/auth/calendar.readonly",
}

// CallbackAddr is where the local OAuth callback server listens.
const CallbackAddr = "localhost:8080"

// NewOAuthConfig creates the OAuth2 config for Google APIs.
func NewOAuthConfig(clientID, clientSecret string) (*oauth2.Config, error) {
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("google OAuth credentials not configured. Set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET")
	}
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  "http://" + CallbackAddr + "/oauth/callback",
		Scopes:       Scopes,
		Endpoint:     google.Endpoint,
	}, nil
}

// TokenPath returns the XDG path of the stored OAuth token.
func TokenPath() string {
	return filepath.Join(xdg.DataHome, "immo", "google-credentials.json")
}

// SaveToken writes the token with owner-only permissions.
func SaveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create token file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	return nil
}

func LoadToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open token file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var token oauth2.Token
	if err := json.NewDecoder(f).Decode(&token); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}
	return &token, nil
}
