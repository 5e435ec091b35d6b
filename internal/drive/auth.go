package drive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
)

// Environment variables read by CredentialsFromEnv.
const (
	EnvCredentials = "GOOGLE_CREDENTIALS_JSON"
	EnvToken       = "GOOGLE_TOKEN_JSON"
	EnvLawFolder   = "DRIVE_FOLDER_LAW"
)

var (
	// ErrFolderNotConfigured means no Drive folder id was given or set in DRIVE_FOLDER_LAW.
	ErrFolderNotConfigured = errors.New("drive folder not configured (set " + EnvLawFolder + ")")
	// ErrTokenMissing means the OAuth consent step has not been done yet.
	ErrTokenMissing = errors.New("drive token not found; run `lawrag auth` first")
)

// Credentials locates the OAuth client secret and the cached user token.
type Credentials struct {
	ClientSecretPath string
	TokenPath        string
}

// CredentialsFromEnv reads GOOGLE_CREDENTIALS_JSON (default credentials.json)
// and GOOGLE_TOKEN_JSON (default token.json next to the client secret).
func CredentialsFromEnv() Credentials {
	secret := os.Getenv(EnvCredentials)
	if secret == "" {
		secret = "credentials.json"
	}
	token := os.Getenv(EnvToken)
	if token == "" {
		token = filepath.Join(filepath.Dir(secret), "token.json")
	}
	return Credentials{ClientSecretPath: secret, TokenPath: token}
}

// FolderFromEnv returns DRIVE_FOLDER_LAW or ErrFolderNotConfigured.
func FolderFromEnv() (string, error) {
	if id := os.Getenv(EnvLawFolder); id != "" {
		return id, nil
	}
	return "", ErrFolderNotConfigured
}

func (c Credentials) oauthConfig() (*oauth2.Config, error) {
	data, err := os.ReadFile(c.ClientSecretPath)
	if err != nil {
		return nil, fmt.Errorf("read client secret (set %s): %w", EnvCredentials, err)
	}
	cfg, err := google.ConfigFromJSON(data, drive.DriveReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse client secret: %w", err)
	}
	return cfg, nil
}

// AuthURL is the consent page the user opens to obtain an authorization code.
func (c Credentials) AuthURL() (string, error) {
	cfg, err := c.oauthConfig()
	if err != nil {
		return "", err
	}
	cfg.RedirectURL = "urn:ietf:wg:oauth:2.0:oob"
	return cfg.AuthCodeURL("lawrag", oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent")), nil
}

// Exchange trades an authorization code for a token and caches it.
func (c Credentials) Exchange(ctx context.Context, code string) error {
	cfg, err := c.oauthConfig()
	if err != nil {
		return err
	}
	cfg.RedirectURL = "urn:ietf:wg:oauth:2.0:oob"
	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange code: %w", err)
	}
	return saveToken(c.TokenPath, tok)
}

// TokenSource returns a refreshing token source built from the cached token.
func (c Credentials) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	cfg, err := c.oauthConfig()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(c.TokenPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrTokenMissing
	}
	if err != nil {
		return nil, fmt.Errorf("read token: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("decode token %s: %w", c.TokenPath, err)
	}
	return cfg.TokenSource(ctx, &tok), nil
}

func saveToken(path string, tok *oauth2.Token) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
