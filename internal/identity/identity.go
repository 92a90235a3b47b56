// Package identity wraps Firebase Authentication: admin-side user management
// and token verification, plus email/password sign-in through the Identity
// Toolkit REST API.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid id token")
	ErrEmailExists        = errors.New("email already registered")
)

const signInEndpoint = "https://identitytoolkit.googleapis.com/v1/accounts:signInWithPassword"

type User struct {
	UID         string
	Email       string
	DisplayName string
}

type Provider interface {
	CreateUser(ctx context.Context, email, password, displayName string) (*User, error)
	DeleteUser(ctx context.Context, uid string) error
	// SignIn exchanges email and password for a Firebase ID token.
	SignIn(ctx context.Context, email, password string) (string, error)
	VerifyIDToken(ctx context.Context, idToken string) (*User, error)
}

type Firebase struct {
	auth       *auth.Client
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

func NewFirebase(client *auth.Client, apiKey string, httpClient *http.Client) *Firebase {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Firebase{
		auth:       client,
		apiKey:     apiKey,
		endpoint:   signInEndpoint,
		httpClient: httpClient,
	}
}

func (f *Firebase) CreateUser(ctx context.Context, email, password, displayName string) (*User, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(displayName)
	rec, err := f.auth.CreateUser(ctx, params)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create auth user: %w", err)
	}
	return &User{UID: rec.UID, Email: rec.Email, DisplayName: rec.DisplayName}, nil
}

func (f *Firebase) DeleteUser(ctx context.Context, uid string) error {
	if err := f.auth.DeleteUser(ctx, uid); err != nil {
		return fmt.Errorf("delete auth user %s: %w", uid, err)
	}
	return nil
}

func (f *Firebase) VerifyIDToken(ctx context.Context, idToken string) (*User, error) {
	tok, err := f.auth.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	u := &User{UID: tok.UID}
	if email, ok := tok.Claims["email"].(string); ok {
		u.Email = email
	}
	if name, ok := tok.Claims["name"].(string); ok {
		u.DisplayName = name
	}
	return u, nil
}

func (f *Firebase) SignIn(ctx context.Context, email, password string) (string, error) {
	if f.apiKey == "" {
		return "", errors.New("FIREBASE_WEB_API_KEY is not set")
	}
	payload, _ := json.Marshal(map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	endpoint := f.endpoint + "?key=" + url.QueryEscape(f.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("identity toolkit: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 300 {
		var failed struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.Unmarshal(body, &failed)
		if isCredentialError(failed.Error.Message) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("identity toolkit status %d: %s", resp.StatusCode, truncate(string(body), 300))
	}

	var parsed struct {
		IDToken string `json:"idToken"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("identity toolkit: %w", err)
	}
	if parsed.IDToken == "" {
		return "", errors.New("identity toolkit: empty id token")
	}
	return parsed.IDToken, nil
}

// Identity Toolkit reports codes like "INVALID_PASSWORD" or
// "TOO_MANY_ATTEMPTS_TRY_LATER : ..." in error.message.
func isCredentialError(msg string) bool {
	code := strings.TrimSpace(strings.SplitN(msg, ":", 2)[0])
	switch code {
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "INVALID_EMAIL", "USER_DISABLED":
		return true
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
