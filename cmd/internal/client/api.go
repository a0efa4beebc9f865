package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// User mirrors the server's user representation.
type User struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Age       int       `json:"age"`
	Gender    string    `json:"gender"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// RegisterInput carries the registration payload.
type RegisterInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Age       int    `json:"age"`
	Gender    string `json:"gender"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
}

// APIError is a non-2xx response from the server, carrying the server's
// error message so callers can surface it verbatim.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// IsAPIError reports whether err is an APIError and returns it.
func IsAPIError(err error) (*APIError, bool) {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// API is an HTTP client for the keygate auth endpoints.
type API struct {
	baseURL string
	http    *http.Client
}

// NewAPI constructs an API client for the given base URL.
// A nil httpClient falls back to a client with a sane timeout.
func NewAPI(baseURL string, httpClient *http.Client) *API {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &API{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// Register creates a new account and returns the issued session token.
func (a *API) Register(ctx context.Context, in RegisterInput) (string, error) {
	var resp struct {
		Message string `json:"message"`
		Token   string `json:"token"`
	}
	if err := a.do(ctx, http.MethodPost, "/register", in, "", &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

// Login exchanges credentials for a session token.
func (a *API) Login(ctx context.Context, username, password string) (string, error) {
	body := map[string]string{"username": username, "password": password}
	var resp struct {
		Token string `json:"token"`
	}
	if err := a.do(ctx, http.MethodPost, "/login", body, "", &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

// ValidateToken asks the server whether token is currently valid and returns
// the authenticated user on success. Any rejection surfaces as an APIError.
func (a *API) ValidateToken(ctx context.Context, token string) (User, error) {
	var resp struct {
		Valid bool `json:"valid"`
		User  User `json:"user"`
	}
	if err := a.do(ctx, http.MethodGet, "/validate-token", nil, token, &resp); err != nil {
		return User{}, err
	}
	if !resp.Valid {
		return User{}, &APIError{Status: http.StatusOK, Message: "server reported token as not valid"}
	}
	return resp.User, nil
}

func (a *API) do(ctx context.Context, method, path string, body any, token string, out any) error {
	var reader io.Reader
	if body != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := serverMessage(raw)
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func serverMessage(raw []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		return body.Error
	}
	return strings.TrimSpace(string(raw))
}
