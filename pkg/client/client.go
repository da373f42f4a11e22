package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const botSecretHeader = "X-Bot-Secret"

type RegisterRequest struct {
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type Ticket struct {
	Code      string    `json:"telegramCode"`
	BotURL    string    `json:"botUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type User struct {
	ID              int64     `json:"id"`
	FullName        string    `json:"fullName"`
	Phone           string    `json:"phone"`
	Role            string    `json:"role"`
	Balance         int64     `json:"balance"`
	EnrolledCourses []int64   `json:"enrolledCourses"`
	CreatedAt       time.Time `json:"createdAt"`
}

// AuthResponse is the common answer of verify, check and login.
type AuthResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
	User    *User  `json:"user,omitempty"`
}

// APIError is returned for answers outside the 2xx range.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api: status %d: %s", e.StatusCode, e.Message)
}

// Temporary reports server side failures.
func (e *APIError) Temporary() bool {
	return e.StatusCode >= http.StatusInternalServerError
}

type Client struct {
	baseURL   string
	http      *http.Client
	botSecret string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithBotSecret(secret string) Option {
	return func(c *Client) { c.botSecret = secret }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*Ticket, error) {
	var out struct {
		Ticket
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/telegram/register", req, nil, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, &APIError{StatusCode: http.StatusOK, Message: out.Message}
	}
	return &out.Ticket, nil
}

// Verify binds the code to a Telegram chat. A rejected code comes back as Success=false.
func (c *Client) Verify(ctx context.Context, code string, chatID int64) (*AuthResponse, error) {
	headers := map[string]string{}
	if c.botSecret != "" {
		headers[botSecretHeader] = c.botSecret
	}
	var out AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/telegram/verify",
		map[string]interface{}{"code": code, "chatId": chatID}, headers, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Check(ctx context.Context, code string) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/telegram/check", map[string]string{"code": code}, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Cleanup(ctx context.Context) (int, error) {
	var out struct {
		Removed int `json:"removed"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/telegram/cleanup", nil, nil, &out); err != nil {
		return 0, err
	}
	return out.Removed, nil
}

func (c *Client) Login(ctx context.Context, phone, password string) (*AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login",
		map[string]string{"phone": phone, "password": password}, nil, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Profile(ctx context.Context, token string) (*User, error) {
	var out struct {
		User *User `json:"user"`
	}
	err := c.do(ctx, http.MethodGet, "/api/user/profile", nil,
		map[string]string{"Authorization": "Bearer " + token}, &out)
	if err != nil {
		return nil, err
	}
	return out.User, nil
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, headers map[string]string, out interface{}) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return errors.Wrap(err, "client: encode request")
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return errors.Wrap(err, "client: build request")
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "client: %s %s", method, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return &APIError{StatusCode: resp.StatusCode, Message: e.Message}
	}
	if out == nil {
		return nil
	}
	return errors.Wrap(json.NewDecoder(resp.Body).Decode(out), "client: decode response")
}
