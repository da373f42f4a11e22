package bot

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"proxedu/pkg/client"
	"proxedu/service"
)

// ServiceVerifier calls the auth service in process; used when the bot is embedded in the API.
type ServiceVerifier struct {
	auth service.AuthService
}

func NewServiceVerifier(auth service.AuthService) *ServiceVerifier {
	return &ServiceVerifier{auth: auth}
}

func (v *ServiceVerifier) Verify(ctx context.Context, code string, chatID int64) (*Verification, error) {
	_, err := v.auth.Verify(ctx, code, chatID)
	switch {
	case errors.Is(err, service.ErrCodeNotFound):
		return &Verification{Message: "Kod noto'g'ri yoki muddati tugagan"}, nil
	case errors.Is(err, service.ErrDuplicatePhone):
		return &Verification{Message: "Bu telefon raqam allaqachon ro'yxatdan o'tgan"}, nil
	case err != nil:
		return nil, err
	}
	return &Verification{Accepted: true}, nil
}

// ClientVerifier calls the backend over HTTP; used by the standalone bot.
type ClientVerifier struct {
	api *client.Client
}

func NewClientVerifier(api *client.Client) *ClientVerifier {
	return &ClientVerifier{api: api}
}

func (v *ClientVerifier) Verify(ctx context.Context, code string, chatID int64) (*Verification, error) {
	resp, err := v.api.Verify(ctx, code, chatID)
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest {
		return &Verification{Message: apiErr.Message}, nil
	}
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return &Verification{Message: resp.Message}, nil
	}
	return &Verification{Accepted: true}, nil
}
