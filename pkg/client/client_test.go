package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifySendsBotSecret(t *testing.T) {
	var gotSecret string
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSecret = r.Header.Get(botSecretHeader)
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false, "message": "Kod noto'g'ri yoki muddati tugagan",
		})
	}))
	defer srv.Close()

	resp, err := New(srv.URL, WithBotSecret("s3cret")).Verify(context.Background(), "AB12CD34", 555)
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "Kod noto'g'ri yoki muddati tugagan", resp.Message)
	assert.Equal(t, "s3cret", gotSecret)
	assert.Equal(t, "AB12CD34", gotBody["code"])
	assert.Equal(t, float64(555), gotBody["chatId"])
}

func TestProfileUsesBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer jwt-token" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "Token topilmadi"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"user":    map[string]interface{}{"id": 7, "phone": "+998901234567"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL + "/")
	user, err := c.Profile(context.Background(), "jwt-token")
	require.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)

	_, err = c.Profile(context.Background(), "other")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Token topilmadi", apiErr.Message)
	assert.False(t, apiErr.Temporary())
}
