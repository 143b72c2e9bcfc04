package whatsapp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendTextMessage(t *testing.T) {
	var (
		gotPath string
		gotAuth string
		gotBody map[string]any
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	}))
	defer server.Close()

	client := NewClient(Options{BaseURL: server.URL + "/", APIVersion: "v20.0", AccessToken: "tok", PhoneNumberID: "555"})
	resp, err := client.SendTextMessage(context.Background(), SendTextMessageRequest{To: "911234", Body: "due 0"})
	require.NoError(t, err)

	assert.Equal(t, "wamid.1", resp.MessageID())
	assert.Equal(t, "/v20.0/555/messages", gotPath)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "911234", gotBody["to"])
	assert.Equal(t, "text", gotBody["type"])
	assert.Equal(t, map[string]any{"body": "due 0", "preview_url": false}, gotBody["text"])
}

func TestSendTextMessage_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid OAuth access token","type":"OAuthException","code":190}}`))
	}))
	defer server.Close()

	client := NewClient(Options{BaseURL: server.URL, PhoneNumberID: "555"})
	_, err := client.SendTextMessage(context.Background(), SendTextMessageRequest{To: "1", Body: "x"})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, 190, apiErr.Code)
	assert.Equal(t, "Invalid OAuth access token", apiErr.Message)
}

func TestMessageID_Empty(t *testing.T) {
	var resp *SendTextMessageResponse
	assert.Empty(t, resp.MessageID())
}
