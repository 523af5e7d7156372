package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	method string
	path   string
	form   url.Values
}

type botAPI struct {
	*httptest.Server

	mu   sync.Mutex
	reqs []recordedRequest
}

func (b *botAPI) requests() []recordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]recordedRequest(nil), b.reqs...)
}

// newBotAPI serves body for every request and records what it received.
func newBotAPI(t *testing.T, status int, body string) *botAPI {
	t.Helper()
	b := &botAPI{}
	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		b.mu.Lock()
		b.reqs = append(b.reqs, recordedRequest{method: r.Method, path: r.URL.Path, form: r.PostForm})
		b.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(b.Close)
	return b
}

func TestClient_GetMe(t *testing.T) {
	srv := newBotAPI(t, http.StatusOK,
		`{"ok":true,"result":{"id":42,"is_bot":true,"first_name":"Seller","username":"seller_bot"}}`)

	info, err := NewClient(srv.URL+"/", "123:abc", nil).GetMe(context.Background())
	require.NoError(t, err)
	got := srv.requests()
	require.Len(t, got, 1)
	assert.Equal(t, http.MethodGet, got[0].method)
	assert.Equal(t, "/bot123:abc/getMe", got[0].path)
	assert.Equal(t, BotInfo{ID: 42, Username: "seller_bot", FirstName: "Seller"}, info)
}

func TestClient_Unauthorized(t *testing.T) {
	srv := newBotAPI(t, http.StatusUnauthorized, `{"ok":false,"error_code":401,"description":"Unauthorized"}`)

	_, err := NewClient(srv.URL, "123:secret", nil).GetMe(context.Background())
	require.Error(t, err)
	assert.Equal(t, "getMe: HTTP 401: Unauthorized", err.Error())
}

func TestClient_NonJSONResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	_, err := NewClient(srv.URL, "123:secret", nil).GetMe(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 502")
}

func TestClient_TransportErrorHidesToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL
	srv.Close()

	_, err := NewClient(base, "123:topsecret", nil).GetMe(context.Background())
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "topsecret")
	assert.Contains(t, err.Error(), "/bot<token>/getMe")

	var urlErr *url.Error
	assert.ErrorAs(t, err, &urlErr)
}

func TestClient_CancelledKeepsCause(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A one-letter token must not mangle the rest of the message.
	_, err := NewClient(srv.URL, "t", nil).GetMe(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "context canceled")
	assert.Contains(t, err.Error(), "/bot<token>/getMe")
}

func TestClient_GetWebhookInfo(t *testing.T) {
	srv := newBotAPI(t, http.StatusOK, `{"ok":true,"result":{
		"url":"https://bot.example.com/telegram/webhook",
		"has_custom_certificate":false,
		"pending_update_count":3,
		"max_connections":40,
		"last_error_date":1700000000,
		"last_error_message":"Connection refused"}}`)

	info, err := NewClient(srv.URL, "123:abc", nil).GetWebhookInfo(context.Background())
	require.NoError(t, err)
	got := srv.requests()
	require.Len(t, got, 1)
	assert.Equal(t, "/bot123:abc/getWebhookInfo", got[0].path)
	assert.Equal(t, WebhookInfo{
		URL:                "https://bot.example.com/telegram/webhook",
		PendingUpdateCount: 3,
		MaxConnections:     40,
		LastErrorDate:      1700000000,
		LastErrorMessage:   "Connection refused",
	}, info)
}

func TestClient_DeleteWebhook(t *testing.T) {
	tests := []struct {
		name     string
		drop     bool
		wantForm url.Values
	}{
		{name: "drop pending", drop: true, wantForm: url.Values{"drop_pending_updates": {"true"}}},
		{name: "keep pending", drop: false, wantForm: url.Values{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newBotAPI(t, http.StatusOK, `{"ok":true,"result":true,"description":"Webhook was deleted"}`)

			require.NoError(t, NewClient(srv.URL, "123:abc", nil).DeleteWebhook(context.Background(), tt.drop))
			got := srv.requests()
			require.Len(t, got, 1)
			assert.Equal(t, "/bot123:abc/deleteWebhook", got[0].path)
			assert.Equal(t, tt.wantForm, got[0].form)
		})
	}
}

func TestClient_SetWebhook(t *testing.T) {
	srv := newBotAPI(t, http.StatusOK, `{"ok":true,"result":true,"description":"Webhook was set"}`)

	err := NewClient(srv.URL, "123:abc", nil).SetWebhook(context.Background(), WebhookOptions{
		URL:                "https://bot.example.com/telegram/webhook",
		SecretToken:        "hook-secret",
		DropPendingUpdates: true,
	})
	require.NoError(t, err)
	got := srv.requests()
	require.Len(t, got, 1)
	assert.Equal(t, http.MethodPost, got[0].method)
	assert.Equal(t, "/bot123:abc/setWebhook", got[0].path)
	assert.Equal(t, url.Values{
		"url":                  {"https://bot.example.com/telegram/webhook"},
		"secret_token":         {"hook-secret"},
		"drop_pending_updates": {"true"},
	}, got[0].form)
}

func TestClient_SetWebhook_Rejected(t *testing.T) {
	srv := newBotAPI(t, http.StatusBadRequest,
		`{"ok":false,"error_code":400,"description":"Bad Request: bad webhook: HTTPS url must be provided for webhook"}`)

	err := NewClient(srv.URL, "123:abc", nil).SetWebhook(context.Background(), WebhookOptions{URL: "http://insecure"})
	require.Error(t, err)
	assert.Equal(t, "setWebhook: HTTP 400: Bad Request: bad webhook: HTTPS url must be provided for webhook", err.Error())
}

func TestClient_SetWebhook_RequiresURL(t *testing.T) {
	srv := newBotAPI(t, http.StatusOK, `{"ok":true,"result":true}`)

	err := NewClient(srv.URL, "123:abc", nil).SetWebhook(context.Background(), WebhookOptions{})
	require.Error(t, err)
	assert.Empty(t, srv.requests(), "no request is sent")
}
