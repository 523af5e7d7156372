package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBotAPI answers webhook calls and remembers the current webhook URL.
type fakeBotAPI struct {
	mu      sync.Mutex
	webhook string
	calls   []string
	forms   map[string]url.Values
}

func newFakeBotAPI(t *testing.T, webhook string) *fakeBotAPI {
	t.Helper()
	f := &fakeBotAPI{webhook: webhook, forms: map[string]url.Values{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		f.mu.Lock()
		defer f.mu.Unlock()

		method := r.URL.Path[len("/bot123:abc/"):]
		f.calls = append(f.calls, method)
		f.forms[method] = r.PostForm

		w.Header().Set("Content-Type", "application/json")
		switch method {
		case "getWebhookInfo":
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"ok":     true,
				"result": map[string]interface{}{"url": f.webhook, "pending_update_count": 0},
			})
		case "deleteWebhook":
			f.webhook = ""
			_, _ = w.Write([]byte(`{"ok":true,"result":true}`))
		case "setWebhook":
			f.webhook = r.PostForm.Get("url")
			_, _ = w.Write([]byte(`{"ok":true,"result":true}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"ok":false,"description":"Not Found"}`))
		}
	}))
	t.Cleanup(srv.Close)

	t.Setenv("TELEGRAM_API_URL", srv.URL)
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	return f
}

func (f *fakeBotAPI) snapshot() ([]string, map[string]url.Values) {
	f.mu.Lock()
	defer f.mu.Unlock()
	forms := make(map[string]url.Values, len(f.forms))
	for k, v := range f.forms {
		forms[k] = v
	}
	return append([]string(nil), f.calls...), forms
}

func TestCLI_BotWebhookInfo(t *testing.T) {
	newTestEnv(t)
	newFakeBotAPI(t, "https://bot.example.com/telegram/webhook")

	code, out := runCLI(t, "bot", "webhook", "info")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "https://bot.example.com/telegram/webhook")
	assert.Contains(t, out, "pending_updates")
}

func TestCLI_BotWebhookRemove(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantForm url.Values
	}{
		{name: "drops pending updates", args: nil, wantForm: url.Values{"drop_pending_updates": {"true"}}},
		{name: "keep pending", args: []string{"--keep-pending"}, wantForm: url.Values{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			newTestEnv(t)
			api := newFakeBotAPI(t, "https://bot.example.com/telegram/webhook")

			code, out := runCLI(t, append([]string{"-o", "json", "bot", "webhook", "remove"}, tt.args...)...)
			require.Equal(t, 0, code)

			var info map[string]interface{}
			require.NoError(t, json.Unmarshal([]byte(out), &info), out)
			assert.Equal(t, "", info["url"], "polling mode after removal")

			calls, forms := api.snapshot()
			assert.Equal(t, []string{"deleteWebhook", "getWebhookInfo"}, calls)
			assert.Equal(t, tt.wantForm, forms["deleteWebhook"])
		})
	}
}

func TestCLI_BotWebhookSet(t *testing.T) {
	t.Run("argument and secret from env", func(t *testing.T) {
		newTestEnv(t)
		api := newFakeBotAPI(t, "")
		t.Setenv("TELEGRAM_WEBHOOK_SECRET", "env-secret")

		code, out := runCLI(t, "bot", "webhook", "set", "https://bot.example.com/hook")
		require.Equal(t, 0, code)
		assert.Contains(t, out, "https://bot.example.com/hook")

		calls, forms := api.snapshot()
		assert.Equal(t, []string{"setWebhook", "getWebhookInfo"}, calls)
		assert.Equal(t, url.Values{
			"url":                  {"https://bot.example.com/hook"},
			"secret_token":         {"env-secret"},
			"drop_pending_updates": {"true"},
		}, forms["setWebhook"])
	})

	t.Run("url from env and secret flag", func(t *testing.T) {
		newTestEnv(t)
		api := newFakeBotAPI(t, "")
		t.Setenv("TELEGRAM_WEBHOOK_URL", "https://env.example.com/hook")
		t.Setenv("TELEGRAM_WEBHOOK_SECRET", "env-secret")

		code, _ := runCLI(t, "bot", "webhook", "set", "--secret", "flag-secret", "--keep-pending")
		require.Equal(t, 0, code)

		_, forms := api.snapshot()
		assert.Equal(t, url.Values{
			"url":          {"https://env.example.com/hook"},
			"secret_token": {"flag-secret"},
		}, forms["setWebhook"])
	})
}

func TestCLI_BotWebhookSet_RejectsBadURLBeforeCalling(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "missing", args: nil},
		{name: "plain http", args: []string{"http://bot.example.com/hook"}},
		{name: "no host", args: []string{"https:///hook"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			newTestEnv(t)
			api := newFakeBotAPI(t, "")

			code, out := runCLI(t, append([]string{"-o", "json", "bot", "webhook", "set"}, tt.args...)...)
			assert.Equal(t, 1, code)
			assert.Contains(t, out, `"code": "validation"`)

			calls, _ := api.snapshot()
			assert.Empty(t, calls)
		})
	}
}

func TestCLI_BotWebhook_RequiresToken(t *testing.T) {
	newTestEnv(t)

	code, out := runCLI(t, "-o", "json", "bot", "webhook", "info")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "TELEGRAM_BOT_TOKEN is not set")
}
