package chatbot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRules(t *testing.T) {
	cases := []struct {
		message string
		want    string
	}{
		{"What is the PRICE of this?", "price"},
		{"when is delivery?", "Delivery"},
		{"can I get a refund", "Refund"},
		{"hello there", "help"},
	}
	for _, c := range cases {
		reply, err := Rules{}.Reply(context.Background(), c.message)
		require.NoError(t, err)
		assert.Contains(t, reply, c.want, "message %q", c.message)
	}
}

func TestAPI(t *testing.T) {
	t.Run("returns the model reply", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"content":[{"text":"use the Buy button"}]}`))
		}))
		defer srv.Close()

		api := &API{Key: "test-key", Model: "test-model", URL: srv.URL}
		reply, err := api.Reply(context.Background(), "how do I buy?")
		require.NoError(t, err)
		assert.Equal(t, "use the Buy button", reply)
	})

	t.Run("non-200 is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		api := &API{Key: "test-key", URL: srv.URL}
		_, err := api.Reply(context.Background(), "hi")
		assert.Error(t, err)
	})
}

func TestFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	bot := fallback{
		primary:   &API{Key: "test-key", URL: srv.URL},
		secondary: Rules{},
	}
	reply, err := bot.Reply(context.Background(), "what is the price?")
	require.NoError(t, err)
	assert.Contains(t, reply, "price")
}
