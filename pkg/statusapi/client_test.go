package statusapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/speedrun-hq/speedrun-e2e/pkg/logger"
	"github.com/speedrun-hq/speedrun-e2e/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(server.URL, &logger.EmptyLogger{})
}

func TestGetIntentBareObject(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/intents/0xabc", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"0xabc","status":"fulfilled","fulfillment_tx":"0xdef"}`)
	})

	intent, err := client.GetIntent(context.Background(), "0xabc")
	require.NoError(t, err)
	assert.Equal(t, "0xabc", intent.ID)
	assert.Equal(t, models.StatusFulfilled, intent.Status)
	assert.Equal(t, "0xdef", intent.FulfillmentTx)
}

func TestGetIntentWrappedObject(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "intent envelope", body: `{"intent":{"id":"0xabc","status":"settled"}}`},
		{name: "data envelope", body: `{"data":{"id":"0xabc","status":"settled"}}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tc.body)
			})

			intent, err := client.GetIntent(context.Background(), "0xabc")
			require.NoError(t, err)
			assert.Equal(t, "0xabc", intent.ID)
			assert.Equal(t, models.StatusSettled, intent.Status)
		})
	}
}

func TestGetIntentNotFound(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.GetIntent(context.Background(), "0xmissing")
	require.ErrorIs(t, err, ErrIntentNotFound)
}

func TestGetIntentServerError(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, "boom")
	})

	_, err := client.GetIntent(context.Background(), "0xabc")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrIntentNotFound)
	assert.Contains(t, err.Error(), "500")
}

func TestGetIntentEmptyBody(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	})

	_, err := client.GetIntent(context.Background(), "0xabc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no intent")
}

func TestGetIntentContextCancelled(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"0xabc","status":"pending"}`)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetIntent(ctx, "0xabc")
	require.Error(t, err)
}
