package inspector

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnouncePresence(t *testing.T) {
	var body atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		body.Store(string(b))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	AnnouncePresence(context.Background(), srv.URL, slog.Default())

	require.NotNil(t, body.Load())
	assert.JSONEq(t, `{"setInPage":true}`, body.Load().(string))
}

func TestAnnouncePresenceRetriesOnFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	AnnouncePresence(context.Background(), srv.URL, slog.Default())

	assert.EqualValues(t, 2, calls.Load())
}

func TestAnnouncePresenceNoURLIsNoOp(t *testing.T) {
	// Must return immediately without panicking.
	AnnouncePresence(context.Background(), "", slog.Default())
}
