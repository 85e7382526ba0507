package enrich

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) Provider {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	provider, err := NewClient(log, &Config{URL: srv.URL, AuthToken: "test-token"})
	require.NoError(t, err)
	return provider
}

func TestNewClient_RequiresURL(t *testing.T) {
	log := logrus.New()

	_, err := NewClient(log, &Config{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrURLRequired)
}

func TestClient_Lookup_Match(t *testing.T) {
	provider := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/company/lookup", r.URL.Path)
		assert.Equal(t, "新疆XYZ", r.URL.Query().Get("name"))
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"canonical_id":"COMP500"}`))
	})

	match, err := provider.Lookup(context.Background(), "新疆XYZ")
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "COMP500", match.CanonicalID)
}

func TestClient_Lookup_NotFound(t *testing.T) {
	provider := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	match, err := provider.Lookup(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestClient_Lookup_EmptyCanonicalIsMiss(t *testing.T) {
	provider := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"canonical_id":""}`))
	})

	match, err := provider.Lookup(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestClient_Lookup_ServerError(t *testing.T) {
	provider := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := provider.Lookup(context.Background(), "acme")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
}

func TestClient_Lookup_ContextCanceled(t *testing.T) {
	provider := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"canonical_id":"COMP1"}`))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := provider.Lookup(ctx, "acme")
	require.Error(t, err)
}
