package es

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/artesan_shop/internal/config"
)

func fakeCluster(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, `{"name":"node-1","cluster_name":"shop","version":{"number":"9.0.0"}}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewClient_DisabledWithoutURL(t *testing.T) {
	client, err := NewClient(context.Background(), &config.Config{})
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestNewClient_ChecksCluster(t *testing.T) {
	srv := fakeCluster(t, http.StatusOK)
	client, err := NewClient(context.Background(), &config.Config{ESURL: srv.URL})
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestNewClient_ClusterError(t *testing.T) {
	srv := fakeCluster(t, http.StatusUnauthorized)
	client, err := NewClient(context.Background(), &config.Config{ESURL: srv.URL, ESUser: "elastic", ESPassword: "wrong"})
	require.Error(t, err)
	assert.Nil(t, client)
}
