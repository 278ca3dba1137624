package recall

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"memoryhub/application/ports"
	pkgerrors "memoryhub/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, key string) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		BaseURL:         srv.URL + "/",
		APIKey:          key,
		Timeout:         time.Second,
		BreakerFailures: 2,
		BreakerCooldown: time.Minute,
	}, srv.Client(), zap.NewNop())
}

func TestClient_AddSendsRecord(t *testing.T) {
	var got addRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/memories/", r.URL.Path)
		assert.Equal(t, "Token secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`[{"id":"abc"}]`))
	}, "secret")

	err := client.Add(context.Background(), ports.RecallRecord{
		UserID:   "user-1",
		Content:  "ship it",
		Metadata: map[string]interface{}{"memory_id": "m-1", "category": "decision"},
	})
	require.NoError(t, err)

	assert.Equal(t, "user-1", got.UserID)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "ship it", got.Messages[0].Content)
	assert.Equal(t, "m-1", got.Metadata["memory_id"])
}

func TestClient_DisabledWithoutKey(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}, "")

	assert.False(t, client.Enabled())
	require.NoError(t, client.Add(context.Background(), ports.RecallRecord{UserID: "u", Content: "c"}))
	results, err := client.Search(context.Background(), "u", "q", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestClient_SearchAcceptsBothShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"bare list", `[{"memory":"a"},{"memory":"b"}]`, 2},
		{"wrapped", `{"results":[{"memory":"a"}]}`, 1},
		{"null", `null`, 0},
		{"wrapped empty", `{"results":null}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v1/memories/search/", r.URL.Path)
				var req searchRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, "deploy", req.Query)
				assert.Equal(t, "user-1", req.UserID)
				_, _ = w.Write([]byte(tt.body))
			}, "secret")

			results, err := client.Search(context.Background(), "user-1", "deploy", 10)
			require.NoError(t, err)
			assert.NotNil(t, results)
			assert.Len(t, results, tt.want)
		})
	}
}

func TestClient_ErrorStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}, "secret")

	err := client.Add(context.Background(), ports.RecallRecord{UserID: "u", Content: "c"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeExternal))
	assert.Contains(t, err.Error(), "external service 'recall' error")
}

func TestClient_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}, "secret")

	ctx := context.Background()
	record := ports.RecallRecord{UserID: "u", Content: "c"}
	require.Error(t, client.Add(ctx, record))
	require.Error(t, client.Add(ctx, record))

	err := client.Add(ctx, record)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeUnavailable))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}
