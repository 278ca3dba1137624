package di

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"memoryhub/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type apiClient struct {
	t       *testing.T
	handler http.Handler
	token   string
}

func newTestContainer(t *testing.T) *Container {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Environment = "test"
	cfg.LogLevel = "error"
	cfg.JWTSecret = "integration-test-secret"
	cfg.BcryptCost = bcrypt.MinCost

	container, err := InitializeContainer(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(container.Close)
	return container
}

func (c *apiClient) do(method, path string, body interface{}) (int, map[string]interface{}) {
	c.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)

	var out map[string]interface{}
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

func (c *apiClient) register(email string) string {
	c.t.Helper()
	status, body := c.do(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email":    email,
		"password": "password123",
	})
	require.Equal(c.t, http.StatusOK, status, body)
	return body["access_token"].(string)
}

func TestAPI_MemoryLifecycle(t *testing.T) {
	container := newTestContainer(t)
	client := &apiClient{t: t, handler: container.Handler}

	client.token = client.register("owner@example.com")

	status, created := client.do(http.MethodPost, "/api/v1/memories", map[string]interface{}{
		"content":    "Our goal is to ship the API",
		"project_id": "apollo",
		"metadata":   map[string]interface{}{"urgent": true},
	})
	require.Equal(t, http.StatusOK, status, created)
	memoryID := created["id"].(string)
	assert.Equal(t, "goal", created["memory_type"])
	assert.Equal(t, "medium", created["priority"])
	assert.Equal(t, "manual", created["source"])
	assert.Equal(t, "apollo", created["project_id"])
	// 80 for a goal, -10 for short content, +20 urgent
	assert.Equal(t, float64(90), created["importance_score"])

	status, legacy := client.do(http.MethodPost, "/api/v1/memories/add", map[string]interface{}{
		"messages": []map[string]string{{"role": "user", "content": "We decided to use Go"}},
	})
	require.Equal(t, http.StatusOK, status, legacy)
	assert.Equal(t, "chatgpt", legacy["source"])
	assert.Equal(t, "decision", legacy["memory_type"])
	assert.Nil(t, legacy["project_id"])

	status, search := client.do(http.MethodPost, "/api/v1/memories/search", map[string]interface{}{"query": "API"})
	require.Equal(t, http.StatusOK, status, search)
	assert.Equal(t, float64(1), search["total"])
	assert.Equal(t, memoryID, search["results"].([]interface{})[0].(map[string]interface{})["id"])
	assert.Empty(t, search["recall_results"])

	status, list := client.do(http.MethodGet, "/api/v1/memories", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(2), list["total"])

	status, projects := client.do(http.MethodGet, "/api/v1/memories/projects", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []interface{}{"apollo"}, projects["projects"])

	status, got := client.do(http.MethodGet, "/api/v1/memories/"+memoryID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Our goal is to ship the API", got["content"])

	stranger := &apiClient{t: t, handler: container.Handler}
	stranger.token = stranger.register("stranger@example.com")
	status, _ = stranger.do(http.MethodGet, "/api/v1/memories/"+memoryID, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = stranger.do(http.MethodDelete, "/api/v1/memories/"+memoryID, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, deleted := client.do(http.MethodDelete, "/api/v1/memories/"+memoryID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, memoryID, deleted["memory_id"])

	status, _ = client.do(http.MethodGet, "/api/v1/memories/"+memoryID, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = client.do(http.MethodDelete, "/api/v1/memories/"+memoryID, nil)
	assert.Equal(t, http.StatusNotFound, status)

	// the deletion invalidated the cached project list
	status, projects = client.do(http.MethodGet, "/api/v1/memories/projects", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, projects["projects"])
}

func TestAPI_Validation(t *testing.T) {
	container := newTestContainer(t)
	client := &apiClient{t: t, handler: container.Handler}
	client.token = client.register("v@example.com")

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		want   int
	}{
		{"blank content", http.MethodPost, "/api/v1/memories", map[string]string{"content": "   "}, http.StatusBadRequest},
		{"unknown memory type", http.MethodPost, "/api/v1/memories", map[string]string{"content": "x", "memory_type": "poem"}, http.StatusBadRequest},
		{"unknown source", http.MethodPost, "/api/v1/memories", map[string]string{"content": "x", "source": "fax"}, http.StatusBadRequest},
		{"empty legacy messages", http.MethodPost, "/api/v1/memories/add", map[string]interface{}{"messages": []interface{}{}}, http.StatusBadRequest},
		{"search limit zero", http.MethodPost, "/api/v1/memories/search", map[string]interface{}{"query": "x", "limit": 0}, http.StatusBadRequest},
		{"search limit too large", http.MethodPost, "/api/v1/memories/search", map[string]interface{}{"query": "x", "limit": 101}, http.StatusBadRequest},
		{"search without query", http.MethodPost, "/api/v1/memories/search", map[string]interface{}{}, http.StatusBadRequest},
		{"malformed id", http.MethodGet, "/api/v1/memories/not-a-uuid", nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := client.do(tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, status, body)
		})
	}
}

func TestAPI_Auth(t *testing.T) {
	container := newTestContainer(t)
	client := &apiClient{t: t, handler: container.Handler}

	client.register("dup@example.com")

	status, _ := client.do(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email": "dup@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = client.do(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email": "short@example.com", "password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body := client.do(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email": "dup@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "bearer", body["token_type"])

	status, _ = client.do(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email": "dup@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = client.do(http.MethodGet, "/api/v1/memories", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	client.token = "garbage"
	status, _ = client.do(http.MethodGet, "/api/v1/memories", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAPI_RateLimit(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Environment = "test"
	cfg.LogLevel = "error"
	cfg.JWTSecret = "integration-test-secret"
	cfg.BcryptCost = bcrypt.MinCost
	cfg.RateLimitRequests = 2

	container, err := InitializeContainer(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(container.Close)

	client := &apiClient{t: t, handler: container.Handler}
	client.token = client.register("busy@example.com")

	for i := 0; i < 2; i++ {
		status, _ := client.do(http.MethodGet, "/api/v1/memories", nil)
		require.Equal(t, http.StatusOK, status)
	}
	status, _ := client.do(http.MethodGet, "/api/v1/memories", nil)
	assert.Equal(t, http.StatusTooManyRequests, status)
}

func TestAPI_ServiceEndpoints(t *testing.T) {
	container := newTestContainer(t)
	client := &apiClient{t: t, handler: container.Handler}

	status, root := client.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Memory Orchestration Platform", root["service"])
	assert.Equal(t, "2.0.0", root["version"])

	status, health := client.do(http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "degraded", health["status"])

	status, ready := client.do(http.MethodGet, "/ready", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ready", ready["status"])

	status, _ = client.do(http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = client.do(http.MethodGet, "/nowhere", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestProvideProjectsCache(t *testing.T) {
	cfg := config.DefaultConfig()

	assert.NotNil(t, ProvideProjectsCache(cfg, ProvideCache()))

	cfg.StorageBackend = config.StorageDynamoDB
	assert.Nil(t, ProvideProjectsCache(cfg, ProvideCache()))
}
