package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"zilconnect/config"
	"zilconnect/internal/database"
	"zilconnect/internal/metrics"
	"zilconnect/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: "0", Env: "test"},
		JWT: config.JWTConfig{
			AccessSecret:  "test-access-secret",
			RefreshSecret: "test-refresh-secret",
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: time.Hour,
			Issuer:        "zilconnect-test",
		},
		RateLimit: config.RateLimitConfig{Requests: 1000, Window: time.Minute},
	}
}

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	db := database.NewTestDB(t)
	return Setup(cfg, db, logger.NewTest(t), nil, metrics.New(), nil)
}

type apiClient struct {
	t      *testing.T
	engine *gin.Engine
	token  string
}

func (a *apiClient) do(method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	out := map[string]any{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

// signup registers a user and creates their business profile.
func signup(t *testing.T, engine *gin.Engine, name string) (*apiClient, uint) {
	t.Helper()
	c := &apiClient{t: t, engine: engine}
	w, resp := c.do(http.MethodPost, "/api/v1/auth/register", gin.H{
		"email":    name + "@example.com",
		"username": name,
		"password": "s3cret-password",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	c.token = resp["access_token"].(string)
	userID := uint(resp["user"].(map[string]any)["id"].(float64))

	w, _ = c.do(http.MethodPut, "/api/v1/businesses/me", gin.H{
		"name":     name + " Ltd",
		"category": "Fintech",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return c, userID
}

// The happy path across modules: request, accept, message, mark read.
func TestConnectionMessagingFlow(t *testing.T) {
	engine := newTestEngine(t)
	alice, aliceID := signup(t, engine, "alice")
	bob, bobID := signup(t, engine, "bob")

	// Alice requests a connection with Bob.
	w, resp := alice.do(http.MethodPost, "/api/v1/connections", gin.H{
		"user_to": bobID,
		"message": "let's partner up",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	connID := uint(resp["id"].(float64))

	// Messaging is gated until acceptance.
	w, _ = alice.do(http.MethodPost, "/api/v1/messages", gin.H{
		"connection": connID,
		"receiver":   bobID,
		"content":    "too soon",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Bob sees the pending request and his profile shows the right status.
	w, resp = bob.do(http.MethodGet, "/api/v1/connections/pending", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, resp["requests"], 1)

	w, resp = bob.do(http.MethodGet, fmt.Sprintf("/api/v1/connections/status/%d", aliceID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pending", resp["status"])
	assert.Equal(t, false, resp["isSender"])

	// Only Bob can accept; Alice gets 403.
	w, _ = alice.do(http.MethodPost, fmt.Sprintf("/api/v1/connections/%d/accept", connID), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = bob.do(http.MethodPost, fmt.Sprintf("/api/v1/connections/%d/accept", connID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Alice was notified of the acceptance.
	w, resp = alice.do(http.MethodGet, "/api/v1/notifications", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, resp["notifications"], 1)

	// Now messaging flows.
	w, _ = alice.do(http.MethodPost, "/api/v1/messages", gin.H{
		"connection": connID,
		"receiver":   bobID,
		"content":    "welcome aboard",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, resp = bob.do(http.MethodGet, "/api/v1/messages/unread-count", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), resp["unread"])

	w, resp = bob.do(http.MethodGet, "/api/v1/messages/conversations", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, resp["conversations"], 1)

	w, resp = bob.do(http.MethodPut, fmt.Sprintf("/api/v1/messages/connection/%d/read", connID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), resp["marked"])

	w, resp = bob.do(http.MethodGet, "/api/v1/messages/unread-count", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), resp["unread"])
}

func TestAuthRequired(t *testing.T) {
	engine := newTestEngine(t)
	anon := &apiClient{t: t, engine: engine}

	w, _ := anon.do(http.MethodGet, "/api/v1/connections", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = anon.do(http.MethodPost, "/api/v1/messages", gin.H{"connection": 1, "receiver": 1, "content": "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Public surfaces stay open.
	w, _ = anon.do(http.MethodGet, "/api/v1/offers", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = anon.do(http.MethodGet, "/api/v1/products", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = anon.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = anon.do(http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOfferClaimFlow(t *testing.T) {
	engine := newTestEngine(t)
	alice, _ := signup(t, engine, "alice")
	bob, _ := signup(t, engine, "bob")

	w, resp := alice.do(http.MethodPost, "/api/v1/offers", gin.H{
		"title":               "Launch discount",
		"discount_percentage": 15,
		"valid_until":         time.Now().AddDate(0, 1, 0).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	offerID := uint(resp["id"].(float64))

	w, resp = bob.do(http.MethodPost, fmt.Sprintf("/api/v1/offers/%d/claim", offerID), nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	code := resp["claim_code"].(string)
	assert.Regexp(t, `^ZIL[0-9A-Z]{6}$`, code)

	// Second claim by the same user is refused.
	w, _ = bob.do(http.MethodPost, fmt.Sprintf("/api/v1/offers/%d/claim", offerID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Verify, redeem, then the code dies.
	w, resp = alice.do(http.MethodGet, "/api/v1/claims/"+code+"/verify", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["valid"])

	w, _ = alice.do(http.MethodPost, "/api/v1/claims/"+code+"/redeem", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = alice.do(http.MethodGet, "/api/v1/claims/"+code+"/verify", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
