package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	jose "gopkg.in/go-jose/go-jose.v2"
	"gopkg.in/go-jose/go-jose.v2/jwt"

	"github.com/kendall-kelly/restaurant-floor-api/models"
)

// TestHealthEndpointMethod tests that only GET method is allowed
func TestHealthEndpointMethod(t *testing.T) {
	setupTestFloor(t)
	router := authenticatedRouter(t, testConfig())

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(method, "/api/v1/health", nil))
		assert.Equal(t, http.StatusNotFound, w.Code, method+" should not be allowed")
	}
}

// TestAPIV1Prefix tests that routes require the /api/v1 prefix
func TestAPIV1Prefix(t *testing.T) {
	setupTestFloor(t)
	router := authenticatedRouter(t, testConfig())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusNotFound, w.Code, "Endpoint should require /api/v1 prefix")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusOK, w.Code, "Endpoint should work with /api/v1 prefix")
}

func TestDatabaseStatusIntegration(t *testing.T) {
	setupTestFloor(t)
	router := authenticatedRouter(t, testConfig())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/database/status", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Contains(t, response["tables"], "dishes")
	assert.Contains(t, response["tables"], "order_items")
}

// TestFloorRoutesRequireToken checks every worker route rejects anonymous calls
func TestFloorRoutesRequireToken(t *testing.T) {
	setupTestFloor(t)
	router := authenticatedRouter(t, testConfig())

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/me"},
		{http.MethodPost, "/api/v1/orders"},
		{http.MethodGet, "/api/v1/orders/open"},
		{http.MethodGet, "/api/v1/orders/1"},
		{http.MethodPost, "/api/v1/orders/1/close"},
		{http.MethodGet, "/api/v1/tables/1/orders"},
		{http.MethodPost, "/api/v1/tables/1/bill"},
		{http.MethodGet, "/api/v1/chef/dishes"},
		{http.MethodPut, "/api/v1/chef/dishes/1/quantity"},
		{http.MethodPost, "/api/v1/receipts/print"},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(route.method, route.path, nil))
			assert.Equal(t, http.StatusUnauthorized, w.Code)

			var response map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.False(t, response["success"].(bool))
			assert.Equal(t, "INVALID_TOKEN", response["error"].(map[string]interface{})["code"])
		})
	}
}

func TestInvalidTokens(t *testing.T) {
	f := setupTestFloor(t)
	f.seed(t, &models.Worker{Subject: "auth0|waiter", Fullname: "Aziz Karimov", Role: models.RoleWaiter})
	router := authenticatedRouter(t, testConfig())

	forged := func() string {
		signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.HS256, Key: []byte("some-other-secret-entirely-000000")}, nil)
		require.NoError(t, err)
		token, err := jwt.Signed(signer).Claims(jwt.Claims{
			Issuer:   "floor-api",
			Subject:  "auth0|waiter",
			Audience: jwt.Audience{"floor-api"},
			Expiry:   jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}).CompactSerialize()
		require.NoError(t, err)
		return token
	}

	tests := []struct {
		name   string
		header string
	}{
		{"garbage", "Bearer not-a-jwt"},
		{"wrong scheme", "Basic " + signToken(t, "auth0|waiter", models.RoleWaiter, "")},
		{"forged signature", "Bearer " + forged()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
			req.Header.Set("Authorization", tt.header)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "auth0|waiter", models.RoleWaiter, ""))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
