package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ray-remotestate/posgate/cart"
	"github.com/ray-remotestate/posgate/config"
	"github.com/ray-remotestate/posgate/handlers"
	"github.com/ray-remotestate/posgate/models"
	"github.com/ray-remotestate/posgate/notify"
	"github.com/ray-remotestate/posgate/session"
	"github.com/ray-remotestate/posgate/utils"
)

var secret = []byte("server-secret")

// readOnlyAPI serves the two list queries; any other call panics.
type readOnlyAPI struct {
	handlers.API
}

func (readOnlyAPI) Floors(context.Context, string) ([]models.Floor, error) {
	return []models.Floor{{ID: "f1", Tables: []models.Table{{ID: "t1", Status: models.TableAvailable}}}}, nil
}

func (readOnlyAPI) AllOrders(context.Context, string) ([]models.Order, error) {
	return nil, nil
}

func newServer(t *testing.T) http.Handler {
	t.Helper()
	store := session.NewStore(session.Options{Policy: config.PolicyClaims})
	h := handlers.New(readOnlyAPI{}, store, cart.NewRegistry(), notify.Nop{}, handlers.Options{LateAfterMinutes: 15})
	return SetupRoutes(h, store, Options{Secret: secret, CORSOrigins: []string{"http://pos.local"}}).Handler()
}

func get(t *testing.T, srv http.Handler, path, role string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, path, nil)
	if role != "" {
		tok, err := utils.GenerateAccessToken(secret, "u1", "a@demo.com", role, "b1", time.Hour)
		require.NoError(t, err)
		r.AddCookie(&http.Cookie{Name: session.CookieName, Value: tok})
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, r)
	return w
}

func TestRoutes(t *testing.T) {
	srv := newServer(t)

	cases := []struct {
		name     string
		path     string
		role     string
		status   int
		location string
	}{
		{"health", "/health", "", http.StatusOK, ""},
		{"login page", "/login", "", http.StatusOK, ""},
		{"anonymous tables", "/waiter/tables", "", http.StatusTemporaryRedirect, "/login"},
		{"waiter tables", "/waiter/tables", "WAITER", http.StatusOK, ""},
		{"kitchen bounced from tables", "/waiter/tables", "KITCHEN", http.StatusTemporaryRedirect, "/kitchen/orders"},
		{"kitchen queue", "/kitchen/orders", "KITCHEN", http.StatusOK, ""},
		{"waiter bounced from kitchen", "/kitchen/orders", "WAITER", http.StatusTemporaryRedirect, "/waiter/tables"},
		{"admin in kitchen", "/kitchen/orders", "ADMIN", http.StatusOK, ""},
		{"admin in waiter", "/waiter/tables", "ADMIN", http.StatusOK, ""},
		{"root for kitchen", "/", "KITCHEN", http.StatusTemporaryRedirect, "/kitchen/orders"},
		{"root for waiter", "/", "WAITER", http.StatusTemporaryRedirect, "/waiter/tables"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := get(t, srv, tc.path, tc.role)
			assert.Equal(t, tc.status, w.Code)
			if tc.location != "" {
				assert.Equal(t, tc.location, w.Header().Get("Location"))
			}
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		})
	}
}

func TestUnknownRoleIsForbiddenInSections(t *testing.T) {
	w := get(t, newServer(t), "/waiter/tables", "CASHIER")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	r := httptest.NewRequest(http.MethodOptions, "/login", nil)
	r.Header.Set("Origin", "http://pos.local")
	r.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	newServer(t).ServeHTTP(w, r)

	assert.Equal(t, "http://pos.local", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}
