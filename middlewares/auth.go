package middlewares

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/posgate/models"
	"github.com/ray-remotestate/posgate/session"
	"github.com/ray-remotestate/posgate/utils"
)

const (
	waiterSection  = "/waiter"
	kitchenSection = "/kitchen"
	waiterLanding  = "/waiter/tables"
	kitchenLanding = "/kitchen/orders"
)

var publicPaths = map[string]bool{
	"/login":       true,
	"/logout":      true,
	"/health":      true,
	"/favicon.ico": true,
}

const staticPrefix = "/static/"

func isPublic(path string) bool {
	return publicPaths[path] || strings.HasPrefix(path, staticPrefix)
}

func inSection(path, section string) bool {
	return path == section || strings.HasPrefix(path, section+"/")
}

// RoleRouter gates every navigation outside the public allow-list. The token
// signature is verified here and nowhere else; a kitchen session is kept out
// of the waiter section and vice versa.
func RoleRouter(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublic(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			token := session.Token(r)
			if token == "" {
				http.Redirect(w, r, session.LoginPath, http.StatusTemporaryRedirect)
				return
			}

			claims, err := session.Verify(token, secret)
			if err != nil {
				logrus.WithError(err).WithField("path", r.URL.Path).Debug("role router rejected token")
				http.Redirect(w, r, session.LoginPath, http.StatusTemporaryRedirect)
				return
			}

			switch role := models.ParseRole(claims.Role); {
			case role == models.RoleKitchen && inSection(r.URL.Path, waiterSection):
				logrus.WithField("path", r.URL.Path).Debug("kitchen session redirected from waiter section")
				http.Redirect(w, r, kitchenLanding, http.StatusTemporaryRedirect)
				return
			case role == models.RoleWaiter && inSection(r.URL.Path, kitchenSection):
				logrus.WithField("path", r.URL.Path).Debug("waiter session redirected from kitchen section")
				http.Redirect(w, r, waiterLanding, http.StatusTemporaryRedirect)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SessionMiddleware rehydrates the session and stores it in the request context.
func SessionMiddleware(store *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := store.Rehydrate(r.Context(), w, r)
			if s == nil {
				if r.Method == http.MethodGet && !websocket.IsWebSocketUpgrade(r) {
					http.Redirect(w, r, session.LoginPath, http.StatusTemporaryRedirect)
					return
				}
				utils.WriteProblem(w, http.StatusUnauthorized, "unauthorized", "no session")
				return
			}
			next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), s)))
		})
	}
}

// RequireRole refuses sessions whose server-confirmed role is not allowed.
// Admins pass every guard.
func RequireRole(allowedRoles ...models.Role) func(http.Handler) http.Handler {
	allowed := map[models.Role]bool{models.RoleAdmin: true}
	for _, role := range allowedRoles {
		allowed[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := session.Current(r.Context())
			if s == nil {
				utils.WriteProblem(w, http.StatusUnauthorized, "unauthorized", "no session")
				return
			}
			if !allowed[s.Role] {
				utils.WriteProblem(w, http.StatusForbidden, "forbidden", "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
