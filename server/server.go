package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/posgate/handlers"
	"github.com/ray-remotestate/posgate/middlewares"
	"github.com/ray-remotestate/posgate/models"
	"github.com/ray-remotestate/posgate/session"
)

type Server struct {
	Router  *mux.Router
	handler http.Handler

	mu     sync.Mutex
	server *http.Server
}

const (
	readTimeout       = 5 * time.Minute
	readHeaderTimeout = 30 * time.Second
	writeTimeout      = 5 * time.Minute
)

type Options struct {
	Secret      []byte
	CORSOrigins []string
}

func SetupRoutes(h *handlers.Handler, store *session.Store, opts Options) *Server {
	router := mux.NewRouter()
	router.Use(middlewares.RequestLogger, middlewares.RoleRouter(opts.Secret))

	router.HandleFunc("/health", handlers.Health).Methods(http.MethodGet)
	router.HandleFunc("/login", h.LoginPage).Methods(http.MethodGet)
	router.HandleFunc("/login", h.Login).Methods(http.MethodPost)
	router.HandleFunc("/logout", h.Logout).Methods(http.MethodPost)

	app := router.NewRoute().Subrouter()
	app.Use(middlewares.SessionMiddleware(store))
	app.HandleFunc("/", h.Root).Methods(http.MethodGet)

	// waiter section, admins included
	waiter := app.PathPrefix("/waiter").Subrouter()
	waiter.Use(middlewares.RequireRole(models.RoleWaiter))

	waiter.HandleFunc("/tables", h.Tables).Methods(http.MethodGet)
	waiter.HandleFunc("/tables/{id}/status", h.ChangeTableStatus).Methods(http.MethodPost)
	waiter.HandleFunc("/tables/{id}/order", h.StartOrder).Methods(http.MethodPost)
	waiter.HandleFunc("/tables/{id}/sale", h.CreateSale).Methods(http.MethodPost)
	waiter.HandleFunc("/orders/{id}/items", h.UpdateOrderItems).Methods(http.MethodPut)
	waiter.HandleFunc("/orders/{id}", h.DeleteOrder).Methods(http.MethodDelete)
	waiter.HandleFunc("/menu", h.Menu).Methods(http.MethodGet)
	waiter.HandleFunc("/menu/cart", h.AddToCart).Methods(http.MethodPost)
	waiter.HandleFunc("/menu/cart", h.ClearCart).Methods(http.MethodDelete)
	waiter.HandleFunc("/menu/cart/{productId}", h.RemoveFromCart).Methods(http.MethodDelete)
	waiter.HandleFunc("/menu/cart/{productId}/decrement", h.DecrementInCart).Methods(http.MethodPost)
	waiter.HandleFunc("/menu/submit", h.SubmitOrder).Methods(http.MethodPost)
	waiter.HandleFunc("/stream", h.WaiterStream).Methods(http.MethodGet)

	// kitchen section, admins included
	kitchen := app.PathPrefix("/kitchen").Subrouter()
	kitchen.Use(middlewares.RequireRole(models.RoleKitchen))

	kitchen.HandleFunc("/orders", h.KitchenOrders).Methods(http.MethodGet)
	kitchen.HandleFunc("/orders/{id}", h.OrderDetail).Methods(http.MethodGet)
	kitchen.HandleFunc("/orders/{id}/stream", h.OrderStream).Methods(http.MethodGet)
	kitchen.HandleFunc("/orders/{id}/ready", h.MarkReady).Methods(http.MethodPost)
	kitchen.HandleFunc("/orders/{id}/complete", h.CompleteOrder).Methods(http.MethodPost)
	kitchen.HandleFunc("/stream", h.KitchenStream).Methods(http.MethodGet)

	var handler http.Handler = router
	if len(opts.CORSOrigins) > 0 {
		handler = gorillahandlers.CORS(
			gorillahandlers.AllowedOrigins(opts.CORSOrigins),
			gorillahandlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete}),
			gorillahandlers.AllowedHeaders([]string{"Content-Type"}),
			gorillahandlers.AllowCredentials(),
		)(handler)
	}
	handler = gorillahandlers.RecoveryHandler(
		gorillahandlers.RecoveryLogger(logrus.StandardLogger()),
		gorillahandlers.PrintRecoveryStack(true),
	)(handler)

	return &Server{
		Router:  router,
		handler: handler,
	}
}

// Handler is the full middleware chain, as served by Run.
func (svr *Server) Handler() http.Handler {
	return svr.handler
}

func (svr *Server) Run(port string) error {
	hs := &http.Server{
		Addr:              port,
		Handler:           svr.handler,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
	}
	svr.mu.Lock()
	svr.server = hs
	svr.mu.Unlock()
	return hs.ListenAndServe()
}

func (svr *Server) Shutdown(timeout time.Duration) error {
	svr.mu.Lock()
	hs := svr.server
	svr.mu.Unlock()
	if hs == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return hs.Shutdown(ctx)
}
