package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/posgate/cart"
	"github.com/ray-remotestate/posgate/models"
	"github.com/ray-remotestate/posgate/notify"
	"github.com/ray-remotestate/posgate/session"
	"github.com/ray-remotestate/posgate/upstream"
	"github.com/ray-remotestate/posgate/utils"
)

// API is the slice of the upstream client the screens use.
type API interface {
	Login(ctx context.Context, email, password string) (string, error)
	Floors(ctx context.Context, businessID string) ([]models.Floor, error)
	AllOrders(ctx context.Context, businessID string) ([]models.Order, error)
	Order(ctx context.Context, id string) (*models.Order, error)
	Products(ctx context.Context, businessID string) ([]models.Product, error)
	CreateOrder(ctx context.Context, tableID, userID string, items []models.OrderInputItem) (models.Table, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus, userID string) (models.Order, error)
	UpdateOrderItems(ctx context.Context, orderID string, items []models.OrderInputItem) (models.Order, error)
	DeleteOrder(ctx context.Context, orderID string) (bool, error)
	ChangeTableStatus(ctx context.Context, tableID string, status models.TableStatus) (models.Table, error)
	CreateSaleFromTable(ctx context.Context, tableID, businessID, userID string) (upstream.Sale, error)
}

type Options struct {
	PollInterval        time.Duration
	KitchenPollInterval time.Duration
	TicketClockInterval time.Duration
	LateAfterMinutes    int
	Now                 func() time.Time
	// AllowedOrigins for websocket upgrades; empty means same origin only.
	AllowedOrigins []string
}

type Handler struct {
	api      API
	sessions *session.Store
	carts    *cart.Registry
	events   notify.Publisher
	opts     Options
	upgrader websocket.Upgrader
}

func New(api API, sessions *session.Store, carts *cart.Registry, events notify.Publisher, opts Options) *Handler {
	if events == nil {
		events = notify.Nop{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	h := &Handler{api: api, sessions: sessions, carts: carts, events: events, opts: opts}
	if len(opts.AllowedOrigins) > 0 {
		h.upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(opts.AllowedOrigins, origin)
		}
	}
	return h
}

// upstreamCtx carries the caller's token to the API.
func upstreamCtx(r *http.Request) context.Context {
	return upstream.WithToken(r.Context(), session.Token(r))
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		logrus.WithError(err).Debug("invalid request body")
		utils.WriteProblem(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return false
	}
	return true
}

// queryFailed reports a failed read; the screen keeps whatever it last showed.
func queryFailed(w http.ResponseWriter, err error) {
	if upstream.IsUnauthorized(err) {
		utils.WriteProblem(w, http.StatusUnauthorized, "unauthorized", err.Error())
		return
	}
	utils.WriteProblem(w, http.StatusBadGateway, "upstream_error", err.Error())
}

// mutationFailed surfaces the raw upstream message. Mutations are not retried.
func mutationFailed(w http.ResponseWriter, err error) {
	if upstream.IsUnauthorized(err) {
		utils.WriteProblem(w, http.StatusUnauthorized, "unauthorized", err.Error())
		return
	}
	utils.WriteProblem(w, http.StatusBadGateway, "mutation_failed", err.Error())
}

func (h *Handler) emit(s *models.Session, typ notify.EventType, subject string, data map[string]any) {
	notify.Emit(h.events, notify.NewEvent(typ, s.BusinessID, s.UserID, subject, data))
}

func Health(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]bool{"alive": true})
}
