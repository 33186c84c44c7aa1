package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/posgate/models"
	"github.com/ray-remotestate/posgate/notify"
	"github.com/ray-remotestate/posgate/session"
	"github.com/ray-remotestate/posgate/utils"
	"github.com/ray-remotestate/posgate/views"
)

// KitchenOrders is the active ticket queue, always read fresh from the API.
func (h *Handler) KitchenOrders(w http.ResponseWriter, r *http.Request) {
	s := session.Current(r.Context())
	orders, err := h.api.AllOrders(upstreamCtx(r), s.BusinessID)
	if err != nil {
		queryFailed(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"tickets": views.ActiveTickets(orders, h.opts.Now(), h.opts.LateAfterMinutes),
	})
}

func (h *Handler) OrderDetail(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	order, err := h.api.Order(upstreamCtx(r), id)
	if err != nil {
		queryFailed(w, err)
		return
	}
	if order == nil {
		utils.WriteProblem(w, http.StatusNotFound, "order_not_found", "order "+id+" not found")
		return
	}
	utils.WriteJSON(w, http.StatusOK, orderDetail{
		Order:  order,
		Ticket: views.NewTicket(*order, h.opts.Now(), h.opts.LateAfterMinutes),
	})
}

type orderDetail struct {
	Order  *models.Order `json:"order"`
	Ticket views.Ticket  `json:"ticket"`
}

func (h *Handler) MarkReady(w http.ResponseWriter, r *http.Request) {
	h.setOrderStatus(w, r, models.OrderReady)
}

func (h *Handler) CompleteOrder(w http.ResponseWriter, r *http.Request) {
	h.setOrderStatus(w, r, models.OrderCompleted)
}

func (h *Handler) setOrderStatus(w http.ResponseWriter, r *http.Request, status models.OrderStatus) {
	s := session.Current(r.Context())
	id := mux.Vars(r)["id"]
	order, err := h.api.UpdateOrderStatus(upstreamCtx(r), id, status, s.UserID)
	if err != nil {
		mutationFailed(w, err)
		return
	}
	logrus.WithFields(logrus.Fields{"order": id, "status": status}).Info("order status changed")
	h.emit(s, notify.OrderStatusChanged, id, map[string]any{"status": status})
	utils.WriteJSON(w, http.StatusOK, order)
}
