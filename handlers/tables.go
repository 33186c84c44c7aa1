package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/posgate/models"
	"github.com/ray-remotestate/posgate/notify"
	"github.com/ray-remotestate/posgate/session"
	"github.com/ray-remotestate/posgate/utils"
	"github.com/ray-remotestate/posgate/views"
)

const menuPath = "/waiter/menu"

// Tables renders the floor plan; ?floor= picks the visible floor and
// ?selected= opens a table's modal if the table still exists.
func (h *Handler) Tables(w http.ResponseWriter, r *http.Request) {
	s := session.Current(r.Context())
	floors, err := h.api.Floors(upstreamCtx(r), s.BusinessID)
	if err != nil {
		queryFailed(w, err)
		return
	}

	var v views.FloorView
	v.Apply(floors)
	if id := r.URL.Query().Get("selected"); id != "" {
		v.Select(id)
	}
	idx, _ := strconv.Atoi(r.URL.Query().Get("floor"))
	utils.WriteJSON(w, http.StatusOK, v.Snapshot(idx))
}

// table loads the current server state of a table for guard checks.
func (h *Handler) table(w http.ResponseWriter, r *http.Request, s *models.Session) (models.Table, bool) {
	id := mux.Vars(r)["id"]
	floors, err := h.api.Floors(upstreamCtx(r), s.BusinessID)
	if err != nil {
		queryFailed(w, err)
		return models.Table{}, false
	}
	t, ok := views.FindTable(floors, id)
	if !ok {
		utils.WriteProblem(w, http.StatusNotFound, "table_not_found", "table "+id+" not found")
		return models.Table{}, false
	}
	return t, true
}

func refuse(w http.ResponseWriter, err error) {
	if errors.Is(err, views.ErrActionNotAllowed) {
		utils.WriteProblem(w, http.StatusConflict, "action_not_allowed", err.Error())
		return
	}
	utils.WriteProblem(w, http.StatusConflict, "conflict", err.Error())
}

func (h *Handler) ChangeTableStatus(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Status string `json:"status"`
	}

	s := session.Current(r.Context())
	var req request
	if !decode(w, r, &req) {
		return
	}
	to := models.ParseTableStatus(req.Status)
	if !to.IsValid() {
		utils.WriteProblem(w, http.StatusBadRequest, "invalid_request", "unknown table status "+req.Status)
		return
	}

	t, ok := h.table(w, r, s)
	if !ok {
		return
	}
	if err := views.CheckTransition(t, to); err != nil {
		refuse(w, err)
		return
	}

	updated, err := h.api.ChangeTableStatus(upstreamCtx(r), t.ID, to)
	if err != nil {
		mutationFailed(w, err)
		return
	}
	logrus.WithFields(logrus.Fields{"table": t.ID, "from": t.Status, "to": to}).Info("table status changed")
	h.emit(s, notify.TableStatusChanged, t.ID, map[string]any{"from": t.Status, "to": to})
	utils.WriteJSON(w, http.StatusOK, updated)
}

// StartOrder points the waiter's cart at the table and sends them to the menu.
func (h *Handler) StartOrder(w http.ResponseWriter, r *http.Request) {
	s := session.Current(r.Context())
	t, ok := h.table(w, r, s)
	if !ok {
		return
	}
	if !views.Actions(t).TakeOrder {
		refuse(w, views.ErrActionNotAllowed)
		return
	}
	h.carts.For(s.UserID).Start(t.ID)
	http.Redirect(w, r, menuPath, http.StatusSeeOther)
}

func (h *Handler) CreateSale(w http.ResponseWriter, r *http.Request) {
	s := session.Current(r.Context())
	t, ok := h.table(w, r, s)
	if !ok {
		return
	}
	if err := views.CheckSale(t); err != nil {
		refuse(w, err)
		return
	}

	sale, err := h.api.CreateSaleFromTable(upstreamCtx(r), t.ID, s.BusinessID, s.UserID)
	if err != nil {
		mutationFailed(w, err)
		return
	}
	h.emit(s, notify.SaleCreated, t.ID, map[string]any{"saleId": sale.ID})
	utils.WriteJSON(w, http.StatusOK, sale)
}

func (h *Handler) UpdateOrderItems(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Items []models.OrderInputItem `json:"items"`
	}

	var req request
	if !decode(w, r, &req) {
		return
	}
	if len(req.Items) == 0 {
		utils.WriteProblem(w, http.StatusBadRequest, "invalid_request", "items required")
		return
	}
	for _, it := range req.Items {
		if it.ProductID == "" || it.Quantity < 1 {
			utils.WriteProblem(w, http.StatusBadRequest, "invalid_request", "each item needs a product and quantity >= 1")
			return
		}
	}

	order, err := h.api.UpdateOrderItems(upstreamCtx(r), mux.Vars(r)["id"], req.Items)
	if err != nil {
		mutationFailed(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, order)
}

func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	deleted, err := h.api.DeleteOrder(upstreamCtx(r), id)
	if err != nil {
		mutationFailed(w, err)
		return
	}
	if !deleted {
		utils.WriteProblem(w, http.StatusBadGateway, "mutation_failed", "order "+id+" was not deleted")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"id": id, "deleted": true})
}
