package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/posgate/cart"
	"github.com/ray-remotestate/posgate/notify"
	"github.com/ray-remotestate/posgate/session"
	"github.com/ray-remotestate/posgate/utils"
	"github.com/ray-remotestate/posgate/views"
)

func (h *Handler) Menu(w http.ResponseWriter, r *http.Request) {
	s := session.Current(r.Context())
	products, err := h.api.Products(upstreamCtx(r), s.BusinessID)
	if err != nil {
		queryFailed(w, err)
		return
	}

	category := r.URL.Query().Get("category")
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"category":   category,
		"categories": views.Categories(products),
		"products":   views.FilterProducts(products, category),
		"cart":       h.carts.For(s.UserID).Snapshot(),
	})
}

func cartProblem(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cart.ErrNoTable):
		utils.WriteProblem(w, http.StatusConflict, "no_table", err.Error())
	case errors.Is(err, cart.ErrEmpty):
		utils.WriteProblem(w, http.StatusConflict, "empty_cart", err.Error())
	case errors.Is(err, cart.ErrUnknownProduct):
		utils.WriteProblem(w, http.StatusNotFound, "unknown_product", err.Error())
	default:
		utils.WriteProblem(w, http.StatusInternalServerError, "internal", err.Error())
	}
}

// AddToCart snapshots the product's current menu price into the draft.
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	type request struct {
		ProductID string `json:"productId"`
	}

	s := session.Current(r.Context())
	var req request
	if !decode(w, r, &req) {
		return
	}
	c := h.carts.For(s.UserID)
	if c.TableID() == "" {
		cartProblem(w, cart.ErrNoTable)
		return
	}

	products, err := h.api.Products(upstreamCtx(r), s.BusinessID)
	if err != nil {
		queryFailed(w, err)
		return
	}
	p, ok := views.FindProduct(products, req.ProductID)
	if !ok {
		cartProblem(w, cart.ErrUnknownProduct)
		return
	}
	c.AddItem(p)
	utils.WriteJSON(w, http.StatusOK, c.Snapshot())
}

func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	c := h.carts.For(session.Current(r.Context()).UserID)
	if !c.RemoveItem(mux.Vars(r)["productId"]) {
		cartProblem(w, cart.ErrUnknownProduct)
		return
	}
	utils.WriteJSON(w, http.StatusOK, c.Snapshot())
}

func (h *Handler) DecrementInCart(w http.ResponseWriter, r *http.Request) {
	c := h.carts.For(session.Current(r.Context()).UserID)
	if !c.Decrement(mux.Vars(r)["productId"]) {
		cartProblem(w, cart.ErrUnknownProduct)
		return
	}
	utils.WriteJSON(w, http.StatusOK, c.Snapshot())
}

// ClearCart cancels the draft and the table selection.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	c := h.carts.For(session.Current(r.Context()).UserID)
	c.Clear()
	utils.WriteJSON(w, http.StatusOK, c.Snapshot())
}

// SubmitOrder creates the order upstream. The cart is cleared only after the
// mutation succeeds; on failure it is left exactly as it was.
func (h *Handler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	s := session.Current(r.Context())
	c := h.carts.For(s.UserID)
	if err := c.Ready(); err != nil {
		cartProblem(w, err)
		return
	}
	tableID, items := c.TableID(), c.Items()

	table, err := h.api.CreateOrder(upstreamCtx(r), tableID, s.UserID, items)
	if err != nil {
		logrus.WithError(err).WithField("table", tableID).Warn("order submission failed")
		mutationFailed(w, err)
		return
	}
	c.Clear()

	logrus.WithFields(logrus.Fields{"table": tableID, "lines": len(items)}).Info("order submitted")
	h.emit(s, notify.OrderSubmitted, tableID, map[string]any{"items": items})
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"table":    table,
		"redirect": waiterLanding,
	})
}
