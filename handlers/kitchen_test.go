package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ray-remotestate/posgate/models"
	"github.com/ray-remotestate/posgate/views"
)

var kitchenNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func kitchenAPI() *fakeAPI {
	return &fakeAPI{orders: []models.Order{
		{ID: "order-0001", Status: "pending", CreatedAt: kitchenNow.Add(-16 * time.Minute), Table: &models.TableRef{Name: "4"}},
		{ID: "order-0002", Status: "IN_PROGRESS", CreatedAt: kitchenNow.Add(-5 * time.Minute)},
		{ID: "order-0003", Status: "READY", CreatedAt: kitchenNow.Add(-30 * time.Minute)},
	}}
}

func TestKitchenQueue(t *testing.T) {
	h, _ := newHandler(kitchenAPI())

	w := call(h.KitchenOrders, http.MethodGet, "/kitchen/orders", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Tickets []views.Ticket `json:"tickets"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Tickets, 2)
	assert.Equal(t, "0001", body.Tickets[0].ShortID)
	assert.Equal(t, "4", body.Tickets[0].TableName)
	assert.True(t, body.Tickets[0].Late)
	assert.Equal(t, "Table ?", body.Tickets[1].TableName)
	assert.False(t, body.Tickets[1].Late)
}

func TestOrderDetail(t *testing.T) {
	h, _ := newHandler(kitchenAPI())

	w := call(h.OrderDetail, http.MethodGet, "/", "", map[string]string{"id": "order-0002"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"elapsedMinutes":5`)

	w = call(h.OrderDetail, http.MethodGet, "/", "", map[string]string{"id": "missing"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrderStatusChanges(t *testing.T) {
	api := kitchenAPI()
	h, _ := newHandler(api)

	w := call(h.MarkReady, http.MethodPost, "/", "", map[string]string{"id": "order-0001"})
	assert.Equal(t, http.StatusOK, w.Code)
	w = call(h.CompleteOrder, http.MethodPost, "/", "", map[string]string{"id": "order-0001"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []models.OrderStatus{models.OrderReady, models.OrderCompleted}, api.orderStatus)
}
