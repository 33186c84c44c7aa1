package upstream

import (
	"context"

	"github.com/ray-remotestate/posgate/models"
)

func (c *Client) AllOrders(ctx context.Context, businessID string) ([]models.Order, error) {
	var resp struct {
		GetAllOrders []models.Order `json:"getAllOrders"`
	}
	if err := c.run(ctx, "getAllOrders", getAllOrdersQuery, map[string]any{"businessId": businessID}, &resp); err != nil {
		return nil, err
	}
	return resp.GetAllOrders, nil
}

// Order returns nil without error when the order does not exist.
func (c *Client) Order(ctx context.Context, id string) (*models.Order, error) {
	var resp struct {
		Order *models.Order `json:"order"`
	}
	if err := c.run(ctx, "order", getOrderQuery, map[string]any{"id": id}, &resp); err != nil {
		return nil, err
	}
	return resp.Order, nil
}

// CreateOrder submits a draft and returns the table with its orders as the API reports them.
func (c *Client) CreateOrder(ctx context.Context, tableID, userID string, items []models.OrderInputItem) (models.Table, error) {
	var resp struct {
		CreateOrder models.Table `json:"createOrder"`
	}
	err := c.run(ctx, "createOrder", createOrderMutation, map[string]any{
		"input": map[string]any{
			"tableId": tableID,
			"userId":  userID,
			"items":   items,
		},
	}, &resp)
	return resp.CreateOrder, err
}

func (c *Client) UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus, userID string) (models.Order, error) {
	var resp struct {
		UpdateOrderStatus models.Order `json:"updateOrderStatus"`
	}
	err := c.run(ctx, "updateOrderStatus", updateOrderStatusMutation, map[string]any{
		"input": map[string]any{"id": orderID, "newStatus": status, "userId": userID},
	}, &resp)
	return resp.UpdateOrderStatus, err
}

func (c *Client) UpdateOrderItems(ctx context.Context, orderID string, items []models.OrderInputItem) (models.Order, error) {
	var resp struct {
		UpdateOrderItems models.Order `json:"updateOrderItems"`
	}
	err := c.run(ctx, "updateOrderItems", updateOrderItemsMutation, map[string]any{
		"orderId": orderID,
		"items":   items,
	}, &resp)
	return resp.UpdateOrderItems, err
}

func (c *Client) DeleteOrder(ctx context.Context, orderID string) (bool, error) {
	var resp struct {
		DeleteOrder bool `json:"deleteOrder"`
	}
	err := c.run(ctx, "deleteOrder", deleteOrderMutation, map[string]any{
		"input": map[string]any{"id": orderID},
	}, &resp)
	return resp.DeleteOrder, err
}
