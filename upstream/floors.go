package upstream

import (
	"context"

	"github.com/ray-remotestate/posgate/models"
)

func (c *Client) Floors(ctx context.Context, businessID string) ([]models.Floor, error) {
	var resp struct {
		GetFloors []models.Floor `json:"getFloors"`
	}
	if err := c.run(ctx, "getFloors", getFloorsQuery, map[string]any{"businessId": businessID}, &resp); err != nil {
		return nil, err
	}
	return resp.GetFloors, nil
}

// ChangeTableStatus requests a transition; the new state is observed on the next refresh.
func (c *Client) ChangeTableStatus(ctx context.Context, tableID string, status models.TableStatus) (models.Table, error) {
	var resp struct {
		ChangeTableStatus models.Table `json:"changeTableStatus"`
	}
	err := c.run(ctx, "changeTableStatus", changeTableStatusMutation, map[string]any{
		"input": map[string]any{"tableId": tableID, "newStatus": status},
	}, &resp)
	return resp.ChangeTableStatus, err
}

type Sale struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (c *Client) CreateSaleFromTable(ctx context.Context, tableID, businessID, userID string) (Sale, error) {
	var resp struct {
		CreateSaleFromTableOrders Sale `json:"createSaleFromTableOrders"`
	}
	err := c.run(ctx, "createSaleFromTableOrders", createSaleMutation, map[string]any{
		"tableId":    tableID,
		"businessId": businessID,
		"userId":     userID,
	}, &resp)
	return resp.CreateSaleFromTableOrders, err
}
