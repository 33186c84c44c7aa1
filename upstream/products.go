package upstream

import (
	"context"

	"github.com/ray-remotestate/posgate/models"
)

// Products lists the business menu. Category filtering happens in the menu view.
func (c *Client) Products(ctx context.Context, businessID string) ([]models.Product, error) {
	var resp struct {
		Products []models.Product `json:"products"`
	}
	if err := c.run(ctx, "products", getProductsQuery, map[string]any{"businessId": businessID}, &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}
