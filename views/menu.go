package views

import (
	"strings"

	"github.com/ray-remotestate/posgate/models"
)

// FilterProducts keeps products in category; an empty category, "all" or "todos" keeps everything.
func FilterProducts(products []models.Product, category string) []models.Product {
	c := strings.TrimSpace(category)
	if c == "" || strings.EqualFold(c, "all") || strings.EqualFold(c, "todos") {
		return products
	}
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if p.Category == c {
			out = append(out, p)
		}
	}
	return out
}

// Categories lists distinct product categories in menu order.
func Categories(products []models.Product) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, p := range products {
		if p.Category != "" && !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	return out
}

func FindProduct(products []models.Product, id string) (models.Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}
