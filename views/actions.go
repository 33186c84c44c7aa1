package views

import (
	"errors"

	"github.com/ray-remotestate/posgate/models"
)

var ErrActionNotAllowed = errors.New("action not allowed for table status")

// TableActions is what the table modal offers for the table's current state.
type TableActions struct {
	Occupy    bool   `json:"occupy"`
	TakeOrder bool   `json:"takeOrder"`
	Free      bool   `json:"free"`
	Pay       bool   `json:"pay"`
	Hint      string `json:"hint,omitempty"`
}

func Actions(t models.Table) TableActions {
	hasOrder := t.HasOrders()
	a := TableActions{
		Occupy:    t.Status == models.TableAvailable,
		TakeOrder: t.Status == models.TableOccupied,
		Free:      (t.Status == models.TableOccupied && !hasOrder) || t.Status == models.TablePaid,
		Pay:       t.Status == models.TableOccupied && hasOrder,
	}
	if t.Status == models.TableOccupied && !hasOrder {
		a.Hint = "cannot charge a table without an order"
	}
	return a
}

// CheckTransition guards a requested status change before it is sent upstream.
// The server remains the authority; this only refuses what the modal never offers.
func CheckTransition(t models.Table, to models.TableStatus) error {
	a := Actions(t)
	switch to {
	case models.TableOccupied:
		if a.Occupy {
			return nil
		}
	case models.TableAvailable:
		if a.Free {
			return nil
		}
	}
	return ErrActionNotAllowed
}

// CheckSale guards creating a sale from the table's orders.
func CheckSale(t models.Table) error {
	if Actions(t).Pay {
		return nil
	}
	return ErrActionNotAllowed
}
