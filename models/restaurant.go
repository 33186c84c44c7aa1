package models

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type TableStatus string

const (
	TableAvailable TableStatus = "AVAILABLE"
	TableOccupied  TableStatus = "OCCUPIED"
	TableReserved  TableStatus = "RESERVED"
	TableDisabled  TableStatus = "DISABLED"
	TablePaid      TableStatus = "PAID"
)

func (s TableStatus) IsValid() bool {
	switch s {
	case TableAvailable, TableOccupied, TableReserved, TableDisabled, TablePaid:
		return true
	}
	return false
}

func ParseTableStatus(s string) TableStatus {
	return TableStatus(normalize(s))
}

type Shape string

const (
	ShapeSquare     Shape = "square"
	ShapeCircle     Shape = "circle"
	ShapeRectangleV Shape = "rectangle-v"
	ShapeRectangleH Shape = "rectangle-h"
	ShapeWall       Shape = "wall"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDING"
	OrderInProgress OrderStatus = "IN_PROGRESS"
	OrderReady      OrderStatus = "READY"
	OrderCompleted  OrderStatus = "COMPLETED"
)

// NormalizeOrderStatus case-folds a server status so "Pending" and "PENDING" compare equal.
func NormalizeOrderStatus(s string) OrderStatus {
	return OrderStatus(normalize(s))
}

// normalize upper-cases with a fresh Caser; Casers are stateful and not shared.
func normalize(s string) string {
	return cases.Upper(language.Und).String(strings.TrimSpace(s))
}

type Floor struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Tables []Table `json:"tables"`
}

type Table struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Status         TableStatus `json:"status"`
	Shape          Shape       `json:"shape"`
	CoordX         float64     `json:"coordX"`
	CoordY         float64     `json:"coordY"`
	Capacity       int         `json:"capacity"`
	HasActiveOrder bool        `json:"hasActiveOrder"`
	Orders         []Order     `json:"orders"`
}

// HasOrders mirrors the table modal, which treats any attached order as "has order".
func (t Table) HasOrders() bool {
	return len(t.Orders) > 0
}

type TableRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type UserRef struct {
	Name string `json:"name"`
}

// Order is server-owned; its money fields are never recomputed locally.
type Order struct {
	ID        string      `json:"id"`
	TableID   string      `json:"tableId,omitempty"`
	UserID    string      `json:"userId,omitempty"`
	Status    string      `json:"status"`
	Subtotal  float64     `json:"subtotal"`
	Tax       float64     `json:"tax"`
	Discount  float64     `json:"discount"`
	Tip       float64     `json:"tip"`
	Total     float64     `json:"total"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
	Table     *TableRef   `json:"table,omitempty"`
	User      *UserRef    `json:"user,omitempty"`
	Items     []OrderItem `json:"items"`
}

type OrderItem struct {
	ID        string   `json:"id"`
	ProductID string   `json:"productId,omitempty"`
	Name      string   `json:"name,omitempty"`
	Product   *Product `json:"product,omitempty"`
	Quantity  int      `json:"quantity"`
	UnitPrice float64  `json:"unitPrice"`
	Total     float64  `json:"total"`
	Note      string   `json:"note,omitempty"`
}

// DisplayName prefers the nested product name, then the item's own name.
func (i OrderItem) DisplayName() string {
	if i.Product != nil && i.Product.Name != "" {
		return i.Product.Name
	}
	if i.Name != "" {
		return i.Name
	}
	return "Unknown product"
}

type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category,omitempty"`
}

// CartLine is one not-yet-submitted product selection. Name and price are snapshots.
type CartLine struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// OrderInputItem is what createOrder and updateOrderItems accept per line.
type OrderInputItem struct {
	ProductID string   `json:"productId"`
	Quantity  int      `json:"quantity"`
	Price     *float64 `json:"price,omitempty"`
}
