package domain

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	// StatusNew marks the single active order acting as the cart.
	StatusNew OrderStatus = "NEW"
	// StatusBought marks a finalized, immutable order.
	StatusBought OrderStatus = "BOUGHT"
)

// Order is a purchase aggregate. At most one order with StatusNew exists at
// any time; it is the active cart.
type Order struct {
	ID        int64       `json:"id"`
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}

// CartLine is one (product, quantity) pairing within an order. A persisted
// line always has a positive quantity; decrementing to zero deletes it.
type CartLine struct {
	ID        int64     `json:"id"`
	OrderID   int64     `json:"order_id"`
	ProductID int64     `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

// CartAction is a cart line mutation kind.
type CartAction string

const (
	ActionPlus   CartAction = "PLUS"
	ActionMinus  CartAction = "MINUS"
	ActionDelete CartAction = "DELETE"
)

// ParseCartAction parses a cart action enumerant.
func ParseCartAction(s string) (CartAction, bool) {
	switch CartAction(s) {
	case ActionPlus, ActionMinus, ActionDelete:
		return CartAction(s), true
	default:
		return "", false
	}
}

// OrderLine is a cart line joined with its product.
type OrderLine struct {
	ProductID int64  `json:"product_id"`
	Title     string `json:"title"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
	Subtotal  int64  `json:"subtotal"`
}

// OrderView is an order decorated with its resolved lines and computed total.
type OrderView struct {
	ID        int64       `json:"id"`
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	Lines     []OrderLine `json:"lines"`
	Total     int64       `json:"total"`
}

// NewOrderView assembles an order view, computing line subtotals and the
// order total.
func NewOrderView(order *Order, lines []OrderLine) *OrderView {
	if lines == nil {
		lines = []OrderLine{}
	}

	var total int64
	for i := range lines {
		lines[i].Subtotal = lines[i].Price * int64(lines[i].Quantity)
		total += lines[i].Subtotal
	}

	return &OrderView{
		ID:        order.ID,
		Status:    order.Status,
		CreatedAt: order.CreatedAt,
		Lines:     lines,
		Total:     total,
	}
}
