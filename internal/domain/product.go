package domain

import "time"

// Product is a catalog record. Price is stored in minor currency units
// (cents). The image payload is kept out of JSON output and served through a
// dedicated endpoint.
type Product struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Image       []byte    `json:"-"`
	Price       int64     `json:"price"`
	CreatedAt   time.Time `json:"created_at"`
}

// SortKind selects the catalog query ordering.
type SortKind string

const (
	// SortNone returns products in natural (creation) order.
	SortNone SortKind = "NO"
	// SortTitle orders products by title, ascending.
	SortTitle SortKind = "ALPHA"
	// SortPrice orders products by price, ascending.
	SortPrice SortKind = "PRICE"
)

// ParseSortKind parses a sort kind enumerant. An empty string means no sort.
func ParseSortKind(s string) (SortKind, bool) {
	switch SortKind(s) {
	case "":
		return SortNone, true
	case SortNone, SortTitle, SortPrice:
		return SortKind(s), true
	default:
		return "", false
	}
}

// ProductView is a product decorated with the caller's current cart quantity
// (0 when the product is not in the active cart).
type ProductView struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	Quantity    int       `json:"quantity"`
	CreatedAt   time.Time `json:"created_at"`
}

// View returns the product decorated with the given cart quantity.
func (p *Product) View(quantity int) ProductView {
	return ProductView{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Quantity:    quantity,
		CreatedAt:   p.CreatedAt,
	}
}
