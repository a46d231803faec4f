package core

import (
	"errors"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	Bidfood Supplier = "Bidfood"
	Booker  Supplier = "Booker"
	Adams   Supplier = "Adams"
)

const (
	Meats   Category = "Meats"
	Drinks  Category = "Drinks"
	Frozen  Category = "Frozen"
	Ambient Category = "Ambient"
	Veg     Category = "Veg"
	Sauces  Category = "Sauces"
	Other   Category = "Other"

	// CategoryAll is the wildcard used by the listing filter. It is not a valid item category.
	CategoryAll Category = "All"
)

type (
	// Supplier is the wholesaler an item is sourced from.
	Supplier string

	// Category groups items on the listing.
	Category string

	// Item is one stock line as returned by the backend.
	Item struct {
		ID       string          `json:"id"`
		Supplier Supplier        `json:"supplier"`
		Category Category        `json:"category"`
		Name     string          `json:"item"`
		Quantity int             `json:"quantity"`
		Price    decimal.Decimal `json:"price"`
	}

	// NewItem is the creation payload collected from the entry form.
	NewItem struct {
		Supplier Supplier
		Category Category
		Name     string
		Quantity int
		Price    decimal.Decimal
	}
)

var (
	ErrUnknownSupplier  = errors.New("unknown supplier")
	ErrUnknownCategory  = errors.New("unknown category")
	ErrEmptyName        = errors.New("empty item name")
	ErrNameTooLong      = errors.New("item name too long (max 200 characters)")
	ErrNegativeQuantity = errors.New("quantity cannot be negative")
	ErrNegativePrice    = errors.New("price cannot be negative")
)

var (
	suppliers  = [...]Supplier{Bidfood, Booker, Adams}
	categories = [...]Category{Meats, Drinks, Frozen, Ambient, Veg, Sauces, Other}
)

// Suppliers returns the known suppliers in display order.
func Suppliers() []Supplier {
	out := make([]Supplier, len(suppliers))
	copy(out, suppliers[:])
	return out
}

// Categories returns the item categories in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories[:])
	return out
}

func (s Supplier) IsValid() bool {
	for _, known := range suppliers {
		if s == known {
			return true
		}
	}
	return false
}

func (s Supplier) String() string {
	return string(s)
}

func (c Category) IsValid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

// ParseSupplier matches a supplier name case-insensitively.
func ParseSupplier(s string) (Supplier, error) {
	s = strings.TrimSpace(s)
	for _, known := range suppliers {
		if strings.EqualFold(s, string(known)) {
			return known, nil
		}
	}
	return "", ErrUnknownSupplier
}

// ParseCategory matches a category name case-insensitively.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, known := range categories {
		if strings.EqualFold(s, string(known)) {
			return known, nil
		}
	}
	return "", ErrUnknownCategory
}

// Total is the stock value of the line.
func (i Item) Total() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (n NewItem) Validate() error {
	if !n.Supplier.IsValid() {
		return ErrUnknownSupplier
	}
	if !n.Category.IsValid() {
		return ErrUnknownCategory
	}
	if strings.TrimSpace(n.Name) == "" {
		return ErrEmptyName
	}
	if utf8.RuneCountInString(n.Name) > 200 {
		return ErrNameTooLong
	}
	if n.Quantity < 0 {
		return ErrNegativeQuantity
	}
	if n.Price.IsNegative() {
		return ErrNegativePrice
	}
	return nil
}

// AdjustQuantity applies delta to current and clamps the result to [0, MaxInt].
func AdjustQuantity(current, delta int) int {
	if delta > 0 && current > math.MaxInt-delta {
		return math.MaxInt
	}
	return max(0, current+delta)
}
