package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryElectronics Category = "electronics"
	CategoryFashion     Category = "fashion"
	CategoryBooks       Category = "books"
	CategoryFood        Category = "food"
	CategoryToys        Category = "toys"
)

var Categories = []Category{
	CategoryElectronics,
	CategoryFashion,
	CategoryBooks,
	CategoryFood,
	CategoryToys,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    Category        `json:"category"`
	Image       string          `json:"image"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProductQuery carries the listing filters. Search, when set, replaces the
// Name/Description substring filters with a ranked full-text match.
type ProductQuery struct {
	Category    string
	Name        string
	Description string
	Search      string
	Page        int
	Limit       int
}
