package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents an item in the catalogue.
type Product struct {
	ID            string              `json:"id" db:"id"`
	Name          string              `json:"name" db:"name"`
	Price         decimal.Decimal     `json:"price" db:"price"`
	SalePrice     decimal.NullDecimal `json:"salePrice" db:"sale_price"`
	StockQuantity int                 `json:"stockQuantity" db:"stock_quantity"`
	IsActive      bool                `json:"isActive" db:"is_active"`
	CreatedAt     time.Time           `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time           `json:"updatedAt" db:"updated_at"`
}

// EffectivePrice returns the sale price when it is set and lower than the
// regular price, otherwise the regular price.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.IsOnSale() {
		return p.SalePrice.Decimal
	}
	return p.Price
}

// IsOnSale reports whether the sale price takes effect.
func (p *Product) IsOnSale() bool {
	return p.SalePrice.Valid && p.SalePrice.Decimal.LessThan(p.Price)
}

// DiscountPercentage returns the rounded discount when on sale.
func (p *Product) DiscountPercentage() *int64 {
	if !p.IsOnSale() || p.Price.IsZero() {
		return nil
	}
	pct := p.Price.Sub(p.SalePrice.Decimal).Div(p.Price).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	return &pct
}

// InStock reports whether at least quantity units are on hand.
func (p *Product) InStock(quantity int) bool {
	return p.StockQuantity >= quantity
}

// IsAvailable reports whether the product can be sold at the given quantity.
// It does not reserve anything; reservation re-checks under a row lock.
func (p *Product) IsAvailable(quantity int) bool {
	return p.IsActive && p.InStock(quantity)
}

// ProductView is the catalogue representation returned to clients.
type ProductView struct {
	Product
	EffectivePrice     decimal.Decimal `json:"effectivePrice"`
	InStock            bool            `json:"isInStock"`
	DiscountPercentage *int64          `json:"discountPercentage,omitempty"`
}

// NewProductView builds the client view of a product.
func NewProductView(p Product) ProductView {
	return ProductView{
		Product:            p,
		EffectivePrice:     p.EffectivePrice(),
		InStock:            p.StockQuantity > 0,
		DiscountPercentage: p.DiscountPercentage(),
	}
}
