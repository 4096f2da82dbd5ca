package domain

import "github.com/shopspring/decimal"

type Category struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Product struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	CategoryID  *int            `json:"category_id"`
	Category    *Category       `json:"category,omitempty"`
	ImageURL    *string         `json:"image_url"`
}

// CategoryLabel retorna o nome da categoria do produto ou o sentinela.
func (p *Product) CategoryLabel() string {
	if p.Category != nil && p.Category.Name != "" {
		return p.Category.Name
	}
	return LabelUncategorized
}
