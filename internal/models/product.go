package models

import "time"

// Product is a listing that passed the discount filter.
type Product struct {
	Index         int     `json:"index"`
	Title         string  `json:"title"`
	Link          string  `json:"link"`
	Image         string  `json:"image"`
	Discount      float64 `json:"discount"`
	Method        string  `json:"method"`
	OriginalPrice string  `json:"originalPrice,omitempty"`
	SalePrice     string  `json:"salePrice,omitempty"`
	OriginalValue float64 `json:"originalValue,omitempty"`
	SaleValue     float64 `json:"saleValue,omitempty"`
}

// Page is a rendered document handed over by a scraper.
type Page struct {
	URL       string
	HTML      string
	FetchedAt time.Time
}
