// Package export writes scan results in the shape shoppers download them:
// a JSON list of deals and, optionally, the same rows as CSV.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"DealFinder/internal/models"
	"DealFinder/internal/snapshot"
)

// Record is one exported deal.
type Record struct {
	Discount      string `json:"discount"`
	Title         string `json:"title"`
	Link          string `json:"link"`
	Image         string `json:"image"`
	OriginalPrice string `json:"originalPrice"`
	SalePrice     string `json:"salePrice"`
}

var csvHeader = []string{"discount", "title", "link", "image", "originalPrice", "salePrice"}

// Records converts deals into export rows, keeping their order.
func Records(deals []models.Product) []Record {
	records := make([]Record, 0, len(deals))
	for _, p := range deals {
		records = append(records, Record{
			Discount:      fmt.Sprintf("%.2f", p.Discount),
			Title:         orNA(p.Title),
			Link:          p.Link,
			Image:         p.Image,
			OriginalPrice: orNA(p.OriginalPrice),
			SalePrice:     orNA(p.SalePrice),
		})
	}
	return records
}

func orNA(s string) string {
	if s == "" {
		return snapshot.NotAvailable
	}
	return s
}

// WriteJSON writes the deals as an indented JSON array.
func WriteJSON(w io.Writer, deals []models.Product) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(Records(deals))
}

// WriteCSV writes the deals with a header row.
func WriteCSV(w io.Writer, deals []models.Product) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range Records(deals) {
		if err := cw.Write([]string{r.Discount, r.Title, r.Link, r.Image, r.OriginalPrice, r.SalePrice}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// FileName returns "<prefix>_discounts_<YYYY-MM-DD>.<ext>".
func FileName(prefix string, day time.Time, ext string) string {
	return fmt.Sprintf("%s_discounts_%s.%s", prefix, day.Format("2006-01-02"), ext)
}

type format struct {
	ext   string
	write func(io.Writer, []models.Product) error
}

// SaveFiles writes the JSON export, and the CSV one when withCSV is set, into
// dir. It returns the paths written.
func SaveFiles(dir, prefix string, day time.Time, deals []models.Product, withCSV bool) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating export dir: %w", err)
	}

	formats := []format{{"json", WriteJSON}}
	if withCSV {
		formats = append(formats, format{"csv", WriteCSV})
	}

	var paths []string
	for _, f := range formats {
		path := filepath.Join(dir, FileName(prefix, day, f.ext))
		if err := writeFile(path, deals, f.write); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, deals []models.Product, write func(io.Writer, []models.Product) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f, deals); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
