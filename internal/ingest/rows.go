package ingest

import (
	"fmt"
	"strconv"
	"strings"

	"catalog-service/internal/models"
)

// Column keys recognized by the importer, after header annotations are
// stripped. sku, title and price are required; the rest are optional.
const (
	colSKU         = "sku"
	colTitle       = "title"
	colPrice       = "price"
	colDescription = "description"
	colStatus      = "status"
	colCategory    = "category"
	colSubcategory = "subcategory"
	colHandle      = "handle"
	colStock       = "stock"
)

var requiredColumns = []string{colSKU, colTitle, colPrice}

// header maps a column key to its index in each row.
type header map[string]int

// mapHeader matches header cells to column keys. Header names may carry a
// parenthesized annotation, e.g. "price（必須・数値）", which is stripped
// before matching.
func mapHeader(cells []string) (header, error) {
	h := make(header, len(cells))
	for i, cell := range cells {
		name := stripAnnotation(cell)
		if name == "" {
			continue
		}
		if _, dup := h[name]; !dup {
			h[name] = i
		}
	}
	for _, col := range requiredColumns {
		if _, ok := h[col]; !ok {
			return nil, fmt.Errorf("required column %q not found in header", col)
		}
	}
	return h, nil
}

// stripAnnotation removes a parenthesized hint suffix from a header name.
// Both ASCII and full-width parentheses are recognized.
func stripAnnotation(name string) string {
	if i := strings.IndexAny(name, "(（"); i >= 0 {
		name = name[:i]
	}
	return strings.ToLower(strings.TrimSpace(name))
}

func (h header) cell(row []string, key string) string {
	i, ok := h[key]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// rawCell returns the cell without trimming, for fields where whitespace is
// content (descriptions with embedded newlines).
func (h header) rawCell(row []string, key string) string {
	i, ok := h[key]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// parseRow validates and normalizes one data row. The returned error carries
// the operator-facing reason; the caller collects it instead of aborting.
func parseRow(h header, row []string, line int) (models.ImportRow, error) {
	r := models.ImportRow{Line: line}

	r.SKU = h.cell(row, colSKU)
	if r.SKU == "" {
		return r, fmt.Errorf("sku is required")
	}

	r.Title = h.cell(row, colTitle)
	if r.Title == "" {
		return r, fmt.Errorf("title is required")
	}

	priceStr := h.cell(row, colPrice)
	price, err := strconv.ParseInt(priceStr, 10, 64)
	if err != nil {
		return r, fmt.Errorf("price must be a number: %q", priceStr)
	}
	if price < 0 {
		return r, fmt.Errorf("price must not be negative: %d", price)
	}
	r.Price = price

	if stockStr := h.cell(row, colStock); stockStr != "" {
		stock, err := strconv.Atoi(stockStr)
		if err != nil || stock < 0 {
			return r, fmt.Errorf("stock must be a non-negative number: %q", stockStr)
		}
		r.Stock = &stock
	}

	r.Description = h.rawCell(row, colDescription)
	r.IsActive = truthy(h.cell(row, colStatus))
	r.Category = h.cell(row, colCategory)
	r.Subcategory = h.cell(row, colSubcategory)

	r.Handle = h.cell(row, colHandle)
	if r.Handle == "" {
		r.Handle = DeriveHandle(r.SKU)
	}

	return r, nil
}

var truthyValues = map[string]bool{
	"true": true, "1": true, "yes": true, "y": true,
	"on": true, "active": true, "公開": true,
}

func truthy(s string) bool {
	return truthyValues[strings.ToLower(s)]
}

// DeriveHandle builds a URL-safe slug from a SKU: lowercased, with runs of
// non-alphanumeric characters collapsed into single hyphens.
func DeriveHandle(sku string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(sku) {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !alnum {
			pendingDash = b.Len() > 0
			continue
		}
		if pendingDash {
			b.WriteByte('-')
			pendingDash = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

func emptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
