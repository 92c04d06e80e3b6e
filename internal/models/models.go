package models

import "time"

// Stock modes of a variation axis
const (
	StockModeNone       = "none"
	StockModeIndividual = "individual"
	StockModeShared     = "shared"
)

// Product represents a catalog product. Price is in whole yen.
// BaseStock is nil for unlimited; it is only meaningful when the product
// has no variation axes and is persisted as 0 otherwise.
type Product struct {
	ID          int64     `db:"id" json:"id"`
	SKU         string    `db:"sku" json:"sku"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description,omitempty"`
	Price       int64     `db:"price" json:"price"`
	BaseStock   *int      `db:"base_stock" json:"base_stock,omitempty"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	Category    string    `db:"category" json:"category,omitempty"`
	Subcategory string    `db:"subcategory" json:"subcategory,omitempty"`
	Handle      string    `db:"handle" json:"handle"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`

	// Axes are loaded separately from the products row, in display order.
	Axes []VariationAxis `db:"-" json:"axes,omitempty"`
}

// HasVariations reports whether the product has at least one variation axis.
func (p *Product) HasVariations() bool {
	return len(p.Axes) > 0
}

// VariationAxis is one independent dimension of variation (e.g. "size").
// SharedPool, when non-nil, is a single stock number applied to all of the
// axis's options collectively, overriding per-option counts.
type VariationAxis struct {
	ID         int64    `db:"id" json:"id"`
	ProductID  int64    `db:"product_id" json:"product_id"`
	Name       string   `db:"name" json:"name"`
	StockMode  string   `db:"stock_mode" json:"stock_mode"`
	SharedPool *int     `db:"shared_pool" json:"shared_pool,omitempty"`
	Position   int      `db:"position" json:"position"`
	Options    []Option `db:"-" json:"options"`
}

// Option is one concrete choice within an axis. StockCount nil means the
// option does not constrain stock; 0 means zero available. The two are
// never collapsed.
type Option struct {
	ID              int64  `db:"id" json:"id"`
	AxisID          int64  `db:"axis_id" json:"axis_id"`
	Label           string `db:"label" json:"label"`
	PriceAdjustment int64  `db:"price_adjustment" json:"price_adjustment"`
	StockCount      *int   `db:"stock_count" json:"stock_count,omitempty"`
	Position        int    `db:"position" json:"position"`
}

// Selection maps an axis ID to the chosen option ID. At most one entry per
// axis; it is not required to cover every axis.
type Selection map[int64]int64

// ImportRow is one validated, normalized row of a bulk import document.
type ImportRow struct {
	SKU         string
	Title       string
	Price       int64
	Description string
	IsActive    bool
	Category    string
	Subcategory string
	Handle      string
	Stock       *int
	Line        int
}

// RowFailure identifies a row that could not be ingested.
type RowFailure struct {
	SKU    string `json:"sku"`
	Title  string `json:"title"`
	Reason string `json:"reason"`
}

// ImportReport summarizes one ingestion batch. Failures is bounded; Failed
// carries the true count even when the list is truncated.
type ImportReport struct {
	BatchID   string       `json:"batch_id"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	Failures  []RowFailure `json:"failures,omitempty"`
	Truncated bool         `json:"failures_truncated,omitempty"`
}
