// Package ingest turns a delimited-text document into product upserts. Rows
// are processed strictly one at a time: each write depends on a fresh
// existence check against the record store, and two rows for the same SKU
// must never race each other. A failing row is recorded and the batch moves
// on; only an unusable header stops a batch before it starts.
package ingest

import (
	"context"
	"fmt"

	"catalog-service/internal/csvio"
	"catalog-service/internal/models"
	"catalog-service/internal/util"

	"go.uber.org/zap"
)

// DefaultMaxFailuresListed bounds the failure list carried in a report.
const DefaultMaxFailuresListed = 20

// RecordStore is the slice of the product store the pipeline needs: a
// lookup by natural key and per-row writes. GetProductBySKU returns
// (nil, nil) when no product exists.
type RecordStore interface {
	GetProductBySKU(ctx context.Context, sku string) (*models.Product, error)
	HandleExists(ctx context.Context, handle string) (bool, error)
	InsertProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, p *models.Product) error
}

// UpsertFunc is notified after each successfully written row.
type UpsertFunc func(ctx context.Context, p *models.Product, inserted bool)

// Batch is a parsed and validated document, ready to run. Failures holds
// rows rejected during validation; the caller decides whether to continue
// past them.
type Batch struct {
	Rows     []models.ImportRow
	Failures []models.RowFailure
}

// Pipeline ingests parsed rows into the record store.
type Pipeline struct {
	store       RecordStore
	maxFailures int
	logger      *zap.Logger
}

// NewPipeline creates an ingestion pipeline. maxFailures bounds the failure
// list in reports; zero or negative selects the default.
func NewPipeline(store RecordStore, maxFailures int) *Pipeline {
	if maxFailures <= 0 {
		maxFailures = DefaultMaxFailuresListed
	}
	return &Pipeline{
		store:       store,
		maxFailures: maxFailures,
		logger:      util.GetLogger(),
	}
}

// Prepare parses the document and validates every data row. The first row
// is the header; rows that are entirely empty are skipped. An error is
// returned only when the document has no usable header.
func (p *Pipeline) Prepare(doc string) (*Batch, error) {
	rows := csvio.Parse(doc)
	if len(rows) == 0 {
		return nil, fmt.Errorf("document is empty")
	}

	h, err := mapHeader(rows[0])
	if err != nil {
		return nil, err
	}

	batch := &Batch{}
	for i, row := range rows[1:] {
		if emptyRow(row) {
			continue
		}
		line := i + 2
		parsed, err := parseRow(h, row, line)
		if err != nil {
			batch.Failures = append(batch.Failures, models.RowFailure{
				SKU:    parsed.SKU,
				Title:  parsed.Title,
				Reason: err.Error(),
			})
			continue
		}
		batch.Rows = append(batch.Rows, parsed)
	}
	return batch, nil
}

// Run writes every validated row, sequentially, one store round-trip per
// row. Validation failures from Prepare count toward the report's failed
// total. A failing row never stops the rows after it; once started the
// batch runs to completion.
func (p *Pipeline) Run(ctx context.Context, batch *Batch, batchID string, onUpserted UpsertFunc) models.ImportReport {
	report := models.ImportReport{BatchID: batchID}
	failures := append([]models.RowFailure(nil), batch.Failures...)

	for _, row := range batch.Rows {
		product, inserted, err := p.upsertRow(ctx, row)
		if err != nil {
			util.ImportRowsFailed.Inc()
			failures = append(failures, models.RowFailure{
				SKU:    row.SKU,
				Title:  row.Title,
				Reason: err.Error(),
			})
			p.logger.Warn("Import row failed",
				zap.String("sku", row.SKU),
				zap.Int("line", row.Line),
				zap.Error(err))
			continue
		}

		util.ImportRowsSucceeded.Inc()
		report.Succeeded++
		if onUpserted != nil {
			onUpserted(ctx, product, inserted)
		}
	}

	util.ImportRowsFailed.Add(float64(len(batch.Failures)))

	report.Failed = len(failures)
	if len(failures) > p.maxFailures {
		failures = failures[:p.maxFailures]
		report.Truncated = true
	}
	report.Failures = failures
	return report
}

// upsertRow performs the existence check and the single write for one row.
func (p *Pipeline) upsertRow(ctx context.Context, row models.ImportRow) (*models.Product, bool, error) {
	existing, err := p.store.GetProductBySKU(ctx, row.SKU)
	if err != nil {
		return nil, false, fmt.Errorf("lookup failed: %w", err)
	}

	if existing != nil {
		product := applyRow(existing, row)
		if existing.HasVariations() {
			// Variant stock lives on options; the base field stays zero no
			// matter what the document said.
			zero := 0
			product.BaseStock = &zero
		}
		if err := p.store.UpdateProduct(ctx, product); err != nil {
			return nil, false, fmt.Errorf("update failed: %w", err)
		}
		return product, false, nil
	}

	handle, err := p.availableHandle(ctx, row.Handle)
	if err != nil {
		return nil, false, fmt.Errorf("handle check failed: %w", err)
	}

	product := &models.Product{
		SKU:         row.SKU,
		Title:       row.Title,
		Description: row.Description,
		Price:       row.Price,
		BaseStock:   row.Stock,
		IsActive:    row.IsActive,
		Category:    row.Category,
		Subcategory: row.Subcategory,
		Handle:      handle,
	}
	if err := p.store.InsertProduct(ctx, product); err != nil {
		return nil, false, fmt.Errorf("insert failed: %w", err)
	}
	return product, true, nil
}

// applyRow overlays row fields onto a copy of the stored product. The
// handle is only replaced when the document names one explicitly.
func applyRow(existing *models.Product, row models.ImportRow) *models.Product {
	product := *existing
	product.Title = row.Title
	product.Description = row.Description
	product.Price = row.Price
	product.BaseStock = row.Stock
	product.IsActive = row.IsActive
	product.Category = row.Category
	product.Subcategory = row.Subcategory
	if h := row.Handle; h != "" && h != DeriveHandle(row.SKU) {
		product.Handle = h
	}
	return &product
}

// availableHandle probes the store for a free handle, appending a numeric
// suffix when the candidate is taken.
func (p *Pipeline) availableHandle(ctx context.Context, handle string) (string, error) {
	candidate := handle
	for i := 2; ; i++ {
		taken, err := p.store.HandleExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", handle, i)
	}
}
