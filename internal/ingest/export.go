package ingest

import (
	"strconv"

	"catalog-service/internal/csvio"
	"catalog-service/internal/models"
)

// exportHeader carries the same annotation hints the admin template uses;
// the importer strips them before matching.
var exportHeader = []string{
	"sku（必須）",
	"title（必須）",
	"price（必須・数値）",
	"description",
	"status",
	"category",
	"subcategory",
	"handle",
	"stock（数値）",
}

// ExportDocument renders products as an importable delimited-text document:
// one flattened row per product, no variant detail. An empty stock cell
// means unlimited; products with variation axes always export 0 because
// their base stock is persisted as 0.
func ExportDocument(products []models.Product) string {
	rows := make([][]string, 0, len(products)+1)
	rows = append(rows, exportHeader)
	for i := range products {
		rows = append(rows, exportRow(&products[i]))
	}
	return csvio.WriteDocument(rows)
}

func exportRow(p *models.Product) []string {
	status := "false"
	if p.IsActive {
		status = "true"
	}
	stock := ""
	if p.BaseStock != nil {
		stock = strconv.Itoa(*p.BaseStock)
	}
	return []string{
		p.SKU,
		p.Title,
		strconv.FormatInt(p.Price, 10),
		p.Description,
		status,
		p.Category,
		p.Subcategory,
		p.Handle,
		stock,
	}
}
