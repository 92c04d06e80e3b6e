package models

import "time"

// Event types
const (
	EventTypeProductUpserted = "PRODUCT_UPSERTED"
	EventTypeImportCompleted = "IMPORT_COMPLETED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// ProductUpsertedEvent published after a bulk-import row is written
type ProductUpsertedEvent struct {
	BaseEvent
	ProductID int64  `json:"product_id"`
	SKU       string `json:"sku"`
	Handle    string `json:"handle"`
	Inserted  bool   `json:"inserted"`
	BatchID   string `json:"batch_id"`
}

// ImportCompletedEvent published when an ingestion batch finishes
type ImportCompletedEvent struct {
	BaseEvent
	BatchID   string `json:"batch_id"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
}
