package worker

import (
	"context"
	"log"

	"catalog-service/internal/broker"
	"catalog-service/internal/models"
	"catalog-service/internal/redisclient"
)

// CacheWorker drops stale product snapshots from Redis when bulk ingestion
// rewrites a product.
type CacheWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	redis        *redisclient.Client
}

// NewCacheWorker creates a new cache invalidation worker
func NewCacheWorker(consumer *broker.Consumer, redis *redisclient.Client) *CacheWorker {
	w := &CacheWorker{
		consumer: consumer,
		redis:    redis,
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnProductUpserted(w.handleProductUpserted)
	eventHandler.OnImportCompleted(w.handleImportCompleted)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *CacheWorker) Start(ctx context.Context) error {
	log.Println("Starting cache worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *CacheWorker) Stop() error {
	log.Println("Stopping cache worker...")
	return w.consumer.Close()
}

func (w *CacheWorker) handleProductUpserted(ctx context.Context, event *models.ProductUpsertedEvent) error {
	if err := w.redis.InvalidateProduct(ctx, event.SKU); err != nil {
		log.Printf("Failed to invalidate product cache: sku=%s: %v", event.SKU, err)
		return err
	}
	return nil
}

func (w *CacheWorker) handleImportCompleted(_ context.Context, event *models.ImportCompletedEvent) error {
	log.Printf("Import batch completed: batch=%s succeeded=%d failed=%d",
		event.BatchID, event.Succeeded, event.Failed)
	return nil
}
