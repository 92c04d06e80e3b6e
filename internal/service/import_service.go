package service

import (
	"context"
	"fmt"
	"time"

	"catalog-service/internal/broker"
	"catalog-service/internal/ingest"
	"catalog-service/internal/models"
	"catalog-service/internal/store"
	"catalog-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ImportService orchestrates bulk ingestion: parse, validate, run the
// pipeline, publish events. The export path lives here too since it reads
// the same flattened shape the importer writes.
type ImportService struct {
	store     *store.Store
	pipeline  *ingest.Pipeline
	publisher *broker.EventPublisher
	logger    *zap.Logger
}

// NewImportService creates a new import service
func NewImportService(store *store.Store, pipeline *ingest.Pipeline, publisher *broker.EventPublisher) *ImportService {
	return &ImportService{
		store:     store,
		pipeline:  pipeline,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// Prepare parses and validates a document without writing anything, so the
// operator can confirm before proceeding past malformed rows.
func (s *ImportService) Prepare(ctx context.Context, doc string) (*ingest.Batch, error) {
	_, span := util.StartSpan(ctx, "ImportService.Prepare")
	defer span.End()

	return s.pipeline.Prepare(doc)
}

// Run ingests a prepared batch. A store that cannot be reached at all fails
// the whole batch up front; after that point individual row failures are
// collected and the batch runs to completion.
func (s *ImportService) Run(ctx context.Context, batch *ingest.Batch) (models.ImportReport, error) {
	ctx, span := util.StartSpan(ctx, "ImportService.Run")
	defer span.End()

	if err := s.store.Ping(ctx); err != nil {
		return models.ImportReport{}, fmt.Errorf("record store unreachable: %w", err)
	}

	batchID := uuid.New().String()
	util.ImportBatchesTotal.Inc()
	s.logger.Info("Import batch started",
		zap.String("batch_id", batchID),
		zap.Int("rows", len(batch.Rows)),
		zap.Int("rejected", len(batch.Failures)))

	report := s.pipeline.Run(ctx, batch, batchID, s.notifyUpserted(batchID))

	event := &models.ImportCompletedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeImportCompleted,
			Timestamp: time.Now(),
		},
		BatchID:   batchID,
		Succeeded: report.Succeeded,
		Failed:    report.Failed,
	}
	if err := s.publisher.PublishImportCompleted(ctx, event); err != nil {
		s.logger.Error("Failed to publish ImportCompleted event", zap.Error(err))
	}

	s.logger.Info("Import batch finished",
		zap.String("batch_id", batchID),
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", report.Failed))
	return report, nil
}

// notifyUpserted publishes a ProductUpserted event per written row; a
// publish failure never fails the row.
func (s *ImportService) notifyUpserted(batchID string) ingest.UpsertFunc {
	return func(ctx context.Context, product *models.Product, inserted bool) {
		event := &models.ProductUpsertedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeProductUpserted,
				Timestamp: time.Now(),
			},
			ProductID: product.ID,
			SKU:       product.SKU,
			Handle:    product.Handle,
			Inserted:  inserted,
			BatchID:   batchID,
		}
		if err := s.publisher.PublishProductUpserted(ctx, event); err != nil {
			s.logger.Error("Failed to publish ProductUpserted event",
				zap.String("sku", product.SKU),
				zap.Error(err))
		}
	}
}

// Export renders the whole catalog as an importable document
func (s *ImportService) Export(ctx context.Context) (string, error) {
	ctx, span := util.StartSpan(ctx, "ImportService.Export")
	defer span.End()

	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list products: %w", err)
	}
	return ingest.ExportDocument(products), nil
}
