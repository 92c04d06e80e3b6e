package service

import (
	"context"
	"fmt"
	"time"

	"catalog-service/internal/models"
	"catalog-service/internal/redisclient"
	"catalog-service/internal/store"
	"catalog-service/internal/util"
	"catalog-service/internal/variation"

	"go.uber.org/zap"
)

const productCacheTTL = 5 * time.Minute

// CatalogService answers storefront price and availability questions. The
// resolution itself is pure; this layer adds the product snapshot cache and
// the pending-cart reservation counters around it.
type CatalogService struct {
	store          *store.Store
	redis          *redisclient.Client
	reservationTTL time.Duration
	logger         *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(store *store.Store, redis *redisclient.Client, reservationTTL time.Duration) *CatalogService {
	return &CatalogService{
		store:          store,
		redis:          redis,
		reservationTTL: reservationTTL,
		logger:         util.GetLogger(),
	}
}

// AvailabilityRequest represents an availability or reservation request
type AvailabilityRequest struct {
	Selection []SelectionEntry `json:"selection"`
	Quantity  int              `json:"quantity" binding:"required"`
}

// SelectionEntry is one axis choice in a request
type SelectionEntry struct {
	AxisID   int64 `json:"axis_id" binding:"required"`
	OptionID int64 `json:"option_id" binding:"required"`
}

// ToSelection converts request entries to the resolver's selection form
func (r *AvailabilityRequest) ToSelection() models.Selection {
	sel := make(models.Selection, len(r.Selection))
	for _, e := range r.Selection {
		sel[e.AxisID] = e.OptionID
	}
	return sel
}

// AvailabilityResponse carries the resolved offer for one selection. The
// availability verdict is advisory: it is not atomic with any stock
// decrement, so the order-commit path must validate again.
type AvailabilityResponse struct {
	SKU      string                       `json:"sku"`
	Price    int64                        `json:"price"`
	Result   variation.AvailabilityResult `json:"result"`
	Reserved int                          `json:"reserved"`
}

// GetProduct fetches a product snapshot, preferring the Redis cache
func (s *CatalogService) GetProduct(ctx context.Context, sku string) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.GetProduct")
	defer span.End()

	cached, err := s.redis.GetCachedProduct(ctx, sku)
	if err != nil {
		s.logger.Warn("Product cache read failed", zap.String("sku", sku), zap.Error(err))
	}
	if cached != nil {
		util.ProductCacheHits.WithLabelValues("hit").Inc()
		return cached, nil
	}
	util.ProductCacheHits.WithLabelValues("miss").Inc()

	product, err := s.store.GetProductBySKU(ctx, sku)
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if product == nil {
		return nil, fmt.Errorf("product not found: %s", sku)
	}

	if err := s.redis.CacheProduct(ctx, product, productCacheTTL); err != nil {
		s.logger.Warn("Product cache write failed", zap.String("sku", sku), zap.Error(err))
	}
	return product, nil
}

// CheckAvailability resolves price and stock for a selection, counting
// pending-cart reservations held in Redis
func (s *CatalogService) CheckAvailability(ctx context.Context, sku string, req *AvailabilityRequest) (*AvailabilityResponse, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.CheckAvailability")
	defer span.End()

	start := time.Now()
	defer func() {
		util.ResolveLatency.Observe(time.Since(start).Seconds())
	}()

	product, err := s.GetProduct(ctx, sku)
	if err != nil {
		return nil, err
	}

	sel := req.ToSelection()
	if uncovered := variation.UncoveredConstrainedAxes(product, sel); len(uncovered) > 0 {
		// Skipped axes loosen the ceiling; worth a trace when debugging
		// storefront callers that forget a selection entry.
		s.logger.Debug("Selection leaves constrained axes uncovered",
			zap.String("sku", sku),
			zap.Strings("axes", uncovered))
	}

	reserved, err := s.redis.GetReserved(ctx, product.ID, sel)
	if err != nil {
		s.logger.Warn("Reservation read failed, assuming none",
			zap.String("sku", sku), zap.Error(err))
		reserved = 0
	}

	result, err := variation.CheckAvailability(product, sel, req.Quantity, reserved)
	if err != nil {
		util.AvailabilityChecksTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	if result.Available {
		util.AvailabilityChecksTotal.WithLabelValues("available").Inc()
	} else {
		util.AvailabilityChecksTotal.WithLabelValues("unavailable").Inc()
	}

	return &AvailabilityResponse{
		SKU:      product.SKU,
		Price:    variation.ResolvePrice(product, sel),
		Result:   result,
		Reserved: reserved,
	}, nil
}

// Reserve checks availability and, when satisfiable, records the quantity
// in the reservation counter for the product+selection pair
func (s *CatalogService) Reserve(ctx context.Context, sku string, req *AvailabilityRequest) (*AvailabilityResponse, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.Reserve")
	defer span.End()

	resp, err := s.CheckAvailability(ctx, sku, req)
	if err != nil {
		return nil, err
	}
	if !resp.Result.Available {
		return resp, nil
	}

	product, err := s.GetProduct(ctx, sku)
	if err != nil {
		return nil, err
	}

	total, err := s.redis.AddReservation(ctx, product.ID, req.ToSelection(), req.Quantity, s.reservationTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to record reservation: %w", err)
	}

	util.ReservationsTotal.Inc()
	s.logger.Info("Reservation recorded",
		zap.String("sku", sku),
		zap.Int("quantity", req.Quantity),
		zap.Int("total_reserved", total))

	resp.Reserved = total
	return resp, nil
}

// Release returns previously reserved quantity to the pool (cart removal)
func (s *CatalogService) Release(ctx context.Context, sku string, req *AvailabilityRequest) error {
	ctx, span := util.StartSpan(ctx, "CatalogService.Release")
	defer span.End()

	product, err := s.GetProduct(ctx, sku)
	if err != nil {
		return err
	}
	return s.redis.ReleaseReservation(ctx, product.ID, req.ToSelection(), req.Quantity)
}
