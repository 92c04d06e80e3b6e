package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"catalog-service/internal/service"
	"catalog-service/internal/util"
	"catalog-service/internal/variation"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	catalogService *service.CatalogService
	importService  *service.ImportService
}

// NewHandler creates a new HTTP handler
func NewHandler(catalogService *service.CatalogService, importService *service.ImportService) *Handler {
	return &Handler{
		catalogService: catalogService,
		importService:  importService,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/products/:sku", h.getProduct)
		v1.POST("/products/:sku/availability", h.checkAvailability)
		v1.POST("/products/:sku/reserve", h.reserve)
		v1.POST("/products/:sku/release", h.release)

		admin := v1.Group("/admin")
		{
			admin.POST("/import", h.importCatalog)
			admin.GET("/export", h.exportCatalog)
		}
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// getProduct returns a product snapshot with its variation axes
func (h *Handler) getProduct(c *gin.Context) {
	product, err := h.catalogService.GetProduct(c.Request.Context(), c.Param("sku"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Product not found",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, product)
}

// checkAvailability resolves price and stock for an option selection
func (h *Handler) checkAvailability(c *gin.Context) {
	var req service.AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	resp, err := h.catalogService.CheckAvailability(c.Request.Context(), c.Param("sku"), &req)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, variation.ErrInvalidQuantity) || errors.Is(err, variation.ErrInvalidReserved) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{
			"error":   "Availability check failed",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// reserve records a pending-cart reservation when the selection is available
func (h *Handler) reserve(c *gin.Context) {
	var req service.AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	resp, err := h.catalogService.Reserve(c.Request.Context(), c.Param("sku"), &req)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, variation.ErrInvalidQuantity) || errors.Is(err, variation.ErrInvalidReserved) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{
			"error":   "Reservation failed",
			"details": err.Error(),
		})
		return
	}

	if !resp.Result.Available {
		c.JSON(http.StatusConflict, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// release returns reserved quantity to the pool
func (h *Handler) release(c *gin.Context) {
	var req service.AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if err := h.catalogService.Release(c.Request.Context(), c.Param("sku"), &req); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Release failed",
			"details": err.Error(),
		})
		return
	}
	c.Status(http.StatusNoContent)
}

// importCatalog ingests a delimited-text document. Without force=true,
// validation failures are returned for confirmation and nothing is written.
func (h *Handler) importCatalog(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	batch, err := h.importService.Prepare(c.Request.Context(), string(body))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Document rejected",
			"details": err.Error(),
		})
		return
	}

	force, _ := strconv.ParseBool(c.Query("force"))
	if len(batch.Failures) > 0 && !force {
		c.JSON(http.StatusConflict, gin.H{
			"error":      "Document contains invalid rows; retry with force=true to skip them",
			"valid_rows": len(batch.Rows),
			"failures":   batch.Failures,
		})
		return
	}

	report, err := h.importService.Run(c.Request.Context(), batch)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Import failed",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, report)
}

// exportCatalog downloads the whole catalog as a delimited-text document
func (h *Handler) exportCatalog(c *gin.Context) {
	doc, err := h.importService.Export(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Export failed",
			"details": err.Error(),
		})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="products.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(doc))
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
