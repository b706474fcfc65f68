// Package httpapi expõe os perfis New-Order e Payment via HTTP (gin).
package httpapi

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/matheusmosca/tpcc-bench/internal/tpcc"
)

// TransactionService define a interface para o use case
type TransactionService interface {
	NewOrder(ctx context.Context, req tpcc.NewOrderRequest) (*tpcc.NewOrderResult, error)
	Payment(ctx context.Context, req tpcc.PaymentRequest) (*tpcc.PaymentResult, error)
}

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

const healthTimeout = 2 * time.Second

// Handler contém os handlers HTTP
type Handler struct {
	service     TransactionService
	tracer      trace.Tracer
	serviceName string
	checks      map[string]HealthCheck
}

// NewHandler cria uma nova instância de Handler
func NewHandler(service TransactionService, tracer trace.Tracer, serviceName string, checks map[string]HealthCheck) *Handler {
	return &Handler{
		service:     service,
		tracer:      tracer,
		serviceName: serviceName,
		checks:      checks,
	}
}

// Register registra as rotas no router
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/health", h.Health)

	api := r.Group("/api")
	api.POST("/transaction", h.Transaction)
	api.POST("/tpc-c_transaction", h.Transaction) // rota usada pelo dashboard de análise
	api.POST("/neword", h.NewOrder)
	api.POST("/payment", h.Payment)
}

// Transaction executa o perfil indicado em "name", preenchendo os campos ausentes com os defaults de demonstração
func (h *Handler) Transaction(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "http.transaction")
	defer span.End()

	req := DefaultTransactionRequest()
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "outcome": "invalid_input"})
		return
	}
	span.SetAttributes(attribute.String("tpcc.tx", req.Name))

	var (
		result any
		err    error
	)
	start := time.Now()
	switch tpcc.TxKind(req.Name) {
	case tpcc.TxNewOrder:
		result, err = h.service.NewOrder(ctx, req.NewOrder())
	case tpcc.TxPayment:
		result, err = h.service.Payment(ctx, req.Payment())
	}
	elapsed := time.Since(start)

	if err != nil {
		h.fail(c, span, req.Name, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   req.Name + " transaction committed",
		"exec_time": elapsed.Seconds(),
		"result":    result,
	})
}

// NewOrder executa New-Order com o corpo tipado
func (h *Handler) NewOrder(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "http.neword")
	defer span.End()

	var req tpcc.NewOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "outcome": "invalid_input"})
		return
	}

	span.SetAttributes(
		attribute.Int("w_id", req.WarehouseID),
		attribute.Int("d_id", req.DistrictID),
		attribute.Int("c_id", req.CustomerID),
		attribute.Int("o_ol_cnt", req.LineCount),
	)

	result, err := h.service.NewOrder(ctx, req)
	if err != nil {
		h.fail(c, span, string(tpcc.TxNewOrder), err)
		return
	}

	span.SetAttributes(attribute.Int("o_id", result.OrderID))
	c.JSON(http.StatusOK, result)
}

// Payment executa Payment com o corpo tipado
func (h *Handler) Payment(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "http.payment")
	defer span.End()

	var req tpcc.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "outcome": "invalid_input"})
		return
	}

	span.SetAttributes(
		attribute.Int("w_id", req.WarehouseID),
		attribute.Int("d_id", req.DistrictID),
		attribute.Bool("by_name", req.ByName),
	)

	result, err := h.service.Payment(ctx, req)
	if err != nil {
		h.fail(c, span, string(tpcc.TxPayment), err)
		return
	}

	span.SetAttributes(attribute.Int("c_id", result.CustomerID))
	c.JSON(http.StatusOK, result)
}

// Health handler para health check
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	status := http.StatusOK
	checks := make(gin.H, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			status = http.StatusServiceUnavailable
			checks[name] = err.Error()
			continue
		}
		checks[name] = "ok"
	}

	state := "healthy"
	if status != http.StatusOK {
		state = "unhealthy"
	}
	c.JSON(status, gin.H{"status": state, "service": h.serviceName, "checks": checks})
}

func (h *Handler) fail(c *gin.Context, span trace.Span, name string, err error) {
	span.RecordError(err)
	status := StatusFor(err)
	log.Printf("❌ [%s] Request failed (status=%d): %v", name, status, err)
	c.JSON(status, gin.H{"error": err.Error(), "outcome": tpcc.Outcome(err)})
}

// StatusFor maps a procedure error to an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, tpcc.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, tpcc.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, tpcc.ErrConstraintViolation):
		return http.StatusConflict
	case errors.Is(err, tpcc.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, tpcc.ErrConnection):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
