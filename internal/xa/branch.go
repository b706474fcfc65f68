// Package xa expõe New-Order e Payment como branches XA do DTM e o cliente
// que abre transações XA globais sobre elas.
package xa

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/dtm-labs/client/dtmcli"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/matheusmosca/tpcc-bench/internal/config"
	"github.com/matheusmosca/tpcc-bench/internal/sqlstore"
	"github.com/matheusmosca/tpcc-bench/internal/tpcc"
)

// DBConf monta a configuração que o DTM usa para abrir a conexão XA da branch
func DBConf(cfg config.Database) dtmcli.DBConf {
	return dtmcli.DBConf{
		Driver:   "postgres",
		Host:     cfg.Host,
		Port:     int64(cfg.Port),
		User:     cfg.User,
		Password: cfg.Password,
		Db:       cfg.Name,
		Schema:   "public",
	}
}

// Participant atende as chamadas de branch do DTM.
// Each prepare runs the procedure on the connection DTM opened for the branch.
type Participant struct {
	service *tpcc.Service
	dbConf  dtmcli.DBConf
}

// NewParticipant cria uma nova instância de Participant
func NewParticipant(service *tpcc.Service, dbConf dtmcli.DBConf) *Participant {
	return &Participant{service: service, dbConf: dbConf}
}

// HandleNewOrder handler para a branch XA de New-Order
func (p *Participant) HandleNewOrder() gin.HandlerFunc {
	return func(c *gin.Context) {
		var result *tpcc.NewOrderResult
		p.handle(c, tpcc.TxNewOrder, func(db *sql.DB, xa *dtmcli.Xa) error {
			var req tpcc.NewOrderRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				return fmt.Errorf("%w: %v", dtmcli.ErrFailure, err)
			}

			var err error
			result, err = p.service.Branch(sqlstore.NewBranchRepository(db)).NewOrder(c.Request.Context(), req)
			return err
		}, func() any { return result })
	}
}

// HandlePayment handler para a branch XA de Payment
func (p *Participant) HandlePayment() gin.HandlerFunc {
	return func(c *gin.Context) {
		var result *tpcc.PaymentResult
		p.handle(c, tpcc.TxPayment, func(db *sql.DB, xa *dtmcli.Xa) error {
			var req tpcc.PaymentRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				return fmt.Errorf("%w: %v", dtmcli.ErrFailure, err)
			}

			var err error
			result, err = p.service.Branch(sqlstore.NewBranchRepository(db)).Payment(c.Request.Context(), req)
			return err
		}, func() any { return result })
	}
}

// handle roda fn dentro de dtmcli.XaLocalTransaction. Na fase PREPARE fn é
// chamada; nas fases COMMIT/ROLLBACK o DTM conclui a transação sem chamá-la.
func (p *Participant) handle(c *gin.Context, kind tpcc.TxKind, fn dtmcli.XaLocalFunc, result func() any) {
	_, span := otel.Tracer("tpcc-xa").Start(c.Request.Context(), "xa.branch."+string(kind))
	defer span.End()

	query := c.Request.URL.Query()
	span.SetAttributes(
		attribute.String("xa.gid", query.Get("gid")),
		attribute.String("xa.op", query.Get("op")),
	)

	err := dtmcli.XaLocalTransaction(query, p.dbConf, func(db *sql.DB, xa *dtmcli.Xa) error {
		log.Printf("📦 [XA PREPARE] %s GID=%s BranchID=%s", kind, xa.Gid, xa.BranchID)
		return fn(db, xa)
	})
	if err != nil {
		span.RecordError(err)
		status := BranchStatus(err)
		log.Printf("❌ [XA] %s GID=%s failed (status=%d): %v", kind, query.Get("gid"), status, err)
		c.JSON(status, gin.H{"dtm_result": dtmResult(status), "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"dtm_result": dtmcli.ResultSuccess, "result": result()})
}

// BranchStatus maps a branch error to the HTTP status DTM understands:
// 409 aborts the global transaction, anything else is retried.
func BranchStatus(err error) int {
	switch {
	case errors.Is(err, dtmcli.ErrFailure),
		errors.Is(err, tpcc.ErrNotFound),
		errors.Is(err, tpcc.ErrInvalidInput),
		errors.Is(err, tpcc.ErrConstraintViolation):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func dtmResult(status int) string {
	if status == http.StatusConflict {
		return dtmcli.ResultFailure
	}
	return "ERROR"
}
