package tpcc

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultMaxOrderLines   = 15
	DefaultRestockQuantity = 91
	DefaultCustomerDataMax = 500
	DefaultTxTimeout       = 10 * time.Second
)

// TxKind identifies one of the two transaction profiles.
type TxKind string

const (
	TxNewOrder TxKind = "neword"
	TxPayment  TxKind = "payment"
)

// Options ajusta as regras de negócio e os limites de execução
type Options struct {
	// MaxOrderLines bounds o_ol_cnt.
	MaxOrderLines int
	// RestockQuantity is added when a line would drain a stock row.
	RestockQuantity int
	// CustomerDataMax caps c_data in characters; 0 leaves it unbounded.
	CustomerDataMax int
	// TxTimeout bounds a whole procedure, commit included.
	TxTimeout time.Duration
}

// DefaultOptions returns the limits of the bmsql schema.
func DefaultOptions() Options {
	return Options{
		MaxOrderLines:   DefaultMaxOrderLines,
		RestockQuantity: DefaultRestockQuantity,
		CustomerDataMax: DefaultCustomerDataMax,
		TxTimeout:       DefaultTxTimeout,
	}
}

func (o Options) withDefaults() Options {
	if o.MaxOrderLines <= 0 {
		o.MaxOrderLines = DefaultMaxOrderLines
	}
	if o.RestockQuantity <= 0 {
		o.RestockQuantity = DefaultRestockQuantity
	}
	if o.TxTimeout <= 0 {
		o.TxTimeout = DefaultTxTimeout
	}
	return o
}

// Publisher recebe os resultados de transações já comitadas.
// Errors are logged by the caller and never undo the commit.
type Publisher interface {
	PublishNewOrder(ctx context.Context, result *NewOrderResult) error
	PublishPayment(ctx context.Context, result *PaymentResult) error
}

// Service executa os perfis New-Order e Payment sobre um Repository
type Service struct {
	repository Repository
	publisher  Publisher
	opts       Options
	now        func() time.Time
	// prepared marca execuções como branch XA: o commit final é do coordenador
	prepared bool

	tracer      trace.Tracer
	txCounter   metric.Int64Counter
	txDuration  metric.Float64Histogram
	lineCounter metric.Int64Counter
}

// NewService cria uma nova instância de Service. publisher may be nil.
func NewService(repository Repository, opts Options, publisher Publisher) *Service {
	meter := otel.Meter("tpcc")

	txCounter, err := meter.Int64Counter("tpcc.transactions",
		metric.WithDescription("TPC-C transactions by profile and outcome"))
	if err != nil {
		log.Printf("⚠️ Failed to create tpcc.transactions counter: %v", err)
	}
	txDuration, err := meter.Float64Histogram("tpcc.transaction.duration",
		metric.WithDescription("TPC-C transaction latency"),
		metric.WithUnit("ms"))
	if err != nil {
		log.Printf("⚠️ Failed to create tpcc.transaction.duration histogram: %v", err)
	}
	lineCounter, err := meter.Int64Counter("tpcc.neword.lines",
		metric.WithDescription("Order lines written by committed New-Order transactions"))
	if err != nil {
		log.Printf("⚠️ Failed to create tpcc.neword.lines counter: %v", err)
	}

	return &Service{
		repository:  repository,
		publisher:   publisher,
		opts:        opts.withDefaults(),
		now:         func() time.Time { return time.Now().Truncate(time.Microsecond) },
		tracer:      otel.Tracer("tpcc"),
		txCounter:   txCounter,
		txDuration:  txDuration,
		lineCounter: lineCounter,
	}
}

// Branch returns a copy of s bound to repository that publishes nothing and
// reports successful runs as prepared. It is used when the commit is decided
// by an external coordinator.
func (s *Service) Branch(repository Repository) *Service {
	branch := *s
	branch.repository = repository
	branch.publisher = nil
	branch.prepared = true
	return &branch
}

// outcome labels a finished run. A successful branch run has only been
// prepared, so it is not reported as committed.
func (s *Service) outcome(err error) string {
	if err == nil && s.prepared {
		return "prepared"
	}
	return Outcome(err)
}

func (s *Service) finished() string {
	if s.prepared {
		return "Prepared"
	}
	return "Committed"
}

// Options returns the effective options.
func (s *Service) Options() Options {
	return s.opts
}

func (s *Service) begin(ctx context.Context, kind TxKind) (context.Context, context.CancelFunc, Tx, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.TxTimeout)
	tx, err := s.repository.BeginTx(ctx)
	if err != nil {
		cancel()
		return nil, nil, nil, fmt.Errorf("begin %s: %w", kind, err)
	}
	return ctx, cancel, tx, nil
}

// deadline turns an unclassified failure into ErrTimeout when the procedure's
// deadline has passed.
func deadline(ctx context.Context, err error) error {
	if err == nil || errors.Is(err, ErrTimeout) {
		return err
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &TxError{Op: "deadline", Kind: ErrTimeout, Err: err}
	}
	return err
}

func (s *Service) observe(ctx context.Context, span trace.Span, kind TxKind, start time.Time, err error) {
	outcome := s.outcome(err)
	attrs := metric.WithAttributes(
		attribute.String("tx", string(kind)),
		attribute.String("outcome", outcome),
	)
	if s.txCounter != nil {
		s.txCounter.Add(ctx, 1, attrs)
	}
	if s.txDuration != nil {
		s.txDuration.Record(ctx, float64(time.Since(start).Microseconds())/1000, attrs)
	}

	span.SetAttributes(attribute.String("tpcc.outcome", outcome))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		return
	}
	span.SetStatus(codes.Ok, outcome)
}
