// Package bench dirige carga New-Order/Payment contra o tpccd e agrega os resultados.
package bench

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dtm-labs/client/dtmcli"
	"github.com/go-resty/resty/v2"

	"github.com/matheusmosca/tpcc-bench/internal/tpcc"
	"github.com/matheusmosca/tpcc-bench/internal/xa"
)

// Driver executa uma transação e reporta apenas sucesso ou falha
type Driver interface {
	NewOrder(ctx context.Context, req tpcc.NewOrderRequest) error
	Payment(ctx context.Context, req tpcc.PaymentRequest) error
}

// RemoteError is a non-2xx answer from tpccd.
type RemoteError struct {
	Status  int
	Outcome string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("tpccd returned %d (%s): %s", e.Status, e.Outcome, e.Message)
}

// HTTPDriver chama os endpoints tipados do tpccd via resty
type HTTPDriver struct {
	client  *resty.Client
	baseURL string
}

// NewHTTPDriver cria um driver HTTP para o tpccd em baseURL
func NewHTTPDriver(baseURL string, timeout time.Duration) *HTTPDriver {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	return &HTTPDriver{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

func (d *HTTPDriver) NewOrder(ctx context.Context, req tpcc.NewOrderRequest) error {
	return d.post(ctx, "/api/neword", &req)
}

func (d *HTTPDriver) Payment(ctx context.Context, req tpcc.PaymentRequest) error {
	return d.post(ctx, "/api/payment", &req)
}

func (d *HTTPDriver) post(ctx context.Context, path string, body any) error {
	var apiErr struct {
		Error   string `json:"error"`
		Outcome string `json:"outcome"`
	}

	resp, err := d.client.R().
		SetContext(ctx).
		SetBody(body).
		SetError(&apiErr).
		Post(d.baseURL + path)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	if resp.IsError() {
		return &RemoteError{Status: resp.StatusCode(), Outcome: apiErr.Outcome, Message: apiErr.Error}
	}
	return nil
}

// XADriver executa cada transação como XA global no DTM
type XADriver struct {
	client *xa.Client
}

// NewXADriver cria um driver XA
func NewXADriver(client *xa.Client) *XADriver {
	return &XADriver{client: client}
}

func (d *XADriver) NewOrder(ctx context.Context, req tpcc.NewOrderRequest) error {
	_, err := d.client.NewOrder(ctx, req)
	return err
}

func (d *XADriver) Payment(ctx context.Context, req tpcc.PaymentRequest) error {
	_, err := d.client.Payment(ctx, req)
	return err
}

// IsRollback reports whether err is a business rollback (unknown item,
// missing customer, rejected input) rather than an infrastructure failure.
func IsRollback(err error) bool {
	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote.Outcome == "not_found" || remote.Outcome == "invalid_input"
	}
	return errors.Is(err, dtmcli.ErrFailure) || errors.Is(err, tpcc.ErrNotFound) || errors.Is(err, tpcc.ErrInvalidInput)
}
