package bench

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dtm-labs/client/dtmcli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matheusmosca/tpcc-bench/internal/tpcc"
	"github.com/matheusmosca/tpcc-bench/internal/workload"
)

type fakeDriver struct {
	newOrders   atomic.Int64
	payments    atomic.Int64
	newOrderErr error
}

func (f *fakeDriver) NewOrder(ctx context.Context, req tpcc.NewOrderRequest) error {
	f.newOrders.Add(1)
	if err := req.Validate(tpcc.DefaultMaxOrderLines); err != nil {
		return err
	}
	return f.newOrderErr
}

func (f *fakeDriver) Payment(ctx context.Context, req tpcc.PaymentRequest) error {
	f.payments.Add(1)
	return req.Validate()
}

func testConfig() Config {
	return Config{
		Workers:       4,
		Duration:      100 * time.Millisecond,
		NewOrderRatio: 0.5,
		Seed:          1,
		Scale:         workload.Scale{Warehouses: 1, DistrictsPerWarehouse: 10, CustomersPerDistrict: 30, Items: 100},
		Mix:           workload.DefaultMix(),
	}
}

func TestRunner_CountsEveryCompletedAttempt(t *testing.T) {
	driver := &fakeDriver{}

	report := NewRunner(driver, testConfig()).Run(context.Background())

	newOrder := report.ByKind[tpcc.TxNewOrder]
	payment := report.ByKind[tpcc.TxPayment]
	assert.Greater(t, newOrder.Total(), 0)
	assert.Greater(t, payment.Total(), 0)
	assert.Zero(t, newOrder.Failed)
	assert.Zero(t, payment.Failed)
	assert.Zero(t, payment.RolledBack)
	assert.LessOrEqual(t, int64(newOrder.Total()), driver.newOrders.Load())
	assert.LessOrEqual(t, int64(payment.Total()), driver.payments.Load())
	assert.Contains(t, report.String(), "neword")
}

func TestRunner_ClassifiesFailures(t *testing.T) {
	driver := &fakeDriver{newOrderErr: &RemoteError{Status: http.StatusServiceUnavailable, Outcome: "connection_failure"}}
	cfg := testConfig()
	cfg.NewOrderRatio = 1

	report := NewRunner(driver, cfg).Run(context.Background())

	newOrder := report.ByKind[tpcc.TxNewOrder]
	assert.Greater(t, newOrder.Failed, 0)
	assert.Zero(t, newOrder.Committed)
	assert.Zero(t, report.ByKind[tpcc.TxPayment].Total())
}

func TestIsRollback(t *testing.T) {
	assert.True(t, IsRollback(&RemoteError{Status: 404, Outcome: "not_found"}))
	assert.True(t, IsRollback(&RemoteError{Status: 400, Outcome: "invalid_input"}))
	assert.False(t, IsRollback(&RemoteError{Status: 504, Outcome: "timeout"}))
	assert.True(t, IsRollback(fmt.Errorf("XA transaction failed: %w", dtmcli.ErrFailure)))
	assert.True(t, IsRollback(tpcc.NotFound(tpcc.EntityItem, "i_id=%d", 1)))
	assert.False(t, IsRollback(errors.New("connection refused")))
}

func TestStats_MeanLatency(t *testing.T) {
	var s Stats
	assert.Zero(t, s.MeanLatency())

	s.record(10*time.Millisecond, nil)
	s.record(30*time.Millisecond, &RemoteError{Outcome: "not_found"})

	assert.Equal(t, 20*time.Millisecond, s.MeanLatency())
	assert.Equal(t, 1, s.Committed)
	assert.Equal(t, 1, s.RolledBack)
}

func TestHTTPDriver(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/neword":
			var req tpcc.NewOrderRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			if req.ItemIDs[len(req.ItemIDs)-1] > 100 {
				w.WriteHeader(http.StatusNotFound)
				fmt.Fprint(w, `{"error":"item not found (i_id=101)","outcome":"not_found"}`)
				return
			}
			fmt.Fprint(w, `{"o_id":1}`)
		case "/api/payment":
			fmt.Fprint(w, `{"c_id":1}`)
		default:
			w.WriteHeader(http.StatusTeapot)
		}
	}))
	defer server.Close()
	driver := NewHTTPDriver(server.URL+"/", time.Second)
	ctx := context.Background()

	order := tpcc.NewOrderRequest{WarehouseID: 1, DistrictID: 1, CustomerID: 1, LineCount: 1,
		SupplyWarehouseIDs: []int{1}, ItemIDs: []int{5}, Quantities: []int{1}}
	require.NoError(t, driver.NewOrder(ctx, order))
	require.NoError(t, driver.Payment(ctx, tpcc.PaymentRequest{WarehouseID: 1, DistrictID: 1, CustomerID: 1}))

	order.ItemIDs = []int{101}
	err := driver.NewOrder(ctx, order)

	var remote *RemoteError
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, http.StatusNotFound, remote.Status)
	assert.Equal(t, "not_found", remote.Outcome)
	assert.True(t, IsRollback(err))
}
