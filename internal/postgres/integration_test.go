package postgres

import (
	"context"
	"os"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matheusmosca/tpcc-bench/internal/tpcc"
	"github.com/matheusmosca/tpcc-bench/internal/workload"
)

var testScale = workload.Scale{Warehouses: 2, DistrictsPerWarehouse: 2, CustomersPerDistrict: 30, Items: 50}

// setupDB recarrega o banco de teste apontado por TPCC_TEST_DATABASE_URL
func setupDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	url := os.Getenv("TPCC_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TPCC_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, Load(ctx, pool, testScale, 1))
	return pool
}

func newService(pool *pgxpool.Pool) *tpcc.Service {
	return tpcc.NewService(NewRepository(pool), tpcc.DefaultOptions(), nil)
}

func queryInt(t *testing.T, pool *pgxpool.Pool, sql string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, pool.QueryRow(context.Background(), sql, args...).Scan(&n))
	return n
}

func queryDecimal(t *testing.T, pool *pgxpool.Pool, sql string, args ...any) decimal.Decimal {
	t.Helper()
	var d decimal.Decimal
	require.NoError(t, pool.QueryRow(context.Background(), sql, args...).Scan(&d))
	return d
}

func orderRequest(itemIDs ...int) tpcc.NewOrderRequest {
	req := tpcc.NewOrderRequest{WarehouseID: 1, DistrictID: 1, CustomerID: 5, LineCount: len(itemIDs), ItemIDs: itemIDs}
	for range itemIDs {
		req.SupplyWarehouseIDs = append(req.SupplyWarehouseIDs, 1)
		req.Quantities = append(req.Quantities, 2)
	}
	return req
}

func TestIntegration_ConcurrentNewOrdersGetDistinctIDs(t *testing.T) {
	pool := setupDB(t)
	svc := newService(pool)
	const workers = 20

	var (
		mu  sync.Mutex
		ids []int
		wg  sync.WaitGroup
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := svc.NewOrder(context.Background(), orderRequest(1, 2, 3))
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			ids = append(ids, result.OrderID)
			mu.Unlock()
		}()
	}
	wg.Wait()

	sort.Ints(ids)
	require.Len(t, ids, workers)
	for i, id := range ids {
		assert.Equal(t, i+1, id)
	}
	assert.Equal(t, workers+1, queryInt(t, pool, `SELECT d_next_o_id FROM bmsql_district WHERE d_w_id = 1 AND d_id = 1`))
	assert.Equal(t, workers, queryInt(t, pool, `SELECT count(*) FROM bmsql_new_order WHERE no_w_id = 1 AND no_d_id = 1`))
	assert.Equal(t, workers*3, queryInt(t, pool, `SELECT count(*) FROM bmsql_order_line WHERE ol_w_id = 1 AND ol_d_id = 1`))
}

func TestIntegration_NewOrderWritesLinesAndStock(t *testing.T) {
	pool := setupDB(t)
	svc := newService(pool)
	before := queryInt(t, pool, `SELECT s_quantity FROM bmsql_stock WHERE s_w_id = 2 AND s_i_id = 4`)

	req := orderRequest(4, 5)
	req.SupplyWarehouseIDs[0] = 2
	result, err := svc.NewOrder(context.Background(), req)

	require.NoError(t, err)
	assert.False(t, result.AllLocal)
	assert.Equal(t, 0, queryInt(t, pool, `SELECT o_all_local FROM bmsql_oorder WHERE o_w_id = 1 AND o_d_id = 1 AND o_id = $1`, result.OrderID))
	assert.Equal(t, tpcc.RestockQuantity(before, 2, tpcc.DefaultRestockQuantity),
		queryInt(t, pool, `SELECT s_quantity FROM bmsql_stock WHERE s_w_id = 2 AND s_i_id = 4`))

	total := queryDecimal(t, pool, `SELECT sum(ol_amount) FROM bmsql_order_line WHERE ol_w_id = 1 AND ol_d_id = 1 AND ol_o_id = $1`, result.OrderID)
	assert.True(t, result.TotalAmount.Equal(total), "total %s != stored %s", result.TotalAmount, total)
}

func TestIntegration_InvalidItemLeavesNoTrace(t *testing.T) {
	pool := setupDB(t)
	svc := newService(pool)
	stockBefore := queryInt(t, pool, `SELECT s_quantity FROM bmsql_stock WHERE s_w_id = 1 AND s_i_id = 1`)

	_, err := svc.NewOrder(context.Background(), orderRequest(1, 2, testScale.Items+1))

	require.ErrorIs(t, err, tpcc.ErrNotFound)
	assert.Equal(t, 1, queryInt(t, pool, `SELECT d_next_o_id FROM bmsql_district WHERE d_w_id = 1 AND d_id = 1`))
	assert.Equal(t, 0, queryInt(t, pool, `SELECT count(*) FROM bmsql_oorder`))
	assert.Equal(t, 0, queryInt(t, pool, `SELECT count(*) FROM bmsql_new_order`))
	assert.Equal(t, 0, queryInt(t, pool, `SELECT count(*) FROM bmsql_order_line`))
	assert.Equal(t, stockBefore, queryInt(t, pool, `SELECT s_quantity FROM bmsql_stock WHERE s_w_id = 1 AND s_i_id = 1`))
}

func TestIntegration_PaymentIsNotIdempotent(t *testing.T) {
	pool := setupDB(t)
	svc := newService(pool)
	ctx := context.Background()
	balance := queryDecimal(t, pool, `SELECT c_balance FROM bmsql_customer WHERE c_w_id = 1 AND c_d_id = 2 AND c_id = 7`)
	wYTD := queryDecimal(t, pool, `SELECT w_ytd FROM bmsql_warehouse WHERE w_id = 1`)
	req := tpcc.PaymentRequest{WarehouseID: 1, DistrictID: 2, CustomerID: 7, Amount: decimal.RequireFromString("12.34")}

	_, err := svc.Payment(ctx, req)
	require.NoError(t, err)
	result, err := svc.Payment(ctx, req)
	require.NoError(t, err)

	want := balance.Add(decimal.RequireFromString("24.68"))
	assert.True(t, want.Equal(result.Balance), "balance %s, want %s", result.Balance, want)
	assert.True(t, wYTD.Add(decimal.RequireFromString("24.68")).Equal(
		queryDecimal(t, pool, `SELECT w_ytd FROM bmsql_warehouse WHERE w_id = 1`)))
	assert.Equal(t, 2, queryInt(t, pool, `SELECT count(*) FROM bmsql_history WHERE h_c_w_id = 1 AND h_c_d_id = 2 AND h_c_id = 7`))
}

func TestIntegration_PaymentByNamePicksMedianAndAnnotatesBadCredit(t *testing.T) {
	pool := setupDB(t)
	svc := newService(pool)
	ctx := context.Background()
	_, err := pool.Exec(ctx, `
		UPDATE bmsql_customer
		SET c_last = 'SHARED', c_first = CASE c_id WHEN 3 THEN 'Ann' WHEN 9 THEN 'Bob' ELSE 'Cid' END,
		    c_credit = 'BC', c_data = 'previous'
		WHERE c_w_id = 1 AND c_d_id = 1 AND c_id IN (3, 9, 12)`)
	require.NoError(t, err)

	result, err := svc.Payment(ctx, tpcc.PaymentRequest{
		WarehouseID:  1,
		DistrictID:   1,
		ByName:       true,
		CustomerLast: "SHARED",
		Amount:       decimal.RequireFromString("5.00"),
	})

	require.NoError(t, err)
	assert.Equal(t, 9, result.CustomerID)
	assert.True(t, result.BadCredit)

	var data string
	require.NoError(t, pool.QueryRow(ctx, `SELECT c_data FROM bmsql_customer WHERE c_w_id = 1 AND c_d_id = 1 AND c_id = 9`).Scan(&data))
	assert.Regexp(t, `^\| 9 1 1 5\.00 \d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\.\d{6} previous$`, data)
	assert.Equal(t, 1, queryInt(t, pool, `SELECT count(*) FROM bmsql_history WHERE h_c_id = 9`))
}

func TestIntegration_StatementTimeout(t *testing.T) {
	pool := setupDB(t)
	repo := NewRepository(pool)
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback()

	_, err = tx.(*PostgresTx).tx.Exec(ctx, `SELECT pg_sleep(2)`)

	assert.ErrorIs(t, classify("sleep", err), tpcc.ErrTimeout)
}
