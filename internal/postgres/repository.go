package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/matheusmosca/tpcc-bench/internal/tpcc"
	"github.com/matheusmosca/tpcc-bench/internal/tpccsql"
)

// Repository implementa tpcc.Repository usando PostgreSQL via pgxpool
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository cria uma nova instância de Repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// PostgresTx implementa a interface tpcc.Tx
type PostgresTx struct {
	tx pgx.Tx
}

func (t *PostgresTx) Commit() error {
	return classify("commit", t.tx.Commit(context.Background()))
}

// Rollback is a no-op once the transaction has been committed.
func (t *PostgresTx) Rollback() error {
	err := t.tx.Rollback(context.Background())
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
}

// BeginTx inicia uma nova transação. When ctx carries a deadline the remaining
// time becomes the transaction's statement_timeout.
func (r *Repository) BeginTx(ctx context.Context) (tpcc.Tx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, classify("begin", err)
	}

	if timeout, ok := tpccsql.StatementTimeout(ctx); ok {
		if _, err := tx.Exec(ctx, tpccsql.SetStatementTimeout, timeout); err != nil {
			_ = tx.Rollback(context.Background())
			return nil, classify("set statement_timeout", err)
		}
	}

	return &PostgresTx{tx: tx}, nil
}

func notFoundOr(err error, op string, notFound func() error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound()
	}
	return classify(op, err)
}

// GetCustomerWarehouse lê o desconto do cliente junto com a taxa do armazém
func (r *Repository) GetCustomerWarehouse(ctx context.Context, tx tpcc.Tx, warehouseID, districtID, customerID int) (*tpcc.CustomerWarehouse, error) {
	pgTx := tx.(*PostgresTx).tx

	var cw tpcc.CustomerWarehouse
	err := pgTx.QueryRow(ctx, tpccsql.SelectCustomerWarehouse, warehouseID, districtID, customerID).
		Scan(&cw.Discount, &cw.Last, &cw.Credit, &cw.WarehouseTax)
	if err != nil {
		return nil, notFoundOr(err, "get customer warehouse", func() error {
			return tpcc.NotFound(tpcc.EntityCustomer, "w_id=%d d_id=%d c_id=%d", warehouseID, districtID, customerID)
		})
	}
	return &cw, nil
}

// GetDistrictForUpdate obtém o distrito com lock pessimista (FOR UPDATE)
func (r *Repository) GetDistrictForUpdate(ctx context.Context, tx tpcc.Tx, warehouseID, districtID int) (*tpcc.District, error) {
	pgTx := tx.(*PostgresTx).tx

	district := tpcc.District{WarehouseID: warehouseID, ID: districtID}
	err := pgTx.QueryRow(ctx, tpccsql.SelectDistrictForUpdate, warehouseID, districtID).
		Scan(&district.NextOrderID, &district.Tax, &district.Name)
	if err != nil {
		return nil, notFoundOr(err, "get district for update", func() error {
			return tpcc.NotFound(tpcc.EntityDistrict, "w_id=%d d_id=%d", warehouseID, districtID)
		})
	}
	return &district, nil
}

func (r *Repository) IncrementNextOrderID(ctx context.Context, tx tpcc.Tx, warehouseID, districtID int) error {
	pgTx := tx.(*PostgresTx).tx

	tag, err := pgTx.Exec(ctx, tpccsql.IncrementNextOrderID, warehouseID, districtID)
	if err != nil {
		return classify("increment next order id", err)
	}
	if tag.RowsAffected() == 0 {
		return tpcc.NotFound(tpcc.EntityDistrict, "w_id=%d d_id=%d", warehouseID, districtID)
	}
	return nil
}

func (r *Repository) InsertOrder(ctx context.Context, tx tpcc.Tx, order *tpcc.Order) error {
	pgTx := tx.(*PostgresTx).tx

	allLocal := 0
	if order.AllLocal {
		allLocal = 1
	}
	_, err := pgTx.Exec(ctx, tpccsql.InsertOrder,
		order.ID, order.DistrictID, order.WarehouseID, order.CustomerID,
		order.EntryDate, order.LineCount, allLocal)
	return classify("insert order", err)
}

func (r *Repository) InsertNewOrder(ctx context.Context, tx tpcc.Tx, orderID, districtID, warehouseID int) error {
	pgTx := tx.(*PostgresTx).tx

	_, err := pgTx.Exec(ctx, tpccsql.InsertNewOrder, orderID, districtID, warehouseID)
	return classify("insert new order", err)
}

// GetItem busca um item do catálogo
func (r *Repository) GetItem(ctx context.Context, tx tpcc.Tx, itemID int) (*tpcc.Item, error) {
	pgTx := tx.(*PostgresTx).tx

	item := tpcc.Item{ID: itemID}
	err := pgTx.QueryRow(ctx, tpccsql.SelectItem, itemID).Scan(&item.Price, &item.Name, &item.Data)
	if err != nil {
		return nil, notFoundOr(err, "get item", func() error {
			return tpcc.NotFound(tpcc.EntityItem, "i_id=%d", itemID)
		})
	}
	return &item, nil
}

// GetStockForUpdate obtém o estoque com lock pessimista (FOR UPDATE)
func (r *Repository) GetStockForUpdate(ctx context.Context, tx tpcc.Tx, itemID, warehouseID int) (*tpcc.Stock, error) {
	pgTx := tx.(*PostgresTx).tx

	stock := tpcc.Stock{ItemID: itemID, WarehouseID: warehouseID}
	err := pgTx.QueryRow(ctx, tpccsql.SelectStockForUpdate, itemID, warehouseID).Scan(&stock.Quantity, &stock.Data)
	if err != nil {
		return nil, notFoundOr(err, "get stock for update", func() error {
			return tpcc.NotFound(tpcc.EntityStock, "i_id=%d w_id=%d", itemID, warehouseID)
		})
	}
	return &stock, nil
}

func (r *Repository) UpdateStockQuantity(ctx context.Context, tx tpcc.Tx, itemID, warehouseID, quantity int) error {
	pgTx := tx.(*PostgresTx).tx

	tag, err := pgTx.Exec(ctx, tpccsql.UpdateStockQuantity, quantity, itemID, warehouseID)
	if err != nil {
		return classify("update stock", err)
	}
	if tag.RowsAffected() == 0 {
		return tpcc.NotFound(tpcc.EntityStock, "i_id=%d w_id=%d", itemID, warehouseID)
	}
	return nil
}

func (r *Repository) InsertOrderLine(ctx context.Context, tx tpcc.Tx, line *tpcc.OrderLine) error {
	pgTx := tx.(*PostgresTx).tx

	_, err := pgTx.Exec(ctx, tpccsql.InsertOrderLine,
		line.OrderID, line.DistrictID, line.WarehouseID, line.Number,
		line.ItemID, line.SupplyWarehouseID, line.Quantity, line.Amount)
	return classify("insert order line", err)
}

// AddWarehouseYTD soma amount ao w_ytd e devolve o armazém atualizado
func (r *Repository) AddWarehouseYTD(ctx context.Context, tx tpcc.Tx, warehouseID int, amount decimal.Decimal) (*tpcc.Warehouse, error) {
	pgTx := tx.(*PostgresTx).tx

	w := tpcc.Warehouse{ID: warehouseID}
	err := pgTx.QueryRow(ctx, tpccsql.AddWarehouseYTD, amount, warehouseID).Scan(
		&w.Name,
		&w.Address.Street1,
		&w.Address.Street2,
		&w.Address.City,
		&w.Address.State,
		&w.Address.Zip,
		&w.YTD,
	)
	if err != nil {
		return nil, notFoundOr(err, "add warehouse ytd", func() error {
			return tpcc.NotFound(tpcc.EntityWarehouse, "w_id=%d", warehouseID)
		})
	}
	return &w, nil
}

// AddDistrictYTD soma amount ao d_ytd e devolve o distrito atualizado
func (r *Repository) AddDistrictYTD(ctx context.Context, tx tpcc.Tx, warehouseID, districtID int, amount decimal.Decimal) (*tpcc.District, error) {
	pgTx := tx.(*PostgresTx).tx

	d := tpcc.District{WarehouseID: warehouseID, ID: districtID}
	err := pgTx.QueryRow(ctx, tpccsql.AddDistrictYTD, amount, warehouseID, districtID).Scan(
		&d.Name,
		&d.Address.Street1,
		&d.Address.Street2,
		&d.Address.City,
		&d.Address.State,
		&d.Address.Zip,
		&d.YTD,
	)
	if err != nil {
		return nil, notFoundOr(err, "add district ytd", func() error {
			return tpcc.NotFound(tpcc.EntityDistrict, "w_id=%d d_id=%d", warehouseID, districtID)
		})
	}
	return &d, nil
}

func (r *Repository) CountCustomersByLastName(ctx context.Context, tx tpcc.Tx, warehouseID, districtID int, last string) (int, error) {
	pgTx := tx.(*PostgresTx).tx

	var count int
	if err := pgTx.QueryRow(ctx, tpccsql.CountCustomersByLastName, warehouseID, districtID, last).Scan(&count); err != nil {
		return 0, classify("count customers by last name", err)
	}
	return count, nil
}

// ListCustomersByLastName devolve os clientes com o sobrenome, ordenados por c_first, com lock
func (r *Repository) ListCustomersByLastName(ctx context.Context, tx tpcc.Tx, warehouseID, districtID int, last string) ([]tpcc.Customer, error) {
	pgTx := tx.(*PostgresTx).tx

	rows, err := pgTx.Query(ctx, tpccsql.ListCustomersByLastName, warehouseID, districtID, last)
	if err != nil {
		return nil, classify("list customers by last name", err)
	}

	customers, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (tpcc.Customer, error) {
		c := tpcc.Customer{WarehouseID: warehouseID, DistrictID: districtID}
		return c, scanCustomer(row, &c)
	})
	if err != nil {
		return nil, classify("list customers by last name", err)
	}
	return customers, nil
}

// GetCustomerForUpdate obtém o cliente com lock pessimista (FOR UPDATE)
func (r *Repository) GetCustomerForUpdate(ctx context.Context, tx tpcc.Tx, warehouseID, districtID, customerID int) (*tpcc.Customer, error) {
	pgTx := tx.(*PostgresTx).tx

	c := tpcc.Customer{WarehouseID: warehouseID, DistrictID: districtID}
	if err := scanCustomer(pgTx.QueryRow(ctx, tpccsql.SelectCustomerForUpdate, warehouseID, districtID, customerID), &c); err != nil {
		return nil, notFoundOr(err, "get customer for update", func() error {
			return tpcc.NotFound(tpcc.EntityCustomer, "w_id=%d d_id=%d c_id=%d", warehouseID, districtID, customerID)
		})
	}
	return &c, nil
}

func (r *Repository) GetCustomerData(ctx context.Context, tx tpcc.Tx, warehouseID, districtID, customerID int) (string, error) {
	pgTx := tx.(*PostgresTx).tx

	var data string
	if err := pgTx.QueryRow(ctx, tpccsql.SelectCustomerData, warehouseID, districtID, customerID).Scan(&data); err != nil {
		return "", notFoundOr(err, "get customer data", func() error {
			return tpcc.NotFound(tpcc.EntityCustomer, "w_id=%d d_id=%d c_id=%d", warehouseID, districtID, customerID)
		})
	}
	return data, nil
}

func (r *Repository) UpdateCustomerBalance(ctx context.Context, tx tpcc.Tx, warehouseID, districtID, customerID int, balance decimal.Decimal) error {
	pgTx := tx.(*PostgresTx).tx

	tag, err := pgTx.Exec(ctx, tpccsql.UpdateCustomerBalance, balance, warehouseID, districtID, customerID)
	return customerUpdated(tag.RowsAffected(), err, warehouseID, districtID, customerID)
}

func (r *Repository) UpdateCustomerBalanceData(ctx context.Context, tx tpcc.Tx, warehouseID, districtID, customerID int, balance decimal.Decimal, data string) error {
	pgTx := tx.(*PostgresTx).tx

	tag, err := pgTx.Exec(ctx, tpccsql.UpdateCustomerBalanceData, balance, data, warehouseID, districtID, customerID)
	return customerUpdated(tag.RowsAffected(), err, warehouseID, districtID, customerID)
}

func (r *Repository) InsertHistory(ctx context.Context, tx tpcc.Tx, h *tpcc.History) error {
	pgTx := tx.(*PostgresTx).tx

	_, err := pgTx.Exec(ctx, tpccsql.InsertHistory,
		h.CustomerDistrictID, h.CustomerWarehouseID, h.CustomerID,
		h.DistrictID, h.WarehouseID, h.Date, h.Amount, h.Data)
	return classify("insert history", err)
}

func customerUpdated(affected int64, err error, warehouseID, districtID, customerID int) error {
	if err != nil {
		return classify("update customer", err)
	}
	if affected == 0 {
		return tpcc.NotFound(tpcc.EntityCustomer, "w_id=%d d_id=%d c_id=%d", warehouseID, districtID, customerID)
	}
	return nil
}

func scanCustomer(row pgx.Row, c *tpcc.Customer) error {
	err := row.Scan(
		&c.ID,
		&c.First,
		&c.Middle,
		&c.Last,
		&c.Address.Street1,
		&c.Address.Street2,
		&c.Address.City,
		&c.Address.State,
		&c.Address.Zip,
		&c.Phone,
		&c.Since,
		&c.Credit,
		&c.CreditLimit,
		&c.Discount,
		&c.Balance,
	)
	if err != nil {
		return fmt.Errorf("scan customer: %w", err)
	}
	return nil
}

var _ tpcc.Repository = (*Repository)(nil)
