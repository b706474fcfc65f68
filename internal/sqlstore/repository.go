package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/matheusmosca/tpcc-bench/internal/tpcc"
	"github.com/matheusmosca/tpcc-bench/internal/tpccsql"
)

// querier é a parte comum de *sql.DB e *sql.Tx usada pelo repositório
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repository implementa tpcc.Repository usando database/sql
type Repository struct {
	db     *sql.DB
	branch bool
}

// NewRepository cria um repositório que abre e confirma suas próprias transações
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// NewBranchRepository cria um repositório para uma branch XA.
// db já está dentro da transação aberta pelo DTM (XaLocalTransaction), so
// BeginTx does not start one and Commit/Rollback are left to the coordinator.
func NewBranchRepository(db *sql.DB) *Repository {
	return &Repository{db: db, branch: true}
}

// SQLTx implementa a interface tpcc.Tx sobre *sql.Tx
type SQLTx struct {
	tx *sql.Tx
}

func (t *SQLTx) Commit() error {
	return classify("commit", t.tx.Commit())
}

// Rollback is a no-op once the transaction has been committed.
func (t *SQLTx) Rollback() error {
	err := t.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

// BranchTx implementa tpcc.Tx para uma branch XA; o DTM decide o commit
type BranchTx struct {
	db *sql.DB
}

func (t *BranchTx) Commit() error   { return nil }
func (t *BranchTx) Rollback() error { return nil }

func conn(tx tpcc.Tx) querier {
	switch t := tx.(type) {
	case *SQLTx:
		return t.tx
	case *BranchTx:
		return t.db
	default:
		panic(fmt.Sprintf("sqlstore: unsupported transaction type %T", tx))
	}
}

// BeginTx inicia uma nova transação. When ctx carries a deadline the remaining
// time becomes the transaction's statement_timeout.
func (r *Repository) BeginTx(ctx context.Context) (tpcc.Tx, error) {
	var (
		tx tpcc.Tx
		q  querier
	)
	if r.branch {
		branch := &BranchTx{db: r.db}
		tx, q = branch, branch.db
	} else {
		sqlTx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, classify("begin", err)
		}
		tx, q = &SQLTx{tx: sqlTx}, sqlTx
	}

	if timeout, ok := tpccsql.StatementTimeout(ctx); ok {
		var applied string
		if err := q.QueryRowContext(ctx, tpccsql.SetStatementTimeout, timeout).Scan(&applied); err != nil {
			_ = tx.Rollback()
			return nil, classify("set statement_timeout", err)
		}
	}

	return tx, nil
}

// GetCustomerWarehouse lê o desconto do cliente junto com a taxa do armazém
func (r *Repository) GetCustomerWarehouse(ctx context.Context, tx tpcc.Tx, warehouseID, districtID, customerID int) (*tpcc.CustomerWarehouse, error) {
	var cw tpcc.CustomerWarehouse
	err := conn(tx).QueryRowContext(ctx, tpccsql.SelectCustomerWarehouse, warehouseID, districtID, customerID).
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
	district := tpcc.District{WarehouseID: warehouseID, ID: districtID}
	err := conn(tx).QueryRowContext(ctx, tpccsql.SelectDistrictForUpdate, warehouseID, districtID).
		Scan(&district.NextOrderID, &district.Tax, &district.Name)
	if err != nil {
		return nil, notFoundOr(err, "get district for update", func() error {
			return tpcc.NotFound(tpcc.EntityDistrict, "w_id=%d d_id=%d", warehouseID, districtID)
		})
	}
	return &district, nil
}

func (r *Repository) IncrementNextOrderID(ctx context.Context, tx tpcc.Tx, warehouseID, districtID int) error {
	result, err := conn(tx).ExecContext(ctx, tpccsql.IncrementNextOrderID, warehouseID, districtID)
	return updated(result, err, "increment next order id", func() error {
		return tpcc.NotFound(tpcc.EntityDistrict, "w_id=%d d_id=%d", warehouseID, districtID)
	})
}

func (r *Repository) InsertOrder(ctx context.Context, tx tpcc.Tx, order *tpcc.Order) error {
	allLocal := 0
	if order.AllLocal {
		allLocal = 1
	}
	_, err := conn(tx).ExecContext(ctx, tpccsql.InsertOrder,
		order.ID, order.DistrictID, order.WarehouseID, order.CustomerID,
		order.EntryDate, order.LineCount, allLocal)
	return classify("insert order", err)
}

func (r *Repository) InsertNewOrder(ctx context.Context, tx tpcc.Tx, orderID, districtID, warehouseID int) error {
	_, err := conn(tx).ExecContext(ctx, tpccsql.InsertNewOrder, orderID, districtID, warehouseID)
	return classify("insert new order", err)
}

// GetItem busca um item do catálogo
func (r *Repository) GetItem(ctx context.Context, tx tpcc.Tx, itemID int) (*tpcc.Item, error) {
	item := tpcc.Item{ID: itemID}
	err := conn(tx).QueryRowContext(ctx, tpccsql.SelectItem, itemID).Scan(&item.Price, &item.Name, &item.Data)
	if err != nil {
		return nil, notFoundOr(err, "get item", func() error {
			return tpcc.NotFound(tpcc.EntityItem, "i_id=%d", itemID)
		})
	}
	return &item, nil
}

// GetStockForUpdate obtém o estoque com lock pessimista (FOR UPDATE)
func (r *Repository) GetStockForUpdate(ctx context.Context, tx tpcc.Tx, itemID, warehouseID int) (*tpcc.Stock, error) {
	stock := tpcc.Stock{ItemID: itemID, WarehouseID: warehouseID}
	err := conn(tx).QueryRowContext(ctx, tpccsql.SelectStockForUpdate, itemID, warehouseID).Scan(&stock.Quantity, &stock.Data)
	if err != nil {
		return nil, notFoundOr(err, "get stock for update", func() error {
			return tpcc.NotFound(tpcc.EntityStock, "i_id=%d w_id=%d", itemID, warehouseID)
		})
	}
	return &stock, nil
}

func (r *Repository) UpdateStockQuantity(ctx context.Context, tx tpcc.Tx, itemID, warehouseID, quantity int) error {
	result, err := conn(tx).ExecContext(ctx, tpccsql.UpdateStockQuantity, quantity, itemID, warehouseID)
	return updated(result, err, "update stock", func() error {
		return tpcc.NotFound(tpcc.EntityStock, "i_id=%d w_id=%d", itemID, warehouseID)
	})
}

func (r *Repository) InsertOrderLine(ctx context.Context, tx tpcc.Tx, line *tpcc.OrderLine) error {
	_, err := conn(tx).ExecContext(ctx, tpccsql.InsertOrderLine,
		line.OrderID, line.DistrictID, line.WarehouseID, line.Number,
		line.ItemID, line.SupplyWarehouseID, line.Quantity, line.Amount)
	return classify("insert order line", err)
}

// AddWarehouseYTD soma amount ao w_ytd e devolve o armazém atualizado
func (r *Repository) AddWarehouseYTD(ctx context.Context, tx tpcc.Tx, warehouseID int, amount decimal.Decimal) (*tpcc.Warehouse, error) {
	w := tpcc.Warehouse{ID: warehouseID}
	err := conn(tx).QueryRowContext(ctx, tpccsql.AddWarehouseYTD, amount, warehouseID).Scan(
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
	d := tpcc.District{WarehouseID: warehouseID, ID: districtID}
	err := conn(tx).QueryRowContext(ctx, tpccsql.AddDistrictYTD, amount, warehouseID, districtID).Scan(
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
	var count int
	if err := conn(tx).QueryRowContext(ctx, tpccsql.CountCustomersByLastName, warehouseID, districtID, last).Scan(&count); err != nil {
		return 0, classify("count customers by last name", err)
	}
	return count, nil
}

// ListCustomersByLastName devolve os clientes com o sobrenome, ordenados por c_first, com lock
func (r *Repository) ListCustomersByLastName(ctx context.Context, tx tpcc.Tx, warehouseID, districtID int, last string) ([]tpcc.Customer, error) {
	rows, err := conn(tx).QueryContext(ctx, tpccsql.ListCustomersByLastName, warehouseID, districtID, last)
	if err != nil {
		return nil, classify("list customers by last name", err)
	}
	defer rows.Close()

	var customers []tpcc.Customer
	for rows.Next() {
		c := tpcc.Customer{WarehouseID: warehouseID, DistrictID: districtID}
		if err := scanCustomer(rows, &c); err != nil {
			return nil, classify("list customers by last name", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list customers by last name", err)
	}
	return customers, nil
}

// GetCustomerForUpdate obtém o cliente com lock pessimista (FOR UPDATE)
func (r *Repository) GetCustomerForUpdate(ctx context.Context, tx tpcc.Tx, warehouseID, districtID, customerID int) (*tpcc.Customer, error) {
	c := tpcc.Customer{WarehouseID: warehouseID, DistrictID: districtID}
	if err := scanCustomer(conn(tx).QueryRowContext(ctx, tpccsql.SelectCustomerForUpdate, warehouseID, districtID, customerID), &c); err != nil {
		return nil, notFoundOr(err, "get customer for update", func() error {
			return tpcc.NotFound(tpcc.EntityCustomer, "w_id=%d d_id=%d c_id=%d", warehouseID, districtID, customerID)
		})
	}
	return &c, nil
}

func (r *Repository) GetCustomerData(ctx context.Context, tx tpcc.Tx, warehouseID, districtID, customerID int) (string, error) {
	var data string
	if err := conn(tx).QueryRowContext(ctx, tpccsql.SelectCustomerData, warehouseID, districtID, customerID).Scan(&data); err != nil {
		return "", notFoundOr(err, "get customer data", func() error {
			return tpcc.NotFound(tpcc.EntityCustomer, "w_id=%d d_id=%d c_id=%d", warehouseID, districtID, customerID)
		})
	}
	return data, nil
}

func (r *Repository) UpdateCustomerBalance(ctx context.Context, tx tpcc.Tx, warehouseID, districtID, customerID int, balance decimal.Decimal) error {
	result, err := conn(tx).ExecContext(ctx, tpccsql.UpdateCustomerBalance, balance, warehouseID, districtID, customerID)
	return updated(result, err, "update customer", func() error {
		return tpcc.NotFound(tpcc.EntityCustomer, "w_id=%d d_id=%d c_id=%d", warehouseID, districtID, customerID)
	})
}

func (r *Repository) UpdateCustomerBalanceData(ctx context.Context, tx tpcc.Tx, warehouseID, districtID, customerID int, balance decimal.Decimal, data string) error {
	result, err := conn(tx).ExecContext(ctx, tpccsql.UpdateCustomerBalanceData, balance, data, warehouseID, districtID, customerID)
	return updated(result, err, "update customer", func() error {
		return tpcc.NotFound(tpcc.EntityCustomer, "w_id=%d d_id=%d c_id=%d", warehouseID, districtID, customerID)
	})
}

func (r *Repository) InsertHistory(ctx context.Context, tx tpcc.Tx, h *tpcc.History) error {
	_, err := conn(tx).ExecContext(ctx, tpccsql.InsertHistory,
		h.CustomerDistrictID, h.CustomerWarehouseID, h.CustomerID,
		h.DistrictID, h.WarehouseID, h.Date, h.Amount, h.Data)
	return classify("insert history", err)
}

func updated(result sql.Result, err error, op string, notFound func() error) error {
	if err != nil {
		return classify(op, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return classify(op, err)
	}
	if affected == 0 {
		return notFound()
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCustomer(row scanner, c *tpcc.Customer) error {
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
