package tpcc

import (
	"context"

	"github.com/shopspring/decimal"
)

// Tx interface para transações
type Tx interface {
	Commit() error
	Rollback() error
}

// Repository define as operações de banco usadas pelas transações New-Order e Payment.
// Every method except BeginTx runs inside tx. Reads of missing rows return a
// *NotFoundError; driver failures come back as *TxError.
type Repository interface {
	BeginTx(ctx context.Context) (Tx, error)

	// New-Order
	GetCustomerWarehouse(ctx context.Context, tx Tx, warehouseID, districtID, customerID int) (*CustomerWarehouse, error)
	GetDistrictForUpdate(ctx context.Context, tx Tx, warehouseID, districtID int) (*District, error)
	IncrementNextOrderID(ctx context.Context, tx Tx, warehouseID, districtID int) error
	InsertOrder(ctx context.Context, tx Tx, order *Order) error
	InsertNewOrder(ctx context.Context, tx Tx, orderID, districtID, warehouseID int) error
	GetItem(ctx context.Context, tx Tx, itemID int) (*Item, error)
	GetStockForUpdate(ctx context.Context, tx Tx, itemID, warehouseID int) (*Stock, error)
	UpdateStockQuantity(ctx context.Context, tx Tx, itemID, warehouseID, quantity int) error
	InsertOrderLine(ctx context.Context, tx Tx, line *OrderLine) error

	// Payment
	AddWarehouseYTD(ctx context.Context, tx Tx, warehouseID int, amount decimal.Decimal) (*Warehouse, error)
	AddDistrictYTD(ctx context.Context, tx Tx, warehouseID, districtID int, amount decimal.Decimal) (*District, error)
	CountCustomersByLastName(ctx context.Context, tx Tx, warehouseID, districtID int, last string) (int, error)
	ListCustomersByLastName(ctx context.Context, tx Tx, warehouseID, districtID int, last string) ([]Customer, error)
	GetCustomerForUpdate(ctx context.Context, tx Tx, warehouseID, districtID, customerID int) (*Customer, error)
	GetCustomerData(ctx context.Context, tx Tx, warehouseID, districtID, customerID int) (string, error)
	UpdateCustomerBalance(ctx context.Context, tx Tx, warehouseID, districtID, customerID int, balance decimal.Decimal) error
	UpdateCustomerBalanceData(ctx context.Context, tx Tx, warehouseID, districtID, customerID int, balance decimal.Decimal, data string) error
	InsertHistory(ctx context.Context, tx Tx, history *History) error
}
