package tpcc

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockTx registra Commit/Rollback
type MockTx struct {
	mock.Mock
}

func (m *MockTx) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTx) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

// MockRepository para testes que não precisam de banco real
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) BeginTx(ctx context.Context) (Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(Tx), args.Error(1)
}

func (m *MockRepository) GetCustomerWarehouse(ctx context.Context, tx Tx, warehouseID, districtID, customerID int) (*CustomerWarehouse, error) {
	args := m.Called(ctx, tx, warehouseID, districtID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CustomerWarehouse), args.Error(1)
}

func (m *MockRepository) GetDistrictForUpdate(ctx context.Context, tx Tx, warehouseID, districtID int) (*District, error) {
	args := m.Called(ctx, tx, warehouseID, districtID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*District), args.Error(1)
}

func (m *MockRepository) IncrementNextOrderID(ctx context.Context, tx Tx, warehouseID, districtID int) error {
	args := m.Called(ctx, tx, warehouseID, districtID)
	return args.Error(0)
}

func (m *MockRepository) InsertOrder(ctx context.Context, tx Tx, order *Order) error {
	args := m.Called(ctx, tx, order)
	return args.Error(0)
}

func (m *MockRepository) InsertNewOrder(ctx context.Context, tx Tx, orderID, districtID, warehouseID int) error {
	args := m.Called(ctx, tx, orderID, districtID, warehouseID)
	return args.Error(0)
}

func (m *MockRepository) GetItem(ctx context.Context, tx Tx, itemID int) (*Item, error) {
	args := m.Called(ctx, tx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Item), args.Error(1)
}

func (m *MockRepository) GetStockForUpdate(ctx context.Context, tx Tx, itemID, warehouseID int) (*Stock, error) {
	args := m.Called(ctx, tx, itemID, warehouseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Stock), args.Error(1)
}

func (m *MockRepository) UpdateStockQuantity(ctx context.Context, tx Tx, itemID, warehouseID, quantity int) error {
	args := m.Called(ctx, tx, itemID, warehouseID, quantity)
	return args.Error(0)
}

func (m *MockRepository) InsertOrderLine(ctx context.Context, tx Tx, line *OrderLine) error {
	args := m.Called(ctx, tx, line)
	return args.Error(0)
}

func (m *MockRepository) AddWarehouseYTD(ctx context.Context, tx Tx, warehouseID int, amount decimal.Decimal) (*Warehouse, error) {
	args := m.Called(ctx, tx, warehouseID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Warehouse), args.Error(1)
}

func (m *MockRepository) AddDistrictYTD(ctx context.Context, tx Tx, warehouseID, districtID int, amount decimal.Decimal) (*District, error) {
	args := m.Called(ctx, tx, warehouseID, districtID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*District), args.Error(1)
}

func (m *MockRepository) CountCustomersByLastName(ctx context.Context, tx Tx, warehouseID, districtID int, last string) (int, error) {
	args := m.Called(ctx, tx, warehouseID, districtID, last)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) ListCustomersByLastName(ctx context.Context, tx Tx, warehouseID, districtID int, last string) ([]Customer, error) {
	args := m.Called(ctx, tx, warehouseID, districtID, last)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Customer), args.Error(1)
}

func (m *MockRepository) GetCustomerForUpdate(ctx context.Context, tx Tx, warehouseID, districtID, customerID int) (*Customer, error) {
	args := m.Called(ctx, tx, warehouseID, districtID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Customer), args.Error(1)
}

func (m *MockRepository) GetCustomerData(ctx context.Context, tx Tx, warehouseID, districtID, customerID int) (string, error) {
	args := m.Called(ctx, tx, warehouseID, districtID, customerID)
	return args.String(0), args.Error(1)
}

func (m *MockRepository) UpdateCustomerBalance(ctx context.Context, tx Tx, warehouseID, districtID, customerID int, balance decimal.Decimal) error {
	args := m.Called(ctx, tx, warehouseID, districtID, customerID, balance)
	return args.Error(0)
}

func (m *MockRepository) UpdateCustomerBalanceData(ctx context.Context, tx Tx, warehouseID, districtID, customerID int, balance decimal.Decimal, data string) error {
	args := m.Called(ctx, tx, warehouseID, districtID, customerID, balance, data)
	return args.Error(0)
}

func (m *MockRepository) InsertHistory(ctx context.Context, tx Tx, history *History) error {
	args := m.Called(ctx, tx, history)
	return args.Error(0)
}

// MockPublisher captura eventos publicados
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishNewOrder(ctx context.Context, result *NewOrderResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *MockPublisher) PublishPayment(ctx context.Context, result *PaymentResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decEq(s string) interface{} {
	want := dec(s)
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(want) })
}
