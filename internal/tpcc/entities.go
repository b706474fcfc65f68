package tpcc

import (
	"time"

	"github.com/shopspring/decimal"
)

// Address is the street block shared by warehouses, districts and customers.
type Address struct {
	Street1 string `json:"street_1"`
	Street2 string `json:"street_2"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
}

// Warehouse representa uma linha de bmsql_warehouse
type Warehouse struct {
	ID      int             `json:"w_id" db:"w_id"`
	Name    string          `json:"w_name" db:"w_name"`
	Tax     decimal.Decimal `json:"w_tax" db:"w_tax"`
	YTD     decimal.Decimal `json:"w_ytd" db:"w_ytd"`
	Address Address         `json:"address"`
}

// District representa uma linha de bmsql_district
type District struct {
	WarehouseID int             `json:"d_w_id" db:"d_w_id"`
	ID          int             `json:"d_id" db:"d_id"`
	Name        string          `json:"d_name" db:"d_name"`
	Tax         decimal.Decimal `json:"d_tax" db:"d_tax"`
	YTD         decimal.Decimal `json:"d_ytd" db:"d_ytd"`
	NextOrderID int             `json:"d_next_o_id" db:"d_next_o_id"`
	Address     Address         `json:"address"`
}

// Customer representa uma linha de bmsql_customer
type Customer struct {
	WarehouseID int             `json:"c_w_id" db:"c_w_id"`
	DistrictID  int             `json:"c_d_id" db:"c_d_id"`
	ID          int             `json:"c_id" db:"c_id"`
	First       string          `json:"c_first" db:"c_first"`
	Middle      string          `json:"c_middle" db:"c_middle"`
	Last        string          `json:"c_last" db:"c_last"`
	Phone       string          `json:"c_phone" db:"c_phone"`
	Since       time.Time       `json:"c_since" db:"c_since"`
	Credit      string          `json:"c_credit" db:"c_credit"`
	CreditLimit decimal.Decimal `json:"c_credit_lim" db:"c_credit_lim"`
	Discount    decimal.Decimal `json:"c_discount" db:"c_discount"`
	Balance     decimal.Decimal `json:"c_balance" db:"c_balance"`
	Address     Address         `json:"address"`
}

// CustomerWarehouse is the customer/warehouse join read first by New-Order.
type CustomerWarehouse struct {
	Discount     decimal.Decimal
	Last         string
	Credit       string
	WarehouseTax decimal.Decimal
}

// Item representa uma linha do catálogo bmsql_item
type Item struct {
	ID    int             `json:"i_id" db:"i_id"`
	Name  string          `json:"i_name" db:"i_name"`
	Price decimal.Decimal `json:"i_price" db:"i_price"`
	Data  string          `json:"i_data" db:"i_data"`
}

// Stock representa uma linha de bmsql_stock
type Stock struct {
	ItemID      int    `json:"s_i_id" db:"s_i_id"`
	WarehouseID int    `json:"s_w_id" db:"s_w_id"`
	Quantity    int    `json:"s_quantity" db:"s_quantity"`
	Data        string `json:"s_data" db:"s_data"`
}

// Order is the header row of bmsql_oorder.
type Order struct {
	ID          int       `json:"o_id" db:"o_id"`
	DistrictID  int       `json:"o_d_id" db:"o_d_id"`
	WarehouseID int       `json:"o_w_id" db:"o_w_id"`
	CustomerID  int       `json:"o_c_id" db:"o_c_id"`
	EntryDate   time.Time `json:"o_entry_d" db:"o_entry_d"`
	LineCount   int       `json:"o_ol_cnt" db:"o_ol_cnt"`
	AllLocal    bool      `json:"o_all_local" db:"o_all_local"`
}

// OrderLine representa uma linha de bmsql_order_line
type OrderLine struct {
	OrderID           int             `json:"ol_o_id" db:"ol_o_id"`
	DistrictID        int             `json:"ol_d_id" db:"ol_d_id"`
	WarehouseID       int             `json:"ol_w_id" db:"ol_w_id"`
	Number            int             `json:"ol_number" db:"ol_number"`
	ItemID            int             `json:"ol_i_id" db:"ol_i_id"`
	SupplyWarehouseID int             `json:"ol_supply_w_id" db:"ol_supply_w_id"`
	Quantity          int             `json:"ol_quantity" db:"ol_quantity"`
	Amount            decimal.Decimal `json:"ol_amount" db:"ol_amount"`
}

// History is one append-only payment record.
type History struct {
	CustomerID          int             `json:"h_c_id" db:"h_c_id"`
	CustomerDistrictID  int             `json:"h_c_d_id" db:"h_c_d_id"`
	CustomerWarehouseID int             `json:"h_c_w_id" db:"h_c_w_id"`
	DistrictID          int             `json:"h_d_id" db:"h_d_id"`
	WarehouseID         int             `json:"h_w_id" db:"h_w_id"`
	Date                time.Time       `json:"h_date" db:"h_date"`
	Amount              decimal.Decimal `json:"h_amount" db:"h_amount"`
	Data                string          `json:"h_data" db:"h_data"`
}
