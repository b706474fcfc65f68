package httpapi

import (
	"github.com/shopspring/decimal"

	"github.com/matheusmosca/tpcc-bench/internal/tpcc"
)

// Linhas usadas quando a requisição não informa supply_w_ids, item_ids e quantities
var (
	defaultSupplyWarehouseIDs = []int{1, 2, 3, 4, 1}
	defaultItemIDs            = []int{101, 102, 103, 104, 105}
	defaultQuantities         = []int{2, 3, 4, 1, 5}
)

// TransactionRequest é o corpo de POST /api/transaction. Fields left out of
// the JSON keep the values from DefaultTransactionRequest.
type TransactionRequest struct {
	Name               string          `json:"name" binding:"required,oneof=neword payment"`
	WarehouseID        int             `json:"w_id"`
	DistrictID         int             `json:"d_id"`
	CustomerID         int             `json:"c_id"`
	LineCount          int             `json:"o_ol_cnt"`
	SupplyWarehouseIDs []int           `json:"supply_w_ids"`
	ItemIDs            []int           `json:"item_ids"`
	Quantities         []int           `json:"quantities"`
	CustomerLast       string          `json:"c_last"`
	ByName             bool            `json:"by_name"`
	Amount             decimal.Decimal `json:"h_amount"`
}

// DefaultTransactionRequest returns the demo defaults: warehouse 1, district 1,
// customer 123, five lines and a 100.00 payment.
func DefaultTransactionRequest() TransactionRequest {
	return TransactionRequest{
		WarehouseID:  1,
		DistrictID:   1,
		CustomerID:   123,
		LineCount:    5,
		CustomerLast: "Smith",
		Amount:       decimal.New(10000, -2),
	}
}

// NewOrder builds the New-Order input. Missing line inputs cycle through the
// five default lines up to o_ol_cnt.
func (r TransactionRequest) NewOrder() tpcc.NewOrderRequest {
	return tpcc.NewOrderRequest{
		WarehouseID:        r.WarehouseID,
		DistrictID:         r.DistrictID,
		CustomerID:         r.CustomerID,
		LineCount:          r.LineCount,
		SupplyWarehouseIDs: orDefault(r.SupplyWarehouseIDs, defaultSupplyWarehouseIDs, r.LineCount),
		ItemIDs:            orDefault(r.ItemIDs, defaultItemIDs, r.LineCount),
		Quantities:         orDefault(r.Quantities, defaultQuantities, r.LineCount),
	}
}

// Payment builds the Payment input.
func (r TransactionRequest) Payment() tpcc.PaymentRequest {
	return tpcc.PaymentRequest{
		WarehouseID:  r.WarehouseID,
		DistrictID:   r.DistrictID,
		CustomerID:   r.CustomerID,
		CustomerLast: r.CustomerLast,
		ByName:       r.ByName,
		Amount:       r.Amount,
	}
}

func orDefault(values, defaults []int, n int) []int {
	if len(values) > 0 || n <= 0 {
		return values
	}
	out := make([]int, n)
	for i := range out {
		out[i] = defaults[i%len(defaults)]
	}
	return out
}
