package tpcc

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// BadCreditMarker flags a customer whose payments are annotated in c_data.
	BadCreditMarker = "BC"

	// AnnotationTimeLayout formats the timestamp embedded in bad-credit annotations.
	AnnotationTimeLayout = "2006-01-02 15:04:05.000000"

	historyNameWidth = 10
)

var one = decimal.NewFromInt(1)

// MedianIndex returns the 0-based position of the customer picked out of count
// customers sharing a surname, ordered by first name: ceil(count/2)-1, so ties
// resolve to the lower median. It returns -1 when count < 1.
func MedianIndex(count int) int {
	if count < 1 {
		return -1
	}
	return (count+1)/2 - 1
}

// RestockQuantity computes the stock level written back after an order line
// takes requested units. When the stock would not stay above the requested
// quantity a fixed batch of restock units is added. There is no floor check.
func RestockQuantity(stock, requested, restock int) int {
	if stock > requested {
		return stock - requested
	}
	return stock - requested + restock
}

// LineAmount is quantity * price * (1 + wTax + dTax) * (1 - discount), rounded to cents.
func LineAmount(quantity int, price, wTax, dTax, discount decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(int64(quantity)).
		Mul(price).
		Mul(one.Add(wTax).Add(dTax)).
		Mul(one.Sub(discount)).
		Round(2)
}

// IsBadCredit reports whether c_credit carries the bad-credit marker.
func IsBadCredit(credit string) bool {
	return strings.Contains(credit, BadCreditMarker)
}

// BadCreditAnnotation prepends the payment annotation to the previous c_data.
// The newest entry comes first; max > 0 caps the result to that many characters,
// dropping the oldest tail.
func BadCreditAnnotation(customerID, districtID, warehouseID int, amount decimal.Decimal, at time.Time, previous string, max int) string {
	data := fmt.Sprintf("| %d %d %d %s %s %s",
		customerID, districtID, warehouseID,
		amount.StringFixed(2), at.Format(AnnotationTimeLayout), previous)
	return truncateRunes(data, max)
}

// HistoryData builds h_data from the first ten characters of each name.
func HistoryData(warehouseName, districtName string) string {
	return truncateRunes(warehouseName, historyNameWidth) + " " + truncateRunes(districtName, historyNameWidth)
}

// AllLocal reports whether every supply warehouse is the home warehouse.
func AllLocal(warehouseID int, supplyWarehouseIDs []int) bool {
	for _, id := range supplyWarehouseIDs {
		if id != warehouseID {
			return false
		}
	}
	return true
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
