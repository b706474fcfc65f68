package tpcc

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// MaxPaymentAmount is the largest h_amount bmsql_history (DECIMAL(6,2)) can hold.
var MaxPaymentAmount = decimal.RequireFromString("9999.99")

// PaymentRequest carries the Payment inputs. With ByName set the customer is
// chosen by CustomerLast and CustomerID is ignored.
type PaymentRequest struct {
	WarehouseID  int             `json:"w_id"`
	DistrictID   int             `json:"d_id"`
	CustomerID   int             `json:"c_id"`
	CustomerLast string          `json:"c_last"`
	ByName       bool            `json:"by_name"`
	Amount       decimal.Decimal `json:"h_amount"`
}

// Validate checks the request before any statement is issued.
func (r PaymentRequest) Validate() error {
	if r.WarehouseID <= 0 || r.DistrictID <= 0 {
		return invalidInput("w_id and d_id must be positive (w_id=%d d_id=%d)", r.WarehouseID, r.DistrictID)
	}
	if !r.Amount.IsPositive() {
		return invalidInput("h_amount %s must be positive", r.Amount.String())
	}
	if r.Amount.GreaterThan(MaxPaymentAmount) {
		return invalidInput("h_amount %s exceeds %s", r.Amount.String(), MaxPaymentAmount.StringFixed(2))
	}
	if r.ByName {
		if r.CustomerLast == "" {
			return invalidInput("c_last is required when selecting by name")
		}
		return nil
	}
	if r.CustomerID <= 0 {
		return invalidInput("c_id %d must be positive", r.CustomerID)
	}
	return nil
}

// PaymentResult is returned once the payment is committed.
type PaymentResult struct {
	WarehouseID      int             `json:"w_id"`
	DistrictID       int             `json:"d_id"`
	CustomerID       int             `json:"c_id"`
	CustomerFirst    string          `json:"c_first"`
	CustomerLast     string          `json:"c_last"`
	Credit           string          `json:"c_credit"`
	BadCredit        bool            `json:"bad_credit"`
	Balance          decimal.Decimal `json:"c_balance"`
	Data             string          `json:"c_data,omitempty"`
	Amount           decimal.Decimal `json:"h_amount"`
	HistoryData      string          `json:"h_data"`
	Date             time.Time       `json:"h_date"`
	WarehouseAddress Address         `json:"w_address"`
	DistrictAddress  Address         `json:"d_address"`
}

// Payment registra um pagamento contra armazém, distrito e cliente.
// It is deliberately not idempotent: every call appends a history row.
func (s *Service) Payment(ctx context.Context, req PaymentRequest) (*PaymentResult, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "tpcc.Payment")
	defer span.End()

	span.SetAttributes(
		attribute.Int("tpcc.w_id", req.WarehouseID),
		attribute.Int("tpcc.d_id", req.DistrictID),
		attribute.Bool("tpcc.by_name", req.ByName),
		attribute.String("tpcc.h_amount", req.Amount.StringFixed(2)),
	)

	result, err := s.payment(ctx, req)
	s.observe(ctx, span, TxPayment, start, err)
	if err != nil {
		log.Printf("❌ [PAYMENT] Rolled back | W=%d D=%d C=%d Last=%q | Error=%v",
			req.WarehouseID, req.DistrictID, req.CustomerID, req.CustomerLast, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("tpcc.c_id", result.CustomerID))
	log.Printf("✅ [PAYMENT] %s | W=%d D=%d C=%d | Amount=%s Balance=%s",
		s.finished(), result.WarehouseID, result.DistrictID, result.CustomerID,
		result.Amount.StringFixed(2), result.Balance.StringFixed(2))

	if s.publisher != nil {
		if err := s.publisher.PublishPayment(ctx, result); err != nil {
			log.Printf("⚠️ [PAYMENT] Failed to publish event | C=%d | Error=%v", result.CustomerID, err)
		}
	}
	return result, nil
}

func (s *Service) payment(parent context.Context, req PaymentRequest) (*PaymentResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel, tx, err := s.begin(parent, TxPayment)
	if err != nil {
		return nil, err
	}
	defer cancel()
	defer tx.Rollback()

	result, err := s.postPayment(ctx, tx, req)
	if err != nil {
		return nil, deadline(ctx, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, deadline(ctx, fmt.Errorf("commit payment: %w", err))
	}
	return result, nil
}

func (s *Service) postPayment(ctx context.Context, tx Tx, req PaymentRequest) (*PaymentResult, error) {
	w, d := req.WarehouseID, req.DistrictID
	now := s.now()

	// 1. YTD do armazém
	warehouse, err := s.repository.AddWarehouseYTD(ctx, tx, w, req.Amount)
	if err != nil {
		return nil, fmt.Errorf("update warehouse ytd: %w", err)
	}

	// 2. YTD do distrito
	district, err := s.repository.AddDistrictYTD(ctx, tx, w, d, req.Amount)
	if err != nil {
		return nil, fmt.Errorf("update district ytd: %w", err)
	}

	// 3. Cliente por id ou pela mediana do sobrenome
	customer, err := s.selectCustomer(ctx, tx, req)
	if err != nil {
		return nil, err
	}

	// 4-5. Saldo, e anotação em c_data para mau crédito
	balance := customer.Balance.Add(req.Amount)
	result := &PaymentResult{
		WarehouseID:      w,
		DistrictID:       d,
		CustomerID:       customer.ID,
		CustomerFirst:    customer.First,
		CustomerLast:     customer.Last,
		Credit:           customer.Credit,
		BadCredit:        IsBadCredit(customer.Credit),
		Balance:          balance,
		Amount:           req.Amount,
		Date:             now,
		WarehouseAddress: warehouse.Address,
		DistrictAddress:  district.Address,
	}

	if result.BadCredit {
		previous, err := s.repository.GetCustomerData(ctx, tx, w, d, customer.ID)
		if err != nil {
			return nil, fmt.Errorf("read c_data: %w", err)
		}
		result.Data = BadCreditAnnotation(customer.ID, d, w, req.Amount, now, previous, s.opts.CustomerDataMax)
		if err := s.repository.UpdateCustomerBalanceData(ctx, tx, w, d, customer.ID, balance, result.Data); err != nil {
			return nil, fmt.Errorf("update customer %d: %w", customer.ID, err)
		}
	} else {
		if err := s.repository.UpdateCustomerBalance(ctx, tx, w, d, customer.ID, balance); err != nil {
			return nil, fmt.Errorf("update customer %d: %w", customer.ID, err)
		}
	}

	// 6. Histórico
	result.HistoryData = HistoryData(warehouse.Name, district.Name)
	history := &History{
		CustomerID:          customer.ID,
		CustomerDistrictID:  d,
		CustomerWarehouseID: w,
		DistrictID:          d,
		WarehouseID:         w,
		Date:                now,
		Amount:              req.Amount,
		Data:                result.HistoryData,
	}
	if err := s.repository.InsertHistory(ctx, tx, history); err != nil {
		return nil, fmt.Errorf("insert history: %w", err)
	}

	return result, nil
}

func (s *Service) selectCustomer(ctx context.Context, tx Tx, req PaymentRequest) (*Customer, error) {
	w, d := req.WarehouseID, req.DistrictID

	if !req.ByName {
		customer, err := s.repository.GetCustomerForUpdate(ctx, tx, w, d, req.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("read customer: %w", err)
		}
		return customer, nil
	}

	count, err := s.repository.CountCustomersByLastName(ctx, tx, w, d, req.CustomerLast)
	if err != nil {
		return nil, fmt.Errorf("count customers by last name: %w", err)
	}
	if count == 0 {
		return nil, NotFound(EntityCustomer, "w_id=%d d_id=%d c_last=%s", w, d, req.CustomerLast)
	}

	customers, err := s.repository.ListCustomersByLastName(ctx, tx, w, d, req.CustomerLast)
	if err != nil {
		return nil, fmt.Errorf("list customers by last name: %w", err)
	}
	idx := MedianIndex(count)
	if idx >= len(customers) {
		// the count and the locked list disagree only if rows changed in between
		idx = MedianIndex(len(customers))
	}
	if idx < 0 {
		return nil, NotFound(EntityCustomer, "w_id=%d d_id=%d c_last=%s", w, d, req.CustomerLast)
	}
	return &customers[idx], nil
}
