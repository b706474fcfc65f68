package tpcc

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// NewOrderRequest carries the New-Order inputs. The three line slices are
// parallel and must each hold LineCount entries.
type NewOrderRequest struct {
	WarehouseID        int   `json:"w_id"`
	DistrictID         int   `json:"d_id"`
	CustomerID         int   `json:"c_id"`
	LineCount          int   `json:"o_ol_cnt"`
	SupplyWarehouseIDs []int `json:"supply_w_ids"`
	ItemIDs            []int `json:"item_ids"`
	Quantities         []int `json:"quantities"`
}

// Validate checks the request before any statement is issued.
func (r NewOrderRequest) Validate(maxLines int) error {
	if r.WarehouseID <= 0 || r.DistrictID <= 0 || r.CustomerID <= 0 {
		return invalidInput("w_id, d_id and c_id must be positive (w_id=%d d_id=%d c_id=%d)",
			r.WarehouseID, r.DistrictID, r.CustomerID)
	}
	if r.LineCount < 1 || r.LineCount > maxLines {
		return invalidInput("o_ol_cnt %d outside 1..%d", r.LineCount, maxLines)
	}
	if len(r.SupplyWarehouseIDs) != r.LineCount || len(r.ItemIDs) != r.LineCount || len(r.Quantities) != r.LineCount {
		return invalidInput("o_ol_cnt %d does not match line inputs (supply=%d items=%d quantities=%d)",
			r.LineCount, len(r.SupplyWarehouseIDs), len(r.ItemIDs), len(r.Quantities))
	}
	for k := 0; k < r.LineCount; k++ {
		if r.SupplyWarehouseIDs[k] <= 0 {
			return invalidInput("line %d: supply warehouse %d must be positive", k+1, r.SupplyWarehouseIDs[k])
		}
		if r.Quantities[k] <= 0 {
			return invalidInput("line %d: quantity %d must be positive", k+1, r.Quantities[k])
		}
	}
	return nil
}

// NewOrderLineResult describes one committed order line.
type NewOrderLineResult struct {
	Number            int             `json:"ol_number"`
	ItemID            int             `json:"ol_i_id"`
	ItemName          string          `json:"i_name"`
	ItemPrice         decimal.Decimal `json:"i_price"`
	SupplyWarehouseID int             `json:"ol_supply_w_id"`
	Quantity          int             `json:"ol_quantity"`
	StockQuantity     int             `json:"s_quantity"`
	Amount            decimal.Decimal `json:"ol_amount"`
}

// NewOrderResult is returned once the order is committed.
type NewOrderResult struct {
	WarehouseID    int                  `json:"w_id"`
	DistrictID     int                  `json:"d_id"`
	CustomerID     int                  `json:"c_id"`
	OrderID        int                  `json:"o_id"`
	EntryDate      time.Time            `json:"o_entry_d"`
	AllLocal       bool                 `json:"o_all_local"`
	CustomerLast   string               `json:"c_last"`
	CustomerCredit string               `json:"c_credit"`
	Discount       decimal.Decimal      `json:"c_discount"`
	WarehouseTax   decimal.Decimal      `json:"w_tax"`
	DistrictTax    decimal.Decimal      `json:"d_tax"`
	Lines          []NewOrderLineResult `json:"lines"`
	TotalAmount    decimal.Decimal      `json:"total_amount"`
}

// NewOrder registra um novo pedido com suas linhas numa única transação.
// Either the header, the new-order marker, every line and every stock update
// are committed together, or nothing is.
func (s *Service) NewOrder(ctx context.Context, req NewOrderRequest) (*NewOrderResult, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "tpcc.NewOrder")
	defer span.End()

	span.SetAttributes(
		attribute.Int("tpcc.w_id", req.WarehouseID),
		attribute.Int("tpcc.d_id", req.DistrictID),
		attribute.Int("tpcc.c_id", req.CustomerID),
		attribute.Int("tpcc.o_ol_cnt", req.LineCount),
	)

	result, err := s.newOrder(ctx, req)
	s.observe(ctx, span, TxNewOrder, start, err)
	if err != nil {
		log.Printf("❌ [NEW ORDER] Rolled back | W=%d D=%d C=%d | Error=%v",
			req.WarehouseID, req.DistrictID, req.CustomerID, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("tpcc.o_id", result.OrderID))
	if s.lineCounter != nil {
		s.lineCounter.Add(ctx, int64(len(result.Lines)))
	}
	log.Printf("✅ [NEW ORDER] %s | W=%d D=%d OrderID=%d | Total=%s",
		s.finished(), result.WarehouseID, result.DistrictID, result.OrderID, result.TotalAmount.StringFixed(2))

	if s.publisher != nil {
		if err := s.publisher.PublishNewOrder(ctx, result); err != nil {
			log.Printf("⚠️ [NEW ORDER] Failed to publish event | OrderID=%d | Error=%v", result.OrderID, err)
		}
	}
	return result, nil
}

func (s *Service) newOrder(parent context.Context, req NewOrderRequest) (*NewOrderResult, error) {
	if err := req.Validate(s.opts.MaxOrderLines); err != nil {
		return nil, err
	}

	ctx, cancel, tx, err := s.begin(parent, TxNewOrder)
	if err != nil {
		return nil, err
	}
	defer cancel()
	defer tx.Rollback()

	result, err := s.placeOrder(ctx, tx, req)
	if err != nil {
		return nil, deadline(ctx, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, deadline(ctx, fmt.Errorf("commit new-order: %w", err))
	}
	return result, nil
}

func (s *Service) placeOrder(ctx context.Context, tx Tx, req NewOrderRequest) (*NewOrderResult, error) {
	w, d, c := req.WarehouseID, req.DistrictID, req.CustomerID

	// 1. Cliente e imposto do armazém
	cw, err := s.repository.GetCustomerWarehouse(ctx, tx, w, d, c)
	if err != nil {
		return nil, fmt.Errorf("read customer: %w", err)
	}

	// 2-3. Contador do distrito: lido com lock e incrementado antes de qualquer insert
	district, err := s.repository.GetDistrictForUpdate(ctx, tx, w, d)
	if err != nil {
		return nil, fmt.Errorf("read district: %w", err)
	}
	if err := s.repository.IncrementNextOrderID(ctx, tx, w, d); err != nil {
		return nil, fmt.Errorf("advance d_next_o_id: %w", err)
	}
	orderID := district.NextOrderID

	// 4. Cabeçalho e marcador new_order
	order := &Order{
		ID:          orderID,
		DistrictID:  d,
		WarehouseID: w,
		CustomerID:  c,
		EntryDate:   s.now(),
		LineCount:   req.LineCount,
		AllLocal:    AllLocal(w, req.SupplyWarehouseIDs),
	}
	if err := s.repository.InsertOrder(ctx, tx, order); err != nil {
		return nil, fmt.Errorf("insert order %d: %w", orderID, err)
	}
	if err := s.repository.InsertNewOrder(ctx, tx, orderID, d, w); err != nil {
		return nil, fmt.Errorf("insert new_order %d: %w", orderID, err)
	}

	result := &NewOrderResult{
		WarehouseID:    w,
		DistrictID:     d,
		CustomerID:     c,
		OrderID:        orderID,
		EntryDate:      order.EntryDate,
		AllLocal:       order.AllLocal,
		CustomerLast:   cw.Last,
		CustomerCredit: cw.Credit,
		Discount:       cw.Discount,
		WarehouseTax:   cw.WarehouseTax,
		DistrictTax:    district.Tax,
		Lines:          make([]NewOrderLineResult, 0, req.LineCount),
		TotalAmount:    decimal.Zero,
	}

	// 5. Linhas do pedido
	for k := 0; k < req.LineCount; k++ {
		line, err := s.placeLine(ctx, tx, order, k+1, req.SupplyWarehouseIDs[k], req.ItemIDs[k], req.Quantities[k], result)
		if err != nil {
			return nil, fmt.Errorf("order line %d: %w", k+1, err)
		}
		result.Lines = append(result.Lines, *line)
		result.TotalAmount = result.TotalAmount.Add(line.Amount)
	}

	return result, nil
}

func (s *Service) placeLine(ctx context.Context, tx Tx, order *Order, number, supplyW, itemID, quantity int, result *NewOrderResult) (*NewOrderLineResult, error) {
	item, err := s.repository.GetItem(ctx, tx, itemID)
	if err != nil {
		return nil, err
	}

	stock, err := s.repository.GetStockForUpdate(ctx, tx, itemID, supplyW)
	if err != nil {
		return nil, err
	}

	newQuantity := RestockQuantity(stock.Quantity, quantity, s.opts.RestockQuantity)
	if err := s.repository.UpdateStockQuantity(ctx, tx, itemID, supplyW, newQuantity); err != nil {
		return nil, err
	}

	amount := LineAmount(quantity, item.Price, result.WarehouseTax, result.DistrictTax, result.Discount)
	line := &OrderLine{
		OrderID:           order.ID,
		DistrictID:        order.DistrictID,
		WarehouseID:       order.WarehouseID,
		Number:            number,
		ItemID:            itemID,
		SupplyWarehouseID: supplyW,
		Quantity:          quantity,
		Amount:            amount,
	}
	if err := s.repository.InsertOrderLine(ctx, tx, line); err != nil {
		return nil, err
	}

	return &NewOrderLineResult{
		Number:            number,
		ItemID:            itemID,
		ItemName:          item.Name,
		ItemPrice:         item.Price,
		SupplyWarehouseID: supplyW,
		Quantity:          quantity,
		StockQuantity:     newQuantity,
		Amount:            amount,
	}, nil
}
