package tpccsql

// New-Order
const (
	SelectCustomerWarehouse = `SELECT c.c_discount, c.c_last, c.c_credit, w.w_tax
FROM bmsql_customer c
JOIN bmsql_warehouse w ON w.w_id = c.c_w_id
WHERE c.c_w_id = $1 AND c.c_d_id = $2 AND c.c_id = $3`

	SelectDistrictForUpdate = `SELECT d_next_o_id, d_tax, d_name
FROM bmsql_district
WHERE d_w_id = $1 AND d_id = $2
FOR UPDATE`

	IncrementNextOrderID = `UPDATE bmsql_district
SET d_next_o_id = d_next_o_id + 1
WHERE d_w_id = $1 AND d_id = $2`

	InsertOrder = `INSERT INTO bmsql_oorder
(o_id, o_d_id, o_w_id, o_c_id, o_entry_d, o_ol_cnt, o_all_local)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	InsertNewOrder = `INSERT INTO bmsql_new_order (no_o_id, no_d_id, no_w_id)
VALUES ($1, $2, $3)`

	SelectItem = `SELECT i_price, i_name, i_data
FROM bmsql_item
WHERE i_id = $1`

	SelectStockForUpdate = `SELECT s_quantity, s_data
FROM bmsql_stock
WHERE s_i_id = $1 AND s_w_id = $2
FOR UPDATE`

	UpdateStockQuantity = `UPDATE bmsql_stock
SET s_quantity = $1
WHERE s_i_id = $2 AND s_w_id = $3`

	InsertOrderLine = `INSERT INTO bmsql_order_line
(ol_o_id, ol_d_id, ol_w_id, ol_number, ol_i_id, ol_supply_w_id, ol_quantity, ol_amount)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
)

// Payment
const (
	AddWarehouseYTD = `UPDATE bmsql_warehouse
SET w_ytd = w_ytd + $1
WHERE w_id = $2
RETURNING w_name, w_street_1, w_street_2, w_city, w_state, w_zip, w_ytd`

	AddDistrictYTD = `UPDATE bmsql_district
SET d_ytd = d_ytd + $1
WHERE d_w_id = $2 AND d_id = $3
RETURNING d_name, d_street_1, d_street_2, d_city, d_state, d_zip, d_ytd`

	CountCustomersByLastName = `SELECT count(c_id)
FROM bmsql_customer
WHERE c_w_id = $1 AND c_d_id = $2 AND c_last = $3`

	customerColumns = `c_id, c_first, c_middle, c_last, c_street_1, c_street_2, c_city, c_state, c_zip,
c_phone, c_since, c_credit, c_credit_lim, c_discount, c_balance`

	ListCustomersByLastName = `SELECT ` + customerColumns + `
FROM bmsql_customer
WHERE c_w_id = $1 AND c_d_id = $2 AND c_last = $3
ORDER BY c_first
FOR UPDATE`

	SelectCustomerForUpdate = `SELECT ` + customerColumns + `
FROM bmsql_customer
WHERE c_w_id = $1 AND c_d_id = $2 AND c_id = $3
FOR UPDATE`

	SelectCustomerData = `SELECT c_data
FROM bmsql_customer
WHERE c_w_id = $1 AND c_d_id = $2 AND c_id = $3`

	UpdateCustomerBalance = `UPDATE bmsql_customer
SET c_balance = $1
WHERE c_w_id = $2 AND c_d_id = $3 AND c_id = $4`

	UpdateCustomerBalanceData = `UPDATE bmsql_customer
SET c_balance = $1, c_data = $2
WHERE c_w_id = $3 AND c_d_id = $4 AND c_id = $5`

	InsertHistory = `INSERT INTO bmsql_history
(h_c_d_id, h_c_w_id, h_c_id, h_d_id, h_w_id, h_date, h_amount, h_data)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
)

// SetStatementTimeout limits every statement of the current transaction.
// The value is in milliseconds.
const SetStatementTimeout = `SELECT set_config('statement_timeout', $1, true)`
