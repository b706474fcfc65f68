// Package tpccsql holds the bmsql_* schema and the statements the stores run.
// Placeholders use the $n form understood by both pgx and lib/pq.
package tpccsql

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// CreateSchemaSQL creates the subset of the BenchmarkSQL schema the
// New-Order and Payment transactions touch.
const CreateSchemaSQL = `
CREATE TABLE IF NOT EXISTS bmsql_warehouse (
    w_id       INTEGER       NOT NULL PRIMARY KEY,
    w_ytd      DECIMAL(12,2) NOT NULL DEFAULT 0,
    w_tax      DECIMAL(4,4)  NOT NULL DEFAULT 0,
    w_name     VARCHAR(10)   NOT NULL DEFAULT '',
    w_street_1 VARCHAR(20)   NOT NULL DEFAULT '',
    w_street_2 VARCHAR(20)   NOT NULL DEFAULT '',
    w_city     VARCHAR(20)   NOT NULL DEFAULT '',
    w_state    CHAR(2)       NOT NULL DEFAULT '',
    w_zip      CHAR(9)       NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS bmsql_district (
    d_w_id      INTEGER       NOT NULL REFERENCES bmsql_warehouse(w_id),
    d_id        INTEGER       NOT NULL,
    d_ytd       DECIMAL(12,2) NOT NULL DEFAULT 0,
    d_tax       DECIMAL(4,4)  NOT NULL DEFAULT 0,
    d_next_o_id INTEGER       NOT NULL DEFAULT 1,
    d_name      VARCHAR(10)   NOT NULL DEFAULT '',
    d_street_1  VARCHAR(20)   NOT NULL DEFAULT '',
    d_street_2  VARCHAR(20)   NOT NULL DEFAULT '',
    d_city      VARCHAR(20)   NOT NULL DEFAULT '',
    d_state     CHAR(2)       NOT NULL DEFAULT '',
    d_zip       CHAR(9)       NOT NULL DEFAULT '',
    PRIMARY KEY (d_w_id, d_id)
);

CREATE TABLE IF NOT EXISTS bmsql_customer (
    c_w_id       INTEGER       NOT NULL,
    c_d_id       INTEGER       NOT NULL,
    c_id         INTEGER       NOT NULL,
    c_discount   DECIMAL(4,4)  NOT NULL DEFAULT 0,
    c_credit     CHAR(2)       NOT NULL DEFAULT 'GC',
    c_last       VARCHAR(16)   NOT NULL,
    c_first      VARCHAR(16)   NOT NULL DEFAULT '',
    c_credit_lim DECIMAL(12,2) NOT NULL DEFAULT 50000,
    c_balance    DECIMAL(12,2) NOT NULL DEFAULT 0,
    c_street_1   VARCHAR(20)   NOT NULL DEFAULT '',
    c_street_2   VARCHAR(20)   NOT NULL DEFAULT '',
    c_city       VARCHAR(20)   NOT NULL DEFAULT '',
    c_state      CHAR(2)       NOT NULL DEFAULT '',
    c_zip        CHAR(9)       NOT NULL DEFAULT '',
    c_phone      CHAR(16)      NOT NULL DEFAULT '',
    c_since      TIMESTAMP     NOT NULL DEFAULT now(),
    c_middle     CHAR(2)       NOT NULL DEFAULT 'OE',
    c_data       VARCHAR(500)  NOT NULL DEFAULT '',
    PRIMARY KEY (c_w_id, c_d_id, c_id),
    FOREIGN KEY (c_w_id, c_d_id) REFERENCES bmsql_district(d_w_id, d_id)
);

CREATE INDEX IF NOT EXISTS bmsql_customer_idx1 ON bmsql_customer (c_w_id, c_d_id, c_last, c_first);

CREATE TABLE IF NOT EXISTS bmsql_history (
    hist_id  BIGSERIAL PRIMARY KEY,
    h_c_id   INTEGER      NOT NULL,
    h_c_d_id INTEGER      NOT NULL,
    h_c_w_id INTEGER      NOT NULL,
    h_d_id   INTEGER      NOT NULL,
    h_w_id   INTEGER      NOT NULL,
    h_date   TIMESTAMP    NOT NULL,
    h_amount DECIMAL(6,2) NOT NULL,
    h_data   VARCHAR(24)  NOT NULL
);

CREATE TABLE IF NOT EXISTS bmsql_item (
    i_id    INTEGER      NOT NULL PRIMARY KEY,
    i_name  VARCHAR(24)  NOT NULL,
    i_price DECIMAL(5,2) NOT NULL,
    i_data  VARCHAR(50)  NOT NULL DEFAULT '',
    i_im_id INTEGER      NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS bmsql_stock (
    s_w_id     INTEGER     NOT NULL REFERENCES bmsql_warehouse(w_id),
    s_i_id     INTEGER     NOT NULL REFERENCES bmsql_item(i_id),
    s_quantity INTEGER     NOT NULL,
    s_data     VARCHAR(50) NOT NULL DEFAULT '',
    PRIMARY KEY (s_w_id, s_i_id)
);

CREATE TABLE IF NOT EXISTS bmsql_oorder (
    o_w_id       INTEGER   NOT NULL,
    o_d_id       INTEGER   NOT NULL,
    o_id         INTEGER   NOT NULL,
    o_c_id       INTEGER   NOT NULL,
    o_carrier_id INTEGER,
    o_ol_cnt     INTEGER   NOT NULL,
    o_all_local  INTEGER   NOT NULL,
    o_entry_d    TIMESTAMP NOT NULL,
    PRIMARY KEY (o_w_id, o_d_id, o_id)
);

CREATE TABLE IF NOT EXISTS bmsql_new_order (
    no_w_id INTEGER NOT NULL,
    no_d_id INTEGER NOT NULL,
    no_o_id INTEGER NOT NULL,
    PRIMARY KEY (no_w_id, no_d_id, no_o_id),
    FOREIGN KEY (no_w_id, no_d_id, no_o_id) REFERENCES bmsql_oorder(o_w_id, o_d_id, o_id)
);

CREATE TABLE IF NOT EXISTS bmsql_order_line (
    ol_w_id        INTEGER      NOT NULL,
    ol_d_id        INTEGER      NOT NULL,
    ol_o_id        INTEGER      NOT NULL,
    ol_number      INTEGER      NOT NULL,
    ol_i_id        INTEGER      NOT NULL,
    ol_delivery_d  TIMESTAMP,
    ol_amount      DECIMAL(6,2) NOT NULL,
    ol_supply_w_id INTEGER      NOT NULL,
    ol_quantity    INTEGER      NOT NULL,
    ol_dist_info   CHAR(24)     NOT NULL DEFAULT '',
    PRIMARY KEY (ol_w_id, ol_d_id, ol_o_id, ol_number),
    FOREIGN KEY (ol_w_id, ol_d_id, ol_o_id) REFERENCES bmsql_oorder(o_w_id, o_d_id, o_id)
);
`

// DropSchemaSQL drops every table created by CreateSchemaSQL.
const DropSchemaSQL = `
DROP TABLE IF EXISTS bmsql_order_line CASCADE;
DROP TABLE IF EXISTS bmsql_new_order CASCADE;
DROP TABLE IF EXISTS bmsql_oorder CASCADE;
DROP TABLE IF EXISTS bmsql_stock CASCADE;
DROP TABLE IF EXISTS bmsql_item CASCADE;
DROP TABLE IF EXISTS bmsql_history CASCADE;
DROP TABLE IF EXISTS bmsql_customer CASCADE;
DROP TABLE IF EXISTS bmsql_district CASCADE;
DROP TABLE IF EXISTS bmsql_warehouse CASCADE;
`

// CreateSchema cria as tabelas bmsql_* se ainda não existirem
func CreateSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, CreateSchemaSQL)
	return err
}

// DropSchema remove as tabelas criadas por CreateSchema
func DropSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, DropSchemaSQL)
	return err
}
