package postgres

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/matheusmosca/tpcc-bench/internal/tpccsql"
	"github.com/matheusmosca/tpcc-bench/internal/workload"
)

// numeric converte um decimal.Decimal para o tipo nativo do pgx usado pelo COPY
func numeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}

// Load recria o schema e popula as tabelas bmsql_* na escala informada.
// Orders are not preloaded; every district starts at d_next_o_id = 1.
func Load(ctx context.Context, pool *pgxpool.Pool, scale workload.Scale, seed uint64) error {
	start := time.Now()
	g := workload.NewGenerator(seed, scale, workload.DefaultMix())

	if err := tpccsql.DropSchema(ctx, pool); err != nil {
		return fmt.Errorf("drop schema: %w", err)
	}
	if err := tpccsql.CreateSchema(ctx, pool); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	steps := []struct {
		table   string
		columns []string
		rows    func() [][]any
	}{
		{"bmsql_item", []string{"i_id", "i_name", "i_price", "i_data", "i_im_id"}, func() [][]any {
			rows := make([][]any, 0, scale.Items)
			for i := 1; i <= scale.Items; i++ {
				rows = append(rows, []any{i, g.AlphaString(14, 24), numeric(g.Amount(100, 10000)), g.AlphaString(26, 50), g.Uniform(1, 10000)})
			}
			return rows
		}},
		{"bmsql_warehouse", []string{"w_id", "w_ytd", "w_tax", "w_name", "w_street_1", "w_street_2", "w_city", "w_state", "w_zip"}, func() [][]any {
			rows := make([][]any, 0, scale.Warehouses)
			for w := 1; w <= scale.Warehouses; w++ {
				rows = append(rows, []any{w, numeric(decimal.New(300000, 0)), numeric(g.Tax()), g.AlphaString(6, 10),
					g.AlphaString(10, 20), g.AlphaString(10, 20), g.AlphaString(10, 20), g.AlphaString(2, 2), g.Zip()})
			}
			return rows
		}},
		{"bmsql_stock", []string{"s_w_id", "s_i_id", "s_quantity", "s_data"}, func() [][]any {
			rows := make([][]any, 0, scale.Warehouses*scale.Items)
			for w := 1; w <= scale.Warehouses; w++ {
				for i := 1; i <= scale.Items; i++ {
					rows = append(rows, []any{w, i, g.Uniform(10, 100), g.AlphaString(26, 50)})
				}
			}
			return rows
		}},
		{"bmsql_district", []string{"d_w_id", "d_id", "d_ytd", "d_tax", "d_next_o_id", "d_name", "d_street_1", "d_street_2", "d_city", "d_state", "d_zip"}, func() [][]any {
			rows := make([][]any, 0, scale.Warehouses*scale.DistrictsPerWarehouse)
			for w := 1; w <= scale.Warehouses; w++ {
				for d := 1; d <= scale.DistrictsPerWarehouse; d++ {
					rows = append(rows, []any{w, d, numeric(decimal.New(30000, 0)), numeric(g.Tax()), 1, g.AlphaString(6, 10),
						g.AlphaString(10, 20), g.AlphaString(10, 20), g.AlphaString(10, 20), g.AlphaString(2, 2), g.Zip()})
				}
			}
			return rows
		}},
		{"bmsql_customer", []string{"c_w_id", "c_d_id", "c_id", "c_discount", "c_credit", "c_last", "c_first", "c_credit_lim",
			"c_balance", "c_street_1", "c_street_2", "c_city", "c_state", "c_zip", "c_phone", "c_since", "c_middle", "c_data"}, func() [][]any {
			now := time.Now()
			rows := make([][]any, 0, scale.Warehouses*scale.DistrictsPerWarehouse*scale.CustomersPerDistrict)
			for w := 1; w <= scale.Warehouses; w++ {
				for d := 1; d <= scale.DistrictsPerWarehouse; d++ {
					for c := 1; c <= scale.CustomersPerDistrict; c++ {
						rows = append(rows, []any{w, d, c, numeric(g.Discount()), g.Credit(), g.CustomerLastName(c), g.AlphaString(8, 16),
							numeric(decimal.New(50000, 0)), numeric(decimal.New(-1000, -2)),
							g.AlphaString(10, 20), g.AlphaString(10, 20), g.AlphaString(10, 20), g.AlphaString(2, 2), g.Zip(),
							g.NumericString(16, 16), now, "OE", g.AlphaString(300, 500)})
					}
				}
			}
			return rows
		}},
	}

	for _, step := range steps {
		n, err := pool.CopyFrom(ctx, pgx.Identifier{step.table}, step.columns, pgx.CopyFromRows(step.rows()))
		if err != nil {
			return classify("copy "+step.table, err)
		}
		log.Printf("📦 Loaded %s rows=%d", step.table, n)
	}

	log.Printf("✅ Load finished W=%d Items=%d in %s", scale.Warehouses, scale.Items, time.Since(start).Round(time.Millisecond))
	return nil
}
