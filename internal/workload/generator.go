// Package workload gera entradas aleatórias no estilo TPC-C para carga e benchmark.
package workload

import (
	"math/rand/v2"

	"github.com/shopspring/decimal"

	"github.com/matheusmosca/tpcc-bench/internal/tpcc"
)

var syllables = [10]string{"BAR", "OUGHT", "ABLE", "PRI", "PRES", "ESE", "ANTI", "CALLY", "ATION", "EING"}

// LastName builds the TPC-C surname for n in 0..999 from three syllables.
func LastName(n int) string {
	return syllables[(n/100)%10] + syllables[(n/10)%10] + syllables[n%10]
}

// Scale describes the size of a loaded database.
type Scale struct {
	Warehouses            int
	DistrictsPerWarehouse int
	CustomersPerDistrict  int
	Items                 int
}

// DefaultScale is the standard TPC-C cardinality for one warehouse.
func DefaultScale() Scale {
	return Scale{Warehouses: 1, DistrictsPerWarehouse: 10, CustomersPerDistrict: 3000, Items: 100000}
}

// Mix controls the shape of generated requests.
type Mix struct {
	// RemoteLineRate is the chance that a line is supplied by another warehouse.
	RemoteLineRate float64
	// ByNameRate is the chance that a payment selects its customer by surname.
	ByNameRate float64
	// InvalidItemRate is the chance that a new order ends with an unused item id and rolls back.
	InvalidItemRate float64
	MinLines        int
	MaxLines        int
}

// DefaultMix follows the TPC-C input rules.
func DefaultMix() Mix {
	return Mix{RemoteLineRate: 0.01, ByNameRate: 0.60, InvalidItemRate: 0.01, MinLines: 5, MaxLines: 15}
}

// Generator não é seguro para uso concorrente; use um por worker
type Generator struct {
	rnd   *rand.Rand
	scale Scale
	mix   Mix

	// NURand run-time constants.
	cLast int
	cID   int
	cItem int
}

// NewGenerator cria um gerador determinístico para a semente informada
func NewGenerator(seed uint64, scale Scale, mix Mix) *Generator {
	rnd := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return &Generator{
		rnd:   rnd,
		scale: scale,
		mix:   mix,
		cLast: rnd.IntN(256),
		cID:   rnd.IntN(1024),
		cItem: rnd.IntN(8192),
	}
}

// Uniform returns an integer in [lo, hi].
func (g *Generator) Uniform(lo, hi int) int {
	return lo + g.rnd.IntN(hi-lo+1)
}

// NURand is the TPC-C non-uniform random function.
func (g *Generator) NURand(a, lo, hi, c int) int {
	return (((g.Uniform(0, a) | g.Uniform(lo, hi)) + c) % (hi - lo + 1)) + lo
}

func (g *Generator) chance(p float64) bool {
	return g.rnd.Float64() < p
}

// CustomerID returns a non-uniform customer id within the district.
func (g *Generator) CustomerID() int {
	n := g.scale.CustomersPerDistrict
	return g.NURand(1023, 1, n, g.cID%n)
}

// ItemID returns a non-uniform item id.
func (g *Generator) ItemID() int {
	n := g.scale.Items
	return g.NURand(8191, 1, n, g.cItem%n)
}

// CustomerLastName returns the surname a loader assigns to customerID: the
// first thousand customers cover every surname once, the rest are non-uniform.
func (g *Generator) CustomerLastName(customerID int) string {
	if customerID <= 1000 {
		return LastName(customerID - 1)
	}
	return LastName(g.NURand(255, 0, 999, g.cLast))
}

// RandomLastName returns a surname for a by-name payment. It only picks among
// names the loader used for this scale.
func (g *Generator) RandomLastName() string {
	hi := min(999, g.scale.CustomersPerDistrict-1)
	return LastName(g.NURand(255, 0, hi, g.cLast%(hi+1)))
}

// Amount returns a uniform money amount between lo and hi cents.
func (g *Generator) Amount(loCents, hiCents int) decimal.Decimal {
	return decimal.New(int64(g.Uniform(loCents, hiCents)), -2)
}

func (g *Generator) homeDistrict() (int, int) {
	return g.Uniform(1, g.scale.Warehouses), g.Uniform(1, g.scale.DistrictsPerWarehouse)
}

// NewOrder gera uma requisição New-Order aleatória
func (g *Generator) NewOrder() tpcc.NewOrderRequest {
	w, d := g.homeDistrict()
	count := g.Uniform(g.mix.MinLines, g.mix.MaxLines)

	req := tpcc.NewOrderRequest{
		WarehouseID:        w,
		DistrictID:         d,
		CustomerID:         g.CustomerID(),
		LineCount:          count,
		SupplyWarehouseIDs: make([]int, count),
		ItemIDs:            make([]int, count),
		Quantities:         make([]int, count),
	}
	for k := 0; k < count; k++ {
		req.ItemIDs[k] = g.ItemID()
		req.Quantities[k] = g.Uniform(1, 10)
		req.SupplyWarehouseIDs[k] = w
		if g.scale.Warehouses > 1 && g.chance(g.mix.RemoteLineRate) {
			for req.SupplyWarehouseIDs[k] == w {
				req.SupplyWarehouseIDs[k] = g.Uniform(1, g.scale.Warehouses)
			}
		}
	}
	if g.chance(g.mix.InvalidItemRate) {
		req.ItemIDs[count-1] = g.scale.Items + 1
	}
	return req
}

// Payment gera uma requisição Payment aleatória
func (g *Generator) Payment() tpcc.PaymentRequest {
	w, d := g.homeDistrict()

	req := tpcc.PaymentRequest{
		WarehouseID: w,
		DistrictID:  d,
		Amount:      g.Amount(100, 500000),
	}
	if g.chance(g.mix.ByNameRate) {
		req.ByName = true
		req.CustomerLast = g.RandomLastName()
	} else {
		req.CustomerID = g.CustomerID()
	}
	return req
}

// NextKind picks New-Order with probability newOrderRatio and Payment otherwise.
func (g *Generator) NextKind(newOrderRatio float64) tpcc.TxKind {
	if g.chance(newOrderRatio) {
		return tpcc.TxNewOrder
	}
	return tpcc.TxPayment
}
