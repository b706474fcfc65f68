package workload

import "github.com/shopspring/decimal"

const (
	alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	digits   = "0123456789"
)

func (g *Generator) pick(chars string, lo, hi int) string {
	b := make([]byte, g.Uniform(lo, hi))
	for i := range b {
		b[i] = chars[g.rnd.IntN(len(chars))]
	}
	return string(b)
}

// AlphaString returns a random alphanumeric string with lo..hi characters.
func (g *Generator) AlphaString(lo, hi int) string {
	return g.pick(alphabet, lo, hi)
}

// NumericString returns a random string of lo..hi digits.
func (g *Generator) NumericString(lo, hi int) string {
	return g.pick(digits, lo, hi)
}

// Zip returns a TPC-C zip code: four random digits followed by "11111".
func (g *Generator) Zip() string {
	return g.NumericString(4, 4) + "11111"
}

// Tax returns a tax rate between 0.0000 and 0.2000.
func (g *Generator) Tax() decimal.Decimal {
	return decimal.New(int64(g.Uniform(0, 2000)), -4)
}

// Discount returns a customer discount between 0.0000 and 0.5000.
func (g *Generator) Discount() decimal.Decimal {
	return decimal.New(int64(g.Uniform(0, 5000)), -4)
}

// Credit returns "BC" for roughly one customer in ten and "GC" otherwise.
func (g *Generator) Credit() string {
	if g.chance(0.10) {
		return "BC"
	}
	return "GC"
}
