package bench

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/matheusmosca/tpcc-bench/internal/tpcc"
	"github.com/matheusmosca/tpcc-bench/internal/workload"
)

// Config descreve uma execução de carga
type Config struct {
	Workers       int
	Duration      time.Duration
	NewOrderRatio float64
	Seed          uint64
	Scale         workload.Scale
	Mix           workload.Mix
}

// Stats acumula os resultados de um perfil
type Stats struct {
	Committed  int
	RolledBack int
	Failed     int
	Latency    time.Duration
}

// Total returns the number of attempted transactions.
func (s Stats) Total() int {
	return s.Committed + s.RolledBack + s.Failed
}

// MeanLatency returns the mean latency over all attempts.
func (s Stats) MeanLatency() time.Duration {
	if s.Total() == 0 {
		return 0
	}
	return s.Latency / time.Duration(s.Total())
}

func (s *Stats) add(other Stats) {
	s.Committed += other.Committed
	s.RolledBack += other.RolledBack
	s.Failed += other.Failed
	s.Latency += other.Latency
}

func (s *Stats) record(elapsed time.Duration, err error) {
	s.Latency += elapsed
	switch {
	case err == nil:
		s.Committed++
	case IsRollback(err):
		s.RolledBack++
	default:
		s.Failed++
	}
}

// Report é o resultado agregado de Run
type Report struct {
	Elapsed time.Duration
	ByKind  map[tpcc.TxKind]Stats
}

// String formata o relatório como uma tabela simples
func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "elapsed %s\n", r.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(&b, "%-8s %9s %10s %11s %7s %12s %8s\n", "tx", "attempts", "committed", "rolledback", "failed", "mean", "tps")
	for _, kind := range []tpcc.TxKind{tpcc.TxNewOrder, tpcc.TxPayment} {
		s := r.ByKind[kind]
		tps := 0.0
		if r.Elapsed > 0 {
			tps = float64(s.Committed) / r.Elapsed.Seconds()
		}
		fmt.Fprintf(&b, "%-8s %9d %10d %11d %7d %12s %8.1f\n",
			kind, s.Total(), s.Committed, s.RolledBack, s.Failed, s.MeanLatency().Round(time.Microsecond), tps)
	}
	return b.String()
}

// Runner dispara workers que alternam New-Order e Payment até o fim da duração
type Runner struct {
	driver Driver
	cfg    Config
}

// NewRunner cria uma nova instância de Runner
func NewRunner(driver Driver, cfg Config) *Runner {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Runner{driver: driver, cfg: cfg}
}

// Run executa a carga até ctx terminar ou a duração expirar
func (r *Runner) Run(ctx context.Context) *Report {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Duration)
	defer cancel()

	log.Printf("🚀 Running %d workers for %s (neword ratio %.2f)", r.cfg.Workers, r.cfg.Duration, r.cfg.NewOrderRatio)

	results := make([]map[tpcc.TxKind]Stats, r.cfg.Workers)
	start := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < r.cfg.Workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			results[worker] = r.work(ctx, worker)
		}(i)
	}
	wg.Wait()

	report := &Report{Elapsed: time.Since(start), ByKind: map[tpcc.TxKind]Stats{}}
	for _, byKind := range results {
		for kind, s := range byKind {
			total := report.ByKind[kind]
			total.add(s)
			report.ByKind[kind] = total
		}
	}
	return report
}

func (r *Runner) work(ctx context.Context, worker int) map[tpcc.TxKind]Stats {
	gen := workload.NewGenerator(r.cfg.Seed+uint64(worker), r.cfg.Scale, r.cfg.Mix)
	stats := map[tpcc.TxKind]*Stats{tpcc.TxNewOrder: {}, tpcc.TxPayment: {}}

	for ctx.Err() == nil {
		kind := gen.NextKind(r.cfg.NewOrderRatio)

		var err error
		start := time.Now()
		switch kind {
		case tpcc.TxNewOrder:
			err = r.driver.NewOrder(ctx, gen.NewOrder())
		case tpcc.TxPayment:
			err = r.driver.Payment(ctx, gen.Payment())
		}
		if ctx.Err() != nil {
			// interrompida pelo fim da execução; não conta
			break
		}
		stats[kind].record(time.Since(start), err)
	}

	out := make(map[tpcc.TxKind]Stats, len(stats))
	for kind, s := range stats {
		out[kind] = *s
	}
	return out
}
