package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/vango-dev/patchwork/internal/config"
	"github.com/vango-dev/patchwork/pkg/memdom"
)

// scenario produces the next row list from the current one. next mints
// fresh keys.
type scenario struct {
	name   string
	update func(rng *rand.Rand, rows []any, next func(n int) []any) []any
}

var scenarios = []scenario{
	{"shuffle", func(rng *rand.Rand, rows []any, _ func(int) []any) []any {
		out := clone(rows)
		rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
		return out
	}},
	{"reverse", func(_ *rand.Rand, rows []any, _ func(int) []any) []any {
		out := clone(rows)
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
		return out
	}},
	{"swap two", func(rng *rand.Rand, rows []any, _ func(int) []any) []any {
		out := clone(rows)
		if len(out) > 1 {
			i, j := rng.Intn(len(out)), rng.Intn(len(out))
			out[i], out[j] = out[j], out[i]
		}
		return out
	}},
	{"insert 10%", func(rng *rand.Rand, rows []any, next func(int) []any) []any {
		out := clone(rows)
		for _, k := range next(len(rows)/10 + 1) {
			i := rng.Intn(len(out) + 1)
			out = append(out[:i], append([]any{k}, out[i:]...)...)
		}
		return out
	}},
	{"remove 10%", func(rng *rand.Rand, rows []any, next func(int) []any) []any {
		out := clone(rows)
		for n := len(rows)/10 + 1; n > 0 && len(out) > 0; n-- {
			i := rng.Intn(len(out))
			out = append(out[:i], out[i+1:]...)
		}
		// Keep the list size stable across iterations.
		return append(out, next(len(rows)-len(out))...)
	}},
	{"replace all", func(_ *rand.Rand, rows []any, next func(int) []any) []any {
		return next(len(rows))
	}},
}

func benchCmd() *cobra.Command {
	var (
		rows       int
		iterations int
		seed       int64
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Time keyed list patches",
		Long: `Mount a keyed list and time the flush that follows each update,
for several update shapes: random shuffles, reversal, swaps, insertions,
removals and full replacement.

Defaults come from the "bench" section of patchwork.json.

Examples:
  patchwork bench
  patchwork bench --rows 10000 --iterations 50
  patchwork bench --seed 42`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if rows > 0 {
				cfg.Bench.Rows = rows
			}
			if iterations > 0 {
				cfg.Bench.Iterations = iterations
			}
			if cmd.Flags().Changed("seed") {
				cfg.Bench.Seed = seed
			}
			return runBench(cfg)
		},
	}

	cmd.Flags().IntVarP(&rows, "rows", "n", 0, "Rows in the list (default from patchwork.json)")
	cmd.Flags().IntVarP(&iterations, "iterations", "i", 0, "Updates per scenario (default from patchwork.json)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (default: time based)")

	return cmd
}

func runBench(cfg *config.Config) error {
	logger := newLogger(cfg)
	seed := cfg.Bench.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	n, iters := cfg.Bench.Rows, cfg.Bench.Iterations

	fmt.Printf("  %s rows, %s iterations, seed %d\n\n",
		humanize.Comma(int64(n)), humanize.Comma(int64(iters)), seed)

	tbl := table.NewWriter()
	tbl.SetTitle("Keyed list patching")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"scenario", "avg", "min", "p75", "p99", "max", "ops/iter", "moves/iter"})

	for _, sc := range scenarios {
		s := newStage(cfg, logger, keys(0, n))
		minted := n
		next := func(k int) []any {
			out := keys(minted, k)
			minted += k
			return out
		}

		tach := tachymeter.New(&tachymeter.Config{Size: iters})
		var ops, moves int
		for i := 0; i < iters; i++ {
			recorded, elapsed := s.set(sc.update(rng, s.rows(), next))
			tach.AddTime(elapsed)
			ops += len(recorded)
			moves += memdom.Count(recorded, memdom.OpMove)
		}

		calc := tach.Calc()
		tbl.AppendRows([]table.Row{
			{
				sc.name,
				calc.Time.Avg,
				calc.Time.Min,
				calc.Time.P75,
				calc.Time.P99,
				calc.Time.Max,
				humanize.Comma(int64(ops / max(iters, 1))),
				humanize.Comma(int64(moves / max(iters, 1))),
			},
		})
	}

	tbl.Render()
	return nil
}
