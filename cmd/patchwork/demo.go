package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/vango-dev/patchwork/internal/config"
	"github.com/vango-dev/patchwork/pkg/memdom"
	"github.com/vango-dev/patchwork/pkg/snapshot"
)

// demoStep is one update applied to the demo list.
type demoStep struct {
	name string
	next func(rows []any) []any
}

var demoSteps = []demoStep{
	{"append", func(rows []any) []any { return append(clone(rows), "f") }},
	{"reverse", func(rows []any) []any {
		out := clone(rows)
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
		return out
	}},
	{"remove middle", func(rows []any) []any {
		out := clone(rows)
		mid := len(out) / 2
		return append(out[:mid], out[mid+1:]...)
	}},
	{"prepend", func(rows []any) []any { return append([]any{"z"}, rows...) }},
	{"swap ends", func(rows []any) []any {
		out := clone(rows)
		out[0], out[len(out)-1] = out[len(out)-1], out[0]
		return out
	}},
	{"replace", func([]any) []any { return []any{"x", "y"} }},
}

func clone(rows []any) []any {
	return append([]any(nil), rows...)
}

func demoCmd() *cobra.Command {
	var (
		tree bool
		key  string
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Walk a keyed list through a series of updates",
		Long: `Mount a keyed list on an in-memory document and apply a fixed
series of updates (append, reverse, remove, prepend, swap, replace),
printing the backend operations each patch produced.

With --snapshot, the final markup is captured and compared against the
snapshot stored under the given key in the configured store.

Examples:
  patchwork demo
  patchwork demo --tree
  patchwork demo --snapshot demo`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runDemo(cmd.Context(), cfg, tree, key)
		},
	}

	cmd.Flags().BoolVarP(&tree, "tree", "t", false, "Print the document tree after each step")
	cmd.Flags().StringVar(&key, "snapshot", "", "Store the final markup under this snapshot key")

	return cmd
}

func runDemo(ctx context.Context, cfg *config.Config, tree bool, key string) error {
	logger := newLogger(cfg)
	s := newStage(cfg, logger, []any{"a", "b", "c", "d", "e"})

	tbl := table.NewWriter()
	tbl.SetTitle("Keyed list updates")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"step", "rows", "ops", "created", "moved", "removed", "wire", "time"})
	addRow := func(name string, ops []memdom.Op, elapsed time.Duration) {
		wire, _ := json.Marshal(ops)
		tbl.AppendRow(table.Row{
			name,
			fmt.Sprint(s.rows()...),
			humanize.Comma(int64(len(ops))),
			memdom.Count(ops, memdom.OpCreateElement),
			memdom.Count(ops, memdom.OpMove),
			memdom.Count(ops, memdom.OpRemove),
			humanize.Bytes(uint64(len(wire))),
			elapsed.Round(time.Microsecond),
		})
		if tree {
			fmt.Println(memdom.Dump(s.root))
		}
	}

	addRow("mount", s.mountOps, s.mountDur)
	for _, step := range demoSteps {
		ops, elapsed := s.set(step.next(s.rows()))
		addRow(step.name, ops, elapsed)
	}
	tbl.Render()

	fmt.Println()
	fmt.Println(memdom.RenderToString(s.root, memdom.RenderConfig{Pretty: true, Indent: "  "}))

	if key == "" {
		return nil
	}
	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	snap := snapshot.Capture(key, s.root)
	res, err := snapshot.Check(ctx, store, snap)
	if err != nil {
		return err
	}
	switch res.Status {
	case snapshot.New:
		success("Snapshot %q recorded (%016x)", key, snap.Fingerprint)
	case snapshot.Unchanged:
		success("Snapshot %q unchanged since %s", key, humanize.Time(res.Previous.Created))
	case snapshot.Changed:
		warn("Snapshot %q changed (%016x -> %016x)", key, res.Previous.Fingerprint, snap.Fingerprint)
	}
	return nil
}
