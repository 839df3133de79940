package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/vango-dev/patchwork/internal/config"
	"github.com/vango-dev/patchwork/pkg/component"
	"github.com/vango-dev/patchwork/pkg/memdom"
	"github.com/vango-dev/patchwork/pkg/reactive"
	"github.com/vango-dev/patchwork/pkg/vdom"
)

// listDef renders rows as a keyed <ul>, one <li> per row keyed by its
// value.
func listDef(rows []any) *component.Definition {
	return &component.Definition{
		DisplayName: "list",
		Data: func(*component.Instance) map[string]any {
			return map[string]any{"rows": rows}
		},
		Render: func(c *component.Instance) any {
			items := c.Get("rows").(*reactive.Array).Items()
			return vdom.Ul(vdom.Class("rows"), vdom.Range(items, func(row any, _ int) *vdom.VNode {
				return vdom.Li(vdom.Key(row), fmt.Sprint(row))
			}))
		},
	}
}

// stage is a list component mounted on an in-memory document and driven
// synchronously: every update is flushed before it returns.
type stage struct {
	doc  *memdom.Document
	rt   *reactive.Runtime
	inst *component.Instance
	root *memdom.Node

	// mountOps holds the operations recorded by the initial render.
	mountOps []memdom.Op
	mountDur time.Duration
}

func newStage(cfg *config.Config, logger *slog.Logger, rows []any) *stage {
	rc := cfg.ReactiveConfig()
	// Flush drains microtasks only.
	rc.TickMode = reactive.TickMicrotask
	rc.Logger = logger

	s := &stage{doc: memdom.NewDocument()}
	s.rt = reactive.NewRuntime(rc)
	app := component.NewApp(component.Options{Backend: s.doc, Runtime: s.rt})

	start := time.Now()
	s.inst = app.Mount(listDef(rows), nil, nil)
	s.rt.Flush()
	s.mountDur = time.Since(start)
	s.root = s.inst.Elm().(*memdom.Node)
	s.mountOps = s.doc.TakeOps()
	return s
}

// rows returns the current rows.
func (s *stage) rows() []any {
	return s.inst.Get("rows").(*reactive.Array).Items()
}

// set replaces the rows, flushes, and returns the recorded operations and
// the time the flush took.
func (s *stage) set(rows []any) ([]memdom.Op, time.Duration) {
	start := time.Now()
	s.inst.Set("rows", rows)
	s.rt.Flush()
	elapsed := time.Since(start)
	return s.doc.TakeOps(), elapsed
}

// keys returns n row keys starting at from: r<from>, r<from+1>, ...
func keys(from, n int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = fmt.Sprintf("r%d", from+i)
	}
	return out
}
