package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vango-dev/patchwork/pkg/component"
	"github.com/vango-dev/patchwork/pkg/reactive"
	"github.com/vango-dev/patchwork/pkg/vdom"
)

// loadState reads a JSON object of root state. Integral numbers decode as
// int, so handlers can do arithmetic on them.
func loadState(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var state map[string]any
	if err := dec.Decode(&state); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	for k, v := range state {
		state[k] = plainNumbers(v)
	}
	return state, nil
}

func plainNumbers(v any) any {
	switch v := v.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i)
		}
		f, _ := v.Float64()
		return f
	case map[string]any:
		for k, e := range v {
			v[k] = plainNumbers(e)
		}
	case []any:
		for i, e := range v {
			v[i] = plainNumbers(e)
		}
	}
	return v
}

// boardDef renders the state keys as a keyed list, with a counter button.
// The initial state fixes the set of keys; "title" and "count" are always
// present.
func boardDef(initial map[string]any) *component.Definition {
	return &component.Definition{
		DisplayName: "board",
		Data: func(*component.Instance) map[string]any {
			data := map[string]any{"title": "patchwork", "count": 0}
			for k, v := range initial {
				data[k] = v
			}
			return data
		},
		Render: func(c *component.Instance) any {
			keys := c.Data().Keys()
			sort.Strings(keys)
			var rows []*vdom.VNode
			for _, k := range keys {
				if k == "title" || k == "count" {
					continue
				}
				rows = append(rows, vdom.Li(vdom.Key(k),
					vdom.Strong(k), vdom.Textf(": %v", display(c.Get(k)))))
			}
			return vdom.Div(vdom.Class("board"),
				vdom.H1(vdom.Textf("%v", c.Get("title"))),
				vdom.Ul(rows),
				vdom.Button(vdom.OnClick(func(any) error {
					n, _ := c.Get("count").(int)
					c.Set("count", n+1)
					return nil
				}), vdom.Textf("clicked %v", c.Get("count"))),
			)
		},
	}
}

// display turns reactive containers back into plain values for printing.
func display(v any) any {
	switch v := v.(type) {
	case *reactive.Object:
		b, _ := json.Marshal(v)
		return string(b)
	case *reactive.Array:
		b, _ := json.Marshal(v)
		return string(b)
	}
	return v
}

// watchState reloads path whenever it changes and hands the new state to
// apply. It watches the parent directory so editors that replace the file
// are followed. It returns when ctx is done.
func watchState(ctx context.Context, path string, logger *slog.Logger, apply func(map[string]any) error) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(path)); err != nil {
		return err
	}

	// Editors often emit several events per save.
	const settle = 50 * time.Millisecond
	var (
		timer  *time.Timer
		reload <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(settle)
			} else {
				timer.Reset(settle)
			}
			reload = timer.C

		case <-reload:
			reload = nil
			state, err := loadState(path)
			if err != nil {
				logger.Warn("state reload failed", "path", path, "error", err)
				continue
			}
			if err := apply(state); err != nil {
				logger.Error("apply state", "error", err)
				continue
			}
			logger.Info("state reloaded", "path", path, "keys", len(state))

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		}
	}
}
