package component_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vango-dev/patchwork/pkg/component"
	"github.com/vango-dev/patchwork/pkg/memdom"
	"github.com/vango-dev/patchwork/pkg/reactive"
)

type fixture struct {
	t    *testing.T
	doc  *memdom.Document
	body *memdom.Node
	rt   *reactive.Runtime
	app  *component.App

	codes []string
	errs  []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{t: t, doc: memdom.NewDocument()}
	f.body = f.doc.Element("body")
	f.rt = reactive.NewRuntime(reactive.Config{
		Async: true,
		WarnHandler: func(d *reactive.Diagnostic, _ *reactive.Owner) {
			f.codes = append(f.codes, d.Code)
		},
		ErrorHandler: func(err error, _ *reactive.Owner, info string) error {
			f.errs = append(f.errs, info+": "+err.Error())
			return nil
		},
	})
	f.app = component.NewApp(component.Options{Backend: f.doc, Runtime: f.rt})
	return f
}

// mount renders def as a root attached to the fixture body and clears the
// op log.
func (f *fixture) mount(def *component.Definition, props map[string]any) *component.Instance {
	f.t.Helper()
	inst := f.app.New(def, props)
	elm := inst.Mount(nil)
	require.NotNil(f.t, elm)
	f.doc.AppendChild(f.body, elm)
	f.doc.ResetOps()
	return inst
}

func (f *fixture) html(inst *component.Instance) string {
	return inst.Elm().(*memdom.Node).OuterHTML()
}

// hookLog returns a hook appending name to log.
func hookLog(log *[]string, name string) component.HookFunc {
	return func(*component.Instance) error {
		*log = append(*log, name)
		return nil
	}
}

func counter(n *int) component.HookFunc {
	return func(*component.Instance) error {
		*n++
		return nil
	}
}
