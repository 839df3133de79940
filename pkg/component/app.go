package component

import (
	"log/slog"

	"github.com/vango-dev/patchwork/pkg/reactive"
	"github.com/vango-dev/patchwork/pkg/vdom"
	"github.com/vango-dev/patchwork/pkg/vdom/modules"
)

// Options configures an App.
type Options struct {
	// Backend receives the node operations. Required.
	Backend vdom.Backend

	// Runtime schedules the App's watchers. Default: reactive.Default().
	Runtime *reactive.Runtime

	// Modules replaces the standard aspect modules.
	Modules []vdom.Module

	// Platform answers tag questions. Default: vdom.DefaultPlatform.
	Platform vdom.Platform

	// PatchObserver is notified after every patch.
	PatchObserver vdom.PatchObserver
}

// App binds a reactive runtime to a patcher and holds the global
// component and directive registries.
type App struct {
	rt      *reactive.Runtime
	patcher *vdom.Patcher
	log     *slog.Logger

	components map[string]*Definition
	directives map[string]*vdom.DirectiveDef

	// active is the instance whose tree is being patched; components
	// created by that patch become its children.
	active *Instance
}

// NewApp creates an App. Patcher diagnostics are reported through the
// runtime and attributed to the rendering instance.
func NewApp(opts Options) *App {
	rt := opts.Runtime
	if rt == nil {
		rt = reactive.Default()
	}
	mods := opts.Modules
	if mods == nil {
		mods = modules.Default(opts.Backend)
	}
	a := &App{
		rt:         rt,
		log:        rt.Logger().With("component", "app"),
		components: make(map[string]*Definition),
		directives: make(map[string]*vdom.DirectiveDef),
	}
	a.patcher = vdom.NewPatcher(vdom.Options{
		Backend:  opts.Backend,
		Modules:  mods,
		Platform: opts.Platform,
		Observer: opts.PatchObserver,
		Warn: func(code string, ctx vdom.ComponentInstance, msg string) {
			var owner *reactive.Owner
			if ctx != nil {
				owner = ctx.Owner()
			}
			if msg == "" {
				rt.Warn(code, owner, "")
				return
			}
			rt.Warn(code, owner, "%s", msg)
		},
	})
	return a
}

// Runtime returns the App's runtime.
func (a *App) Runtime() *reactive.Runtime { return a.rt }

// Patcher returns the App's patcher.
func (a *App) Patcher() *vdom.Patcher { return a.patcher }

// Backend returns the patcher's backend.
func (a *App) Backend() vdom.Backend { return a.patcher.Backend() }

// Component registers def globally under name.
func (a *App) Component(name string, def *Definition) {
	a.components[name] = def
}

// Directive registers def globally under name.
func (a *App) Directive(name string, def *vdom.DirectiveDef) {
	a.directives[name] = def
}

func (a *App) component(name string) *Definition { return a.components[name] }

func (a *App) directive(name string) *vdom.DirectiveDef { return a.directives[name] }

// New creates a root instance and runs it up to the created hook. The
// instance renders when mounted.
func (a *App) New(def *Definition, props map[string]any) *Instance {
	return newInstance(a, def, nil, nil, props)
}

// Mount creates a root instance and mounts it over target (see
// Instance.Mount).
func (a *App) Mount(def *Definition, props map[string]any, target vdom.Node) *Instance {
	c := a.New(def, props)
	c.Mount(target)
	return c
}
