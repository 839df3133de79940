package vdom

import (
	"strconv"
	"strings"

	"github.com/vango-dev/patchwork/pkg/reactive"
)

// ComponentTagPrefix starts the tag of every component placeholder.
const ComponentTagPrefix = "component-"

// ComponentCtor is a resolved component definition able to build
// instances for placeholders.
type ComponentCtor interface {
	CID() uint64
	Name() string

	// PropNames lists the declared props, camelCased.
	PropNames() []string

	// CreateInstance builds the instance for placeholder and mounts it.
	// When hydrating, elm is the existing backend node to adopt.
	CreateInstance(placeholder *VNode, elm Node, hydrating bool) ComponentInstance
}

// Abstract is implemented by constructors of components that render no
// element of their own (KeepAlive).
type Abstract interface {
	Abstract() bool
}

// ComponentInstance is a live component as seen by the patcher.
type ComponentInstance interface {
	// Owner is the reactive owner of the instance's watchers and hooks.
	Owner() *reactive.Owner

	// Elm is the backend node of the instance's root.
	Elm() Node
	// RootVNode is the last rendered tree.
	RootVNode() *VNode
	// Placeholder is the parent's VNode standing for this instance.
	Placeholder() *VNode

	// UpdateFromParent receives new props, listeners and children from a
	// parent re-render.
	UpdateFromParent(placeholder *VNode, propsData map[string]any, listeners map[string][]Handler, children []*VNode)

	IsMounted() bool
	// MarkMounted flags the instance mounted and calls its mounted hook.
	MarkMounted()
	IsDestroyed() bool
	Destroy()

	// Activate and Deactivate toggle a kept-alive instance.
	Activate(direct bool)
	Deactivate(direct bool)
	// QueueActivated defers activation to the end of the current flush.
	QueueActivated()

	// ScopeID is the style scope applied to every element it renders.
	ScopeID() string
	// Refs is the instance's ref registry.
	Refs() map[string]any

	ResolveComponent(tag string) ComponentCtor
	ResolveDirective(name string) *DirectiveDef
}

// AsyncFactory resolves a component constructor asynchronously.
type AsyncFactory interface {
	// Resolve starts or joins resolution on behalf of context. It returns
	// the constructor to render now (the resolved, loading or error
	// component) or nil to render a placeholder comment. context is
	// re-rendered when resolution settles.
	Resolve(context ComponentInstance) ComponentCtor
	// Resolved is the constructor once resolution succeeded.
	Resolved() ComponentCtor
	// Failed reports whether resolution failed.
	Failed() bool
}

// AsyncMeta keeps what is needed to render the component once its async
// factory resolves.
type AsyncMeta struct {
	Data     *VNodeData
	Context  ComponentInstance
	Children []*VNode
	Tag      string
}

// ComponentOptions is carried by component placeholders.
type ComponentOptions struct {
	Ctor      ComponentCtor
	PropsData map[string]any
	Listeners map[string][]Handler
	Tag       string
	Children  []*VNode
}

// CreateComponent creates a placeholder VNode for ctor. When factory is
// set and has not resolved, an async placeholder comment is returned.
func CreateComponent(ctor ComponentCtor, factory AsyncFactory, data *VNodeData, context ComponentInstance, children []*VNode, tag string) *VNode {
	if ctor == nil && factory != nil {
		ctor = factory.Resolve(context)
		if ctor == nil {
			return createAsyncPlaceholder(factory, data, context, children, tag)
		}
	}
	if ctor == nil {
		return nil
	}
	if data == nil {
		data = &VNodeData{}
	}

	propsData := extractProps(data, ctor.PropNames())

	listeners := data.On
	data.On = data.NativeOn
	data.NativeOn = nil

	if a, ok := ctor.(Abstract); ok && a.Abstract() {
		data = &VNodeData{Key: data.Key, KeepAlive: data.KeepAlive}
	}

	installComponentHooks(data)

	name := ctor.Name()
	if name == "" {
		name = tag
	}
	vtag := ComponentTagPrefix + strconv.FormatUint(ctor.CID(), 10)
	if name != "" {
		vtag += "-" + name
	}
	return &VNode{
		Tag:     vtag,
		Data:    data,
		Key:     data.Key,
		Context: context,
		ComponentOptions: &ComponentOptions{
			Ctor:      ctor,
			PropsData: propsData,
			Listeners: listeners,
			Tag:       tag,
			Children:  children,
		},
		AsyncFactory: factory,
	}
}

func createAsyncPlaceholder(factory AsyncFactory, data *VNodeData, context ComponentInstance, children []*VNode, tag string) *VNode {
	node := Empty()
	node.AsyncFactory = factory
	node.AsyncMeta = &AsyncMeta{Data: data, Context: context, Children: children, Tag: tag}
	return node
}

// extractProps moves declared props out of data. Values in Props are
// kept there; values found in Attrs (camelCase or kebab-case) are removed
// so they do not fall through as attributes.
func extractProps(data *VNodeData, names []string) map[string]any {
	if len(names) == 0 {
		return nil
	}
	res := make(map[string]any)
	for _, key := range names {
		alt := hyphenate(key)
		if checkProp(res, data.Props, key, alt, true) {
			continue
		}
		checkProp(res, data.Attrs, key, alt, false)
	}
	return res
}

func checkProp(res, hash map[string]any, key, alt string, preserve bool) bool {
	if hash == nil {
		return false
	}
	for _, k := range []string{key, alt} {
		if v, ok := hash[k]; ok {
			res[key] = v
			if !preserve {
				delete(hash, k)
			}
			return true
		}
	}
	return false
}

func hyphenate(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// installComponentHooks adds the placeholder lifecycle to data, running
// any hooks already present after the component's own.
func installComponentHooks(data *VNodeData) {
	h := data.hooks()

	if user := h.Init; user != nil {
		h.Init = func(v *VNode, hydrating bool) { componentInit(v, hydrating); user(v, hydrating) }
	} else {
		h.Init = componentInit
	}
	if user := h.Prepatch; user != nil {
		h.Prepatch = func(old, v *VNode) { componentPrepatch(old, v); user(old, v) }
	} else {
		h.Prepatch = componentPrepatch
	}
	if user := h.Destroy; user != nil {
		h.Destroy = func(v *VNode) { componentDestroy(v); user(v) }
	} else {
		h.Destroy = componentDestroy
	}
	// The component's insert hook is always first; ancestor placeholders
	// skip it when their root element is replaced.
	h.Insert = append([]func(*VNode){componentInsert}, h.Insert...)
}

func componentInit(v *VNode, hydrating bool) {
	if inst := v.ComponentInstance; inst != nil && !inst.IsDestroyed() && v.Data.KeepAlive {
		// kept-alive component, treat as a patch
		componentPrepatch(v, v)
		return
	}
	var elm Node
	if hydrating {
		elm = v.Elm
	}
	v.ComponentInstance = v.ComponentOptions.Ctor.CreateInstance(v, elm, hydrating)
}

func componentPrepatch(old, v *VNode) {
	opts := v.ComponentOptions
	child := old.ComponentInstance
	v.ComponentInstance = child
	child.UpdateFromParent(v, opts.PropsData, opts.Listeners, opts.Children)
}

func componentInsert(v *VNode) {
	inst := v.ComponentInstance
	if !inst.IsMounted() {
		inst.MarkMounted()
	}
	if v.Data.KeepAlive {
		if v.Context != nil && v.Context.IsMounted() {
			// During updates the kept-alive tree may still change, so the
			// activated hooks wait for the end of the flush.
			inst.QueueActivated()
		} else {
			inst.Activate(true)
		}
	}
}

func componentDestroy(v *VNode) {
	inst := v.ComponentInstance
	if inst == nil || inst.IsDestroyed() {
		return
	}
	if !v.Data.KeepAlive {
		inst.Destroy()
		return
	}
	inst.Deactivate(true)
}
