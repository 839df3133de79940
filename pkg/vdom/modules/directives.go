package modules

import (
	"fmt"

	"github.com/vango-dev/patchwork/pkg/vdom"
)

// Directives drives directive hooks: bind and inserted on creation,
// update and componentUpdated on patch, unbind when a directive goes
// away or its node is destroyed.
type Directives struct{}

func (Directives) Name() string { return "directives" }

func (Directives) Create(empty, v *vdom.VNode) {
	if len(data(v).Directives) > 0 {
		updateDirectives(empty, v, true)
	}
}

func (Directives) Update(old, v *vdom.VNode) {
	if len(data(old).Directives) > 0 || len(data(v).Directives) > 0 {
		updateDirectives(old, v, false)
	}
}

func (Directives) Destroy(v *vdom.VNode) {
	if len(data(v).Directives) > 0 {
		updateDirectives(v, &vdom.VNode{Data: &vdom.VNodeData{}}, false)
	}
}

func updateDirectives(old, v *vdom.VNode, isCreate bool) {
	oldDirs := normalizeDirectives(old)
	newDirs := normalizeDirectives(v)

	var withInsert, withPostpatch []*vdom.Directive
	for key, dir := range newDirs {
		oldDir, ok := oldDirs[key]
		if !ok {
			callHook(dir, "bind", v, old)
			if dir.Def != nil && dir.Def.Inserted != nil {
				withInsert = append(withInsert, dir)
			}
			continue
		}
		dir.OldValue = oldDir.Value
		callHook(dir, "update", v, old)
		if dir.Def != nil && dir.Def.ComponentUpdated != nil {
			withPostpatch = append(withPostpatch, dir)
		}
	}

	if len(withInsert) > 0 {
		callInsert := func(*vdom.VNode) {
			for _, dir := range withInsert {
				callHook(dir, "inserted", v, old)
			}
		}
		if isCreate {
			v.Data.MergeInsert(callInsert)
		} else {
			callInsert(v)
		}
	}
	if len(withPostpatch) > 0 {
		v.Data.MergePostpatch(func(*vdom.VNode, *vdom.VNode) {
			for _, dir := range withPostpatch {
				callHook(dir, "componentUpdated", v, old)
			}
		})
	}

	if !isCreate {
		for key, dir := range oldDirs {
			if _, ok := newDirs[key]; !ok {
				// the old node is the one being unbound
				callHook(dir, "unbind", old, old)
			}
		}
	}
}

// normalizeDirectives keys v's directives by raw name and resolves
// missing definitions through the rendering component.
func normalizeDirectives(v *vdom.VNode) map[string]*vdom.Directive {
	dirs := data(v).Directives
	res := make(map[string]*vdom.Directive, len(dirs))
	for i := range dirs {
		dir := &dirs[i]
		if dir.Def == nil && v.Context != nil {
			dir.Def = v.Context.ResolveDirective(dir.Name)
			if dir.Def == nil {
				rt, owner := errorSink(v.Context)
				rt.Warn("E307", owner, "Failed to resolve directive: %s", dir.Name)
			}
		}
		key := dir.RawName
		if key == "" {
			key = dir.Name
		}
		res[key] = dir
	}
	return res
}

func callHook(dir *vdom.Directive, hook string, v, old *vdom.VNode) {
	if dir.Def == nil {
		return
	}
	var fn func(vdom.Node, *vdom.Directive, *vdom.VNode, *vdom.VNode)
	switch hook {
	case "bind":
		fn = dir.Def.Bind
	case "inserted":
		fn = dir.Def.Inserted
	case "update":
		fn = dir.Def.Update
	case "componentUpdated":
		fn = dir.Def.ComponentUpdated
	case "unbind":
		fn = dir.Def.Unbind
	}
	if fn == nil {
		return
	}
	rt, owner := errorSink(v.Context)
	_ = rt.Invoke(func() error {
		fn(v.Elm, dir, v, old)
		return nil
	}, owner, fmt.Sprintf("directive %s %s hook", dir.Name, hook))
}
