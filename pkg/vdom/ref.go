package vdom

// RegisterRef records (or with remove, forgets) v's component instance or
// element under its ref name on the rendering component. Refs in loops
// collect into a []any.
func RegisterRef(v *VNode, remove bool) {
	if v.Data == nil || v.Data.Ref == "" || v.Context == nil {
		return
	}
	key := v.Data.Ref
	var ref any = v.Elm
	if v.ComponentInstance != nil {
		ref = v.ComponentInstance
	}
	refs := v.Context.Refs()
	if refs == nil {
		return
	}
	if remove {
		switch cur := refs[key].(type) {
		case []any:
			refs[key] = removeRef(cur, ref)
		default:
			if cur == ref {
				delete(refs, key)
			}
		}
		return
	}
	if !v.Data.RefInFor {
		refs[key] = ref
		return
	}
	list, _ := refs[key].([]any)
	for _, r := range list {
		if r == ref {
			return
		}
	}
	refs[key] = append(list, ref)
}

func removeRef(list []any, ref any) []any {
	for i, r := range list {
		if r == ref {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	return list
}
