package reactive

import (
	"math"
	"testing"
)

func TestObserveIdempotent(t *testing.T) {
	obj := ObjectOf("a", 1)
	ob1 := Observe(obj, false)
	ob2 := Observe(obj, true)
	if ob1 == nil || ob1 != ob2 {
		t.Fatalf("Observe returned %p then %p", ob1, ob2)
	}
	if ob1.VMCount() != 1 {
		t.Errorf("vmCount = %d, want 1", ob1.VMCount())
	}
}

func TestRawContainerWrappedOnce(t *testing.T) {
	raw := map[string]any{"x": 1}
	list := []any{1, 2}
	obj := ObjectOf("a", raw, "b", raw, "l", list, "m", list)
	Observe(obj, false)

	a, ok := obj.Get("a").(*Object)
	if !ok || a != obj.Get("b") {
		t.Fatalf("a = %v, b = %v, want one wrapper", obj.Get("a"), obj.Get("b"))
	}
	if NewObject(raw) != a {
		t.Error("NewObject built a second wrapper for the same map")
	}
	l, ok := obj.Get("l").(*Array)
	if !ok || l != obj.Get("m") || NewArray(list) != l {
		t.Errorf("l = %v, m = %v, want one wrapper", obj.Get("l"), obj.Get("m"))
	}
	if ObjectOf() == ObjectOf() || NewArray(nil) == NewArray(nil) {
		t.Error("fresh containers share a wrapper")
	}
}

func TestRewriteSameRawContainer(t *testing.T) {
	raw := map[string]any{"x": 1}
	list := []any{"a"}
	obj := ObjectOf("o", raw, "l", list)
	Observe(obj, false)
	wrapped := obj.Get("o")

	for _, tt := range []struct {
		key string
		val any
	}{
		{"o", raw},
		{"o", wrapped},
		{"l", list},
	} {
		sub := newSub()
		depOf(obj, tt.key).AddSub(sub)
		obj.Set(tt.key, tt.val)
		depOf(obj, tt.key).RemoveSub(sub)
		if sub.n != 0 {
			t.Errorf("Set(%q, same container) notified %d times", tt.key, sub.n)
		}
	}
	if obj.Get("o") != wrapped {
		t.Error("rewriting the same map replaced its wrapper")
	}
}

func TestSharedRawContainerNotifiesEverySlot(t *testing.T) {
	rt := NewRuntime(syncConfig())
	raw := map[string]any{"x": 1}
	obj := NewObject(map[string]any{"a": raw, "b": raw})
	Observe(obj, false)
	owner := NewOwner(rt, nil, "Shared")
	owner.SetScope(obj)

	var got []any
	rt.NewWatcher(owner, "b.x", func(n, _ any) error {
		got = append(got, n)
		return nil
	}, WatcherOptions{User: true})

	obj.Get("a").(*Object).Set("x", 2)

	if len(got) != 1 || got[0] != 2 {
		t.Errorf("reader of b saw %v, want [2]", got)
	}
}

func TestObserveSkips(t *testing.T) {
	frozen := ObjectOf("a", 1)
	frozen.Freeze()
	raw := MarkRaw(ObjectOf("a", 1))

	tests := []struct {
		name  string
		value any
	}{
		{"primitive", 42},
		{"nil", nil},
		{"plain map", map[string]any{"a": 1}},
		{"frozen", frozen},
		{"marked raw", raw},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if ob := Observe(tt.value, false); ob != nil {
				t.Errorf("Observe(%v) = %v, want nil", tt.value, ob)
			}
		})
	}
}

func TestToggleObserving(t *testing.T) {
	ToggleObserving(false)
	ob := Observe(ObjectOf("a", 1), false)
	ToggleObserving(true)
	if ob != nil {
		t.Error("Observe should return nil while observing is off")
	}
	if Observe(ObjectOf("a", 1), false) == nil {
		t.Error("Observe should work after observing is back on")
	}
}

func TestNestedValuesConverted(t *testing.T) {
	inner := map[string]any{"b": 1}
	obj := NewObject(map[string]any{
		"inner": inner,
		"list":  []any{map[string]any{"c": 2}},
	})
	Observe(obj, false)

	wrapped, ok := obj.Get("inner").(*Object)
	if !ok {
		t.Fatalf("inner = %T, want *Object", obj.Get("inner"))
	}
	if wrapped.Observer() == nil {
		t.Error("inner object should be observed")
	}
	wrapped.Set("b", 5)
	if inner["b"] != 5 {
		t.Errorf("raw map not shared: b = %v", inner["b"])
	}

	list, ok := obj.Get("list").(*Array)
	if !ok {
		t.Fatalf("list = %T, want *Array", obj.Get("list"))
	}
	if el, ok := list.At(0).(*Object); !ok || el.Observer() == nil {
		t.Errorf("array element = %T, want observed *Object", list.At(0))
	}
}

func TestSetSameValueSkipsNotify(t *testing.T) {
	inner := ObjectOf("x", 1)
	obj := ObjectOf("nan", math.NaN(), "s", "x", "o", inner, "n", 1)
	Observe(obj, false)

	tests := []struct {
		key    string
		val    any
		notify bool
	}{
		{"nan", math.NaN(), false},
		{"s", "x", false},
		{"o", inner, false},
		{"n", 1, false},
		{"s", "y", true},
		{"n", 1.0, true},
		{"o", ObjectOf("x", 1), true},
		{"nan", 0.0, true},
	}
	for _, tt := range tests {
		sub := newSub()
		depOf(obj, tt.key).AddSub(sub)
		obj.Set(tt.key, tt.val)
		depOf(obj, tt.key).RemoveSub(sub)

		if got := sub.n == 1; got != tt.notify {
			t.Errorf("Set(%q, %v): notified %d times, want notify=%v", tt.key, tt.val, sub.n, tt.notify)
		}
	}
}

func TestSameValue(t *testing.T) {
	m := map[string]any{}
	s := []any{1}
	type pair struct{ a, b any }
	tests := []struct {
		a, b any
		want bool
	}{
		{nil, nil, true},
		{1, 1, true},
		{1, int64(1), false},
		{math.NaN(), math.NaN(), true},
		{m, m, true},
		{m, map[string]any{}, false},
		{s, s, true},
		{s, []any{1}, false},
		{pair{1, 2}, pair{1, 2}, true},
		{pair{[]int{1}, 2}, pair{[]int{1}, 2}, false},
	}
	for _, tt := range tests {
		if got := SameValue(tt.a, tt.b); got != tt.want {
			t.Errorf("SameValue(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestArrayMutatorsNotifyOnce(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(a *Array)
		want   []any
	}{
		{"push", func(a *Array) { a.Push(4) }, []any{3, 1, 2, 4}},
		{"pop", func(a *Array) { a.Pop() }, []any{3, 1}},
		{"shift", func(a *Array) { a.Shift() }, []any{1, 2}},
		{"unshift", func(a *Array) { a.Unshift(0) }, []any{0, 3, 1, 2}},
		{"splice", func(a *Array) { a.Splice(1, 1, 7, 8) }, []any{3, 7, 8, 2}},
		{"sort", func(a *Array) { a.Sort(func(x, y any) bool { return x.(int) < y.(int) }) }, []any{1, 2, 3}},
		{"reverse", func(a *Array) { a.Reverse() }, []any{2, 1, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			arr := ArrayOf(3, 1, 2)
			ob := Observe(arr, false)
			sub := newSub()
			ob.Dep().AddSub(sub)

			tt.mutate(arr)

			if sub.n != 1 {
				t.Errorf("notifications = %d, want 1", sub.n)
			}
			got := arr.Items()
			if len(got) != len(tt.want) {
				t.Fatalf("items = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("items = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestArrayInsertedElementsObserved(t *testing.T) {
	arr := ArrayOf()
	Observe(arr, false)

	arr.Push(map[string]any{"a": 1})
	arr.Unshift(ObjectOf("b", 2))
	arr.Splice(1, 0, []any{1, 2})

	for i := 0; i < arr.Len(); i++ {
		switch v := arr.At(i).(type) {
		case *Object:
			if v.Observer() == nil {
				t.Errorf("element %d not observed", i)
			}
		case *Array:
			if v.Observer() == nil {
				t.Errorf("element %d not observed", i)
			}
		default:
			t.Errorf("element %d = %T, want a wrapper", i, v)
		}
	}
}

func TestPlainArrayDoesNotNotify(t *testing.T) {
	arr := ArrayOf(1)
	arr.Push(map[string]any{"a": 1})
	if _, ok := arr.At(1).(map[string]any); !ok {
		t.Errorf("unobserved array converted its input: %T", arr.At(1))
	}
}

func TestSetAddsReactiveKey(t *testing.T) {
	_, diags := withDefaultRuntime(t, syncConfig())
	obj := ObjectOf("a", 1)
	ob := Observe(obj, false)
	sub := newSub()
	ob.Dep().AddSub(sub)

	Set(obj, "b", 2)

	if sub.n != 1 {
		t.Errorf("container notifications = %d, want 1", sub.n)
	}
	if depOf(obj, "b") == nil {
		t.Error("new key is not reactive")
	}
	if obj.Get("b") != 2 {
		t.Errorf("b = %v, want 2", obj.Get("b"))
	}

	// Existing key: plain write, no container notification.
	Set(obj, "a", 3)
	if sub.n != 1 {
		t.Errorf("existing key notified the container")
	}
	if len(*diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", codes(*diags))
	}
}

func TestSetOnRootDataWarns(t *testing.T) {
	_, diags := withDefaultRuntime(t, syncConfig())
	root := ObjectOf("a", 1)
	Observe(root, true)

	Set(root, "b", 2)
	Del(root, "a")

	if root.Has("b") {
		t.Error("key added to root data")
	}
	if !root.Has("a") {
		t.Error("key deleted from root data")
	}
	got := codes(*diags)
	if len(got) != 2 || got[0] != "E103" || got[1] != "E104" {
		t.Errorf("diagnostics = %v, want [E103 E104]", got)
	}
}

func TestSetOnPrimitiveWarns(t *testing.T) {
	_, diags := withDefaultRuntime(t, syncConfig())
	Set(5, "a", 1)
	Del("str", "a")
	if got := codes(*diags); len(got) != 2 || got[0] != "E102" {
		t.Errorf("diagnostics = %v", got)
	}
}

func TestSetArrayIndex(t *testing.T) {
	withDefaultRuntime(t, syncConfig())
	arr := ArrayOf("a", "b")
	ob := Observe(arr, false)
	sub := newSub()
	ob.Dep().AddSub(sub)

	Set(arr, 1, "B")
	Set(arr, 3, "D")

	want := []any{"a", "B", nil, "D"}
	got := arr.Items()
	if len(got) != len(want) {
		t.Fatalf("items = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("items = %v, want %v", got, want)
		}
	}
	if sub.n != 2 {
		t.Errorf("notifications = %d, want 2", sub.n)
	}
}

func TestDel(t *testing.T) {
	withDefaultRuntime(t, syncConfig())
	obj := ObjectOf("a", 1, "b", 2)
	ob := Observe(obj, false)
	sub := newSub()
	ob.Dep().AddSub(sub)

	Del(obj, "a")
	Del(obj, "missing")

	if obj.Has("a") {
		t.Error("a still present")
	}
	if keys := obj.Keys(); len(keys) != 1 || keys[0] != "b" {
		t.Errorf("keys = %v", keys)
	}
	if sub.n != 1 {
		t.Errorf("notifications = %d, want 1", sub.n)
	}
}

func TestLockedKeyNotReactive(t *testing.T) {
	obj := ObjectOf("a", 1)
	obj.Lock("a")
	Observe(obj, false)
	if depOf(obj, "a") != nil {
		t.Error("locked key became reactive")
	}
}

func TestAccessorWithoutSetterDropsWrites(t *testing.T) {
	obj := ObjectOf()
	obj.DefineAccessor("full", Accessor{Get: func() any { return "fixed" }})
	Observe(obj, false)

	sub := newSub()
	depOf(obj, "full").AddSub(sub)
	obj.Set("full", "other")

	if obj.Get("full") != "fixed" {
		t.Errorf("full = %v", obj.Get("full"))
	}
	if sub.n != 0 {
		t.Error("read-only accessor notified")
	}
}

func TestCustomSetterAndShallow(t *testing.T) {
	obj := ObjectOf()
	called := 0
	DefineReactive(obj, "p", map[string]any{"x": 1}, WithCustomSetter(func() { called++ }), Shallow())

	if _, ok := obj.Get("p").(map[string]any); !ok {
		t.Errorf("shallow value converted: %T", obj.Get("p"))
	}
	obj.Set("p", 2)
	if called != 1 {
		t.Errorf("custom setter called %d times", called)
	}
}
