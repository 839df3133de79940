package vdom_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/patchwork/pkg/memdom"
	"github.com/vango-dev/patchwork/pkg/vdom"
)

type harness struct {
	doc   *memdom.Document
	p     *vdom.Patcher
	root  *memdom.Node
	warns []string
}

func newHarness(t *testing.T, modules ...vdom.Module) *harness {
	t.Helper()
	h := &harness{doc: memdom.NewDocument()}
	h.p = vdom.NewPatcher(vdom.Options{
		Backend: h.doc,
		Modules: modules,
		Warn: func(code string, _ vdom.ComponentInstance, _ string) {
			h.warns = append(h.warns, code)
		},
	})
	h.root = h.doc.Element("body")
	return h
}

// mount renders tree into the harness root and clears the op log.
func (h *harness) mount(tree *vdom.VNode) *vdom.VNode {
	h.doc.AppendChild(h.root, h.p.Patch(nil, tree, false, false))
	h.doc.ResetOps()
	return tree
}

func keyed(keys ...string) []*vdom.VNode {
	out := make([]*vdom.VNode, len(keys))
	for i, k := range keys {
		out[i] = vdom.Li(vdom.Key(k))
	}
	return out
}

func elms(nodes []*vdom.VNode) []vdom.Node {
	out := make([]vdom.Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Elm
	}
	return out
}

func childNodes(n *memdom.Node) []vdom.Node {
	out := make([]vdom.Node, 0, len(n.Children()))
	for _, c := range n.Children() {
		out = append(out, c)
	}
	return out
}

func TestMountRendersTree(t *testing.T) {
	h := newHarness(t)
	h.mount(vdom.Div(vdom.P("hello"), vdom.Empty(), "tail"))
	want := `<body><div><p>hello</p><!---->tail</div></body>`
	if got := h.root.OuterHTML(); got != want {
		t.Errorf("html = %s, want %s", got, want)
	}
}

// sameNode compares backend nodes by identity: reuse means the same node.
var sameNode = cmp.Comparer(func(a, b *memdom.Node) bool { return a == b })

func TestAppendKeyedChild(t *testing.T) {
	h := newHarness(t)
	old := h.mount(vdom.Ul(keyed("a", "b", "c")))
	before := elms(old.Children)

	next := vdom.Ul(keyed("a", "b", "c", "d"))
	h.p.Patch(old, next, false, false)

	ops := h.doc.Ops()
	if len(ops) != 2 || ops[0].Kind != memdom.OpCreateElement || ops[1].Kind != memdom.OpInsert {
		t.Fatalf("ops = %v, want one create and one insert", ops)
	}
	if n := memdom.Count(ops, memdom.OpMove); n != 0 {
		t.Errorf("moves = %d, want 0", n)
	}
	if diff := cmp.Diff(before, elms(next.Children)[:3], sameNode); diff != "" {
		t.Errorf("existing nodes not reused (-old +new):\n%s", diff)
	}
	if got := childNodes(old.Elm.(*memdom.Node)); len(got) != 4 || got[3] != next.Children[3].Elm {
		t.Errorf("d not appended last")
	}
}

func TestReverseKeyedChildren(t *testing.T) {
	h := newHarness(t)
	old := h.mount(vdom.Ul(keyed("a", "b", "c")))
	a, b, c := old.Children[0].Elm, old.Children[1].Elm, old.Children[2].Elm

	next := vdom.Ul(keyed("c", "b", "a"))
	h.p.Patch(old, next, false, false)

	ops := h.doc.Ops()
	if n := memdom.Count(ops, memdom.OpMove); n != 2 {
		t.Errorf("moves = %d, want 2 (ops %v)", n, ops)
	}
	for _, kind := range []memdom.OpKind{memdom.OpCreateElement, memdom.OpInsert, memdom.OpRemove} {
		if n := memdom.Count(ops, kind); n != 0 {
			t.Errorf("%v ops = %d, want 0", kind, n)
		}
	}
	want := []vdom.Node{c, b, a}
	if diff := cmp.Diff(want, childNodes(next.Elm.(*memdom.Node)), sameNode); diff != "" {
		t.Errorf("order (-want +got):\n%s", diff)
	}
}

func TestRemoveMiddleKeyedChild(t *testing.T) {
	h := newHarness(t)
	old := h.mount(vdom.Ul(keyed("a", "b", "c")))
	a, c := old.Children[0].Elm, old.Children[2].Elm

	next := vdom.Ul(keyed("a", "c"))
	h.p.Patch(old, next, false, false)

	ops := h.doc.Ops()
	if len(ops) != 1 || ops[0].Kind != memdom.OpRemove {
		t.Fatalf("ops = %v, want a single remove", ops)
	}
	if diff := cmp.Diff([]vdom.Node{a, c}, childNodes(next.Elm.(*memdom.Node)), sameNode); diff != "" {
		t.Errorf("children (-want +got):\n%s", diff)
	}
}

func TestPrependKeyedChild(t *testing.T) {
	h := newHarness(t)
	old := h.mount(vdom.Ul(keyed("b", "c")))
	b := old.Children[0].Elm

	next := vdom.Ul(keyed("a", "b", "c"))
	h.p.Patch(old, next, false, false)

	ops := h.doc.Ops()
	if len(ops) != 2 || ops[1].Kind != memdom.OpInsert {
		t.Fatalf("ops = %v", ops)
	}
	if ops[1].Ref != b.(*memdom.Node).ID {
		t.Errorf("a inserted before #%d, want before b (#%d)", ops[1].Ref, b.(*memdom.Node).ID)
	}
}

func TestShuffleUsesKeyMap(t *testing.T) {
	h := newHarness(t)
	old := h.mount(vdom.Ul(keyed("a", "b", "c", "d", "e")))
	byKey := map[string]vdom.Node{}
	for _, c := range old.Children {
		byKey[c.Key] = c.Elm
	}

	order := []string{"d", "a", "e", "c", "b"}
	next := vdom.Ul(keyed(order...))
	h.p.Patch(old, next, false, false)

	ops := h.doc.Ops()
	if n := memdom.Count(ops, memdom.OpCreateElement) + memdom.Count(ops, memdom.OpRemove); n != 0 {
		t.Errorf("creates+removes = %d, want 0 (ops %v)", n, ops)
	}
	want := make([]vdom.Node, len(order))
	for i, k := range order {
		want[i] = byKey[k]
	}
	if diff := cmp.Diff(want, childNodes(next.Elm.(*memdom.Node)), sameNode); diff != "" {
		t.Errorf("order (-want +got):\n%s", diff)
	}
}

func TestSameKeyDifferentTagRecreates(t *testing.T) {
	h := newHarness(t)
	old := h.mount(vdom.Div(vdom.Li(vdom.Key("x")), vdom.Span(vdom.Key("y"))))

	next := vdom.Div(vdom.P(vdom.Key("y")), vdom.Li(vdom.Key("x")))
	h.p.Patch(old, next, false, false)

	if got := next.Elm.(*memdom.Node).OuterHTML(); got != "<div><p></p><li></li></div>" {
		t.Errorf("html = %s", got)
	}
	if next.Children[1].Elm != old.Children[0].Elm {
		t.Error("li with the same key should be reused")
	}
	if len(h.warns) != 0 {
		t.Errorf("unexpected diagnostics %v", h.warns)
	}
}

func TestTextUpdate(t *testing.T) {
	h := newHarness(t)
	old := h.mount(vdom.Div("count:0"))
	textNode := old.Children[0].Elm

	next := vdom.Div("count:1")
	h.p.Patch(old, next, false, false)

	ops := h.doc.Ops()
	if len(ops) != 1 || ops[0].Kind != memdom.OpSetText {
		t.Fatalf("ops = %v, want a single SetText", ops)
	}
	if next.Children[0].Elm != textNode {
		t.Error("text node not reused")
	}
	if got := h.root.OuterHTML(); got != "<body><div>count:1</div></body>" {
		t.Errorf("html = %s", got)
	}
}

func TestChildrenAddedAndCleared(t *testing.T) {
	h := newHarness(t)
	old := h.mount(vdom.Div())
	full := vdom.Div(vdom.Span(), vdom.Span())
	h.p.Patch(old, full, false, false)
	if got := len(full.Elm.(*memdom.Node).Children()); got != 2 {
		t.Fatalf("children = %d, want 2", got)
	}
	empty := vdom.Div()
	h.p.Patch(full, empty, false, false)
	if got := len(empty.Elm.(*memdom.Node).Children()); got != 0 {
		t.Errorf("children = %d, want 0", got)
	}
}

func TestReplaceRoot(t *testing.T) {
	h := newHarness(t)
	old := h.mount(vdom.Div(vdom.Key("a")))
	destroyed := 0
	old.Data.Hook = &vdom.NodeHooks{Destroy: func(*vdom.VNode) { destroyed++ }}

	next := vdom.Span()
	h.p.Patch(old, next, false, false)

	if got := h.root.OuterHTML(); got != "<body><span></span></body>" {
		t.Errorf("html = %s", got)
	}
	if destroyed != 1 {
		t.Errorf("destroy hook ran %d times, want 1", destroyed)
	}
}

func TestDuplicateKeysWarn(t *testing.T) {
	h := newHarness(t)
	h.mount(vdom.Ul(keyed("a", "a")))
	if diff := cmp.Diff([]string{"E200"}, h.warns); diff != "" {
		t.Errorf("warnings (-want +got):\n%s", diff)
	}
}

func TestUnknownElementWarns(t *testing.T) {
	h := newHarness(t)
	h.mount(vdom.El("blink"))
	h.mount(vdom.El("my-widget"))
	if diff := cmp.Diff([]string{"E202"}, h.warns); diff != "" {
		t.Errorf("warnings (-want +got):\n%s", diff)
	}
}

func TestDestroyRunsHooksOverSubtree(t *testing.T) {
	h := newHarness(t)
	var seen []string
	hook := func(name string) *vdom.NodeHooks {
		return &vdom.NodeHooks{Destroy: func(*vdom.VNode) { seen = append(seen, name) }}
	}
	child := vdom.Span()
	child.Data.Hook = hook("span")
	tree := vdom.Div(child)
	tree.Data.Hook = hook("div")
	h.mount(tree)

	if got := h.p.Patch(tree, nil, false, false); got != nil {
		t.Errorf("Patch(old, nil) = %v, want nil", got)
	}
	if diff := cmp.Diff([]string{"div", "span"}, seen); diff != "" {
		t.Errorf("destroy order (-want +got):\n%s", diff)
	}
}

// recorder logs module phases.
type recorder struct {
	log *[]string
	rms []func()
	// hold keeps removals pending until release.
	hold bool
}

func (r *recorder) Name() string { return "recorder" }

func (r *recorder) Create(_, v *vdom.VNode) { *r.log = append(*r.log, "create "+v.Tag) }

func (r *recorder) Update(_, v *vdom.VNode) { *r.log = append(*r.log, "update "+v.Tag) }

func (r *recorder) Destroy(v *vdom.VNode) { *r.log = append(*r.log, "destroy "+v.Tag) }

func (r *recorder) Remove(v *vdom.VNode, rm func()) {
	*r.log = append(*r.log, "remove "+v.Tag)
	if r.hold {
		r.rms = append(r.rms, rm)
		return
	}
	rm()
}

func (r *recorder) release() {
	for _, rm := range r.rms {
		rm()
	}
	r.rms = nil
}

func TestModuleHookOrder(t *testing.T) {
	var log []string
	rec := &recorder{log: &log}
	h := newHarness(t, rec)
	tree := vdom.Div(vdom.Span())
	h.mount(tree)
	if diff := cmp.Diff([]string{"create span", "create div"}, log); diff != "" {
		t.Errorf("create order (-want +got):\n%s", diff)
	}

	log = nil
	next := vdom.Div()
	h.p.Patch(tree, next, false, false)
	want := []string{"update div", "remove span", "destroy span"}
	if diff := cmp.Diff(want, log); diff != "" {
		t.Errorf("patch order (-want +got):\n%s", diff)
	}
}

func TestRemovalWaitsForEveryRemover(t *testing.T) {
	var log []string
	first := &recorder{log: &log, hold: true}
	second := &recorder{log: &log}
	h := newHarness(t, first, second)
	tree := vdom.Ul(keyed("a", "b"))
	h.mount(tree)
	b := tree.Children[1].Elm.(*memdom.Node)

	var nodeRm func()
	tree.Children[1].Data.Hook = &vdom.NodeHooks{Remove: func(_ *vdom.VNode, rm func()) { nodeRm = rm }}

	h.p.Patch(tree, vdom.Ul(keyed("a")), false, false)
	if b.Parent() == nil {
		t.Fatal("node detached before removers finished")
	}
	first.release()
	if b.Parent() == nil {
		t.Fatal("node detached before its own remove hook finished")
	}
	nodeRm()
	if b.Parent() != nil {
		t.Error("node still attached after every remover finished")
	}
}

func TestInsertHooksRunAfterInsertion(t *testing.T) {
	h := newHarness(t)
	var parentAtInsert *memdom.Node
	child := vdom.Span()
	child.Data.MergeInsert(func(v *vdom.VNode) {
		parentAtInsert = v.Elm.(*memdom.Node).Parent()
	})
	tree := vdom.Div(child)
	h.mount(tree)
	if parentAtInsert != tree.Elm {
		t.Error("insert hook ran before the node was attached")
	}
}

func TestPrepatchAndPostpatch(t *testing.T) {
	h := newHarness(t)
	old := h.mount(vdom.Div())
	var calls []string
	next := vdom.Div()
	next.Data.Hook = &vdom.NodeHooks{
		Prepatch: func(o, v *vdom.VNode) { calls = append(calls, "prepatch") },
		Update:   func(o, v *vdom.VNode) { calls = append(calls, "update") },
	}
	next.Data.MergePostpatch(func(o, v *vdom.VNode) { calls = append(calls, "postpatch") })
	h.p.Patch(old, next, false, false)
	if diff := cmp.Diff([]string{"prepatch", "update", "postpatch"}, calls); diff != "" {
		t.Errorf("hooks (-want +got):\n%s", diff)
	}
}

func TestStaticClonedSubtreeIsReused(t *testing.T) {
	h := newHarness(t)
	static := vdom.P("static")
	static.IsStatic = true
	old := h.mount(vdom.Div(static))

	again := vdom.Clone(static)
	again.Children = []*vdom.VNode{vdom.NewText("changed")}
	next := vdom.Div(again)
	h.p.Patch(old, next, false, false)
	if len(h.doc.Ops()) != 0 {
		t.Errorf("static subtree diffed: %v", h.doc.Ops())
	}
}

func TestReusedVNodeIsCloned(t *testing.T) {
	h := newHarness(t)
	shared := vdom.Span("x")
	first := vdom.Div(shared)
	h.mount(first)
	second := vdom.Div(vdom.Span("y"), shared)
	h.p.Patch(first, second, false, false)
	if second.Children[1] == shared {
		t.Error("mounted VNode placed in a new tree must be cloned")
	}
	if !strings.Contains(h.root.OuterHTML(), "<span>y</span><span>x</span>") {
		t.Errorf("html = %s", h.root.OuterHTML())
	}
}

type countingObserver map[vdom.PatchOp]int

func (c countingObserver) Patched(op vdom.PatchOp, _ time.Duration) { c[op]++ }

func TestPatchObserver(t *testing.T) {
	obs := countingObserver{}
	doc := memdom.NewDocument()
	p := vdom.NewPatcher(vdom.Options{Backend: doc, Observer: obs})
	a := vdom.Div()
	p.Patch(nil, a, false, false)
	b := vdom.Div()
	p.Patch(a, b, false, false)
	p.Patch(b, nil, false, false)
	want := countingObserver{vdom.PatchMount: 1, vdom.PatchUpdate: 1, vdom.PatchDestroy: 1}
	if diff := cmp.Diff(want, obs); diff != "" {
		t.Errorf("observed (-want +got):\n%s", diff)
	}
}

func TestDump(t *testing.T) {
	out := vdom.Dump(vdom.Ul(vdom.Li(vdom.Key("a"), vdom.AttrOf("id", "x"), "one"), vdom.Empty()))
	for _, want := range []string{"<ul>", `<li key="a" id="x">`, `"one"`, "<!---->"} {
		if !strings.Contains(out, want) {
			t.Errorf("Dump missing %s:\n%s", want, out)
		}
	}
}
