package vdom

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xlab/treeprint"
)

// Dump renders v as an indented tree, for debugging and golden tests.
func Dump(v *VNode) string {
	if v == nil {
		return "<nil>\n"
	}
	tree := treeprint.NewWithRoot(label(v))
	dumpChildren(tree, v)
	return tree.String()
}

func dumpChildren(branch treeprint.Tree, v *VNode) {
	children := v.Children
	if v.ComponentInstance != nil && v.ComponentInstance.RootVNode() != nil {
		children = []*VNode{v.ComponentInstance.RootVNode()}
	}
	for _, c := range children {
		if c == nil {
			branch.AddNode("<hole>")
			continue
		}
		if len(c.Children) == 0 && c.ComponentInstance == nil {
			branch.AddNode(label(c))
			continue
		}
		dumpChildren(branch.AddBranch(label(c)), c)
	}
}

func label(v *VNode) string {
	switch v.Kind() {
	case KindText:
		return fmt.Sprintf("%q", v.Text)
	case KindComment:
		if v.AsyncFactory != nil {
			return "<!--async-->"
		}
		return "<!--" + v.Text + "-->"
	}
	var b strings.Builder
	b.WriteString("<" + v.Tag)
	if v.Key != "" {
		fmt.Fprintf(&b, " key=%q", v.Key)
	}
	if v.Data != nil {
		keys := make([]string, 0, len(v.Data.Attrs))
		for k := range v.Data.Attrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%q", k, toString(v.Data.Attrs[k]))
		}
		if len(v.Data.On) > 0 {
			events := make([]string, 0, len(v.Data.On))
			for e := range v.Data.On {
				events = append(events, e)
			}
			sort.Strings(events)
			fmt.Fprintf(&b, " @%s", strings.Join(events, ",@"))
		}
	}
	b.WriteString(">")
	return b.String()
}
