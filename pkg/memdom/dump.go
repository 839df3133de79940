package memdom

import (
	"fmt"
	"strings"

	"github.com/xlab/treeprint"

	"github.com/vango-dev/patchwork/pkg/vdom"
)

// Dump renders the subtree at n with node ids, for debugging.
func Dump(n *Node) string {
	tree := treeprint.NewWithRoot(nodeLabel(n))
	dumpChildren(tree, n)
	return tree.String()
}

func dumpChildren(branch treeprint.Tree, n *Node) {
	for _, c := range n.children {
		if len(c.children) == 0 {
			branch.AddNode(nodeLabel(c))
			continue
		}
		dumpChildren(branch.AddBranch(nodeLabel(c)), c)
	}
}

func nodeLabel(n *Node) string {
	switch n.Type {
	case vdom.TextNode:
		return fmt.Sprintf("#%d %q", n.ID, n.Data)
	case vdom.CommentNode:
		return fmt.Sprintf("#%d <!--%s-->", n.ID, n.Data)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "#%d <%s", n.ID, n.Tag)
	for _, k := range sortedKeys(n.Attrs) {
		fmt.Fprintf(&b, " %s=%q", k, n.Attrs[k])
	}
	b.WriteString(">")
	return b.String()
}
