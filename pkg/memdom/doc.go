// Package memdom is an in-memory output backend for the patcher.
//
// A Document implements vdom.Backend over plain Go nodes and records every
// operation in a log, which makes it the scriptable fake used by tests and
// the source of operation batches streamed by package livesync. Documents
// serialise to HTML and parse HTML back (for hydration) with
// golang.org/x/net/html.
//
//	doc := memdom.NewDocument()
//	p := vdom.NewPatcher(vdom.Options{Backend: doc, Modules: modules.Default(doc)})
//	root := doc.Element("div")
//	doc.AppendChild(root, p.Patch(nil, tree, false, false))
//	fmt.Println(root.OuterHTML())
package memdom
