// Package vdom provides the virtual tree and the patcher that reconciles
// it against an output backend.
//
// A VNode describes one element, text, comment or component placeholder.
// Render code builds trees with the element factories or CreateElement:
//
//	Div(Class("card"), ID("main"),
//	    H1(Text("Title")),
//	    Ul(Range(items, func(it Item, i int) *VNode {
//	        return Li(Key(it.ID), Text(it.Name))
//	    })),
//	    OnClick(handler),
//	)
//
// # Patching
//
// A Patcher is created over a Backend (node operations, element
// operations and inspection) and an ordered list of aspect modules. Each
// module takes part in the phases whose interface it implements
// (Creator, Activator, Updater, Remover, Destroyer); see package modules
// for the standard set.
//
// Patch(old, new) reconciles two trees. Children lists are diffed with a
// two-ended scan that handles appends, prepends, reversals and single
// moves without a key lookup; other reorders fall back to a map from key
// to old index. Nodes that are not SameVNode are created fresh.
//
// # Hydration
//
// PatchElement adopts existing output (for example parsed from server
// rendered HTML) when hydrating or when the root element carries
// SSRAttr. On a mismatch the existing output is discarded and the tree is
// created from scratch.
//
// # Components
//
// Component placeholders carry ComponentOptions and install init,
// prepatch, insert and destroy hooks that drive a ComponentInstance.
// Package component provides the implementation.
package vdom
