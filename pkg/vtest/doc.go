// Package vtest provides testing helpers for patchwork components.
//
// The vtest package reduces boilerplate when testing components by
// mounting them on an in-memory document with a flush the test controls,
// collecting diagnostics, and offering render assertions.
//
// # Quick Start
//
//	func TestCounter(t *testing.T) {
//	    h := vtest.New(t)
//	    inst := h.Mount(Counter, nil)
//	    vtest.ExpectContains(t, h.Root(inst), "count: 0")
//
//	    h.Click(h.Find(inst, "button"))
//	    vtest.ExpectContains(t, h.Root(inst), "count: 1")
//	}
//
// # Flushing
//
// Writes are batched as in production; nothing is re-rendered until
// Flush. Set and Click flush for you:
//
//	inst.Set("count", 5)
//	h.Flush()
//
// # Diagnostics
//
// Diagnostics and routed errors are recorded instead of logged:
//
//	h.Mount(Broken, nil)
//	if got := h.Warnings(); len(got) != 1 || got[0] != "E306" {
//	    t.Errorf("warnings = %v", got)
//	}
package vtest
