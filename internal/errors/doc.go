// Package errors provides structured diagnostics for patchwork.
//
// Every condition the runtime reports without failing (authoring mistakes,
// runaway update loops, hydration mismatches, duplicate keys) has a code in
// the registry. A code maps to:
//   - a category (reactivity, scheduler, patch, hydration, component, ...)
//   - a short message
//   - a longer explanation
//
// # Usage
//
//	err := errors.New("E101").
//	    WithMessagef("You may have an infinite update loop in watcher %q", expr).
//	    WithSuggestion("Do not mutate state the watcher itself depends on")
//
//	fmt.Println(err.Format())
//	// Output:
//	// WARN E101: You may have an infinite update loop in watcher "count"
//	//
//	//   A watcher was re-queued more than the allowed number of times ...
//	//
//	//   Hint: Do not mutate state the watcher itself depends on
package errors
