// Package reactive is the dependency-tracking core of patchwork.
//
// State lives in Objects and Arrays. Once observed, every key of an Object
// owns a Dep and every container owns an Observer whose Dep fires when the
// container changes shape. A Watcher evaluates an expression with itself
// as the current target; every reactive read during that evaluation
// subscribes the watcher to the Dep read.
//
//	rt := reactive.NewRuntime(reactive.DefaultConfig())
//	state := reactive.ObjectOf("count", 0)
//	reactive.Observe(state, false)
//
//	rt.NewWatcher(nil, "count", func(newVal, oldVal any) error {
//		fmt.Println(oldVal, "->", newVal)
//		return nil
//	}, reactive.WatcherOptions{User: true})
//
//	state.Set("count", 1)
//	rt.Flush() // prints 0 -> 1
//
// # Scheduling
//
// Notifications do not run watchers directly. The Runtime's scheduler
// collects them, deduplicated by watcher id, and flushes once per tick in
// ascending id order. Config.Async = false runs every notification
// immediately, which is mostly useful in tests.
//
// # Threading
//
// A Runtime is a single actor. Its state, watchers and owners are used from
// the goroutine running its Loop; other goroutines submit work with
// Loop.Post or Loop.Do. The current target is tracked per goroutine.
//
// # Adding and removing keys
//
// Object.Set on an unknown key adds a plain property. Use Set and Del to add
// or remove keys reactively, and Set to write array indexes.
package reactive
