package reactive

import mapset "github.com/deckarep/golang-set/v2"

// traverse reads every nested property of val so the current target
// depends on all of it. Containers are visited once per call, keyed by
// their observer's dep id.
func traverse(val any) {
	seen := mapset.NewThreadUnsafeSet[uint64]()
	walkDeep(val, seen)
}

func walkDeep(val any, seen mapset.Set[uint64]) {
	switch c := val.(type) {
	case *Object:
		if c.frozen {
			return
		}
		if c.ob != nil {
			if !seen.Add(c.ob.dep.id) {
				return
			}
		}
		keys := c.Keys()
		for i := len(keys) - 1; i >= 0; i-- {
			walkDeep(c.Get(keys[i]), seen)
		}
	case *Array:
		if c.frozen {
			return
		}
		if c.ob != nil {
			if !seen.Add(c.ob.dep.id) {
				return
			}
		}
		for i := len(c.items) - 1; i >= 0; i-- {
			walkDeep(c.items[i], seen)
		}
	}
}
