package errors

// Template defines a registered diagnostic.
type Template struct {
	Category Category
	Severity Severity
	Message  string
	Detail   string
}

// registry maps codes to templates.
var registry = map[string]Template{
	// ============================================
	// Reactivity (E100-E149)
	// ============================================

	"E100": {
		Category: CategoryReactivity,
		Message:  "Failed watching path",
		Detail:   "Watch expressions accept simple dot-delimited paths only. For full control, pass a getter function instead.",
	},
	"E102": {
		Category: CategoryReactivity,
		Message:  "Cannot set reactive property on undefined or primitive value",
		Detail:   "Set and Del only operate on *reactive.Object and *reactive.Array targets.",
	},
	"E103": {
		Category: CategoryReactivity,
		Message:  "Avoid adding reactive properties to root data at runtime",
		Detail:   "Keys added to a component's root data after creation are not proxied. Declare the key upfront in the data factory.",
	},
	"E104": {
		Category: CategoryReactivity,
		Message:  "Avoid deleting properties on root data",
		Detail:   "Deleting keys from a component's root data is not supported; set the key to nil instead.",
	},
	"E105": {
		Category: CategoryReactivity,
		Message:  "Custom setter rejected the value",
	},

	// ============================================
	// Scheduler (E150-E199)
	// ============================================

	"E101": {
		Category: CategoryScheduler,
		Severity: SeverityError,
		Message:  "You may have an infinite update loop",
		Detail:   "A watcher was re-queued more times than the update limit allows within a single flush. It has been dropped for the rest of this flush.",
	},
	"E150": {
		Category: CategoryScheduler,
		Severity: SeverityError,
		Message:  "Error in nextTick callback",
	},

	// ============================================
	// Patch (E200-E249)
	// ============================================

	"E200": {
		Category: CategoryPatch,
		Message:  "Duplicate keys detected",
		Detail:   "Children of the same parent must have unique keys. Duplicate keys may cause update errors.",
	},
	"E202": {
		Category: CategoryPatch,
		Message:  "Unknown custom element",
		Detail:   "The tag is neither a reserved platform tag nor a registered component.",
	},
	"E203": {
		Category: CategoryPatch,
		Message:  "Multiple root nodes returned from render function",
		Detail:   "A render function must return a single root node.",
	},

	// ============================================
	// Hydration (E250-E299)
	// ============================================

	"E201": {
		Category: CategoryHydration,
		Message:  "The client-side rendered tree does not match the existing output",
		Detail:   "The existing output will be discarded and the tree rendered from scratch.",
	},
	"E250": {
		Category: CategoryHydration,
		Message:  "Hydration mismatch: node type differs",
	},
	"E251": {
		Category: CategoryHydration,
		Message:  "Hydration mismatch: text content differs",
	},
	"E252": {
		Category: CategoryHydration,
		Message:  "Hydration mismatch: child count differs",
	},

	// ============================================
	// Component (E300-E349)
	// ============================================

	"E300": {
		Category: CategoryComponent,
		Message:  "Missing required prop",
	},
	"E301": {
		Category: CategoryComponent,
		Message:  "Invalid prop: type check failed",
	},
	"E302": {
		Category: CategoryComponent,
		Message:  "Invalid prop: custom validator check failed",
	},
	"E303": {
		Category: CategoryComponent,
		Message:  "Avoid mutating a prop directly",
		Detail:   "The value will be overwritten whenever the parent component re-renders. Use a data or computed property based on the prop's value instead.",
	},
	"E304": {
		Category: CategoryComponent,
		Message:  "Failed to resolve async component",
	},
	"E305": {
		Category: CategoryComponent,
		Message:  "Computed property was assigned to but it has no setter",
	},
	"E306": {
		Category: CategoryComponent,
		Message:  "Render function returned an invalid root",
	},
	"E307": {
		Category: CategoryComponent,
		Message:  "Failed to resolve directive",
	},

	// ============================================
	// Config (E400-E449)
	// ============================================

	"E400": {
		Category: CategoryConfig,
		Severity: SeverityError,
		Message:  "Invalid configuration",
	},
	"E401": {
		Category: CategoryConfig,
		Severity: SeverityError,
		Message:  "Configuration file not found",
	},
}

// Lookup returns the template for code.
func Lookup(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}
