package memdom

import "fmt"

// OpKind is the type of a recorded backend operation.
type OpKind uint8

const (
	OpCreateElement OpKind = iota + 1
	OpCreateText
	OpCreateComment
	OpInsert // node attached to a parent for the first time
	OpMove   // node already attached, moved within or between parents
	OpRemove
	OpSetText
	OpSetAttr
	OpRemoveAttr
	OpSetStyle
	OpRemoveStyle
	OpSetProp
	OpAddListener
	OpRemoveListener
)

var opNames = map[OpKind]string{
	OpCreateElement:  "CreateElement",
	OpCreateText:     "CreateText",
	OpCreateComment:  "CreateComment",
	OpInsert:         "Insert",
	OpMove:           "Move",
	OpRemove:         "Remove",
	OpSetText:        "SetText",
	OpSetAttr:        "SetAttr",
	OpRemoveAttr:     "RemoveAttr",
	OpSetStyle:       "SetStyle",
	OpRemoveStyle:    "RemoveStyle",
	OpSetProp:        "SetProp",
	OpAddListener:    "AddListener",
	OpRemoveListener: "RemoveListener",
}

// String returns the string representation of the operation kind.
func (k OpKind) String() string {
	if s, ok := opNames[k]; ok {
		return s
	}
	return "Unknown"
}

// MarshalText encodes the kind by name.
func (k OpKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *OpKind) UnmarshalText(b []byte) error {
	for kind, name := range opNames {
		if name == string(b) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("memdom: unknown op %q", b)
}

// Op is one recorded backend operation. Node, Parent and Ref are node ids;
// zero means none.
type Op struct {
	Kind   OpKind `json:"op"`
	Node   int    `json:"node"`
	Parent int    `json:"parent,omitempty"`
	Ref    int    `json:"ref,omitempty"`
	Key    string `json:"key,omitempty"`
	Value  string `json:"value,omitempty"`
}

// String returns a compact description, e.g. "Move #4 into #1 before #2".
func (o Op) String() string {
	switch o.Kind {
	case OpInsert, OpMove:
		if o.Ref != 0 {
			return fmt.Sprintf("%s #%d into #%d before #%d", o.Kind, o.Node, o.Parent, o.Ref)
		}
		return fmt.Sprintf("%s #%d into #%d", o.Kind, o.Node, o.Parent)
	case OpRemove:
		return fmt.Sprintf("%s #%d from #%d", o.Kind, o.Node, o.Parent)
	case OpCreateElement, OpCreateText, OpCreateComment, OpSetText:
		return fmt.Sprintf("%s #%d %q", o.Kind, o.Node, o.Value)
	}
	return fmt.Sprintf("%s #%d %s=%q", o.Kind, o.Node, o.Key, o.Value)
}

// Count returns how many ops of kind are in ops.
func Count(ops []Op, kind OpKind) int {
	n := 0
	for _, o := range ops {
		if o.Kind == kind {
			n++
		}
	}
	return n
}
