package livesync

import (
	"encoding/json"
	"math"

	"github.com/vango-dev/patchwork/pkg/memdom"
	"github.com/vango-dev/patchwork/pkg/vdom"
)

// Message types.
const (
	TypeSnapshot = "snapshot"
	TypeOps      = "ops"
	TypeError    = "error"
	TypePong     = "pong"

	TypeSet      = "set"
	TypeDispatch = "dispatch"
	TypeResync   = "resync"
	TypePing     = "ping"
)

// Message is one websocket frame in either direction.
type Message struct {
	Type string `json:"type"`
	Seq  uint64 `json:"seq,omitempty"`

	// snapshot
	HTML string `json:"html,omitempty"`
	Tree *Node  `json:"tree,omitempty"`

	// ops
	Ops []memdom.Op `json:"ops,omitempty"`

	// set, dispatch
	Key   string          `json:"key,omitempty"`
	Value json.RawMessage `json:"value,omitempty"`
	Node  int             `json:"node,omitempty"`
	Event string          `json:"event,omitempty"`

	// error
	Error string `json:"error,omitempty"`
}

// Node is the wire form of a memdom node.
type Node struct {
	ID       int               `json:"id"`
	Type     vdom.NodeType     `json:"type"`
	Tag      string            `json:"tag,omitempty"`
	Data     string            `json:"data,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Children []*Node           `json:"children,omitempty"`
}

func toWire(n *memdom.Node) *Node {
	if n == nil {
		return nil
	}
	w := &Node{ID: n.ID, Type: n.Type, Tag: n.Tag, Data: n.Data}
	if len(n.Attrs) > 0 {
		w.Attrs = make(map[string]string, len(n.Attrs))
		for k, v := range n.Attrs {
			w.Attrs[k] = v
		}
	}
	for _, c := range n.Children() {
		w.Children = append(w.Children, toWire(c))
	}
	return w
}

// decodeValue unmarshals a JSON value; integral numbers become int so they
// compare equal to the ints components usually hold.
func decodeValue(raw json.RawMessage) (any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	if f, ok := v.(float64); ok && f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return int(f), nil
	}
	return v, nil
}
