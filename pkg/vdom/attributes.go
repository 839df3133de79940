package vdom

import (
	"fmt"
	"strings"
)

// Attr represents a single attribute. The keys "key", "class", "style"
// and "ref" are routed to the matching VNodeData fields.
type Attr struct {
	Key   string
	Value any
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}

// Prop sets a backend property instead of an attribute (value, checked,
// textContent).
type Prop struct {
	Key   string
	Value any
}

// attr creates an Attr with the given key and value.
func attr(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// AttrOf sets an arbitrary attribute.
func AttrOf(key string, value any) Attr { return attr(key, value) }

// Key creates a key attribute for reconciliation.
// The key is converted to a string using fmt.Sprintf.
func Key(key any) Attr {
	return attr("key", fmt.Sprintf("%v", key))
}

// Ref registers the element (or component instance) on the owning
// component's refs.
func Ref(name string) Attr { return attr("ref", name) }

// ID sets the id attribute.
func ID(id string) Attr { return attr("id", id) }

// Class sets the class binding, joining multiple classes with spaces.
func Class(classes ...string) Attr { return attr("class", strings.Join(classes, " ")) }

// Classes sets a dynamic class binding.
// Accepts string, []string, []any and map[string]bool.
func Classes(classes ...any) Attr {
	return attr("class", classes)
}

// ClassIf adds a class conditionally.
func ClassIf(condition bool, class string) Attr {
	if condition {
		return attr("class", class)
	}
	return Attr{} // Empty attr, will be ignored
}

// StyleAttr sets the style binding. style is a CSS declaration string or
// a map[string]string.
func StyleAttr(style any) Attr { return attr("style", style) }

// Data creates a data-* attribute.
// Example: Data("id", "123") → data-id="123"
func Data(key, value string) Attr { return attr("data-"+key, value) }

// Href sets the href attribute.
func Href(url string) Attr { return attr("href", url) }

// Name sets the name attribute.
func Name(name string) Attr { return attr("name", name) }

// Type sets the type attribute.
func Type(t string) Attr { return attr("type", t) }

// Placeholder sets the placeholder attribute.
func Placeholder(text string) Attr { return attr("placeholder", text) }

// Disabled sets the disabled attribute.
func Disabled(disabled bool) Attr { return attr("disabled", disabled) }

// Hidden sets the hidden attribute.
func Hidden() Attr { return attr("hidden", true) }

// Role sets the role attribute.
func Role(role string) Attr { return attr("role", role) }

// AriaLabel sets the aria-label attribute.
func AriaLabel(label string) Attr { return attr("aria-label", label) }

// AttrIf adds any attribute conditionally.
func AttrIf(condition bool, a Attr) Attr {
	if condition {
		return a
	}
	return Attr{}
}

// Value sets the value property.
func Value(value any) Prop { return Prop{Key: "value", Value: value} }

// Checked sets the checked property.
func Checked(checked bool) Prop { return Prop{Key: "checked", Value: checked} }

// TextContent sets the textContent property, replacing the children.
func TextContent(text string) Prop { return Prop{Key: "textContent", Value: text} }

// InnerHTML sets the innerHTML property, replacing the children.
// Use with caution - can lead to XSS if content is user-provided.
func InnerHTML(html string) Prop { return Prop{Key: "innerHTML", Value: html} }

func toString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
