package vdom

// EventHandler binds a handler to an event name.
type EventHandler struct {
	Event   string // "click", "input", etc.
	Handler Handler
}

func event(name string, handler Handler) EventHandler {
	return EventHandler{Event: name, Handler: handler}
}

// On binds a handler to any event.
func On(name string, handler Handler) EventHandler { return event(name, handler) }

// OnClick handles click events.
func OnClick(handler Handler) EventHandler { return event("click", handler) }

// OnDblClick handles dblclick events.
func OnDblClick(handler Handler) EventHandler { return event("dblclick", handler) }

// OnInput handles input events.
func OnInput(handler Handler) EventHandler { return event("input", handler) }

// OnChange handles change events.
func OnChange(handler Handler) EventHandler { return event("change", handler) }

// OnSubmit handles submit events.
func OnSubmit(handler Handler) EventHandler { return event("submit", handler) }

// OnKeyDown handles keydown events.
func OnKeyDown(handler Handler) EventHandler { return event("keydown", handler) }

// OnFocus handles focus events.
func OnFocus(handler Handler) EventHandler { return event("focus", handler) }

// OnBlur handles blur events.
func OnBlur(handler Handler) EventHandler { return event("blur", handler) }

// Capture marks the handler as a capture-phase listener ("!click").
func Capture(h EventHandler) EventHandler {
	h.Event = "!" + h.Event
	return h
}
