package keys

import "github.com/gdamore/tcell/v2"

// Action represents a keybinding action.
type Action struct {
	Key         tcell.Key
	Rune        rune
	Description string
	Handler     func()
}

// Matches returns true if the event matches this action.
func (a *Action) Matches(ev *tcell.EventKey) bool {
	if a.Key != tcell.KeyRune {
		return ev.Key() == a.Key
	}
	return ev.Key() == tcell.KeyRune && ev.Rune() == a.Rune
}

type binding struct {
	name   string
	action *Action
}

// Registry holds keybindings per scope in registration order. View
// bindings shadow global ones.
type Registry struct {
	global []binding
	views  map[string][]binding
}

func NewRegistry() *Registry {
	return &Registry{views: make(map[string][]binding)}
}

// AddGlobal registers a global keybinding. Re-adding a name replaces it.
func (r *Registry) AddGlobal(name string, action *Action) {
	r.global = upsert(r.global, name, action)
}

// AddView registers a keybinding that is active only in view.
func (r *Registry) AddView(view, name string, action *Action) {
	r.views[view] = upsert(r.views[view], name, action)
}

func upsert(list []binding, name string, action *Action) []binding {
	for i, b := range list {
		if b.name == name {
			list[i].action = action
			return list
		}
	}
	return append(list, binding{name: name, action: action})
}

// Lookup returns the action ev triggers in view, or nil.
func (r *Registry) Lookup(view string, ev *tcell.EventKey) *Action {
	for _, b := range r.views[view] {
		if b.action.Matches(ev) {
			return b.action
		}
	}
	for _, b := range r.global {
		if b.action.Matches(ev) {
			return b.action
		}
	}
	return nil
}

// HandleEvent runs the action ev triggers in view and reports whether one
// matched.
func (r *Registry) HandleEvent(view string, ev *tcell.EventKey) bool {
	a := r.Lookup(view, ev)
	if a == nil {
		return false
	}
	a.Handler()
	return true
}
