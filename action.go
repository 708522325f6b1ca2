// FILE: lixenwraith/proptree/action.go
package proptree

// Action is a leaf wrapping a zero-argument callback.
type Action struct {
	node
	fn func()
}

// NewAction creates an action leaf. fn may be nil.
func NewAction(name string, fn func()) *Action {
	a := &Action{fn: fn}
	a.init(name, a)
	return a
}

// Execute runs the callback, if any, and always fires updated.
func (a *Action) Execute() {
	if a.fn != nil {
		a.fn()
	}
	a.raiseUpdated()
}

// Func returns the wrapped callback.
func (a *Action) Func() func() {
	return a.fn
}

func (a *Action) duplicate(name string) (Property, error) {
	return NewAction(name, a.fn), nil
}
