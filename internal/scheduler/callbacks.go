package scheduler

import "fmt"

// CallbackKind enumerates the lifecycle points a caller (or the state store)
// may subscribe to. Invocation order within a kind is registration order.
type CallbackKind string

const (
	CallbackOnEnable   CallbackKind = "onenable"
	CallbackOnDisable  CallbackKind = "ondisable"
	CallbackOnComplete CallbackKind = "oncomplete"
)

// RegisterCallback appends a handler for the given lifecycle point.
func (j *Job) RegisterCallback(kind CallbackKind, fn func(*Job)) {
	j.mu.Lock()
	if j.callbacks == nil {
		j.callbacks = make(map[CallbackKind][]func(*Job))
	}
	j.callbacks[kind] = append(j.callbacks[kind], fn)
	j.mu.Unlock()
}

// fireCallbacks invokes every handler registered for kind, swallowing and
// logging panics/errors so a broken callback never aborts the run.
func (j *Job) fireCallbacks(kind CallbackKind) {
	j.mu.Lock()
	handlers := append([]func(*Job){}, j.callbacks[kind]...)
	j.mu.Unlock()

	for _, h := range handlers {
		j.invokeCallback(kind, h)
	}
}

func (j *Job) invokeCallback(kind CallbackKind, h func(*Job)) {
	defer func() {
		if r := recover(); r != nil {
			j.log().Printf("%v", &CallbackError{Kind: kind, Err: fmt.Errorf("%v", r)})
		}
	}()
	h(j)
}
