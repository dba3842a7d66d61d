package errcode

import (
	"fmt"
	"sync"
)

// Registry guards against error code collisions between modules.
type Registry struct {
	mu    sync.RWMutex
	codes map[int]string // code -> module:reason
}

var globalRegistry = &Registry{codes: make(map[int]string)}

// Register records the error in the global registry and returns it, so
// definitions can be package-level vars:
//
//	var ErrRateLimited = errcode.Register(errcode.New(...))
//
// Registering the same code with a different reason panics at init time.
func Register(err *CodedError) *CodedError {
	return globalRegistry.Register(err)
}

// Register records the error code, panicking on conflicting reuse.
func (r *Registry) Register(err *CodedError) *CodedError {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := fmt.Sprintf("%s:%s", err.Module(), err.Reason())
	if existing, ok := r.codes[err.Code()]; ok {
		if existing != key {
			panic(fmt.Sprintf("error code conflict: %d registered as %s, cannot register as %s",
				err.Code(), existing, key))
		}
		return err
	}

	r.codes[err.Code()] = key
	return err
}

// Lookup returns the module:reason registered for a code.
func (r *Registry) Lookup(code int) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	key, ok := r.codes[code]
	return key, ok
}

// Count returns the number of registered codes.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.codes)
}
