package vcmp

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps component names to constructor hooks.
//
// Hooks are registered explicitly by the host application, once per
// component name. A name without a hook is not an error; its instances are
// simply marked constructed.
//
//	reg := vcmp.NewRegistry()
//	reg.Hook("card", initCard).Hook("chart", initChart)
//	exp := vcmp.New(fetcher, vcmp.WithHooks(reg))
type Registry struct {
	mu    sync.RWMutex
	hooks map[string]Hook
}

// NewRegistry creates an empty hook registry.
func NewRegistry() *Registry {
	return &Registry{hooks: make(map[string]Hook)}
}

// Hook registers fn as the constructor for component name.
// Panics on an empty name, a nil hook, or a second hook for the same name.
func (reg *Registry) Hook(name string, fn Hook) *Registry {
	if name == "" {
		panic("vcmp: hook registered with empty component name")
	}
	if fn == nil {
		panic(fmt.Sprintf("vcmp: nil hook for %q", name))
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, exists := reg.hooks[name]; exists {
		panic(fmt.Sprintf("vcmp: hook collision for %q", name))
	}
	reg.hooks[name] = fn
	return reg
}

// Add registers every hook in hooks. See Hook.
func (reg *Registry) Add(hooks map[string]Hook) *Registry {
	names := make([]string, 0, len(hooks))
	for name := range hooks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		reg.Hook(name, hooks[name])
	}
	return reg
}

// Lookup returns the hook for name, if any.
func (reg *Registry) Lookup(name string) (Hook, bool) {
	if reg == nil {
		return nil, false
	}
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	fn, ok := reg.hooks[name]
	return fn, ok
}

// Names returns the registered component names, sorted.
func (reg *Registry) Names() []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	names := make([]string, 0, len(reg.hooks))
	for name := range reg.hooks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
