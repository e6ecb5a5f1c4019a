package registry

import (
	"fmt"
	"sync"
)

// Installer registers a set of definitions into a registry.
type Installer func(*Registry) error

var (
	installMu  sync.Mutex
	installers []Installer

	defaultOnce sync.Once
	defaultReg  *Registry
)

// Install adds an installer for the default registry.
//
// Installers added before the first call to Default run when the default
// registry is built. Installers added afterwards run immediately.
// Packages providing built-in semantics call Install from init.
func Install(fn Installer) {
	installMu.Lock()
	defer installMu.Unlock()
	if defaultReg != nil {
		mustInstall(defaultReg, fn)
		return
	}
	installers = append(installers, fn)
}

// Default returns the process-wide registry, building it exactly once.
//
// An installer error is a programming error in the built-in definitions
// and panics.
func Default() *Registry {
	defaultOnce.Do(func() {
		installMu.Lock()
		defer installMu.Unlock()
		r := New()
		for _, fn := range installers {
			mustInstall(r, fn)
		}
		installers = nil
		defaultReg = r
	})
	return defaultReg
}

func mustInstall(r *Registry, fn Installer) {
	if err := fn(r); err != nil {
		panic(fmt.Sprintf("registry: install defaults: %v", err))
	}
}
