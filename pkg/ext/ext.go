// Package ext installs the built-in dice notation semantics.
//
// The semantics live in sub-packages grouped by category:
//   - extmath   – + - * x / % ^
//   - extdice   – d dF d% and exploding dice !
//   - extkeep   – kh kl k> k<
//   - extreroll – rh rl r> r< r!> r!<
//   - extlist   – ( ) [ ] { }
//   - extdnd5e  – adv dis dc wm
//
// Importing this package installs everything into the default registry:
//
//	import _ "github.com/sandrolain/godice/pkg/ext"
//
// # Integration – a custom registry
//
//	reg := registry.New()
//	if err := ext.InstallAll(reg); err != nil {
//	    log.Fatal(err)
//	}
//	tree, err := parser.Parse("4d6kh3", parser.WithRegistry(reg))
//
// # Integration – by category
//
//	reg := registry.New()
//	err := ext.Install(reg, extmath.Install, extdice.Install)
package ext

import (
	"github.com/sandrolain/godice/pkg/ext/extdice"
	"github.com/sandrolain/godice/pkg/ext/extdnd5e"
	"github.com/sandrolain/godice/pkg/ext/extkeep"
	"github.com/sandrolain/godice/pkg/ext/extlist"
	"github.com/sandrolain/godice/pkg/ext/extmath"
	"github.com/sandrolain/godice/pkg/ext/extreroll"
	"github.com/sandrolain/godice/pkg/registry"
)

func init() {
	registry.Install(func(r *registry.Registry) error {
		return InstallAll(r)
	})
}

// Install runs the given installers against reg, stopping at the first error.
func Install(reg *registry.Registry, installers ...registry.Installer) error {
	for _, install := range installers {
		if err := install(reg); err != nil {
			return err
		}
	}
	return nil
}

// InstallAll registers every built-in operator and group into reg.
// Options are passed to the dnd5e operators.
func InstallAll(reg *registry.Registry, opts ...extdnd5e.Option) error {
	return Install(reg,
		extlist.Install,
		extmath.Install,
		extdice.Install,
		extkeep.Install,
		extreroll.Install,
		func(r *registry.Registry) error { return extdnd5e.Install(r, opts...) },
	)
}

// NewRegistry returns a registry holding every built-in definition.
func NewRegistry(opts ...extdnd5e.Option) (*registry.Registry, error) {
	reg := registry.New()
	if err := InstallAll(reg, opts...); err != nil {
		return nil, err
	}
	return reg, nil
}
