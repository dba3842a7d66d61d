// Package di wires the admission layer's components into a samber/do
// injector. The generic do functions (Provide, Invoke, MustInvoke) are
// called through the do package directly; only the container types are
// aliased here.
package di

import "github.com/samber/do/v2"

// Injector aliases the do container interface.
type Injector = do.Injector

// RootScope aliases the do root container.
type RootScope = do.RootScope

// New creates a root injector.
var New = do.New
