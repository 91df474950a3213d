package app

import (
	"github.com/vectorlab/vectograph/internal/registry"
	"github.com/vectorlab/vectograph/nodes/mathops"
	"github.com/vectorlab/vectograph/nodes/textops"
	"github.com/vectorlab/vectograph/nodes/valueops"
	"github.com/vectorlab/vectograph/nodes/vectorops"
)

// coreModules is the builtin node set registered when the caller does not
// supply its own modules.
var coreModules = []registry.Module{
	&mathops.Module{},
	&textops.Module{},
	&valueops.Module{},
	&vectorops.Module{},
}
