// Package modloaders installs mod loaders into an instance. Fabric and
// Quilt are declarative installs driven by their metadata services;
// Forge and NeoForge run the vendor's installer processors. Every
// strategy produces the same artifact: a LoaderProfile persisted at the
// instance root for the launch command builder.
package modloaders

import (
	"fmt"

	"github.com/breraud/fastMC/resolver"
	"github.com/breraud/fastMC/structs"
)

// ModLoader is one installation strategy. Install does the whole job:
// fetch, process, persist, and hand back the resulting profile.
type ModLoader interface {
	Install() (*structs.LoaderProfile, error)
}

// InstallOptions carries everything a strategy needs. JavaPath is only
// consulted by the processor-driven loaders.
type InstallOptions struct {
	InstanceDir   string
	Layout        resolver.Layout
	GameVersion   string
	LoaderVersion string
	JavaPath      string
	Threads       int
}

// Install resolves the strategy for the requested loader and runs it.
// Vanilla is rejected up front since there is nothing to install.
func Install(loader structs.ModLoader, opts InstallOptions) (*structs.LoaderProfile, error) {
	switch loader {
	case structs.Vanilla:
		return nil, fmt.Errorf("vanilla is not an installable mod loader")
	case structs.Fabric:
		return Fabric{InstallOptions: opts}.Install()
	case structs.Quilt:
		return Quilt{InstallOptions: opts}.Install()
	case structs.Forge:
		if opts.JavaPath == "" {
			return nil, fmt.Errorf("a java runtime is required to install forge")
		}
		return Forge{InstallOptions: opts}.Install()
	case structs.NeoForge:
		if opts.JavaPath == "" {
			return nil, fmt.Errorf("a java runtime is required to install neoforge")
		}
		return NeoForge{InstallOptions: opts}.Install()
	default:
		return nil, fmt.Errorf("unknown mod loader %q", loader)
	}
}
