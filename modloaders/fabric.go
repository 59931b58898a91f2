package modloaders

import (
	"fmt"

	"github.com/pterm/pterm"

	"github.com/breraud/fastMC/meta"
	"github.com/breraud/fastMC/structs"
)

type Fabric struct {
	InstallOptions
}

// Install fetches the Fabric profile for the (game, loader) pair,
// downloads its libraries and persists the normalized profile. Purely
// declarative, no external process runs.
func (s Fabric) Install() (*structs.LoaderProfile, error) {
	pterm.Info.Printfln("Installing fabric loader %s for minecraft %s", s.LoaderVersion, s.GameVersion)

	profile, err := meta.FetchFabricProfile(s.GameVersion, s.LoaderVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch fabric profile: %w", err)
	}

	if err := downloadProfileLibraries(s.Layout, profile.Libraries, s.Threads); err != nil {
		return nil, err
	}
	profile.Loader = structs.Fabric
	profile.LoaderVersion = s.LoaderVersion
	if err := SaveProfile(s.InstanceDir, &profile); err != nil {
		return nil, err
	}

	pterm.Success.Println("Fabric installed successfully")
	return &profile, nil
}
