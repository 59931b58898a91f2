package modloaders

import (
	"fmt"

	"github.com/pterm/pterm"

	"github.com/breraud/fastMC/meta"
	"github.com/breraud/fastMC/structs"
)

// Quilt installs exactly like Fabric against the Quilt meta service.
type Quilt struct {
	InstallOptions
}

func (s Quilt) Install() (*structs.LoaderProfile, error) {
	pterm.Info.Printfln("Installing quilt loader %s for minecraft %s", s.LoaderVersion, s.GameVersion)

	profile, err := meta.FetchQuiltProfile(s.GameVersion, s.LoaderVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quilt profile: %w", err)
	}

	if err := downloadProfileLibraries(s.Layout, profile.Libraries, s.Threads); err != nil {
		return nil, err
	}
	profile.Loader = structs.Quilt
	profile.LoaderVersion = s.LoaderVersion
	if err := SaveProfile(s.InstanceDir, &profile); err != nil {
		return nil, err
	}

	pterm.Success.Println("Quilt installed successfully")
	return &profile, nil
}
