package meta

import (
	"fmt"

	"github.com/breraud/fastMC/structs"
	"github.com/breraud/fastMC/util"
)

const (
	fabricMeta = "https://meta.fabricmc.net"

	// FabricMaven is the default base URL for profile libraries that omit one.
	FabricMaven = "https://maven.fabricmc.net/"
)

// LoaderVersion is one entry of a Fabric or Quilt loader listing.
type LoaderVersion struct {
	Version string `json:"version"`
	Stable  bool   `json:"stable"`
}

// FetchFabricLoaders lists the loader versions compatible with a game
// version, newest first.
func FetchFabricLoaders(gameVersion string) ([]LoaderVersion, error) {
	var entries []struct {
		Loader LoaderVersion `json:"loader"`
	}
	url := fmt.Sprintf("%s/v2/versions/loader/%s", fabricMeta, gameVersion)
	if err := util.GetJSON(url, &entries); err != nil {
		return nil, err
	}
	loaders := make([]LoaderVersion, 0, len(entries))
	for _, e := range entries {
		loaders = append(loaders, e.Loader)
	}
	return loaders, nil
}

// FetchFabricProfile fetches the launch profile for a (gameVersion,
// loaderVersion) pair and normalizes it.
func FetchFabricProfile(gameVersion string, loaderVersion string) (structs.LoaderProfile, error) {
	url := fmt.Sprintf("%s/v2/versions/loader/%s/%s/profile/json", fabricMeta, gameVersion, loaderVersion)
	body, err := util.DoGet(url)
	if err != nil {
		return structs.LoaderProfile{}, fmt.Errorf("failed to fetch fabric profile: %w", err)
	}
	return parseLoaderProfile(body, FabricMaven)
}
