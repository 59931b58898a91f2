package meta

import (
	"fmt"

	"github.com/breraud/fastMC/structs"
	"github.com/breraud/fastMC/util"
)

const (
	quiltMeta = "https://meta.quiltmc.org/v3"

	// QuiltMaven is the default base URL for profile libraries that omit one.
	QuiltMaven = "https://maven.quiltmc.org/repository/release/"
)

// FetchQuiltLoaders lists the available Quilt loader versions, newest first.
func FetchQuiltLoaders() ([]LoaderVersion, error) {
	var loaders []LoaderVersion
	if err := util.GetJSON(quiltMeta+"/versions/loader", &loaders); err != nil {
		return nil, err
	}
	return loaders, nil
}

// FetchQuiltProfile fetches the launch profile for a (gameVersion,
// loaderVersion) pair and normalizes it.
func FetchQuiltProfile(gameVersion string, loaderVersion string) (structs.LoaderProfile, error) {
	url := fmt.Sprintf("%s/versions/loader/%s/%s/profile/json", quiltMeta, gameVersion, loaderVersion)
	body, err := util.DoGet(url)
	if err != nil {
		return structs.LoaderProfile{}, fmt.Errorf("failed to fetch quilt profile: %w", err)
	}
	return parseLoaderProfile(body, QuiltMaven)
}
