package modloaders

import (
	"fmt"
	"path/filepath"

	"github.com/breraud/fastMC/resolver"
	"github.com/breraud/fastMC/structs"
	"github.com/breraud/fastMC/util"
)

const profileFileName = "loader_profile.json"

// ProfilePath is where an instance's loader profile lives: at the
// instance root, one level above the game directory.
func ProfilePath(instanceDir string) string {
	return filepath.Join(instanceDir, profileFileName)
}

func SaveProfile(instanceDir string, profile *structs.LoaderProfile) error {
	if err := util.WriteJSON(ProfilePath(instanceDir), profile); err != nil {
		return fmt.Errorf("failed to persist loader profile: %w", err)
	}
	return nil
}

func LoadProfile(instanceDir string) (*structs.LoaderProfile, error) {
	var profile structs.LoaderProfile
	if err := util.ReadJSON(ProfilePath(instanceDir), &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// ReusableProfile loads the persisted profile and reports whether it
// satisfies the requested loader. A profile from a different loader, or
// from a different pinned version, must not be reused: a stale Forge
// profile would otherwise launch under a fabric flag. An empty requested
// version accepts whatever version was installed. Profiles written
// before the loader identity was recorded carry none and never match.
func ReusableProfile(instanceDir string, loader structs.ModLoader, loaderVersion string) (*structs.LoaderProfile, bool) {
	if !util.PathExists(ProfilePath(instanceDir)) {
		return nil, false
	}
	profile, err := LoadProfile(instanceDir)
	if err != nil {
		return nil, false
	}
	if profile.Loader != loader {
		return nil, false
	}
	if loaderVersion != "" && profile.LoaderVersion != loaderVersion {
		return nil, false
	}
	return profile, true
}

// LibraryPaths maps a profile's libraries to their on-disk locations
// under the shared libraries directory, in profile order.
func LibraryPaths(layout resolver.Layout, profile *structs.LoaderProfile) ([]string, error) {
	var paths []string
	for _, lib := range profile.Libraries {
		relPath, err := util.MavenToPath(lib.Name)
		if err != nil {
			return nil, fmt.Errorf("invalid library coordinate %s: %w", lib.Name, err)
		}
		paths = append(paths, filepath.Join(layout.LibrariesDir(), filepath.FromSlash(relPath)))
	}
	return paths, nil
}

// downloadProfileLibraries fetches every profile library not already on
// disk into the shared libraries directory. Paths derive from the Maven
// coordinate; the base URL is the library's own or the loader's default.
func downloadProfileLibraries(layout resolver.Layout, libraries []structs.LoaderLibrary, threads int) error {
	var missing []structs.File

	for _, lib := range libraries {
		relPath, err := util.MavenToPath(lib.Name)
		if err != nil {
			return fmt.Errorf("invalid library coordinate %s: %w", lib.Name, err)
		}

		fullPath := filepath.Join(layout.LibrariesDir(), filepath.FromSlash(relPath))
		if util.PathExists(fullPath) {
			continue
		}

		missing = append(missing, structs.File{
			Name: filepath.Base(filepath.FromSlash(relPath)),
			Path: filepath.Dir(filepath.FromSlash(relPath)),
			Url:  joinMaven(lib.Url, relPath),
		})
	}

	if len(missing) == 0 {
		return nil
	}
	if failed := util.DownloadAll(layout.LibrariesDir(), threads, missing); len(failed) > 0 {
		return fmt.Errorf("failed to download %d loader libraries: %w", len(failed), failed[0].Err)
	}
	return nil
}

func joinMaven(baseUrl string, relPath string) string {
	if baseUrl == "" {
		return relPath
	}
	if baseUrl[len(baseUrl)-1] == '/' {
		return baseUrl + relPath
	}
	return baseUrl + "/" + relPath
}
