package resolver

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/breraud/fastMC/structs"
	"github.com/breraud/fastMC/util"
	"github.com/pterm/pterm"
)

const mojangLibrariesUrl = "https://libraries.minecraft.net/"

// ResolveClasspath ensures every library of the version plus the client
// jar is on disk and returns their absolute paths in classpath order,
// client jar last. Caching is presence-based: an existing file is never
// re-downloaded or re-hashed.
func ResolveClasspath(layout Layout, meta *structs.VersionMetadata, threads int) ([]string, error) {
	var classpath []string
	var missing []structs.File

	for _, lib := range meta.Libraries {
		relPath, url, sha1, err := libraryLocation(lib)
		if err != nil {
			return nil, err
		}
		if relPath == "" {
			// Natives-only entry, handled by ResolveNatives.
			continue
		}

		fullPath := filepath.Join(layout.LibrariesDir(), filepath.FromSlash(relPath))
		classpath = append(classpath, fullPath)
		if util.PathExists(fullPath) {
			continue
		}

		missing = append(missing, structs.File{
			Name:     filepath.Base(filepath.FromSlash(relPath)),
			Path:     filepath.Dir(filepath.FromSlash(relPath)),
			Url:      url,
			Hash:     sha1,
			HashType: "sha1",
		})
	}

	if len(missing) > 0 {
		pterm.Info.Printfln("Fetching %d libraries", len(missing))
		if failed := util.DownloadAll(layout.LibrariesDir(), threads, missing); len(failed) > 0 {
			return nil, fmt.Errorf("failed to download %d libraries: %w", len(failed), failed[0].Err)
		}
	}

	clientJar := layout.ClientJar(meta.Id)
	if !util.PathExists(clientJar) {
		client := meta.Downloads.Client
		if client.Url == "" {
			return nil, fmt.Errorf("version %s has no client download", meta.Id)
		}
		failed := util.DownloadAll(layout.VersionDir(meta.Id), 1, []structs.File{{
			Name:     meta.Id + ".jar",
			Url:      client.Url,
			Hash:     client.Sha1,
			HashType: "sha1",
		}})
		if len(failed) > 0 {
			return nil, fmt.Errorf("failed to download client jar: %w", failed[0].Err)
		}
	}
	classpath = append(classpath, clientJar)

	return classpath, nil
}

// libraryLocation works out where a library lives relative to the
// libraries dir and where to fetch it from. Entries without a direct
// artifact fall back to Maven-path derivation against Mojang's mirror.
func libraryLocation(lib structs.LibraryEntry) (string, string, string, error) {
	if artifact := lib.Downloads.Artifact; artifact != nil {
		relPath := artifact.Path
		if relPath == "" {
			derived, err := util.MavenToPath(lib.Name)
			if err != nil {
				return "", "", "", fmt.Errorf("library %s has no path: %w", lib.Name, err)
			}
			relPath = derived
		}
		return relPath, artifact.Url, artifact.Sha1, nil
	}

	if len(lib.Downloads.Classifiers) > 0 {
		return "", "", "", nil
	}

	relPath, err := util.MavenToPath(lib.Name)
	if err != nil {
		return "", "", "", fmt.Errorf("cannot resolve library %s: %w", lib.Name, err)
	}
	return relPath, mojangLibrariesUrl + relPath, "", nil
}

// nativeClassifier is the platform key used by version metadata to mark
// native library variants.
func nativeClassifier() string {
	switch runtime.GOOS {
	case "windows":
		return "natives-windows"
	case "darwin":
		return "natives-macos"
	default:
		return "natives-linux"
	}
}
