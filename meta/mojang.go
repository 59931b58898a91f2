package meta

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pterm/pterm"

	"github.com/breraud/fastMC/structs"
	"github.com/breraud/fastMC/util"
)

// manifestUrl is a var so tests can point it at a local server.
var manifestUrl = "https://piston-meta.mojang.com/mc/game/version_manifest_v2.json"

// ErrVersionNotFound is returned when the requested id has no entry in
// the global version manifest.
var ErrVersionNotFound = errors.New("version not found in manifest")

// FetchManifest downloads the global version manifest.
func FetchManifest() (structs.VersionManifest, error) {
	var manifest structs.VersionManifest
	if err := util.GetJSON(manifestUrl, &manifest); err != nil {
		return structs.VersionManifest{}, err
	}
	return manifest, nil
}

// ResolveVersion returns the metadata document for one version id,
// reading versions/<id>/<id>.json when cached. A cached copy that fails
// to parse is deleted and re-fetched, so the cache-hit path never
// surfaces decode errors.
func ResolveVersion(id string, versionsDir string) (structs.VersionMetadata, error) {
	cachePath := filepath.Join(versionsDir, id, id+".json")

	if data, err := os.ReadFile(cachePath); err == nil {
		var metadata structs.VersionMetadata
		if err := json.Unmarshal(data, &metadata); err == nil {
			return metadata, nil
		}
		pterm.Warning.Printfln("Cached metadata for %s is corrupt, re-fetching", id)
		_ = os.Remove(cachePath)
	}

	return fetchVersion(id, cachePath)
}

func fetchVersion(id string, cachePath string) (structs.VersionMetadata, error) {
	manifest, err := FetchManifest()
	if err != nil {
		return structs.VersionMetadata{}, err
	}

	var descriptor structs.VersionDescriptor
	for _, v := range manifest.Versions {
		if v.Id == id {
			descriptor = v
			break
		}
	}
	if descriptor.Url == "" {
		return structs.VersionMetadata{}, fmt.Errorf("%w: %s", ErrVersionNotFound, id)
	}

	body, err := util.DoGet(descriptor.Url)
	if err != nil {
		return structs.VersionMetadata{}, err
	}

	// Persist verbatim, then parse the same bytes.
	if err := os.MkdirAll(filepath.Dir(cachePath), 0755); err != nil {
		return structs.VersionMetadata{}, err
	}
	if err := os.WriteFile(cachePath, body, 0644); err != nil {
		return structs.VersionMetadata{}, err
	}

	var metadata structs.VersionMetadata
	if err := json.Unmarshal(body, &metadata); err != nil {
		return structs.VersionMetadata{}, fmt.Errorf("failed to parse metadata for %s: %s", id, err.Error())
	}
	return metadata, nil
}
