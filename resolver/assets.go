package resolver

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/breraud/fastMC/structs"
	"github.com/breraud/fastMC/util"
	"github.com/pterm/pterm"
)

// resourcesDownloadUrl is a var so tests can point the resolver at a
// local server.
var resourcesDownloadUrl = "https://resources.download.minecraft.net"

// ResolveAssets brings the content-addressed asset store up to date for
// the version's asset index and returns the assets directory the game
// should be pointed at. For virtual indexes that is the materialized
// legacy tree rather than the object store.
//
// Individual object downloads that fail are logged and skipped; one
// broken asset should not abort a launch.
func ResolveAssets(layout Layout, meta *structs.VersionMetadata, gameDir string, threads int) (string, error) {
	index, err := loadAssetIndex(layout, meta)
	if err != nil {
		return "", err
	}

	var missing []structs.File
	for _, object := range index.Objects {
		if util.PathExists(layout.ObjectPath(object.Hash)) {
			continue
		}
		missing = append(missing, structs.File{
			Name:     object.Hash,
			Path:     object.Hash[:2],
			Url:      fmt.Sprintf("%s/%s/%s", resourcesDownloadUrl, object.Hash[:2], object.Hash),
			Hash:     object.Hash,
			HashType: "sha1",
		})
	}

	if len(missing) > 0 {
		pterm.Info.Printfln("Fetching %d assets", len(missing))
		failed := util.DownloadAll(layout.AssetObjectsDir(), threads, missing)
		for _, f := range failed {
			pterm.Warning.Printfln("Skipping asset %s: %s", f.File.Name, f.Err.Error())
		}
	}

	assetsDir := layout.AssetsDir()

	// Pre-1.7 indexes expect assets laid out by name instead of hash.
	// mapToResources materializes them into the game dir, virtual into
	// a legacy tree that then becomes the assets dir itself.
	if index.MapToResources {
		resourcesDir := filepath.Join(gameDir, "resources")
		if err := materializeByName(layout, index, resourcesDir); err != nil {
			return "", err
		}
		if err := mirrorIcons(resourcesDir, filepath.Join(assetsDir, "icons")); err != nil {
			return "", err
		}
	}
	if index.Virtual {
		virtualDir := layout.VirtualAssetsDir()
		if err := materializeByName(layout, index, virtualDir); err != nil {
			return "", err
		}
		resourcesDir := filepath.Join(gameDir, "resources")
		if err := mirrorIcons(resourcesDir, filepath.Join(virtualDir, "icons")); err != nil {
			return "", err
		}
		assetsDir = virtualDir
	}

	return assetsDir, nil
}

// loadAssetIndex reads the cached index document or fetches and caches
// it first.
func loadAssetIndex(layout Layout, meta *structs.VersionMetadata) (*structs.AssetIndex, error) {
	indexId := meta.AssetIndex.Id
	if indexId == "" {
		indexId = meta.Assets
	}
	indexPath := filepath.Join(layout.AssetIndexesDir(), indexId+".json")

	if !util.PathExists(indexPath) {
		if meta.AssetIndex.Url == "" {
			return nil, fmt.Errorf("version %s has no asset index url", meta.Id)
		}
		dl := util.NewDownload(indexPath, meta.AssetIndex.Url)
		if meta.AssetIndex.Sha1 != "" {
			dl.SetChecksum("sha1", meta.AssetIndex.Sha1, true)
		}
		if err := dl.Do(); err != nil {
			return nil, fmt.Errorf("failed to fetch asset index %s: %w", indexId, err)
		}
	}

	body, err := os.ReadFile(indexPath)
	if err != nil {
		return nil, err
	}
	var index structs.AssetIndex
	if err := json.Unmarshal(body, &index); err != nil {
		return nil, fmt.Errorf("failed to parse asset index %s: %w", indexId, err)
	}
	return &index, nil
}

// materializeByName copies each present object from the store to
// destDir under its index name. Objects missing from the store (failed
// downloads) are skipped.
func materializeByName(layout Layout, index *structs.AssetIndex, destDir string) error {
	for name, object := range index.Objects {
		source := layout.ObjectPath(object.Hash)
		if !util.PathExists(source) {
			continue
		}
		dest := filepath.Join(destDir, filepath.FromSlash(name))
		if util.PathExists(dest) {
			continue
		}
		if err := util.CopyFile(source, dest); err != nil {
			return fmt.Errorf("failed to materialize asset %s: %w", name, err)
		}
	}
	return nil
}

// mirrorIcons duplicates resources/icons into the given directory. Some
// legacy clients resolve icons relative to the assets root instead of
// the resources tree.
func mirrorIcons(resourcesDir string, destDir string) error {
	iconsDir := filepath.Join(resourcesDir, "icons")
	if !util.PathExists(iconsDir) {
		return nil
	}
	return util.CopyDir(iconsDir, destDir)
}
