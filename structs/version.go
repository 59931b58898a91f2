package structs

// VersionDescriptor is a single entry in the global version manifest.
type VersionDescriptor struct {
	Id  string `json:"id"`
	Url string `json:"url"`
}

type LatestVersions struct {
	Release  string `json:"release"`
	Snapshot string `json:"snapshot"`
}

type VersionManifest struct {
	Latest   LatestVersions      `json:"latest"`
	Versions []VersionDescriptor `json:"versions"`
}

// VersionMetadata describes one playable game version. It is persisted
// verbatim under versions/<id>/<id>.json and re-fetched when the cached
// copy fails to parse.
type VersionMetadata struct {
	Id         string           `json:"id"`
	MainClass  string           `json:"mainClass"`
	Libraries  []LibraryEntry   `json:"libraries"`
	Downloads  VersionDownloads `json:"downloads"`
	AssetIndex AssetIndexRef    `json:"assetIndex"`
	Assets     string           `json:"assets,omitempty"`
}

type VersionDownloads struct {
	Client Artifact `json:"client"`
}

type Artifact struct {
	Url  string `json:"url"`
	Path string `json:"path,omitempty"`
	Sha1 string `json:"sha1,omitempty"`
	Size int64  `json:"size,omitempty"`
}

// LibraryEntry either carries a direct artifact descriptor or must be
// resolved by deriving a path from its maven coordinate. Classifiers hold
// platform specific native bundles, keyed by natives-<os> identifiers.
type LibraryEntry struct {
	Name      string           `json:"name"`
	Downloads LibraryDownloads `json:"downloads,omitempty"`
}

type LibraryDownloads struct {
	Artifact    *Artifact           `json:"artifact,omitempty"`
	Classifiers map[string]Artifact `json:"classifiers,omitempty"`
}

type AssetIndexRef struct {
	Id   string `json:"id"`
	Url  string `json:"url"`
	Sha1 string `json:"sha1,omitempty"`
}

// AssetIndex maps human readable asset names onto content addressed
// objects. Each object is stored at objects/<hash[:2]>/<hash>.
type AssetIndex struct {
	MapToResources bool                   `json:"map_to_resources,omitempty"`
	Virtual        bool                   `json:"virtual,omitempty"`
	Objects        map[string]AssetObject `json:"objects"`
}

type AssetObject struct {
	Hash string `json:"hash"`
	Size int64  `json:"size"`
}
