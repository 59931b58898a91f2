package structs

// InstanceMetadata is read from instance.json at the instance root. The
// launch core only consumes it; absent override fields mean "inherit the
// global default".
type InstanceMetadata struct {
	Id          string    `json:"id"`
	Name        string    `json:"name"`
	GameVersion string    `json:"game_version"`
	Loader      ModLoader `json:"loader"`

	LoaderVersion string `json:"loader_version,omitempty"`

	// Java overrides
	JavaPath     string   `json:"java_path,omitempty"`
	MinMemoryMb  int      `json:"min_memory_mb,omitempty"`
	MaxMemoryMb  int      `json:"max_memory_mb,omitempty"`
	JvmArgs      []string `json:"jvm_args,omitempty"`
	AutoDiscover *bool    `json:"auto_discover,omitempty"`

	LoaderInstalled bool `json:"loader_installed,omitempty"`
}
