package structs

import "encoding/json"

type ModLoader string

const (
	Vanilla  ModLoader = "vanilla"
	Fabric   ModLoader = "fabric"
	Quilt    ModLoader = "quilt"
	Forge    ModLoader = "forge"
	NeoForge ModLoader = "neoforge"
)

// LoaderProfile is the normalized result every loader installation
// strategy produces. It is written to loader_profile.json at the instance
// root and consumed unmodified by the launch command builder.
type LoaderProfile struct {
	Loader        ModLoader       `json:"loader"`
	LoaderVersion string          `json:"loaderVersion"`
	MainClass     string          `json:"mainClass"`
	Libraries     []LoaderLibrary `json:"libraries"`
	JvmArgs       []string        `json:"jvmArgs"`
	GameArgs      []string        `json:"gameArgs"`
}

type LoaderLibrary struct {
	Name string `json:"name"`
	Url  string `json:"url,omitempty"`
}

// ForgeInstallProfile is parsed out of a Forge or NeoForge installer
// archive (install_profile.json). Only used during installation.
type ForgeInstallProfile struct {
	Minecraft  string                `json:"minecraft,omitempty"`
	Data       map[string]SidedValue `json:"data"`
	Processors []ForgeProcessor      `json:"processors"`
	Libraries  []LibraryEntry        `json:"libraries"`
}

type SidedValue struct {
	Client string `json:"client"`
	Server string `json:"server"`
}

// ForgeProcessor describes one external patching step. List order is
// execution order: later processors consume files written by earlier ones.
type ForgeProcessor struct {
	Jar       string   `json:"jar"`
	Classpath []string `json:"classpath"`
	Args      []string `json:"args"`
	Sides     []string `json:"sides,omitempty"`
}

// ForgeVersionDoc is the installer's embedded version.json. Arguments is
// kept raw because entries can be plain strings or rule objects; only the
// string entries are consumed.
type ForgeVersionDoc struct {
	Id        string          `json:"id"`
	MainClass string          `json:"mainClass"`
	Libraries []LibraryEntry  `json:"libraries"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}
