package modloaders

import (
	"github.com/breraud/fastMC/meta"
	"github.com/breraud/fastMC/structs"
)

// NeoForge shares the Forge installer format; only the download URL and
// the fallback maven differ.
type NeoForge struct {
	InstallOptions
}

func (s NeoForge) Install() (*structs.LoaderProfile, error) {
	installerUrl, jarName := meta.NeoForgeInstallerUrl(s.GameVersion, s.LoaderVersion)

	engine := installerEngine{
		opts:          s.InstallOptions,
		loaderName:    "neoforge",
		installerUrl:  installerUrl,
		jarName:       jarName,
		fallbackMaven: meta.NeoForgeMaven + "/releases/",
	}
	return engine.run()
}
