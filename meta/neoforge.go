package meta

import (
	"fmt"
	"strings"

	semVer "github.com/hashicorp/go-version"

	"github.com/breraud/fastMC/util"
)

const (
	// NeoForgeMaven is the vendor repository; releases live under /releases.
	NeoForgeMaven = "https://maven.neoforged.net"

	neoForgeVersionsApi = "https://maven.neoforged.net/api/maven/versions/releases/net/neoforged/neoforge"
)

// FetchNeoForgeVersions lists the NeoForge builds for a game version,
// newest first. NeoForge drops the leading "1." of the game version:
// MC 1.21.4 maps to the "21.4." build prefix.
func FetchNeoForgeVersions(gameVersion string) ([]string, error) {
	var listing struct {
		Versions []string `json:"versions"`
	}
	if err := util.GetJSON(neoForgeVersionsApi, &listing); err != nil {
		return nil, fmt.Errorf("failed to fetch neoforge versions: %w", err)
	}

	prefix := strings.TrimPrefix(gameVersion, "1.") + "."
	var versions []string
	for _, v := range listing.Versions {
		if strings.HasPrefix(v, prefix) {
			versions = append(versions, v)
		}
	}

	// The listing is oldest first.
	for i, j := 0, len(versions)-1; i < j; i, j = i+1, j-1 {
		versions[i], versions[j] = versions[j], versions[i]
	}
	return versions, nil
}

// NeoForgeInstallerUrl builds the installer download URL. Builds for
// 1.20.1 and earlier predate the package split and still live under the
// forge coordinates with the game version in the name.
func NeoForgeInstallerUrl(gameVersion string, neoVersion string) (string, string) {
	afterSplit := true
	if mcVer, err := semVer.NewVersion(gameVersion); err == nil {
		afterSplit = mcVer.GreaterThanOrEqual(semVer.Must(semVer.NewVersion("1.20.2")))
	}

	if !afterSplit {
		jarName := fmt.Sprintf("forge-%s-%s-installer.jar", gameVersion, neoVersion)
		url := fmt.Sprintf("%s/releases/net/neoforged/forge/%s-%s/%s", NeoForgeMaven, gameVersion, neoVersion, jarName)
		return url, jarName
	}

	jarName := fmt.Sprintf("neoforge-%s-installer.jar", neoVersion)
	url := fmt.Sprintf("%s/releases/net/neoforged/neoforge/%s/%s", NeoForgeMaven, neoVersion, jarName)
	return url, jarName
}
