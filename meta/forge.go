package meta

import (
	"fmt"
	"sort"
	"strings"

	semVer "github.com/hashicorp/go-version"

	"github.com/breraud/fastMC/util"
)

const (
	// ForgeMaven is the vendor repository used as the library fallback host.
	ForgeMaven = "https://maven.minecraftforge.net"

	forgePromotions = "https://files.minecraftforge.net/net/minecraftforge/forge/promotions_slim.json"
	forgeMetadata   = "https://maven.minecraftforge.net/net/minecraftforge/forge/maven-metadata.xml"
)

// FetchForgeVersions lists the Forge versions available for a game
// version: promoted builds first (labelled recommended/latest), then the
// remaining builds from the maven metadata, newest first.
func FetchForgeVersions(gameVersion string) ([]string, error) {
	var promotions struct {
		Promos map[string]string `json:"promos"`
	}
	if err := util.GetJSON(forgePromotions, &promotions); err != nil {
		return nil, fmt.Errorf("failed to fetch forge promotions: %w", err)
	}

	prefix := gameVersion + "-"
	var promoted []string
	for key, forgeVer := range promotions.Promos {
		if label, ok := strings.CutPrefix(key, prefix); ok {
			promoted = append(promoted, fmt.Sprintf("%s (%s)", forgeVer, label))
		}
	}
	sort.Strings(promoted)

	var builds []string
	if body, err := util.DoGet(forgeMetadata); err == nil {
		for _, v := range parseMavenMetadata(body) {
			if forgePart, ok := strings.CutPrefix(v, prefix); ok {
				if !containsPrefix(promoted, forgePart) {
					builds = append(builds, forgePart)
				}
			}
		}
	}

	if len(promoted) == 0 && len(builds) == 0 {
		return nil, fmt.Errorf("no forge versions found for %s", gameVersion)
	}

	// Newest build first; fall back to string order when a build number
	// does not parse as a version.
	sort.Slice(builds, func(i, j int) bool {
		vi, erri := semVer.NewVersion(builds[i])
		vj, errj := semVer.NewVersion(builds[j])
		if erri != nil || errj != nil {
			return builds[i] > builds[j]
		}
		return vi.GreaterThan(vj)
	})

	return append(promoted, builds...), nil
}

// parseMavenMetadata pulls <version> entries out of a maven-metadata.xml
// body. The schema is flat enough that line scanning beats an XML decoder.
func parseMavenMetadata(body []byte) []string {
	var versions []string
	for _, line := range strings.Split(string(body), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "<version>") && strings.HasSuffix(trimmed, "</version>") {
			v := strings.TrimSuffix(strings.TrimPrefix(trimmed, "<version>"), "</version>")
			versions = append(versions, v)
		}
	}
	return versions
}

func containsPrefix(versions []string, prefix string) bool {
	for _, v := range versions {
		if strings.HasPrefix(v, prefix) {
			return true
		}
	}
	return false
}

// ForgeInstallerUrl probes the vendor maven for the installer jar. Old
// builds carry a duplicated game-version suffix in their coordinates, so
// a second pattern is tried before giving up.
func ForgeInstallerUrl(gameVersion string, forgeVersion string) (string, string, error) {
	url := fmt.Sprintf("%s/releases/net/minecraftforge/forge/%s-%s/forge-%s-%s-installer.jar",
		ForgeMaven, gameVersion, forgeVersion, gameVersion, forgeVersion)
	jarName := fmt.Sprintf("forge-%s-%s-installer.jar", gameVersion, forgeVersion)
	if util.DoHead(url) == nil {
		return url, jarName, nil
	}

	url = fmt.Sprintf("%s/releases/net/minecraftforge/forge/%s-%s-%s/forge-%s-%s-%s-installer.jar",
		ForgeMaven, gameVersion, forgeVersion, gameVersion, gameVersion, forgeVersion, gameVersion)
	jarName = fmt.Sprintf("forge-%s-%s-%s-installer.jar", gameVersion, forgeVersion, gameVersion)
	if util.DoHead(url) == nil {
		return url, jarName, nil
	}

	return "", "", fmt.Errorf("cant find forge version %s for %s", forgeVersion, gameVersion)
}
