package launch

import (
	"fmt"
	"path/filepath"

	semVer "github.com/hashicorp/go-version"
	"github.com/pterm/pterm"

	"github.com/breraud/fastMC/util"
)

const patchesDirName = ".patches"

var log4jConfigs = []struct {
	min, max string
	name     string
	sha1     string
	url      string
}{
	{"1.7", "1.11.2", "log4j2_17-111.xml", "4bb89a97a66f350bc9f73b3ca8509632682aea2e", "https://launcher.mojang.com/v1/objects/4bb89a97a66f350bc9f73b3ca8509632682aea2e/log4j2_17-111.xml"},
	{"1.12", "1.16.5", "log4j2_112-116.xml", "02937d122c86ce73319ef9975b58896fc1b491d1", "https://launcher.mojang.com/v1/objects/02937d122c86ce73319ef9975b58896fc1b491d1/log4j2_112-116.xml"},
}

// Log4jFix returns the JVM argument mitigating CVE-2021-44228 for the
// given game version. Versions patched upstream get the property flag;
// older ones get a replacement logging config downloaded from Mojang
// into the instance's .patches directory. Unparseable or unaffected
// versions get no argument.
func Log4jFix(instanceDir string, gameVersion string) (string, error) {
	mcVer, err := semVer.NewVersion(gameVersion)
	if err != nil {
		return "", err
	}

	if mcVer.GreaterThanOrEqual(semVer.Must(semVer.NewVersion("1.18.1"))) {
		return "", nil
	}
	if mcVer.GreaterThanOrEqual(semVer.Must(semVer.NewVersion("1.17"))) {
		return "-Dlog4j2.formatMsgNoLookups=true", nil
	}

	for _, config := range log4jConfigs {
		if mcVer.LessThan(semVer.Must(semVer.NewVersion(config.min))) ||
			mcVer.GreaterThan(semVer.Must(semVer.NewVersion(config.max))) {
			continue
		}

		patchPath := filepath.Join(instanceDir, patchesDirName, config.name)
		if !util.PathExists(patchPath) {
			pterm.Info.Printfln("Downloading log4j fix %s", config.name)
			dl := util.NewDownload(patchPath, config.url)
			dl.SetChecksum("sha1", config.sha1, true)
			if err := dl.Do(); err != nil {
				return "", err
			}
		}
		return fmt.Sprintf("-Dlog4j.configurationFile=%s", patchPath), nil
	}

	return "", nil
}
