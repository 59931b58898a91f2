// Package launch turns resolved launch inputs (classpath, assets, java
// path, loader profile, account) into the final game process command.
package launch

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/breraud/fastMC/structs"
)

type MemorySettings struct {
	MinMegabytes int
	MaxMegabytes int
}

type Resolution struct {
	Width  int
	Height int
}

type AccountKind string

const (
	AccountOffline   AccountKind = "offline"
	AccountMicrosoft AccountKind = "msa"
)

// Auth identifies the player. Offline accounts carry no real token; a
// fixed placeholder keeps legacy clients happy.
type Auth struct {
	Kind        AccountKind
	Username    string
	Uuid        string
	AccessToken string
}

func (a Auth) token() string {
	if a.Kind == AccountOffline {
		return "offline-token"
	}
	return a.AccessToken
}

// Config is everything needed to assemble the game command. Optional
// fields are skipped when zero.
type Config struct {
	JavaPath      string
	GameDir       string
	AssetsDir     string
	Classpath     []string
	MainClass     string
	VersionName   string
	AssetIndex    string
	Resolution    *Resolution
	Memory        *MemorySettings
	ExtraJvmArgs  []string
	ExtraGameArgs []string
	NativesDir    string
}

// ApplyLoaderProfile overlays an installed loader onto a vanilla launch:
// the loader's main class replaces the vanilla one, its libraries are
// prepended to the classpath and its argument lists are appended.
func (c *Config) ApplyLoaderProfile(profile *structs.LoaderProfile, libraryPaths []string) {
	if profile.MainClass != "" {
		c.MainClass = profile.MainClass
	}
	c.Classpath = append(append([]string{}, libraryPaths...), c.Classpath...)
	c.ExtraJvmArgs = append(c.ExtraJvmArgs, profile.JvmArgs...)
	c.ExtraGameArgs = append(c.ExtraGameArgs, profile.GameArgs...)
}

// BuildCommand assembles the java invocation. The argument layout
// matches what every vanilla and modded client since alpha expects:
// JVM flags, main class, then game arguments. The legacy --session and
// --userProperties flags are always passed; modern clients ignore them.
func (c *Config) BuildCommand(auth Auth) *exec.Cmd {
	var args []string

	if c.Memory != nil {
		args = append(args,
			fmt.Sprintf("-Xms%dM", c.Memory.MinMegabytes),
			fmt.Sprintf("-Xmx%dM", c.Memory.MaxMegabytes),
		)
	}

	if c.NativesDir != "" {
		args = append(args, fmt.Sprintf("-Djava.library.path=%s", c.NativesDir))
	}

	if len(c.Classpath) > 0 {
		args = append(args, "-cp", strings.Join(c.Classpath, string(os.PathListSeparator)))
	}

	args = append(args, c.ExtraJvmArgs...)
	args = append(args, c.MainClass)

	args = append(args,
		"--username", auth.Username,
		"--version", c.VersionName,
		"--gameDir", c.GameDir,
		"--assetsDir", c.AssetsDir,
	)

	if c.AssetIndex != "" {
		args = append(args, "--assetIndex", c.AssetIndex)
	}

	args = append(args,
		"--uuid", auth.Uuid,
		"--accessToken", auth.token(),
		"--session", fmt.Sprintf("token:%s:%s", auth.token(), auth.Uuid),
		"--userType", string(auth.Kind),
		"--versionType", "release",
		"--userProperties", "{}",
	)

	if c.Resolution != nil {
		args = append(args,
			"--width", fmt.Sprintf("%d", c.Resolution.Width),
			"--height", fmt.Sprintf("%d", c.Resolution.Height),
		)
	}

	args = append(args, c.ExtraGameArgs...)

	cmd := exec.Command(c.JavaPath, args...)
	cmd.Dir = c.GameDir
	return cmd
}
