package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"

	"github.com/breraud/fastMC/java"
	"github.com/breraud/fastMC/launch"
	"github.com/breraud/fastMC/meta"
	"github.com/breraud/fastMC/modloaders"
	"github.com/breraud/fastMC/resolver"
	"github.com/breraud/fastMC/structs"
	"github.com/breraud/fastMC/util"
)

var (
	instanceDir   string
	dataDir       string
	gameVersion   string
	loaderName    string
	loaderVersion string
	javaPath      string
	provisionJava bool
	noDiscover    bool
	username      string
	uuid          string
	minMemory     int
	maxMemory     int
	threads       int
	dryRun        bool
	skipUpdate    bool
	noColours     bool
	verbose       bool

	logFile *os.File
)

func init() {
	if util.ReleaseVersion == "" || util.ReleaseVersion == "main" {
		util.ReleaseVersion = "v0.0.0-beta.0"
	}

	if util.GitCommit == "" {
		util.GitCommit = "Dev"
	}

	userAgentVersion := strings.TrimPrefix(util.ReleaseVersion, "v")
	util.UserAgent = fmt.Sprintf("fastmc/%s", userAgentVersion)
}

func main() {
	flag.StringVar(&instanceDir, "dir", "", "Instance directory")
	flag.StringVar(&dataDir, "data", "", "Shared data directory for versions, libraries and assets (Default: ~/.fastmc)")
	flag.StringVar(&gameVersion, "mc", "", "Minecraft version to prepare")
	flag.StringVar(&loaderName, "loader", "vanilla", "Mod loader: vanilla, fabric, quilt, forge or neoforge")
	flag.StringVar(&loaderVersion, "loader-version", "", "Mod loader version, if not provided the latest available is used")
	flag.StringVar(&javaPath, "java", "", "Path to a java binary, checked before any auto-detected installation")
	flag.BoolVar(&provisionJava, "provision-java", false, "Download a Temurin runtime when no compatible java is found")
	flag.BoolVar(&noDiscover, "no-discover", false, "Do not search JAVA_HOME, PATH or system locations for java")
	flag.StringVar(&username, "username", "Player", "Player name")
	flag.StringVar(&uuid, "uuid", "offline-uuid", "Player UUID")
	flag.IntVar(&minMemory, "xms", 512, "Minimum JVM heap in MB")
	flag.IntVar(&maxMemory, "xmx", 2048, "Maximum JVM heap in MB")
	flag.IntVar(&threads, "threads", runtime.NumCPU()*2, "Number of download threads (Default: CPU Cores * 2)")
	flag.BoolVar(&dryRun, "dry-run", false, "Prepare everything and print the launch command instead of running it")
	flag.BoolVar(&skipUpdate, "skip-update", false, "Skip the launcher self-update check")
	flag.BoolVar(&noColours, "no-colours", false, "Do not display console/terminal colours")
	flag.BoolVar(&verbose, "verbose", false, "Verbose output")
	flag.Parse()

	var err error
	logFile, err = os.OpenFile("fastmc.log", os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0666)
	if err != nil {
		panic(err)
	}
	defer logFile.Close()

	util.LogMw = io.MultiWriter(os.Stdout, util.NewCustomWriter(logFile))
	pterm.SetDefaultOutput(util.LogMw)

	pterm.Debug.Prefix = pterm.Prefix{
		Text:  "DEBUG",
		Style: pterm.NewStyle(pterm.BgLightMagenta, pterm.FgBlack),
	}
	pterm.Debug.MessageStyle = pterm.NewStyle(98)

	if noColours {
		pterm.DisableStyling()
	}
	if verbose {
		pterm.EnableDebugMessages()
		pterm.Debug.Println("Verbose output enabled")
	}

	logo, _ := pterm.DefaultBigText.WithLetters(
		putils.LettersFromStringWithStyle("fast", pterm.NewStyle(pterm.FgCyan)),
		putils.LettersFromStringWithStyle("MC", pterm.NewStyle(pterm.FgGreen))).Srender()
	pterm.DefaultCenter.Println(logo)
	pterm.DefaultCenter.WithCenterEachLineSeparately().Printfln("fastMC %s(%s)\n%s", util.ReleaseVersion, util.GitCommit, time.Now().UTC().Format(time.RFC1123))

	if !skipUpdate {
		versionInfo, err := checkForUpdate()
		if err != nil {
			pterm.Warning.Printfln("Error checking for update: %v", err)
		} else if versionInfo.UpdateAvailable {
			pterm.Info.Printfln("Update available: %s -> %s", versionInfo.CurrentVersion, versionInfo.LatestVersion)
			if err := doUpdate(versionInfo); err != nil {
				pterm.Warning.Printfln("Self update failed: %s", err.Error())
			}
		}
	}

	if instanceDir == "" || gameVersion == "" {
		pterm.Error.Println("Both -dir and -mc are required")
		flag.Usage()
		os.Exit(1)
	}

	if err := run(); err != nil {
		pterm.Fatal.Println(err.Error())
	}
}

func run() error {
	abs, err := filepath.Abs(instanceDir)
	if err != nil {
		return fmt.Errorf("error getting absolute path: %w", err)
	}
	instanceDir = abs

	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".fastmc")
	}
	layout := resolver.NewLayout(dataDir)

	gameDir := filepath.Join(instanceDir, "game")
	if err := os.MkdirAll(gameDir, 0755); err != nil {
		return err
	}

	instance := loadInstanceMetadata()

	loader := structs.ModLoader(loaderName)
	if instance.Loader != "" && loaderName == "vanilla" {
		loader = instance.Loader
	}

	versionMeta, err := meta.ResolveVersion(gameVersion, layout.VersionsDir())
	if err != nil {
		return fmt.Errorf("failed to resolve version %s: %w", gameVersion, err)
	}

	classpath, err := resolver.ResolveClasspath(layout, &versionMeta, threads)
	if err != nil {
		return err
	}

	if err := resolver.ResolveNatives(layout, &versionMeta, threads); err != nil {
		return err
	}

	assetsDir, err := resolver.ResolveAssets(layout, &versionMeta, gameDir, threads)
	if err != nil {
		return err
	}

	selectedJava, err := selectJava(instance)
	if err != nil {
		return err
	}
	pterm.Info.Printfln("Using java: %s", selectedJava)

	assetIndexId := versionMeta.AssetIndex.Id
	if assetIndexId == "" {
		assetIndexId = versionMeta.Assets
	}

	config := launch.Config{
		JavaPath:    selectedJava,
		GameDir:     gameDir,
		AssetsDir:   assetsDir,
		Classpath:   classpath,
		MainClass:   versionMeta.MainClass,
		VersionName: versionMeta.Id,
		AssetIndex:  assetIndexId,
		Memory:      &launch.MemorySettings{MinMegabytes: minMemory, MaxMegabytes: maxMemory},
		NativesDir:  layout.NativesDir(versionMeta.Id),
	}

	if instance.MinMemoryMb > 0 {
		config.Memory.MinMegabytes = instance.MinMemoryMb
	}
	if instance.MaxMemoryMb > 0 {
		config.Memory.MaxMegabytes = instance.MaxMemoryMb
	}
	config.ExtraJvmArgs = append(config.ExtraJvmArgs, instance.JvmArgs...)

	if fix, err := launch.Log4jFix(instanceDir, gameVersion); err != nil {
		pterm.Warning.Printfln("Failed to apply log4j fix: %s", err.Error())
	} else if fix != "" {
		config.ExtraJvmArgs = append(config.ExtraJvmArgs, fix)
	}

	if loader != structs.Vanilla {
		profile, err := installLoader(layout, loader, selectedJava)
		if err != nil {
			return err
		}
		libraryPaths, err := modloaders.LibraryPaths(layout, profile)
		if err != nil {
			return err
		}
		config.ApplyLoaderProfile(profile, libraryPaths)
	}

	auth := launch.Auth{
		Kind:     launch.AccountOffline,
		Username: username,
		Uuid:     uuid,
	}

	cmd := config.BuildCommand(auth)
	if dryRun {
		pterm.Info.Printfln("Launch command:\n%s", strings.Join(cmd.Args, " "))
		return nil
	}

	pterm.Info.Printfln("Launching minecraft %s", gameVersion)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// loadInstanceMetadata reads instance.json when it exists. A missing or
// unreadable file just means no overrides.
func loadInstanceMetadata() structs.InstanceMetadata {
	var instance structs.InstanceMetadata
	if err := util.ReadJSON(filepath.Join(instanceDir, "instance.json"), &instance); err != nil {
		pterm.Debug.Printfln("No instance metadata: %s", err.Error())
	}
	return instance
}

// selectJava runs detection and the compatibility selection, optionally
// provisioning a Temurin runtime when nothing on the machine fits.
func selectJava(instance structs.InstanceMetadata) (string, error) {
	preferred := javaPath
	if preferred == "" {
		preferred = instance.JavaPath
	}

	autoDiscover := !noDiscover
	if instance.AutoDiscover != nil {
		autoDiscover = *instance.AutoDiscover
	}

	summary := java.Detect(java.DetectionConfig{
		AutoDiscover:  autoDiscover,
		PreferredPath: preferred,
	})
	for _, detectErr := range summary.Errors {
		pterm.Warning.Println(detectErr)
	}
	pterm.Debug.Printfln("Detected %d java installations", len(summary.Installations))

	selected, err := java.SelectForVersion(summary, gameVersion)
	if err == nil {
		return selected, nil
	}

	var incompatible *java.IncompatibleRuntimeError
	if errors.As(err, &incompatible) {
		return "", incompatible
	}

	if provisionJava {
		pterm.Info.Println("No compatible java found, provisioning one")
		return java.Provision(dataDir, java.RequiredRuntime(gameVersion))
	}

	return "", fmt.Errorf("%w (re-run with -provision-java to download one)", err)
}

// installLoader resolves the loader version (latest when unset) and runs
// the matching installation strategy. An already-persisted profile is
// reused only when it matches the requested loader and version; switching
// loaders or pinning a different version reinstalls.
func installLoader(layout resolver.Layout, loader structs.ModLoader, selectedJava string) (*structs.LoaderProfile, error) {
	if profile, ok := modloaders.ReusableProfile(instanceDir, loader, loaderVersion); ok {
		pterm.Debug.Printfln("Reusing existing %s %s profile", profile.Loader, profile.LoaderVersion)
		return profile, nil
	}

	version := loaderVersion
	if version == "" {
		latest, err := latestLoaderVersion(loader)
		if err != nil {
			return nil, err
		}
		version = latest
		pterm.Info.Printfln("No loader version provided, using latest: %s", version)
	}

	return modloaders.Install(loader, modloaders.InstallOptions{
		InstanceDir:   instanceDir,
		Layout:        layout,
		GameVersion:   gameVersion,
		LoaderVersion: version,
		JavaPath:      selectedJava,
		Threads:       threads,
	})
}

func latestLoaderVersion(loader structs.ModLoader) (string, error) {
	switch loader {
	case structs.Fabric:
		loaders, err := meta.FetchFabricLoaders(gameVersion)
		if err != nil {
			return "", err
		}
		for _, l := range loaders {
			if l.Stable {
				return l.Version, nil
			}
		}
		if len(loaders) > 0 {
			return loaders[0].Version, nil
		}
		return "", fmt.Errorf("no fabric loader available for %s", gameVersion)
	case structs.Quilt:
		loaders, err := meta.FetchQuiltLoaders()
		if err != nil {
			return "", err
		}
		if len(loaders) > 0 {
			return loaders[0].Version, nil
		}
		return "", fmt.Errorf("no quilt loader available")
	case structs.Forge:
		versions, err := meta.FetchForgeVersions(gameVersion)
		if err != nil {
			return "", err
		}
		if len(versions) > 0 {
			// Promoted entries carry a display label, e.g. "47.2.0 (recommended)".
			return strings.Fields(versions[0])[0], nil
		}
		return "", fmt.Errorf("no forge version available for %s", gameVersion)
	case structs.NeoForge:
		versions, err := meta.FetchNeoForgeVersions(gameVersion)
		if err != nil {
			return "", err
		}
		if len(versions) > 0 {
			return versions[0], nil
		}
		return "", fmt.Errorf("no neoforge version available for %s", gameVersion)
	default:
		return "", fmt.Errorf("unknown mod loader %q", loader)
	}
}
