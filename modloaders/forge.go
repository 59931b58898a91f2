package modloaders

import (
	"archive/zip"
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pterm/pterm"

	"github.com/breraud/fastMC/meta"
	"github.com/breraud/fastMC/structs"
	"github.com/breraud/fastMC/util"
)

// extractedDirName is the staging area under libraries/ for payload
// files carried inside the installer archive instead of on a maven.
const extractedDirName = "forge_extracted"

type Forge struct {
	InstallOptions
}

func (s Forge) Install() (*structs.LoaderProfile, error) {
	installerUrl, jarName, err := meta.ForgeInstallerUrl(s.GameVersion, s.LoaderVersion)
	if err != nil {
		return nil, err
	}

	engine := installerEngine{
		opts:          s.InstallOptions,
		loaderName:    "forge",
		installerUrl:  installerUrl,
		jarName:       jarName,
		fallbackMaven: meta.ForgeMaven + "/releases/",
	}
	return engine.run()
}

// installerEngine drives a Forge-style installer archive: extract its
// embedded documents and maven tree, resolve data tokens, then execute
// the vendor's processor chain against the local libraries directory.
// Forge and NeoForge share the archive format; only the installer URL
// and the fallback maven differ.
type installerEngine struct {
	opts          InstallOptions
	loaderName    string
	installerUrl  string
	jarName       string
	fallbackMaven string
}

// runProcessor executes one processor jar and captures both streams.
// Swappable so engine tests run without a JVM.
var runProcessor = func(javaPath string, workDir string, args []string) (string, string, error) {
	cmd := exec.Command(javaPath, args...)
	cmd.Dir = workDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func (e installerEngine) run() (*structs.LoaderProfile, error) {
	pterm.Info.Printfln("Installing %s %s for minecraft %s", e.loaderName, e.opts.LoaderVersion, e.opts.GameVersion)

	installerPath := filepath.Join(e.opts.InstanceDir, e.jarName)
	if failed := util.DownloadAll(e.opts.InstanceDir, 1, []structs.File{{
		Name: e.jarName,
		Url:  e.installerUrl,
	}}); len(failed) > 0 {
		return nil, fmt.Errorf("failed to download %s installer: %w", e.loaderName, failed[0].Err)
	}

	installProfile, versionDoc, rawVersionDoc, err := e.extractInstaller(installerPath)
	if err != nil {
		return nil, err
	}

	if err := e.downloadLibraries(installProfile, versionDoc); err != nil {
		return nil, err
	}

	tokens, err := e.buildTokenMap(installProfile)
	if err != nil {
		return nil, err
	}

	if err := e.runProcessors(installProfile, tokens); err != nil {
		return nil, err
	}

	profile := e.buildProfile(versionDoc, rawVersionDoc)
	if err := SaveProfile(e.opts.InstanceDir, profile); err != nil {
		return nil, err
	}

	if err := os.Remove(installerPath); err != nil {
		pterm.Warning.Printfln("Failed to remove installer archive: %s", err.Error())
	}

	pterm.Success.Printfln("Installed %s successfully", e.loaderName)
	return profile, nil
}

// extractInstaller pulls the install profile, the version document, the
// bundled maven tree and any jar-internal data payloads out of the
// archive.
func (e installerEngine) extractInstaller(installerPath string) (*structs.ForgeInstallProfile, *structs.ForgeVersionDoc, []byte, error) {
	reader, err := zip.OpenReader(installerPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open installer archive: %w", err)
	}
	defer reader.Close()

	profileBody, err := readZipEntry(&reader.Reader, "install_profile.json")
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: install_profile.json", ErrMissingManifestEntry)
	}
	var installProfile structs.ForgeInstallProfile
	if err := json.Unmarshal(profileBody, &installProfile); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to parse install profile: %w", err)
	}

	versionBody, err := readZipEntry(&reader.Reader, "version.json")
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: version.json", ErrMissingManifestEntry)
	}
	var versionDoc structs.ForgeVersionDoc
	if err := json.Unmarshal(versionBody, &versionDoc); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to parse version document: %w", err)
	}

	librariesDir := e.opts.Layout.LibrariesDir()
	for _, entry := range reader.File {
		name := filepath.ToSlash(entry.Name)
		if !strings.HasPrefix(name, "maven/") || entry.FileInfo().IsDir() {
			continue
		}
		dest := filepath.Join(librariesDir, filepath.FromSlash(strings.TrimPrefix(name, "maven/")))
		if err := writeZipEntry(entry, dest); err != nil {
			return nil, nil, nil, fmt.Errorf("failed to extract %s: %w", name, err)
		}
	}

	// Data values starting with "/" name files inside the archive
	// itself; stage them where token resolution expects them.
	for key, value := range installProfile.Data {
		if !strings.HasPrefix(value.Client, "/") {
			continue
		}
		entryName := strings.TrimPrefix(value.Client, "/")
		body, err := readZipEntry(&reader.Reader, entryName)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%w: data entry %s (%s)", ErrMissingManifestEntry, key, entryName)
		}
		dest := filepath.Join(librariesDir, extractedDirName, filepath.FromSlash(entryName))
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return nil, nil, nil, err
		}
		if err := os.WriteFile(dest, body, 0644); err != nil {
			return nil, nil, nil, err
		}
	}

	return &installProfile, &versionDoc, versionBody, nil
}

// downloadLibraries fetches every library referenced by either document.
// Entries with an embedded URL are required; coordinate-derived fallback
// fetches are best effort since some coordinates only exist in the
// extracted maven tree.
func (e installerEngine) downloadLibraries(installProfile *structs.ForgeInstallProfile, versionDoc *structs.ForgeVersionDoc) error {
	librariesDir := e.opts.Layout.LibrariesDir()
	var direct, bestEffort []structs.File

	for _, lib := range append(append([]structs.LibraryEntry{}, installProfile.Libraries...), versionDoc.Libraries...) {
		relPath, url, sha1 := "", "", ""
		if artifact := lib.Downloads.Artifact; artifact != nil {
			relPath, url, sha1 = artifact.Path, artifact.Url, artifact.Sha1
		}
		if relPath == "" {
			derived, err := util.MavenToPath(lib.Name)
			if err != nil {
				return fmt.Errorf("invalid library coordinate %s: %w", lib.Name, err)
			}
			relPath = derived
		}

		if util.PathExists(filepath.Join(librariesDir, filepath.FromSlash(relPath))) {
			continue
		}

		file := structs.File{
			Name:     filepath.Base(filepath.FromSlash(relPath)),
			Path:     filepath.Dir(filepath.FromSlash(relPath)),
			Url:      url,
			Hash:     sha1,
			HashType: "sha1",
		}
		if url != "" {
			direct = append(direct, file)
		} else {
			file.Url = joinMaven(e.fallbackMaven, relPath)
			file.Hash = ""
			bestEffort = append(bestEffort, file)
		}
	}

	if len(direct) > 0 {
		if failed := util.DownloadAll(librariesDir, e.opts.Threads, direct); len(failed) > 0 {
			return fmt.Errorf("failed to download %d %s libraries: %w", len(failed), e.loaderName, failed[0].Err)
		}
	}
	if len(bestEffort) > 0 {
		for _, f := range util.DownloadAll(librariesDir, e.opts.Threads, bestEffort) {
			pterm.Debug.Printfln("Library %s not on %s, assuming it was extracted locally", f.File.Name, e.fallbackMaven)
		}
	}

	return nil
}

// buildTokenMap seeds the fixed substitution keys and resolves each
// install-profile data entry to its client-side value.
func (e installerEngine) buildTokenMap(installProfile *structs.ForgeInstallProfile) (map[string]string, error) {
	librariesDir := e.opts.Layout.LibrariesDir()

	tokens := map[string]string{
		"MINECRAFT_JAR": e.opts.Layout.ClientJar(e.opts.GameVersion),
		"SIDE":          "client",
		"ROOT":          e.opts.InstanceDir,
		"LIBRARY_DIR":   librariesDir,
	}

	for key, value := range installProfile.Data {
		raw := value.Client
		switch {
		case strings.HasPrefix(raw, "[") && strings.HasSuffix(raw, "]"):
			relPath, err := util.MavenToPath(strings.Trim(raw, "[]"))
			if err != nil {
				return nil, fmt.Errorf("data entry %s has invalid coordinate %s: %w", key, raw, err)
			}
			tokens[key] = filepath.Join(librariesDir, filepath.FromSlash(relPath))
		case strings.HasPrefix(raw, "/"):
			tokens[key] = filepath.Join(librariesDir, extractedDirName, filepath.FromSlash(strings.TrimPrefix(raw, "/")))
		default:
			tokens[key] = raw
		}
	}

	return tokens, nil
}

// runProcessors executes the processor chain strictly in list order;
// later processors read files earlier ones wrote. The first non-zero
// exit aborts the installation.
func (e installerEngine) runProcessors(installProfile *structs.ForgeInstallProfile, tokens map[string]string) error {
	librariesDir := e.opts.Layout.LibrariesDir()

	for _, processor := range installProfile.Processors {
		if skipForClient(processor.Sides) {
			continue
		}

		jarRel, err := util.MavenToPath(processor.Jar)
		if err != nil {
			return fmt.Errorf("processor has invalid jar coordinate %s: %w", processor.Jar, err)
		}
		jarPath := filepath.Join(librariesDir, filepath.FromSlash(jarRel))

		classpath := []string{jarPath}
		for _, coordinate := range processor.Classpath {
			relPath, err := util.MavenToPath(coordinate)
			if err != nil {
				return fmt.Errorf("processor classpath has invalid coordinate %s: %w", coordinate, err)
			}
			classpath = append(classpath, filepath.Join(librariesDir, filepath.FromSlash(relPath)))
		}

		mainClass, err := jarMainClass(jarPath)
		if err != nil {
			return err
		}

		args := []string{"-cp", strings.Join(classpath, string(os.PathListSeparator)), mainClass}
		for _, arg := range processor.Args {
			resolved, err := resolveToken(arg, tokens, librariesDir)
			if err != nil {
				return err
			}
			args = append(args, resolved)
		}

		pterm.Info.Printfln("Running processor %s", mainClass)
		stdout, stderr, err := runProcessor(e.opts.JavaPath, e.opts.InstanceDir, args)
		if err != nil {
			return &ProcessorError{MainClass: mainClass, Stdout: stdout, Stderr: stderr, Err: err}
		}
	}

	return nil
}

func (e installerEngine) buildProfile(versionDoc *structs.ForgeVersionDoc, rawVersionDoc []byte) *structs.LoaderProfile {
	profile := &structs.LoaderProfile{
		Loader:        structs.ModLoader(e.loaderName),
		LoaderVersion: e.opts.LoaderVersion,
		MainClass:     versionDoc.MainClass,
		JvmArgs:       meta.StringArguments(rawVersionDoc, "arguments.jvm"),
		GameArgs:      meta.StringArguments(rawVersionDoc, "arguments.game"),
	}

	for _, lib := range versionDoc.Libraries {
		profile.Libraries = append(profile.Libraries, structs.LoaderLibrary{
			Name: lib.Name,
			Url:  e.libraryBaseUrl(lib),
		})
	}

	return profile
}

// libraryBaseUrl reverse-derives a library's repository root by
// stripping its relative path off the known download URL.
func (e installerEngine) libraryBaseUrl(lib structs.LibraryEntry) string {
	artifact := lib.Downloads.Artifact
	if artifact == nil || artifact.Url == "" {
		return e.fallbackMaven
	}
	relPath := artifact.Path
	if relPath == "" {
		if derived, err := util.MavenToPath(lib.Name); err == nil {
			relPath = derived
		}
	}
	if relPath != "" && strings.HasSuffix(artifact.Url, relPath) {
		return strings.TrimSuffix(artifact.Url, relPath)
	}
	return e.fallbackMaven
}

// resolveToken expands one processor argument: {key} is a token-map
// lookup, [coordinate] is a library path, anything else passes through.
// Unknown keys pass through literally; some vendor scripts use brace
// syntax in plain strings.
func resolveToken(arg string, tokens map[string]string, librariesDir string) (string, error) {
	switch {
	case strings.HasPrefix(arg, "{") && strings.HasSuffix(arg, "}"):
		if value, ok := tokens[strings.Trim(arg, "{}")]; ok {
			return value, nil
		}
		return arg, nil
	case strings.HasPrefix(arg, "[") && strings.HasSuffix(arg, "]"):
		relPath, err := util.MavenToPath(strings.Trim(arg, "[]"))
		if err != nil {
			return "", fmt.Errorf("invalid coordinate argument %s: %w", arg, err)
		}
		return filepath.Join(librariesDir, filepath.FromSlash(relPath)), nil
	default:
		return arg, nil
	}
}

// skipForClient reports whether a sides declaration excludes the client.
// No declaration means the processor runs everywhere.
func skipForClient(sides []string) bool {
	if len(sides) == 0 {
		return false
	}
	for _, side := range sides {
		if side == "client" {
			return false
		}
	}
	return true
}

// jarMainClass reads the Main-Class header out of a jar's manifest.
func jarMainClass(jarPath string) (string, error) {
	reader, err := zip.OpenReader(jarPath)
	if err != nil {
		return "", fmt.Errorf("failed to open processor jar %s: %w", jarPath, err)
	}
	defer reader.Close()

	body, err := readZipEntry(&reader.Reader, "META-INF/MANIFEST.MF")
	if err != nil {
		return "", fmt.Errorf("%w: %s has no manifest", ErrMissingMainClass, filepath.Base(jarPath))
	}

	scanner := bufio.NewScanner(bytes.NewReader(body))
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.HasPrefix(line, "Main-Class:") {
			return strings.TrimSpace(strings.TrimPrefix(line, "Main-Class:")), nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrMissingMainClass, filepath.Base(jarPath))
}

func readZipEntry(reader *zip.Reader, name string) ([]byte, error) {
	for _, entry := range reader.File {
		if filepath.ToSlash(entry.Name) != name {
			continue
		}
		rc, err := entry.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("entry %s not found", name)
}

func writeZipEntry(entry *zip.File, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	src, err := entry.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(dest, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}
