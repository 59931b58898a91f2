// Package java finds installed Java runtimes, picks one compatible with a
// target game version, and can provision a Temurin runtime from the
// Adoptium API when none fits.
package java

import (
	"crypto/sha1"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

type InstallSource string

const (
	SourceJavaHome       InstallSource = "java_home"
	SourcePathEntry      InstallSource = "path_entry"
	SourceSystemLocation InstallSource = "system_location"
	SourceUserProvided   InstallSource = "user_provided"
)

// Installation is one discovered Java binary. Created fresh on every
// detection pass; only the selected path is persisted elsewhere. Id is a
// stable hash of the normalized path, so the same binary keeps the same
// identity across passes.
type Installation struct {
	Id      string        `json:"id"`
	Path    string        `json:"path"`
	Version string        `json:"version,omitempty"`
	Vendor  string        `json:"vendor,omitempty"`
	Source  InstallSource `json:"source"`
}

type DetectionConfig struct {
	AutoDiscover  bool
	PreferredPath string
}

// DetectionSummary is the result of one detection pass, not long-lived
// state.
type DetectionSummary struct {
	Installations []Installation
	Errors        []string
}

// probeVersion is swappable so detection tests run without a JVM.
var probeVersion = func(path string) ([]byte, error) {
	return exec.Command(path, "-version").CombinedOutput()
}

// Detect enumerates candidate binaries, normalizes and de-duplicates
// them, and probes each survivor for version and vendor. A missing
// binary is only an error when the user configured it explicitly; stale
// PATH or JAVA_HOME entries are expected noise.
func Detect(config DetectionConfig) DetectionSummary {
	var summary DetectionSummary
	seen := map[string]bool{}

	for _, candidate := range candidateBinaries(config) {
		normalized := normalizePath(candidate.path)
		if seen[normalized] {
			continue
		}
		seen[normalized] = true

		if _, err := os.Stat(normalized); err != nil {
			if candidate.source == SourceUserProvided {
				summary.Errors = append(summary.Errors, fmt.Sprintf("java binary not found at %s", normalized))
			}
			continue
		}

		out, err := probeVersion(normalized)
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("failed to inspect java at %s: %s", normalized, err.Error()))
			continue
		}

		version, vendor := parseProbeOutput(out)
		summary.Installations = append(summary.Installations, Installation{
			Id:      installationId(normalized),
			Path:    normalized,
			Version: version,
			Vendor:  vendor,
			Source:  candidate.source,
		})
	}

	return summary
}

type candidate struct {
	path   string
	source InstallSource
}

// candidateBinaries builds the search list. The preferred path goes
// first so it wins de-duplication ties.
func candidateBinaries(config DetectionConfig) []candidate {
	var candidates []candidate

	if config.PreferredPath != "" {
		candidates = append(candidates, candidate{config.PreferredPath, SourceUserProvided})
	}

	if config.AutoDiscover {
		if javaHome := os.Getenv("JAVA_HOME"); javaHome != "" {
			candidates = append(candidates, candidate{javaHome, SourceJavaHome})
		}
		for _, entry := range filepath.SplitList(os.Getenv("PATH")) {
			if entry != "" {
				candidates = append(candidates, candidate{entry, SourcePathEntry})
			}
		}
		candidates = append(candidates, platformCandidates()...)
	}

	for i := range candidates {
		candidates[i].path = ensureBinary(candidates[i].path)
	}
	return candidates
}

// ensureBinary turns a directory candidate (JAVA_HOME, a PATH entry)
// into the java binary below it. Entries already pointing at a binary
// pass through. The result is always binary-shaped: a directory holding
// no java maps to a nonexistent path, so it fails the existence check
// quietly instead of being probed as a binary.
func ensureBinary(path string) string {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		direct := filepath.Join(path, binaryName())
		if _, err := os.Stat(direct); err == nil {
			return direct
		}
		return filepath.Join(path, "bin", binaryName())
	}
	return path
}

func binaryName() string {
	if runtime.GOOS == "windows" {
		return "java.exe"
	}
	return "java"
}

func normalizePath(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

func installationId(normalized string) string {
	sum := sha1.Sum([]byte(normalized))
	return fmt.Sprintf("%x", sum[:8])
}

var vendorMarkers = []struct {
	marker string
	name   string
}{
	{"openjdk", "OpenJDK"},
	{"temurin", "Temurin"},
	{"corretto", "Amazon Corretto"},
	{"oracle", "Oracle"},
}

// parseProbeOutput extracts the quoted version token and a vendor name
// from combined `java -version` output. Falls back to scanning for a
// digits-and-dots token when no quoted version is present.
func parseProbeOutput(out []byte) (string, string) {
	var version, vendor string

	for _, line := range strings.Split(string(out), "\n") {
		if version == "" {
			if idx := strings.Index(line, `version "`); idx != -1 {
				tail := line[idx+len(`version "`):]
				if end := strings.Index(tail, `"`); end != -1 {
					version = tail[:end]
				}
			}
		}
		if vendor == "" {
			lower := strings.ToLower(line)
			for _, vm := range vendorMarkers {
				if strings.Contains(lower, vm.marker) {
					vendor = vm.name
					break
				}
			}
		}
		if version != "" && vendor != "" {
			break
		}
	}

	if version == "" {
		for _, token := range strings.Fields(string(out)) {
			if v, ok := versionLike(token); ok {
				version = v
				break
			}
		}
	}

	return version, vendor
}

// versionLike truncates a token at its first non-version character and
// accepts the prefix when it contains at least one digit and one dot.
// Handles older Java 8 outputs that skip the quoted form, where the
// version token carries a -bNN build suffix.
func versionLike(token string) (string, bool) {
	digits, hasDot := false, false

	end := len(token)
	for i, ch := range token {
		if ch >= '0' && ch <= '9' {
			digits = true
			continue
		}
		if ch == '.' {
			hasDot = true
			continue
		}
		if ch == '_' {
			continue
		}
		end = i
		break
	}

	if end > 0 && digits && hasDot {
		return token[:end], true
	}
	return "", false
}

func platformCandidates() []candidate {
	var candidates []candidate

	switch runtime.GOOS {
	case "darwin":
		base := "/Library/Java/JavaVirtualMachines"
		if entries, err := os.ReadDir(base); err == nil {
			for _, entry := range entries {
				candidates = append(candidates, candidate{
					filepath.Join(base, entry.Name(), "Contents", "Home", "bin", "java"),
					SourceSystemLocation,
				})
			}
		}
	case "windows":
		for _, env := range []string{"ProgramFiles", "ProgramFiles(x86)", "ProgramData"} {
			root := os.Getenv(env)
			if root == "" {
				continue
			}
			javaRoot := filepath.Join(root, "Java")
			if entries, err := os.ReadDir(javaRoot); err == nil {
				for _, entry := range entries {
					candidates = append(candidates, candidate{
						filepath.Join(javaRoot, entry.Name(), "bin", "java.exe"),
						SourceSystemLocation,
					})
				}
			}
		}
	default:
		searchRoots := []string{
			"/usr/lib/jvm",
			"/usr/lib64/jvm",
			"/usr/lib/java",
			"/usr/local/lib/jvm",
			"/opt/java",
			"/usr/java",
		}
		for _, root := range searchRoots {
			if entries, err := os.ReadDir(root); err == nil {
				for _, entry := range entries {
					candidates = append(candidates, candidate{
						filepath.Join(root, entry.Name(), "bin", "java"),
						SourceSystemLocation,
					})
				}
			}
		}
		candidates = append(candidates,
			candidate{"/usr/bin/java", SourceSystemLocation},
			candidate{"/usr/local/bin/java", SourceSystemLocation},
		)
	}

	return candidates
}
