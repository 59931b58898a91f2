package java

import (
	"fmt"
	"strconv"
	"strings"
)

// IncompatibleRuntimeError reports a user-provided runtime that cannot
// run the target game version.
type IncompatibleRuntimeError struct {
	Detected string
	Required string
}

func (e *IncompatibleRuntimeError) Error() string {
	return fmt.Sprintf("configured java version %s is incompatible, minecraft requires java %s", e.Detected, e.Required)
}

type runtimeTier struct {
	name    string
	markers []string
}

var (
	tier21 = runtimeTier{"21", []string{"21"}}
	tier17 = runtimeTier{"17", []string{"17", "16"}}
	tier8  = runtimeTier{"8", []string{"1.8"}}
)

// SelectForVersion picks the path of an installation able to run the
// given game version. Pure over the summary: no probing, no filesystem
// access, no mutation.
func SelectForVersion(summary DetectionSummary, targetGameVersion string) (string, error) {
	tier := requiredTier(targetGameVersion)

	// A deliberately configured runtime either matches the tier or the
	// whole selection fails; silently substituting another install
	// would ignore the user's intent. An undetectable version is
	// trusted as-is.
	for _, install := range summary.Installations {
		if install.Source != SourceUserProvided {
			continue
		}
		if install.Version == "" {
			return install.Path, nil
		}
		if matchesTier(install.Version, tier) {
			return install.Path, nil
		}
		return "", &IncompatibleRuntimeError{Detected: install.Version, Required: tier.name}
	}

	for _, install := range summary.Installations {
		if matchesTier(install.Version, tier) {
			return install.Path, nil
		}
	}

	if tier.name == tier8.name {
		for _, install := range summary.Installations {
			if strings.HasPrefix(install.Version, "1.8") || strings.HasPrefix(install.Version, "8") {
				return install.Path, nil
			}
		}
		return "", fmt.Errorf("minecraft %s requires java 8, but no legacy java installation was found", targetGameVersion)
	}

	if best := highestVersioned(summary.Installations); best != "" {
		return best, nil
	}

	// Nothing detected with a parseable version. Leave resolution to
	// the OS at launch time.
	return "java", nil
}

// RequiredRuntime names the Java feature release a game version needs,
// e.g. "17". Used to ask Adoptium for a matching runtime.
func RequiredRuntime(gameVersion string) string {
	return requiredTier(gameVersion).name
}

// requiredTier maps a game version onto the runtime generation it needs.
// 1.20.5 raised the floor to Java 21 mid-minor; anything unparseable is
// assumed to be newer than every known version.
func requiredTier(gameVersion string) runtimeTier {
	minor, patch, ok := parseGameVersion(gameVersion)
	if !ok {
		return tier21
	}
	switch {
	case minor >= 21 || (minor == 20 && patch >= 5):
		return tier21
	case minor >= 17:
		return tier17
	default:
		return tier8
	}
}

func parseGameVersion(gameVersion string) (int, int, bool) {
	if !strings.HasPrefix(gameVersion, "1.") {
		return 0, 0, false
	}
	parts := strings.Split(gameVersion, ".")
	if len(parts) < 2 {
		return 0, 0, false
	}

	minor, err := strconv.Atoi(leadingDigits(parts[1]))
	if err != nil {
		return 0, 0, false
	}

	patch := 0
	if len(parts) > 2 {
		// Pre-release tags hang off the patch; truncate at the first
		// non-digit.
		patch, _ = strconv.Atoi(leadingDigits(parts[2]))
	}

	return minor, patch, true
}

func leadingDigits(s string) string {
	for i, ch := range s {
		if ch < '0' || ch > '9' {
			return s[:i]
		}
	}
	return s
}

func matchesTier(version string, tier runtimeTier) bool {
	if version == "" {
		return false
	}
	for _, marker := range tier.markers {
		if strings.HasPrefix(version, marker) {
			return true
		}
	}
	return false
}

// highestVersioned returns the path of the installation whose version
// has the largest leading numeric component, or "" when none parse.
func highestVersioned(installations []Installation) string {
	best, bestMajor := "", -1
	for _, install := range installations {
		major, err := strconv.Atoi(leadingDigits(install.Version))
		if err != nil {
			continue
		}
		if major > bestMajor {
			best, bestMajor = install.Path, major
		}
	}
	return best
}
