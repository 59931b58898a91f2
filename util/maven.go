package util

import (
	"fmt"
	"strings"
)

// MavenToPath converts a maven coordinate (group:artifact:version, with an
// optional classifier part and an optional @extension suffix) into its
// repository-relative path using forward slashes. Dots in the group become
// path separators.
func MavenToPath(coordinate string) (string, error) {
	ext := "jar"
	if at := strings.LastIndex(coordinate, "@"); at != -1 {
		ext = coordinate[at+1:]
		coordinate = coordinate[:at]
	}

	parts := strings.Split(coordinate, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return "", fmt.Errorf("invalid maven coordinate: %s", coordinate)
	}

	group := strings.ReplaceAll(parts[0], ".", "/")
	artifact := parts[1]
	version := parts[2]

	file := fmt.Sprintf("%s-%s", artifact, version)
	if len(parts) == 4 {
		file += "-" + parts[3]
	}
	file += "." + ext

	return fmt.Sprintf("%s/%s/%s/%s", group, artifact, version, file), nil
}
