package java

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/breraud/fastMC/structs"
	"github.com/breraud/fastMC/util"
	"github.com/codeclysm/extract/v3"
	semVer "github.com/hashicorp/go-version"
	"github.com/pterm/pterm"
)

const adoptiumApiUrl = "https://api.adoptium.net"

// Provision fetches a Temurin runtime of the given feature version from
// the Adoptium API and unpacks it under dataDir/jre/<version>. Returns
// the path of the java binary. A runtime already on disk is reused
// without any network traffic.
func Provision(dataDir string, version string) (string, error) {
	binary, err := RuntimeBinary(dataDir, version)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(binary); err == nil {
		return binary, nil
	}

	archive, err := queryAdoptium(version)
	if err != nil {
		return "", fmt.Errorf("failed to locate a java %s runtime: %w", version, err)
	}

	pterm.Info.Printfln("Downloading java %s runtime", version)
	if failed := util.DownloadAll(dataDir, 1, []structs.File{archive}); len(failed) > 0 {
		return "", fmt.Errorf("failed to download java runtime: %w", failed[0].Err)
	}

	archivePath := filepath.Join(dataDir, archive.Name)
	if err := unpackRuntime(archivePath, filepath.Join(dataDir, "jre", version)); err != nil {
		return "", fmt.Errorf("failed to extract java runtime: %w", err)
	}
	if err := os.Remove(archivePath); err != nil {
		pterm.Warning.Println("Error removing java archive:", err.Error())
	}

	return binary, nil
}

// RuntimeBinary is where a provisioned runtime's java binary lives. The
// macOS bundle nests the JRE under Contents/Home.
func RuntimeBinary(dataDir string, version string) (string, error) {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(dataDir, "jre", version, "bin", "java.exe"), nil
	case "darwin":
		return filepath.Join(dataDir, "jre", version, "Contents", "Home", "bin", "java"), nil
	case "linux":
		return filepath.Join(dataDir, "jre", version, "bin", "java"), nil
	default:
		return "", errors.New("unsupported platform")
	}
}

func queryAdoptium(version string) (structs.File, error) {
	adoptiumUrl, err := makeAdoptiumUrl(version)
	if err != nil {
		return structs.File{}, err
	}

	var adoptium structs.Adoptium
	if err := util.GetJSON(adoptiumUrl, &adoptium); err != nil {
		return structs.File{}, err
	}
	if len(adoptium) == 0 || len(adoptium[0].Binaries) == 0 {
		return structs.File{}, fmt.Errorf("adoptium has no java %s build for this platform", version)
	}

	pkg := adoptium[0].Binaries[0].Package

	var fileExt string
	if strings.HasSuffix(pkg.Name, ".zip") {
		fileExt = ".zip"
	} else if strings.HasSuffix(pkg.Name, ".tar.gz") {
		fileExt = ".tar.gz"
	}

	return structs.File{
		Name:     "jre" + fileExt,
		Path:     "",
		Url:      pkg.Link,
		Hash:     pkg.Checksum,
		HashType: "sha256",
	}, nil
}

func makeAdoptiumUrl(version string) (string, error) {
	parsedUrl, err := url.Parse(adoptiumApiUrl + "/v3/assets/version/" + version)
	if err != nil {
		return "", err
	}

	q := parsedUrl.Query()
	q.Add("heap_size", "normal")
	q.Add("image_type", "jre")
	q.Add("page", "0")
	q.Add("page_size", "10")
	q.Add("project", "jdk")
	q.Add("release_type", "ga")
	q.Add("semver", "false")
	q.Add("sort_method", "DEFAULT")
	q.Add("sort_order", "DESC")
	q.Add("vendor", "eclipse")
	if runtime.GOOS == "windows" {
		q.Add("os", "windows")
	}
	if runtime.GOOS == "darwin" {
		q.Add("os", "mac")
	}
	if runtime.GOOS == "linux" {
		if _, err := os.Stat("/etc/alpine-release"); !os.IsNotExist(err) {
			q.Add("os", "alpine-linux")
		} else {
			q.Add("os", "linux")
		}
	}

	arch, err := validJavaArch(version)
	if err != nil {
		return "", err
	}
	q.Add("architecture", arch)

	parsedUrl.RawQuery = q.Encode()

	return parsedUrl.String(), nil
}

func validJavaArch(version string) (string, error) {
	targetVersion, err := semVer.NewVersion(version)
	if err != nil {
		return "", err
	}
	switch runtime.GOOS {
	case "darwin":
		if runtime.GOARCH == "arm64" {
			// Adoptium never shipped aarch64 mac builds before 11.
			limit, err := semVer.NewVersion("11.0.0")
			if err != nil {
				return "", err
			}
			if targetVersion.LessThan(limit) {
				return "x64", nil
			}
			return "aarch64", nil
		}
		if runtime.GOARCH == "amd64" {
			return "x64", nil
		}
		if runtime.GOARCH == "386" {
			return "x86", nil
		}
	case "windows":
		if runtime.GOARCH == "amd64" || runtime.GOARCH == "arm64" {
			return "x64", nil
		}
		if runtime.GOARCH == "386" || runtime.GOARCH == "arm" {
			return "x86", nil
		}
	case "linux":
		if runtime.GOARCH == "amd64" {
			return "x64", nil
		}
		if runtime.GOARCH == "386" {
			return "x86", nil
		}
		if runtime.GOARCH == "arm64" {
			return "aarch64", nil
		}
		if runtime.GOARCH == "arm" {
			return "arm", nil
		}
	}
	return "", errors.New("unsupported architecture")
}

// unpackRuntime strips the archive's single top-level directory so the
// runtime lands directly in destDir.
func unpackRuntime(archivePath string, destDir string) error {
	archiveFile, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer archiveFile.Close()

	var shift = func(path string) string {
		// Zips built on windows can use / instead of \, so detect the
		// separator in use before splitting.
		sep := filepath.Separator
		if len(strings.Split(path, "\\")) > 1 {
			sep = '\\'
		} else if len(strings.Split(path, "/")) > 1 {
			sep = '/'
		}

		parts := strings.Split(path, string(sep))
		parts = parts[1:]
		return strings.Join(parts, string(sep))
	}

	return extract.Archive(context.TODO(), bufio.NewReader(archiveFile), destDir, shift)
}
