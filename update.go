package main

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"strings"

	semver "github.com/hashicorp/go-version"
	"github.com/minio/selfupdate"
	"github.com/pterm/pterm"

	"github.com/breraud/fastMC/util"
)

const (
	org  = "breraud"
	repo = "fastMC"
)

type GHRelease struct {
	TagName    string `json:"tag_name"`
	Name       string `json:"name"`
	Prerelease bool   `json:"prerelease"`
	Draft      bool   `json:"draft"`
}

type VersionInfo struct {
	UpdateAvailable     bool
	CurrentVersion      string
	LatestVersion       string
	Name                string
	isPreReleaseOrDraft bool
}

func checkForUpdate() (VersionInfo, error) {
	versionInfo := VersionInfo{
		UpdateAvailable: false,
		CurrentVersion:  util.ReleaseVersion,
	}

	releaseApi := fmt.Sprintf("https://api.github.com/repos/%s/%s/releases/latest", org, repo)
	data, err := util.DoGet(releaseApi)
	if err != nil {
		return versionInfo, fmt.Errorf("error checking for update: %s", err.Error())
	}

	var release GHRelease
	if err := json.Unmarshal(data, &release); err != nil {
		return versionInfo, fmt.Errorf("error unmarshalling response: %s", err.Error())
	}

	if release.Prerelease || release.Draft {
		versionInfo.isPreReleaseOrDraft = true
		return versionInfo, nil
	}

	versionInfo.LatestVersion = release.TagName
	versionInfo.Name = release.Name

	currentVersion, err := semver.NewVersion(strings.ReplaceAll(util.ReleaseVersion, "v", ""))
	if err != nil {
		return versionInfo, fmt.Errorf("error parsing current version: %s", err.Error())
	}
	latestVersion, err := semver.NewVersion(strings.ReplaceAll(versionInfo.LatestVersion, "v", ""))
	if err != nil {
		return versionInfo, fmt.Errorf("error parsing latest version: %s", err.Error())
	}

	if latestVersion.GreaterThan(currentVersion) {
		versionInfo.UpdateAvailable = true
	}

	return versionInfo, nil
}

func doUpdate(versionInfo VersionInfo) error {
	filename := fmt.Sprintf("fastmc-%s-%s", strings.ToLower(runtime.GOOS), strings.ToLower(runtime.GOARCH))
	if runtime.GOOS == "windows" {
		filename += ".exe"
	}

	downloadUrl := fmt.Sprintf("https://github.com/%s/%s/releases/download/%s/%s", org, repo, versionInfo.LatestVersion, filename)
	hashBytes, err := util.DoGet(downloadUrl + ".sha256")
	if err != nil {
		return fmt.Errorf("error downloading hash: %s", err.Error())
	}
	updateHash := strings.TrimSpace(string(hashBytes))
	pterm.Debug.Println("Update Hash: ", updateHash)

	data, err := util.DoGet(downloadUrl)
	if err != nil {
		return fmt.Errorf("error downloading update: %s", err.Error())
	}

	binHashByte := sha256.Sum256(data)
	binHash := fmt.Sprintf("%x", binHashByte)

	if updateHash != binHash {
		return fmt.Errorf("update hash does not match")
	}
	if err := selfupdate.Apply(bytes.NewReader(data), selfupdate.Options{}); err != nil {
		return fmt.Errorf("error applying update: %s", err.Error())
	}

	pterm.Success.Println("Update successful!\nPlease restart the program to use the new version.")
	os.Exit(0)
	return nil
}
