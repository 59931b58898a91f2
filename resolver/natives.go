package resolver

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/breraud/fastMC/structs"
	"github.com/breraud/fastMC/util"
	"github.com/pterm/pterm"
)

// ResolveNatives downloads each library's platform classifier jar and
// unpacks it into the version's natives directory. Jars are stored as
// <group.artifact.version>-<classifier>.jar so two libraries sharing an
// artifact name cannot clobber each other.
func ResolveNatives(layout Layout, meta *structs.VersionMetadata, threads int) error {
	classifier := nativeClassifier()
	nativesDir := layout.NativesDir(meta.Id)

	type nativeJar struct {
		file structs.File
		path string
	}
	var jars []nativeJar
	var missing []structs.File

	for _, lib := range meta.Libraries {
		artifact, ok := lib.Downloads.Classifiers[classifier]
		if !ok {
			continue
		}

		name := strings.ReplaceAll(lib.Name, ":", ".") + "-" + classifier + ".jar"
		jarPath := filepath.Join(nativesDir, name)
		file := structs.File{
			Name:     name,
			Url:      artifact.Url,
			Hash:     artifact.Sha1,
			HashType: "sha1",
		}
		jars = append(jars, nativeJar{file: file, path: jarPath})
		if !util.PathExists(jarPath) {
			missing = append(missing, file)
		}
	}

	if len(jars) == 0 {
		return nil
	}

	if len(missing) > 0 {
		if failed := util.DownloadAll(nativesDir, threads, missing); len(failed) > 0 {
			return fmt.Errorf("failed to download %d native libraries: %w", len(failed), failed[0].Err)
		}
	}

	for _, jar := range jars {
		if err := extractNatives(jar.path, nativesDir); err != nil {
			return fmt.Errorf("failed to extract %s: %w", jar.file.Name, err)
		}
	}

	pterm.Debug.Printfln("Extracted %d native libraries into %s", len(jars), nativesDir)
	return nil
}

// extractNatives unpacks a classifier jar, preserving internal directory
// structure and dropping everything under META-INF.
func extractNatives(jarPath string, destDir string) error {
	reader, err := zip.OpenReader(jarPath)
	if err != nil {
		return err
	}
	defer reader.Close()

	for _, entry := range reader.File {
		name := filepath.ToSlash(entry.Name)
		if strings.HasPrefix(name, "META-INF/") || name == "META-INF" {
			continue
		}
		if strings.Contains(name, "..") {
			continue
		}

		destPath := filepath.Join(destDir, filepath.FromSlash(name))
		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(destPath, 0755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
			return err
		}

		src, err := entry.Open()
		if err != nil {
			return err
		}
		dst, err := os.OpenFile(destPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			src.Close()
			return err
		}
		_, err = io.Copy(dst, src)
		src.Close()
		dst.Close()
		if err != nil {
			return err
		}
	}

	return nil
}
