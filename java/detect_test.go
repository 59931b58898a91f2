package java

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestParseProbeOutput(t *testing.T) {
	var tests = []struct {
		name        string
		output      string
		wantVersion string
		wantVendor  string
	}{
		{
			"temurin 17",
			"openjdk version \"17.0.9\" 2023-10-17\nOpenJDK Runtime Environment Temurin-17.0.9+9 (build 17.0.9+9)",
			"17.0.9",
			"OpenJDK",
		},
		{
			"oracle 8",
			"java version \"1.8.0_381\"\nJava(TM) SE Runtime Environment (build 1.8.0_381-b09)\nJava HotSpot(TM) 64-Bit Server VM by Oracle",
			"1.8.0_381",
			"Oracle",
		},
		{
			"corretto",
			"openjdk version \"21.0.2\" 2024-01-16 LTS\nOpenJDK Runtime Environment Corretto-21.0.2.13.1",
			"21.0.2",
			"OpenJDK",
		},
		{
			"unquoted version falls back to token scan",
			"java full version 1.8.0_151-b12",
			"1.8.0_151",
			"",
		},
		{
			"nothing parseable",
			"command not understood",
			"",
			"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version, vendor := parseProbeOutput([]byte(tt.output))
			if version != tt.wantVersion {
				t.Errorf("version = %q, want %q", version, tt.wantVersion)
			}
			if vendor != tt.wantVendor {
				t.Errorf("vendor = %q, want %q", vendor, tt.wantVendor)
			}
		})
	}
}

func withFakeProbe(t *testing.T, output string) {
	t.Helper()
	original := probeVersion
	probeVersion = func(path string) ([]byte, error) {
		return []byte(output), nil
	}
	t.Cleanup(func() { probeVersion = original })
}

func fakeBinary(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "bin", "java")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDetectProbesPreferredPath(t *testing.T) {
	withFakeProbe(t, "openjdk version \"17.0.9\"\nOpenJDK Runtime Environment Temurin")

	binary := fakeBinary(t, t.TempDir())
	summary := Detect(DetectionConfig{PreferredPath: binary})

	if len(summary.Installations) != 1 {
		t.Fatalf("got %d installations, want 1", len(summary.Installations))
	}
	install := summary.Installations[0]
	if install.Source != SourceUserProvided {
		t.Errorf("source = %s, want %s", install.Source, SourceUserProvided)
	}
	if install.Version != "17.0.9" {
		t.Errorf("version = %s, want 17.0.9", install.Version)
	}
	if install.Id == "" {
		t.Error("installation id is empty")
	}
}

func TestDetectMissingUserProvidedIsAnError(t *testing.T) {
	withFakeProbe(t, "")

	summary := Detect(DetectionConfig{PreferredPath: filepath.Join(t.TempDir(), "nope", "java")})

	if len(summary.Installations) != 0 {
		t.Fatalf("got %d installations, want 0", len(summary.Installations))
	}
	if len(summary.Errors) != 1 {
		t.Fatalf("got %d errors, want 1", len(summary.Errors))
	}
	if !strings.Contains(summary.Errors[0], "not found") {
		t.Errorf("error %q does not mention a missing binary", summary.Errors[0])
	}
}

func TestDetectDeduplicatesSymlinkedBinaries(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need elevation on windows")
	}
	withFakeProbe(t, "openjdk version \"21.0.2\"")

	dir := t.TempDir()
	binary := fakeBinary(t, dir)
	link := filepath.Join(dir, "java-link")
	if err := os.Symlink(binary, link); err != nil {
		t.Fatal(err)
	}

	first := Detect(DetectionConfig{PreferredPath: binary})
	if len(first.Installations) != 1 {
		t.Fatalf("got %d installations, want 1", len(first.Installations))
	}

	// A symlinked alias resolves to the same normalized path and the
	// same identity.
	second := Detect(DetectionConfig{PreferredPath: link})
	if len(second.Installations) != 1 {
		t.Fatalf("got %d installations, want 1", len(second.Installations))
	}
	if first.Installations[0].Id != second.Installations[0].Id {
		t.Errorf("ids differ for the same binary: %s vs %s", first.Installations[0].Id, second.Installations[0].Id)
	}
}

func TestEnsureBinaryResolvesDirectories(t *testing.T) {
	dir := t.TempDir()
	binary := fakeBinary(t, dir)

	if got := ensureBinary(dir); got != binary {
		t.Errorf("got %s, want %s", got, binary)
	}
	if got := ensureBinary(binary); got != binary {
		t.Errorf("binary path should pass through, got %s", got)
	}

	// A directory without java maps to a binary-shaped path that does
	// not exist, never to the directory itself.
	empty := t.TempDir()
	want := filepath.Join(empty, "bin", binaryName())
	if got := ensureBinary(empty); got != want {
		t.Errorf("got %s, want %s", got, want)
	}
	if _, err := os.Stat(ensureBinary(empty)); err == nil {
		t.Error("a java-less directory resolved to an existing path")
	}
}

func TestDetectSkipsJavaLessPathEntries(t *testing.T) {
	withFakeProbe(t, "openjdk version \"21.0.2\"")

	// A PATH made of directories holding no java must produce neither
	// installations from them nor detection errors.
	toolsDir := t.TempDir()
	t.Setenv("PATH", toolsDir)
	t.Setenv("JAVA_HOME", "")

	summary := Detect(DetectionConfig{AutoDiscover: true})

	for _, detectErr := range summary.Errors {
		if strings.Contains(detectErr, toolsDir) {
			t.Errorf("java-less PATH entry surfaced an error: %s", detectErr)
		}
	}
	for _, install := range summary.Installations {
		if strings.Contains(install.Path, toolsDir) {
			t.Errorf("java-less PATH entry was probed: %s", install.Path)
		}
	}
}
