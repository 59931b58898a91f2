package modloaders

import (
	"archive/zip"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/breraud/fastMC/resolver"
	"github.com/breraud/fastMC/structs"
	"github.com/breraud/fastMC/util"
)

func testEngine(t *testing.T) installerEngine {
	t.Helper()
	return installerEngine{
		opts: InstallOptions{
			InstanceDir: t.TempDir(),
			Layout:      resolver.NewLayout(t.TempDir()),
			GameVersion: "1.20.1",
			JavaPath:    "java",
			Threads:     1,
		},
		loaderName:    "forge",
		fallbackMaven: "https://maven.example.com/releases/",
	}
}

func writeProcessorJar(t *testing.T, librariesDir string, coordinate string, manifest string) string {
	t.Helper()
	relPath, err := util.MavenToPath(coordinate)
	if err != nil {
		t.Fatal(err)
	}
	jarPath := filepath.Join(librariesDir, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(jarPath), 0755); err != nil {
		t.Fatal(err)
	}

	f, err := os.Create(jarPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.Create("META-INF/MANIFEST.MF")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte(manifest)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return jarPath
}

func withFakeRunner(t *testing.T, fn func(javaPath, workDir string, args []string) (string, string, error)) {
	t.Helper()
	original := runProcessor
	runProcessor = fn
	t.Cleanup(func() { runProcessor = original })
}

func TestResolveToken(t *testing.T) {
	librariesDir := filepath.Join("data", "libraries")
	tokens := map[string]string{
		"MINECRAFT_JAR": filepath.Join("data", "versions", "1.20.1", "1.20.1.jar"),
		"SIDE":          "client",
	}

	var tests = []struct {
		name  string
		input string
		want  string
	}{
		{"known key", "{MINECRAFT_JAR}", tokens["MINECRAFT_JAR"]},
		{"side key", "{SIDE}", "client"},
		{"unknown key passes through", "{UNKNOWN_KEY}", "{UNKNOWN_KEY}"},
		{"coordinate", "[net.minecraftforge:forge:1.20.1-47.2.0]", filepath.Join(librariesDir, "net", "minecraftforge", "forge", "1.20.1-47.2.0", "forge-1.20.1-47.2.0.jar")},
		{"literal", "--side-name", "--side-name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveToken(tt.input, tokens, librariesDir)
			if err != nil {
				t.Fatalf("unexpected error %s", err)
			}
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestBuildTokenMap(t *testing.T) {
	engine := testEngine(t)
	librariesDir := engine.opts.Layout.LibrariesDir()

	installProfile := &structs.ForgeInstallProfile{
		Data: map[string]structs.SidedValue{
			"MAPPINGS": {Client: "[de.oceanlabs.mcp:mcp_config:1.20.1@zip]", Server: "ignored"},
			"BINPATCH": {Client: "/data/client.lzma"},
			"MOJMAPS":  {Client: "official"},
		},
	}

	tokens, err := engine.buildTokenMap(installProfile)
	if err != nil {
		t.Fatalf("unexpected error %s", err)
	}

	if tokens["SIDE"] != "client" {
		t.Errorf("SIDE = %s, want client", tokens["SIDE"])
	}
	if tokens["ROOT"] != engine.opts.InstanceDir {
		t.Errorf("ROOT = %s, want the instance dir", tokens["ROOT"])
	}
	if tokens["LIBRARY_DIR"] != librariesDir {
		t.Errorf("LIBRARY_DIR = %s, want the libraries dir", tokens["LIBRARY_DIR"])
	}
	if tokens["MINECRAFT_JAR"] != engine.opts.Layout.ClientJar("1.20.1") {
		t.Errorf("MINECRAFT_JAR = %s, want the client jar", tokens["MINECRAFT_JAR"])
	}

	wantMappings := filepath.Join(librariesDir, "de", "oceanlabs", "mcp", "mcp_config", "1.20.1", "mcp_config-1.20.1.zip")
	if tokens["MAPPINGS"] != wantMappings {
		t.Errorf("MAPPINGS = %s, want %s", tokens["MAPPINGS"], wantMappings)
	}

	wantBinpatch := filepath.Join(librariesDir, extractedDirName, "data", "client.lzma")
	if tokens["BINPATCH"] != wantBinpatch {
		t.Errorf("BINPATCH = %s, want %s", tokens["BINPATCH"], wantBinpatch)
	}

	if tokens["MOJMAPS"] != "official" {
		t.Errorf("MOJMAPS = %s, want the literal value", tokens["MOJMAPS"])
	}
}

func TestRunProcessorsInOrder(t *testing.T) {
	engine := testEngine(t)
	librariesDir := engine.opts.Layout.LibrariesDir()

	first := writeProcessorJar(t, librariesDir, "com.example:first:1.0", "Manifest-Version: 1.0\r\nMain-Class: com.example.First\r\n")
	writeProcessorJar(t, librariesDir, "com.example:second:1.0", "Manifest-Version: 1.0\r\nMain-Class: com.example.Second\r\n")
	writeProcessorJar(t, librariesDir, "com.example:dep:1.0", "Manifest-Version: 1.0\r\n")

	var ran []string
	withFakeRunner(t, func(javaPath, workDir string, args []string) (string, string, error) {
		// args are -cp, <classpath>, <mainClass>, processor args...
		ran = append(ran, args[2])
		if args[2] == "com.example.First" {
			classpath := strings.Split(args[1], string(os.PathListSeparator))
			if classpath[0] != first {
				t.Errorf("classpath[0] = %s, want the processor's own jar first", classpath[0])
			}
			if len(classpath) != 2 {
				t.Errorf("classpath has %d entries, want 2", len(classpath))
			}
		}
		return "", "", nil
	})

	installProfile := &structs.ForgeInstallProfile{
		Processors: []structs.ForgeProcessor{
			{Jar: "com.example:first:1.0", Classpath: []string{"com.example:dep:1.0"}},
			{Jar: "com.example:skipped:1.0", Sides: []string{"server"}},
			{Jar: "com.example:second:1.0"},
		},
	}

	if err := engine.runProcessors(installProfile, map[string]string{}); err != nil {
		t.Fatalf("unexpected error %s", err)
	}

	want := []string{"com.example.First", "com.example.Second"}
	if len(ran) != len(want) {
		t.Fatalf("ran %v, want %v", ran, want)
	}
	for i := range want {
		if ran[i] != want[i] {
			t.Errorf("ran[%d] = %s, want %s", i, ran[i], want[i])
		}
	}
}

func TestRunProcessorsFailureIsFatal(t *testing.T) {
	engine := testEngine(t)
	librariesDir := engine.opts.Layout.LibrariesDir()

	writeProcessorJar(t, librariesDir, "com.example:boom:1.0", "Manifest-Version: 1.0\r\nMain-Class: com.example.Boom\r\n")
	writeProcessorJar(t, librariesDir, "com.example:never:1.0", "Manifest-Version: 1.0\r\nMain-Class: com.example.Never\r\n")

	calls := 0
	withFakeRunner(t, func(javaPath, workDir string, args []string) (string, string, error) {
		calls++
		return "patching failed", "stack trace here", fmt.Errorf("exit status 1")
	})

	installProfile := &structs.ForgeInstallProfile{
		Processors: []structs.ForgeProcessor{
			{Jar: "com.example:boom:1.0"},
			{Jar: "com.example:never:1.0"},
		},
	}

	err := engine.runProcessors(installProfile, map[string]string{})
	if err == nil {
		t.Fatal("expected a processor failure")
	}
	if calls != 1 {
		t.Errorf("ran %d processors after a failure, want 1", calls)
	}

	var procErr *ProcessorError
	if !errors.As(err, &procErr) {
		t.Fatalf("got %T, want *ProcessorError", err)
	}
	if procErr.MainClass != "com.example.Boom" {
		t.Errorf("main class = %s, want com.example.Boom", procErr.MainClass)
	}
	if procErr.Stdout != "patching failed" || procErr.Stderr != "stack trace here" {
		t.Errorf("captured output not preserved: %q / %q", procErr.Stdout, procErr.Stderr)
	}

	if util.PathExists(ProfilePath(engine.opts.InstanceDir)) {
		t.Error("a loader profile was written despite the failure")
	}
}

func TestJarMainClassMissing(t *testing.T) {
	librariesDir := t.TempDir()
	jarPath := writeProcessorJar(t, librariesDir, "com.example:plain:1.0", "Manifest-Version: 1.0\r\n")

	_, err := jarMainClass(jarPath)
	if !errors.Is(err, ErrMissingMainClass) {
		t.Errorf("got %v, want ErrMissingMainClass", err)
	}
}

func TestSkipForClient(t *testing.T) {
	if skipForClient(nil) {
		t.Error("no sides declaration must not skip")
	}
	if skipForClient([]string{"client", "server"}) {
		t.Error("client in sides must not skip")
	}
	if !skipForClient([]string{"server"}) {
		t.Error("server-only processor must skip")
	}
}

func TestLibraryBaseUrlReverseDerivation(t *testing.T) {
	engine := testEngine(t)

	withUrl := structs.LibraryEntry{
		Name: "net.minecraftforge:forge:1.20.1-47.2.0",
		Downloads: structs.LibraryDownloads{
			Artifact: &structs.Artifact{
				Path: "net/minecraftforge/forge/1.20.1-47.2.0/forge-1.20.1-47.2.0.jar",
				Url:  "https://maven.minecraftforge.net/releases/net/minecraftforge/forge/1.20.1-47.2.0/forge-1.20.1-47.2.0.jar",
			},
		},
	}
	if got := engine.libraryBaseUrl(withUrl); got != "https://maven.minecraftforge.net/releases/" {
		t.Errorf("got %s, want the stripped repository root", got)
	}

	withoutUrl := structs.LibraryEntry{Name: "net.minecraftforge:forge:1.20.1-47.2.0"}
	if got := engine.libraryBaseUrl(withoutUrl); got != engine.fallbackMaven {
		t.Errorf("got %s, want the fallback maven", got)
	}
}
