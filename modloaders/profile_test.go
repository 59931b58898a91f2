package modloaders

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/breraud/fastMC/resolver"
	"github.com/breraud/fastMC/structs"
)

func TestProfileRoundTrip(t *testing.T) {
	instanceDir := t.TempDir()

	profile := &structs.LoaderProfile{
		Loader:        structs.Fabric,
		LoaderVersion: "0.15.7",
		MainClass:     "net.fabricmc.loader.impl.launch.knot.KnotClient",
		Libraries: []structs.LoaderLibrary{
			{Name: "net.fabricmc:fabric-loader:0.15.7", Url: "https://maven.fabricmc.net/"},
			{Name: "org.ow2.asm:asm:9.6", Url: "https://maven.fabricmc.net/"},
		},
		JvmArgs:  []string{"-DFabricMcEmu=net.minecraft.client.main.Main"},
		GameArgs: []string{"--versionType", "release"},
	}

	if err := SaveProfile(instanceDir, profile); err != nil {
		t.Fatalf("save failed: %s", err)
	}

	loaded, err := LoadProfile(instanceDir)
	if err != nil {
		t.Fatalf("load failed: %s", err)
	}
	if !reflect.DeepEqual(profile, loaded) {
		t.Errorf("round trip mismatch:\nsaved:  %+v\nloaded: %+v", profile, loaded)
	}
}

func TestReusableProfileMatchesLoaderIdentity(t *testing.T) {
	instanceDir := t.TempDir()

	saved := &structs.LoaderProfile{
		Loader:        structs.Forge,
		LoaderVersion: "47.2.0",
		MainClass:     "cpw.mods.bootstraplauncher.BootstrapLauncher",
	}
	if err := SaveProfile(instanceDir, saved); err != nil {
		t.Fatalf("save failed: %s", err)
	}

	var tests = []struct {
		name          string
		loader        structs.ModLoader
		loaderVersion string
		want          bool
	}{
		{"same loader and version", structs.Forge, "47.2.0", true},
		{"same loader, any version", structs.Forge, "", true},
		{"same loader, pinned other version", structs.Forge, "47.1.0", false},
		{"switched to fabric", structs.Fabric, "", false},
		{"switched to neoforge", structs.NeoForge, "20.4.237", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile, ok := ReusableProfile(instanceDir, tt.loader, tt.loaderVersion)
			if ok != tt.want {
				t.Fatalf("got %t, want %t", ok, tt.want)
			}
			if ok && profile.MainClass != saved.MainClass {
				t.Errorf("reused profile has wrong main class %s", profile.MainClass)
			}
		})
	}
}

func TestReusableProfileRejectsMissingOrCorrupt(t *testing.T) {
	instanceDir := t.TempDir()

	if _, ok := ReusableProfile(instanceDir, structs.Fabric, ""); ok {
		t.Error("reused a profile that does not exist")
	}

	if err := os.WriteFile(ProfilePath(instanceDir), []byte("{not json"), 0644); err != nil {
		t.Fatalf("write failed: %s", err)
	}
	if _, ok := ReusableProfile(instanceDir, structs.Fabric, ""); ok {
		t.Error("reused an unparseable profile")
	}
}

func TestLibraryPaths(t *testing.T) {
	layout := resolver.NewLayout(filepath.Join("data"))

	profile := &structs.LoaderProfile{
		Libraries: []structs.LoaderLibrary{
			{Name: "net.fabricmc:fabric-loader:0.15.7"},
			{Name: "org.ow2.asm:asm:9.6"},
		},
	}

	paths, err := LibraryPaths(layout, profile)
	if err != nil {
		t.Fatalf("unexpected error %s", err)
	}

	want := []string{
		filepath.Join("data", "libraries", "net", "fabricmc", "fabric-loader", "0.15.7", "fabric-loader-0.15.7.jar"),
		filepath.Join("data", "libraries", "org", "ow2", "asm", "asm", "9.6", "asm-9.6.jar"),
	}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("got %v, want %v", paths, want)
	}
}

func TestLibraryPathsRejectsBadCoordinate(t *testing.T) {
	layout := resolver.NewLayout("data")
	_, err := LibraryPaths(layout, &structs.LoaderProfile{
		Libraries: []structs.LoaderLibrary{{Name: "not-a-coordinate"}},
	})
	if err == nil {
		t.Error("expected an error for an invalid coordinate")
	}
}
