package resolver

import (
	"crypto/sha1"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/breraud/fastMC/structs"
)

func TestResolveAssetsIsIdempotent(t *testing.T) {
	content := []byte("asset payload")
	hash := fmt.Sprintf("%x", sha1.Sum(content))

	var requests atomic.Int64
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	mux.HandleFunc("/index/5.json", func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		fmt.Fprintf(w, `{"objects":{"minecraft/sounds/hello.ogg":{"hash":"%s","size":%d}}}`, hash, len(content))
	})
	mux.HandleFunc("/"+hash[:2]+"/"+hash, func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Write(content)
	})

	original := resourcesDownloadUrl
	resourcesDownloadUrl = server.URL
	t.Cleanup(func() { resourcesDownloadUrl = original })

	layout := NewLayout(t.TempDir())
	gameDir := t.TempDir()
	meta := &structs.VersionMetadata{
		Id: "1.20.1",
		AssetIndex: structs.AssetIndexRef{
			Id:  "5",
			Url: server.URL + "/index/5.json",
		},
	}

	assetsDir, err := ResolveAssets(layout, meta, gameDir, 1)
	if err != nil {
		t.Fatalf("unexpected error %s", err)
	}
	if assetsDir != layout.AssetsDir() {
		t.Errorf("assets dir = %s, want %s", assetsDir, layout.AssetsDir())
	}

	objectPath := layout.ObjectPath(hash)
	body, err := os.ReadFile(objectPath)
	if err != nil {
		t.Fatalf("object not stored: %s", err)
	}
	if string(body) != string(content) {
		t.Errorf("stored object differs from the served payload")
	}
	if requests.Load() != 2 {
		t.Fatalf("first pass made %d requests, want 2", requests.Load())
	}

	// Second pass: index cached, object present, zero network traffic.
	if _, err := ResolveAssets(layout, meta, gameDir, 1); err != nil {
		t.Fatalf("unexpected error %s", err)
	}
	if requests.Load() != 2 {
		t.Errorf("second pass made %d extra requests, want 0", requests.Load()-2)
	}
}

func TestResolveAssetsVirtualLayout(t *testing.T) {
	content := []byte("pack.mcmeta body")
	hash := fmt.Sprintf("%x", sha1.Sum(content))

	layout := NewLayout(t.TempDir())
	gameDir := t.TempDir()

	// Pre-populate the store and the index cache so no network is
	// involved.
	objectPath := layout.ObjectPath(hash)
	if err := os.MkdirAll(filepath.Dir(objectPath), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(objectPath, content, 0644); err != nil {
		t.Fatal(err)
	}

	indexBody := fmt.Sprintf(`{"virtual":true,"objects":{"pack.mcmeta":{"hash":"%s","size":%d}}}`, hash, len(content))
	indexPath := filepath.Join(layout.AssetIndexesDir(), "legacy.json")
	if err := os.MkdirAll(filepath.Dir(indexPath), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(indexPath, []byte(indexBody), 0644); err != nil {
		t.Fatal(err)
	}

	meta := &structs.VersionMetadata{
		Id:         "1.7.2",
		AssetIndex: structs.AssetIndexRef{Id: "legacy"},
	}

	assetsDir, err := ResolveAssets(layout, meta, gameDir, 1)
	if err != nil {
		t.Fatalf("unexpected error %s", err)
	}
	if assetsDir != layout.VirtualAssetsDir() {
		t.Errorf("assets dir = %s, want the virtual tree", assetsDir)
	}

	materialized, err := os.ReadFile(filepath.Join(layout.VirtualAssetsDir(), "pack.mcmeta"))
	if err != nil {
		t.Fatalf("virtual asset not materialized: %s", err)
	}
	if string(materialized) != string(content) {
		t.Errorf("materialized asset differs from the stored object")
	}
}

func TestObjectPathBucketing(t *testing.T) {
	layout := NewLayout("data")
	hash := "da39a3ee5e6b4b0d3255bfef95601890afd80709"
	want := filepath.Join("data", "assets", "objects", "da", hash)
	if got := layout.ObjectPath(hash); got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}
