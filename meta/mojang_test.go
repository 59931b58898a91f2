package meta

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
)

const versionDocument = `{"id":"1.20.1","mainClass":"net.minecraft.client.main.Main","assets":"5","assetIndex":{"id":"5","url":"https://example.com/5.json"}}`

// manifestServer serves a one-version manifest plus the version document
// itself, counting requests.
func manifestServer(t *testing.T, requests *atomic.Int64) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	mux.HandleFunc("/manifest.json", func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"latest":{"release":"1.20.1","snapshot":"1.20.1"},"versions":[{"id":"1.20.1","url":"%s/1.20.1.json"}]}`, server.URL)
	})
	mux.HandleFunc("/1.20.1.json", func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, versionDocument)
	})

	original := manifestUrl
	manifestUrl = server.URL + "/manifest.json"
	t.Cleanup(func() { manifestUrl = original })

	return server
}

func TestResolveVersionFetchesAndCaches(t *testing.T) {
	var requests atomic.Int64
	manifestServer(t, &requests)
	versionsDir := t.TempDir()

	metadata, err := ResolveVersion("1.20.1", versionsDir)
	if err != nil {
		t.Fatalf("unexpected error %s", err)
	}
	if metadata.MainClass != "net.minecraft.client.main.Main" {
		t.Errorf("main class = %s", metadata.MainClass)
	}
	if requests.Load() != 2 {
		t.Errorf("made %d requests, want 2", requests.Load())
	}

	// The cached document must be persisted verbatim.
	cached, err := os.ReadFile(filepath.Join(versionsDir, "1.20.1", "1.20.1.json"))
	if err != nil {
		t.Fatalf("cache file missing: %s", err)
	}
	if string(cached) != versionDocument {
		t.Errorf("cache differs from the served document: %s", cached)
	}

	// A second resolve is answered from disk.
	if _, err := ResolveVersion("1.20.1", versionsDir); err != nil {
		t.Fatalf("unexpected error %s", err)
	}
	if requests.Load() != 2 {
		t.Errorf("cache hit still made a request, total %d", requests.Load())
	}
}

func TestResolveVersionRepairsCorruptCache(t *testing.T) {
	var requests atomic.Int64
	manifestServer(t, &requests)
	versionsDir := t.TempDir()

	cachePath := filepath.Join(versionsDir, "1.20.1", "1.20.1.json")
	if err := os.MkdirAll(filepath.Dir(cachePath), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cachePath, []byte("{truncated"), 0644); err != nil {
		t.Fatal(err)
	}

	metadata, err := ResolveVersion("1.20.1", versionsDir)
	if err != nil {
		t.Fatalf("corrupt cache surfaced an error: %s", err)
	}
	if metadata.Id != "1.20.1" {
		t.Errorf("id = %s, want 1.20.1", metadata.Id)
	}

	cached, err := os.ReadFile(cachePath)
	if err != nil || string(cached) != versionDocument {
		t.Errorf("cache was not repaired: %s (%v)", cached, err)
	}
}

func TestResolveVersionNotFound(t *testing.T) {
	var requests atomic.Int64
	manifestServer(t, &requests)

	_, err := ResolveVersion("0.0.0", t.TempDir())
	if !errors.Is(err, ErrVersionNotFound) {
		t.Errorf("got %v, want ErrVersionNotFound", err)
	}
}
