// Package resolver fills the shared data directory with everything a
// version needs before launch: library jars, extracted natives and the
// content-addressed asset store.
package resolver

import "path/filepath"

// Layout maps the fixed on-disk structure of the shared data directory.
// Every component derives paths from here so the structure only exists
// in one place.
type Layout struct {
	Root string
}

func NewLayout(root string) Layout {
	return Layout{Root: root}
}

func (l Layout) VersionsDir() string {
	return filepath.Join(l.Root, "versions")
}

func (l Layout) VersionDir(id string) string {
	return filepath.Join(l.VersionsDir(), id)
}

func (l Layout) ClientJar(id string) string {
	return filepath.Join(l.VersionDir(id), id+".jar")
}

func (l Layout) LibrariesDir() string {
	return filepath.Join(l.Root, "libraries")
}

func (l Layout) AssetsDir() string {
	return filepath.Join(l.Root, "assets")
}

func (l Layout) AssetIndexesDir() string {
	return filepath.Join(l.AssetsDir(), "indexes")
}

func (l Layout) AssetObjectsDir() string {
	return filepath.Join(l.AssetsDir(), "objects")
}

func (l Layout) VirtualAssetsDir() string {
	return filepath.Join(l.AssetsDir(), "virtual", "legacy")
}

func (l Layout) NativesDir(id string) string {
	return filepath.Join(l.Root, "natives", id)
}

// ObjectPath is the content-addressed location of one asset: the first
// two hash characters bucket the store, the full hash names the file.
func (l Layout) ObjectPath(hash string) string {
	return filepath.Join(l.AssetObjectsDir(), hash[:2], hash)
}
