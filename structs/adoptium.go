package structs

import "time"

// Adoptium mirrors the api.adoptium.net v3 assets response. Only the
// fields the runtime provisioner reads are kept.
type Adoptium []struct {
	Binaries    []AdoptiumBinaries `json:"binaries"`
	ReleaseName string             `json:"release_name"`
}

type AdoptiumPackage struct {
	Checksum string `json:"checksum"`
	Link     string `json:"link"`
	Name     string `json:"name"`
	Size     int    `json:"size"`
}

type AdoptiumBinaries struct {
	Architecture string          `json:"architecture"`
	HeapSize     string          `json:"heap_size"`
	ImageType    string          `json:"image_type"`
	JvmImpl      string          `json:"jvm_impl"`
	Os           string          `json:"os"`
	Package      AdoptiumPackage `json:"package"`
	Project      string          `json:"project"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
