package structs

// File is a single download descriptor: a destination (Path is relative
// to the download root), a primary URL plus optional mirrors, and an
// optional checksum.
type File struct {
	Name     string   `json:"name"`
	Path     string   `json:"path"`
	Url      string   `json:"url"`
	Mirrors  []string `json:"mirrors,omitempty"`
	Hash     string   `json:"hash,omitempty"`
	HashType string   `json:"hash_type,omitempty"`
}
