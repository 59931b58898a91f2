package util

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"unicode"

	"github.com/go-resty/resty/v2"
)

var (
	ReleaseVersion string
	GitCommit      string
	UserAgent      = "fastmc/dev"
	LogMw          io.Writer
)

var client = resty.New()

// HTTPError reports a non-2xx response from a metadata or content endpoint.
type HTTPError struct {
	StatusCode int
	Url        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.Url)
}

// DoGet performs a single GET and returns the body. No retries: callers
// that need resilience catch and continue per item.
func DoGet(url string) ([]byte, error) {
	resp, err := client.R().SetHeader("User-Agent", UserAgent).Get(url)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, &HTTPError{StatusCode: resp.StatusCode(), Url: url}
	}
	return resp.Body(), nil
}

// GetJSON performs a single GET and decodes the JSON body into out.
func GetJSON(url string, out any) error {
	resp, err := client.R().SetHeader("User-Agent", UserAgent).SetResult(out).Get(url)
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return &HTTPError{StatusCode: resp.StatusCode(), Url: url}
	}
	return nil
}

// DoHead checks whether a remote file exists.
func DoHead(url string) error {
	resp, err := client.R().SetHeader("User-Agent", UserAgent).Head(url)
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return &HTTPError{StatusCode: resp.StatusCode(), Url: url}
	}
	return nil
}

// PathExists treats any stat failure as absent; presence checks here
// gate re-downloads, where a false negative just costs one fetch.
func PathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func FileHash(path string, hashType string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	switch hashType {
	case "sha1":
		h := sha1.New()
		if _, err = io.Copy(h, f); err != nil {
			return "", err
		}
		return fmt.Sprintf("%x", h.Sum(nil)), nil
	case "sha256":
		h := sha256.New()
		if _, err = io.Copy(h, f); err != nil {
			return "", err
		}
		return fmt.Sprintf("%x", h.Sum(nil)), nil
	default:
		return "", errors.New("unsupported hash type")
	}
}

// WriteJSON writes v indented to path, creating parent directories.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to marshal %s: %s", filepath.Base(path), err.Error())
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func ReadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func CopyFile(src string, dst string) error {
	file, err := os.Open(src)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	dstFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, file); err != nil {
		return err
	}
	return nil
}

func CopyDir(src string, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		dstPath := filepath.Join(dst, relPath)

		if d.IsDir() {
			if err := os.MkdirAll(dstPath, 0755); err != nil {
				return err
			}
		} else {
			if err := CopyFile(path, dstPath); err != nil {
				return err
			}
		}
		return nil
	})
}

// CustomWriter to strip ascii characters
type CustomWriter struct {
	writer io.Writer
}

// NewCustomWriter creates a new CustomWriter.
func NewCustomWriter(writer io.Writer) *CustomWriter {
	return &CustomWriter{writer: writer}
}

// Write implements the io.Writer interface.
func (cw *CustomWriter) Write(p []byte) (n int, err error) {
	re := regexp.MustCompile(`\x1b\[[0-9;]*m`)
	stripped := re.ReplaceAll(p, []byte{})

	filtered := make([]byte, 0, len(stripped))
	for _, b := range stripped {
		if b == '\n' || (unicode.IsPrint(rune(b)) || b < 0x20 || b > 0x7E) {
			filtered = append(filtered, b)
		}
	}
	return cw.writer.Write(filtered)
}
