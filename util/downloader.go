package util

import (
	"context"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cavaliergopher/grab/v3"
	"github.com/pterm/pterm"

	"github.com/breraud/fastMC/structs"
)

// Download fetches a single URL to a destination path with an optional
// checksum. A single attempt, no retries.
type Download struct {
	destPath      string
	reqURL        string
	hashType      string
	checksum      string
	deleteOnError bool
	CancelFunc    *context.CancelFunc
}

func NewDownload(destPath string, reqUrl string) *Download {
	return &Download{
		reqURL:   reqUrl,
		destPath: destPath,
	}
}

func (dl *Download) Do() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	dl.CancelFunc = &cancel
	defer dl.Cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", dl.reqURL, nil)
	if err != nil {
		return err
	}

	req.Header.Set("User-Agent", UserAgent)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &HTTPError{StatusCode: resp.StatusCode, Url: dl.reqURL}
	}

	if err := dl.write(resp.Body); err != nil {
		return err
	}

	if dl.checksum != "" {
		sum, err := FileHash(dl.destPath, dl.hashType)
		if err != nil {
			return err
		}
		if !strings.EqualFold(sum, dl.checksum) {
			if dl.deleteOnError {
				if err := os.Remove(dl.destPath); err != nil {
					return fmt.Errorf("checksum mismatch, failed to remove file: %s", err.Error())
				}
				return fmt.Errorf("checksum mismatch, file deleted")
			}
			return fmt.Errorf("checksum mismatch")
		}
	}

	return nil
}

func (dl *Download) write(b io.Reader) error {
	destDir := filepath.Dir(dl.destPath)
	if _, err := os.Stat(destDir); os.IsNotExist(err) {
		if err := os.MkdirAll(destDir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %s", err.Error())
		}
	}

	f, err := os.OpenFile(dl.destPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer func() {
		if err := f.Close(); err != nil {
			pterm.Error.Printfln("Error closing file: %s", err.Error())
		}
	}()
	if _, err = io.Copy(f, b); err != nil {
		return fmt.Errorf("failed to write file: %s", err.Error())
	}
	return nil
}

// SetChecksum arms post-download verification with a hex digest and its
// type ("sha1" or "sha256"). With deleteOnError the corrupt file is
// removed so a later attempt starts clean.
func (dl *Download) SetChecksum(hashType string, hexSum string, deleteOnError bool) {
	dl.hashType = hashType
	dl.checksum = hexSum
	dl.deleteOnError = deleteOnError
}

func (dl *Download) Cancel() {
	if dl.CancelFunc != nil {
		(*dl.CancelFunc)()
	}
}

// FailedDownload pairs a file with the error that stopped it.
type FailedDownload struct {
	File structs.File
	Err  error
}

func (f FailedDownload) Error() string {
	return fmt.Sprintf("download of %s failed: %s", f.File.Name, f.Err.Error())
}

// DownloadAll fetches files into destRoot with a bounded worker pool.
// Each file is independent: failures are collected and returned, never
// fatal for the batch. Files already present on disk are skipped by grab's
// checksum handling only when a checksum is set; callers wanting pure
// presence-based caching filter existing files before calling.
func DownloadAll(destRoot string, threads int, files []structs.File) []FailedDownload {
	if threads < 1 {
		threads = 1
	}

	var failed []FailedDownload
	var failedMu sync.Mutex

	p, _ := pterm.DefaultProgressbar.WithTitle("Downloading...").WithTotal(len(files)).Start()
	var wg sync.WaitGroup

	threadLimit := make(chan int, threads)
	var pCount atomic.Uint64
	for _, file := range files {
		wg.Add(1)
		threadLimit <- 1
		file := file
		go func() {
			defer func() { wg.Done(); <-threadLimit; pCount.Add(1); p.Current = int(pCount.Load()) }()
			grab.DefaultClient.UserAgent = UserAgent
			destPath := filepath.Join(destRoot, file.Path, file.Name)
			urls := append([]string{file.Url}, file.Mirrors...)
			var lastErr error
			for attempt, u := range urls {
				pterm.Debug.Printfln("Downloading file: %s from %s | attempt: %d | Urls %d", file.Name, u, attempt+1, len(urls))

				req, err := grab.NewRequest(destPath, u)
				if err != nil {
					lastErr = err
					continue
				}
				req.NoResume = true

				if file.Hash != "" {
					hexHash, _ := hex.DecodeString(file.Hash)
					switch file.HashType {
					case "sha1":
						req.SetChecksum(sha1.New(), hexHash, false)
					case "sha256":
						req.SetChecksum(sha256.New(), hexHash, false)
					default:
						pterm.Warning.Printfln("Unsupported hash type: %s", file.HashType)
					}
				}

				resp := grab.DefaultClient.Do(req)
				if resp.Err() == nil {
					pterm.Debug.Printfln("Downloaded file: %s", file.Name)
					lastErr = nil
					break
				}
				lastErr = resp.Err()
				_ = os.Remove(destPath)
				pterm.Warning.Printfln("Failed to download:\nFile: %s (%s)\nError: %s", file.Name, u, lastErr.Error())
			}
			if lastErr != nil {
				failedMu.Lock()
				failed = append(failed, FailedDownload{File: file, Err: lastErr})
				failedMu.Unlock()
			}
		}()
	}
	wg.Wait()
	p.UpdateTitle("Download complete")
	p.Current = int(pCount.Load()) // Hack to fix race condition in progress bar printer
	p.Stop()
	return failed
}
