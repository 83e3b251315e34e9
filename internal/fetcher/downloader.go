package fetcher

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/goyalyashpal/msvc-portable/internal/utils/logger"
	"github.com/goyalyashpal/msvc-portable/internal/utils/network"
)

// IntegrityError reports a payload whose content digest does not match the
// manifest. It is never retried: a mismatch means transport corruption or a
// stale/compromised manifest, and a silent retry could mask either. The
// cache file is deliberately left on disk for inspection.
type IntegrityError struct {
	Name string
	Want string
	Got  string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("digest mismatch for %s: manifest says %s, got %s", e.Name, e.Want, e.Got)
}

// Downloader retrieves payloads with streaming SHA-256 verification and a
// filename-keyed content cache. The byte total lives on the downloader, not
// in package state, so runs and tests stay independent.
type Downloader struct {
	client   *network.Client
	cacheDir string

	totalBytes atomic.Int64
}

// New returns a downloader caching under cacheDir.
func New(client *network.Client, cacheDir string) *Downloader {
	return &Downloader{client: client, cacheDir: cacheDir}
}

// TotalBytes reports how many bytes actually crossed the network (cache hits
// excluded), for the end-of-run summary.
func (d *Downloader) TotalBytes() int64 {
	return d.totalBytes.Load()
}

// Fetch returns the verified bytes for url. name keys the cache entry and
// may carry a sub-folder ("crtd/foo.msi"). A cached file whose digest
// already matches is returned without touching the network; one that does
// not verify is treated as absent and re-fetched.
func (d *Downloader) Fetch(url, sha256hex, name string) ([]byte, error) {
	return d.fetch(url, sha256hex, name, true)
}

func (d *Downloader) fetch(url, sha256hex, name string, progress bool) ([]byte, error) {
	log := logger.Logger()
	want := strings.ToLower(sha256hex)
	fpath := filepath.Join(d.cacheDir, filepath.FromSlash(name))

	if data, err := os.ReadFile(fpath); err == nil {
		sum := sha256.Sum256(data)
		if hex.EncodeToString(sum[:]) == want {
			log.Debugf("%s: cache hit", name)
			return data, nil
		}
		log.Debugf("%s: cached copy fails verification, refetching", name)
	}

	if err := os.MkdirAll(filepath.Dir(fpath), 0755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	resp, err := d.client.Open(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	f, err := os.Create(fpath)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", fpath, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	hasher := sha256.New()
	w := io.MultiWriter(f, &buf, hasher)

	if progress {
		// Percent progress needs Content-Length; progressbar degrades to a
		// spinner when the server does not send one.
		bar := newByteBar(resp.ContentLength, name)
		w = io.MultiWriter(w, bar)
		defer func() { _ = bar.Finish() }()
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return nil, &network.FetchError{URL: url, Err: err}
	}

	got := hex.EncodeToString(hasher.Sum(nil))
	if got != want {
		// The partial file stays behind on purpose.
		return nil, &IntegrityError{Name: name, Want: want, Got: got}
	}

	d.totalBytes.Add(int64(buf.Len()))
	return buf.Bytes(), nil
}

func newByteBar(total int64, name string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(name),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowBytes(true),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}
