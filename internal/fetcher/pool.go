package fetcher

import (
	"fmt"
	"path"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/goyalyashpal/msvc-portable/internal/utils/logger"
)

// Job names one payload for FetchAll.
type Job struct {
	URL    string
	SHA256 string
	Name   string
}

// FetchAll downloads the jobs through a bounded pool of workers, tracking
// completion with a single count-based bar; the individual transfers run
// without their own bars so the output stays readable. Each job writes only
// its own cache file, which keeps per-file ordering deterministic regardless
// of worker count; workers=1 degenerates to the sequential case.
//
// The first failure is remembered and returned after the pool drains.
func (d *Downloader) FetchAll(jobs []Job, workers int) error {
	if len(jobs) == 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	log := logger.Logger()

	bar := progressbar.NewOptions(len(jobs),
		progressbar.OptionSetDescription("downloading"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(100*time.Millisecond),
	)

	queue := make(chan Job, len(jobs))
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range queue {
				bar.Describe(fmt.Sprintf("downloading %s", path.Base(job.Name)))
				if _, err := d.fetch(job.URL, job.SHA256, job.Name, false); err != nil {
					log.Errorf("downloading %s failed: %v", job.Name, err)
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
				}
				_ = bar.Add(1)
			}
		}()
	}

	for _, job := range jobs {
		queue <- job
	}
	close(queue)

	wg.Wait()
	_ = bar.Finish()
	return firstErr
}
