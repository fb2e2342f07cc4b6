// Package snapshot renders the public map page to a PNG with headless Chrome
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"golang.org/x/sync/singleflight"
)

var ErrInvalidURL = errors.New("snapshot url must be http or https")

// MapReadySelector is present on the embed page once Leaflet has drawn
const MapReadySelector = "#map.leaflet-container"

type captureFunc func(ctx context.Context, url string) ([]byte, error)

type Service struct {
	capture  captureFunc
	timeout  time.Duration
	cacheTTL time.Duration

	group  singleflight.Group
	mu     sync.Mutex
	cached map[string]cachedShot
}

type cachedShot struct {
	png   []byte
	taken time.Time
}

// NewService creates a chromedp backed snapshot service. Captures of the same
// url within cacheTTL reuse the previous image.
func NewService(timeout, cacheTTL time.Duration) *Service {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Service{
		capture:  captureWithChromedp,
		timeout:  timeout,
		cacheTTL: cacheTTL,
		cached:   make(map[string]cachedShot),
	}
}

// Capture returns a PNG of the page at rawURL
func (s *Service) Capture(ctx context.Context, rawURL string) ([]byte, error) {
	if !validURL(rawURL) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	if png, ok := s.fromCache(rawURL); ok {
		return png, nil
	}

	result, err, _ := s.group.Do(rawURL, func() (interface{}, error) {
		// callers sharing this capture must not fail when the first one leaves
		captureCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()

		png, err := s.capture(captureCtx, rawURL)
		if err != nil {
			return nil, err
		}
		if len(png) == 0 {
			return nil, fmt.Errorf("empty screenshot for %s", rawURL)
		}
		s.store(rawURL, png)
		return png, nil
	})
	if err != nil {
		log.Printf("Snapshot of %s failed: %v", rawURL, err)
		return nil, err
	}
	return result.([]byte), nil
}

func (s *Service) fromCache(key string) ([]byte, bool) {
	if s.cacheTTL <= 0 {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	shot, ok := s.cached[key]
	if !ok || time.Since(shot.taken) > s.cacheTTL {
		return nil, false
	}
	return shot.png, true
}

func (s *Service) store(key string, png []byte) {
	if s.cacheTTL <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cached[key] = cachedShot{png: png, taken: time.Now()}
}

func validURL(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}

func captureWithChromedp(ctx context.Context, rawURL string) ([]byte, error) {
	log.Printf("Capturing map snapshot of %s", rawURL)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.WindowSize(1280, 1024),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	taskCtx, taskCancel := chromedp.NewContext(allocCtx)
	defer taskCancel()

	var png []byte
	err := chromedp.Run(taskCtx,
		chromedp.Navigate(rawURL),
		chromedp.WaitVisible(MapReadySelector, chromedp.ByQuery),
		// tiles load after the container appears
		chromedp.Sleep(2*time.Second),
		chromedp.CaptureScreenshot(&png),
	)
	if err != nil {
		return nil, fmt.Errorf("chromedp capture failed: %w", err)
	}
	return png, nil
}
