// Package photometa wires the image pipeline end to end: fetch a photo
// from object storage, read its EXIF block, extract GPS coordinates and
// reverse geocode them into a place name.
package photometa

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/gdefombelle/pytune-helpers-images/internal/logger"
	"github.com/gdefombelle/pytune-helpers-images/internal/storage"
	"github.com/gdefombelle/pytune-helpers-images/internal/worker"
	"github.com/gdefombelle/pytune-helpers-images/pkg/exiftags"
	"github.com/gdefombelle/pytune-helpers-images/pkg/geocode"
	"github.com/gdefombelle/pytune-helpers-images/pkg/gps"
)

// Downloader fetches image objects from storage.
type Downloader interface {
	DownloadURL(ctx context.Context, rawURL string) ([]byte, error)
	DownloadToFile(ctx context.Context, rawURL string) (string, error)
}

// Geocoder resolves coordinates to place names.
type Geocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (geocode.Place, bool)
}

// Pipeline runs photo metadata extraction against its collaborators.
type Pipeline struct {
	storage  Downloader
	geocoder Geocoder
}

// New creates a pipeline from its collaborators.
func New(storage Downloader, geocoder Geocoder) *Pipeline {
	return &Pipeline{storage: storage, geocoder: geocoder}
}

// CityCountry downloads the image at imageURL, extracts its GPS
// coordinate and reverse geocodes it. Photos without usable location
// metadata are the common case, so every failure along the way falls
// back to the provided defaults instead of returning an error.
func (p *Pipeline) CityCountry(ctx context.Context, imageURL, defaultCity, defaultCountry string) (city, country string) {
	data, err := p.storage.DownloadURL(ctx, imageURL)
	if err != nil {
		switch {
		case storage.IsNotFoundError(err):
			// Missing objects are routine; don't alarm the logs.
			logger.Debug("Image %s not found: %v", imageURL, err)
		case storage.IsAuthError(err):
			logger.Error("Storage authentication failed for %s: %v", imageURL, err)
		default:
			logger.Warn("Failed to download %s: %v", imageURL, err)
		}
		return defaultCity, defaultCountry
	}

	tags := exiftags.Read(data)
	coord := gps.ExtractFromTags(tags)
	if coord == nil {
		return defaultCity, defaultCountry
	}

	place, ok := p.geocoder.Reverse(ctx, coord.Latitude, coord.Longitude)
	if !ok {
		return defaultCity, defaultCountry
	}
	return place.City, place.Country
}

// Locate downloads the image at imageURL and returns its extracted
// coordinate, or nil when the photo carries no usable GPS metadata.
func (p *Pipeline) Locate(ctx context.Context, imageURL string) (*gps.Coordinate, error) {
	data, err := p.storage.DownloadURL(ctx, imageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", imageURL, err)
	}
	return gps.ExtractFromTags(exiftags.Read(data)), nil
}

// DownloadAll fetches the images behind the given URLs into local
// temporary files, at most concurrency at a time. The returned paths
// are in the same order as the URLs. On error any already-downloaded
// temporary files are removed before returning.
func (p *Pipeline) DownloadAll(ctx context.Context, urls []string, concurrency int) ([]string, error) {
	pool := worker.NewPool(concurrency)
	paths := make([]string, len(urls))

	var (
		mu       sync.Mutex
		firstErr error
	)

	for i, u := range urls {
		i, u := i, u
		pool.Submit(func() {
			path, err := p.storage.DownloadToFile(ctx, u)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			paths[i] = path
		})
	}
	pool.Wait()

	if firstErr != nil {
		for _, path := range paths {
			if path != "" {
				os.Remove(path)
			}
		}
		return nil, firstErr
	}
	return paths, nil
}
