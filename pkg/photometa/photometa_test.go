package photometa

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gdefombelle/pytune-helpers-images/internal/logger"
	"github.com/gdefombelle/pytune-helpers-images/internal/storage"
	"github.com/gdefombelle/pytune-helpers-images/pkg/geocode"
)

// Mock storage client
type MockDownloader struct {
	mock.Mock
}

func (m *MockDownloader) DownloadURL(ctx context.Context, rawURL string) ([]byte, error) {
	args := m.Called(ctx, rawURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockDownloader) DownloadToFile(ctx context.Context, rawURL string) (string, error) {
	args := m.Called(ctx, rawURL)
	return args.String(0), args.Error(1)
}

// Mock geocoder
type MockGeocoder struct {
	mock.Mock
}

func (m *MockGeocoder) Reverse(ctx context.Context, lat, lon float64) (geocode.Place, bool) {
	args := m.Called(ctx, lat, lon)
	return args.Get(0).(geocode.Place), args.Bool(1)
}

func plainJPEG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4)), nil))
	return buf.Bytes()
}

// southWestTIFF builds a minimal TIFF carrying a GPS block for
// 48°51'1.79" S, 2°21'0.03" W.
func southWestTIFF(t *testing.T) []byte {
	t.Helper()

	le := binary.LittleEndian
	buf := make([]byte, 128)

	copy(buf, "II")
	le.PutUint16(buf[2:], 42)
	le.PutUint32(buf[4:], 8)

	entry := func(off int, tag, typ uint16, count, value uint32) {
		le.PutUint16(buf[off:], tag)
		le.PutUint16(buf[off+2:], typ)
		le.PutUint32(buf[off+4:], count)
		le.PutUint32(buf[off+8:], value)
	}

	le.PutUint16(buf[8:], 1)
	entry(10, 0x8825, 4, 1, 26)
	le.PutUint32(buf[22:], 0)

	le.PutUint16(buf[26:], 4)
	entry(28, 0x0001, 2, 2, uint32('S'))
	entry(40, 0x0002, 5, 3, 80)
	entry(52, 0x0003, 2, 2, uint32('W'))
	entry(64, 0x0004, 5, 3, 104)
	le.PutUint32(buf[76:], 0)

	for i, v := range []uint32{48, 1, 51, 1, 179, 100} {
		le.PutUint32(buf[80+4*i:], v)
	}
	for i, v := range []uint32{2, 1, 21, 1, 3, 100} {
		le.PutUint32(buf[104+4*i:], v)
	}

	return buf
}

func TestCityCountry_GPSPhoto(t *testing.T) {
	ctx := context.Background()

	store := new(MockDownloader)
	store.On("DownloadURL", ctx, "http://minio:9000/photos/south.tif").
		Return(southWestTIFF(t), nil)

	// The coordinates handed to the geocoder must carry the southern
	// and western hemisphere signs.
	geocoder := new(MockGeocoder)
	geocoder.On("Reverse", ctx,
		mock.MatchedBy(func(lat float64) bool { return math.Abs(lat+48.8505) < 1e-3 }),
		mock.MatchedBy(func(lon float64) bool { return math.Abs(lon+2.3500) < 1e-3 }),
	).Return(geocode.Place{City: "Punta Arenas", Country: "Chile"}, true)

	p := New(store, geocoder)
	city, country := p.CityCountry(ctx, "http://minio:9000/photos/south.tif", "Lyon", "France")

	assert.Equal(t, "Punta Arenas", city)
	assert.Equal(t, "Chile", country)
	geocoder.AssertExpectations(t)
}

func TestCityCountry_NotFoundStaysQuiet(t *testing.T) {
	ctx := context.Background()

	var logBuf bytes.Buffer
	logger.SetOutput(&logBuf)
	defer logger.SetOutput(os.Stdout)
	logger.SetLevel("warn")
	defer logger.SetLevel("info")

	store := new(MockDownloader)
	store.On("DownloadURL", ctx, "http://minio:9000/photos/gone.jpg").
		Return(nil, fmt.Errorf("download: %w", storage.ErrObjectNotFound))

	p := New(store, new(MockGeocoder))
	city, country := p.CityCountry(ctx, "http://minio:9000/photos/gone.jpg", "Lyon", "France")

	assert.Equal(t, "Lyon", city)
	assert.Equal(t, "France", country)
	// Missing objects are logged at debug, below the warn threshold.
	assert.Empty(t, logBuf.String())
}

func TestCityCountry_DownloadFailure(t *testing.T) {
	ctx := context.Background()

	store := new(MockDownloader)
	store.On("DownloadURL", ctx, "http://minio:9000/photos/a.jpg").
		Return(nil, errors.New("connection refused"))

	p := New(store, new(MockGeocoder))
	city, country := p.CityCountry(ctx, "http://minio:9000/photos/a.jpg", "Lyon", "France")

	assert.Equal(t, "Lyon", city)
	assert.Equal(t, "France", country)
	store.AssertExpectations(t)
}

func TestCityCountry_NoGPSData(t *testing.T) {
	ctx := context.Background()

	store := new(MockDownloader)
	store.On("DownloadURL", ctx, "http://minio:9000/photos/a.jpg").
		Return(plainJPEG(t), nil)

	geocoder := new(MockGeocoder)

	p := New(store, geocoder)
	city, country := p.CityCountry(ctx, "http://minio:9000/photos/a.jpg", "", "")

	assert.Empty(t, city)
	assert.Empty(t, country)

	// The geocoder must never be called when no coordinate was found.
	geocoder.AssertNotCalled(t, "Reverse", mock.Anything, mock.Anything, mock.Anything)
}

func TestLocate(t *testing.T) {
	ctx := context.Background()

	store := new(MockDownloader)
	store.On("DownloadURL", ctx, "http://minio:9000/photos/a.jpg").
		Return(plainJPEG(t), nil)

	p := New(store, new(MockGeocoder))

	coord, err := p.Locate(ctx, "http://minio:9000/photos/a.jpg")
	require.NoError(t, err)
	assert.Nil(t, coord)
}

func TestLocate_DownloadFailure(t *testing.T) {
	ctx := context.Background()

	store := new(MockDownloader)
	store.On("DownloadURL", ctx, "http://minio:9000/photos/a.jpg").
		Return(nil, errors.New("no such key"))

	p := New(store, new(MockGeocoder))

	_, err := p.Locate(ctx, "http://minio:9000/photos/a.jpg")
	assert.Error(t, err)
}

func TestDownloadAll(t *testing.T) {
	ctx := context.Background()

	urls := make([]string, 6)
	store := new(MockDownloader)
	for i := range urls {
		urls[i] = fmt.Sprintf("http://minio:9000/photos/img_%d.jpg", i)
		store.On("DownloadToFile", ctx, urls[i]).Return(fmt.Sprintf("/tmp/img_%d.jpg", i), nil)
	}

	p := New(store, new(MockGeocoder))

	paths, err := p.DownloadAll(ctx, urls, 3)
	require.NoError(t, err)
	require.Len(t, paths, len(urls))
	for i, path := range paths {
		assert.Equal(t, fmt.Sprintf("/tmp/img_%d.jpg", i), path)
	}
	store.AssertExpectations(t)
}

func TestDownloadAll_PartialFailureCleansUp(t *testing.T) {
	ctx := context.Background()

	okPath := filepath.Join(t.TempDir(), "ok.jpg")
	require.NoError(t, os.WriteFile(okPath, []byte("image"), 0o644))

	store := new(MockDownloader)
	store.On("DownloadToFile", ctx, "http://minio:9000/photos/ok.jpg").Return(okPath, nil)
	store.On("DownloadToFile", ctx, "http://minio:9000/photos/bad.jpg").
		Return("", errors.New("no such key"))

	p := New(store, new(MockGeocoder))

	_, err := p.DownloadAll(ctx, []string{
		"http://minio:9000/photos/ok.jpg",
		"http://minio:9000/photos/bad.jpg",
	}, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such key")

	// The file that did download must not be orphaned.
	_, statErr := os.Stat(okPath)
	assert.True(t, os.IsNotExist(statErr))
}
