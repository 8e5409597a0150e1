package handler

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"imagefilter/internal/adapters/converter"
	"imagefilter/internal/adapters/file"
	"imagefilter/internal/core/service"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidPNG(t *testing.T, c color.Color) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, c)
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// origin serves the images the service downloads from.
func origin(t *testing.T) *httptest.Server {
	t.Helper()

	white := solidPNG(t, color.White)
	black := solidPNG(t, color.Black)

	mux := http.NewServeMux()
	mux.HandleFunc("/white.png", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(white)
	})
	mux.HandleFunc("/black.png", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(black)
	})
	mux.HandleFunc("/page.html", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html></html>"))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// newService wires the real filter, tracker and remover writing artifacts to dir.
func newService(t *testing.T, dir string) (http.Handler, *service.ArtifactTracker) {
	t.Helper()

	downloader := file.NewDownloader(&http.Client{Timeout: 5 * time.Second}, 1<<20)
	filter := converter.NewImagingFilter(downloader, converter.Options{Dir: dir})
	tracker := service.NewArtifactTracker(file.NewRemover(nil), nil, time.Minute, time.Minute)

	return newRouter(NewImage(filter, tracker, nil, 10*time.Second)), tracker
}

func assertDirEmpty(t *testing.T, dir string) {
	t.Helper()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "artifacts left behind")
}

// centerGray returns the 8-bit red channel of the center pixel of a JPEG.
func centerGray(body []byte) (uint32, error) {
	img, err := jpeg.Decode(bytes.NewReader(body))
	if err != nil {
		return 0, err
	}

	r, _, _, _ := img.At(img.Bounds().Dx()/2, img.Bounds().Dy()/2).RGBA()
	return r >> 8, nil
}

func TestFlowFilteredImage(t *testing.T) {
	src := origin(t)
	dir := t.TempDir()
	router, tracker := newService(t, dir)

	rec := get(router, filteredImagePath(src.URL+"/white.png"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Body.Bytes())

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, converter.DefaultWidth, cfg.Width)
	assert.Equal(t, converter.DefaultHeight, cfg.Height)

	assertDirEmpty(t, dir)
	assert.Equal(t, 0, tracker.Live())
}

func TestFlowUnprocessable(t *testing.T) {
	src := origin(t)

	tests := []struct {
		name     string
		imageURL string
	}{
		{name: "not found", imageURL: src.URL + "/missing.png"},
		{name: "not an image", imageURL: src.URL + "/page.html"},
		{name: "unreachable host", imageURL: "http://127.0.0.1:1/x.jpg"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			router, _ := newService(t, dir)

			rec := get(router, filteredImagePath(tc.imageURL))

			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assertDirEmpty(t, dir)
		})
	}
}

func TestFlowRepeatedRequests(t *testing.T) {
	src := origin(t)
	dir := t.TempDir()
	router, _ := newService(t, dir)

	for range 2 {
		rec := get(router, filteredImagePath(src.URL+"/black.png"))
		require.Equal(t, http.StatusOK, rec.Code)
		assertDirEmpty(t, dir)
	}
}

func TestFlowConcurrentRequests(t *testing.T) {
	src := origin(t)
	dir := t.TempDir()
	router, tracker := newService(t, dir)

	srv := httptest.NewServer(router)
	defer srv.Close()

	images := map[string]func(uint32) bool{
		"/white.png": func(v uint32) bool { return v > 200 },
		"/black.png": func(v uint32) bool { return v < 50 },
	}

	var wg sync.WaitGroup
	for name, check := range images {
		for range 4 {
			wg.Add(1)
			go func() {
				defer wg.Done()

				res, err := srv.Client().Get(srv.URL + filteredImagePath(src.URL+name))
				if !assert.NoError(t, err) {
					return
				}
				defer res.Body.Close()

				body, err := io.ReadAll(res.Body)
				assert.NoError(t, err)
				assert.Equal(t, http.StatusOK, res.StatusCode)
				gray, err := centerGray(body)
				if assert.NoError(t, err) {
					assert.True(t, check(gray), "unexpected pixels for %s", name)
				}
			}()
		}
	}
	wg.Wait()

	assert.Eventually(t, func() bool {
		entries, err := os.ReadDir(dir)
		return err == nil && len(entries) == 0 && tracker.Live() == 0
	}, time.Second, 10*time.Millisecond)
}
