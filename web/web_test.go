package web

import (
	"encoding/json"
	"image/color"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ShoshinNikita/rthumb/pkg/alias"
	"github.com/ShoshinNikita/rthumb/rthumb"
	"github.com/ShoshinNikita/rthumb/thumbnails"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	server  *Server
	uploads string
}

func newTestServer(t *testing.T, publicURL string) *testServer {
	t.Helper()

	r := require.New(t)

	webRoot := t.TempDir()
	uploads := filepath.Join(webRoot, "uploads")
	r.NoError(os.Mkdir(uploads, 0o700))

	resolver, err := alias.New(map[string]string{"@frontend/web": webRoot})
	r.NoError(err)
	urls, err := NewURLBuilder(publicURL)
	r.NoError(err)

	generator, err := thumbnails.NewGenerator(
		rthumb.BehaviorConfig{SourcePath: "@frontend/web/uploads"},
		rthumb.Specs{
			"small":   {Width: 100, Height: 100},
			"preview": {Width: 300, Height: 200, Mode: rthumb.ModeInset},
		},
		resolver, urls,
	)
	r.NoError(err)

	server := NewServer(rthumb.Config{ServerPort: 8080}, generator, map[string]string{"uploads": uploads})

	return &testServer{
		server:  server,
		uploads: uploads,
	}
}

func (s *testServer) createImage(t *testing.T, filename string, width, height int) {
	t.Helper()

	img := imaging.New(width, height, color.NRGBA{R: 0xff, A: 0xff})
	require.NoError(t, imaging.Save(img, filepath.Join(s.uploads, filename)))
}

func (s *testServer) do(t *testing.T, method, target string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	s.server.httpServer.Handler.ServeHTTP(w, req)
	return w
}

func TestServer_handleThumbnail(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, "")
	s.createImage(t, "a.jpg", 400, 200)

	t.Run("ok", func(t *testing.T) {
		r := require.New(t)

		w := s.do(t, http.MethodGet, "/api/thumbnail/small/a.jpg")
		r.Equal(http.StatusOK, w.Code, w.Body.String())
		r.Equal("application/json", w.Header().Get("Content-Type"))
		r.NotEmpty(w.Header().Get(requestIDHeader))

		var resp ThumbnailResponse
		r.NoError(json.NewDecoder(w.Body).Decode(&resp))
		r.Equal("/uploads/small-a.jpg", resp.URL)
		r.FileExists(filepath.Join(s.uploads, "small-a.jpg"))

		// The thumbnail is served.
		w = s.do(t, http.MethodGet, resp.URL)
		r.Equal(http.StatusOK, w.Code)
		r.Equal("image/jpeg", w.Header().Get("Content-Type"))
		r.Contains(w.Header().Get("Cache-Control"), "max-age=")

		img, err := imaging.Decode(w.Body)
		r.NoError(err)
		r.Equal(100, img.Bounds().Dx())
		r.Equal(100, img.Bounds().Dy())
	})

	t.Run("static dirs and hidden files", func(t *testing.T) {
		r := require.New(t)

		r.NoError(os.Mkdir(filepath.Join(s.uploads, "nested"), 0o700))
		r.NoError(os.WriteFile(filepath.Join(s.uploads, ".small-b.jpg.1.tmp"), []byte("partial"), 0o600))

		for _, target := range []string{"/uploads/", "/uploads/nested/", "/uploads/nested", "/uploads/.small-b.jpg.1.tmp"} {
			w := s.do(t, http.MethodGet, target)
			r.Equal(http.StatusNotFound, w.Code, target)
			r.NotContains(w.Body.String(), "a.jpg", target)
		}

		w := s.do(t, http.MethodGet, "/uploads/a.jpg")
		r.Equal(http.StatusOK, w.Code)
	})

	t.Run("redirect", func(t *testing.T) {
		r := require.New(t)

		w := s.do(t, http.MethodGet, "/api/thumbnail/preview/a.jpg?redirect=1")
		r.Equal(http.StatusFound, w.Code)
		r.Equal("/uploads/preview-a.jpg", w.Header().Get("Location"))
	})

	t.Run("request id", func(t *testing.T) {
		r := require.New(t)

		req := httptest.NewRequest(http.MethodGet, "/api/thumbnail/small/a.jpg", nil)
		req.Header.Set(requestIDHeader, "test-id")
		w := httptest.NewRecorder()
		s.server.httpServer.Handler.ServeHTTP(w, req)
		r.Equal("test-id", w.Header().Get(requestIDHeader))
	})

	t.Run("normalized filename", func(t *testing.T) {
		r := require.New(t)

		s.createImage(t, "café.png", 400, 200)

		// "e" + combining acute accent.
		w := s.do(t, http.MethodGet, "/api/thumbnail/small/cafe%CC%81.png")
		r.Equal(http.StatusOK, w.Code, w.Body.String())
		r.FileExists(filepath.Join(s.uploads, "small-café.png"))
	})

	t.Run("errors", func(t *testing.T) {
		for target, wantCode := range map[string]int{
			"/api/thumbnail/huge/a.jpg":      http.StatusBadRequest,
			"/api/thumbnail/small/":          http.StatusBadRequest,
			"/api/thumbnail/small":           http.StatusBadRequest,
			"/api/thumbnail/small/x%2Fa.jpg": http.StatusBadRequest,
			"/api/thumbnail/small/b.jpg":     http.StatusNotFound,
		} {
			w := s.do(t, http.MethodGet, target)
			require.Equal(t, wantCode, w.Code, target)
		}

		w := s.do(t, http.MethodPost, "/api/thumbnail/small/a.jpg")
		require.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}

func TestServer_handleThumbnail_PublicURL(t *testing.T) {
	t.Parallel()

	r := require.New(t)

	s := newTestServer(t, "https://example.com")
	s.createImage(t, "my photo.jpg", 400, 200)

	w := s.do(t, http.MethodGet, "/api/thumbnail/small/my%20photo.jpg")
	r.Equal(http.StatusOK, w.Code, w.Body.String())

	var resp ThumbnailResponse
	r.NoError(json.NewDecoder(w.Body).Decode(&resp))
	r.Equal("https://example.com/uploads/small-my%20photo.jpg", resp.URL)
}

func TestServer_handleThumbnailTypes(t *testing.T) {
	t.Parallel()

	r := require.New(t)

	s := newTestServer(t, "")

	w := s.do(t, http.MethodGet, "/api/thumbnails")
	r.Equal(http.StatusOK, w.Code)

	var resp ThumbnailTypesResponse
	r.NoError(json.NewDecoder(w.Body).Decode(&resp))
	r.Equal(
		[]ThumbnailType{
			{Name: "preview", Width: 300, Height: 200, Mode: rthumb.ModeInset},
			{Name: "small", Width: 100, Height: 100, Mode: rthumb.ModeOutbound},
		},
		resp.Types,
	)
}

func TestParseThumbnailPath(t *testing.T) {
	t.Parallel()

	r := require.New(t)

	thumbnailType, filename, err := parseThumbnailPath("small/a b.jpg")
	r.NoError(err)
	r.Equal("small", thumbnailType)
	r.Equal("a b.jpg", filename)

	for _, path := range []string{"", "small", "small/", "/a.jpg", "small/x/a.jpg", `small/x\a.jpg`, "small/.."} {
		_, _, err := parseThumbnailPath(path)
		r.Error(err, path)
	}
}
