package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"net/http"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ShoshinNikita/rthumb/pkg/misc"
	"github.com/ShoshinNikita/rthumb/pkg/rlog"
	"github.com/ShoshinNikita/rthumb/rthumb"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/text/unicode/norm"
)

// ownerAttribute is the name of the owner field with the image filename. Requests
// contain only filenames, so owners are just wrappers around them.
const ownerAttribute = "filename"

type ThumbnailGenerator interface {
	GetThumbnail(owner rthumb.Owner, attribute, thumbnailType string) (string, error)
	Specs() rthumb.Specs
}

type Server struct {
	httpServer *http.Server

	generator ThumbnailGenerator
}

// NewServer prepares a new server. staticDirs maps url prefixes to directories
// that should be served as is, usually a directory with thumbnails.
func NewServer(cfg rthumb.Config, generator ThumbnailGenerator, staticDirs map[string]string) (s *Server) {
	s = &Server{
		generator: generator,
	}

	mux := http.NewServeMux()

	// Static
	for pattern, dir := range staticDirs {
		pattern = misc.EnsureSuffix(misc.EnsurePrefix(pattern, "/"), "/")

		var handler http.Handler = http.FileServer(staticFS{http.Dir(dir)})
		handler = cacheMiddleware(30*24*time.Hour, handler)
		handler = http.StripPrefix(pattern, handler)
		mux.Handle(pattern, handler)

		rlog.Infof("serve %q on %q", dir, pattern)
	}

	// API
	mux.HandleFunc("/api/thumbnail/", s.handleThumbnail)
	mux.HandleFunc("/api/thumbnails", s.handleThumbnailTypes)

	// Debug
	mux.Handle("/debug/metrics", promhttp.Handler())

	handler := loggingMiddleware(mux)

	s.httpServer = &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

// staticFS serves only regular files. Directory listings and hidden files (for example,
// temp files of thumbnails being generated) are reported as missing.
type staticFS struct {
	fs http.FileSystem
}

func (s staticFS) Open(name string) (http.File, error) {
	if strings.HasPrefix(path.Base(name), ".") {
		return nil, fs.ErrNotExist
	}

	f, err := s.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, fs.ErrNotExist
	}
	return f, nil
}

func (s *Server) Start() error {
	rlog.Infof("start web server on %q", s.httpServer.Addr)

	err := s.httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// handleThumbnail returns the url of the thumbnail: /api/thumbnail/<type>/<filename>.
// With "redirect" query param it redirects to the thumbnail.
func (s *Server) handleThumbnail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		code := http.StatusMethodNotAllowed
		http.Error(w, http.StatusText(code), code)
		return
	}

	thumbnailType, filename, err := parseThumbnailPath(strings.TrimPrefix(r.URL.Path, "/api/thumbnail/"))
	if err != nil {
		writeBadRequestError(w, "%s", err)
		return
	}

	owner := rthumb.MapOwner{ownerAttribute: filename}

	thumbnailURL, err := s.generator.GetThumbnail(owner, ownerAttribute, thumbnailType)
	if err != nil {
		switch {
		case errors.Is(err, rthumb.ErrInvalidConfiguration),
			errors.Is(err, rthumb.ErrInvalidFilename),
			errors.Is(err, image.ErrFormat):
			writeBadRequestError(w, "couldn't get thumbnail: %s", err)
		case errors.Is(err, fs.ErrNotExist):
			writeError(w, http.StatusNotFound, "image %q not found", filename)
		default:
			writeInternalServerError(w, "couldn't get thumbnail: %s", err)
		}
		return
	}

	if r.FormValue("redirect") != "" {
		http.Redirect(w, r, thumbnailURL, http.StatusFound)
		return
	}

	writeJSON(w, ThumbnailResponse{URL: thumbnailURL})
}

// parseThumbnailPath splits "<type>/<filename>". Filenames are normalized to NFC, so
// names typed on different systems point to the same file.
func parseThumbnailPath(path string) (thumbnailType, filename string, err error) {
	thumbnailType, filename, ok := strings.Cut(path, "/")
	if !ok || thumbnailType == "" || filename == "" {
		return "", "", errors.New("path must be in format /api/thumbnail/<type>/<filename>")
	}
	if strings.ContainsAny(filename, `/\`) || !filepath.IsLocal(filename) {
		return "", "", fmt.Errorf("invalid filename %q", filename)
	}
	return thumbnailType, norm.NFC.String(filename), nil
}

func (s *Server) handleThumbnailTypes(w http.ResponseWriter, _ *http.Request) {
	specs := s.generator.Specs()

	resp := ThumbnailTypesResponse{
		Types: make([]ThumbnailType, 0, len(specs)),
	}
	for _, name := range specs.Types() {
		spec := specs[name]
		resp.Types = append(resp.Types, ThumbnailType{
			Name:   name,
			Width:  spec.Width,
			Height: spec.Height,
			Mode:   spec.Mode,
		})
	}

	writeJSON(w, resp)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		rlog.Errorf("couldn't write response: %s", err)
	}
}

func writeBadRequestError(w http.ResponseWriter, format string, a ...any) {
	writeError(w, http.StatusBadRequest, format, a...)
}

func writeInternalServerError(w http.ResponseWriter, format string, a ...any) {
	writeError(w, http.StatusInternalServerError, format, a...)
}

func writeError(w http.ResponseWriter, code int, format string, a ...any) {
	http.Error(w, fmt.Sprintf(format, a...), code)
}
