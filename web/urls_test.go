package web

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestURLBuilder(t *testing.T) {
	t.Parallel()

	relative, err := NewURLBuilder("")
	require.NoError(t, err)

	public, err := NewURLBuilder("https://example.com/static/")
	require.NoError(t, err)

	for _, tt := range []struct {
		path       string
		wantURL    string
		wantPublic string
	}{
		{
			path:       "/uploads/small-a.jpg",
			wantURL:    "/uploads/small-a.jpg",
			wantPublic: "https://example.com/static/uploads/small-a.jpg",
		},
		{
			path:       "uploads/small-a.jpg",
			wantURL:    "/uploads/small-a.jpg",
			wantPublic: "https://example.com/static/uploads/small-a.jpg",
		},
		{
			path:       "/uploads/small-my photo #1?.jpg",
			wantURL:    "/uploads/small-my%20photo%20%231%3F.jpg",
			wantPublic: "https://example.com/static/uploads/small-my%20photo%20%231%3F.jpg",
		},
		{
			path:       "/uploads/small-Персик.jpg",
			wantURL:    "/uploads/small-%D0%9F%D0%B5%D1%80%D1%81%D0%B8%D0%BA.jpg",
			wantPublic: "https://example.com/static/uploads/small-%D0%9F%D0%B5%D1%80%D1%81%D0%B8%D0%BA.jpg",
		},
		// Absolute urls are not changed.
		{
			path:       "https://cdn.example.com/small-a.jpg",
			wantURL:    "https://cdn.example.com/small-a.jpg",
			wantPublic: "https://cdn.example.com/small-a.jpg",
		},
		// Paths of absolute urls are escaped the same way.
		{
			path:       "https://cdn.example.com/static/small-my photo #1?.jpg",
			wantURL:    "https://cdn.example.com/static/small-my%20photo%20%231%3F.jpg",
			wantPublic: "https://cdn.example.com/static/small-my%20photo%20%231%3F.jpg",
		},
		{
			path:       "https://cdn.example.com",
			wantURL:    "https://cdn.example.com",
			wantPublic: "https://cdn.example.com",
		},
		{
			path:       "//cdn.example.com/small-a.jpg",
			wantURL:    "//cdn.example.com/small-a.jpg",
			wantPublic: "//cdn.example.com/small-a.jpg",
		},
	} {
		t.Run("", func(t *testing.T) {
			r := require.New(t)
			r.Equal(tt.wantURL, relative.BuildURL(tt.path))
			r.Equal(tt.wantPublic, public.BuildURL(tt.path))
		})
	}
}

func TestURLBuilder_SameEscaping(t *testing.T) {
	t.Parallel()

	r := require.New(t)

	relative, err := NewURLBuilder("")
	r.NoError(err)

	const name = "small-my photo #1?.jpg"

	relativeURL := relative.BuildURL("/thumbnails/" + name)
	absoluteURL := relative.BuildURL("https://cdn.example.com/thumbnails/" + name)
	r.Equal("https://cdn.example.com"+relativeURL, absoluteURL)
}

func TestNewURLBuilder_Errors(t *testing.T) {
	t.Parallel()

	for _, publicURL := range []string{"example.com", "/static", "http://[::1"} {
		_, err := NewURLBuilder(publicURL)
		require.Error(t, err, publicURL)
	}
}
