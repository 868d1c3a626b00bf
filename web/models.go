package web

import "github.com/ShoshinNikita/rthumb/rthumb"

// Service responses.
type (
	ThumbnailResponse struct {
		URL string `json:"url"`
	}

	ThumbnailTypesResponse struct {
		Types []ThumbnailType `json:"types"`
	}

	ThumbnailType struct {
		Name   string      `json:"name"`
		Width  int         `json:"width"`
		Height int         `json:"height"`
		Mode   rthumb.Mode `json:"mode"`
	}
)
