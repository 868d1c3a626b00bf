package rthumb

import "errors"

var (
	// ErrInvalidConfiguration is returned when a requested thumbnail type is not configured.
	ErrInvalidConfiguration = errors.New("invalid thumbnail type")
	ErrInvalidOwner         = errors.New("owner can't be nil")
	ErrInvalidAttribute     = errors.New("attribute name can't be empty")
	ErrInvalidFilename      = errors.New("invalid image filename")
	ErrUnknownField         = errors.New("unknown field")
)

// Owner is a record that stores the filename of a source image in one of its fields.
type Owner interface {
	GetField(name string) (string, error)
}

type AliasResolver interface {
	Resolve(path string) (string, error)
}

// URLBuilder converts a path into a URL that can be used by clients.
type URLBuilder interface {
	BuildURL(path string) string
}
