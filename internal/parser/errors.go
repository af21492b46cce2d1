package parser

import "errors"

var (
	// ErrUnsupportedFormat is returned when no parser handles a file extension.
	ErrUnsupportedFormat = errors.New("unsupported file extension")
	// ErrMalformedYAML wraps decoder diagnostics for invalid YAML documents.
	ErrMalformedYAML = errors.New("malformed YAML")
	// ErrMalformedTOML wraps decoder diagnostics for invalid TOML documents.
	ErrMalformedTOML = errors.New("malformed TOML")
	// ErrRootNotMapping is returned when a document root is a scalar or a sequence.
	ErrRootNotMapping = errors.New("document root must be a mapping")
)
