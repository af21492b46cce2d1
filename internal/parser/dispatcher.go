package parser

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Format identifies the parser responsible for a file.
type Format int

const (
	// FormatUnsupported marks extensions no parser handles.
	FormatUnsupported Format = iota
	// FormatProperties handles .properties files.
	FormatProperties
	// FormatYAML handles .yml and .yaml files.
	FormatYAML
	// FormatTOML handles .toml files.
	FormatTOML
)

var extensions = map[string]Format{
	".properties": FormatProperties,
	".yml":        FormatYAML,
	".yaml":       FormatYAML,
	".toml":       FormatTOML,
}

func (f Format) String() string {
	switch f {
	case FormatProperties:
		return "properties"
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	default:
		return "unsupported"
	}
}

// DetectFormat resolves the parser for path from its case-insensitive extension.
func DetectFormat(path string) Format {
	if format, ok := extensions[strings.ToLower(filepath.Ext(path))]; ok {
		return format
	}
	return FormatUnsupported
}

// SupportedExtensions lists the recognised file extensions in a stable order.
func SupportedExtensions() []string {
	return []string{".properties", ".yml", ".yaml", ".toml"}
}

// Parse runs the parser selected by format over content.
func Parse(format Format, content string) (FlatMap, error) {
	content = strings.TrimPrefix(content, "\ufeff")
	switch format {
	case FormatProperties:
		return ParseProperties(content), nil
	case FormatYAML:
		return ParseYAML(content)
	case FormatTOML:
		return ParseTOML(content)
	default:
		return FlatMap{}, ErrUnsupportedFormat
	}
}

// ReadFileFunc loads the raw bytes of a file.
type ReadFileFunc func(name string) ([]byte, error)

// Dispatcher parses files by extension and contains every failure: problems
// are logged and the offending file yields an empty map.
type Dispatcher struct {
	logger   *zap.Logger
	readFile ReadFileFunc
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithReadFile overrides how file contents are loaded, primarily for tests.
func WithReadFile(fn ReadFileFunc) DispatcherOption {
	return func(d *Dispatcher) {
		d.readFile = fn
	}
}

// NewDispatcher constructs a Dispatcher that reports through logger.
func NewDispatcher(logger *zap.Logger, opts ...DispatcherOption) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dispatcher{
		logger:   logger,
		readFile: os.ReadFile,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ParseFile reads and parses the file at path.
func (d *Dispatcher) ParseFile(path string) FlatMap {
	format := DetectFormat(path)
	if format == FormatUnsupported {
		d.warnUnsupported(path)
		return FlatMap{}
	}

	data, err := d.readFile(path)
	if err != nil {
		d.logger.Error("failed to read file", zap.String("path", path), zap.Error(err))
		return FlatMap{}
	}
	return d.parse(format, path, string(data))
}

// ParseContent parses in-memory content, selecting the parser from name.
func (d *Dispatcher) ParseContent(name, content string) FlatMap {
	format := DetectFormat(name)
	if format == FormatUnsupported {
		d.warnUnsupported(name)
		return FlatMap{}
	}
	return d.parse(format, name, content)
}

func (d *Dispatcher) parse(format Format, path, content string) FlatMap {
	out, err := Parse(format, content)
	if err != nil {
		d.logger.Error("failed to parse file",
			zap.String("path", path),
			zap.Stringer("format", format),
			zap.Error(err),
		)
		return FlatMap{}
	}

	d.logger.Debug("parsed file",
		zap.String("path", path),
		zap.Stringer("format", format),
		zap.Int("keys", out.Len()),
	)
	return out
}

func (d *Dispatcher) warnUnsupported(path string) {
	d.logger.Warn("unsupported file extension, file contributes no keys",
		zap.String("path", path),
		zap.String("extension", filepath.Ext(path)),
	)
}
