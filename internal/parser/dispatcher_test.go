package parser

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedDispatcher(t *testing.T, opts ...DispatcherOption) (*Dispatcher, *observer.ObservedLogs) {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	return NewDispatcher(zap.New(core), opts...), logs
}

func TestDetectFormat(t *testing.T) {
	t.Parallel()

	cases := map[string]Format{
		"app.properties":      FormatProperties,
		"APP.PROPERTIES":      FormatProperties,
		"conf/app.yml":        FormatYAML,
		"conf/app.YAML":       FormatYAML,
		"settings.toml":       FormatTOML,
		"notes.txt":           FormatUnsupported,
		"no-extension":        FormatUnsupported,
		"archive.yaml.backup": FormatUnsupported,
	}

	for path, want := range cases {
		assert.Equal(t, want, DetectFormat(path), path)
	}
}

func TestDispatcherParseFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	props := filepath.Join(dir, "app.properties")
	yml := filepath.Join(dir, "app.yaml")
	require.NoError(t, os.WriteFile(props, []byte("key1=value1\nkey2=value2"), 0o644))
	require.NoError(t, os.WriteFile(yml, []byte("key1: value1\nkey2:\n  nestedKey: nestedValue"), 0o644))

	d, _ := newObservedDispatcher(t)

	got := d.ParseFile(props)
	assert.Equal(t, map[string]string{"key1": "value1", "key2": "value2"}, got.ToMap())

	got = d.ParseFile(yml)
	assert.Equal(t, map[string]string{"key1": "value1", "key2.nestedKey": "nestedValue"}, got.ToMap())
}

func TestDispatcherUnsupportedExtension(t *testing.T) {
	t.Parallel()

	readCalled := false
	d, logs := newObservedDispatcher(t, WithReadFile(func(string) ([]byte, error) {
		readCalled = true
		return []byte("key=value"), nil
	}))

	got := d.ParseFile("notes.txt")
	assert.Equal(t, 0, got.Len())
	assert.False(t, readCalled, "unsupported files must not be read")

	warnings := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "notes.txt", warnings[0].ContextMap()["path"])
	assert.Equal(t, ".txt", warnings[0].ContextMap()["extension"])
}

func TestDispatcherContainsReadFailure(t *testing.T) {
	t.Parallel()

	d, logs := newObservedDispatcher(t, WithReadFile(func(string) ([]byte, error) {
		return nil, errors.New("permission denied")
	}))

	got := d.ParseFile("/etc/app.properties")
	assert.Equal(t, 0, got.Len())

	entries := logs.FilterLevelExact(zapcore.ErrorLevel).All()
	require.Len(t, entries, 1)
	assert.Equal(t, "/etc/app.properties", entries[0].ContextMap()["path"])
	assert.Contains(t, entries[0].ContextMap()["error"], "permission denied")
}

func TestDispatcherContainsParseFailure(t *testing.T) {
	t.Parallel()

	d, logs := newObservedDispatcher(t)

	got := d.ParseContent("broken.yml", "key: [unclosed\n  other: value")
	assert.Equal(t, 0, got.Len())

	entries := logs.FilterLevelExact(zapcore.ErrorLevel).All()
	require.Len(t, entries, 1)
	assert.Equal(t, "broken.yml", entries[0].ContextMap()["path"])
	assert.Contains(t, entries[0].ContextMap()["error"], ErrMalformedYAML.Error())
}

func TestDispatcherParseContentStripsBOM(t *testing.T) {
	t.Parallel()

	d, _ := newObservedDispatcher(t)
	got := d.ParseContent("app.properties", "\ufeffkey=value")

	value, ok := got.Get("key")
	require.True(t, ok)
	assert.Equal(t, "value", value)
}

func TestParseUnsupportedFormat(t *testing.T) {
	t.Parallel()

	_, err := Parse(FormatUnsupported, "key=value")
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestNewDispatcherNilLogger(t *testing.T) {
	t.Parallel()

	d := NewDispatcher(nil)
	assert.Equal(t, 0, d.ParseFile("missing.ini").Len())
}
