// Package compare reconciles the key sets of several parsed configuration
// files. It builds the union of keys in first-seen order and classifies each
// key as matched when every file holds the same value once whitespace is
// ignored. Files that lack a key report the configured missing sentinel.
package compare
