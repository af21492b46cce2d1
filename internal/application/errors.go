package application

import "errors"

var (
	// ErrNotEnoughFiles is returned when fewer than two paths are supplied.
	ErrNotEnoughFiles = errors.New("at least two files are required for comparison")
	// ErrFileNotFound is returned when an input path does not name a readable regular file.
	ErrFileNotFound = errors.New("file not found")
)
