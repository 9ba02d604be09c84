// Package storage defines the working-root file-system abstraction.
package storage

import "github.com/starford/autotag/internal/models"

// Provider is the interface for file operations under the working root.
type Provider interface {
	// List returns metadata for every file with extension ext under dir
	// (relative to root). A missing dir yields an empty list.
	List(dir, ext string) ([]models.FileMetadata, error)
	// Read returns the raw bytes of the file at path (relative to root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to root).
	Write(path string, content []byte) error
	// Delete removes the file at path (relative to root).
	Delete(path string) error
	// Exists reports whether a regular file exists at path.
	Exists(path string) (bool, error)
}
