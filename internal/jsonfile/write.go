// Package jsonfile implements the StateStore backed by a single JSON file.
// This file provides the atomic write helpers.
// Implements: docs/ARCHITECTURE § State Store (atomic write).
package jsonfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// writeTemp writes data to a new temp file in the directory of path and
// fsyncs it. The caller owns the returned file name.
func writeTemp(path string, data []byte) (string, error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".state-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("writing document: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("closing temp file: %w", err)
	}
	return tmpName, nil
}

// writeAtomic replaces path with data using the temp-file, fsync, rename
// pattern. Readers observe either the old or the new document.
func writeAtomic(path string, data []byte) error {
	tmpName, err := writeTemp(path, data)
	if err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// linkFile is os.Link; tests replace it to simulate filesystems without
// hard links.
var linkFile = os.Link

// createExclusive writes data to path only if path does not exist. The hard
// link fails with fs.ErrExist when another writer got there first, so an
// existing document is never clobbered. Filesystems that reject hard links
// fall back to an O_EXCL create. Reports whether the file was created.
func createExclusive(path string, data []byte) (bool, error) {
	tmpName, err := writeTemp(path, data)
	if err != nil {
		return false, err
	}
	defer os.Remove(tmpName)

	err = linkFile(tmpName, path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrExist):
		return false, nil
	default:
		return createExclusiveOpen(path, data)
	}
}

// createExclusiveOpen creates path with O_EXCL and writes data in place. A
// concurrent reader may see a partial document until the write completes.
func createExclusiveOpen(path string, data []byte) (bool, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return false, nil
		}
		return false, fmt.Errorf("creating document: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return false, fmt.Errorf("writing document: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(path)
		return false, fmt.Errorf("syncing document: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return false, fmt.Errorf("closing document: %w", err)
	}
	return true, nil
}
