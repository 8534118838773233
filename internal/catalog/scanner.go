// package catalog reads the target directory and turns track file names into a [models.Catalog]
package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/northis/ym-api-organizer/internal/models"
	"github.com/northis/ym-api-organizer/internal/shared"
)

// Scan lists dir and returns the catalog of track files found in it.
//
// Files whose names do not parse are ignored. Leftover temp files of interrupted runs are collected in
// [models.Catalog.Stale]. Fails with [shared.ErrCatalogUnreadable] when the directory cannot be listed.
func Scan(dir string) (*models.Catalog, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrCatalogUnreadable, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", shared.ErrCatalogUnreadable, dir)
	}

	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrCatalogUnreadable, err)
	}

	var entries []models.LocalEntry
	var stale []string
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}

		name := de.Name()
		if IsTempFilename(name) {
			stale = append(stale, filepath.Join(dir, name))
			continue
		}

		if entry, ok := ParseFilename(name); ok {
			entries = append(entries, entry)
		}
	}

	return models.NewCatalog(dir, entries, stale), nil
}

// RemoveStale deletes the leftover temp files recorded in c and returns the paths it removed.
func RemoveStale(c *models.Catalog) ([]string, error) {
	var removed []string
	for _, path := range c.Stale {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("failed to remove stale file %s: %w", path, err)
		}
		removed = append(removed, path)
	}
	return removed, nil
}
