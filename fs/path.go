// Package fs resolves on-disk locations for the metadata index and
// filters candidate DICOM files during a scan.
package fs

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	// EnvDBPath overrides the resolved metadata database location.
	EnvDBPath = "PACS_DB_PATH"
	// EnvDataDir overrides the application data directory.
	EnvDataDir = "PACS_DATA_DIR"

	IndexDirName = "orthanc-index"
	DBFileName   = "pacs_metadata.db"
)

// MetadataDBPath resolves the canonical location of the metadata
// database file. An explicit env override wins; otherwise the index
// lives in its own subdirectory of the data dir, created on first use,
// falling back to the data dir itself when creation fails. The
// subdirectory keeps the index out of the imaging server's internal
// storage tree, which must never be written to by this service.
func MetadataDBPath() string {
	if override := os.Getenv(EnvDBPath); override != "" {
		if abs, err := filepath.Abs(override); err == nil {
			return abs
		}
		return override
	}

	dataDir := os.Getenv(EnvDataDir)
	if dataDir == "" {
		if wd, err := os.Getwd(); err == nil {
			dataDir = wd
		} else {
			dataDir = "."
		}
	}

	indexDir := filepath.Join(dataDir, IndexDirName)
	if err := os.MkdirAll(indexDir, 0o755); err != nil {
		return filepath.Join(dataDir, DBFileName)
	}

	return filepath.Join(indexDir, DBFileName)
}

// IsDICOMCandidate reports whether a file name looks like a DICOM file.
// Extensionless files are included, DICOM files on a NAS frequently
// carry no extension. This is an inclusion heuristic, not a validation;
// the extractor decides whether the file really parses.
func IsDICOMCandidate(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range []string{".dcm", ".dicom", ".ima", ".img"} {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return !strings.Contains(name, ".")
}
