// Package database implements the sqlite-backed metadata store for the
// PACS file index.
package database

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// schemaDDL mirrors the DICOM information model: patients own studies,
// studies own series, series own instances. Referential integrity is
// kept logically by the indexer's insert order, foreign keys are not
// enforced by the engine.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS patients (
	patient_id TEXT PRIMARY KEY,
	patient_name TEXT NOT NULL,
	patient_birth_date TEXT,
	patient_sex TEXT,
	patient_age TEXT,
	medical_aid TEXT,
	referring_doctor TEXT,
	indexed_date TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	folder_path TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS studies (
	study_instance_uid TEXT PRIMARY KEY,
	patient_id TEXT NOT NULL,
	study_date TEXT,
	study_time TEXT,
	study_description TEXT,
	modality TEXT,
	accession_number TEXT,
	study_id TEXT,
	folder_path TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS series (
	series_instance_uid TEXT PRIMARY KEY,
	study_instance_uid TEXT NOT NULL,
	series_number INTEGER,
	series_description TEXT,
	modality TEXT,
	body_part TEXT,
	series_date TEXT,
	series_time TEXT,
	folder_path TEXT NOT NULL,
	instance_count INTEGER DEFAULT 0
);

CREATE TABLE IF NOT EXISTS instances (
	sop_instance_uid TEXT PRIMARY KEY,
	series_instance_uid TEXT NOT NULL,
	instance_number INTEGER,
	file_path TEXT NOT NULL UNIQUE,
	file_size INTEGER,
	acquisition_date TEXT,
	acquisition_time TEXT,
	slice_location REAL
);

CREATE INDEX IF NOT EXISTS idx_patient_name ON patients (patient_name);
CREATE INDEX IF NOT EXISTS idx_patient_id ON patients (patient_id);
CREATE INDEX IF NOT EXISTS idx_study_date ON studies (study_date);
CREATE INDEX IF NOT EXISTS idx_modality ON studies (modality);
CREATE INDEX IF NOT EXISTS idx_accession ON studies (accession_number);
`

// DBConn opens the metadata database at path and ensures the schema
// exists. WAL journaling keeps long indexing transactions from blocking
// concurrent search reads.
func DBConn(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open metadata db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping metadata db: %w", err)
	}

	if _, err := db.Exec(schemaDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init metadata schema: %w", err)
	}

	return db, nil
}

// Reset destructively clears the whole index, children first, so a full
// rescan starts from an empty state.
func Reset(tx *sql.Tx) error {
	for _, table := range []string{"instances", "series", "studies", "patients"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}
