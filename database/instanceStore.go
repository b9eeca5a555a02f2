package database

import (
	"database/sql"

	"pacs-index-api/models"
)

// InstanceStore implements database operations for instance management.
type InstanceStore struct {
	db *sql.DB
}

// NewInstanceStore returns a InstanceStore implementation.
func NewInstanceStore(db *sql.DB) *InstanceStore {
	return &InstanceStore{
		db: db,
	}
}

// Upsert writes an instance row, replacing any previous row with the
// same sop_instance_uid or the same file_path. Re-scanning a file is
// last-write-wins, never a duplicate.
func (store *InstanceStore) Upsert(i *models.Instance, tx *sql.Tx) error {
	var sliceLocation any
	if i.SliceLocation != nil {
		sliceLocation = *i.SliceLocation
	}

	_, err := conn(store.db, tx).Exec(`
		INSERT OR REPLACE INTO instances
		(sop_instance_uid, series_instance_uid, instance_number,
		 file_path, file_size, acquisition_date, acquisition_time, slice_location)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		i.SOPInstanceUID, i.SeriesInstanceUID, i.InstanceNumber,
		i.FilePath, i.FileSize, i.AcquisitionDate, i.AcquisitionTime, sliceLocation)
	return err
}

// Get gets an instance by SOP instance UID.
func (store *InstanceStore) Get(sopUID string) (*models.Instance, error) {
	i := models.Instance{}
	var sliceLocation sql.NullFloat64
	err := store.db.QueryRow(`
		SELECT sop_instance_uid, series_instance_uid, instance_number,
		       file_path, file_size, acquisition_date, acquisition_time, slice_location
		FROM instances WHERE sop_instance_uid = ?`, sopUID).
		Scan(&i.SOPInstanceUID, &i.SeriesInstanceUID, &i.InstanceNumber,
			&i.FilePath, &i.FileSize, &i.AcquisitionDate, &i.AcquisitionTime, &sliceLocation)
	if err != nil {
		return nil, err
	}
	if sliceLocation.Valid {
		i.SliceLocation = &sliceLocation.Float64
	}
	return &i, nil
}

// Count returns the total number of indexed instances.
func (store *InstanceStore) Count(tx *sql.Tx) (int, error) {
	var n int
	err := conn(store.db, tx).QueryRow("SELECT COUNT(*) FROM instances").Scan(&n)
	return n, err
}
