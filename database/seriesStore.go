package database

import (
	"database/sql"

	"pacs-index-api/models"
)

// SeriesStore implements database operations for series management.
type SeriesStore struct {
	db *sql.DB
}

// NewSeriesStore returns a SeriesStore implementation.
func NewSeriesStore(db *sql.DB) *SeriesStore {
	return &SeriesStore{
		db: db,
	}
}

// CreateIfAbsent inserts a series unless its series_instance_uid is
// already indexed. instance_count starts at zero and is maintained by
// RefreshInstanceCount.
func (store *SeriesStore) CreateIfAbsent(s *models.Series, tx *sql.Tx) error {
	_, err := conn(store.db, tx).Exec(`
		INSERT OR IGNORE INTO series
		(series_instance_uid, study_instance_uid, series_number,
		 series_description, modality, body_part, series_date,
		 series_time, folder_path, instance_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0)`,
		s.SeriesInstanceUID, s.StudyInstanceUID, s.SeriesNumber,
		s.SeriesDescription, s.Modality, s.BodyPart, s.SeriesDate,
		s.SeriesTime, s.FolderPath)
	return err
}

// RefreshInstanceCount recomputes the denormalized instance_count of a
// series from the instances table. Runs inside the caller's transaction
// so the counter can never be observed out of step with the instances
// it counts.
func (store *SeriesStore) RefreshInstanceCount(seriesUID string, tx *sql.Tx) error {
	_, err := conn(store.db, tx).Exec(`
		UPDATE series
		SET instance_count = (
			SELECT COUNT(*) FROM instances
			WHERE series_instance_uid = ?
		)
		WHERE series_instance_uid = ?`, seriesUID, seriesUID)
	return err
}

// Get gets a series by series instance UID.
func (store *SeriesStore) Get(seriesUID string) (*models.Series, error) {
	s := models.Series{}
	err := store.db.QueryRow(`
		SELECT series_instance_uid, study_instance_uid, series_number,
		       series_description, modality, body_part, series_date,
		       series_time, folder_path, instance_count
		FROM series WHERE series_instance_uid = ?`, seriesUID).
		Scan(&s.SeriesInstanceUID, &s.StudyInstanceUID, &s.SeriesNumber,
			&s.SeriesDescription, &s.Modality, &s.BodyPart, &s.SeriesDate,
			&s.SeriesTime, &s.FolderPath, &s.InstanceCount)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Count returns the number of distinct indexed series.
func (store *SeriesStore) Count(tx *sql.Tx) (int, error) {
	var n int
	err := conn(store.db, tx).QueryRow("SELECT COUNT(DISTINCT series_instance_uid) FROM series").Scan(&n)
	return n, err
}
