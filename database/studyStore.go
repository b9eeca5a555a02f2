package database

import (
	"database/sql"

	"pacs-index-api/models"
)

// StudyStore implements database operations for study management.
type StudyStore struct {
	db *sql.DB
}

// NewStudyStore returns a StudyStore implementation.
func NewStudyStore(db *sql.DB) *StudyStore {
	return &StudyStore{
		db: db,
	}
}

// CreateIfAbsent inserts a study unless its study_instance_uid is
// already indexed.
func (store *StudyStore) CreateIfAbsent(s *models.Study, tx *sql.Tx) error {
	_, err := conn(store.db, tx).Exec(`
		INSERT OR IGNORE INTO studies
		(study_instance_uid, patient_id, study_date, study_time,
		 study_description, modality, accession_number, study_id, folder_path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.StudyInstanceUID, s.PatientID, s.StudyDate, s.StudyTime,
		s.StudyDescription, s.Modality, s.AccessionNumber, s.StudyID, s.FolderPath)
	return err
}

// Get gets a study by study instance UID.
func (store *StudyStore) Get(studyUID string) (*models.Study, error) {
	s := models.Study{}
	err := store.db.QueryRow(`
		SELECT study_instance_uid, patient_id, study_date, study_time,
		       study_description, modality, accession_number, study_id, folder_path
		FROM studies WHERE study_instance_uid = ?`, studyUID).
		Scan(&s.StudyInstanceUID, &s.PatientID, &s.StudyDate, &s.StudyTime,
			&s.StudyDescription, &s.Modality, &s.AccessionNumber, &s.StudyID, &s.FolderPath)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Count returns the number of distinct indexed studies.
func (store *StudyStore) Count(tx *sql.Tx) (int, error) {
	var n int
	err := conn(store.db, tx).QueryRow("SELECT COUNT(DISTINCT study_instance_uid) FROM studies").Scan(&n)
	return n, err
}
