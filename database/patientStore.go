package database

import (
	"database/sql"

	"pacs-index-api/models"
)

// PatientStore implements database operations for patient management.
type PatientStore struct {
	db *sql.DB
}

// NewPatientStore returns a PatientStore implementation.
func NewPatientStore(db *sql.DB) *PatientStore {
	return &PatientStore{
		db: db,
	}
}

// CreateIfAbsent inserts a patient unless a row with the same
// patient_id already exists. Demographics are first-write-wins across
// rescans of the same id.
func (store *PatientStore) CreateIfAbsent(p *models.Patient, tx *sql.Tx) error {
	_, err := conn(store.db, tx).Exec(`
		INSERT OR IGNORE INTO patients
		(patient_id, patient_name, patient_birth_date, patient_sex,
		 patient_age, medical_aid, referring_doctor, folder_path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.PatientID, p.PatientName, p.PatientBirthDate, p.PatientSex,
		p.PatientAge, p.MedicalAid, p.ReferringDoctor, p.FolderPath)
	return err
}

// Get gets a patient by patient ID.
func (store *PatientStore) Get(patientID string) (*models.Patient, error) {
	p := models.Patient{}
	err := store.db.QueryRow(`
		SELECT patient_id, patient_name, patient_birth_date, patient_sex,
		       patient_age, medical_aid, referring_doctor, indexed_date, folder_path
		FROM patients WHERE patient_id = ?`, patientID).
		Scan(&p.PatientID, &p.PatientName, &p.PatientBirthDate, &p.PatientSex,
			&p.PatientAge, &p.MedicalAid, &p.ReferringDoctor, &p.IndexedDate, &p.FolderPath)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Count returns the number of distinct indexed patients.
func (store *PatientStore) Count(tx *sql.Tx) (int, error) {
	var n int
	err := conn(store.db, tx).QueryRow("SELECT COUNT(DISTINCT patient_id) FROM patients").Scan(&n)
	return n, err
}
