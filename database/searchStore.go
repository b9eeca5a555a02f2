package database

import (
	"database/sql"
	"strings"

	"pacs-index-api/models"
)

// SearchStore implements the read-only search queries over the index.
// It never writes and may run while an indexing scan is in progress.
type SearchStore struct {
	db *sql.DB
}

// NewSearchStore returns a SearchStore implementation.
func NewSearchStore(db *sql.DB) *SearchStore {
	return &SearchStore{
		db: db,
	}
}

// SearchPatients finds patients by substring match on name or id, with
// optional exact filters on a study's modality and date. The study date
// matches with or without dashes, DICOM dates are stored compact
// (20250922). One row per patient, ordered by name.
func (store *SearchStore) SearchPatients(query, modality, studyDate string, options *SelectQueryOptions) ([]*models.PatientSummary, error) {
	sqlQuery := `
		SELECT DISTINCT
			p.patient_id, p.patient_name, p.patient_birth_date, p.patient_sex,
			p.medical_aid, p.referring_doctor, p.folder_path,
			COUNT(DISTINCT s.study_instance_uid) as study_count
		FROM patients p
		LEFT JOIN studies s ON p.patient_id = s.patient_id
		WHERE 1=1`
	var args []any

	if query != "" {
		sqlQuery += " AND (p.patient_name LIKE ? OR p.patient_id LIKE ?)"
		args = append(args, "%"+query+"%", "%"+query+"%")
	}

	if modality != "" {
		sqlQuery += " AND s.modality = ?"
		args = append(args, modality)
	}

	if studyDate != "" {
		sqlQuery += " AND s.study_date = ?"
		args = append(args, strings.ReplaceAll(studyDate, "-", ""))
	}

	sqlQuery += " GROUP BY p.patient_id"
	if options == nil || options.OrderBy == "" {
		sqlQuery += " ORDER BY p.patient_name"
	}

	if options != nil {
		sqlQuery, args = options.Apply(sqlQuery, args)
	}

	rows, err := store.db.Query(sqlQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	patients := []*models.PatientSummary{}
	for rows.Next() {
		p := models.PatientSummary{}
		err := rows.Scan(&p.PatientID, &p.PatientName, &p.PatientBirthDate, &p.PatientSex,
			&p.MedicalAid, &p.ReferringDoctor, &p.FolderPath, &p.StudyCount)
		if err != nil {
			return nil, err
		}
		patients = append(patients, &p)
	}

	return patients, rows.Err()
}

// PatientStudies lists all studies of one patient, most recent first,
// with series and instance totals computed per study.
func (store *SearchStore) PatientStudies(patientID string) ([]*models.StudySummary, error) {
	rows, err := store.db.Query(`
		SELECT study_instance_uid, study_date, study_time, study_description,
		       modality, accession_number, folder_path,
		       (SELECT COUNT(DISTINCT series_instance_uid)
		        FROM series WHERE study_instance_uid = s.study_instance_uid) as series_count,
		       (SELECT COUNT(*)
		        FROM instances i JOIN series se ON i.series_instance_uid = se.series_instance_uid
		        WHERE se.study_instance_uid = s.study_instance_uid) as instance_count
		FROM studies s
		WHERE patient_id = ?
		ORDER BY study_date DESC, study_time DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	studies := []*models.StudySummary{}
	for rows.Next() {
		s := models.StudySummary{}
		err := rows.Scan(&s.StudyInstanceUID, &s.StudyDate, &s.StudyTime, &s.StudyDescription,
			&s.Modality, &s.AccessionNumber, &s.FolderPath, &s.SeriesCount, &s.InstanceCount)
		if err != nil {
			return nil, err
		}
		studies = append(studies, &s)
	}

	return studies, rows.Err()
}

// StudyImages lists every instance of a study with its parent series
// context, ordered by series then instance number. This ordering is
// what a viewer shows by default and must stay deterministic.
func (store *SearchStore) StudyImages(studyUID string) ([]*models.StudyImage, error) {
	rows, err := store.db.Query(`
		SELECT i.file_path, i.instance_number, i.sop_instance_uid,
		       se.series_description, se.series_number, se.modality
		FROM instances i
		JOIN series se ON i.series_instance_uid = se.series_instance_uid
		WHERE se.study_instance_uid = ?
		ORDER BY se.series_number, i.instance_number`, studyUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	images := []*models.StudyImage{}
	for rows.Next() {
		img := models.StudyImage{}
		err := rows.Scan(&img.FilePath, &img.InstanceNumber, &img.SOPInstanceUID,
			&img.SeriesDescription, &img.SeriesNumber, &img.Modality)
		if err != nil {
			return nil, err
		}
		images = append(images, &img)
	}

	return images, rows.Err()
}
