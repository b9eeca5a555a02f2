package models

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type Study struct {
	StudyInstanceUID string `json:"study_instance_uid" dicom:"StudyInstanceUID"`
	PatientID        string `json:"patient_id"`
	StudyDate        string `json:"study_date" dicom:"StudyDate"`
	StudyTime        string `json:"study_time" dicom:"StudyTime"`
	StudyDescription string `json:"study_description" dicom:"StudyDescription"`
	Modality         string `json:"modality" dicom:"Modality"`
	AccessionNumber  string `json:"accession_number" dicom:"AccessionNumber"`
	StudyID          string `json:"study_id" dicom:"StudyID"`
	FolderPath       string `json:"folder_path"`
}

// Validate validates Study struct and returns validation errors.
func (s *Study) Validate() error {
	return validation.ValidateStruct(s)
}

// StudySummary is one study of a patient together with its series and
// instance totals, computed at query time.
type StudySummary struct {
	StudyInstanceUID string `json:"study_instance_uid"`
	StudyDate        string `json:"study_date"`
	StudyTime        string `json:"study_time"`
	StudyDescription string `json:"study_description"`
	Modality         string `json:"modality"`
	AccessionNumber  string `json:"accession_number"`
	FolderPath       string `json:"folder_path"`
	SeriesCount      int    `json:"series_count"`
	InstanceCount    int    `json:"instance_count"`
}
