package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

type Patient struct {
	PatientID        string    `json:"patient_id" dicom:"PatientID"`
	PatientName      string    `json:"name" dicom:"PatientName"`
	PatientBirthDate string    `json:"birth_date" dicom:"PatientBirthDate"`
	PatientSex       string    `json:"sex" dicom:"PatientSex"`
	PatientAge       string    `json:"age" dicom:"PatientAge"`
	MedicalAid       string    `json:"medical_aid"`
	ReferringDoctor  string    `json:"referring_doctor" dicom:"ReferringPhysicianName"`
	IndexedDate      time.Time `json:"indexed_date"`
	FolderPath       string    `json:"folder_path"`
}

// Validate validates Patient struct and returns validation errors.
func (p *Patient) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.PatientID, validation.Required),
	)
}

// PatientSummary is a search result row: one patient with the number of
// distinct studies the index holds for them.
type PatientSummary struct {
	PatientID        string `json:"patient_id"`
	PatientName      string `json:"name"`
	PatientBirthDate string `json:"birth_date"`
	PatientSex       string `json:"sex"`
	MedicalAid       string `json:"medical_aid"`
	ReferringDoctor  string `json:"referring_doctor"`
	FolderPath       string `json:"folder_path"`
	StudyCount       int    `json:"study_count"`
}
