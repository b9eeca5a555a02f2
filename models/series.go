package models

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type Series struct {
	SeriesInstanceUID string `json:"series_instance_uid" dicom:"SeriesInstanceUID"`
	StudyInstanceUID  string `json:"study_instance_uid"`
	SeriesNumber      int    `json:"series_number" dicom:"SeriesNumber"`
	SeriesDescription string `json:"series_description" dicom:"SeriesDescription"`
	Modality          string `json:"modality" dicom:"Modality"`
	BodyPart          string `json:"body_part" dicom:"BodyPartExamined"`
	SeriesDate        string `json:"series_date" dicom:"SeriesDate"`
	SeriesTime        string `json:"series_time" dicom:"SeriesTime"`
	FolderPath        string `json:"folder_path"`
	InstanceCount     int    `json:"instance_count"`
}

// Validate validates Series struct and returns validation errors.
func (s *Series) Validate() error {
	return validation.ValidateStruct(s)
}
