package models

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type Instance struct {
	SOPInstanceUID    string   `json:"sop_instance_uid" dicom:"SOPInstanceUID"`
	SeriesInstanceUID string   `json:"series_instance_uid"`
	InstanceNumber    int      `json:"instance_number" dicom:"InstanceNumber"`
	FilePath          string   `json:"file_path"`
	FileSize          int64    `json:"file_size"`
	AcquisitionDate   string   `json:"acquisition_date" dicom:"AcquisitionDate"`
	AcquisitionTime   string   `json:"acquisition_time" dicom:"AcquisitionTime"`
	SliceLocation     *float64 `json:"slice_location" dicom:"SliceLocation"`
}

// Validate validates Instance struct and returns validation errors.
func (i *Instance) Validate() error {
	return validation.ValidateStruct(i,
		validation.Field(&i.FilePath, validation.Required),
	)
}

// StudyImage is one instance of a study joined with its parent series
// context. The series/instance number pair drives the default display
// order in a viewer.
type StudyImage struct {
	FilePath          string `json:"file_path"`
	InstanceNumber    int    `json:"instance_number"`
	SOPInstanceUID    string `json:"sop_instance_uid"`
	SeriesDescription string `json:"series_description"`
	SeriesNumber      int    `json:"series_number"`
	Modality          string `json:"modality"`
}
