// Package dicom extracts header metadata from DICOM files on disk.
package dicom

import (
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"

	dcm "github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"pacs-index-api/models"
	"pacs-index-api/utils"
)

// DefaultMedicalAid is recorded when a header carries neither an
// institution nor a referring physician.
const DefaultMedicalAid = "DIRECT TO PATIENT"

// Extract reads the header of a DICOM file and returns its metadata
// record. Pixel data is never decoded, headers are read for millions of
// files per scan. A file that cannot be parsed as DICOM yields an error
// the caller treats as a per-file soft failure.
func Extract(path string) (*models.Metadata, error) {
	dataset, err := dcm.ParseFile(path, nil, dcm.SkipPixelData())
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	meta := FromDataset(&dataset, path)

	if info, err := os.Stat(path); err == nil {
		meta.Instance.FileSize = info.Size()
	}

	return meta, nil
}

// FromDataset maps an already-parsed dataset to the four-level metadata
// record. Every tag lookup tolerates absence, missing tags degrade to
// empty strings or zero, never an error.
func FromDataset(dataset *dcm.Dataset, path string) *models.Metadata {
	folderPath := filepath.Dir(path)

	patientName := NormalizePatientName(stringValue(dataset, tag.PatientName))
	if patientName == "" {
		patientName = "Unknown"
	}
	patientBirthDate := stringValue(dataset, tag.PatientBirthDate)

	patientID := stringValue(dataset, tag.PatientID)
	if patientID == "" {
		patientID = SynthesizePatientID(patientName, patientBirthDate)
	}

	referringDoctor := stringValue(dataset, tag.ReferringPhysicianName)
	medicalAid := stringValue(dataset, tag.InstitutionName)
	if medicalAid == "" {
		medicalAid = referringDoctor
	}
	if medicalAid == "" {
		medicalAid = DefaultMedicalAid
	}

	modality := stringValue(dataset, tag.Modality)
	studyUID := stringValue(dataset, tag.StudyInstanceUID)
	seriesUID := stringValue(dataset, tag.SeriesInstanceUID)

	var sliceLocation *float64
	if f, ok := utils.FloatValueFromElement(find(dataset, tag.SliceLocation)); ok {
		sliceLocation = &f
	}

	return &models.Metadata{
		Patient: models.Patient{
			PatientID:        patientID,
			PatientName:      patientName,
			PatientBirthDate: patientBirthDate,
			PatientSex:       stringValue(dataset, tag.PatientSex),
			PatientAge:       stringValue(dataset, tag.PatientAge),
			MedicalAid:       medicalAid,
			ReferringDoctor:  referringDoctor,
			FolderPath:       folderPath,
		},
		Study: models.Study{
			StudyInstanceUID: studyUID,
			PatientID:        patientID,
			StudyDate:        stringValue(dataset, tag.StudyDate),
			StudyTime:        stringValue(dataset, tag.StudyTime),
			StudyDescription: stringValue(dataset, tag.StudyDescription),
			Modality:         modality,
			AccessionNumber:  stringValue(dataset, tag.AccessionNumber),
			StudyID:          stringValue(dataset, tag.StudyID),
			FolderPath:       folderPath,
		},
		Series: models.Series{
			SeriesInstanceUID: seriesUID,
			StudyInstanceUID:  studyUID,
			SeriesNumber:      utils.IntValueFromElement(find(dataset, tag.SeriesNumber), 0),
			SeriesDescription: stringValue(dataset, tag.SeriesDescription),
			Modality:          modality,
			BodyPart:          stringValue(dataset, tag.BodyPartExamined),
			SeriesDate:        stringValue(dataset, tag.SeriesDate),
			SeriesTime:        stringValue(dataset, tag.SeriesTime),
			FolderPath:        folderPath,
		},
		Instance: models.Instance{
			SOPInstanceUID:    stringValue(dataset, tag.SOPInstanceUID),
			SeriesInstanceUID: seriesUID,
			InstanceNumber:    utils.IntValueFromElement(find(dataset, tag.InstanceNumber), 0),
			FilePath:          path,
			AcquisitionDate:   stringValue(dataset, tag.AcquisitionDate),
			AcquisitionTime:   stringValue(dataset, tag.AcquisitionTime),
			SliceLocation:     sliceLocation,
		},
	}
}

// NormalizePatientName joins the ^-delimited DICOM name components into
// a single space-separated string ("DOE^JOHN" -> "DOE JOHN").
func NormalizePatientName(name string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(name, "^", " ")), " ")
}

// SynthesizePatientID builds a stable placeholder id for records with
// no PatientID tag. The same name and birth date always hash to the
// same id, so such records index deterministically across rescans.
func SynthesizePatientID(name, birthDate string) string {
	h := fnv.New32a()
	h.Write([]byte(name + birthDate))
	return fmt.Sprintf("AUTO_%05d", h.Sum32()%100000)
}

func find(dataset *dcm.Dataset, t tag.Tag) *dcm.Element {
	element, err := dataset.FindElementByTag(t)
	if err != nil {
		return nil
	}
	return element
}

func stringValue(dataset *dcm.Dataset, t tag.Tag) string {
	return utils.StringValueFromElement(find(dataset, t))
}
