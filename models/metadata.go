package models

// Metadata is the flat record pulled from a single DICOM file header,
// grouped by the four levels of the DICOM information model.
type Metadata struct {
	Patient  Patient  `json:"patient"`
	Study    Study    `json:"study"`
	Series   Series   `json:"series"`
	Instance Instance `json:"instance"`
}

// Validate validates all four levels of the record.
func (m *Metadata) Validate() error {
	if err := m.Patient.Validate(); err != nil {
		return err
	}
	if err := m.Study.Validate(); err != nil {
		return err
	}
	if err := m.Series.Validate(); err != nil {
		return err
	}
	return m.Instance.Validate()
}
