package utils

import (
	"strconv"
	"strings"

	"github.com/suyashkumar/dicom"
)

// StringValueFromElement returns the first value of an element as a
// trimmed string, or "" when the element is missing or empty. DICOM
// headers pad string values with trailing spaces.
func StringValueFromElement(element *dicom.Element) string {
	if element == nil || element.Value == nil {
		return ""
	}

	switch v := element.Value.GetValue().(type) {
	case []string:
		if len(v) > 0 {
			return strings.TrimSpace(v[0])
		}
	case string:
		return strings.TrimSpace(v)
	case []int:
		if len(v) > 0 {
			return strconv.Itoa(v[0])
		}
	case []float64:
		if len(v) > 0 {
			return strconv.FormatFloat(v[0], 'f', -1, 64)
		}
	}

	return ""
}

// IntValueFromElement returns the first value of an element as an int.
// IS values arrive as decimal strings, so both representations are
// handled. Missing or unparseable values degrade to fallback.
func IntValueFromElement(element *dicom.Element, fallback int) int {
	if element == nil || element.Value == nil {
		return fallback
	}

	switch v := element.Value.GetValue().(type) {
	case []int:
		if len(v) > 0 {
			return v[0]
		}
	case []string:
		if len(v) > 0 {
			if n, err := strconv.Atoi(strings.TrimSpace(v[0])); err == nil {
				return n
			}
		}
	}

	return fallback
}

// FloatValueFromElement returns the first value of an element as a
// float64. DS values arrive as decimal strings. The second return is
// false when no numeric value is present.
func FloatValueFromElement(element *dicom.Element) (float64, bool) {
	if element == nil || element.Value == nil {
		return 0, false
	}

	switch v := element.Value.GetValue().(type) {
	case []float64:
		if len(v) > 0 {
			return v[0], true
		}
	case []string:
		if len(v) > 0 {
			if f, err := strconv.ParseFloat(strings.TrimSpace(v[0]), 64); err == nil {
				return f, true
			}
		}
	}

	return 0, false
}
