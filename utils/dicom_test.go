package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

func element(t *testing.T, tg tag.Tag, data interface{}) *dicom.Element {
	t.Helper()
	e, err := dicom.NewElement(tg, data)
	require.NoError(t, err)
	return e
}

func TestStringValueFromElement(t *testing.T) {
	require.Equal(t, "CT", StringValueFromElement(element(t, tag.Modality, []string{"CT"})))
	require.Equal(t, "CT", StringValueFromElement(element(t, tag.Modality, []string{"CT "})))
	require.Equal(t, "", StringValueFromElement(nil))
	require.Equal(t, "", StringValueFromElement(element(t, tag.Modality, []string{})))
}

func TestIntValueFromElement(t *testing.T) {
	require.Equal(t, 3, IntValueFromElement(element(t, tag.SeriesNumber, []string{"3"}), 0))
	require.Equal(t, 5, IntValueFromElement(element(t, tag.SeriesNumber, []string{" 5 "}), 0))
	require.Equal(t, 0, IntValueFromElement(element(t, tag.SeriesNumber, []string{"x"}), 0))
	require.Equal(t, 7, IntValueFromElement(nil, 7))
}

func TestFloatValueFromElement(t *testing.T) {
	f, ok := FloatValueFromElement(element(t, tag.SliceLocation, []string{"-12.25"}))
	require.True(t, ok)
	require.Equal(t, -12.25, f)

	_, ok = FloatValueFromElement(nil)
	require.False(t, ok)

	_, ok = FloatValueFromElement(element(t, tag.SliceLocation, []string{"abc"}))
	require.False(t, ok)
}
