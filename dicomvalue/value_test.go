package dicomvalue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoogleCloudPlatform/go-dicom-codec/vr"
)

func TestToStringsFromStrings(t *testing.T) {
	v := NewStrings("ISO_IR 192")
	got, err := v.ToStrings()
	require.NoError(t, err)
	assert.Equal(t, []string{"ISO_IR 192"}, got)
}

func TestToIntsFromStringsDS(t *testing.T) {
	v := NewStrings("1", "2.5", "-3")
	got, err := v.ToInts()
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, -3}, got)
}

func TestToFloatsFromStringsDS(t *testing.T) {
	v := NewStrings("1.5", "-2.25e1")
	got, err := v.ToFloats()
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, -22.5}, got)
}

func TestConvertUnsupportedIsError(t *testing.T) {
	v := NewBytes([]byte{1, 2, 3})
	_, err := v.ToFloats()
	require.Error(t, err)
	var ce *ConvertError
	assert.ErrorAs(t, err, &ce)
	assert.Equal(t, KindBytes, ce.Original)
}

func TestCalculateByteLengthTextPadsEven(t *testing.T) {
	v := NewStrings("ABC")
	n, err := v.CalculateByteLength(vr.LO)
	require.NoError(t, err)
	assert.EqualValues(t, 4, n) // "ABC" + space pad
}

func TestCalculateByteLengthBinary(t *testing.T) {
	v := NewUint16s(1, 2, 3)
	n, err := v.CalculateByteLength(vr.US)
	require.NoError(t, err)
	assert.EqualValues(t, 6, n)
}

func TestDecodeTextSplitsAndTrims(t *testing.T) {
	v := DecodeText("A \\ B ", vr.CS)
	got, err := v.ToStrings()
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, got)
}

func TestDecodeTextUIStripsNull(t *testing.T) {
	v := DecodeText("1.2.3\x00", vr.UI)
	got, err := v.ToStrings()
	require.NoError(t, err)
	assert.Equal(t, []string{"1.2.3"}, got)
}

func TestEncodeTextPadsNullForUI(t *testing.T) {
	v := NewStrings("1.2.3")
	got, err := EncodeText(v, vr.UI)
	require.NoError(t, err)
	assert.Equal(t, "1.2.3\x00", got)
}

func TestDateRoundTrip(t *testing.T) {
	d, err := ParseDate("19930822")
	require.NoError(t, err)
	assert.Equal(t, "19930822", d.String())
}

func TestDateTimeWithOffset(t *testing.T) {
	dt, err := ParseDateTime("20200101120000-0500")
	require.NoError(t, err)
	assert.Equal(t, 2020, dt.Date.Year)
	assert.True(t, dt.HasTime)
	assert.True(t, dt.HasOffset)
	assert.Equal(t, -300, dt.OffsetMinute)
}
