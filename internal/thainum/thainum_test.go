package thainum

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToArabic(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"all thai digits", "๐๑๒๓๔๕๖๗๘๙", "0123456789"},
		{"year", "พ.ศ. ๒๕๖๐", "พ.ศ. 2560"},
		{"sub index", "๖๐/๑", "60/1"},
		{"arabic untouched", "มาตรา 12", "มาตรา 12"},
		{"empty", "", ""},
		{"mixed", "ข้อ ๑2๓", "ข้อ 123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToArabic(tt.in))
		})
	}
}

func TestToArabic_PreservesNonDigits(t *testing.T) {
	in := "หมวด ๓ การบริหารสัญญา (ก) [x] – ๆ"
	out := ToArabic(in)
	assert.Equal(t, "หมวด 3 การบริหารสัญญา (ก) [x] – ๆ", out)
}

func TestRoundTrip(t *testing.T) {
	for _, s := range []string{"๐", "๑๒๓", "๙๙๙๙", "๒๕๖๗"} {
		assert.Equal(t, s, ToThai(ToArabic(s)))
	}
}

func TestIsDigit(t *testing.T) {
	assert.True(t, IsDigit('๕'))
	assert.True(t, IsDigit('7'))
	assert.False(t, IsDigit('ก'))
	assert.True(t, IsThaiDigit('๐'))
	assert.False(t, IsThaiDigit('0'))
}
