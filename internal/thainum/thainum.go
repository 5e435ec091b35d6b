// Package thainum converts between Thai digit glyphs (๐-๙) and Arabic digits.
package thainum

import "strings"

const thaiZero = '๐'

var (
	toArabic = strings.NewReplacer(
		"๐", "0", "๑", "1", "๒", "2", "๓", "3", "๔", "4",
		"๕", "5", "๖", "6", "๗", "7", "๘", "8", "๙", "9",
	)
	toThai = strings.NewReplacer(
		"0", "๐", "1", "๑", "2", "๒", "3", "๓", "4", "๔",
		"5", "๕", "6", "๖", "7", "๗", "8", "๘", "9", "๙",
	)
)

// ToArabic maps each Thai digit to its Arabic equivalent. Everything else passes through.
func ToArabic(s string) string { return toArabic.Replace(s) }

// ToThai is the inverse of ToArabic.
func ToThai(s string) string { return toThai.Replace(s) }

// IsThaiDigit reports whether r is one of ๐-๙.
func IsThaiDigit(r rune) bool { return r >= thaiZero && r <= thaiZero+9 }

// IsDigit reports whether r is a Thai or ASCII digit.
func IsDigit(r rune) bool { return IsThaiDigit(r) || (r >= '0' && r <= '9') }
