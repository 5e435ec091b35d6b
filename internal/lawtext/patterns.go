// Package lawtext recovers the structure of Thai statutory text: metadata,
// page-stamp cleanup, the ภาค/หมวด/มาตรา hierarchy and วรรค paragraphs.
package lawtext

import "regexp"

// kwYear introduces a Buddhist-Era year.
const kwYear = "พ.ศ."

var (
	// partPattern and chapterPattern match a marker line: keyword, optional ที่, numeral.
	// Any text after the numeral is part of the heading.
	partPattern    = regexp.MustCompile(`^ภาค(?:\s*ที่)?\s*[๐-๙\d]+`)
	chapterPattern = regexp.MustCompile(`^หมวด(?:\s*ที่)?\s*[๐-๙\d]+`)

	// sectionPattern captures the label (keyword + numeral) and the numeral with optional sub-index.
	sectionPattern = regexp.MustCompile(`^((?:มาตรา|ข้อ)\s+([๐-๙\d]+(?:/[๐-๙\d]+)?))`)

	// structuralPrefix ends a multi-line law title.
	structuralPrefix = regexp.MustCompile(`^(?:มาตรา|ข้อ|หมวด|ภาค)`)

	// yearPattern matches a Buddhist-Era year of two or four digits.
	yearPattern = regexp.MustCompile(`พ\.ศ\.\s*([๐-๙\d]{4}|[๐-๙\d]{2})(?:[^๐-๙\d]|$)`)

	// pageStampPattern matches the four-line Royal Gazette stamp:
	//
	//	หน้า   ๑๔
	//	เล่ม   ๑๓๔   ตอนที่   ๒๔   ก
	//	ราชกิจจานุเบกษา
	//	๒๔   กุมภาพันธ์   ๒๕๖๐
	pageStampPattern = regexp.MustCompile(`(?m)^[ \t]*หน้า[ \t]+[๐-๙\d]+[^\n]*\n[^\n]*เล่ม[^\n]*\n[^\n]*ราชกิจจานุเบกษา[^\n]*\n[^\n]*\n?`)

	// blankRunPattern matches two or more consecutive blank lines.
	blankRunPattern = regexp.MustCompile(`\n(?:[ \t]*\n){2,}`)

	// splitHeaderPattern matches a lone มาตรา/ข้อ whose numeral sits on the next line.
	splitHeaderPattern = regexp.MustCompile(`(?m)^[ \t]*(มาตรา|ข้อ)\s*\n[ \t]*([๐-๙\d]+(?:/[๐-๙\d]+)?)`)

	// blankLineSplit separates paragraph candidates.
	blankLineSplit = regexp.MustCompile(`\n(?:[ \t]*\n)+`)

	// listItemPattern matches (ก), (๑), (1) list markers.
	listItemPattern = regexp.MustCompile(`^\([ก-ฮ๐-๙\d]+\)`)

	// definiteSubjectPattern lists legal actors that open a sentence and are never
	// a word-wrapped continuation of a list item. ผู้อำนวยการ appears both with
	// the precomposed sara am and with nikhahit + sara aa, as PDFs emit either.
	definiteSubjectPattern = regexp.MustCompile(`^(?:รัฐมนตรี|คณะกรรมการ|คณะรัฐมนตรี|ประธาน|ผู้ว่าราชการ|อธิบดี|นายก|ปลัด|หัวหน้า|ผู้อ\x{0E4D}\x{0E32}นวยการ|ผู้อำนวยการ|กรมการ|ผู้บัญชาการ)`)
)
