package lawtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		kind   LineKind
		label  string
		number string
	}{
		{"part thai numeral", "ภาค ๑ บททั่วไป", LinePart, "ภาค ๑ บททั่วไป", ""},
		{"part with ที่", "ภาคที่ 2", LinePart, "ภาคที่ 2", ""},
		{"chapter", "  หมวด ๓ การจัดซื้อ  ", LineChapter, "หมวด ๓ การจัดซื้อ", ""},
		{"article", "มาตรา ๖๐ ให้หน่วยงาน", LineSection, "มาตรา ๖๐", "60"},
		{"article sub-index", "มาตรา ๖๐/๑", LineSection, "มาตรา ๖๐/๑", "60/1"},
		{"clause arabic", "ข้อ 12 ในระเบียบนี้", LineSection, "ข้อ 12", "12"},
		{"keyword without numeral", "มาตรานี้ให้ใช้บังคับ", LinePlain, "", ""},
		{"appendix is not a part", "ภาคผนวก", LinePlain, "", ""},
		{"plain", "ให้รัฐมนตรีรักษาการ", LinePlain, "", ""},
		{"blank", "   ", LinePlain, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyLine(tt.line)
			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.label, got.Label)
			assert.Equal(t, tt.number, got.Number)
		})
	}
}

const sampleAct = `พระราชบัญญัติทดสอบ
พ.ศ. ๒๕๖๐
มาตรา ๑ พระราชบัญญัตินี้เรียกว่า พระราชบัญญัติทดสอบ
หมวด ๑
บททั่วไป
มาตรา ๒ ในพระราชบัญญัตินี้

วรรคสอง
หมวด ๒ คณะกรรมการ
มาตรา ๓ ให้มีคณะกรรมการ
ภาค ๒ ส่วนเพิ่มเติม
มาตรา ๓/๑ บทเพิ่ม`

func TestParseSections(t *testing.T) {
	sections := ParseSections(sampleAct)

	require.Len(t, sections, 4)

	assert.Equal(t, "1", sections[0].Number)
	assert.Equal(t, "มาตรา ๑", sections[0].Label)
	assert.Empty(t, sections[0].Chapter)
	// A chapter heading between two sections belongs to the first one's text.
	assert.Contains(t, sections[0].Text, "หมวด ๑")

	assert.Equal(t, "2", sections[1].Number)
	assert.Equal(t, "หมวด ๑", sections[1].Chapter)
	assert.Equal(t, []string{"ในพระราชบัญญัตินี้", "วรรคสอง\nหมวด ๒ คณะกรรมการ"}, sections[1].Paragraphs)

	assert.Equal(t, "หมวด ๒ คณะกรรมการ", sections[2].Chapter)
	assert.Empty(t, sections[2].Part)

	assert.Equal(t, "3/1", sections[3].Number)
	assert.Equal(t, "ภาค ๒ ส่วนเพิ่มเติม", sections[3].Part)
	assert.Equal(t, "หมวด ๒ คณะกรรมการ", sections[3].Chapter)
}

func TestParseSections_Ordered(t *testing.T) {
	sections := ParseSections(sampleAct)
	for i := 1; i < len(sections); i++ {
		assert.Less(t, sections[i-1].Line, sections[i].Line)
	}
}

func TestParseSections_TextStartsWithLabel(t *testing.T) {
	for _, s := range ParseSections(sampleAct) {
		assert.Equal(t, s.Label, ClassifyLine(s.Text).Label)
	}
}

func TestParseSections_NoMarkers(t *testing.T) {
	assert.Empty(t, ParseSections("ข้อความทั่วไป\nไม่มีมาตรา"))
	assert.Empty(t, ParseSections(""))
}

func TestParseSections_RepeatedNumbersKept(t *testing.T) {
	sections := ParseSections("ข้อ ๑ หนึ่ง\nข้อ ๒ สอง\nบัญชีแนบท้าย\nข้อ ๑ ซ้ำ")

	require.Len(t, sections, 3)
	assert.Equal(t, "1", sections[2].Number)
	assert.Equal(t, "ข้อ ๑ ซ้ำ", sections[2].Text)
}
