package lawtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitParagraphs_ListItemsReattach(t *testing.T) {
	body := "เนื้อหาหลัก\n\n(ก) รายการแรก\n(ข) รายการสอง\n\nรัฐมนตรีอาจออกกฎกระทรวง..."

	got := SplitParagraphs(body)

	require.Len(t, got, 2)
	assert.Equal(t, "เนื้อหาหลัก\n(ก) รายการแรก\n(ข) รายการสอง", got[0])
	assert.Equal(t, "รัฐมนตรีอาจออกกฎกระทรวง...", got[1])
}

func TestSplitParagraphs_SubjectAfterListWithoutBlankLine(t *testing.T) {
	body := "มาตรา ๕ ให้มีคณะกรรมการ ประกอบด้วย\n\n(๑) ประธาน\n(๒) กรรมการ\nคณะกรรมการมีอำนาจออกระเบียบ"

	got := SplitParagraphs(body)

	require.Len(t, got, 2)
	assert.Equal(t, "ให้มีคณะกรรมการ ประกอบด้วย\n(๑) ประธาน\n(๒) กรรมการ", got[0])
	assert.Equal(t, "คณะกรรมการมีอำนาจออกระเบียบ", got[1])
}

func TestSplitParagraphs_WrappedListLineStaysMerged(t *testing.T) {
	body := "บทนำ\n\n(ก) รายการที่ยาว\nต่อบรรทัด\n(ข) รายการสอง"

	got := SplitParagraphs(body)

	require.Len(t, got, 1)
	assert.Contains(t, got[0], "ต่อบรรทัด")
}

func TestSplitParagraphs_LabelOnlyLineDropped(t *testing.T) {
	got := SplitParagraphs("มาตรา ๒\nวรรคแรก\n\nวรรคสอง")

	assert.Equal(t, []string{"วรรคแรก", "วรรคสอง"}, got)
}

func TestSplitParagraphs_LeadingListWithoutParagraph(t *testing.T) {
	got := SplitParagraphs("ข้อ 3\n(1) หนึ่ง\n(2) สอง")

	assert.Equal(t, []string{"(1) หนึ่ง\n(2) สอง"}, got)
}

func TestSplitParagraphs_Empty(t *testing.T) {
	assert.Empty(t, SplitParagraphs("มาตรา ๙"))
	assert.Empty(t, SplitParagraphs("   "))
}

func TestSplitParagraphs_DecomposedSaraAm(t *testing.T) {
	body := "บทนำ\n\n(ก) หนึ่ง\nผู้อํานวยการเป็นผู้รักษาการ"

	got := SplitParagraphs(body)

	require.Len(t, got, 2)
	assert.Equal(t, "ผู้อํานวยการเป็นผู้รักษาการ", got[1])
}
