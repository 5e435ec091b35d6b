package summarizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitSentences(t *testing.T) {
	got := splitSentences("การจัดซื้อจัดจ้าง  ให้ดำเนินการตามระเบียบ\nข้อ ๑ ใช้บังคับ. Next one")
	assert.Equal(t, []string{"การจัดซื้อจัดจ้าง", "ให้ดำเนินการตามระเบียบ", "ข้อ ๑ ใช้บังคับ", "Next one"}, got)
}

func TestSummarize_KeepsOriginalOrder(t *testing.T) {
	text := "การจัดซื้อจัดจ้างพัสดุ\nอากาศดี\nการจัดซื้อจัดจ้างโดยวิธีคัดเลือก"
	got, err := NewFrequencySummarizer().Summarize(text, 2)
	require.NoError(t, err)
	assert.Equal(t, "การจัดซื้อจัดจ้างพัสดุ การจัดซื้อจัดจ้างโดยวิธีคัดเลือก", got)
}

func TestSummarize_FewerSentencesThanLimit(t *testing.T) {
	got, err := NewFrequencySummarizer().Summarize("ข้อความเดียว", 5)
	require.NoError(t, err)
	assert.Equal(t, "ข้อความเดียว", got)
}

func TestSummarize_Empty(t *testing.T) {
	got, err := NewFrequencySummarizer().Summarize("   ", 3)
	require.NoError(t, err)
	assert.Equal(t, "", got)
}
