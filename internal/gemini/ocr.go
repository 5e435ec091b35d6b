package gemini

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
)

// DefaultOCRModel is used when OCR is built without a model name.
const DefaultOCRModel = "gemini-2.0-flash"

// ocrPrompt asks for a verbatim transcription that keeps the ภาค/หมวด/มาตรา
// structure and adds no formatting.
const ocrPrompt = `คุณคือผู้เชี่ยวชาญด้าน OCR สำหรับเอกสารราชการไทย
อ่านและคัดลอกข้อความจากกฎหมาย/ระเบียบฉบับนี้ทั้งหมด verbatim
รักษาโครงสร้าง ภาค หมวด มาตรา/ข้อ ให้ครบถ้วน
ห้ามสรุป ห้ามตัดทอน ห้ามแต่งเติม
Output raw text เท่านั้น ไม่ต้องมี markdown formatting`

// OCR transcribes PDFs with a vision model. It implements domain.RemoteOCR.
type OCR struct {
	client *Client
	model  string
}

// NewOCR returns an OCR using model, or DefaultOCRModel when empty.
func NewOCR(client *Client, model string) *OCR {
	if model == "" {
		model = DefaultOCRModel
	}
	return &OCR{client: client, model: model}
}

// ExtractText sends the PDF inline and returns the transcription.
func (o *OCR) ExtractText(ctx context.Context, pdf []byte, filename string) (string, error) {
	req := generateRequest{
		Contents: []content{{
			Role: "user",
			Parts: []part{
				{Text: ocrPrompt},
				{InlineData: &inlineData{MimeType: "application/pdf", Data: base64.StdEncoding.EncodeToString(pdf)}},
			},
		}},
	}
	text, err := o.client.generate(ctx, o.model, req)
	if err != nil {
		return "", fmt.Errorf("ocr %s: %w", filename, err)
	}
	return strings.TrimSpace(stripFence(text)), nil
}

// stripFence removes a ``` code fence some models wrap raw text in.
func stripFence(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return s
	}
	t = strings.TrimPrefix(t, "```")
	if i := strings.IndexByte(t, '\n'); i >= 0 {
		t = t[i+1:]
	}
	return strings.TrimSuffix(strings.TrimSpace(t), "```")
}
