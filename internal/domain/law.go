package domain

import "strings"

// LawType is the kind of legal instrument a document is.
type LawType string

const (
	LawTypeAct             LawType = "พระราชบัญญัติ"
	LawTypeRegulation      LawType = "ระเบียบ"
	LawTypeMinisterialRule LawType = "กฎกระทรวง"
	LawTypeAnnouncement    LawType = "ประกาศ"
	LawTypeUnknown         LawType = "กฎหมาย"
)

// Extraction engines recorded on a parsed document.
const (
	EngineNative    = "native"
	EngineRemoteOCR = "remote-ocr"
)

// DocTypeLaw is the doc_type value carried by every law chunk and backup.
const DocTypeLaw = "กฎหมาย"

// Section is one numbered มาตรา (article) or ข้อ (clause) with its place in the hierarchy.
type Section struct {
	Number     string   `json:"number"`
	Label      string   `json:"label"`
	Text       string   `json:"text"`
	Part       string   `json:"part"`
	Chapter    string   `json:"chapter"`
	Paragraphs []string `json:"paragraphs"`
	// Line is the marker's line index in the parsed text.
	Line int `json:"line"`
}

// LawDocument is a fully parsed law file.
type LawDocument struct {
	Filename         string    `json:"filename"`
	SourceID         string    `json:"source_id"`
	LawName          string    `json:"law_name"`
	LawShortName     string    `json:"law_short_name"`
	LawType          LawType   `json:"law_type"`
	LawYearBE        string    `json:"law_year_be"`
	Sections         []Section `json:"sections"`
	FullText         string    `json:"full_text"`
	ExtractionEngine string    `json:"extraction_engine"`
	TotalSections    int       `json:"total_sections"`
}

// DisplayName is the citation form used in context headers.
func (d *LawDocument) DisplayName() string {
	if d.LawShortName != "" {
		return d.LawShortName
	}
	return d.LawName
}

// ContextHeader renders "[name | part | chapter | label]", omitting empty levels.
func (d *LawDocument) ContextHeader(part, chapter, label string) string {
	parts := []string{d.DisplayName()}
	for _, p := range []string{part, chapter, label} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return "[" + strings.Join(parts, " | ") + "]"
}

// SourceURL is the Drive viewer link for the document's source file.
func (d *LawDocument) SourceURL() string {
	return DriveFileURL(d.SourceID)
}

// DriveFileURL builds the browser link for a Drive file id.
func DriveFileURL(fileID string) string {
	return "https://drive.google.com/file/d/" + fileID + "/view"
}

// RemoteFile is a PDF listed by a PDFSource.
type RemoteFile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"mime_type,omitempty"`
}
