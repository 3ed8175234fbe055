package entity

import "fmt"

type AskRequest struct {
	DocumentID string `json:"document_id"`
	Question   string `json:"question"`
}

type AskResponse struct {
	Answer string `json:"answer"`
}

type DocumentInfo struct {
	ID   string `json:"document_id"`
	Name string `json:"name"`
}

type UploadResponse struct {
	DocumentID string `json:"document_id"`
	Name       string `json:"name"`
	Info       string `json:"info"`
}

type SimilarFragmentsRequest struct {
	Question string `json:"question"`
}

type FragmentPreview struct {
	FragmentID string `json:"fragment_id"`
	Text       string `json:"text"`
}

type SimilarFragmentsResponse struct {
	Fragments []FragmentPreview `json:"fragments"`
}

type ListDocumentsResponse struct {
	Documents []DocumentInfo `json:"documents"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ExportFormat selects the download format for a document's extracted text.
type ExportFormat string

const (
	FormatMarkdown ExportFormat = "md"
	FormatPDF      ExportFormat = "pdf"
	FormatDOCX     ExportFormat = "docx"
)

func (f ExportFormat) Validate() error {
	switch f {
	case FormatMarkdown, FormatPDF, FormatDOCX:
		return nil
	default:
		return fmt.Errorf("%w: unknown export format %q", ErrInvalidParameter, string(f))
	}
}
