package queue

const (
	TypeDocumentProcess = "document:process"
	TypeFileSummarize   = "file:summarize"
)

type DocumentProcessPayload struct {
	FileID int64 `json:"file_id"`
}

type FileSummarizePayload struct {
	FileID int64 `json:"file_id"`
}
