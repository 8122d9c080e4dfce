package models

// Chunk represents a contiguous span of text extracted from one source
// document, with its position within that document.
type Chunk struct {
	Content        string
	SourceFilename string
	PageNumber     int
	ChunkID        int
}

// Document is the full extracted text of one source file, page by page.
// Documents are read once at indexing time and not retained after chunking.
type Document struct {
	Path  string
	Pages []string
}

// AnswerResult is the outcome of one answer-pipeline invocation.
type AnswerResult struct {
	Query   string
	Source  string
	Content string
}
