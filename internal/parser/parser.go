package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"

	"pharmacy-rag/internal/models"
)

const (
	defaultChunkSize    = 1000 // characters
	defaultChunkOverlap = 200  // characters
)

// DirectoryLoader reads every PDF in a directory and splits it into
// overlapping chunks. The directory is treated as read-only.
type DirectoryLoader struct {
	Dir          string
	ChunkSize    int
	ChunkOverlap int
}

func NewDirectoryLoader(dir string, chunkSize, chunkOverlap int) *DirectoryLoader {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	if chunkOverlap <= 0 {
		chunkOverlap = defaultChunkOverlap
	}
	return &DirectoryLoader{Dir: dir, ChunkSize: chunkSize, ChunkOverlap: chunkOverlap}
}

// Load enumerates the PDF files, extracts their text and returns the full
// chunk set in insertion order. A file that fails to parse is logged and
// skipped; an unreadable directory is an error. An empty slice with a nil
// error means the corpus is empty.
func (l *DirectoryLoader) Load() ([]models.Chunk, error) {
	files, err := ListPDFs(l.Dir)
	if err != nil {
		return nil, err
	}

	var chunks []models.Chunk
	for _, file := range files {
		doc, err := parsePDF(file)
		if err != nil {
			log.Warn().Err(err).Str("file", file).Msg("Skipping unparsable PDF")
			continue
		}
		chunks = append(chunks, l.chunkDocument(doc)...)
	}
	return chunks, nil
}

// ListPDFs returns the paths of all regular files in dir with a .pdf
// extension, sorted lexicographically by filename. All other files are
// silently ignored.
func ListPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read documents directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.ToLower(filepath.Ext(entry.Name())) != ".pdf" {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func parsePDF(filePath string) (models.Document, error) {
	doc := models.Document{Path: filePath}

	f, err := os.Open(filePath)
	if err != nil {
		return doc, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return doc, err
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return doc, err
	}

	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return doc, err
		}
		doc.Pages = append(doc.Pages, pageText)
	}
	return doc, nil
}

// chunkDocument splits every page of a document with the sliding window and
// numbers the chunks sequentially within the document.
func (l *DirectoryLoader) chunkDocument(doc models.Document) []models.Chunk {
	var chunks []models.Chunk
	chunkID := 0
	for pageIdx, pageText := range doc.Pages {
		for _, text := range SplitText(pageText, l.ChunkSize, l.ChunkOverlap) {
			chunkID++
			chunks = append(chunks, models.Chunk{
				Content:        text,
				SourceFilename: filepath.Base(doc.Path),
				PageNumber:     pageIdx + 1,
				ChunkID:        chunkID,
			})
		}
	}
	return chunks
}

// SplitText splits text into windows of chunkSize characters where
// consecutive windows share overlapChars trailing/leading characters; the
// window advances by chunkSize-overlapChars each step. The final chunk may
// be shorter than chunkSize. Text no longer than chunkSize yields a single
// chunk; empty text yields none.
func SplitText(text string, chunkSize, overlapChars int) []string {
	if chunkSize <= 0 {
		return nil
	}
	if overlapChars < 0 {
		overlapChars = 0
	}
	if overlapChars >= chunkSize {
		overlapChars = chunkSize / 2
	}
	if len(text) == 0 {
		return nil
	}
	if len(text) <= chunkSize {
		return []string{text}
	}

	step := chunkSize - overlapChars
	var chunks []string
	for start := 0; ; start += step {
		end := min(start+chunkSize, len(text))
		chunks = append(chunks, text[start:end])
		if end == len(text) {
			break
		}
	}
	return chunks
}
