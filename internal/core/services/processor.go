package services

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/custodia-labs/ragchat-cli/internal/chunker"
	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
	"github.com/custodia-labs/ragchat-cli/internal/logger"
)

// supportedExtensions is the closed allow-list of indexable file types.
var supportedExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".py":   true,
	".js":   true,
	".json": true,
	".csv":  true,
	".html": true,
	".xml":  true,
}

// decodeLadder is the ordered list of single-byte decoders tried when a
// file is not valid UTF-8. Ordering is part of the contract: it decides
// what content non-UTF-8 files produce, so it must stay stable.
var decodeLadder = []encoding.Encoding{
	charmap.ISO8859_1,
	charmap.Windows1252,
}

// DocumentProcessor turns source files into chunk records.
type DocumentProcessor struct {
	chunker *chunker.Chunker
	log     *logger.Logger
}

// NewDocumentProcessor creates a document processor using the given chunker.
func NewDocumentProcessor(c *chunker.Chunker, log *logger.Logger) *DocumentProcessor {
	if log == nil {
		log = logger.Nop()
	}
	return &DocumentProcessor{chunker: c, log: log}
}

// Supported reports whether the file extension is on the allow-list.
func (p *DocumentProcessor) Supported(path string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(path))]
}

// Hash returns the SHA-256 of the raw file bytes as a hex string. The
// hash is the change-detection key, so it is taken over the bytes on
// disk, never over cleaned text.
func (p *DocumentProcessor) Hash(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Process reads, cleans and chunks a single file. Unsupported extensions
// and empty files are skips: they return no records and no error. An
// unreadable file is an error for the caller to log and move past.
func (p *DocumentProcessor) Process(path string) ([]domain.ChunkRecord, error) {
	if !p.Supported(path) {
		p.log.Debug("skipping unsupported file type: %s", path)
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	content := decodeText(data)
	if strings.TrimSpace(content) == "" {
		p.log.Debug("skipping empty file: %s", path)
		return nil, nil
	}

	sum := sha256.Sum256(data)
	fileHash := hex.EncodeToString(sum[:])

	cleaned := cleanText(content)
	chunks := p.chunker.Chunk(cleaned)
	if len(chunks) == 0 {
		p.log.Debug("no chunks produced for: %s", path)
		return nil, nil
	}

	now := time.Now()
	records := make([]domain.ChunkRecord, len(chunks))
	for i, chunk := range chunks {
		records[i] = domain.ChunkRecord{
			SourcePath:  path,
			Content:     chunk,
			ChunkID:     domain.MakeChunkID(fileHash, i),
			FileHash:    fileHash,
			ChunkIndex:  i,
			TotalChunks: len(chunks),
			CreatedAt:   now,
			SizeBytes:   int64(len(data)),
			FileType:    strings.ToLower(filepath.Ext(path)),
		}
	}

	p.log.Debug("processed %s: %d chunks", path, len(records))
	return records, nil
}

// ScanDirectory recursively collects supported files under dir, sorted
// by path for a deterministic pass order across platforms.
func (p *DocumentProcessor) ScanDirectory(dir string) ([]string, error) {
	var paths []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if p.Supported(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan directory: %w", err)
	}

	sort.Strings(paths)
	return paths, nil
}

// decodeText converts raw file bytes to a string. Valid UTF-8 passes
// through; otherwise the single-byte decoders are tried in order, with a
// final permissive fallback that substitutes undecodable bytes.
func decodeText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}

	for _, enc := range decodeLadder {
		decoded, err := enc.NewDecoder().Bytes(data)
		if err == nil {
			return string(decoded)
		}
	}

	return strings.ToValidUTF8(string(data), string(utf8.RuneError))
}

// cleanText strips each line, drops blank lines and rejoins. This is a
// normalisation step, not a semantic transform, and must stay identical
// between runs so chunk boundaries are reproducible for the same bytes.
func cleanText(content string) string {
	lines := strings.Split(content, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
