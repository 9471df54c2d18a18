package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/insightdelivered/statement-extractor/internal/extractor"
	"github.com/insightdelivered/statement-extractor/internal/logger"
	"github.com/insightdelivered/statement-extractor/internal/models"
	"github.com/insightdelivered/statement-extractor/internal/parser"
)

// ErrNoTransactions is reported when both extraction paths come up empty.
var ErrNoTransactions = errors.New("could not extract transactions")

// Document is one statement to process.
type Document struct {
	// Path is where the reader finds the file.
	Path string
	// Name is the display name; defaults to the base of Path.
	Name string
}

func (d Document) displayName() string {
	if d.Name != "" {
		return d.Name
	}
	return filepath.Base(d.Path)
}

// Processor turns one document into an ExtractionResult: tables first,
// free-text lines as the fallback. It holds no per-document state and is
// safe for concurrent use.
type Processor struct {
	reader DocumentReader
	newID  func() string
}

// NewProcessor creates a Processor reading documents through reader.
func NewProcessor(reader DocumentReader) *Processor {
	return &Processor{reader: reader, newID: NewSourceFileID}
}

// NewSourceFileID returns a short random identifier of 8 hex characters.
func NewSourceFileID() string {
	return uuid.NewString()[:8]
}

// Process extracts the transactions of doc. It never returns an error:
// document-level failures are reported through Succeeded and Error.
func (p *Processor) Process(ctx context.Context, doc Document) (result models.ExtractionResult) {
	result = models.ExtractionResult{
		SourceFileID: p.newID(),
		DocumentName: doc.displayName(),
		Transactions: []models.Transaction{},
	}
	log := logger.FromContext(ctx).With().
		Str("source_file_id", result.SourceFileID).
		Str("document", result.DocumentName).
		Logger()

	defer func() {
		if r := recover(); r != nil {
			result = failed(result, fmt.Errorf("extraction crashed: %v", r))
			log.Error().Str("error", result.Error).Msg("Extraction failed")
		}
	}()

	txns, method, err := p.extract(doc.Path, result.SourceFileID)
	if err != nil {
		log.Warn().Err(err).Msg("Extraction failed")
		return failed(result, err)
	}

	if len(txns) > 0 {
		result.Transactions = txns
	}
	result.Count = len(txns)
	result.Succeeded = result.Count > 0
	result.Method = method
	if !result.Succeeded {
		result.Method = ""
		result.Error = ErrNoTransactions.Error()
	}

	log.Info().
		Str("method", result.Method).
		Int("count", result.Count).
		Msg("Extraction finished")
	return result
}

// extract runs the table attempt and, when it yields nothing, the line
// fallback. The source is released on every return path.
func (p *Processor) extract(path, sourceFileID string) ([]models.Transaction, string, error) {
	src, err := p.reader.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer src.Close()

	tables, err := src.Tables()
	if err != nil {
		return nil, "", fmt.Errorf("read tables: %w", err)
	}
	if len(tables) > 0 {
		if txns := parser.ExtractTables(tables, sourceFileID); len(txns) > 0 {
			return txns, models.MethodTable, nil
		}
	}

	text, err := src.Text()
	if err != nil {
		return nil, "", fmt.Errorf("read text: %w", err)
	}
	return parser.ExtractLines(text, sourceFileID), models.MethodLine, nil
}

func failed(result models.ExtractionResult, err error) models.ExtractionResult {
	result.Transactions = []models.Transaction{}
	result.Count = 0
	result.Succeeded = false
	result.Method = ""
	result.Error = err.Error()
	return result
}

var _ DocumentReader = extractor.Reader{}
