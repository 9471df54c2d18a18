package pipeline

import (
	"context"
	"fmt"

	"github.com/insightdelivered/statement-extractor/internal/logger"
	"github.com/insightdelivered/statement-extractor/internal/models"
)

// Ingester runs the full upload flow for one document:
//  1. extract transactions with the Processor
//  2. categorize them
//  3. store them
//  4. record the file in the user profile
//
// Steps 2-4 only run for successful extractions. Any of the collaborators
// may be nil, in which case that step is skipped.
type Ingester struct {
	processor   *Processor
	categorizer Categorizer
	store       TransactionStore
	profile     ProfileTracker
}

// NewIngester wires an Ingester.
func NewIngester(p *Processor, c Categorizer, s TransactionStore, pt ProfileTracker) *Ingester {
	return &Ingester{processor: p, categorizer: c, store: s, profile: pt}
}

// Ingest processes doc. The result is always returned; err is set only when
// persisting a successful extraction fails.
func (i *Ingester) Ingest(ctx context.Context, doc Document) (models.ExtractionResult, error) {
	result := i.processor.Process(ctx, doc)
	if !result.Succeeded {
		return result, nil
	}

	if i.categorizer != nil {
		result.Transactions = i.categorizer.Apply(result.Transactions)
	}

	if i.store != nil {
		if err := i.store.Save(ctx, result); err != nil {
			return result, fmt.Errorf("Ingest: save transactions: %w", err)
		}
	}

	if i.profile != nil {
		if _, err := i.profile.AddFile(result.SourceFileID, result.DocumentName, result.Count); err != nil {
			return result, fmt.Errorf("Ingest: record file: %w", err)
		}
	}

	log := logger.FromContext(ctx)
	log.Debug().
		Str("source_file_id", result.SourceFileID).
		Int("count", result.Count).
		Msg("Ingested document")
	return result, nil
}

// RemoveFile deletes every transaction of a document and forgets the file.
// It returns the number of transactions deleted.
func (i *Ingester) RemoveFile(ctx context.Context, sourceFileID string) (int64, error) {
	var deleted int64
	if i.store != nil {
		n, err := i.store.DeleteFile(ctx, sourceFileID)
		if err != nil {
			return 0, fmt.Errorf("RemoveFile: delete transactions: %w", err)
		}
		deleted = n
	}
	if i.profile != nil {
		if _, err := i.profile.RemoveFile(sourceFileID); err != nil {
			return deleted, fmt.Errorf("RemoveFile: update profile: %w", err)
		}
	}
	return deleted, nil
}
