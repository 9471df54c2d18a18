package pipeline

import (
	"context"

	"github.com/insightdelivered/statement-extractor/internal/extractor"
	"github.com/insightdelivered/statement-extractor/internal/models"
	"github.com/insightdelivered/statement-extractor/internal/profile"
)

// DocumentReader opens a document and exposes its tables and raw text.
// The returned Source must be closed by the caller.
type DocumentReader interface {
	Open(path string) (extractor.Source, error)
}

// Categorizer tags transactions with a category and icon.
type Categorizer interface {
	Apply(txns []models.Transaction) []models.Transaction
}

// TransactionStore persists extracted transactions for querying.
type TransactionStore interface {
	Save(ctx context.Context, result models.ExtractionResult) error
	DeleteFile(ctx context.Context, sourceFileID string) (int64, error)
}

// ProfileTracker records which documents a user has uploaded.
type ProfileTracker interface {
	AddFile(fileID, filename string, transactionCount int) (profile.FileInfo, error)
	RemoveFile(fileID string) (bool, error)
}
