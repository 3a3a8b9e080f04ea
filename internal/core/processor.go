// Package core imports word pairs from documents into a learner's lessons.
package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/lexidrill/lexidrill/internal/ai"
	"github.com/lexidrill/lexidrill/internal/db"
	"github.com/lexidrill/lexidrill/internal/parser"
)

// ErrImportDisabled is returned when no AI client is configured.
var ErrImportDisabled = errors.New("document import is disabled")

// Processor orchestrates document processing
type Processor struct {
	DB       *db.Database
	AI       ai.PairExtractor
	Language string
	Logger   *zap.Logger
}

// ImportResult contains the results of importing a document
type ImportResult struct {
	NewWords          int    `json:"new_words"`
	SkippedDuplicates int    `json:"skipped_duplicates"`
	Failed            int    `json:"failed"`
	TotalProcessed    int    `json:"total_processed"`
	Language          string `json:"language"`
	FilePath          string `json:"file_path,omitempty"`
}

// NewProcessor creates a new Processor instance
func NewProcessor(database *db.Database, extractor ai.PairExtractor, language string, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		DB:       database,
		AI:       extractor,
		Language: language,
		Logger:   logger,
	}
}

// ImportDocument extracts word pairs from a file and adds the new ones to
// the user's lessons.
func (p *Processor) ImportDocument(ctx context.Context, externalID, filePath string) (*ImportResult, error) {
	if err := validateFilePath(filePath); err != nil {
		return nil, fmt.Errorf("invalid file path: %w", err)
	}

	if !parser.Supported(filePath) {
		return nil, fmt.Errorf("%w: %s (only .pdf, .docx and .txt are supported)", parser.ErrUnsupportedType, filepath.Ext(filePath))
	}

	text, err := parser.ParseDocument(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	result, err := p.ImportText(ctx, externalID, text)
	if err != nil {
		return nil, err
	}
	result.FilePath = filePath
	return result, nil
}

// ImportText extracts word pairs from already parsed text.
func (p *Processor) ImportText(ctx context.Context, externalID, text string) (*ImportResult, error) {
	if p.AI == nil {
		return nil, ErrImportDisabled
	}

	pairs, err := p.AI.ExtractPairs(ctx, text, p.Language)
	if err != nil {
		return nil, fmt.Errorf("failed to extract word pairs: %w", err)
	}

	userID, err := p.DB.Provision(ctx, externalID, "")
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	result := p.importPairs(ctx, userID, pairs)
	result.Language = p.Language

	p.Logger.Info("document imported",
		zap.String("external_id", externalID),
		zap.Int("new_words", result.NewWords),
		zap.Int("skipped", result.SkippedDuplicates),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

// importPairs adds every pair the user does not already have active.
func (p *Processor) importPairs(ctx context.Context, userID int64, pairs []db.Pair) *ImportResult {
	result := &ImportResult{}

	known := make(map[db.Pair]bool)
	active, err := p.DB.ActiveWords(ctx, userID)
	if err != nil {
		p.Logger.Warn("failed to load active words, duplicates may be added", zap.Error(err))
	}
	for _, w := range active {
		known[normalizePair(w.Pair())] = true
	}

	for _, pair := range pairs {
		result.TotalProcessed++

		key := normalizePair(pair)
		if known[key] {
			result.SkippedDuplicates++
			continue
		}

		wordID, err := p.DB.AddPersonalWord(ctx, userID, pair.English, pair.Native)
		if err == nil {
			err = p.DB.Enroll(ctx, userID, wordID)
		}
		if err != nil {
			p.Logger.Warn("failed to import pair",
				zap.String("english", pair.English),
				zap.Error(err),
			)
			result.Failed++
			continue
		}

		known[key] = true
		result.NewWords++
	}

	return result
}

func normalizePair(p db.Pair) db.Pair {
	return db.Pair{English: db.NormalizeText(p.English), Native: db.NormalizeText(p.Native)}
}

// UserStats returns the lesson statistics of the user behind externalID.
func (p *Processor) UserStats(ctx context.Context, externalID string) (*db.Stats, error) {
	user, err := p.DB.GetUserByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	return p.DB.Stats(ctx, user.ID)
}

// validateFilePath checks if a file path is valid, exists, and is a regular file
func validateFilePath(filePath string) error {
	if strings.TrimSpace(filePath) == "" {
		return fmt.Errorf("file path cannot be empty")
	}

	info, err := os.Stat(filePath)
	if err != nil {
		return fmt.Errorf("file does not exist: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file")
	}

	return nil
}
