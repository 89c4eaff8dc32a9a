package db

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ldi/taskmaster/pkg/models"
)

// ExportDocument is the import/export file format: one JSON document with
// the three collections and the export timestamp.
type ExportDocument struct {
	Tasks      []models.Task  `json:"tasks"`
	Events     []models.Event `json:"events"`
	Tags       []models.Tag   `json:"tags"`
	ExportDate time.Time      `json:"exportDate"`
}

// ExportJSON writes the persisted state to the given path atomically using
// a temporary file.
func (db *DB) ExportJSON(ctx context.Context, path string) error {
	state, err := db.LoadState(ctx)
	if err != nil {
		return err
	}

	doc := ExportDocument{
		Tasks:      emptyIfNil(state.Tasks),
		Events:     emptyIfNil(state.Events),
		Tags:       emptyIfNil(state.Tags),
		ExportDate: time.Now().UTC(),
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal export: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, "export-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if tempFile != nil {
			tempFile.Close()
			os.Remove(tempFile.Name())
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	filename := tempFile.Name()
	tempFile = nil // Prevent defer from removing it

	if err := os.Rename(filename, path); err != nil {
		os.Remove(filename)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// ImportJSON reads an export document and wholesale-replaces each
// collection present in it. Absent collections are left untouched; there
// is no merging.
func (db *DB) ImportJSON(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read import file: %w", err)
	}

	var doc ExportDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse import file: %w", err)
	}

	if doc.Tasks != nil {
		if err := db.setCollection(ctx, keyTasks, doc.Tasks); err != nil {
			return err
		}
	}
	if doc.Events != nil {
		if err := db.setCollection(ctx, keyEvents, doc.Events); err != nil {
			return err
		}
	}
	if doc.Tags != nil {
		if err := db.setCollection(ctx, keyTags, doc.Tags); err != nil {
			return err
		}
	}

	return nil
}
