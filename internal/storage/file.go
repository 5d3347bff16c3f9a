package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spigell/applicant-screener/internal/applicant"
	"github.com/spigell/applicant-screener/internal/scoring"
)

// File keeps records in a single JSON document on disk.
type File struct {
	path string
	mu   sync.Mutex
}

type fileDocument struct {
	Items []Record `json:"items"`
}

func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Save(_ context.Context, a applicant.Applicant) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	doc.Items = append(doc.Items, Record{ID: id, Applicant: a})

	if err := f.store(doc); err != nil {
		return "", err
	}
	return id, nil
}

func (f *File) UpdateScore(_ context.Context, id string, result scoring.Result) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return err
	}

	for i := range doc.Items {
		if doc.Items[i].ID != id {
			continue
		}
		scoredAt := time.Now().UTC()
		doc.Items[i].Result = &result
		doc.Items[i].ScoredAt = &scoredAt
		return f.store(doc)
	}

	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

func (f *File) List(_ context.Context, limit int) ([]Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return nil, err
	}

	sortRecords(doc.Items)
	return limitRecords(doc.Items, limit), nil
}

func (f *File) Close() error {
	return nil
}

func (f *File) load() (*fileDocument, error) {
	file, err := os.Open(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return &fileDocument{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &fileDocument{}, nil
	}

	var doc fileDocument
	if err := json.NewDecoder(file).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.path, err)
	}
	return &doc, nil
}

func (f *File) store(doc *fileDocument) error {
	tmp := f.path + ".tmp"

	file, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}

	return os.Rename(tmp, f.path)
}
