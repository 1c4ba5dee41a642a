package rules

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed defaults/*.json
var defaultFiles embed.FS

// ErrRuleSetNotFound is returned by a RuleStore when no version of a document exists
var ErrRuleSetNotFound = errors.New("rule set not found")

// Source supplies the raw bytes of a rule document by name
type Source interface {
	Name() string
	Read(ctx context.Context, doc string) ([]byte, error)
}

// EmbeddedSource serves the rule tables compiled into the binary
type EmbeddedSource struct{}

// Name implements Source.
func (EmbeddedSource) Name() string { return "embedded" }

// Read implements Source.
func (EmbeddedSource) Read(_ context.Context, doc string) ([]byte, error) {
	data, err := defaultFiles.ReadFile("defaults/" + doc + ".json")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded rules %s: %w", doc, err)
	}
	return data, nil
}

// DefaultDocument returns the embedded default for one rule document.
func DefaultDocument(doc string) ([]byte, error) {
	return EmbeddedSource{}.Read(context.Background(), doc)
}

// DirSource reads <Dir>/<doc>.json from disk
type DirSource struct {
	Dir string
}

// Name implements Source.
func (s DirSource) Name() string { return "dir:" + s.Dir }

// Read implements Source.
func (s DirSource) Read(_ context.Context, doc string) ([]byte, error) {
	path := filepath.Join(s.Dir, doc+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file %s: %w", path, err)
	}
	return data, nil
}

// RuleStore is the persistence contract for published rule documents
type RuleStore interface {
	// LatestRuleSet returns the content and version of the newest published
	// document, or ErrRuleSetNotFound.
	LatestRuleSet(ctx context.Context, name string) ([]byte, string, error)
}

// StoreSource reads the latest published rule documents from a RuleStore
type StoreSource struct {
	Store RuleStore
}

// Name implements Source.
func (s StoreSource) Name() string { return "postgres" }

// Read implements Source.
func (s StoreSource) Read(ctx context.Context, doc string) ([]byte, error) {
	if s.Store == nil {
		return nil, fmt.Errorf("rule store is not configured")
	}
	data, _, err := s.Store.LatestRuleSet(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule set %s: %w", doc, err)
	}
	return data, nil
}
