package db

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/ats-analyzer/internal/rules"
)

// LatestRuleSet returns the most recently published content and version of a
// rule document, or rules.ErrRuleSetNotFound.
func (db *DB) LatestRuleSet(ctx context.Context, name string) ([]byte, string, error) {
	var content []byte
	var version string
	err := db.q.QueryRow(ctx,
		`SELECT content, version FROM rule_sets
		 WHERE name = $1
		 ORDER BY published_at DESC, id DESC
		 LIMIT 1`,
		name,
	).Scan(&content, &version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", rules.ErrRuleSetNotFound
		}
		return nil, "", fmt.Errorf("failed to get rule set %s: %w", name, err)
	}
	return content, version, nil
}

// SaveRuleSet stores one version of a rule document. Publishing an existing
// version replaces its content and makes it the latest.
func (db *DB) SaveRuleSet(ctx context.Context, name, version string, content []byte) error {
	if !slices.Contains(rules.Documents, name) {
		return fmt.Errorf("unknown rule document %q", name)
	}
	if version == "" {
		return fmt.Errorf("rule document %s has no version", name)
	}

	_, err := db.q.Exec(ctx,
		`INSERT INTO rule_sets (name, version, content)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (name, version) DO UPDATE SET content = $3, published_at = NOW()`,
		name, version, content,
	)
	if err != nil {
		return fmt.Errorf("failed to save rule set %s@%s: %w", name, version, err)
	}
	return nil
}

// PublishRuleSets validates a complete set of rule documents and stores each
// one under its declared version. Nothing is stored if validation fails.
func (db *DB) PublishRuleSets(ctx context.Context, raw map[string][]byte) (map[string]string, error) {
	set, err := rules.Parse(raw)
	if err != nil {
		return nil, err
	}
	versions := set.Versions()
	for _, doc := range rules.Documents {
		if err := db.SaveRuleSet(ctx, doc, versions[doc], raw[doc]); err != nil {
			return nil, err
		}
	}
	return versions, nil
}
