package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/jonathan/ats-analyzer/internal/db"
	"github.com/jonathan/ats-analyzer/internal/rules"
)

func newValidateRulesCmd(a *app) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "validate-rules",
		Short: "Load and validate rule documents",
		Long:  `Validate-rules loads every rule document from --dir (or the configured source), checks it against its schema and semantic constraints, and prints the versions.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			var src rules.Source
			if dir != "" {
				src = rules.DirSource{Dir: dir}
			} else {
				s, closeSrc, err := a.ruleSource(ctx)
				if err != nil {
					return err
				}
				defer closeSrc()
				src = s
			}

			set, err := rules.Load(ctx, src)
			if err != nil {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Validation failed: %s\n", src.Name())
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Validation passed: %s\n", set.Source)
			printVersions(out, set.Versions())
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Directory containing sections.json, keywords.json, formatting.json and scoring.json")
	return cmd
}

func newPublishRulesCmd(a *app) *cobra.Command {
	var (
		dir   string
		dbURL string
	)

	cmd := &cobra.Command{
		Use:   "publish-rules",
		Short: "Publish a directory of rule documents to PostgreSQL",
		Long:  `Publish-rules validates every rule document in --dir and upserts them into the rule_sets table, keyed by name and meta.version.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if dbURL == "" {
				dbURL = a.cfg.DatabaseURL
			}
			if dbURL == "" {
				return fmt.Errorf("database URL is required (--db-url or ATS_DATABASE_URL)")
			}

			src := rules.DirSource{Dir: dir}
			raw := make(map[string][]byte, len(rules.Documents))
			for _, doc := range rules.Documents {
				data, err := src.Read(ctx, doc)
				if err != nil {
					return err
				}
				raw[doc] = data
			}
			// Validate before touching the database
			if _, err := rules.Parse(raw); err != nil {
				return err
			}

			database, err := db.Connect(ctx, dbURL)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := database.EnsureSchema(ctx); err != nil {
				return err
			}
			versions, err := database.PublishRuleSets(ctx, raw)
			if err != nil {
				return err
			}

			a.log.Info("rules published")
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, "Published rule sets:")
			printVersions(out, versions)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Directory containing the rule documents")
	cmd.Flags().StringVar(&dbURL, "db-url", "", "PostgreSQL connection URL (defaults to ATS_DATABASE_URL)")
	_ = cmd.MarkFlagRequired("dir")
	return cmd
}

func printVersions(w io.Writer, versions map[string]string) {
	names := make([]string, 0, len(versions))
	for name := range versions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		_, _ = fmt.Fprintf(w, "  %-12s %s\n", name, versions[name])
	}
}
