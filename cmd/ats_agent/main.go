// Package main provides the entry point for the ATS résumé analyzer CLI and HTTP API server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jonathan/ats-analyzer/internal/config"
	"github.com/jonathan/ats-analyzer/internal/db"
	"github.com/jonathan/ats-analyzer/internal/logger"
	"github.com/jonathan/ats-analyzer/internal/rules"
	"github.com/jonathan/ats-analyzer/internal/types"
)

// app carries state shared by every command once the root pre-run has loaded it
type app struct {
	v          *viper.Viper
	configPath string
	cfg        *config.Config
	log        *zap.Logger
}

func newRootCmd() *cobra.Command {
	return newApp().rootCmd()
}

func newApp() *app {
	return &app{v: config.New()}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ats_agent",
		Short: "ATS résumé analyzer",
		Long: `Scores plain-text résumés the way an applicant tracking system would: section coverage, keyword
matching, formatting, experience quality and skills relevance, with an explanation for every point.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.init,
		PersistentPostRun: func(*cobra.Command, []string) { a.sync() },
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Path to a YAML or JSON config file (ATS_* environment variables override it)")
	flags.BoolP("json", "j", false, "JSON format for logging")
	flags.BoolP("debug", "d", false, "Debug logging")
	flags.String("rules-dir", "", "Read rule documents from this directory instead of the configured source")
	_ = a.v.BindPFlag("log.json", flags.Lookup("json"))
	_ = a.v.BindPFlag("log.debug", flags.Lookup("debug"))
	_ = a.v.BindPFlag("rules.dir", flags.Lookup("rules-dir"))

	root.AddCommand(
		newAnalyzeCmd(a),
		newNormalizeCmd(a),
		newServeCmd(a),
		newValidateRulesCmd(a),
		newPublishRulesCmd(a),
	)
	return root
}

// init loads configuration and builds the logger before any command runs
func (a *app) init(cmd *cobra.Command, _ []string) error {
	if cmd.Flags().Changed("rules-dir") {
		a.v.Set("rules.source", config.RulesDir)
	}

	cfg, err := config.LoadConfig(a.v, a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	log, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	a.log = log
	return nil
}

// sync flushes buffered log entries. Commands can run more than once on the
// same app, so it is safe to call repeatedly and before init.
func (a *app) sync() {
	if a.log != nil {
		_ = a.log.Sync()
	}
}

// ruleSource opens the configured rule source. The returned close function
// is never nil.
func (a *app) ruleSource(ctx context.Context) (rules.Source, func(), error) {
	switch a.cfg.Rules.Source {
	case config.RulesDir:
		return rules.DirSource{Dir: a.cfg.Rules.Dir}, func() {}, nil
	case config.RulesPostgres:
		database, err := db.Connect(ctx, a.cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return rules.StoreSource{Store: database}, database.Close, nil
	default:
		return rules.EmbeddedSource{}, func() {}, nil
	}
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp()
	err := a.rootCmd().ExecuteContext(ctx)
	// Failed commands skip PersistentPostRun
	a.sync()
	if err != nil {
		if code := types.CodeOf(err); code != types.CodeInternal {
			fmt.Fprintf(os.Stderr, "Error [%s]: %v\n", code, err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
