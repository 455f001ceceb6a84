// Package cli is the mindmap command line: the terminal editor, the web
// server and a few helpers around the document file.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"mindmap/config"
	"mindmap/diagram"
	"mindmap/editor"
	"mindmap/logging"
	"mindmap/persist"
	"mindmap/terminal"

	"github.com/spf13/cobra"
)

var version = "0.3.0"

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mindmap [file]",
		Short: "Mind map editor for the terminal",
		Long: Brand.Sprint("mindmap") + " edits a mind map in the terminal\n" +
			Subtle.Sprint("Enter adds a child, Shift+Enter a sibling, typing renames, Ctrl+Z undoes"),
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runEditor,
	}
	cmd.SetVersionTemplate("mindmap {{ .Version }}\n")

	flags := cmd.PersistentFlags()
	flags.String("config", config.DefaultFile, "Config file")
	flags.String("file", "", "Document file (default mindmap.json)")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.String("log-file", "", "Log file (the editor logs nowhere without one)")
	flags.Bool("watch", true, "Reload the document when another program changes it")
	flags.Int("history-limit", 0, "Number of undo steps kept")
	flags.Float64("font-size", 0, "Font size of new nodes")

	cmd.Flags().Float64("cell-width", 0, "Screen pixels per terminal column")
	cmd.Flags().Float64("cell-height", 0, "Screen pixels per terminal row")

	cmd.AddCommand(
		serveCmd(),
		outlineCmd(),
		exportCmd(),
		importCmd(),
		configCmd(),
	)
	return cmd
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd().Execute()
	if err != nil {
		Bad.Fprintf(os.Stderr, "mindmap: %v\n", err)
	}
	return err
}

// loadConfig reads the configuration for cmd. A positional argument names
// the document.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, err
	}
	if len(args) > 0 {
		cfg.File = args[0]
	}
	return cfg, nil
}

// setupLogging starts logging. quiet discards logs unless a file is
// configured, for commands that own the terminal.
func setupLogging(cfg *config.Config, quiet bool) (io.Closer, error) {
	if quiet && cfg.LogFile == "" {
		return io.NopCloser(nil), nil
	}
	closer, err := logging.SetupFile(cfg.LogFile, logging.ParseLevel(cfg.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logging.Debug("logging started", "level", cfg.LogLevel, "version", version)
	return closer, nil
}

// openDocument loads the configured document file, falling back to a fresh
// document when it is missing or unreadable.
func openDocument(cfg *config.Config) (*persist.FileStore, diagram.Document) {
	store := persist.NewFileStore(cfg.File)
	doc, loaded := persist.LoadDocument(store)
	logging.Info("document opened", "path", cfg.File, "loaded", loaded, "nodes", len(doc.Nodes))
	return store, doc
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runEditor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	closer, err := setupLogging(cfg, true)
	if err != nil {
		return err
	}
	defer closer.Close()

	store, doc := openDocument(cfg)
	ed := editor.New(doc, cfg.EditorOptions())
	ed.SetPersister(store)

	ctx, cancel := signalContext()
	defer cancel()

	return terminal.Run(ctx, ed, terminal.Options{
		CellWidth:  cfg.CellWidth,
		CellHeight: cfg.CellHeight,
		Store:      store,
		Watch:      cfg.Watch,
	})
}
