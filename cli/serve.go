package cli

import (
	"mindmap/diagram"
	"mindmap/editor"
	"mindmap/logging"
	"mindmap/persist"
	"mindmap/server"

	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var ephemeral bool

	cmd := &cobra.Command{
		Use:   "serve [file]",
		Short: "Serve the mind map over HTTP and websockets",
		Long: `Run the editor engine behind an HTTP API for browser front-ends.

  GET  /api/scene            current scene as JSON
  GET  /api/document         the persisted document
  GET  /api/commands         menu command names
  POST /api/commands/{name}  run a menu command
  GET  /api/ws               websocket: send input events, receive scenes`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, args)
			if err != nil {
				return err
			}
			closer, err := setupLogging(cfg, false)
			if err != nil {
				return err
			}
			defer closer.Close()

			ctx, cancel := signalContext()
			defer cancel()

			var (
				bs    persist.BlobStore
				doc   diagram.Document
				store *persist.FileStore
			)
			if ephemeral {
				bs = persist.NewMemoryStore(nil)
				doc = diagram.NewDocument()
			} else {
				store, doc = openDocument(cfg)
				bs = store
			}

			ed := editor.New(doc, cfg.EditorOptions())
			ed.SetPersister(bs)
			srv := server.New(ed)

			if store != nil && cfg.Watch {
				if err := persist.Watch(ctx, store, srv.Reload); err != nil {
					logging.Warn("file watching disabled", "error", err)
				}
			}
			return srv.ListenAndServe(ctx, cfg.Addr)
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default localhost:8080)")
	cmd.Flags().BoolVar(&ephemeral, "ephemeral", false, "Keep the document in memory only")
	return cmd
}
