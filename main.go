package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"mediaroll/internal/config"
	"mediaroll/internal/library"
	"mediaroll/internal/logger"
	"mediaroll/internal/media"
	"mediaroll/internal/probe"
	"mediaroll/internal/store"
)

// app carries what every subcommand shares once flags are parsed.
type app struct {
	cfg    *config.Config
	log    *slog.Logger
	out    io.Writer
	indent int
	debug  bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "mediaroll",
		Short:         "Query and manage a camera roll index",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.String("backend", "", "index backend: sqlite or bleve (default from MEDIAROLL_BACKEND)")
	flags.String("database", "", "the location of the index database (default from MEDIAROLL_DATABASE)")
	flags.StringP("library", "l", "", "the folder saved media is written to (default from MEDIAROLL_LIBRARY)")
	flags.IntVarP(&a.indent, "indent", "i", 2, "# of spaces to indent JSON output by")
	flags.BoolVarP(&a.debug, "debug", "d", false, "enable debug mode")

	root.AddCommand(
		newPhotosCmd(a),
		newAlbumsCmd(a),
		newSaveCmd(a),
		newDeleteCmd(a),
		newPruneCmd(a),
		newMirrorCmd(a),
		newServeCmd(a),
	)
	return root
}

// setup reads the configuration, lets explicit flags override it and then
// validates the result.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Read()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if v, _ := flags.GetString("backend"); v != "" {
		cfg.Store.Backend = strings.ToLower(v)
	}
	if v, _ := flags.GetString("database"); v != "" {
		cfg.Store.Database = config.ExpandPath(v)
	}
	if v, _ := flags.GetString("library"); v != "" {
		cfg.Store.Library = config.ExpandPath(v)
	}
	if a.debug {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.log = logger.NewWithWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
	a.out = cmd.OutOrStdout()
	return nil
}

// openStore opens the configured backend. On the first Bleve launch next to
// an existing SQLite index the SQLite rows are imported.
func (a *app) openStore(ctx context.Context) (store.Datastore, error) {
	db := a.cfg.Store.Database
	importFromSQLite := a.cfg.Store.Backend == store.BackendBleve &&
		fileExists(db) && !fileExists(store.BlevePath(db))

	ds, err := store.Open(a.cfg.Store.Backend, db)
	if err != nil {
		return nil, fmt.Errorf("open %s index: %w", a.cfg.Store.Backend, err)
	}
	if !importFromSQLite {
		return ds, nil
	}

	a.log.Info("first launch of bleve backend, importing sqlite index", "database", db)
	src, err := store.Open(store.BackendSQLite, db)
	if err != nil {
		a.log.Warn("import skipped", "error", err)
		return ds, nil
	}
	defer src.Close()

	n, err := store.Mirror(ctx, ds, src)
	if err != nil {
		a.log.Error("import failed", "copied", n, "error", err)
		return ds, nil
	}
	a.log.Info("import successful", "assets", n)
	return ds, nil
}

func (a *app) newService(ds store.Datastore, opts ...media.Option) *media.Service {
	extractor := media.NewExtractor(probe.NewFileProber(), probe.ExtensionForMimeType, a.log)
	opts = append([]media.Option{media.WithAlbumIndex(ds)}, opts...)
	return media.NewService(ds, extractor, a.log, opts...)
}

func (a *app) newLibrary(ds store.Datastore) *library.Library {
	return library.New(a.cfg.Store.Library, ds, a.log)
}

// printJSON writes v to the command output, indented by a.indent spaces when positive.
func (a *app) printJSON(v any) error {
	var (
		b   []byte
		err error
	)
	if a.indent > 0 {
		b, err = json.MarshalIndent(v, "", strings.Repeat(" ", a.indent))
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, string(b))
	return err
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

func commatize(n int) string {
	s := strconv.Itoa(n)
	if n < 0 {
		return "-" + commatize(-n)
	}
	if len(s) <= 3 {
		return s
	}
	var res []string
	for len(s) > 3 {
		res = append(res, s[len(s)-3:])
		s = s[:len(s)-3]
	}
	res = append(res, s)
	for i, j := 0, len(res)-1; i < j; i, j = i+1, j-1 {
		res[i], res[j] = res[j], res[i]
	}
	return strings.Join(res, ",")
}
