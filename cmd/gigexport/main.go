// Command gigexport dumps paginated listings to CSV or XLSX by walking
// every page forward from the first one.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dalemusser/gigboard/config"
	"github.com/dalemusser/gigboard/internal/settings"
	"github.com/dalemusser/gigboard/internal/store"
	"github.com/dalemusser/gigboard/logging"
	"github.com/dalemusser/gigboard/pantry/export"
	pmongo "github.com/dalemusser/gigboard/pantry/mongo"
	"github.com/dalemusser/gigboard/pantry/pagination"
	"github.com/dalemusser/gigboard/pantry/version"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type options struct {
	format string
	status int
	out    string
	level  string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options
	root := &cobra.Command{
		Use:           "gigexport",
		Short:         "Export gigboard listings to CSV or XLSX",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&opts.format, "format", "csv", "output format: csv or xlsx")
	pf.IntVar(&opts.status, "status", 0, "status filter: 0 any, N>0 at least N, N<0 exactly -N")
	pf.StringVarP(&opts.out, "out", "o", "-", `output file, "-" for stdout`)
	pf.StringVar(&opts.level, "log_level", "warn", "log level")
	cobra.CheckErr(config.RegisterAppFlags(pf, settings.Keys()))

	root.AddCommand(
		listCmd("users", "Export every user", &opts, exportUsers),
		listCmd("projects", "Export every project", &opts, exportProjects),
	)
	return root
}

// exportFn writes one listing through w.
type exportFn func(ctx context.Context, s *store.Store, status pagination.StatusFilter, w export.Writer) (tally, error)

func listCmd(name, short string, opts *options, fn exportFn) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, name, *opts, fn)
		},
	}
}

func run(cmd *cobra.Command, name string, opts options, fn exportFn) error {
	logger, err := logging.BuildLogger(opts.level, "dev")
	if err != nil {
		return err
	}
	defer logger.Sync()

	format, err := export.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	s := settings.Parse(config.LoadApp(logger, cmd.Flags(), settings.Keys()))
	if err := s.ValidateStore(); err != nil {
		return err
	}

	ctx := cmd.Context()
	client, err := pmongo.Connect(ctx, s.MongoURI, pmongo.DefaultPoolConfig())
	if err != nil {
		return fmt.Errorf("mongo connect: %w", err)
	}
	defer client.Disconnect(context.Background())

	st := store.New(
		store.MongoSource(client.Database(s.MongoDatabase)),
		pagination.NewEngine(s.PageSize, logger.Named("pagination")),
		store.Options{Logger: logger.Named("store")},
	)

	out, closeOut, err := openOut(opts.out, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	w, err := export.New(format, out, name)
	if err != nil {
		closeOut()
		return err
	}

	res, err := fn(ctx, st, pagination.StatusFromCode(opts.status), w)
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	if cerr := closeOut(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	if uint64(res.Rows) < res.Total {
		logger.Warn("export skipped undecodable records",
			zap.String("listing", name),
			zap.Int("rows", res.Rows),
			zap.Uint64("total", res.Total),
		)
	}
	logger.Info("export finished", zap.String("listing", name), zap.Int("rows", res.Rows), zap.String("out", opts.out))
	return nil
}

func openOut(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
