package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/roach88/motif/internal/engine"
	"github.com/roach88/motif/internal/graph"
	"github.com/roach88/motif/internal/graphfile"
	"github.com/roach88/motif/internal/metrics"
	"github.com/roach88/motif/internal/motif"
	"github.com/roach88/motif/internal/store"
)

// session carries what one command invocation needs: a logger, a private
// metrics registry, the finder, and the store when one is opened.
type session struct {
	opts     *RootOptions
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	store    *store.Store
	finder   *motif.Finder
}

// newLogger writes text logs to w. Verbose lowers the level to debug.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func newSession(opts *RootOptions, cmd *cobra.Command) (*session, error) {
	reg := prometheus.NewRegistry()
	s := &session{
		opts:     opts,
		logger:   newLogger(cmd.ErrOrStderr(), opts.Verbose),
		registry: reg,
		metrics:  metrics.New(reg),
	}

	var e engine.Engine
	switch opts.Engine {
	case "", engine.NameMemory:
		e = engine.NewMemory(engine.WithLogger(s.logger))
	case engine.NameSQLite:
		st, err := s.openStore()
		if err != nil {
			return nil, err
		}
		e = engine.NewSQLite(st, engine.WithLogger(s.logger))
	default:
		return nil, &CommandError{Code: ErrCodeGeneric, Message: fmt.Sprintf("unknown engine %q", opts.Engine)}
	}

	s.finder = motif.NewFinder(
		motif.WithEngine(e),
		motif.WithLogger(s.logger),
		motif.WithMetrics(s.metrics),
	)
	return s, nil
}

// openStore opens --db, or a private in-memory database when --db is unset.
func (s *session) openStore() (*store.Store, error) {
	if s.store != nil {
		return s.store, nil
	}
	var (
		st  *store.Store
		err error
	)
	if s.opts.DB == "" {
		st, err = store.OpenMemory()
	} else {
		st, err = store.Open(s.opts.DB)
	}
	if err != nil {
		return nil, err
	}
	s.store = st
	return st, nil
}

// graph resolves the input graph. --graph wins over --db.
func (s *session) graph(ctx context.Context) (*graph.Graph, error) {
	if s.opts.Graph != "" {
		g, err := graphfile.Load(s.opts.Graph)
		if err != nil {
			return nil, err
		}
		s.logger.Debug("graph loaded",
			"path", s.opts.Graph,
			"vertices", g.Vertices().Len(),
			"edges", g.Edges().Len())
		return g, nil
	}

	if s.opts.DB == "" {
		return nil, &CommandError{Code: ErrCodeNoGraph, Message: "no graph given: use --graph or --db"}
	}
	st, err := s.openStore()
	if err != nil {
		return nil, err
	}
	_, ok, err := st.Info(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &CommandError{Code: ErrCodeNoGraph, Message: fmt.Sprintf("no graph loaded in %s", s.opts.DB)}
	}
	return st.ReadGraph(ctx)
}

// close releases the store and dumps metrics when --metrics is set.
func (s *session) close(cmd *cobra.Command) {
	if s.opts.Metrics {
		if err := metrics.WriteText(cmd.ErrOrStderr(), s.registry); err != nil {
			s.logger.Warn("failed to write metrics", "error", err)
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn("failed to close store", "error", err)
		}
	}
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}
