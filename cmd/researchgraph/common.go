package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/smallnest/researchgraph/config"
	"github.com/smallnest/researchgraph/knowledge"
	"github.com/smallnest/researchgraph/log"
	"github.com/smallnest/researchgraph/metrics"
	"github.com/smallnest/researchgraph/research"
	rediscache "github.com/smallnest/researchgraph/store/redis"
)

// newSession is replaced in tests.
var newSession = research.NewSession

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// env is what every research command needs: resolved config, logger,
// metrics and an optional response cache.
type env struct {
	cfg      *config.Config
	logger   log.Logger
	registry *prometheus.Registry
	metrics  *metrics.Recorder
	cache    *rediscache.SearchCache
}

func loadEnv(cmd *cobra.Command) (*env, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Lookup("search-api") != nil && cmd.Flags().Changed("search-api") {
		v, _ := cmd.Flags().GetString("search-api")
		api, err := config.ParseSearchAPI(v)
		if err != nil {
			return nil, err
		}
		cfg.SearchAPI = api
	}
	if cmd.Flags().Lookup("max-loops") != nil && cmd.Flags().Changed("max-loops") {
		cfg.MaxWebResearchLoops, _ = cmd.Flags().GetInt("max-loops")
	}
	if cmd.Flags().Lookup("raw") != nil && cmd.Flags().Changed("raw") {
		cfg.IncludeRawContent, _ = cmd.Flags().GetBool("raw")
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Logging.Level = lvl
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level, err := log.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	logger := log.NewWithOutput(cmd.ErrOrStderr(), level)
	log.SetDefaultLogger(logger)

	e := &env{
		cfg:      cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
	}
	if e.metrics, err = metrics.NewRecorder(e.registry); err != nil {
		return nil, err
	}
	if cfg.Cache.RedisAddr != "" {
		e.cache = rediscache.NewSearchCache(rediscache.Options{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
			Prefix:   cfg.Cache.Prefix,
			TTL:      cfg.Cache.TTL,
		})
	}
	return e, nil
}

func (e *env) session() (*research.Session, error) {
	opts := []research.SessionOption{
		research.WithSessionLogger(e.logger),
		research.WithSessionMetrics(e.metrics),
	}
	if e.cache != nil {
		opts = append(opts, research.WithSearchCache(e.cache))
	}
	return newSession(e.cfg, opts...)
}

func (e *env) Close() error {
	if e.cache != nil {
		return e.cache.Close()
	}
	return nil
}

// printStats writes every counter in the registry, sorted by name.
func (e *env) printStats(w io.Writer) error {
	families, err := e.registry.Gather()
	if err != nil {
		return err
	}
	sort.Slice(families, func(i, j int) bool { return families[i].GetName() < families[j].GetName() })

	fmt.Fprintln(w, headingStyle.Render("Stats"))
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			name := mf.GetName()
			for _, lp := range m.GetLabel() {
				name += fmt.Sprintf(" %s=%s", lp.GetName(), lp.GetValue())
			}
			fmt.Fprintf(w, "  %s %g\n", name, m.GetCounter().GetValue())
		}
	}
	return nil
}

func writeGraph(path string, g *knowledge.Graph) error {
	data, err := json.MarshalIndent(g.Snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode graph: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
