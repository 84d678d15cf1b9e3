// Package cli implements the newsdesk command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"newsdesk/internal/app"
	"newsdesk/internal/build"
	"newsdesk/internal/config"
	"newsdesk/internal/logger"
	"newsdesk/internal/news"
)

type rootFlags struct {
	configFile string
	verbose    bool
}

// NewRootCmd builds the command tree. Each call returns fresh flag state.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "newsdesk",
		Short: "News aggregation site with a cache-backed upstream client",
		Long: `newsdesk serves the latest headlines from a News API compatible
upstream. Responses are cached, and when the API is unavailable the
last known results or a bundled sample dataset are served instead.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flags.configFile, "config", "", "path to YAML config file")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "log to stderr for one-shot commands")

	root.AddCommand(
		newServeCmd(flags),
		newHeadlinesCmd(flags),
		newSearchCmd(flags),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command. It is called by main.main.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newServeCmd(flags *rootFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flags.configFile)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			if err := logger.InitLogger(cfg.Env); err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv, err := app.NewServer(cfg, logger.Log)
			if err != nil {
				logger.Log.Error("Failed to initialize server", zap.Error(err))
				return err
			}
			if err := srv.Run(ctx, cfg.Server.Addr); err != nil {
				logger.Log.Error("Server exited with error", zap.Error(err))
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (overrides config and PORT)")
	return cmd
}

func newHeadlinesCmd(flags *rootFlags) *cobra.Command {
	var p news.HeadlineParams
	cmd := &cobra.Command{
		Use:   "headlines",
		Short: "Print top headlines as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newsService(flags)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), svc.TopHeadlines(cmd.Context(), p))
		},
	}
	cmd.Flags().StringVar(&p.Category, "category", "", "category, e.g. technology")
	cmd.Flags().StringVar(&p.Country, "country", "", "two-letter country code")
	cmd.Flags().IntVar(&p.Page, "page", 0, "page number")
	cmd.Flags().IntVar(&p.PageSize, "page-size", 0, "articles per page")
	return cmd
}

func newSearchCmd(flags *rootFlags) *cobra.Command {
	var p news.SearchParams
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search all articles and print them as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newsService(flags)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), svc.Search(cmd.Context(), args[0], p))
		},
	}
	cmd.Flags().StringVar(&p.SortBy, "sort-by", news.DefaultSortBy, "publishedAt, relevancy or popularity")
	cmd.Flags().IntVar(&p.Page, "page", 0, "page number")
	cmd.Flags().IntVar(&p.PageSize, "page-size", 0, "articles per page")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "newsdesk %s (built: %s)\n", build.FullVersion(), build.BuildTime)
		},
	}
}

func newsService(flags *rootFlags) (*news.Service, error) {
	cfg, err := config.Load(flags.configFile)
	if err != nil {
		return nil, err
	}
	log := zap.NewNop()
	if flags.verbose {
		if log, err = zap.NewDevelopment(); err != nil {
			return nil, err
		}
	}
	svc, _ := app.NewNewsService(cfg, log)
	return svc, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

