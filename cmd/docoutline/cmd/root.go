package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/MeKo-Tech/docoutline/internal/config"
	"github.com/MeKo-Tech/docoutline/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cli holds the state shared by one command tree: the configuration file
// flag, the loader and the configuration resolved before a command runs.
type cli struct {
	cfgFile string
	loader  *config.Loader
	cfg     *config.Config
}

// NewRootCommand builds the docoutline command tree. Every call returns an
// independent tree with its own viper instance.
func NewRootCommand() *cobra.Command {
	c := &cli{loader: config.NewLoader(viper.New())}

	rootCmd := &cobra.Command{
		Use:   "docoutline",
		Short: "Infer the title and heading outline of PDF documents",
		Long: `docoutline reads the page layout of a PDF and infers a document title and a
three-level heading outline (H1, H2, H3) from font sizes, numbering patterns,
bold styling and position on the page.

This tool provides:
- Single-document extraction as JSON, YAML, text or HTML
- Parallel batch processing of an input directory
- A watch mode that processes documents as they arrive
- An HTTP and WebSocket server

Examples:
  docoutline extract report.pdf
  docoutline batch --input-dir ./in --output-dir ./out
  docoutline serve --port 8080`,
		Version:      version.String(),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&c.cfgFile, "config", "",
		"config file (default is search in ., $HOME, $HOME/.config/docoutline, /etc/docoutline)")
	pf.BoolP("verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("password", "", "password for encrypted PDFs")

	v := c.loader.GetViper()
	_ = v.BindPFlag("verbose", pf.Lookup("verbose"))
	_ = v.BindPFlag("log_level", pf.Lookup("log-level"))
	_ = v.BindPFlag("password", pf.Lookup("password"))

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := c.loadConfig(); err != nil {
			return err
		}
		slog.SetDefault(newLogger(cmd.ErrOrStderr(), c.cfg))
		return nil
	}

	rootCmd.AddCommand(
		c.newExtractCmd(),
		c.newBatchCmd(),
		c.newWatchCmd(),
		c.newServeCmd(),
		c.newValidateCmd(),
		c.newLayoutCmd(),
		c.newConfigCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the command tree and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves the configuration from file, environment, defaults
// and bound flags.
func (c *cli) loadConfig() error {
	cfg, err := c.loader.LoadWithFile(c.cfgFile)
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}
	c.cfg = cfg
	return nil
}

// newLogger returns a JSON logger writing to w, which is stderr outside tests.
func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	var level slog.Level
	if cfg.Verbose {
		level = slog.LevelDebug
	} else {
		switch cfg.LogLevel {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		default:
			level = slog.LevelInfo
		}
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}
