// Package main provides the semderef binary entry point.
// Semderef resolves linked-data URIs from external authorities into display
// fields and runs the proxy gateway that some authorities require.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/c360studio/semderef/config"
	"github.com/c360studio/semderef/dereference"
	"github.com/c360studio/semderef/linkscan"
	"github.com/c360studio/semderef/render"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "semderef"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
}

func rootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Linked-data URI dereferencer",
		Long: `Semderef resolves linked-data URIs (Wikidata, Library of Congress,
DBpedia, Getty, Geonames, VIAF, OCLC FAST, RDA, GND, ORCID) into a small set
of human-readable fields.

Authorities that cannot be fetched directly are reached through the proxy
gateway, which "semderef serve" runs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		serveCmd(flags),
		derefCmd(flags),
		authoritiesCmd(flags),
		scanCmd(flags),
		configCmd(flags),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
			},
		},
	)

	return cmd
}

func newLogger(logLevel string, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// setup loads configuration and builds the App.
func setup(cmd *cobra.Command, flags *globalFlags, modify func(*config.Config)) (*App, error) {
	logger := newLogger(flags.logLevel, cmd.ErrOrStderr())
	slog.SetDefault(logger)

	cfg, err := config.NewLoader(logger).Load(flags.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if modify != nil {
		modify(cfg)
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
	}
	return NewApp(cfg, logger)
}

func serveCmd(flags *globalFlags) *cobra.Command {
	var (
		listen  string
		metrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the proxy gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(cmd, flags, func(c *config.Config) {
				if listen != "" {
					c.Gateway.Listen = listen
				}
				if metrics {
					c.Metrics.Enabled = true
				}
			})
			if err != nil {
				return err
			}

			ln, err := net.Listen("tcp", app.cfg.Gateway.Listen)
			if err != nil {
				return fmt.Errorf("listen: %w", err)
			}
			return app.Serve(cmd.Context(), ln)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (overrides gateway.listen)")
	cmd.Flags().BoolVar(&metrics, "metrics", false, "Expose Prometheus metrics")
	return cmd
}

func derefCmd(flags *globalFlags) *cobra.Command {
	var (
		format      string
		language    string
		proxyURL    string
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "deref <uri>...",
		Short: "Dereference URIs and print their fields",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := render.ParseFormat(format)
			if err != nil {
				return err
			}
			app, err := setup(cmd, flags, func(c *config.Config) {
				if language != "" {
					c.Dereferencer.Language = language
				}
				if proxyURL != "" {
					c.Dereferencer.ProxyURL = proxyURL
				}
			})
			if err != nil {
				return err
			}

			outcomes := app.DereferenceAll(cmd.Context(), args, concurrency)
			return writeOutcomes(cmd.OutOrStdout(), cmd.ErrOrStderr(), f, outcomes)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(render.FormatText), "Output format (text, markdown, html, json)")
	cmd.Flags().StringVarP(&language, "language", "l", "", "Preferred language (overrides dereferencer.language)")
	cmd.Flags().StringVar(&proxyURL, "proxy-url", "", "Proxy gateway URL (overrides dereferencer.proxy_url)")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "j", 4, "Maximum concurrent requests")
	return cmd
}

// writeOutcomes prints successes to out and failures to errOut, keeping
// argument order. It fails when any URI failed.
func writeOutcomes(out, errOut io.Writer, f render.Format, outcomes []Outcome) error {
	failed, printed := 0, 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			fmt.Fprintf(errOut, "%s: %s: %v\n", o.URI, dereference.KindOf(o.Err), o.Err)
			continue
		}
		if printed > 0 && f != render.FormatJSON {
			fmt.Fprintln(out)
		}
		if err := render.Write(out, f, o.Result); err != nil {
			return err
		}
		printed++
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d URIs failed", failed, len(outcomes))
	}
	return nil
}

// authorityInfo is the listing row of a registered adapter.
type authorityInfo struct {
	Name         string `json:"name"`
	UsesProxy    bool   `json:"uses_proxy"`
	ProxyClient  string `json:"proxy_client,omitempty"`
	AcceptHeader string `json:"accept_header,omitempty"`
}

func authoritiesCmd(flags *globalFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "authorities",
		Short: "List registered authorities in dispatch order",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(cmd, flags, nil)
			if err != nil {
				return err
			}

			var rows []authorityInfo
			for _, a := range app.registry.Adapters() {
				opts := a.Options()
				rows = append(rows, authorityInfo{
					Name:         a.Name(),
					UsesProxy:    opts.UsesProxy,
					ProxyClient:  string(opts.ProxyClient),
					AcceptHeader: opts.AcceptHeader,
				})
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tPROXY\tCLIENT\tACCEPT")
			for _, r := range rows {
				fmt.Fprintf(tw, "%s\t%t\t%s\t%s\n", r.Name, r.UsesProxy, dash(r.ProxyClient), dash(r.AcceptHeader))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func scanCmd(flags *globalFlags) *cobra.Command {
	var watchDir string

	cmd := &cobra.Command{
		Use:   "scan <glob>...",
		Short: "Find uri-value-link anchors in HTML files and report which can be dereferenced",
		Long: `Scan expands doublestar globs (for example "site/**/*.html"), extracts the
href of every <a class="uri-value-link"> and prints one line per link:

  <file>	<uri>	<authority or ->

With --watch, pages under the directory are rescanned as they change.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && watchDir == "" {
				return fmt.Errorf("requires at least one glob or --watch")
			}
			app, err := setup(cmd, flags, nil)
			if err != nil {
				return err
			}

			links, err := linkscan.ScanFiles(args...)
			if err != nil {
				return err
			}
			for _, l := range links {
				fmt.Fprintln(cmd.OutOrStdout(), app.describeLink(l.File, l.URI))
			}

			if watchDir == "" {
				return nil
			}
			return app.watch(cmd.Context(), cmd.OutOrStdout(), watchDir)
		},
	}

	cmd.Flags().StringVarP(&watchDir, "watch", "w", "", "Directory to watch for page changes")
	return cmd
}

func (a *App) describeLink(file, uri string) string {
	name := "-"
	if a.deref.IsDereferenceable(uri) {
		adapter, _ := a.registry.FindMatch(uri)
		name = adapter.Name()
	}
	return fmt.Sprintf("%s\t%s\t%s", file, uri, name)
}

func (a *App) watch(ctx context.Context, out io.Writer, dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve watch dir: %w", err)
	}
	w, err := linkscan.NewWatcher(linkscan.DefaultWatchConfig(), abs, a.logger)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Stop()

	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	for ev := range w.Events() {
		if ev.Operation == linkscan.WatchOpDelete {
			fmt.Fprintf(out, "%s\t(deleted)\n", ev.Path)
			continue
		}
		for _, uri := range ev.Links {
			fmt.Fprintln(out, a.describeLink(ev.Path, uri))
		}
	}
	return nil
}

func configCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or initialize configuration",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			RunE: func(cmd *cobra.Command, args []string) error {
				app, err := setup(cmd, flags, nil)
				if err != nil {
					return err
				}
				data, err := yaml.Marshal(app.cfg)
				if err != nil {
					return fmt.Errorf("marshal config: %w", err)
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			},
		},
		&cobra.Command{
			Use:   "init",
			Short: "Create the user config file with defaults if it does not exist",
			RunE: func(cmd *cobra.Command, args []string) error {
				logger := newLogger(flags.logLevel, cmd.ErrOrStderr())
				path, err := config.NewLoader(logger).EnsureUserConfig()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			},
		},
	)
	return cmd
}
