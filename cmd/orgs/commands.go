package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Uri2001/orgs/internal/app"
	"github.com/Uri2001/orgs/internal/config"
	"github.com/Uri2001/orgs/internal/domainutil"
	"github.com/Uri2001/orgs/internal/hostmsg"
	"github.com/Uri2001/orgs/internal/i18n"
	"github.com/Uri2001/orgs/internal/linkutil"
	"github.com/Uri2001/orgs/internal/store"
)

// exitPersistFailed is the exit status when a validated server could not be stored.
const exitPersistFailed = 3

type cli struct {
	configFile string
	cfg        *config.Config
	closeLog   func()
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "orgs",
		Short:         "Manage the Zulip organizations known to this client",
		Long:          "orgs adds Zulip organization servers after validating them and keeps a list of known servers.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.load()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.closeLog != nil {
				c.closeLog()
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runUI(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "path to a YAML config file")

	listCmd := &cobra.Command{
		Use:   "list [query]",
		Short: "Print known servers, optionally fuzzy filtered",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, err := cmd.Flags().GetString("output")
			if err != nil {
				return err
			}
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			return c.list(cmd.Context(), cmd.OutOrStdout(), query, output)
		},
	}
	listCmd.Flags().StringP("output", "o", "text", "output format (text|yaml)")

	removeCmd := &cobra.Command{
		Use:   "remove <url>",
		Short: "Forget a known server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.remove(cmd.Context(), cmd.OutOrStdout(), args[0])
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}

	root.AddCommand(listCmd, removeCmd, versionCmd)
	return root
}

func (c *cli) load() error {
	cfg, err := config.Load(viper.New(), c.configFile)
	if err != nil {
		return err
	}
	closeLog, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.closeLog = closeLog
	return nil
}

func (c *cli) openStore() (*store.Store, error) {
	st, err := store.Open(c.cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return st, nil
}

func (c *cli) resolver() string {
	switch c.cfg.Resolver {
	case config.ResolverOff:
		return ""
	case config.ResolverSystem:
		addr, err := domainutil.SystemResolver()
		if err != nil {
			slog.Warn("system resolver unavailable, skipping DNS pre-check", "error", err)
			return ""
		}
		return addr
	default:
		return c.cfg.Resolver
	}
}

func (c *cli) runUI(ctx context.Context) error {
	captureConsoleState()
	defer cleanupTerminal()

	st, err := c.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	logger := slog.Default()
	bus := hostmsg.NewBus(logger)
	checker := domainutil.New(
		domainutil.WithHTTPClient(&http.Client{Timeout: c.cfg.ValidateTimeout}),
		domainutil.WithResolver(c.resolver()),
		domainutil.WithKnownServers(st),
		domainutil.WithUserAgent(c.cfg.UserAgent),
		domainutil.WithLogger(logger),
	)

	timeout := c.cfg.ValidateTimeout
	if timeout == 0 {
		timeout = -1
	}
	m, err := app.New(ctx, app.Deps{
		Store:      st,
		Validator:  checker,
		Links:      linkutil.New(),
		Host:       bus,
		Translator: i18n.New(c.cfg.Lang),
		Timeout:    timeout,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("init ui: %w", err)
	}

	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if runtime.GOOS != "windows" {
		opts = append(opts, tea.WithAltScreen())
	}
	prog := tea.NewProgram(m, opts...)
	bus.Attach(prog)
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	if err := m.Err(); err != nil {
		return &exitError{code: exitPersistFailed, err: err}
	}
	return nil
}

type serverOutput struct {
	domainutil.Descriptor `yaml:",inline"`
	UseCount              int    `yaml:"use_count"`
	LastUsed              string `yaml:"last_used,omitempty"`
}

func (c *cli) list(ctx context.Context, w io.Writer, query, output string) error {
	st, err := c.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	servers, err := st.ListServers(ctx)
	if err != nil {
		return fmt.Errorf("list servers: %w", err)
	}
	servers = app.FilterServers(servers, query)

	switch output {
	case "yaml":
		out := make([]serverOutput, 0, len(servers))
		for _, srv := range servers {
			o := serverOutput{Descriptor: srv.Descriptor, UseCount: srv.UseCount}
			if srv.LastUsedAt.Valid {
				o.LastUsed = srv.LastUsedAt.Time.UTC().Format("2006-01-02T15:04:05Z")
			}
			out = append(out, o)
		}
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(out)
	case "text", "":
		t := ltable.New().
			Border(lipgloss.NormalBorder()).
			Headers("NAME", "URL", "VERSION", "USES")
		for _, srv := range servers {
			t.Row(srv.Alias, srv.URL, srv.ZulipVersion, fmt.Sprintf("%d", srv.UseCount))
		}
		_, err := fmt.Fprintln(w, t.String())
		return err
	default:
		return fmt.Errorf("unknown output format %q", output)
	}
}

func (c *cli) remove(ctx context.Context, w io.Writer, raw string) error {
	u, err := domainutil.FormatURL(raw)
	if err != nil {
		return err
	}
	st, err := c.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.RemoveServerByURL(ctx, u.String()); err != nil {
		return fmt.Errorf("remove %s: %w", u, err)
	}
	slog.Info("server removed", "url", u.String())
	_, err = fmt.Fprintf(w, "removed %s\n", u)
	return err
}
