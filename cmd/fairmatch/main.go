// fairmatch is a skill-based matchmaking simulator with two front-ends: a
// CLI for one-shot queries and a terminal dashboard that animates the
// matchmaking process step by step. Both talk to the same backend facade.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"fairmatch/cmd/fairmatch/ui"
	"fairmatch/internal/backend"
	"fairmatch/internal/config"
	"fairmatch/internal/logging"
	"fairmatch/internal/source"
	"fairmatch/internal/store"
	"fairmatch/internal/transform"
)

const version = "0.3.0"

var (
	// Global flags
	configPath string
	verbose    bool
	jsonLogs   bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "fairmatch",
	Short: "fairmatch - skill-based matchmaking simulator",
	Long: `fairmatch simulates a skill-based matchmaking queue.

Players are held in a skill-ordered queue; each player keeps its best
candidate game (scored by p-fairness and q-uniformity) in a min-heap,
and matches are created from the heap minimum. Queries run through a
caching backend shared by this CLI and the dashboard.

Run "fairmatch dashboard" for the animated view.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = config.DefaultPath()
		}
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logger = logging.New(verbose || cfg.Logging.Verbose, jsonLogs || cfg.Logging.JSONFormat)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func newFacade() *backend.Facade {
	loader := source.NewFileLoader(logger)
	if timeout, err := cfg.HTTPTimeout(); err == nil {
		loader.HTTPTimeout = timeout
	}
	return backend.New(loader, transform.NewRegistry(), logger)
}

func openRuns() (*store.RunStore, error) {
	return store.Open(cfg.Store.DatabasePath)
}

// fail prints the normalized error for the user and exits non-zero. Every
// consumer-facing failure goes through here so the CLI never panics or
// leaks a raw stack.
func fail(desc *backend.ErrorDescriptor) {
	fmt.Printf("error (%s): %s\n", desc.Kind, desc.Message)
	if logger != nil {
		_ = logger.Sync()
	}
	os.Exit(1)
}

func parseParams(pairs []string) (transform.Params, error) {
	params := make(transform.Params, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("parameter %q is not key=value", pair)
		}
		params[key] = value
	}
	return params, nil
}

func renderView(view *transform.DerivedView) string {
	styles := ui.DefaultStyles()
	// Scalar form only when the view carries nothing beyond the scalar
	// itself; a one-match simulation still gets its match row printed.
	if view.Scalar != nil && len(view.Columns) <= 1 {
		return fmt.Sprintf("%s %s = %v\n", view.Origin, view.Operation, *view.Scalar)
	}
	table := ui.NewSimpleTable(fmt.Sprintf("%s — %s", view.Origin, view.Operation), view.Columns)
	for _, row := range view.Rows {
		table.AddRow(row...)
	}
	return table.View(styles)
}

var queryCmd = &cobra.Command{
	Use:   "query <origin> <operation>",
	Short: "Run one operation against an origin and print the result",
	Long: `Run one operation against an origin.

Origins: a .csv or .json file path, an http(s) URL, or a synthetic
roster such as "gauss:players=50,mean=1500,stddev=200,seed=7".
Operations: ` + strings.Join(transform.NewRegistry().Names(), ", ") + `.`,
	Example: `  fairmatch query roster.csv count
  fairmatch query roster.csv filter --param field=skill --param op=gt --param value=1600
  fairmatch query gauss:players=40,seed=1 simulate --param team_size=2`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pairs, _ := cmd.Flags().GetStringArray("param")
		params, err := parseParams(pairs)
		if err != nil {
			return err
		}
		result := newFacade().Query(cmd.Context(), args[0], args[1], params)
		if !result.OK() {
			fail(result.Err)
		}
		fmt.Print(renderView(result.View))
		return nil
	},
}

var batchCmd = &cobra.Command{
	Use:   "batch <operation>",
	Short: "Run one operation across several origins concurrently",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		origins, _ := cmd.Flags().GetStringSlice("origins")
		if len(origins) == 0 {
			return fmt.Errorf("--origins is required")
		}
		pairs, _ := cmd.Flags().GetStringArray("param")
		params, err := parseParams(pairs)
		if err != nil {
			return err
		}

		facade := newFacade()
		results := make([]backend.QueryResult, len(origins))
		g, ctx := errgroup.WithContext(cmd.Context())
		for i, origin := range origins {
			i, origin := i, origin
			g.Go(func() error {
				results[i] = facade.Query(ctx, origin, args[0], params)
				return nil
			})
		}
		_ = g.Wait()

		failed := 0
		for i, result := range results {
			if !result.OK() {
				failed++
				fmt.Printf("error (%s): %s\n", result.Err.Kind, result.Err.Message)
				continue
			}
			if i > 0 {
				fmt.Println()
			}
			fmt.Print(renderView(result.View))
		}
		if failed > 0 {
			if logger != nil {
				_ = logger.Sync()
			}
			os.Exit(1)
		}
		return nil
	},
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a matchmaking simulation and print the created matches",
	RunE: func(cmd *cobra.Command, args []string) error {
		origin, _ := cmd.Flags().GetString("origin")
		save, _ := cmd.Flags().GetBool("save")

		params := transform.Params{}
		for flag, key := range map[string]string{
			"mode":            "mode",
			"team-size":       "team_size",
			"p-norm":          "p_norm",
			"q-norm":          "q_norm",
			"fairness-weight": "fairness_weight",
			"queue-weight":    "queue_weight",
			"matches":         "matches",
			"approximate":     "approximate",
			"record":          "record",
		} {
			if cmd.Flags().Changed(flag) {
				value, _ := cmd.Flags().GetString(flag)
				params[key] = value
			}
		}

		result := newFacade().Query(cmd.Context(), origin, "simulate", params)
		if !result.OK() {
			fail(result.Err)
		}
		view := result.View
		fmt.Print(renderView(view))

		if tl := view.Timeline; tl != nil {
			fmt.Printf("\nrecorded %d steps", len(tl.Steps))
			if n := len(tl.Stats.QueueSize); n > 0 {
				fmt.Printf(", final queue size %.0f", tl.Stats.QueueSize[n-1])
			}
			fmt.Println()

			if save {
				runs, err := openRuns()
				if err != nil {
					return fmt.Errorf("opening run store: %w", err)
				}
				defer runs.Close()
				engineCfg, err := ui.ConfigFromTimeline(params, tl)
				if err != nil {
					return err
				}
				matches := tl.Steps[len(tl.Steps)-1].Matches
				id, err := runs.Save(origin, engineCfg, matches, tl.Stats, tl.Steps)
				if err != nil {
					return fmt.Errorf("saving run: %w", err)
				}
				fmt.Printf("saved run %s\n", id)
			}
		}
		return nil
	},
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Browse saved simulation runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		runs, err := openRuns()
		if err != nil {
			return err
		}
		defer runs.Close()
		all, err := runs.List()
		if err != nil {
			return err
		}
		table := ui.NewSimpleTable("Saved Runs", []string{"id", "created", "origin", "mode", "matches", "steps"})
		for _, run := range all {
			table.AddRow(
				run.ID,
				run.CreatedAt.Local().Format(time.DateTime),
				run.Origin,
				string(run.Config.Mode),
				fmt.Sprintf("%d", len(run.Matches)),
				fmt.Sprintf("%d", run.StepCount),
			)
		}
		fmt.Print(table.View(ui.DefaultStyles()))
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a saved run, optionally replaying it in the dashboard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runs, err := openRuns()
		if err != nil {
			return err
		}
		defer runs.Close()
		run, err := runs.Get(args[0])
		if err != nil {
			return err
		}

		if replay, _ := cmd.Flags().GetBool("replay"); replay {
			return launchDashboard(&dashboardOptions{replay: run, runs: runs})
		}

		styles := ui.DefaultStyles()
		table := ui.NewSimpleTable(fmt.Sprintf("Run %s (%s)", run.ID, run.Origin),
			[]string{"match", "anchor", "teams", "imbalance"})
		for i, m := range run.Matches {
			table.AddRow(
				fmt.Sprintf("%d", i+1),
				fmt.Sprintf("P%d", m.AnchorID),
				fmt.Sprintf("%d v %d", len(m.TeamX), len(m.TeamY)),
				fmt.Sprintf("%.2f", m.Imbalance),
			)
		}
		fmt.Print(table.View(styles))
		fmt.Printf("steps: %d  created: %s\n", run.StepCount, run.CreatedAt.Local().Format(time.DateTime))
		return nil
	},
}

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runs, err := openRuns()
		if err != nil {
			return err
		}
		defer runs.Close()
		existed, err := runs.Delete(args[0])
		if err != nil {
			return err
		}
		if !existed {
			return fmt.Errorf("run %s not found", args[0])
		}
		fmt.Printf("deleted run %s\n", args[0])
		return nil
	},
}

type dashboardOptions struct {
	origin string
	replay *store.Run
	runs   *store.RunStore
}

func launchDashboard(opts *dashboardOptions) error {
	facade := newFacade()

	runs := opts.runs
	if runs == nil {
		var err error
		runs, err = openRuns()
		if err != nil {
			logger.Warn("run persistence disabled", zap.Error(err))
			runs = nil
		} else {
			defer runs.Close()
		}
	}

	origin := opts.origin
	if origin == "" {
		origin = cfg.Dashboard.DefaultOrigin
	}

	// Auto-invalidate file origins edited while the dashboard is open.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = facade.Watch(ctx, origin)
	}()

	tick, _ := cfg.TickInterval()
	model := ui.NewModel(ui.Options{
		Facade:       facade,
		Runs:         runs,
		Theme:        ui.ThemeFor(cfg.Dashboard.Theme),
		TickInterval: tick,
		Origin:       origin,
		Replay:       opts.replay,
	})
	_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Launch the animated matchmaking dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		origin, _ := cmd.Flags().GetString("origin")
		return launchDashboard(&dashboardOptions{origin: origin})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the fairmatch version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("fairmatch %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.fairmatch/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "emit logs as JSON")

	queryCmd.Flags().StringArrayP("param", "p", nil, "operation parameter key=value (repeatable)")

	batchCmd.Flags().StringSlice("origins", nil, "comma-separated origins")
	batchCmd.Flags().StringArrayP("param", "p", nil, "operation parameter key=value (repeatable)")

	simulateCmd.Flags().String("origin", "gauss:players=24,mean=1500,stddev=200,seed=1", "player roster origin")
	simulateCmd.Flags().String("mode", "unrestricted", "unrestricted or time_sensitive")
	simulateCmd.Flags().String("team-size", "2", "players per team (1-5)")
	simulateCmd.Flags().String("p-norm", "1", "fairness norm p (>=1 or inf)")
	simulateCmd.Flags().String("q-norm", "1", "uniformity norm q (>=1 or inf)")
	simulateCmd.Flags().String("fairness-weight", "0.1", "fairness weight alpha (>0)")
	simulateCmd.Flags().String("queue-weight", "0.1", "queue weight beta (>=0, time_sensitive)")
	simulateCmd.Flags().String("matches", "-1", "matches to create (-1 = all)")
	simulateCmd.Flags().String("approximate", "false", "use the approximate skill window")
	simulateCmd.Flags().String("record", "true", "record the step timeline")
	simulateCmd.Flags().Bool("save", false, "persist the recorded run")

	runsShowCmd.Flags().Bool("replay", false, "replay the run in the dashboard")
	runsCmd.AddCommand(runsListCmd, runsShowCmd, runsDeleteCmd)

	dashboardCmd.Flags().String("origin", "", "initial origin for the configuration form")

	rootCmd.AddCommand(queryCmd, batchCmd, simulateCmd, runsCmd, dashboardCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
