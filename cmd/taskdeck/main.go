// Package main provides the taskdeck CLI entry point. Run bare, taskdeck
// starts the interactive console; subcommands run one-shot command lines.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"taskdeck/internal/command"
	"taskdeck/internal/config"
	"taskdeck/internal/handlers"
	"taskdeck/internal/logging"
	"taskdeck/internal/query"
	"taskdeck/internal/schema"
	"taskdeck/internal/store"
	"taskdeck/internal/ui"
)

var (
	version = "0.3.0"

	// Global flags
	verbose   bool
	workspace string

	// Loaded once in PersistentPreRunE, shared by the subcommands.
	cfg config.Config
)

// app bundles the wired components for one process.
type app struct {
	cfg         config.Config
	store       *store.Store
	interpreter *command.Interpreter
	handlers    *handlers.Handlers
	styles      ui.Styles
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "taskdeck",
	Short: "taskdeck - console tasks, projects and time tracking",
	Long: `taskdeck is an interactive console productivity tool.

Commands take the form "domain action [args] [free text]" over tasks,
projects and time logs, with a query sublanguage for filtering, sorting
and augmenting records.

Run without arguments to start the interactive console.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if workspace == "" {
			wd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to resolve workspace: %w", err)
			}
			workspace = wd
		}
		loaded, err := config.Load(workspace)
		if err != nil {
			return err
		}
		cfg = loaded
		return logging.Initialize(workspace, cfg.Logging.Debug, verbose)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cfg)
		if err != nil {
			return err
		}
		defer a.store.Close()
		return runConsole(a)
	},
}

// runCmd executes a single command line and exits.
var runCmd = &cobra.Command{
	Use:   "run [command line]",
	Short: "Execute a single command line",
	Long: `Runs one line through the interpreter and prints the result.

Examples:
  taskdeck run "task add Fix the login flow @Acme p1 due:friday"
  taskdeck run "task query p_le=2 sort=due:asc"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cfg)
		if err != nil {
			return err
		}
		defer a.store.Close()

		out, err := a.execute(strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the taskdeck version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("taskdeck %s\n", version)
	},
}

// buildApp wires the registries, store, evaluator, resolver and handlers.
// Everything constructed here is read-only for the rest of the process.
func buildApp(cfg config.Config) (*app, error) {
	log := logging.Get(logging.CategoryBoot)

	styles := ui.NewStyles(ui.ThemeByName(cfg.UI.Theme))

	st, err := store.Open(cfg.DBPath(workspace))
	if err != nil {
		return nil, err
	}

	schemas := schema.NewRegistry()
	eval := query.NewEvaluator(st, schemas, logging.Get(logging.CategoryQuery))
	h := handlers.New(st, eval, styles)
	registry := h.BuildRegistry()

	resolver := command.NewResolver(registry, schemas, h.ProjectIndex(),
		logging.Get(logging.CategoryCommand))
	interpreter := command.NewInterpreter(resolver, logging.Get(logging.CategoryCommand))

	log.Info("taskdeck ready",
		zap.String("workspace", workspace),
		zap.String("db", cfg.DBPath(workspace)))

	return &app{
		cfg:         cfg,
		store:       st,
		interpreter: interpreter,
		handlers:    h,
		styles:      styles,
	}, nil
}

// execute runs one line, refreshing the project-name index first so greedy
// project resolution sees rows added earlier in the session.
func (a *app) execute(line string) (string, error) {
	a.interpreter.Resolver().SetProjects(a.handlers.ProjectIndex())
	return a.interpreter.Execute(line)
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "workspace directory (default: cwd)")
	rootCmd.AddCommand(runCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
