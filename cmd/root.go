// Package cmd holds the gridbench command line.
package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gridbench/internal/app"
	"gridbench/internal/ask"
	"gridbench/internal/clipboard"
	"gridbench/internal/config"
	"gridbench/internal/grid"
	"gridbench/internal/importer"
	"gridbench/internal/input"
	"gridbench/internal/log"
	"gridbench/internal/ui"
)

func init() {
	// Query the terminal background before any program owns stdin, so the
	// OSC 11 reply does not show up as typed input.
	_ = lipgloss.HasDarkBackground()
}

const (
	emptyRows = 20
	emptyCols = 8
)

var (
	version   = "dev"
	cfgFile   string
	cfgPath   string
	cfg       config.Config
	debugFlag bool
	logFile   string
	sheetFlag string

	logCleanup func()
)

var rootCmd = &cobra.Command{
	Use:   "gridbench [file]",
	Short: "A terminal spreadsheet workbench",
	Long: `gridbench opens a CSV, TSV or XLSX file (or a PostgreSQL table, see
"gridbench pg") as an editable grid, and can send the grid to an analysis
backend together with a question.

Without a file an empty grid is opened.`,
	Version:            version,
	Args:               cobra.MaximumNArgs(1),
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
	RunE:               runFile,
	SilenceUsage:       true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/gridbench/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false,
		"write a debug log (also GRIDBENCH_DEBUG=1)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log", "gridbench.log",
		"debug log file")
	rootCmd.PersistentFlags().String("ask-url", "",
		"analysis backend endpoint")
	rootCmd.Flags().StringVar(&sheetFlag, "sheet", "",
		"XLSX sheet to open (default: first sheet)")
}

// setup loads configuration and starts logging for every command.
func setup(cmd *cobra.Command, _ []string) error {
	if os.Getenv("GRIDBENCH_DEBUG") != "" || debugFlag {
		cleanup, err := log.InitWithTeaLog(logFile, "gridbench")
		if err != nil {
			return fmt.Errorf("initializing logging: %w", err)
		}
		logCleanup = cleanup
		log.Info(log.CatConfig, "gridbench starting", "version", version, "log", logFile)
	}

	v := viper.New()
	if f := cmd.Flags().Lookup("ask-url"); f != nil {
		_ = v.BindPFlag("ask.url", f)
	}
	var err error
	cfg, cfgPath, err = config.Load(v, cfgFile)
	if err != nil {
		return err
	}
	return nil
}

func teardown(_ *cobra.Command, _ []string) error {
	if logCleanup != nil {
		logCleanup()
		logCleanup = nil
	}
	return nil
}

func runFile(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		store, err := grid.NewEmpty(emptyRows, emptyCols)
		if err != nil {
			return err
		}
		return runWorkbench(store, "untitled")
	}

	src, err := importer.FromPath(args[0], sheetFlag)
	if err != nil {
		return err
	}
	store, err := importer.Load(cmd.Context(), src)
	if err != nil {
		return err
	}
	return runWorkbench(store, src.String())
}

// runWorkbench runs the main program on store until the user quits.
func runWorkbench(store *grid.Store, source string) error {
	client, err := ask.NewClient(ask.ClientConfig{URL: cfg.Ask.URL})
	if err != nil {
		return err
	}

	ui.ApplyTheme(cfg.Theme)
	zone.NewGlobal()

	ctrl := input.New(store)
	defer ctrl.Close()

	model := app.NewModel(app.Options{
		Controller: ctrl,
		Clipboard:  clipboard.System{},
		Asker:      client,
		AskTimeout: cfg.Ask.Timeout,
		Edit:       cfg.Edit,
		Source:     source,
	})
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	log.Info(log.CatConfig, "gridbench exiting", "source", source)
	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags).
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
