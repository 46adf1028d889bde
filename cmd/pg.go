package cmd

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"gridbench/internal/db"
	"gridbench/internal/importer"
	"gridbench/internal/ui"
)

// errCancelled is returned when a picker is dismissed.
var errCancelled = errors.New("cancelled")

var (
	pgURI    string
	pgConn   string
	pgTable  string
	pgQuery  string
	pgHeader bool
)

var pgCmd = &cobra.Command{
	Use:   "pg",
	Short: "Open a PostgreSQL table or query as a grid",
	Long: `Open the rows of a PostgreSQL table or query as an editable grid.

Edits stay in the grid; nothing is written back to the database.

Examples:
  # Pick a saved connection, then a table
  gridbench pg

  # Open a table through a saved connection
  gridbench pg --conn local --table orders

  # Run a query against a URI, with column names as the first row
  gridbench pg --uri postgres://me@localhost/shop --query "SELECT * FROM orders LIMIT 100" --header`,
	Args: cobra.NoArgs,
	RunE: runPG,
}

func init() {
	pgCmd.Flags().StringVar(&pgURI, "uri", "", "connection URI")
	pgCmd.Flags().StringVar(&pgConn, "conn", "", "saved connection name")
	pgCmd.Flags().StringVar(&pgTable, "table", "", "table to open")
	pgCmd.Flags().StringVar(&pgQuery, "query", "", "SELECT query to open")
	pgCmd.Flags().BoolVar(&pgHeader, "header", false, "prepend column names as the first row")
	pgCmd.MarkFlagsMutuallyExclusive("uri", "conn")
	pgCmd.MarkFlagsMutuallyExclusive("table", "query")
	rootCmd.AddCommand(pgCmd)
}

func runPG(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	uri, err := resolveURI()
	if err != nil {
		return err
	}

	database, err := db.ConnectURI(ctx, uri)
	if err != nil {
		return err
	}
	defer database.Close()

	table := pgTable
	if table == "" && pgQuery == "" {
		table, err = pickTable(ctx, database)
		if err != nil {
			return err
		}
	}

	src := importer.Source{
		Kind:   importer.KindSQL,
		DB:     database,
		Table:  table,
		Query:  pgQuery,
		Header: pgHeader,
	}
	store, err := importer.Load(ctx, src)
	if err != nil {
		return err
	}
	return runWorkbench(store, database.Database()+"/"+src.String())
}

// resolveURI picks the connection from --uri, --conn or the saved list.
func resolveURI() (string, error) {
	switch {
	case pgURI != "":
		return pgURI, nil
	case pgConn != "":
		conn, ok := cfg.Find(pgConn)
		if !ok {
			return "", fmt.Errorf("no saved connection named %q", pgConn)
		}
		return conn.ConnString(), nil
	}

	if len(cfg.Connections) == 0 {
		return "", errors.New("no saved connections: pass --uri or run \"gridbench conn add\"")
	}
	items := make([]ui.PickerItem, len(cfg.Connections))
	for i, c := range cfg.Connections {
		items[i] = ui.PickerItem{Label: c.Name, Detail: connDetail(c)}
	}
	chosen, err := pick("Connect to PostgreSQL", items)
	if err != nil {
		return "", err
	}
	conn, _ := cfg.Find(chosen.Label)
	return conn.ConnString(), nil
}

func pickTable(ctx context.Context, database *db.DB) (string, error) {
	tables, err := database.ListTables(ctx)
	if err != nil {
		return "", err
	}
	if len(tables) == 0 {
		return "", fmt.Errorf("no tables in %s", database.Database())
	}
	items := make([]ui.PickerItem, len(tables))
	for i, t := range tables {
		items[i] = ui.PickerItem{Label: t}
	}
	chosen, err := pick("Open table in "+database.Database(), items)
	if err != nil {
		return "", err
	}
	return chosen.Label, nil
}

// pick runs a picker program and returns the chosen item.
func pick(title string, items []ui.PickerItem) (ui.PickerItem, error) {
	p := tea.NewProgram(ui.NewPickerModel(title, items), tea.WithAltScreen())
	result, err := p.Run()
	if err != nil {
		return ui.PickerItem{}, fmt.Errorf("running picker: %w", err)
	}
	pm, ok := result.(ui.PickerModel)
	if !ok {
		return ui.PickerItem{}, errCancelled
	}
	item, ok := pm.Chosen()
	if !ok {
		return ui.PickerItem{}, errCancelled
	}
	return item, nil
}
