package cmd

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"gridbench/internal/config"
)

var (
	addURI      string
	addHost     string
	addPort     string
	addUser     string
	addPassword string
	addDatabase string
)

var connCmd = &cobra.Command{
	Use:   "conn",
	Short: "Manage saved PostgreSQL connections",
}

var connListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved connections",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out := cmd.OutOrStdout()
		if len(cfg.Connections) == 0 {
			fmt.Fprintln(out, "No saved connections.")
			return nil
		}
		for _, c := range cfg.Connections {
			fmt.Fprintf(out, "%-20s %s\n", c.Name, connDetail(c))
		}
		return nil
	},
}

var connAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Save a connection",
	Long: `Save a connection under NAME, replacing any connection with the same name.

Examples:
  gridbench conn add local --uri postgres://me@localhost:5432/shop
  gridbench conn add staging --host db.internal --user app --database shop`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		conn := config.SavedConnection{
			Name:     args[0],
			URI:      addURI,
			Host:     addHost,
			Port:     addPort,
			User:     addUser,
			Password: addPassword,
			Database: addDatabase,
		}
		if conn.URI == "" && (conn.Host == "" || conn.Database == "") {
			return errors.New("need --uri, or --host and --database")
		}
		cfg.Add(conn)
		if err := config.SaveConnections(cfgPath, cfg.Connections); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", conn.Name)
		return nil
	},
}

var connRemoveCmd = &cobra.Command{
	Use:     "remove NAME",
	Aliases: []string{"rm"},
	Short:   "Delete a saved connection",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cfg.DeleteByName(args[0]) {
			return fmt.Errorf("no saved connection named %q", args[0])
		}
		if err := config.SaveConnections(cfgPath, cfg.Connections); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
		return nil
	},
}

func init() {
	connAddCmd.Flags().StringVar(&addURI, "uri", "", "connection URI")
	connAddCmd.Flags().StringVar(&addHost, "host", "", "server host")
	connAddCmd.Flags().StringVar(&addPort, "port", "", "server port (default 5432)")
	connAddCmd.Flags().StringVar(&addUser, "user", "", "user name")
	connAddCmd.Flags().StringVar(&addPassword, "password", "", "password")
	connAddCmd.Flags().StringVar(&addDatabase, "database", "", "database name")
	connAddCmd.MarkFlagsMutuallyExclusive("uri", "host")

	connCmd.AddCommand(connListCmd, connAddCmd, connRemoveCmd)
	rootCmd.AddCommand(connCmd)
}

// connDetail renders a connection without its password.
func connDetail(c config.SavedConnection) string {
	u, err := url.Parse(c.ConnString())
	if err != nil {
		return "(invalid URI)"
	}
	return u.Redacted()
}
