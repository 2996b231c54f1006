package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vasiliy-maslov/portfolio-service/internal/session"
)

func init() {
	sessionsCmd.AddCommand(sessionsPruneCmd)
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage stored sessions",
}

var sessionsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete expired sessions from the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		pg, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer pg.Close()

		removed, err := session.NewPostgresStore(pg.DB).DeleteExpired(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "removed %d expired session(s)\n", removed)
		return nil
	},
}
