package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/balkashynov/tempo/internal/db"
	"github.com/balkashynov/tempo/internal/protocol"
)

var filesCmd = &cobra.Command{
	Use:   "files <project-path>",
	Short: "Show per-file time within a project",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		days, _ := cmd.Flags().GetInt("days")

		c, err := dialDaemon()
		if err != nil {
			fmt.Println(errorStyle.Render(fmt.Sprintf("Error: %v", err)))
			return
		}
		defer c.Close()

		var rows []db.ProjectFileRow
		err = c.Query(protocol.Request{
			Type:        protocol.TypeQueryProjectFiles,
			ProjectPath: args[0],
			Days:        &days,
		}, &rows)
		if err != nil {
			fmt.Println(errorStyle.Render(fmt.Sprintf("Error: %v", err)))
			return
		}

		if len(rows) == 0 {
			fmt.Println("No activity recorded for that project")
			return
		}

		fmt.Println(headerStyle.Render(fmt.Sprintf("%-40s %-10s %s", "FILE", "TIME", "LAST ACTIVE")))
		fmt.Println(mutedStyle.Render(strings.Repeat("-", 72)))
		for _, row := range rows {
			lastActive := row.LastActive
			if t, err := time.Parse(time.RFC3339, row.LastActive); err == nil {
				lastActive = t.Local().Format("2006-01-02 15:04")
			}
			fmt.Printf("%-40s %-10s %s\n",
				truncate(row.FilePath, 38),
				formatSeconds(row.DurationSeconds),
				lastActive,
			)
		}
	},
}

func init() {
	filesCmd.Flags().Int("days", protocol.DefaultDays, "Size of the day window")
}
