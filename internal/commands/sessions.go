package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/balkashynov/tempo/internal/models"
	"github.com/balkashynov/tempo/internal/protocol"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List recent sessions, newest first",
	Run: func(cmd *cobra.Command, args []string) {
		limit, _ := cmd.Flags().GetInt("limit")
		start, _ := cmd.Flags().GetString("start")
		end, _ := cmd.Flags().GetString("end")

		c, err := dialDaemon()
		if err != nil {
			fmt.Println(errorStyle.Render(fmt.Sprintf("Error: %v", err)))
			return
		}
		defer c.Close()

		var sessions []models.Session
		err = c.Query(protocol.Request{
			Type:      protocol.TypeQuerySessions,
			Limit:     &limit,
			StartTime: start,
			EndTime:   end,
		}, &sessions)
		if err != nil {
			fmt.Println(errorStyle.Render(fmt.Sprintf("Error: %v", err)))
			return
		}

		if len(sessions) == 0 {
			fmt.Println("No sessions recorded yet")
			return
		}

		fmt.Println(headerStyle.Render(fmt.Sprintf("%-6s %-10s %-20s %-10s %s", "ID", "STATUS", "START", "DURATION", "CONTEXT")))
		fmt.Println(mutedStyle.Render(strings.Repeat("-", 76)))
		for _, session := range sessions {
			start := session.StartTime
			if t, err := time.Parse(time.RFC3339, session.StartTime); err == nil {
				start = t.Local().Format("2006-01-02 15:04:05")
			}
			fmt.Printf("%-6d %-10s %-20s %-10s %s\n",
				session.ID,
				session.Status,
				start,
				formatSeconds(session.DurationSeconds),
				truncate(session.Context.Label(), 30),
			)
		}
	},
}

func init() {
	sessionsCmd.Flags().Int("limit", protocol.DefaultLimit, "Maximum number of sessions to show")
	sessionsCmd.Flags().String("start", "", "Only sessions starting at or after this RFC 3339 time")
	sessionsCmd.Flags().String("end", "", "Only sessions starting at or before this RFC 3339 time")
}
