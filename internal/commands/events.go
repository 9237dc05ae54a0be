package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/balkashynov/tempo/internal/models"
	"github.com/balkashynov/tempo/internal/protocol"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List recent events, newest first",
	Run: func(cmd *cobra.Command, args []string) {
		limit, _ := cmd.Flags().GetInt("limit")

		c, err := dialDaemon()
		if err != nil {
			fmt.Println(errorStyle.Render(fmt.Sprintf("Error: %v", err)))
			return
		}
		defer c.Close()

		var events []models.Event
		err = c.Query(protocol.Request{Type: protocol.TypeQueryEvents, Limit: &limit}, &events)
		if err != nil {
			fmt.Println(errorStyle.Render(fmt.Sprintf("Error: %v", err)))
			return
		}

		if len(events) == 0 {
			fmt.Println("No events recorded yet")
			return
		}

		fmt.Println(headerStyle.Render(fmt.Sprintf("%-6s %-14s %-10s %-20s %s", "ID", "TYPE", "SOURCE", "TIME", "DETAIL")))
		fmt.Println(mutedStyle.Render(strings.Repeat("-", 80)))
		for _, event := range events {
			detail := event.Payload.AppName
			if event.Payload.FilePath != "" {
				detail = event.Payload.FilePath
			}
			timestamp := event.Timestamp
			if t, err := time.Parse(time.RFC3339, event.Timestamp); err == nil {
				timestamp = t.Local().Format("2006-01-02 15:04:05")
			}
			fmt.Printf("%-6d %-14s %-10s %-20s %s\n",
				event.ID,
				event.Type,
				truncate(event.Source, 10),
				timestamp,
				truncate(detail, 30),
			)
		}
	},
}

func init() {
	eventsCmd.Flags().Int("limit", protocol.DefaultLimit, "Maximum number of events to show")
}
