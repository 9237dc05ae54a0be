package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/balkashynov/tempo/internal/models"
	"github.com/balkashynov/tempo/internal/protocol"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session, if any",
	Run: func(cmd *cobra.Command, args []string) {
		c, err := dialDaemon()
		if err != nil {
			fmt.Println(errorStyle.Render(fmt.Sprintf("Error: %v", err)))
			return
		}
		defer c.Close()

		limit := 1
		var sessions []models.Session
		err = c.Query(protocol.Request{Type: protocol.TypeQuerySessions, Limit: &limit}, &sessions)
		if err != nil {
			fmt.Println(errorStyle.Render(fmt.Sprintf("Error: %v", err)))
			return
		}

		if len(sessions) == 0 || sessions[0].Status != models.SessionActive {
			fmt.Println("No active session")
			return
		}

		session := sessions[0]
		fmt.Printf("⏱️  Active session #%d: %s\n", session.ID, session.Context.Label())
		if session.Context.FilePath != "" {
			fmt.Printf("File: %s\n", session.Context.FilePath)
		}
		if start, err := time.Parse(time.RFC3339, session.StartTime); err == nil {
			fmt.Printf("Started at: %s\n", start.Local().Format("15:04:05"))
		}
		fmt.Printf("Tracked time: %s\n", formatSeconds(session.DurationSeconds))
	},
}
