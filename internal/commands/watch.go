package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/balkashynov/tempo/internal/models"
	"github.com/balkashynov/tempo/internal/protocol"
	"github.com/balkashynov/tempo/internal/tui"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live view of the current session",
	Run: func(cmd *cobra.Command, args []string) {
		poll := func() (*models.Session, error) {
			c, err := dialDaemon()
			if err != nil {
				return nil, err
			}
			defer c.Close()

			limit := 1
			var sessions []models.Session
			err = c.Query(protocol.Request{Type: protocol.TypeQuerySessions, Limit: &limit}, &sessions)
			if err != nil {
				return nil, err
			}
			if len(sessions) == 0 {
				return nil, nil
			}
			return &sessions[0], nil
		}

		if err := tui.RunWatch(poll); err != nil {
			fmt.Println(errorStyle.Render(fmt.Sprintf("Error: %v", err)))
		}
	},
}
