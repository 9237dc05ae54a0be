package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/balkashynov/tempo/internal/models"
)

var emitCmd = &cobra.Command{
	Use:   "emit <event-type>",
	Short: "Send a synthetic activity event to the daemon",
	Long: `Send one activity event, mainly for exercising the daemon by hand.

Examples:
  tempo emit app_active --app Chrome
  tempo emit file_edit --file main.go --project ~/src/tempo --language go`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		eventType := models.EventType(args[0])
		if !eventType.Valid() {
			fmt.Println(errorStyle.Render(fmt.Sprintf("Error: unknown event type %q", args[0])))
			return
		}

		app, _ := cmd.Flags().GetString("app")
		file, _ := cmd.Flags().GetString("file")
		project, _ := cmd.Flags().GetString("project")
		language, _ := cmd.Flags().GetString("language")
		kind, _ := cmd.Flags().GetString("kind")

		event := &models.Event{
			Type:      eventType,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Source:    "cli",
			Payload: models.EventPayload{
				AppName:     app,
				FilePath:    file,
				ProjectPath: project,
				Language:    language,
				Kind:        kind,
			},
		}

		c, err := dialDaemon()
		if err != nil {
			fmt.Println(errorStyle.Render(fmt.Sprintf("Error: %v", err)))
			return
		}
		defer c.Close()

		if err := c.EmitEvent(event); err != nil {
			fmt.Println(errorStyle.Render(fmt.Sprintf("Error: %v", err)))
			return
		}
		fmt.Printf("Sent %s event\n", eventType)
	},
}

func init() {
	emitCmd.Flags().String("app", "", "Application name (app_active)")
	emitCmd.Flags().String("file", "", "File path (file events)")
	emitCmd.Flags().String("project", "", "Project path")
	emitCmd.Flags().String("language", "", "Language")
	emitCmd.Flags().String("kind", "", "Activity kind: scroll or cursor (user_activity)")
}
