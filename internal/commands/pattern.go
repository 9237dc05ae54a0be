package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/balkashynov/tempo/internal/db"
	"github.com/balkashynov/tempo/internal/protocol"
)

var patternCmd = &cobra.Command{
	Use:   "pattern",
	Short: "Show per-day reading vs writing time",
	Run: func(cmd *cobra.Command, args []string) {
		days, _ := cmd.Flags().GetInt("days")

		c, err := dialDaemon()
		if err != nil {
			fmt.Println(errorStyle.Render(fmt.Sprintf("Error: %v", err)))
			return
		}
		defer c.Close()

		var rows []db.WorkPatternRow
		err = c.Query(protocol.Request{
			Type: protocol.TypeQueryWorkPattern,
			Days: &days,
		}, &rows)
		if err != nil {
			fmt.Println(errorStyle.Render(fmt.Sprintf("Error: %v", err)))
			return
		}

		fmt.Println(headerStyle.Render(fmt.Sprintf("%-12s %-10s %s", "DATE", "READING", "WRITING")))
		fmt.Println(mutedStyle.Render(strings.Repeat("-", 34)))
		for _, row := range rows {
			fmt.Printf("%-12s %-10s %s\n",
				row.Date,
				formatSeconds(row.ReadingSeconds),
				formatSeconds(row.WritingSeconds),
			)
		}
	},
}

func init() {
	patternCmd.Flags().Int("days", protocol.DefaultDays, "Size of the day window")
}
