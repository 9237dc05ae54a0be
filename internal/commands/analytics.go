package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/balkashynov/tempo/internal/db"
	"github.com/balkashynov/tempo/internal/protocol"
)

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Show total time grouped by hour, day, month, project or language",
	Run: func(cmd *cobra.Command, args []string) {
		groupBy, _ := cmd.Flags().GetString("group-by")
		start, _ := cmd.Flags().GetString("start")
		end, _ := cmd.Flags().GetString("end")

		c, err := dialDaemon()
		if err != nil {
			fmt.Println(errorStyle.Render(fmt.Sprintf("Error: %v", err)))
			return
		}
		defer c.Close()

		var rows []db.AnalyticsRow
		err = c.Query(protocol.Request{
			Type:      protocol.TypeQueryAnalytics,
			GroupBy:   groupBy,
			StartTime: start,
			EndTime:   end,
		}, &rows)
		if err != nil {
			fmt.Println(errorStyle.Render(fmt.Sprintf("Error: %v", err)))
			return
		}

		if len(rows) == 0 {
			fmt.Println("No sessions in the selected range")
			return
		}

		fmt.Println(headerStyle.Render(fmt.Sprintf("%-30s %-10s %s", strings.ToUpper(groupBy), "TIME", "SESSIONS")))
		fmt.Println(mutedStyle.Render(strings.Repeat("-", 50)))
		for _, row := range rows {
			fmt.Printf("%-30s %-10s %d\n",
				truncate(row.Key, 28),
				formatSeconds(row.TotalDurationSeconds),
				row.SessionCount,
			)
		}
	},
}

func init() {
	analyticsCmd.Flags().String("group-by", "day", "Grouping: hour, day, month, project or language")
	analyticsCmd.Flags().String("start", "", "Only sessions starting at or after this RFC 3339 time")
	analyticsCmd.Flags().String("end", "", "Only sessions starting at or before this RFC 3339 time")
}
