package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/balkashynov/tempo/internal/protocol"
)

var trendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Show per-day time per project, language or app",
	Run: func(cmd *cobra.Command, args []string) {
		groupBy, _ := cmd.Flags().GetString("group-by")
		days, _ := cmd.Flags().GetInt("days")

		c, err := dialDaemon()
		if err != nil {
			fmt.Println(errorStyle.Render(fmt.Sprintf("Error: %v", err)))
			return
		}
		defer c.Close()

		// Trend rows carry dynamic keys, one per observed value of the
		// grouping dimension, next to the fixed "date" key.
		var points []map[string]any
		err = c.Query(protocol.Request{
			Type:    protocol.TypeQueryTrend,
			GroupBy: groupBy,
			Days:    &days,
		}, &points)
		if err != nil {
			fmt.Println(errorStyle.Render(fmt.Sprintf("Error: %v", err)))
			return
		}

		if len(points) == 0 {
			fmt.Println("No sessions in the selected window")
			return
		}

		for _, point := range points {
			date, _ := point["date"].(string)
			keys := make([]string, 0, len(point))
			for key := range point {
				if key != "date" {
					keys = append(keys, key)
				}
			}
			sort.Strings(keys)

			fmt.Println(headerStyle.Render(date))
			for _, key := range keys {
				seconds, _ := point[key].(float64)
				fmt.Printf("  %-30s %s\n", truncate(key, 28), formatSeconds(int64(seconds)))
			}
		}
	},
}

func init() {
	trendCmd.Flags().String("group-by", "project", "Grouping: project, language or app")
	trendCmd.Flags().Int("days", protocol.DefaultDays, "Size of the day window")
}
