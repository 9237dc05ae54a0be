package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/balkashynov/tempo/internal/client"
	"github.com/balkashynov/tempo/internal/config"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "tempo",
	Short: "A local activity tracking daemon and its CLI",
	Long: `tempo runs a background daemon that ingests activity events from
editors and other producers over a local socket, derives continuous
work sessions from them, and answers analytics queries over the
accumulated history. The other commands are thin clients that talk to
the daemon over the same socket.`,
}

// SetVersion sets the version information injected at build time.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// dialDaemon loads config and connects to the daemon socket.
func dialDaemon() (*client.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return client.Dial(cfg.SocketPath)
}

func init() {
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(emitCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(analyticsCmd)
	rootCmd.AddCommand(trendCmd)
	rootCmd.AddCommand(patternCmd)
	rootCmd.AddCommand(filesCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)
}
