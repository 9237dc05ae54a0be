package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/balkashynov/tempo/internal/config"
	"github.com/balkashynov/tempo/internal/db"
	"github.com/balkashynov/tempo/internal/paths"
	"github.com/balkashynov/tempo/internal/server"
	"github.com/balkashynov/tempo/internal/session"
)

// Exit codes for the supervisor: 1 is a generic startup failure, 2
// means another daemon already holds the socket.
const exitAlreadyRunning = 2

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the tempo daemon in the foreground",
	Long: `Run the daemon that listens on the local socket for activity events
and queries. Exits with status 2 if another instance is already
running. Stop with SIGINT or SIGTERM; shutdown closes any open session
before releasing the database.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runDaemon(cmd); err != nil {
			if errors.Is(err, server.ErrAlreadyRunning) {
				fmt.Fprintln(os.Stderr, "tempo daemon is already running")
				os.Exit(exitAlreadyRunning)
			}
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func runDaemon(cmd *cobra.Command) error {
	logLevel := slog.LevelInfo
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := paths.EnsureDataDir(cfg.DataDir); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	store, err := db.Open(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	logger.Info("database opened", "path", cfg.DatabasePath)

	// A crash can leave a session active; close it at its last
	// recorded activity so the invariant holds before the manager
	// starts.
	if closed, err := store.CloseOrphanedSessions(); err != nil {
		store.Close()
		return fmt.Errorf("closing orphaned sessions: %w", err)
	} else if closed > 0 {
		logger.Warn("closed orphaned sessions from unclean shutdown", "count", closed)
	}

	sessions := session.NewManager(store, cfg.IdleThreshold, logger)
	srv := server.New(cfg.SocketPath, store, sessions, cfg.IdleThreshold, logger)

	if err := srv.Listen(); err != nil {
		store.Close()
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return srv.Serve(ctx)
}

func init() {
	daemonCmd.Flags().Bool("verbose", false, "Enable debug logging")
}
