package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// DataDir returns the directory holding the database and socket,
// ~/.tempo by default.
func DataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".tempo"), nil
}

// SocketPath returns the IPC endpoint for the given data directory.
// Windows uses a named-pipe style path; everywhere else it is a
// filesystem socket inside the data directory.
func SocketPath(dataDir string) string {
	if runtime.GOOS == "windows" {
		return `\\.\pipe\tempo-agent.sock`
	}
	return filepath.Join(dataDir, "tempo.sock")
}

// DatabasePath returns the SQLite file for the given data directory.
func DatabasePath(dataDir string) string {
	return filepath.Join(dataDir, "tempo.db")
}

// EnsureDataDir creates the data directory if it does not exist.
func EnsureDataDir(dataDir string) error {
	return os.MkdirAll(dataDir, 0755)
}
