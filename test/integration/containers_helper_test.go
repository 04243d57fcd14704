package integration

import (
	"os"
	"path/filepath"
	"strconv"
)

// containersAvailable reports whether a container runtime socket exists,
// so the Postgres-backed ledger tests can skip cleanly on hosts without
// Docker or Podman.
func containersAvailable() bool {
	if _, err := os.Stat("/var/run/docker.sock"); err == nil {
		return true
	}
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		_, err := os.Stat(filepath.Join(runtimeDir, "podman", "podman.sock"))
		return err == nil
	}
	if uid := os.Getuid(); uid > 0 {
		if _, err := os.Stat("/run/user/" + strconv.Itoa(uid) + "/podman/podman.sock"); err == nil {
			return true
		}
	}
	return false
}
