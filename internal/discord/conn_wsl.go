// Under WSL2 Discord runs on the Windows host and its named pipe is not
// reachable directly. A relay such as
//
//	socat UNIX-LISTEN:/tmp/discord-ipc-0,fork EXEC:"npiperelay.exe -ep -s //./pipe/discord-ipc-0"
//
// exposes it as a Unix socket, which the regular search then finds.

//go:build !windows

package discord

import (
	"os"
	"runtime"
	"strings"
)

// wslgRuntimeDir is the runtime directory WSLg shares with the host.
const wslgRuntimeDir = "/mnt/wslg/runtime-dir"

// isWSL reports whether the process runs inside WSL.
func isWSL() bool {
	if runtime.GOOS != "linux" {
		return false
	}
	if os.Getenv("WSL_DISTRO_NAME") != "" {
		return true
	}
	data, err := os.ReadFile("/proc/version")
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(string(data)), "microsoft")
}

// wslRuntimeDirs returns the extra directories searched under WSL.
func wslRuntimeDirs() []string {
	if !isWSL() {
		return nil
	}
	return []string{wslgRuntimeDir}
}
