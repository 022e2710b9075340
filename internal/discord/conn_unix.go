//go:build !windows

package discord

import (
	"fmt"
	"net"
	"os"
)

// connectToDiscord dials the first Discord socket found in the runtime,
// Snap and Flatpak locations.
func connectToDiscord() (net.Conn, error) {
	dirs := runtimeDirs(os.Getenv, os.Getuid(), wslRuntimeDirs()...)
	conn, err := dialFirst(socketPaths(dirs), func(p string) (net.Conn, error) {
		return net.DialTimeout("unix", p, dialTimeout)
	})
	if err != nil && isWSL() {
		return nil, fmt.Errorf("running under WSL, Discord needs a socat + npiperelay.exe relay: %w", err)
	}
	return conn, err
}
