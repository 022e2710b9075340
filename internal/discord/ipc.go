package discord

import (
	"errors"
	"fmt"
	"net"
	"path"
	"slices"
	"strconv"
	"time"
)

// ///////////////////////////////////////////////
// Endpoint Discovery
// ///////////////////////////////////////////////

// ipcSlots is how many numbered endpoints a Discord client may listen on.
const ipcSlots = 10

// dialTimeout bounds a single endpoint dial.
const dialTimeout = time.Second

// runtimeDirVars name the environment variables that may point at the
// directory holding Discord's socket, in lookup order.
var runtimeDirVars = []string{"XDG_RUNTIME_DIR", "TMPDIR", "TMP", "TEMP"}

// sandboxSubdirs are where Snap and Flatpak builds of Discord put their
// socket, relative to a runtime directory. "" is the directory itself.
var sandboxSubdirs = []string{
	"",
	"snap.discord",
	"snap.discord-canary",
	"snap.discord-ptb",
	"app/com.discordapp.Discord",
	"app/com.discordapp.DiscordCanary",
	"app/com.discordapp.DiscordPTB",
}

// endpointName is the socket or pipe name of slot i.
func endpointName(i int) string {
	return "discord-ipc-" + strconv.Itoa(i)
}

// runtimeDirs returns the distinct directories to search, in order: the
// environment variables, extra (platform specific), /run/user/<uid> and
// finally /tmp.
func runtimeDirs(getenv func(string) string, uid int, extra ...string) []string {
	var dirs []string
	add := func(d string) {
		if d == "" {
			return
		}
		d = path.Clean(d)
		if !slices.Contains(dirs, d) {
			dirs = append(dirs, d)
		}
	}
	for _, name := range runtimeDirVars {
		add(getenv(name))
	}
	for _, d := range extra {
		add(d)
	}
	if uid >= 0 {
		add("/run/user/" + strconv.Itoa(uid))
	}
	add("/tmp")
	return dirs
}

// socketPaths expands dirs into every slot of every sandbox location. All
// slots of one location come before the next location.
func socketPaths(dirs []string) []string {
	paths := make([]string, 0, len(dirs)*len(sandboxSubdirs)*ipcSlots)
	for _, dir := range dirs {
		for _, sub := range sandboxSubdirs {
			for i := range ipcSlots {
				paths = append(paths, path.Join(dir, sub, endpointName(i)))
			}
		}
	}
	return paths
}

// pipePaths returns the Windows named pipe of every slot.
func pipePaths() []string {
	paths := make([]string, ipcSlots)
	for i := range ipcSlots {
		paths[i] = `\\.\pipe\` + endpointName(i)
	}
	return paths
}

// dialFirst dials each address in order and returns the first connection.
// When none answers the result wraps ErrIPCNotAvailable.
func dialFirst(addrs []string, dial func(string) (net.Conn, error)) (net.Conn, error) {
	var errs []error
	for _, addr := range addrs {
		conn, err := dial(addr)
		if err == nil {
			return conn, nil
		}
		// Keep the first few; most misses are the same ENOENT.
		if len(errs) < 3 {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil, ErrIPCNotAvailable
	}
	return nil, fmt.Errorf("%w: tried %d endpoints: %w", ErrIPCNotAvailable, len(addrs), errors.Join(errs...))
}
