//go:build windows

package discord

import (
	"net"

	"github.com/Microsoft/go-winio"
)

// connectToDiscord dials the first Discord named pipe that answers.
func connectToDiscord() (net.Conn, error) {
	return dialFirst(pipePaths(), func(p string) (net.Conn, error) {
		timeout := dialTimeout
		return winio.DialPipe(p, &timeout)
	})
}
