// Package ipc is the unix-socket control channel between the daemon and
// huntboard-ctl.
package ipc

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
)

const SocketPath = "/tmp/huntboard.sock"

// ControlMessage is a single command from the control client.
// Known commands: enable, disable, reset, battle, status.
type ControlMessage struct {
	Cmd string `json:"cmd"`
}

// Reply is the daemon's answer. Status carries the assistant snapshot for
// the status command.
type Reply struct {
	OK     bool            `json:"ok"`
	Error  string          `json:"error,omitempty"`
	Status json.RawMessage `json:"status,omitempty"`
}

// StartServer listens on the control socket and runs handler per connection.
func StartServer(handler func(ControlMessage) Reply) error {
	os.Remove(SocketPath)

	ln, err := net.Listen("unix", SocketPath)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				continue
			}
			go handleConn(conn, handler)
		}
	}()

	return nil
}

func handleConn(conn net.Conn, handler func(ControlMessage) Reply) {
	defer conn.Close()

	var msg ControlMessage
	if err := json.NewDecoder(conn).Decode(&msg); err != nil {
		return
	}

	reply := handler(msg)
	json.NewEncoder(conn).Encode(reply)
}

// SendCommand connects to a running daemon and returns its reply.
func SendCommand(cmd string) (Reply, error) {
	conn, err := net.Dial("unix", SocketPath)
	if err != nil {
		return Reply{}, err
	}
	defer conn.Close()

	if err := json.NewEncoder(conn).Encode(ControlMessage{Cmd: cmd}); err != nil {
		return Reply{}, err
	}

	var reply Reply
	if err := json.NewDecoder(conn).Decode(&reply); err != nil {
		return Reply{}, err
	}
	return reply, nil
}
