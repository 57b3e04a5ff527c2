// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AddonSmith Contributors

package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"
)

// Console is the remote console command channel into the running game
// server. Implementations send one command and return its text response.
type Console interface {
	Run(ctx context.Context, command string) (string, error)
}

// RCON packet types.
const (
	rconAuth = 3
	rconExec = 2
)

// RconConsole speaks the Source RCON protocol over TCP. Good enough for
// Bedrock wrappers and Java servers alike.
type RconConsole struct {
	addr     string
	password string
	timeout  time.Duration
}

// NewRconConsole creates a console client. timeout bounds dialing and
// each request/response exchange.
func NewRconConsole(addr, password string, timeout time.Duration) *RconConsole {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &RconConsole{addr: addr, password: password, timeout: timeout}
}

// Run sends one command and returns the response body.
func (c *RconConsole) Run(ctx context.Context, command string) (string, error) {
	dialer := net.Dialer{Timeout: c.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return "", fmt.Errorf("dial console %s: %w", c.addr, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return "", err
	}

	if c.password != "" {
		if err := writePacket(conn, rconAuth, c.password); err != nil {
			return "", fmt.Errorf("console auth: %w", err)
		}
		if _, err := readPacket(conn); err != nil {
			return "", fmt.Errorf("console auth: %w", err)
		}
	}

	if err := writePacket(conn, rconExec, command); err != nil {
		return "", fmt.Errorf("send command: %w", err)
	}
	resp, err := readPacket(conn)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	return resp.body, nil
}

type rconPacket struct {
	id   int32
	typ  int32
	body string
}

func writePacket(w io.Writer, packetType int32, body string) error {
	payload := append([]byte{}, int32ToBytes(1)...)
	payload = append(payload, int32ToBytes(packetType)...)
	payload = append(payload, []byte(body)...)
	payload = append(payload, 0x00, 0x00)
	packet := append(int32ToBytes(int32(len(payload))), payload...)
	_, err := w.Write(packet)
	return err
}

func readPacket(r io.Reader) (rconPacket, error) {
	size, err := readInt32(r)
	if err != nil {
		return rconPacket{}, err
	}
	if size < 10 || size > 1<<20 {
		return rconPacket{}, fmt.Errorf("implausible packet size %d", size)
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return rconPacket{}, err
	}
	p := rconPacket{
		id:   bytesToInt32(buf[0:4]),
		typ:  bytesToInt32(buf[4:8]),
		body: string(buf[8 : len(buf)-2]),
	}
	if p.id == -1 {
		return rconPacket{}, errors.New("console auth failed")
	}
	return p, nil
}

func int32ToBytes(v int32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

func bytesToInt32(b []byte) int32 {
	return int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16 | int32(b[3])<<24
}

func readInt32(r io.Reader) (int32, error) {
	buf := make([]byte, 4)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, err
	}
	return bytesToInt32(buf), nil
}
