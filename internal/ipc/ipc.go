package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"

	log "log/slog"

	"aide/pkg/api"
)

const DefaultSocketPath = "/tmp/aide.sock"

// Handler dispatches one query to a reply.
type Handler func(ctx context.Context, query string) string

// StartServer listens on a unix socket for local control clients. Each
// connection carries one JSON CommandRequest and receives one CommandReply.
func StartServer(path string, handler Handler) error {
	os.Remove(path)

	ln, err := net.Listen("unix", path)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				if errors.Is(err, net.ErrClosed) {
					return
				}
				continue
			}
			go handleConn(conn, handler)
		}
	}()

	log.Info("Control socket ready", "path", path)
	return nil
}

func handleConn(conn net.Conn, handler Handler) {
	defer conn.Close()

	var req api.CommandRequest
	if err := json.NewDecoder(conn).Decode(&req); err != nil {
		return
	}

	reply := handler(context.Background(), req.Query)
	if err := json.NewEncoder(conn).Encode(api.CommandReply{Reply: reply}); err != nil {
		log.Warn("Failed to write control reply", "err", err)
	}
}

// Send delivers one query to a running daemon and returns its reply.
func Send(path, query string) (string, error) {
	conn, err := net.Dial("unix", path)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	if err := json.NewEncoder(conn).Encode(api.CommandRequest{Query: query}); err != nil {
		return "", err
	}

	var rep api.CommandReply
	if err := json.NewDecoder(conn).Decode(&rep); err != nil {
		return "", err
	}
	if rep.Error != "" {
		return "", errors.New(rep.Error)
	}
	return rep.Reply, nil
}
