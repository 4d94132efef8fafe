// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/AleutianAI/AleutianDAG/services/pipelines/analytics"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// wsWriteTimeout bounds each write to a dashboard client.
const wsWriteTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 16 * 1024,
}

func sendJSON(ws *websocket.Conn, v interface{}) error {
	_ = ws.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	err := ws.WriteJSON(v)
	if err != nil {
		slog.Warn("Failed to write WebSocket JSON", "error", err)
	}
	return err
}

// HandleDashboardWebSocket streams analytics snapshots to dashboard clients.
//
// # Description
//
// Upgrades GET /dashboard/ws, sends the current snapshot, then pushes a new
// snapshot after every recorded submission. The connection is closed when
// the client goes away or when ctx is cancelled.
//
// # Inputs
//
//   - ctx: Service lifetime. Cancelling it closes every open feed, since
//     http.Server.Shutdown does not track hijacked connections.
//   - store: Analytics store. Must not be nil.
//
// # Outputs
//
//   - gin.HandlerFunc: Handler ready for router registration.
//
// # Limitations
//
//   - Messages from the client are read and discarded.
//   - A slow client only ever receives the latest snapshot; intermediate
//     ones are dropped.
func HandleDashboardWebSocket(ctx context.Context, store *analytics.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			slog.Error("failed to upgrade the websocket", "error", err)
			return
		}
		defer ws.Close()

		updates, unsubscribe := store.Subscribe()
		defer unsubscribe()

		if err := sendJSON(ws, store.Snapshot()); err != nil {
			return
		}

		// Read pump: gorilla only processes close frames while reading.
		clientGone := make(chan struct{})
		go func() {
			defer close(clientGone)
			for {
				if _, _, err := ws.NextReader(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-ctx.Done():
				_ = ws.WriteControl(
					websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
					time.Now().Add(time.Second),
				)
				return
			case <-clientGone:
				slog.Debug("Dashboard client disconnected")
				return
			case snap, ok := <-updates:
				if !ok {
					return
				}
				if err := sendJSON(ws, snap); err != nil {
					return
				}
			}
		}
	}
}
