// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package status

import (
	"time"
)

const (
	StatusOK    = "ok"
	StatusError = "error"

	DatabaseConnected    = "connected"
	DatabaseDisconnected = "disconnected"
)

type Health struct {
	Status    string    `json:"status"`
	Database  string    `json:"database"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

func (h *Health) Healthy() bool {
	return h.Status == StatusOK
}
