// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package status

import (
	"context"
)

type ServiceInterface interface {
	Check(ctx context.Context) *Health
}

// PingerInterface is satisfied by db.DBClient.
type PingerInterface interface {
	Ping(ctx context.Context) error
}
