// Package engine drives a bridge.Listener through the features of a suite.
package engine

import (
	"context"

	"cuke-bridge/bridge"
	"cuke-bridge/shared"
)

// Engine executes one feature, reporting every callback to l in order.
// Per-step failures are reported through l, never returned; a returned error
// means the feature could not be run at all.
type Engine interface {
	Run(ctx context.Context, feature *shared.Feature, l bridge.Listener) error
}
