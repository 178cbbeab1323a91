// Package gate decides whether an auto-send pass may run under the current conditions.
package gate

import (
	"fmt"

	"github.com/example/odkupload/internal/core/autosend"
)

// NetworkType is the kind of connectivity currently available.
type NetworkType string

const (
	NetworkWiFi     NetworkType = "wifi"
	NetworkCellular NetworkType = "cellular"
	NetworkNone     NetworkType = "none"
)

// ParseNetworkType validates a network type string.
func ParseNetworkType(s string) (NetworkType, error) {
	switch NetworkType(s) {
	case NetworkWiFi, NetworkCellular, NetworkNone:
		return NetworkType(s), nil
	}
	return "", fmt.Errorf("invalid network type %q (want wifi, cellular or none)", s)
}

// Verdict is the outcome of the readiness check.
type Verdict string

const (
	Proceed    Verdict = "proceed"
	RetryLater Verdict = "retry"
	Fail       Verdict = "fail"
)

// ReadyContext provides context for the readiness check.
type ReadyContext struct {
	StorageAvailable bool
	Network          NetworkType
	Mode             autosend.Mode

	// AnyFormForcesAutoSend is true when a form turns auto-send on regardless of connection.
	AnyFormForcesAutoSend bool
}

// Decision is a verdict with the reason behind it.
type Decision struct {
	Verdict Verdict
	Reason  string
}

// NetworkMatchesMode reports whether the connection type is one the mode sends over.
func NetworkMatchesMode(network NetworkType, mode autosend.Mode) bool {
	switch network {
	case NetworkWiFi:
		return mode.AllowsWiFi()
	case NetworkCellular:
		return mode.AllowsCellular()
	}
	return false
}

// CheckReady evaluates whether a pass runs now.
// Rules:
// - storage must be available, otherwise fail
// - proceed when the network matches the mode or a form forces auto-send
// - with auto-send off no connectivity change can help, so fail
// - otherwise retry when connectivity changes
func CheckReady(ctx ReadyContext) Decision {
	if !ctx.StorageAvailable {
		return Decision{Verdict: Fail, Reason: "instance storage is not available"}
	}

	if NetworkMatchesMode(ctx.Network, ctx.Mode) || ctx.AnyFormForcesAutoSend {
		return Decision{Verdict: Proceed}
	}

	if !ctx.Mode.Enabled() {
		return Decision{Verdict: Fail, Reason: "auto-send is off and no form requests it"}
	}

	return Decision{
		Verdict: RetryLater,
		Reason:  fmt.Sprintf("network %s does not match auto-send mode %s", ctx.Network, ctx.Mode),
	}
}
