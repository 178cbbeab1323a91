// Package autosend contains the pure policy deciding which instances are sent and deleted
// automatically. Form-level settings override app-level settings.
package autosend

import "fmt"

// Mode is the app-level auto-send setting.
type Mode string

const (
	ModeOff             Mode = "off"
	ModeWiFiOnly        Mode = "wifi_only"
	ModeCellularOnly    Mode = "cellular_only"
	ModeWiFiAndCellular Mode = "wifi_and_cellular"
)

// ParseMode validates an auto-send mode string. Empty means off.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeOff:
		return ModeOff, nil
	case ModeWiFiOnly, ModeCellularOnly, ModeWiFiAndCellular:
		return Mode(s), nil
	}
	return "", fmt.Errorf("invalid auto-send mode %q (want off, wifi_only, cellular_only or wifi_and_cellular)", s)
}

// Enabled reports whether app-level auto-send is on for any network.
func (m Mode) Enabled() bool {
	return m != ModeOff && m != ""
}

// AllowsWiFi reports whether the mode sends over Wi-Fi.
func (m Mode) AllowsWiFi() bool {
	return m == ModeWiFiOnly || m == ModeWiFiAndCellular
}

// AllowsCellular reports whether the mode sends over cellular data.
func (m Mode) AllowsCellular() bool {
	return m == ModeCellularOnly || m == ModeWiFiAndCellular
}

// AutoSendContext provides context for the auto-send decision.
type AutoSendContext struct {
	FormID string

	// FormAutoSend is nil when the form is unknown or does not set the flag.
	FormAutoSend    *bool
	AppLevelEnabled bool
}

// ShouldAutoSend evaluates whether instances of a form are sent automatically.
// Rules:
// - an explicit form-level flag wins
// - otherwise the app-level setting applies
func ShouldAutoSend(ctx AutoSendContext) bool {
	if ctx.FormAutoSend != nil {
		return *ctx.FormAutoSend
	}
	return ctx.AppLevelEnabled
}

// AutoDeleteContext provides context for the delete-after-send decision.
type AutoDeleteContext struct {
	FormID string

	// FormAutoDelete is nil when the form is unknown or does not set the flag.
	FormAutoDelete          *bool
	AppLevelDeleteAfterSend bool

	// Override is set by callers that explicitly asked to keep or delete sent instances.
	Override *bool
}

// ShouldAutoDelete evaluates whether a successfully sent instance is deleted.
// Rules:
// - a caller-supplied override wins
// - otherwise an explicit form-level flag wins
// - otherwise the app-level delete-after-send setting applies
func ShouldAutoDelete(ctx AutoDeleteContext) bool {
	if ctx.Override != nil {
		return *ctx.Override
	}
	if ctx.FormAutoDelete != nil {
		return *ctx.FormAutoDelete
	}
	return ctx.AppLevelDeleteAfterSend
}

// AnyFormForcesAutoSend reports whether at least one form explicitly turns auto-send on.
// Such a form is sent over any connection, whatever the app-level mode.
func AnyFormForcesAutoSend(formFlags []*bool) bool {
	for _, flag := range formFlags {
		if flag != nil && *flag {
			return true
		}
	}
	return false
}
