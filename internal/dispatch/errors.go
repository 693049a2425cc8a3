package dispatch

import "errors"

// ErrTargetUnavailable indicates the address did not resolve to a live pane
// at send time. Transient; the reliability layer retries it.
var ErrTargetUnavailable = errors.New("target unavailable")

// ErrDeliveryExhausted indicates every retry attempt failed. The caller must
// record this as a failed dispatch, never drop it silently.
var ErrDeliveryExhausted = errors.New("delivery retries exhausted")
