package flags

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("flag not found")

// Well-known toggles checked by the monitor loop. Operators can flip these
// at runtime through the API without restarting the monitor.
const (
	KeyAdvisoryEnabled = "advisory.enabled"
	KeyAlertingEnabled = "alerting.enabled"
	KeySocialEnabled   = "social.enabled"
)

type Flag struct {
	Key       string    `json:"key"`
	Value     bool      `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
