package enums

import "fmt"

// ConnectStatus is the derived onboarding state of a payout account. It is
// never persisted as a source of truth; it is recomputed from the account's
// signals and cached for display.
type ConnectStatus string

const (
	ConnectStatusNotStarted ConnectStatus = "not_started"
	ConnectStatusPending    ConnectStatus = "pending"
	ConnectStatusRestricted ConnectStatus = "restricted"
	ConnectStatusComplete   ConnectStatus = "complete"
)

var validConnectStatuses = []ConnectStatus{
	ConnectStatusNotStarted,
	ConnectStatusPending,
	ConnectStatusRestricted,
	ConnectStatusComplete,
}

// String implements fmt.Stringer.
func (s ConnectStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is known.
func (s ConnectStatus) IsValid() bool {
	for _, candidate := range validConnectStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseConnectStatus converts raw input into a ConnectStatus.
func ParseConnectStatus(value string) (ConnectStatus, error) {
	for _, candidate := range validConnectStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid connect status %q", value)
}
