package enums

import "fmt"

// ArtworkStatus is the listing lifecycle of a piece. The only legal
// transition is active -> sold; a sold piece never returns to the market.
type ArtworkStatus string

const (
	ArtworkStatusActive ArtworkStatus = "active"
	ArtworkStatusSold   ArtworkStatus = "sold"
)

var validArtworkStatuses = []ArtworkStatus{
	ArtworkStatusActive,
	ArtworkStatusSold,
}

// String implements fmt.Stringer.
func (s ArtworkStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is known.
func (s ArtworkStatus) IsValid() bool {
	for _, candidate := range validArtworkStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseArtworkStatus converts raw input into an ArtworkStatus.
func ParseArtworkStatus(value string) (ArtworkStatus, error) {
	for _, candidate := range validArtworkStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid artwork status %q", value)
}
