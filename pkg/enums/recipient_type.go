package enums

import "fmt"

// RecipientType tags a payout transfer with the party it pays.
type RecipientType string

const (
	RecipientTypeArtist RecipientType = "artist"
	RecipientTypeVenue  RecipientType = "venue"
)

var validRecipientTypes = []RecipientType{
	RecipientTypeArtist,
	RecipientTypeVenue,
}

// String implements fmt.Stringer.
func (r RecipientType) String() string {
	return string(r)
}

// IsValid reports whether the value is known.
func (r RecipientType) IsValid() bool {
	for _, candidate := range validRecipientTypes {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRecipientType converts raw input into a RecipientType.
func ParseRecipientType(value string) (RecipientType, error) {
	for _, candidate := range validRecipientTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid recipient type %q", value)
}
