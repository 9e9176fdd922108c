// Package resource models the support links shown in the resources panel.
package resource

// Link is a named external resource.
type Link struct {
	Name string `json:"name"`
	Link string `json:"link"`
}

// Set groups resources by category, matching the backend payload.
type Set struct {
	Crisis       []Link `json:"crisis"`
	SelfHelp     []Link `json:"self_help"`
	Professional []Link `json:"professional"`
}

const placeholderLink = "#"

// Defaults returns the placeholder entries shown before the backend has
// populated a category.
func Defaults() Set {
	return Set{
		Crisis: []Link{
			{Name: "988 Suicide & Crisis Lifeline", Link: placeholderLink},
		},
		SelfHelp: []Link{
			{Name: "Anxiety Management Techniques", Link: placeholderLink},
			{Name: "Depression Self-Care Strategies", Link: placeholderLink},
		},
		Professional: []Link{
			{Name: "Find a Therapist", Link: placeholderLink},
		},
	}
}

// WithDefaults returns a copy of s where every empty category holds its placeholders.
func (s Set) WithDefaults() Set {
	defaults := Defaults()
	return Set{
		Crisis:       orDefault(s.Crisis, defaults.Crisis),
		SelfHelp:     orDefault(s.SelfHelp, defaults.SelfHelp),
		Professional: orDefault(s.Professional, defaults.Professional),
	}
}

func orDefault(links, fallback []Link) []Link {
	if len(links) == 0 {
		return fallback
	}
	return append([]Link(nil), links...)
}
