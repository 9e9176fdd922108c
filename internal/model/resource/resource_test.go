package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithDefaultsFillsEmptyCategories(t *testing.T) {
	crisis := []Link{{Name: "Crisis Text Line", Link: "https://www.crisistextline.org/"}}

	view := Set{Crisis: crisis}.WithDefaults()

	assert.Equal(t, crisis, view.Crisis)
	assert.Equal(t, Defaults().SelfHelp, view.SelfHelp)
	assert.Equal(t, Defaults().Professional, view.Professional)
}

func TestWithDefaultsOnZeroSet(t *testing.T) {
	assert.Equal(t, Defaults(), Set{}.WithDefaults())
}

func TestWithDefaultsCopiesLinks(t *testing.T) {
	src := Set{Professional: []Link{{Name: "Find a Therapist", Link: "https://www.psychologytoday.com/us/therapists"}}}

	view := src.WithDefaults()
	view.Professional[0].Name = "changed"

	assert.Equal(t, "Find a Therapist", src.Professional[0].Name)
}
