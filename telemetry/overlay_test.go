package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOverlayFixedFields(t *testing.T) {
	now := float32(0)
	o := NewOverlay(true, 10, func() float32 { return now })

	o.PopulationChanged("red", 1)
	o.PopulationChanged("blue", 1)
	o.PopulationChanged("red", 2)

	assert.Equal(t, "red: 2\nblue: 1\n", o.Render())
}

func TestOverlayExpiry(t *testing.T) {
	now := float32(0)
	o := NewOverlay(true, 10, func() float32 { return now })

	o.PopulationChanged("red", 1)
	now = 5
	o.PopulationChanged("blue", 3)

	now = 10
	o.Expire()
	assert.Equal(t, "red: 1\nblue: 3\n", o.Render(), "exactly log duration old is kept")

	now = 10.5
	o.Expire()
	assert.Equal(t, "blue: 3\n", o.Render())

	// An expired label comes back at the end.
	o.PopulationChanged("red", 4)
	assert.Equal(t, "blue: 3\nred: 4\n", o.Render())

	now = 100
	o.Expire()
	assert.False(t, o.Visible())
	assert.Empty(t, o.Render())
}

func TestOverlayDisabled(t *testing.T) {
	o := NewOverlay(false, 10, func() float32 { return 0 })
	o.PopulationChanged("red", 1)

	assert.Empty(t, o.Render())
	assert.False(t, o.Visible())
}
