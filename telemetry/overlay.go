package telemetry

import (
	"fmt"
	"strings"
)

type overlayField struct {
	label   string
	text    string
	updated float32
}

// Overlay is a debug text panel of population counts. Each label owns one
// line that is rewritten in place on every update; lines not updated for
// logDuration seconds of sim time drop off. It implements
// systems.PopulationObserver.
type Overlay struct {
	enabled     bool
	logDuration float32
	clock       func() float32

	fields []*overlayField // display order: first update first
	byName map[string]*overlayField
}

// NewOverlay creates an overlay reading sim time from clock.
func NewOverlay(enabled bool, logDuration float32, clock func() float32) *Overlay {
	return &Overlay{
		enabled:     enabled,
		logDuration: logDuration,
		clock:       clock,
		byName:      make(map[string]*overlayField),
	}
}

// PopulationChanged records the latest count for label.
func (o *Overlay) PopulationChanged(label string, count int) {
	if !o.enabled {
		return
	}
	text := fmt.Sprintf("%s: %d", label, count)
	if f, ok := o.byName[label]; ok {
		f.text = text
		f.updated = o.clock()
		return
	}
	f := &overlayField{label: label, text: text, updated: o.clock()}
	o.fields = append(o.fields, f)
	o.byName[label] = f
}

// Expire drops lines older than the log duration.
func (o *Overlay) Expire() {
	now := o.clock()
	kept := o.fields[:0]
	for _, f := range o.fields {
		if now-f.updated > o.logDuration {
			delete(o.byName, f.label)
			continue
		}
		kept = append(kept, f)
	}
	clear(o.fields[len(kept):])
	o.fields = kept
}

// Visible reports whether the panel has anything to show.
func (o *Overlay) Visible() bool {
	return o.enabled && len(o.fields) > 0
}

// Render returns the panel text, one line per label.
func (o *Overlay) Render() string {
	if !o.Visible() {
		return ""
	}
	var b strings.Builder
	for _, f := range o.fields {
		b.WriteString(f.text)
		b.WriteByte('\n')
	}
	return b.String()
}
