package main

import (
	"fmt"
	"io"

	"github.com/l1jgo/itemforge/internal/core/event"
)

// diagnostics tallies the events a run raised.
type diagnostics struct {
	itemsSkipped   int
	setsAmbiguous  int
	lootFailed     int
	recordsFailed  int
	recordsSkipped int
	docsInvalid    int
	critical       error
}

func (d *diagnostics) subscribe(bus *event.Bus) {
	event.Subscribe(bus, func(event.ItemSkipped) { d.itemsSkipped++ })
	event.Subscribe(bus, func(event.SetAmbiguous) { d.setsAmbiguous++ })
	event.Subscribe(bus, func(event.LootAnnotationFailed) { d.lootFailed++ })
	event.Subscribe(bus, func(event.RecordFailed) { d.recordsFailed++ })
	event.Subscribe(bus, func(event.RecordSkipped) { d.recordsSkipped++ })
	event.Subscribe(bus, func(event.DocumentInvalid) { d.docsInvalid++ })
	event.Subscribe(bus, func(e event.CriticalError) {
		if d.critical == nil {
			d.critical = e.Err
		}
	})
}

func (d *diagnostics) empty() bool {
	return d.itemsSkipped+d.setsAmbiguous+d.lootFailed+d.recordsFailed+d.recordsSkipped+d.docsInvalid == 0
}

func (d *diagnostics) print(w io.Writer) {
	if d.empty() {
		return
	}
	fmt.Fprintf(w, "diagnostics: items skipped %d, ambiguous sets %d, loot hook failures %d, records failed %d, records skipped %d, invalid documents %d\n",
		d.itemsSkipped, d.setsAmbiguous, d.lootFailed, d.recordsFailed, d.recordsSkipped, d.docsInvalid)
}
