// Package alerting pkg/alerting/handlers.go
package alerting

import (
	"fmt"
	"log"
	"time"

	"github.com/HughKantsime/printfarm/pkg/events"
	"github.com/HughKantsime/printfarm/pkg/models"
)

// Attach subscribes the dispatcher to the lifecycle and connectivity
// events that raise alerts. Handlers run on the publishing goroutine, so
// they only cut rows; network delivery hops to the dispatcher's own
// goroutines.
func (d *Dispatcher) Attach(bus *events.Bus) {
	bus.Subscribe(events.TypeJobCompleted, subscriberName, d.onJobCompleted)
	bus.Subscribe(events.TypeJobFailed, subscriberName, d.onJobFailed)
	bus.Subscribe(events.TypePrinterOffline, subscriberName, d.onPrinterOffline)
	bus.Subscribe(events.TypePrinterRecovered, subscriberName, d.onPrinterRecovered)
}

// Detach removes the dispatcher's subscriptions.
func (d *Dispatcher) Detach(bus *events.Bus) {
	bus.Unsubscribe(events.TypeJobCompleted, subscriberName)
	bus.Unsubscribe(events.TypeJobFailed, subscriberName)
	bus.Unsubscribe(events.TypePrinterOffline, subscriberName)
	bus.Unsubscribe(events.TypePrinterRecovered, subscriberName)
}

func (d *Dispatcher) onJobCompleted(evt events.Event) {
	name := jobLabel(evt)

	msg := fmt.Sprintf("Printer %s finished %s.", evt.PrinterID, name)
	if dur := dataDuration(evt, "duration_sec"); dur > 0 {
		msg = fmt.Sprintf("Printer %s finished %s in %s.", evt.PrinterID, name, dur)
	}

	d.dispatchEvent(Notice{
		Type:      evt.Type,
		Severity:  models.SeverityInfo,
		PrinterID: evt.PrinterID,
		Title:     "Print complete: " + name,
		Message:   msg,
	})
}

func (d *Dispatcher) onJobFailed(evt events.Event) {
	name := jobLabel(evt)

	msg := fmt.Sprintf("Printer %s failed %s.", evt.PrinterID, name)
	if dur := dataDuration(evt, "duration_sec"); dur > 0 {
		msg = fmt.Sprintf("Printer %s failed %s after %s.", evt.PrinterID, name, dur)
	}

	if code := dataString(evt, "error_code"); code != "" {
		msg += fmt.Sprintf(" Stop code %s.", code)
	}

	d.dispatchEvent(Notice{
		Type:      evt.Type,
		Severity:  models.SeverityError,
		PrinterID: evt.PrinterID,
		Title:     "Print failed: " + name,
		Message:   msg,
	})
}

func (d *Dispatcher) onPrinterOffline(evt events.Event) {
	name := printerLabel(evt)

	msg := fmt.Sprintf("Lost contact with printer %s.", name)
	if diag := dataString(evt, "diagnosis"); diag != "" {
		msg += " Probe: " + diag + "."
	}

	d.dispatchEvent(Notice{
		Type:      evt.Type,
		Severity:  models.SeverityWarning,
		PrinterID: evt.PrinterID,
		Title:     "Printer offline: " + name,
		Message:   msg,
	})
}

func (d *Dispatcher) onPrinterRecovered(evt events.Event) {
	name := printerLabel(evt)

	d.dispatchEvent(Notice{
		Type:      evt.Type,
		Severity:  models.SeverityInfo,
		PrinterID: evt.PrinterID,
		Title:     "Printer recovered: " + name,
		Message:   fmt.Sprintf("Printer %s is reachable again.", name),
	})
}

func (d *Dispatcher) dispatchEvent(n Notice) {
	if err := d.Dispatch(n); err != nil {
		log.Printf("Alert dispatch for %s failed: %v", n.Type, err)
	}
}

func jobLabel(evt events.Event) string {
	if name := dataString(evt, "job_name"); name != "" {
		return name
	}

	return "print job"
}

func printerLabel(evt events.Event) string {
	if name := dataString(evt, "printer_name"); name != "" {
		return name
	}

	return evt.PrinterID
}

func dataString(evt events.Event, key string) string {
	if v, ok := evt.Data[key].(string); ok {
		return v
	}

	return ""
}

func dataDuration(evt events.Event, key string) time.Duration {
	switch v := evt.Data[key].(type) {
	case int64:
		return time.Duration(v) * time.Second
	case float64:
		return time.Duration(v) * time.Second
	default:
		return 0
	}
}
