// Package jobs pkg/jobs/detector.go
package jobs

import (
	"errors"
	"log"
	"math"
	"strings"
	"time"

	"github.com/HughKantsime/printfarm/pkg/db"
	"github.com/HughKantsime/printfarm/pkg/events"
	"github.com/HughKantsime/printfarm/pkg/models"
)

const (
	eventSource = "jobs"

	// Adapters normalize device finish states to idle with full progress,
	// so an active print that lands on idle below this mark was cancelled.
	completionThreshold = 99.5

	progressMinDelta    = 1.0
	progressMinInterval = 5 * time.Second
)

// DefaultStopCodes are device error codes known to end a print even while
// the device's own state field still reads printing. Deployments extend the
// list through config; firmware vendors add codes faster than releases ship.
var DefaultStopCodes = []string{
	"0500403B", // nozzle thermal runaway
	"05004030", // nozzle temperature malfunction
	"0300400A", // heatbed temperature malfunction
	"07008011", // filament runout, no recovery
	"3",        // resin level fault
	"16",       // release film failure
}

// phase is the detector's view of a printer, derived from canonical state.
type phase int

const (
	phaseNone phase = iota
	phaseIdle
	phasePrinting
	phasePaused
	phaseFailed
	phaseOffline
	phaseUnknown
)

// Detector is the per-printer transition state machine. It is not safe for
// concurrent use; each monitor worker owns exactly one.
type Detector struct {
	printerID string
	bus       *events.Bus
	store     Store
	linker    *Linker
	stopCodes map[string]struct{}

	prev       phase
	openJobID  int64
	jobName    string
	startedAt  time.Time
	scheduleID *int64

	lastProgressPct float64
	lastProgressAt  time.Time
}

// NewDetector builds a detector for one printer and picks up any job left
// open by a previous run, so a monitor restart does not lose a live print.
func NewDetector(printerID string, bus *events.Bus, store Store, linker *Linker, stopCodes []string) *Detector {
	d := &Detector{
		printerID: printerID,
		bus:       bus,
		store:     store,
		linker:    linker,
		stopCodes: make(map[string]struct{}, len(stopCodes)),
	}

	for _, code := range stopCodes {
		d.stopCodes[normalizeErrorCode(code)] = struct{}{}
	}

	job, err := store.GetOpenJob(printerID)
	switch {
	case err == nil && job != nil:
		d.openJobID = job.ID
		d.jobName = job.JobName
		d.startedAt = job.StartedAt
		d.scheduleID = job.ScheduleID
	case err != nil && !errors.Is(err, db.ErrNotFound):
		log.Printf("Failed to load open job for printer %s: %v", printerID, err)
	}

	return d
}

// Observe feeds one status snapshot through the transition table.
func (d *Detector) Observe(status models.CanonicalStatus) {
	now := time.Now()
	next := d.classify(status)

	switch {
	case next == phasePrinting && canStart(d.prev):
		d.handleStart(status, now)
	case isActive(d.prev) && next == phaseIdle:
		if status.Progress >= completionThreshold {
			d.closeOpenJob(models.JobCompleted, "", now)
		} else {
			d.closeOpenJob(models.JobCancelled, "", now)
		}
	case isActive(d.prev) && next == phaseFailed:
		d.closeOpenJob(models.JobFailed, status.ErrorCode, now)
	case next == phasePaused && d.prev != phasePaused:
		d.publishPaused(status)
	}

	if next == phasePrinting && d.openJobID != 0 {
		d.maybePublishProgress(status, now)
	}

	d.prev = next
}

// classify maps a snapshot to a phase. A print-stopping error code forces
// the failed phase even while the device's state field still reads printing;
// several firmwares update the error word a few reports before the state.
func (d *Detector) classify(status models.CanonicalStatus) phase {
	next := basePhase(status.State)

	if next == phasePrinting || next == phasePaused {
		if _, stop := d.stopCodes[normalizeErrorCode(status.ErrorCode)]; stop && status.ErrorCode != "" {
			return phaseFailed
		}
	}

	return next
}

func basePhase(state models.PrinterState) phase {
	switch state {
	case models.StateIdle:
		return phaseIdle
	case models.StatePrinting:
		return phasePrinting
	case models.StatePaused:
		return phasePaused
	case models.StateError:
		return phaseFailed
	case models.StateOffline:
		return phaseOffline
	default:
		return phaseUnknown
	}
}

// canStart reports whether a transition into printing from p opens a job.
// Paused and offline are excluded: the former is a resume, the latter a
// reconnect to a print we may already be tracking.
func canStart(p phase) bool {
	return p == phaseNone || p == phaseIdle || p == phaseFailed
}

func isActive(p phase) bool {
	return p == phasePrinting || p == phasePaused
}

func (d *Detector) handleStart(status models.CanonicalStatus, now time.Time) {
	if d.openJobID != 0 {
		if d.prev == phaseNone && d.sameJob(status.FileName) {
			log.Printf("Adopted open job %d (%s) for printer %s after restart",
				d.openJobID, d.jobName, d.printerID)
			return
		}

		log.Printf("Closing stale open job %d for printer %s before new start",
			d.openJobID, d.printerID)
		d.closeOpenJob(models.JobCancelled, "", now)
	}

	jobID, err := d.store.OpenJob(d.printerID, status.FileName, now)
	if err != nil {
		log.Printf("Failed to open job for printer %s: %v", d.printerID, err)
		return
	}

	d.openJobID = jobID
	d.jobName = status.FileName
	d.startedAt = now
	d.scheduleID = nil
	d.lastProgressAt = time.Time{}
	d.lastProgressPct = status.Progress

	data := map[string]interface{}{
		"job_id":   jobID,
		"job_name": status.FileName,
	}

	if schedule := d.linkSchedule(jobID, status); schedule != nil {
		data["schedule_id"] = schedule.ID
		data["item_name"] = schedule.ItemName
	}

	d.bus.Publish(events.New(events.TypeJobStarted, eventSource, d.printerID, data))
}

func (d *Detector) linkSchedule(jobID int64, status models.CanonicalStatus) *models.ScheduledJob {
	schedule, err := d.linker.Link(d.printerID, status.FileName, status.TotalLayers)
	if err != nil {
		log.Printf("Schedule lookup failed for printer %s: %v", d.printerID, err)
		return nil
	}

	if schedule == nil {
		return nil
	}

	if err := d.store.LinkJobToSchedule(jobID, schedule.ID); err != nil {
		log.Printf("Failed to link job %d to schedule %d: %v", jobID, schedule.ID, err)
		return nil
	}

	d.scheduleID = &schedule.ID

	return schedule
}

func (d *Detector) closeOpenJob(jobStatus models.JobStatus, errorCode string, now time.Time) {
	if d.openJobID == 0 {
		return
	}

	var err error
	if d.scheduleID != nil {
		err = d.store.CloseJobAndSchedule(d.openJobID, jobStatus, now, errorCode,
			*d.scheduleID, scheduleOutcome(jobStatus))
	} else {
		err = d.store.CloseJob(d.openJobID, jobStatus, now, errorCode)
	}

	if err != nil {
		log.Printf("Failed to close job %d for printer %s: %v", d.openJobID, d.printerID, err)
	}

	d.publishClosed(jobStatus, errorCode, now)

	d.openJobID = 0
	d.jobName = ""
	d.scheduleID = nil
}

func (d *Detector) publishClosed(jobStatus models.JobStatus, errorCode string, now time.Time) {
	data := map[string]interface{}{
		"job_id":       d.openJobID,
		"job_name":     d.jobName,
		"duration_sec": int64(now.Sub(d.startedAt).Seconds()),
	}
	if d.scheduleID != nil {
		data["schedule_id"] = *d.scheduleID
	}

	var eventType string

	switch jobStatus {
	case models.JobCompleted:
		eventType = events.TypeJobCompleted
		data["success"] = true
	case models.JobFailed:
		eventType = events.TypeJobFailed
		data["success"] = false
		data["error_code"] = errorCode
	default:
		eventType = events.TypeJobCancelled
	}

	d.bus.Publish(events.New(eventType, eventSource, d.printerID, data))
}

func (d *Detector) publishPaused(status models.CanonicalStatus) {
	data := map[string]interface{}{
		"job_name": status.FileName,
		"progress": status.Progress,
	}
	if d.openJobID != 0 {
		data["job_id"] = d.openJobID
	}

	d.bus.Publish(events.New(events.TypeJobPaused, eventSource, d.printerID, data))
}

// maybePublishProgress rate limits progress chatter: a snapshot is published
// when progress moved at least a full point or the minimum interval elapsed.
func (d *Detector) maybePublishProgress(status models.CanonicalStatus, now time.Time) {
	if !d.lastProgressAt.IsZero() {
		delta := math.Abs(status.Progress - d.lastProgressPct)
		if delta < progressMinDelta && now.Sub(d.lastProgressAt) < progressMinInterval {
			return
		}
	}

	d.lastProgressAt = now
	d.lastProgressPct = status.Progress

	d.bus.Publish(events.New(events.TypeJobProgress, eventSource, d.printerID, map[string]interface{}{
		"job_id":        d.openJobID,
		"progress":      status.Progress,
		"current_layer": status.CurrentLayer,
		"total_layers":  status.TotalLayers,
		"remaining_sec": status.RemainingSec,
	}))
}

func (d *Detector) sameJob(fileName string) bool {
	if fileName == "" || d.jobName == "" {
		return true
	}

	return normalizeJobName(fileName) == normalizeJobName(d.jobName)
}

// scheduleOutcome maps a closed job onto its schedule: a cancelled print
// returns the schedule to the pending pool so it can run again.
func scheduleOutcome(jobStatus models.JobStatus) models.ScheduleStatus {
	switch jobStatus {
	case models.JobCompleted:
		return models.ScheduleCompleted
	case models.JobFailed:
		return models.ScheduleFailed
	default:
		return models.SchedulePending
	}
}

func normalizeErrorCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
