package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HughKantsime/printfarm/pkg/db"
	"github.com/HughKantsime/printfarm/pkg/events"
	"github.com/HughKantsime/printfarm/pkg/models"
)

type closedRecord struct {
	jobID          int64
	status         models.JobStatus
	errorCode      string
	scheduleID     int64
	scheduleStatus models.ScheduleStatus
}

// fakeStore is an in-memory Store with the same invariants as the sqlite
// service: one open job per printer, closes require an open row.
type fakeStore struct {
	nextID    int64
	openJobs  map[string]*models.PrintJob
	closed    []closedRecord
	schedules []models.ScheduledJob
}

func newFakeStore() *fakeStore {
	return &fakeStore{openJobs: make(map[string]*models.PrintJob)}
}

func (f *fakeStore) OpenJob(printerID, jobName string, startedAt time.Time) (int64, error) {
	if _, ok := f.openJobs[printerID]; ok {
		return 0, db.ErrOpenJobExists
	}

	f.nextID++
	f.openJobs[printerID] = &models.PrintJob{
		ID:        f.nextID,
		PrinterID: printerID,
		JobName:   jobName,
		StartedAt: startedAt,
		Status:    models.JobRunning,
	}

	return f.nextID, nil
}

func (f *fakeStore) GetOpenJob(printerID string) (*models.PrintJob, error) {
	job, ok := f.openJobs[printerID]
	if !ok {
		return nil, db.ErrNotFound
	}

	return job, nil
}

func (f *fakeStore) CloseJob(jobID int64, status models.JobStatus, _ time.Time, errorCode string) error {
	for printerID, job := range f.openJobs {
		if job.ID == jobID {
			delete(f.openJobs, printerID)
			f.closed = append(f.closed, closedRecord{jobID: jobID, status: status, errorCode: errorCode})

			return nil
		}
	}

	return db.ErrNotFound
}

func (f *fakeStore) CloseJobAndSchedule(jobID int64, status models.JobStatus, endedAt time.Time,
	errorCode string, scheduleID int64, scheduleStatus models.ScheduleStatus) error {
	if err := f.CloseJob(jobID, status, endedAt, errorCode); err != nil {
		return err
	}

	last := &f.closed[len(f.closed)-1]
	last.scheduleID = scheduleID
	last.scheduleStatus = scheduleStatus

	return nil
}

func (f *fakeStore) LinkJobToSchedule(jobID, scheduleID int64) error {
	for _, job := range f.openJobs {
		if job.ID == jobID {
			job.ScheduleID = &scheduleID
		}
	}

	for i := range f.schedules {
		if f.schedules[i].ID == scheduleID {
			f.schedules[i].Status = models.SchedulePrinting
		}
	}

	return nil
}

func (f *fakeStore) ListPendingSchedules(printerID string) ([]models.ScheduledJob, error) {
	var pending []models.ScheduledJob

	for _, s := range f.schedules {
		if s.PrinterID == printerID && s.Status == models.SchedulePending {
			pending = append(pending, s)
		}
	}

	return pending, nil
}

func newTestDetector(store *fakeStore) (*Detector, *[]events.Event) {
	bus := events.NewBus()

	seen := &[]events.Event{}
	bus.Subscribe(events.TypeWildcard, "capture", func(e events.Event) {
		*seen = append(*seen, e)
	})

	return NewDetector("p1", bus, store, NewLinker(store), DefaultStopCodes), seen
}

func eventTypes(seen []events.Event) []string {
	types := make([]string, 0, len(seen))
	for _, e := range seen {
		types = append(types, e.Type)
	}

	return types
}

func printing(progress float64) models.CanonicalStatus {
	return models.CanonicalStatus{State: models.StatePrinting, Progress: progress, FileName: "benchy.gcode"}
}

func idle(progress float64) models.CanonicalStatus {
	return models.CanonicalStatus{State: models.StateIdle, Progress: progress, FileName: "benchy.gcode"}
}

func TestDetectorStartAndComplete(t *testing.T) {
	store := newFakeStore()
	d, seen := newTestDetector(store)

	d.Observe(idle(0))
	d.Observe(printing(2))
	d.Observe(printing(50))
	d.Observe(idle(100))

	assert.Equal(t, []string{
		events.TypeJobStarted,
		events.TypeJobProgress,
		events.TypeJobProgress,
		events.TypeJobCompleted,
	}, eventTypes(*seen))

	require.Len(t, store.closed, 1)
	assert.Equal(t, models.JobCompleted, store.closed[0].status)
	assert.Empty(t, store.openJobs)

	completed := (*seen)[len(*seen)-1]
	assert.Equal(t, true, completed.Data["success"])
	assert.Equal(t, "benchy.gcode", completed.Data["job_name"])
}

func TestDetectorCancelled(t *testing.T) {
	store := newFakeStore()
	d, seen := newTestDetector(store)

	d.Observe(printing(5))
	d.Observe(idle(42))

	assert.Equal(t, []string{
		events.TypeJobStarted,
		events.TypeJobProgress,
		events.TypeJobCancelled,
	}, eventTypes(*seen))

	require.Len(t, store.closed, 1)
	assert.Equal(t, models.JobCancelled, store.closed[0].status)
}

func TestDetectorFailedOnErrorState(t *testing.T) {
	store := newFakeStore()
	d, seen := newTestDetector(store)

	d.Observe(printing(10))
	d.Observe(models.CanonicalStatus{
		State:     models.StateError,
		Progress:  10,
		ErrorCode: "0300400A",
		FileName:  "benchy.gcode",
	})

	types := eventTypes(*seen)
	require.Contains(t, types, events.TypeJobFailed)

	require.Len(t, store.closed, 1)
	assert.Equal(t, models.JobFailed, store.closed[0].status)
	assert.Equal(t, "0300400A", store.closed[0].errorCode)

	failed := (*seen)[len(*seen)-1]
	assert.Equal(t, false, failed.Data["success"])
	assert.Equal(t, "0300400A", failed.Data["error_code"])
}

func TestDetectorStopCodeOverridesPrintingState(t *testing.T) {
	store := newFakeStore()
	d, seen := newTestDetector(store)

	d.Observe(printing(30))

	// The firmware sets the error word a few reports before it leaves the
	// printing state. The job must fail on the code alone.
	lagging := printing(30)
	lagging.ErrorCode = "0500403B"
	d.Observe(lagging)

	require.Contains(t, eventTypes(*seen), events.TypeJobFailed)
	require.Len(t, store.closed, 1)
	assert.Equal(t, models.JobFailed, store.closed[0].status)
	assert.Equal(t, "0500403B", store.closed[0].errorCode)
	assert.Empty(t, store.openJobs)
}

func TestDetectorUnknownErrorCodeDoesNotStopJob(t *testing.T) {
	store := newFakeStore()
	d, _ := newTestDetector(store)

	d.Observe(printing(30))

	benign := printing(31)
	benign.ErrorCode = "DEADBEEF"
	d.Observe(benign)

	assert.Empty(t, store.closed)
	assert.Len(t, store.openJobs, 1)
}

func TestDetectorProgressThrottle(t *testing.T) {
	store := newFakeStore()
	d, seen := newTestDetector(store)

	d.Observe(printing(10.0))
	d.Observe(printing(10.2))
	d.Observe(printing(10.4))
	d.Observe(printing(11.5))

	progressCount := 0
	for _, e := range *seen {
		if e.Type == events.TypeJobProgress {
			progressCount++
		}
	}

	// Initial report plus the one-point jump; sub-point wiggle is dropped.
	assert.Equal(t, 2, progressCount)

	// A stale interval forces a report even without movement.
	d.lastProgressAt = time.Now().Add(-2 * progressMinInterval)
	d.Observe(printing(11.6))

	last := (*seen)[len(*seen)-1]
	assert.Equal(t, events.TypeJobProgress, last.Type)
	assert.InDelta(t, 11.6, last.Data["progress"], 0.01)
}

func TestDetectorPauseIsNotATerminal(t *testing.T) {
	store := newFakeStore()
	d, seen := newTestDetector(store)

	d.Observe(printing(20))
	d.Observe(models.CanonicalStatus{State: models.StatePaused, Progress: 20, FileName: "benchy.gcode"})
	d.Observe(printing(21))
	d.Observe(idle(100))

	types := eventTypes(*seen)
	assert.Contains(t, types, events.TypeJobPaused)

	started := 0
	for _, typ := range types {
		if typ == events.TypeJobStarted {
			started++
		}
	}

	// The resume must not look like a second start.
	assert.Equal(t, 1, started)

	require.Len(t, store.closed, 1)
	assert.Equal(t, models.JobCompleted, store.closed[0].status)
}

func TestDetectorCancelFromPause(t *testing.T) {
	store := newFakeStore()
	d, _ := newTestDetector(store)

	d.Observe(printing(20))
	d.Observe(models.CanonicalStatus{State: models.StatePaused, Progress: 20})
	d.Observe(idle(20))

	require.Len(t, store.closed, 1)
	assert.Equal(t, models.JobCancelled, store.closed[0].status)
}

func TestDetectorOfflineGapKeepsJobOpen(t *testing.T) {
	store := newFakeStore()
	d, seen := newTestDetector(store)

	d.Observe(printing(20))
	d.Observe(models.Offline())
	d.Observe(printing(60))
	d.Observe(idle(100))

	types := eventTypes(*seen)

	started := 0
	for _, typ := range types {
		if typ == events.TypeJobStarted {
			started++
		}
	}

	assert.Equal(t, 1, started, "reconnect mid-print must not open a second job")
	require.Len(t, store.closed, 1)
	assert.Equal(t, models.JobCompleted, store.closed[0].status)
}

func TestDetectorAdoptsOpenJobAfterRestart(t *testing.T) {
	store := newFakeStore()
	jobID, err := store.OpenJob("p1", "benchy.gcode", time.Now().Add(-time.Hour))
	require.NoError(t, err)

	d, seen := newTestDetector(store)

	d.Observe(printing(80))
	d.Observe(idle(100))

	types := eventTypes(*seen)
	assert.NotContains(t, types, events.TypeJobStarted)
	assert.Contains(t, types, events.TypeJobCompleted)

	require.Len(t, store.closed, 1)
	assert.Equal(t, jobID, store.closed[0].jobID)
}

func TestDetectorClosesStaleJobOnMismatchedRestart(t *testing.T) {
	store := newFakeStore()
	staleID, err := store.OpenJob("p1", "old_part.gcode", time.Now().Add(-time.Hour))
	require.NoError(t, err)

	d, seen := newTestDetector(store)

	d.Observe(printing(1))

	assert.Equal(t, []string{
		events.TypeJobCancelled,
		events.TypeJobStarted,
		events.TypeJobProgress,
	}, eventTypes(*seen))

	require.Len(t, store.closed, 1)
	assert.Equal(t, staleID, store.closed[0].jobID)
	assert.Equal(t, models.JobCancelled, store.closed[0].status)
	require.Len(t, store.openJobs, 1)
	assert.Equal(t, "benchy.gcode", store.openJobs["p1"].JobName)
}

func TestDetectorLinksAndClosesSchedule(t *testing.T) {
	store := newFakeStore()
	store.schedules = []models.ScheduledJob{
		{ID: 7, PrinterID: "p1", ItemName: "Benchy", FileName: "benchy.gcode",
			TotalLayers: 120, Status: models.SchedulePending},
	}

	d, seen := newTestDetector(store)

	d.Observe(printing(1))
	d.Observe(idle(100))

	started := (*seen)[0]
	require.Equal(t, events.TypeJobStarted, started.Type)
	assert.Equal(t, int64(7), started.Data["schedule_id"])

	require.Len(t, store.closed, 1)
	assert.Equal(t, int64(7), store.closed[0].scheduleID)
	assert.Equal(t, models.ScheduleCompleted, store.closed[0].scheduleStatus)
}

func TestDetectorFailureMarksScheduleFailed(t *testing.T) {
	store := newFakeStore()
	store.schedules = []models.ScheduledJob{
		{ID: 3, PrinterID: "p1", FileName: "benchy.gcode", Status: models.SchedulePending},
	}

	d, _ := newTestDetector(store)

	d.Observe(printing(1))
	d.Observe(models.CanonicalStatus{State: models.StateError, ErrorCode: "16"})

	require.Len(t, store.closed, 1)
	assert.Equal(t, models.JobFailed, store.closed[0].status)
	assert.Equal(t, models.ScheduleFailed, store.closed[0].scheduleStatus)
}

func TestDetectorRestartFromFailedState(t *testing.T) {
	store := newFakeStore()
	d, _ := newTestDetector(store)

	d.Observe(printing(10))
	d.Observe(models.CanonicalStatus{State: models.StateError, ErrorCode: "3"})
	d.Observe(printing(0))

	assert.Len(t, store.closed, 1)
	require.Len(t, store.openJobs, 1, "a new print after a failure opens a fresh job")
}
