package consumers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/HughKantsime/printfarm/pkg/events"
	"github.com/HughKantsime/printfarm/pkg/models"
)

func closedJob() *models.PrintJob {
	ended := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	scheduleID := int64(9)

	return &models.PrintJob{
		ID:         7,
		PrinterID:  "p1",
		JobName:    "benchy.gcode",
		StartedAt:  ended.Add(-42 * time.Minute),
		EndedAt:    &ended,
		Status:     models.JobCompleted,
		ScheduleID: &scheduleID,
	}
}

func TestArchiverCopiesClosedJob(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := NewMockArchiveStore(ctrl)
	job := closedJob()
	store.EXPECT().GetJob(int64(7)).Return(job, nil)

	var got *models.ArchivedJob

	store.EXPECT().ArchiveJob(gomock.Any()).DoAndReturn(func(a *models.ArchivedJob) error {
		got = a
		return nil
	})

	arch := NewArchiver(store)
	bus := events.NewBus()
	arch.Attach(bus)

	bus.Publish(events.New(events.TypeJobCompleted, "jobs", "p1",
		map[string]interface{}{"job_id": int64(7)}))

	require.NotNil(t, got)
	assert.Equal(t, "p1", got.PrinterID)
	assert.Equal(t, "benchy.gcode", got.JobName)
	assert.Equal(t, models.JobCompleted, got.Status)
	assert.Equal(t, *job.EndedAt, got.EndedAt)
	require.NotNil(t, got.ScheduleID)
	assert.Equal(t, int64(9), *got.ScheduleID)
	assert.False(t, got.ArchivedAt.IsZero())
}

func TestArchiverHandlesEveryTerminalEvent(t *testing.T) {
	for _, eventType := range []string{
		events.TypeJobCompleted,
		events.TypeJobFailed,
		events.TypeJobCancelled,
	} {
		t.Run(eventType, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			store := NewMockArchiveStore(ctrl)
			store.EXPECT().GetJob(int64(7)).Return(closedJob(), nil)
			store.EXPECT().ArchiveJob(gomock.Any()).Return(nil)

			arch := NewArchiver(store)
			bus := events.NewBus()
			arch.Attach(bus)

			bus.Publish(events.New(eventType, "jobs", "p1",
				map[string]interface{}{"job_id": int64(7)}))
		})
	}
}

func TestArchiverSkipsEventWithoutJobID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := NewMockArchiveStore(ctrl)

	arch := NewArchiver(store)
	bus := events.NewBus()
	arch.Attach(bus)

	bus.Publish(events.New(events.TypeJobCompleted, "jobs", "p1", nil))
}

func TestArchiverSkipsOpenJob(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := NewMockArchiveStore(ctrl)
	open := closedJob()
	open.EndedAt = nil
	store.EXPECT().GetJob(int64(7)).Return(open, nil)

	arch := NewArchiver(store)
	bus := events.NewBus()
	arch.Attach(bus)

	bus.Publish(events.New(events.TypeJobCompleted, "jobs", "p1",
		map[string]interface{}{"job_id": int64(7)}))
}

func TestArchiverLoadErrorIsNotFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := NewMockArchiveStore(ctrl)
	store.EXPECT().GetJob(int64(7)).Return(nil, assert.AnError)

	arch := NewArchiver(store)
	bus := events.NewBus()
	arch.Attach(bus)

	bus.Publish(events.New(events.TypeJobFailed, "jobs", "p1",
		map[string]interface{}{"job_id": int64(7)}))
}
