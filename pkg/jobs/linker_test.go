package jobs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/HughKantsime/printfarm/pkg/models"
)

func TestLinkByNameContainment(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := NewMockStore(ctrl)
	store.EXPECT().ListPendingSchedules("p1").Return([]models.ScheduledJob{
		{ID: 1, PrinterID: "p1", ItemName: "Calibration Cube", FileName: "xyz_cube.gcode"},
		{ID: 2, PrinterID: "p1", ItemName: "Benchy", FileName: "benchy.3mf"},
	}, nil)

	linker := NewLinker(store)

	match, err := linker.Link("p1", "BENCHY_plate_1.gcode", 0)
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, int64(2), match.ID)
}

func TestLinkNameMatchIgnoresExtensionAndCase(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := NewMockStore(ctrl)
	store.EXPECT().ListPendingSchedules("p1").Return([]models.ScheduledJob{
		{ID: 4, PrinterID: "p1", FileName: "Whistle_V2.3mf"},
	}, nil)

	linker := NewLinker(store)

	match, err := linker.Link("p1", "whistle_v2.gcode", 0)
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, int64(4), match.ID)
}

func TestLinkAmbiguousNameLinksNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := NewMockStore(ctrl)
	store.EXPECT().ListPendingSchedules("p1").Return([]models.ScheduledJob{
		{ID: 1, PrinterID: "p1", FileName: "benchy_left.gcode", TotalLayers: 100},
		{ID: 2, PrinterID: "p1", FileName: "benchy_right.gcode", TotalLayers: 200},
	}, nil)

	linker := NewLinker(store)

	// Both candidates contain "benchy". The fingerprint must not be
	// consulted as a tiebreaker.
	match, err := linker.Link("p1", "benchy.gcode", 100)
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestLinkByLayerFingerprint(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := NewMockStore(ctrl)
	store.EXPECT().ListPendingSchedules("p1").Return([]models.ScheduledJob{
		{ID: 1, PrinterID: "p1", ItemName: "bracket", TotalLayers: 240},
		{ID: 2, PrinterID: "p1", ItemName: "housing", TotalLayers: 312},
	}, nil)

	linker := NewLinker(store)

	match, err := linker.Link("p1", "job_0077.gcode", 312)
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, int64(2), match.ID)
}

func TestLinkLayerFingerprintAmbiguous(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := NewMockStore(ctrl)
	store.EXPECT().ListPendingSchedules("p1").Return([]models.ScheduledJob{
		{ID: 1, PrinterID: "p1", ItemName: "bracket", TotalLayers: 312},
		{ID: 2, PrinterID: "p1", ItemName: "housing", TotalLayers: 312},
	}, nil)

	linker := NewLinker(store)

	match, err := linker.Link("p1", "job_0077.gcode", 312)
	require.NoError(t, err)
	assert.Nil(t, match, "two schedules with the same layer count must stay unlinked")
}

func TestLinkUnknownLayersSkipsFingerprint(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := NewMockStore(ctrl)
	store.EXPECT().ListPendingSchedules("p1").Return([]models.ScheduledJob{
		{ID: 1, PrinterID: "p1", ItemName: "bracket", TotalLayers: 240},
	}, nil)

	linker := NewLinker(store)

	match, err := linker.Link("p1", "job_0077.gcode", 0)
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestLinkNoCandidates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := NewMockStore(ctrl)
	store.EXPECT().ListPendingSchedules("p1").Return(nil, nil)

	linker := NewLinker(store)

	match, err := linker.Link("p1", "benchy.gcode", 120)
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestLinkStoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := NewMockStore(ctrl)
	store.EXPECT().ListPendingSchedules("p1").Return(nil, assert.AnError)

	linker := NewLinker(store)

	match, err := linker.Link("p1", "benchy.gcode", 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, errFailedToListSchedules)
	assert.Nil(t, match)
}

func TestNormalizeJobName(t *testing.T) {
	assert.Equal(t, "benchy", normalizeJobName("Benchy.GCODE"))
	assert.Equal(t, "benchy", normalizeJobName("  benchy.3mf "))
	assert.Equal(t, "whistle_v2", normalizeJobName("whistle_v2"))
	assert.Equal(t, "", normalizeJobName(""))
}
