package telegram

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digkill/PhotoSessionBot/internal/models"
	"github.com/digkill/PhotoSessionBot/internal/service"
)

func faceRef(id int64) service.FaceRef {
	return service.FaceRef{FaceID: id, FileID: fmt.Sprintf("file-%d", id), FilePath: fmt.Sprintf("/faces/%d.jpg", id)}
}

func TestDraftHappyPath(t *testing.T) {
	d := &Draft{}

	d.StartStyleSelection()
	require.NoError(t, d.SelectStyle("tokyo_neon_street"))
	assert.Equal(t, StepWaitingFace, d.Step)
	assert.Equal(t, models.OrientationVertical, d.Orientation)

	require.NoError(t, d.SetOrientation(models.OrientationSquare))
	require.NoError(t, d.AddFace(faceRef(1), false))
	require.NoError(t, d.Done())
	assert.Equal(t, StepWaitingPrompt, d.Step)

	require.NoError(t, d.BeginProcessing())
	assert.Equal(t, StepProcessing, d.Step)
}

func TestDraftSelectStyleRequiresChoosingStep(t *testing.T) {
	d := &Draft{}
	assert.ErrorIs(t, d.SelectStyle("tokyo_neon_street"), ErrInvalidState)

	d.StartStyleSelection()
	require.NoError(t, d.SelectStyle("tokyo_neon_street"))
	assert.ErrorIs(t, d.SelectStyle("red_carpet_premiere"), ErrInvalidState)
}

func TestDraftFaceCapacity(t *testing.T) {
	d := &Draft{}
	d.StartStyleSelection()
	require.NoError(t, d.SelectStyle("tokyo_neon_street"))

	for i := int64(1); i <= maxFaces; i++ {
		require.NoError(t, d.AddFace(faceRef(i), false))
	}
	assert.ErrorIs(t, d.AddFace(faceRef(11), false), ErrCapacityExceeded)
	assert.Len(t, d.Faces, maxFaces)
}

func TestDraftDoneGuards(t *testing.T) {
	d := &Draft{}
	d.StartStyleSelection()
	require.NoError(t, d.SelectStyle("tokyo_neon_street"))

	assert.ErrorIs(t, d.Done(), ErrNoFaces)

	require.NoError(t, d.AddFace(faceRef(1), true))
	assert.ErrorIs(t, d.Done(), ErrTitlesPending)

	faceID, advanced, err := d.ProvideTitle()
	require.NoError(t, err)
	assert.Equal(t, int64(1), faceID)
	assert.True(t, advanced)
	assert.Equal(t, StepWaitingPrompt, d.Step)
}

func TestDraftTitleQueueOrderAndAutoAdvance(t *testing.T) {
	d := &Draft{}
	d.StartStyleSelection()
	require.NoError(t, d.SelectStyle("tokyo_neon_street"))

	require.NoError(t, d.AddFace(faceRef(7), true))
	require.NoError(t, d.AddFace(faceRef(8), true))

	faceID, advanced, err := d.ProvideTitle()
	require.NoError(t, err)
	assert.Equal(t, int64(7), faceID)
	assert.False(t, advanced)
	assert.Equal(t, StepWaitingFace, d.Step)

	faceID, advanced, err = d.ProvideTitle()
	require.NoError(t, err)
	assert.Equal(t, int64(8), faceID)
	assert.True(t, advanced)
	assert.Equal(t, StepWaitingPrompt, d.Step)

	_, _, err = d.ProvideTitle()
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestDraftProvideTitleWithoutPending(t *testing.T) {
	d := &Draft{}
	d.StartStyleSelection()
	require.NoError(t, d.SelectStyle("tokyo_neon_street"))

	_, _, err := d.ProvideTitle()
	assert.ErrorIs(t, err, ErrNoPendingTitle)
}

func TestDraftRemoveFaceDropsPendingTitle(t *testing.T) {
	d := &Draft{}
	d.StartStyleSelection()
	require.NoError(t, d.SelectStyle("tokyo_neon_street"))

	require.NoError(t, d.AddFace(faceRef(1), true))
	require.NoError(t, d.AddFace(faceRef(2), false))
	d.RemoveFace(1)

	assert.Len(t, d.Faces, 1)
	assert.Equal(t, int64(2), d.Faces[0].FaceID)
	require.NoError(t, d.Done())
}

func TestDraftBeginProcessingRejectsIncompleteDraft(t *testing.T) {
	d := &Draft{Step: StepWaitingPrompt, Style: "tokyo_neon_street", Orientation: models.OrientationVertical}
	assert.ErrorIs(t, d.BeginProcessing(), ErrInvalidState)

	d.Faces = []service.FaceRef{faceRef(1)}
	d.Style = ""
	assert.ErrorIs(t, d.BeginProcessing(), ErrInvalidState)

	d.Style = "tokyo_neon_street"
	require.NoError(t, d.BeginProcessing())
	assert.ErrorIs(t, d.BeginProcessing(), ErrInvalidState)
}

func TestDraftPromptFlow(t *testing.T) {
	d := &Draft{}
	assert.ErrorIs(t, d.SelectTemplate("portrait"), ErrInvalidState)

	d.StartPromptFlow()
	require.NoError(t, d.SelectTemplate("portrait"))
	assert.Equal(t, "portrait", d.Template)
}

func TestStateManagerGetAndReset(t *testing.T) {
	m := NewStateManager()

	d := m.Get(42)
	d.StartStyleSelection()
	assert.Same(t, d, m.Get(42))

	m.Reset(42)
	fresh := m.Get(42)
	assert.Equal(t, StepIdle, fresh.Step)
}
