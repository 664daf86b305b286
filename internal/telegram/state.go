package telegram

import (
	"errors"
	"sync"

	"github.com/digkill/PhotoSessionBot/internal/models"
	"github.com/digkill/PhotoSessionBot/internal/service"
)

const maxFaces = 10

var (
	ErrInvalidState     = errors.New("action not allowed in current step")
	ErrCapacityExceeded = errors.New("face limit reached")
	ErrTitlesPending    = errors.New("uploaded faces still need titles")
	ErrNoFaces          = errors.New("at least one face is required")
	ErrNoPendingTitle   = errors.New("no face is waiting for a title")
)

// Step enumerates the photosession conversation states. The prompt flow
// (free-text generation) shares the same draft with its own step.
type Step int

const (
	StepIdle Step = iota
	StepChoosingStyle
	StepWaitingFace
	StepWaitingPrompt
	StepProcessing
	StepPromptText
)

// Draft is the ephemeral per-conversation state accumulated before a session
// record is persisted. It is only touched by its own conversation's handler,
// so it carries no locking of its own.
type Draft struct {
	Step          Step
	Style         string
	Orientation   models.Orientation
	Faces         []service.FaceRef
	PendingTitles []int64
	Template      string
}

// StartStyleSelection opens a fresh photosession flow from any step.
func (d *Draft) StartStyleSelection() {
	*d = Draft{Step: StepChoosingStyle}
}

// SelectStyle records the style and initializes an empty face list with the
// default orientation.
func (d *Draft) SelectStyle(style string) error {
	if d.Step != StepChoosingStyle {
		return ErrInvalidState
	}
	*d = Draft{
		Step:        StepWaitingFace,
		Style:       style,
		Orientation: models.OrientationVertical,
	}
	return nil
}

func (d *Draft) SetOrientation(o models.Orientation) error {
	if d.Step != StepWaitingFace {
		return ErrInvalidState
	}
	d.Orientation = o
	return nil
}

// AddFace appends a face reference. awaitTitle queues the face for naming
// before the user may proceed to the prompt step.
func (d *Draft) AddFace(ref service.FaceRef, awaitTitle bool) error {
	if d.Step != StepWaitingFace {
		return ErrInvalidState
	}
	if len(d.Faces) >= maxFaces {
		return ErrCapacityExceeded
	}
	d.Faces = append(d.Faces, ref)
	if awaitTitle {
		d.PendingTitles = append(d.PendingTitles, ref.FaceID)
	}
	return nil
}

func (d *Draft) RemoveFace(faceID int64) {
	kept := d.Faces[:0]
	for _, ref := range d.Faces {
		if ref.FaceID != faceID {
			kept = append(kept, ref)
		}
	}
	d.Faces = kept

	titles := d.PendingTitles[:0]
	for _, id := range d.PendingTitles {
		if id != faceID {
			titles = append(titles, id)
		}
	}
	d.PendingTitles = titles
}

// ProvideTitle consumes the head of the pending-title queue and returns the
// face id it belongs to. When the queue drains, the draft auto-advances to the
// prompt step and advanced is true.
func (d *Draft) ProvideTitle() (faceID int64, advanced bool, err error) {
	if d.Step != StepWaitingFace {
		return 0, false, ErrInvalidState
	}
	if len(d.PendingTitles) == 0 {
		return 0, false, ErrNoPendingTitle
	}
	faceID = d.PendingTitles[0]
	d.PendingTitles = d.PendingTitles[1:]
	if len(d.PendingTitles) == 0 {
		d.Step = StepWaitingPrompt
		advanced = true
	}
	return faceID, advanced, nil
}

// Done moves on to the prompt step, allowed only with every uploaded face
// titled and at least one face collected.
func (d *Draft) Done() error {
	if d.Step != StepWaitingFace {
		return ErrInvalidState
	}
	if len(d.PendingTitles) > 0 {
		return ErrTitlesPending
	}
	if len(d.Faces) == 0 {
		return ErrNoFaces
	}
	d.Step = StepWaitingPrompt
	return nil
}

// BeginProcessing re-checks the prerequisites before the generation
// transaction starts. A missing prerequisite means the draft is corrupt and
// the flow must start over.
func (d *Draft) BeginProcessing() error {
	if d.Step != StepWaitingPrompt {
		return ErrInvalidState
	}
	if d.Style == "" || d.Orientation == "" || len(d.Faces) == 0 {
		return ErrInvalidState
	}
	d.Step = StepProcessing
	return nil
}

// StartPromptFlow opens the free-text generation flow from any step.
func (d *Draft) StartPromptFlow() {
	*d = Draft{Step: StepPromptText}
}

func (d *Draft) SelectTemplate(template string) error {
	if d.Step != StepPromptText {
		return ErrInvalidState
	}
	d.Template = template
	return nil
}

func (d *Draft) Reset() {
	*d = Draft{}
}

// StateManager keeps one draft per chat. Each draft is only mutated by its own
// conversation's handler; the map itself is guarded for cross-chat access.
type StateManager struct {
	mu     sync.Mutex
	drafts map[int64]*Draft
}

func NewStateManager() *StateManager {
	return &StateManager{drafts: make(map[int64]*Draft)}
}

// Get returns the chat's draft, creating an idle one on first access.
func (m *StateManager) Get(chatID int64) *Draft {
	m.mu.Lock()
	defer m.mu.Unlock()
	draft, ok := m.drafts[chatID]
	if !ok {
		draft = &Draft{}
		m.drafts[chatID] = draft
	}
	return draft
}

func (m *StateManager) Reset(chatID int64) {
	m.mu.Lock()
	delete(m.drafts, chatID)
	m.mu.Unlock()
}
