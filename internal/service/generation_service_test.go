package service

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digkill/PhotoSessionBot/internal/models"
	"github.com/digkill/PhotoSessionBot/internal/nano"
)

type fakeUsers struct {
	user *models.User
	err  error
}

func (f *fakeUsers) FindByTelegramID(context.Context, int64) (*models.User, error) {
	return f.user, f.err
}

type fakeLedger struct {
	balance  int
	spends   int
	credits  int
	spendErr error
}

func (f *fakeLedger) Balance(context.Context, int64) (int, error) { return f.balance, nil }

func (f *fakeLedger) Spend(_ context.Context, _ int64, amount int) (int, error) {
	if f.spendErr != nil {
		return 0, f.spendErr
	}
	if f.balance < amount {
		return 0, ErrInsufficientFunds
	}
	f.balance -= amount
	f.spends++
	return f.balance, nil
}

func (f *fakeLedger) Credit(_ context.Context, _ int64, amount int) (int, error) {
	f.balance += amount
	f.credits++
	return f.balance, nil
}

type fakeSessions struct {
	nextID    int64
	created   []*models.Session
	statuses  map[int64]models.SessionStatus
	paths     map[int64]string
	urls      map[int64]string
	createErr error
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{
		statuses: make(map[int64]models.SessionStatus),
		paths:    make(map[int64]string),
		urls:     make(map[int64]string),
	}
}

func (f *fakeSessions) Create(_ context.Context, userID int64, style, prompt string, orientation models.Orientation, status models.SessionStatus, tokensSpent int) (*models.Session, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	session := &models.Session{
		ID:          f.nextID,
		UserID:      userID,
		Style:       style,
		Prompt:      prompt,
		Orientation: orientation,
		Status:      status,
		TokensSpent: tokensSpent,
	}
	f.created = append(f.created, session)
	f.statuses[session.ID] = status
	return session, nil
}

func (f *fakeSessions) UpdateStatus(_ context.Context, sessionID int64, status models.SessionStatus, resultPath, resultURL string) error {
	f.statuses[sessionID] = status
	f.paths[sessionID] = resultPath
	f.urls[sessionID] = resultURL
	return nil
}

type fakePrompts struct {
	nextID   int64
	statuses map[int64]models.SessionStatus
}

func newFakePrompts() *fakePrompts {
	return &fakePrompts{statuses: make(map[int64]models.SessionStatus)}
}

func (f *fakePrompts) Create(_ context.Context, userID int64, prompt, template string, status models.SessionStatus, tokensSpent int) (*models.PromptGeneration, error) {
	f.nextID++
	f.statuses[f.nextID] = status
	return &models.PromptGeneration{ID: f.nextID, UserID: userID, Prompt: prompt, Template: template, Status: status, TokensSpent: tokensSpent}, nil
}

func (f *fakePrompts) UpdateStatus(_ context.Context, id int64, status models.SessionStatus, _ string) error {
	f.statuses[id] = status
	return nil
}

type fakeGenerator struct {
	resp      nano.Response
	err       error
	calls     int
	promptErr error
}

func (f *fakeGenerator) GeneratePhotosession(context.Context, nano.PhotosessionRequest) (nano.Response, error) {
	f.calls++
	return f.resp, f.err
}

func (f *fakeGenerator) GeneratePrompt(context.Context, string, string) (nano.Response, error) {
	f.calls++
	return f.resp, f.promptErr
}

type fakeFiles struct {
	dir     string
	saveErr error
	saved   int
}

func (f *fakeFiles) SaveGeneration(data []byte) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	f.saved++
	path := filepath.Join(f.dir, "result.jpg")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

type fakeExamples struct {
	example *Example
}

func (f *fakeExamples) GetByStyle(string) *Example { return f.example }

type fakeMirror struct {
	url string
	err error
}

func (f *fakeMirror) Upload(context.Context, []byte) (string, error) { return f.url, f.err }

type fakeFacePathStore struct{}

func (fakeFacePathStore) UpdateFilePath(context.Context, int64, int64, string) error { return nil }

type fakeFaceSaver struct {
	path string
	err  error
}

func (f *fakeFaceSaver) SaveFace(context.Context, int64, string) (string, error) {
	return f.path, f.err
}

type genHarness struct {
	users    *fakeUsers
	ledger   *fakeLedger
	sessions *fakeSessions
	prompts  *fakePrompts
	gen      *fakeGenerator
	files    *fakeFiles
	examples *fakeExamples
	mirror   *fakeMirror
	svc      *GenerationService
}

func imageResponse(payload string) nano.Response {
	return nano.Response{"images": []any{base64.StdEncoding.EncodeToString([]byte(payload))}}
}

func newGenHarness(t *testing.T, balance int) *genHarness {
	t.Helper()
	h := &genHarness{
		users:    &fakeUsers{user: &models.User{TelegramID: 1, Tokens: balance}},
		ledger:   &fakeLedger{balance: balance},
		sessions: newFakeSessions(),
		prompts:  newFakePrompts(),
		gen:      &fakeGenerator{resp: imageResponse("live image")},
		files:    &fakeFiles{dir: t.TempDir()},
		examples: &fakeExamples{},
	}
	log := testLogger()
	builder := NewRequestBuilder(fakeFacePathStore{}, &fakeFaceSaver{}, log)
	h.svc = NewGenerationService(
		GenerationConfig{CostPerSession: 5, CostPerPrompt: 1},
		log, h.users, h.ledger, h.sessions, h.prompts,
		builder, h.gen, h.files, h.examples, nil,
	)
	return h
}

func (h *genHarness) withMirror(m *fakeMirror) {
	h.mirror = m
	h.svc.mirror = m
}

func (h *genHarness) exampleOnDisk(t *testing.T) *Example {
	t.Helper()
	path := filepath.Join(t.TempDir(), "example.jpg")
	require.NoError(t, os.WriteFile(path, []byte("example image"), 0o644))
	example := &Example{Title: "Токио, неоновая улица", FilePath: path}
	h.examples.example = example
	return example
}

func sessionInput(t *testing.T) PhotosessionInput {
	t.Helper()
	facePath := filepath.Join(t.TempDir(), "face.jpg")
	require.NoError(t, os.WriteFile(facePath, []byte("face"), 0o644))
	return PhotosessionInput{
		UserID:      1,
		Style:       "tokyo_neon_street",
		Orientation: models.OrientationVertical,
		Faces:       []FaceRef{{FaceID: 1, FileID: "file-1", FilePath: facePath}},
	}
}

func TestRunPhotosessionSuccess(t *testing.T) {
	h := newGenHarness(t, 10)

	result, err := h.svc.RunPhotosession(context.Background(), sessionInput(t))
	require.NoError(t, err)

	assert.Equal(t, 5, result.Balance)
	assert.False(t, result.Fallback)
	assert.Empty(t, result.Notice)
	assert.Equal(t, models.StatusReady, h.sessions.statuses[result.Session.ID])
	assert.FileExists(t, result.ImagePath)

	assert.Equal(t, 1, h.ledger.spends)
	assert.Zero(t, h.ledger.credits, "a ready session must not be refunded")
}

func TestRunPhotosessionExactBalance(t *testing.T) {
	h := newGenHarness(t, 5)

	result, err := h.svc.RunPhotosession(context.Background(), sessionInput(t))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Balance)
}

func TestRunPhotosessionInsufficientFunds(t *testing.T) {
	h := newGenHarness(t, 4)

	_, err := h.svc.RunPhotosession(context.Background(), sessionInput(t))
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, 4, h.ledger.balance, "rejection must leave the balance untouched")
	assert.Empty(t, h.sessions.created)
	assert.Zero(t, h.gen.calls)
}

func TestRunPhotosessionProfileGuards(t *testing.T) {
	h := newGenHarness(t, 10)
	h.users.user = nil
	_, err := h.svc.RunPhotosession(context.Background(), sessionInput(t))
	assert.ErrorIs(t, err, ErrProfileMissing)

	h.users.user = &models.User{TelegramID: 1, Tokens: 10, IsBlocked: true}
	_, err = h.svc.RunPhotosession(context.Background(), sessionInput(t))
	assert.ErrorIs(t, err, ErrAccountBlocked)

	assert.Equal(t, 10, h.ledger.balance)
}

func TestRunPhotosessionFallbackToExample(t *testing.T) {
	h := newGenHarness(t, 10)
	h.gen.err = errors.New("provider down")
	h.exampleOnDisk(t)

	result, err := h.svc.RunPhotosession(context.Background(), sessionInput(t))
	require.NoError(t, err, "fallback delivery is a degraded success")

	assert.True(t, result.Fallback)
	assert.NotEmpty(t, result.Notice)
	assert.Equal(t, models.StatusFallback, h.sessions.statuses[result.Session.ID])
	assert.FileExists(t, result.ImagePath)

	assert.Equal(t, 10, result.Balance, "fallback refunds the full cost")
	assert.Equal(t, 1, h.ledger.credits, "exactly one compensating credit")
}

func TestRunPhotosessionFailedWithoutExample(t *testing.T) {
	h := newGenHarness(t, 10)
	h.gen.err = errors.New("provider down")

	_, err := h.svc.RunPhotosession(context.Background(), sessionInput(t))
	require.Error(t, err)

	require.Len(t, h.sessions.created, 1)
	assert.Equal(t, models.StatusFailed, h.sessions.statuses[h.sessions.created[0].ID])
	assert.Equal(t, 10, h.ledger.balance)
	assert.Equal(t, 1, h.ledger.credits)
}

func TestRunPhotosessionEmptyResultIsFailure(t *testing.T) {
	h := newGenHarness(t, 10)
	h.gen.resp = nano.Response{"candidates": []any{}}

	_, err := h.svc.RunPhotosession(context.Background(), sessionInput(t))
	assert.ErrorIs(t, err, nano.ErrEmptyResult)
	assert.Equal(t, 10, h.ledger.balance)
}

func TestRunPhotosessionFaceUnavailable(t *testing.T) {
	h := newGenHarness(t, 10)

	in := sessionInput(t)
	in.Faces = []FaceRef{{FaceID: 3}}

	_, err := h.svc.RunPhotosession(context.Background(), in)
	assert.ErrorIs(t, err, ErrFaceUnavailable)

	require.Len(t, h.sessions.created, 1, "the debit already created a session record")
	assert.Equal(t, models.StatusFailed, h.sessions.statuses[h.sessions.created[0].ID])
	assert.Equal(t, 10, h.ledger.balance)
}

func TestRunPhotosessionSessionCreateFailureRefunds(t *testing.T) {
	h := newGenHarness(t, 10)
	h.sessions.createErr = errors.New("db down")

	_, err := h.svc.RunPhotosession(context.Background(), sessionInput(t))
	require.Error(t, err)
	assert.Equal(t, 10, h.ledger.balance)
	assert.Equal(t, 1, h.ledger.credits)
}

func TestRunPhotosessionRejectsConcurrentRun(t *testing.T) {
	h := newGenHarness(t, 10)
	require.NoError(t, h.svc.acquire(1))
	defer h.svc.release(1)

	_, err := h.svc.RunPhotosession(context.Background(), sessionInput(t))
	assert.ErrorIs(t, err, ErrGenerationInFlight)
	assert.Equal(t, 10, h.ledger.balance)
}

func TestRunPhotosessionMirrorFailureIsNonFatal(t *testing.T) {
	h := newGenHarness(t, 10)
	h.withMirror(&fakeMirror{err: errors.New("s3 down")})

	result, err := h.svc.RunPhotosession(context.Background(), sessionInput(t))
	require.NoError(t, err)
	assert.Equal(t, models.StatusReady, h.sessions.statuses[result.Session.ID])
	assert.Empty(t, result.Session.ResultURL)
}

func TestRunPhotosessionMirrorsResultURL(t *testing.T) {
	h := newGenHarness(t, 10)
	h.withMirror(&fakeMirror{url: "https://cdn.example.com/sessions/a.jpg"})

	result, err := h.svc.RunPhotosession(context.Background(), sessionInput(t))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/sessions/a.jpg", result.Session.ResultURL)
}

func TestRunPromptSuccess(t *testing.T) {
	h := newGenHarness(t, 3)

	result, err := h.svc.RunPrompt(context.Background(), PromptInput{UserID: 1, Prompt: "неон и дождь", Template: "poster"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Balance)
	assert.Equal(t, models.StatusReady, h.prompts.statuses[result.Record.ID])
	assert.FileExists(t, result.ImagePath)
	assert.Zero(t, h.ledger.credits)
}

func TestRunPromptFailureRefundsWithoutFallback(t *testing.T) {
	h := newGenHarness(t, 3)
	h.gen.promptErr = errors.New("provider down")
	h.exampleOnDisk(t)

	_, err := h.svc.RunPrompt(context.Background(), PromptInput{UserID: 1, Prompt: "неон и дождь"})
	require.Error(t, err, "prompt runs have no example fallback")
	assert.Equal(t, 3, h.ledger.balance)
	assert.Equal(t, 1, h.ledger.credits)
	assert.Equal(t, models.StatusFailed, h.prompts.statuses[1])
}

func TestRunPromptInsufficientFunds(t *testing.T) {
	h := newGenHarness(t, 0)

	_, err := h.svc.RunPrompt(context.Background(), PromptInput{UserID: 1, Prompt: "неон"})
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Zero(t, h.gen.calls)
}
