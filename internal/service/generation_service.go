package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/digkill/PhotoSessionBot/internal/models"
	"github.com/digkill/PhotoSessionBot/internal/nano"
)

var (
	ErrProfileMissing     = errors.New("user profile not found")
	ErrAccountBlocked     = errors.New("account is blocked")
	ErrGenerationInFlight = errors.New("another generation is already running for this user")
)

type UserDirectory interface {
	FindByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
}

type Ledger interface {
	Balance(ctx context.Context, userID int64) (int, error)
	Spend(ctx context.Context, userID int64, amount int) (int, error)
	Credit(ctx context.Context, userID int64, amount int) (int, error)
}

type SessionStore interface {
	Create(ctx context.Context, userID int64, style, prompt string, orientation models.Orientation, status models.SessionStatus, tokensSpent int) (*models.Session, error)
	UpdateStatus(ctx context.Context, sessionID int64, status models.SessionStatus, resultPath, resultURL string) error
}

type PromptStore interface {
	Create(ctx context.Context, userID int64, prompt, template string, status models.SessionStatus, tokensSpent int) (*models.PromptGeneration, error)
	UpdateStatus(ctx context.Context, id int64, status models.SessionStatus, resultPath string) error
}

type Generator interface {
	GeneratePhotosession(ctx context.Context, req nano.PhotosessionRequest) (nano.Response, error)
	GeneratePrompt(ctx context.Context, prompt, template string) (nano.Response, error)
}

type GenerationSaver interface {
	SaveGeneration(data []byte) (string, error)
}

type ExampleCatalog interface {
	GetByStyle(styleID string) *Example
}

// ResultMirror copies finished images to object storage. Optional.
type ResultMirror interface {
	Upload(ctx context.Context, data []byte) (string, error)
}

// GenerationService wraps the external generation call into a token
// transaction: debit before the call, exactly one compensating credit when the
// outcome is failed or fallback.
type GenerationService struct {
	log            *slog.Logger
	users          UserDirectory
	ledger         Ledger
	sessions       SessionStore
	prompts        PromptStore
	builder        *RequestBuilder
	client         Generator
	files          GenerationSaver
	examples       ExampleCatalog
	mirror         ResultMirror
	costPerSession int
	costPerPrompt  int

	mu       sync.Mutex
	inFlight map[int64]struct{}
}

type GenerationConfig struct {
	CostPerSession int
	CostPerPrompt  int
}

func NewGenerationService(
	cfg GenerationConfig,
	log *slog.Logger,
	users UserDirectory,
	ledger Ledger,
	sessions SessionStore,
	prompts PromptStore,
	builder *RequestBuilder,
	client Generator,
	files GenerationSaver,
	examples ExampleCatalog,
	mirror ResultMirror,
) *GenerationService {
	return &GenerationService{
		log:            log,
		users:          users,
		ledger:         ledger,
		sessions:       sessions,
		prompts:        prompts,
		builder:        builder,
		client:         client,
		files:          files,
		examples:       examples,
		mirror:         mirror,
		costPerSession: cfg.CostPerSession,
		costPerPrompt:  cfg.CostPerPrompt,
		inFlight:       make(map[int64]struct{}),
	}
}

type PhotosessionInput struct {
	UserID      int64
	Style       string
	Orientation models.Orientation
	Prompt      string
	Faces       []FaceRef
}

type PhotosessionResult struct {
	Session   *models.Session
	ImagePath string
	Balance   int
	// Notice carries the degraded-result message when the example image was
	// substituted for a failed live generation.
	Notice   string
	Fallback bool
}

// RunPhotosession executes one photosession transaction. The debit is the
// durability boundary: after a successful spend a session record always
// exists, and any failure past that point either delivers the style example
// (status fallback) or reports the error (status failed), refunding in full
// either way.
func (s *GenerationService) RunPhotosession(ctx context.Context, in PhotosessionInput) (*PhotosessionResult, error) {
	if err := s.acquire(in.UserID); err != nil {
		return nil, err
	}
	defer s.release(in.UserID)

	user, err := s.resolveUser(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	cost := s.costPerSession
	balance, err := s.ledger.Balance(ctx, user.TelegramID)
	if err != nil {
		return nil, fmt.Errorf("read balance: %w", err)
	}
	if balance < cost {
		return nil, ErrInsufficientFunds
	}

	balance, err = s.ledger.Spend(ctx, user.TelegramID, cost)
	if err != nil {
		return nil, fmt.Errorf("debit tokens: %w", err)
	}

	session, err := s.sessions.Create(ctx, user.TelegramID, in.Style, in.Prompt, in.Orientation, models.StatusProcessing, cost)
	if err != nil {
		// No record to reconcile against, so the debit is reverted here.
		s.refund(ctx, user.TelegramID, cost)
		return nil, fmt.Errorf("create session: %w", err)
	}

	image, genErr := s.generateSessionImage(ctx, user.TelegramID, in)
	if genErr != nil {
		return s.settleFailure(ctx, user.TelegramID, session, cost, genErr)
	}

	path, err := s.files.SaveGeneration(image)
	if err != nil {
		return s.settleFailure(ctx, user.TelegramID, session, cost, fmt.Errorf("save generation: %w", err))
	}

	resultURL := ""
	if s.mirror != nil {
		if url, err := s.mirror.Upload(ctx, image); err != nil {
			s.log.Error("mirror session result", "session", session.ID, "err", err)
		} else {
			resultURL = url
		}
	}

	if err := s.sessions.UpdateStatus(ctx, session.ID, models.StatusReady, path, resultURL); err != nil {
		s.log.Error("mark session ready", "session", session.ID, "err", err)
	}
	session.Status = models.StatusReady
	session.ResultPath = path
	session.ResultURL = resultURL

	return &PhotosessionResult{
		Session:   session,
		ImagePath: path,
		Balance:   balance,
	}, nil
}

func (s *GenerationService) generateSessionImage(ctx context.Context, userID int64, in PhotosessionInput) ([]byte, error) {
	req, err := s.builder.Build(ctx, userID, in.Style, in.Orientation, in.Prompt, in.Faces)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.GeneratePhotosession(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("generation call: %w", err)
	}

	image, err := nano.FirstImage(resp)
	if err != nil {
		return nil, err
	}
	return image, nil
}

// settleFailure reconciles a debited session that produced no live image:
// fallback to the style example when one exists, otherwise mark failed. Both
// paths credit the full cost exactly once.
func (s *GenerationService) settleFailure(ctx context.Context, userID int64, session *models.Session, cost int, cause error) (*PhotosessionResult, error) {
	if example := s.examples.GetByStyle(session.Style); example != nil {
		if image, err := os.ReadFile(example.FilePath); err == nil {
			path, saveErr := s.files.SaveGeneration(image)
			if saveErr != nil {
				s.log.Error("save fallback image", "session", session.ID, "err", saveErr)
				path = example.FilePath
			}
			balance := s.refund(ctx, userID, cost)
			if err := s.sessions.UpdateStatus(ctx, session.ID, models.StatusFallback, path, ""); err != nil {
				s.log.Error("mark session fallback", "session", session.ID, "err", err)
			}
			session.Status = models.StatusFallback
			session.ResultPath = path
			s.log.Warn("generation failed, example substituted", "session", session.ID, "style", session.Style, "err", cause)
			return &PhotosessionResult{
				Session:   session,
				ImagePath: path,
				Balance:   balance,
				Notice:    "Основная генерация недоступна, показан эталон из примеров. Токены возвращены.",
				Fallback:  true,
			}, nil
		}
	}

	s.refund(ctx, userID, cost)
	if err := s.sessions.UpdateStatus(ctx, session.ID, models.StatusFailed, "", ""); err != nil {
		s.log.Error("mark session failed", "session", session.ID, "err", err)
	}
	session.Status = models.StatusFailed
	return nil, cause
}

type PromptInput struct {
	UserID   int64
	Prompt   string
	Template string
}

type PromptResult struct {
	Record    *models.PromptGeneration
	ImagePath string
	Balance   int
}

// RunPrompt executes one free-text generation with the same debit/refund
// semantics as a photosession, but without a fallback image.
func (s *GenerationService) RunPrompt(ctx context.Context, in PromptInput) (*PromptResult, error) {
	if err := s.acquire(in.UserID); err != nil {
		return nil, err
	}
	defer s.release(in.UserID)

	user, err := s.resolveUser(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	cost := s.costPerPrompt
	balance, err := s.ledger.Balance(ctx, user.TelegramID)
	if err != nil {
		return nil, fmt.Errorf("read balance: %w", err)
	}
	if balance < cost {
		return nil, ErrInsufficientFunds
	}

	balance, err = s.ledger.Spend(ctx, user.TelegramID, cost)
	if err != nil {
		return nil, fmt.Errorf("debit tokens: %w", err)
	}

	record, err := s.prompts.Create(ctx, user.TelegramID, in.Prompt, in.Template, models.StatusProcessing, cost)
	if err != nil {
		s.refund(ctx, user.TelegramID, cost)
		return nil, fmt.Errorf("create prompt record: %w", err)
	}

	resp, genErr := s.client.GeneratePrompt(ctx, in.Prompt, in.Template)
	var image []byte
	if genErr == nil {
		image, genErr = nano.FirstImage(resp)
	}
	if genErr == nil {
		var path string
		if path, genErr = s.files.SaveGeneration(image); genErr == nil {
			if err := s.prompts.UpdateStatus(ctx, record.ID, models.StatusReady, path); err != nil {
				s.log.Error("mark prompt ready", "record", record.ID, "err", err)
			}
			record.Status = models.StatusReady
			record.ResultPath = path
			return &PromptResult{Record: record, ImagePath: path, Balance: balance}, nil
		}
	}

	s.refund(ctx, user.TelegramID, cost)
	if err := s.prompts.UpdateStatus(ctx, record.ID, models.StatusFailed, ""); err != nil {
		s.log.Error("mark prompt failed", "record", record.ID, "err", err)
	}
	record.Status = models.StatusFailed
	return nil, genErr
}

func (s *GenerationService) resolveUser(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.users.FindByTelegramID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve user: %w", err)
	}
	if user == nil {
		return nil, ErrProfileMissing
	}
	if user.IsBlocked {
		return nil, ErrAccountBlocked
	}
	return user, nil
}

// refund issues the compensating credit for a failed or degraded run. A debit
// that cannot be credited back is a correctness bug and is logged as such.
func (s *GenerationService) refund(ctx context.Context, userID int64, cost int) int {
	balance, err := s.ledger.Credit(ctx, userID, cost)
	if err != nil {
		s.log.Error("unreconciled debit: refund failed", "user", userID, "amount", cost, "err", err)
		return 0
	}
	return balance
}

func (s *GenerationService) acquire(userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[userID]; busy {
		return ErrGenerationInFlight
	}
	s.inFlight[userID] = struct{}{}
	return nil
}

func (s *GenerationService) release(userID int64) {
	s.mu.Lock()
	delete(s.inFlight, userID)
	s.mu.Unlock()
}
