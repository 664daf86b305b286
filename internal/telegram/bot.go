package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/digkill/PhotoSessionBot/internal/config"
	"github.com/digkill/PhotoSessionBot/internal/models"
	"github.com/digkill/PhotoSessionBot/internal/repository"
	"github.com/digkill/PhotoSessionBot/internal/service"
	"github.com/digkill/PhotoSessionBot/internal/storage"
)

// FileDownloader resolves Telegram file ids to raw bytes. It backs the file
// storage's re-download path for stale faces.
type FileDownloader struct {
	api        *tgbotapi.BotAPI
	httpClient *http.Client
}

func NewFileDownloader(api *tgbotapi.BotAPI) *FileDownloader {
	return &FileDownloader{
		api:        api,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (d *FileDownloader) Download(ctx context.Context, fileID string) ([]byte, error) {
	file, err := d.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}
	if file.FilePath == "" {
		return nil, fmt.Errorf("file path empty")
	}
	url := fmt.Sprintf("https://api.telegram.org/file/bot%s/%s", d.api.Token, file.FilePath)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("telegram file status: %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file body: %w", err)
	}
	return body, nil
}

type Bot struct {
	cfg        config.Config
	api        *tgbotapi.BotAPI
	log        *slog.Logger
	users      *service.UserService
	faces      *repository.FaceRepository
	sessions   *repository.SessionRepository
	tokens     *service.TokenService
	generation *service.GenerationService
	limits     *service.LimitService
	examples   *service.ExamplesService
	files      *storage.FileStorage
	state      *StateManager
}

func NewBot(
	cfg config.Config,
	api *tgbotapi.BotAPI,
	log *slog.Logger,
	users *service.UserService,
	faces *repository.FaceRepository,
	sessions *repository.SessionRepository,
	tokens *service.TokenService,
	generation *service.GenerationService,
	limits *service.LimitService,
	examples *service.ExamplesService,
	files *storage.FileStorage,
) *Bot {
	return &Bot{
		cfg:        cfg,
		api:        api,
		log:        log,
		users:      users,
		faces:      faces,
		sessions:   sessions,
		tokens:     tokens,
		generation: generation,
		limits:     limits,
		examples:   examples,
		files:      files,
		state:      NewStateManager(),
	}
}

func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	b.log.Info("telegram bot started")

	for {
		select {
		case update := <-updates:
			if update.Message != nil {
				b.handleMessage(ctx, update.Message)
			} else if update.CallbackQuery != nil {
				b.handleCallback(ctx, update.CallbackQuery)
			}
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	draft := b.state.Get(msg.Chat.ID)

	if len(msg.Photo) > 0 {
		if draft.Step == StepWaitingFace {
			b.onFacePhoto(ctx, msg, draft)
		} else {
			b.sendText(msg.Chat.ID, "Сначала начни фотосессию и выбери стиль.")
		}
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	switch draft.Step {
	case StepWaitingFace:
		b.onFaceTitle(ctx, msg, draft, text)
	case StepWaitingPrompt:
		b.runPhotosession(ctx, msg.Chat.ID, msg.From, draft, text)
	case StepPromptText:
		b.runPrompt(ctx, msg.Chat.ID, msg.From, draft, text)
	case StepProcessing:
		b.sendText(msg.Chat.ID, "Подожди, текущая генерация ещё идёт.")
	default:
		b.sendText(msg.Chat.ID, "Выбери действие в меню или нажми /start.")
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		user, err := b.ensureUser(ctx, msg.From, msg.Chat.ID)
		if err != nil {
			b.log.Error("ensure user", "err", err)
			return
		}
		b.state.Reset(msg.Chat.ID)
		text := fmt.Sprintf(
			"Привет, это твоя персональная фотостудия!\n\n"+
				"📸 Фотосессия: стиль + твои лица + описание кадра — %d токенов.\n"+
				"🖼 Картинка по описанию — %d токен.\n\n"+
				"Баланс: %d токенов.",
			b.cfg.CostPerSession, b.cfg.CostPerPrompt, user.Tokens,
		)
		msgOut := tgbotapi.NewMessage(msg.Chat.ID, text)
		msgOut.ReplyMarkup = mainMenuKeyboard()
		b.send(msgOut)
	case "balance":
		user, err := b.ensureUser(ctx, msg.From, msg.Chat.ID)
		if err != nil {
			b.log.Error("ensure user balance", "err", err)
			return
		}
		balance, err := b.tokens.Balance(ctx, user.TelegramID)
		if err != nil {
			b.log.Error("read balance", "err", err)
			balance = user.Tokens
		}
		b.sendText(msg.Chat.ID, fmt.Sprintf("Баланс: %d токенов.", balance))
	default:
		b.sendText(msg.Chat.ID, "Неизвестная команда. Нажми /start.")
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID
	draft := b.state.Get(chatID)
	data := cb.Data

	switch {
	case data == "menu:home":
		b.state.Reset(chatID)
		b.answerCallback(cb.ID, "")
		msgOut := tgbotapi.NewMessage(chatID, "Главное меню:")
		msgOut.ReplyMarkup = mainMenuKeyboard()
		b.send(msgOut)
	case data == "menu:new_session":
		b.handleNewSession(ctx, cb, draft)
	case data == "menu:prompt":
		draft.StartPromptFlow()
		b.answerCallback(cb.ID, "")
		msgOut := tgbotapi.NewMessage(chatID, "Опиши идею для картинки или выбери готовый шаблон ниже:")
		msgOut.ReplyMarkup = promptTemplatesKeyboard()
		b.send(msgOut)
	case data == "menu:profile":
		b.handleProfile(ctx, cb)
	case data == "profile:topup":
		b.handleProfileTopup(cb)
	case data == "profile:faces":
		b.handleProfileFaces(ctx, cb)
	case strings.HasPrefix(data, "template:"):
		b.handleTemplate(cb, draft, strings.TrimPrefix(data, "template:"))
	case strings.HasPrefix(data, "style:"):
		b.handleStyleChosen(ctx, cb, draft, strings.TrimPrefix(data, "style:"))
	case strings.HasPrefix(data, "orientation:"):
		b.handleOrientation(cb, draft, strings.TrimPrefix(data, "orientation:"))
	case data == "faces:upload":
		b.answerCallback(cb.ID, "")
		b.sendText(chatID, "Жду 1–10 фото лица. Лучше светлое селфи без очков и фильтров.")
	case data == "faces:list":
		b.handleFacesList(ctx, cb)
	case strings.HasPrefix(data, "faces:use:"):
		b.handleFaceUse(ctx, cb, draft, strings.TrimPrefix(data, "faces:use:"))
	case strings.HasPrefix(data, "faces:delete:"):
		b.handleFaceDelete(ctx, cb, draft, strings.TrimPrefix(data, "faces:delete:"))
	case data == "faces:done":
		b.handleFacesDone(cb, draft)
	case data == "prompt:default":
		b.handlePromptDefault(ctx, cb, draft)
	case data == "session:share":
		b.handleShareSession(ctx, cb)
	default:
		b.answerCallback(cb.ID, "Неизвестный выбор")
	}
}

func (b *Bot) handleNewSession(ctx context.Context, cb *tgbotapi.CallbackQuery, draft *Draft) {
	chatID := cb.Message.Chat.ID
	user, err := b.ensureUser(ctx, cb.From, chatID)
	if err != nil {
		b.log.Error("ensure user new session", "err", err)
		b.answerCallback(cb.ID, "Попробуй позже")
		return
	}
	if user.IsBlocked {
		b.answerCallback(cb.ID, "Аккаунт заблокирован. Напиши в поддержку.")
		return
	}

	draft.StartStyleSelection()
	b.answerCallback(cb.ID, "")
	b.sendText(chatID, fmt.Sprintf(
		"📸 Новая фотосессия\n• Стоимость запуска: %d токенов\n• Баланс: %d токенов\n\n"+
			"Шаг 1: выбери стиль.\nШаг 2: добавь до %d лиц.\nШаг 3: опиши кадр или жми «Сделать как в примере».",
		b.cfg.CostPerSession, user.Tokens, maxFaces,
	))
	msgOut := tgbotapi.NewMessage(chatID, "Выбери стиль:")
	msgOut.ReplyMarkup = stylesKeyboard()
	b.send(msgOut)
}

func (b *Bot) handleStyleChosen(ctx context.Context, cb *tgbotapi.CallbackQuery, draft *Draft, style string) {
	chatID := cb.Message.Chat.ID
	if !knownStyle(style) {
		b.answerCallback(cb.ID, "Такого стиля нет")
		return
	}
	if err := draft.SelectStyle(style); err != nil {
		b.answerCallback(cb.ID, "Начни фотосессию заново")
		return
	}
	b.answerCallback(cb.ID, "")
	b.deleteMessage(chatID, cb.Message.MessageID)

	msgOut := tgbotapi.NewMessage(chatID, fmt.Sprintf(
		"Стиль «%s» выбран. Пришли 1–%d фото лиц или выбери сохранённые.", styleLabel(style), maxFaces,
	))
	msgOut.ReplyMarkup = facesKeyboard()
	b.send(msgOut)

	orient := tgbotapi.NewMessage(chatID, "Ориентация кадра (по умолчанию вертикальная):")
	orient.ReplyMarkup = orientationKeyboard()
	b.send(orient)

	if example := b.examples.GetByStyle(style); example != nil {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FilePath(example.FilePath))
		photo.Caption = fmt.Sprintf("Пример стиля «%s». Добавь своё лицо и жми «✅ Готово».", example.Title)
		b.send(photo)
	}
}

func (b *Bot) handleOrientation(cb *tgbotapi.CallbackQuery, draft *Draft, value string) {
	orientation := models.Orientation(value)
	switch orientation {
	case models.OrientationVertical, models.OrientationHorizontal, models.OrientationSquare:
	default:
		b.answerCallback(cb.ID, "Неизвестная ориентация")
		return
	}
	if err := draft.SetOrientation(orientation); err != nil {
		b.answerCallback(cb.ID, "Сначала выбери стиль")
		return
	}
	b.answerCallback(cb.ID, "Ориентация выбрана")
}

func (b *Bot) handleFacesList(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	faces, err := b.faces.ListFaces(ctx, cb.From.ID)
	if err != nil {
		b.log.Error("list faces", "err", err)
		b.answerCallback(cb.ID, "Попробуй позже")
		return
	}
	if len(faces) == 0 {
		b.answerCallback(cb.ID, "Сохранённых лиц нет.")
		return
	}
	b.answerCallback(cb.ID, "")
	msgOut := tgbotapi.NewMessage(cb.Message.Chat.ID, "Выбери лицо из сохранённых:")
	msgOut.ReplyMarkup = savedFacesKeyboard(faces)
	b.send(msgOut)
}

func (b *Bot) handleFaceUse(ctx context.Context, cb *tgbotapi.CallbackQuery, draft *Draft, rawID string) {
	chatID := cb.Message.Chat.ID
	faceID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		b.answerCallback(cb.ID, "Такого лица нет.")
		return
	}
	face, err := b.faces.FindByID(ctx, faceID, cb.From.ID)
	if err != nil {
		b.log.Error("find face", "err", err)
		b.answerCallback(cb.ID, "Попробуй позже")
		return
	}
	if face == nil {
		b.answerCallback(cb.ID, "Такого лица нет.")
		return
	}

	ref := service.FaceRef{FaceID: face.ID, FileID: face.FileID, FilePath: face.FilePath}
	if err := draft.AddFace(ref, false); err != nil {
		switch {
		case errors.Is(err, ErrCapacityExceeded):
			b.answerCallback(cb.ID, fmt.Sprintf("Можно добавить не более %d лиц в одну фотосессию.", maxFaces))
		default:
			b.answerCallback(cb.ID, "Начни фотосессию заново.")
		}
		return
	}

	name := face.Title
	if name == "" {
		name = fmt.Sprintf("Лицо #%d", face.ID)
	}
	b.answerCallback(cb.ID, "Готово")
	msgOut := tgbotapi.NewMessage(chatID, fmt.Sprintf(
		"Добавил «%s» (%d/%d). Нажми «✅ Готово», когда закончишь.", name, len(draft.Faces), maxFaces,
	))
	msgOut.ReplyMarkup = facesKeyboard()
	b.send(msgOut)
}

func (b *Bot) handleFaceDelete(ctx context.Context, cb *tgbotapi.CallbackQuery, draft *Draft, rawID string) {
	faceID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		b.answerCallback(cb.ID, "Такого лица нет.")
		return
	}
	if err := b.faces.DeleteFace(ctx, faceID, cb.From.ID); err != nil {
		b.log.Error("delete face", "err", err)
		b.answerCallback(cb.ID, "Попробуй позже")
		return
	}
	draft.RemoveFace(faceID)
	b.answerCallback(cb.ID, "Лицо удалено.")
	msgOut := tgbotapi.NewMessage(cb.Message.Chat.ID, "Удалено. Загрузи новое или выбери другое.")
	msgOut.ReplyMarkup = facesKeyboard()
	b.send(msgOut)
}

func (b *Bot) handleFacesDone(cb *tgbotapi.CallbackQuery, draft *Draft) {
	chatID := cb.Message.Chat.ID
	if err := draft.Done(); err != nil {
		switch {
		case errors.Is(err, ErrTitlesPending):
			b.answerCallback(cb.ID, "Сначала дай названия загруженным лицам (отправь текст).")
		case errors.Is(err, ErrNoFaces):
			b.answerCallback(cb.ID, "Нужно добавить хотя бы одно лицо.")
		default:
			b.answerCallback(cb.ID, "Начни фотосессию заново.")
		}
		return
	}
	b.answerCallback(cb.ID, "")
	b.deleteMessage(chatID, cb.Message.MessageID)
	msgOut := tgbotapi.NewMessage(chatID, "Отлично! Добавь описание (сцена, одежда, настроение) или нажми «✨ Сделать как в примере».")
	msgOut.ReplyMarkup = promptControlsKeyboard()
	b.send(msgOut)
}

func (b *Bot) onFacePhoto(ctx context.Context, msg *tgbotapi.Message, draft *Draft) {
	chatID := msg.Chat.ID
	if len(draft.Faces) >= maxFaces {
		msgOut := tgbotapi.NewMessage(chatID, fmt.Sprintf("Фото достаточно (макс. %d). Нажми «✅ Готово».", maxFaces))
		msgOut.ReplyMarkup = facesKeyboard()
		b.send(msgOut)
		return
	}

	photo := msg.Photo[len(msg.Photo)-1]
	filePath, err := b.files.SaveFace(ctx, msg.From.ID, photo.FileID)
	if err != nil {
		b.log.Error("save face", "err", err)
		b.sendText(chatID, "Не удалось сохранить фото, попробуй ещё раз.")
		return
	}

	face, err := b.faces.AddFace(ctx, msg.From.ID, "", photo.FileID, filePath)
	if err != nil {
		b.log.Error("add face", "err", err)
		b.sendText(chatID, "Не удалось сохранить фото, попробуй ещё раз.")
		return
	}

	ref := service.FaceRef{FaceID: face.ID, FileID: face.FileID, FilePath: face.FilePath}
	if err := draft.AddFace(ref, true); err != nil {
		b.log.Error("draft add face", "err", err)
		b.sendText(chatID, "Начни фотосессию заново.")
		return
	}

	msgOut := tgbotapi.NewMessage(chatID, fmt.Sprintf(
		"Фото (%d/%d) добавлено. Как его назвать? (или отправь «-», чтобы пропустить)", len(draft.Faces), maxFaces,
	))
	msgOut.ReplyMarkup = facesKeyboard()
	b.send(msgOut)
}

func (b *Bot) onFaceTitle(ctx context.Context, msg *tgbotapi.Message, draft *Draft, text string) {
	chatID := msg.Chat.ID
	faceID, advanced, err := draft.ProvideTitle()
	if err != nil {
		msgOut := tgbotapi.NewMessage(chatID, "Сначала загрузи лицо, затем отправь его название.")
		msgOut.ReplyMarkup = facesKeyboard()
		b.send(msgOut)
		return
	}

	title := text
	if title == "-" {
		title = ""
	}
	if err := b.faces.UpdateTitle(ctx, faceID, msg.From.ID, title); err != nil {
		b.log.Error("update face title", "face", faceID, "err", err)
	}

	if title != "" {
		b.sendText(chatID, fmt.Sprintf("Готово! Лицо «%s» сохранено.", title))
	} else {
		b.sendText(chatID, "Лицо сохранено без названия.")
	}

	if advanced {
		msgOut := tgbotapi.NewMessage(chatID, "Все лица обработаны. Добавь описание или жми «✨ Сделать как в примере».")
		msgOut.ReplyMarkup = promptControlsKeyboard()
		b.send(msgOut)
	}
}

func (b *Bot) handlePromptDefault(ctx context.Context, cb *tgbotapi.CallbackQuery, draft *Draft) {
	b.answerCallback(cb.ID, "")
	b.runPhotosession(ctx, cb.Message.Chat.ID, cb.From, draft, "")
}

// runPhotosession drives the generation transaction and reports the outcome.
// The draft always ends up idle, whatever happens.
func (b *Bot) runPhotosession(ctx context.Context, chatID int64, from *tgbotapi.User, draft *Draft, prompt string) {
	if err := draft.BeginProcessing(); err != nil {
		b.state.Reset(chatID)
		b.sendText(chatID, "Начни фотосессию заново.")
		return
	}
	defer b.state.Reset(chatID)

	user, err := b.ensureUser(ctx, from, chatID)
	if err != nil {
		b.log.Error("ensure user generation", "err", err)
		b.sendText(chatID, "Не удалось получить профиль. Нажми /start.")
		return
	}
	if !b.limits.Allow(user.TelegramID, user.HourlyLimit) {
		b.sendText(chatID, "Лимит генераций на этот час исчерпан. Попробуй позже.")
		return
	}

	statusMsg := b.send(tgbotapi.NewMessage(chatID, "⏳ Генерируем, подожди..."))

	result, err := b.generation.RunPhotosession(ctx, service.PhotosessionInput{
		UserID:      user.TelegramID,
		Style:       draft.Style,
		Orientation: draft.Orientation,
		Prompt:      prompt,
		Faces:       draft.Faces,
	})
	if err != nil {
		b.editOrSendText(chatID, statusMsg, b.generationErrorText(err))
		return
	}

	b.deleteStatus(chatID, statusMsg)
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FilePath(result.ImagePath))
	photo.Caption = "Готово! Вот твоя съёмка. Хочешь ещё? Запусти новую сцену."
	photo.ReplyMarkup = sessionsKeyboard()
	b.send(photo)
	if result.Notice != "" {
		b.sendText(chatID, result.Notice)
	}
}

func (b *Bot) runPrompt(ctx context.Context, chatID int64, from *tgbotapi.User, draft *Draft, prompt string) {
	template := draft.Template
	if template == "custom" {
		template = ""
	}
	defer b.state.Reset(chatID)

	user, err := b.ensureUser(ctx, from, chatID)
	if err != nil {
		b.log.Error("ensure user prompt", "err", err)
		b.sendText(chatID, "Не удалось получить профиль. Нажми /start.")
		return
	}
	if !b.limits.Allow(user.TelegramID, user.HourlyLimit) {
		b.sendText(chatID, "Лимит генераций на этот час исчерпан. Попробуй позже.")
		return
	}

	statusMsg := b.send(tgbotapi.NewMessage(chatID, "⏳ Генерируем по описанию..."))

	result, err := b.generation.RunPrompt(ctx, service.PromptInput{
		UserID:   user.TelegramID,
		Prompt:   prompt,
		Template: template,
	})
	if err != nil {
		b.editOrSendText(chatID, statusMsg, b.generationErrorText(err))
		return
	}

	b.deleteStatus(chatID, statusMsg)
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FilePath(result.ImagePath))
	photo.Caption = "Готово!"
	photo.ReplyMarkup = sessionsKeyboard()
	b.send(photo)
}

func (b *Bot) handleTemplate(cb *tgbotapi.CallbackQuery, draft *Draft, template string) {
	if err := draft.SelectTemplate(template); err != nil {
		b.answerCallback(cb.ID, "Сначала открой генерацию по описанию.")
		return
	}
	b.answerCallback(cb.ID, "")
	if template == "custom" {
		b.sendText(cb.Message.Chat.ID, "Окей, пиши свою идею.")
	} else {
		b.sendText(cb.Message.Chat.ID, "Супер! Добавь пару деталей (цвет, настроение).")
	}
}

func (b *Bot) handleProfile(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID
	user, err := b.ensureUser(ctx, cb.From, chatID)
	if err != nil {
		b.log.Error("ensure user profile", "err", err)
		b.answerCallback(cb.ID, "Попробуй позже")
		return
	}
	faces, err := b.faces.ListFaces(ctx, user.TelegramID)
	if err != nil {
		b.log.Error("list faces profile", "err", err)
	}

	name := user.FullName
	if name == "" {
		name = user.Username
	}
	if name == "" {
		name = "-"
	}
	text := fmt.Sprintf(
		"💎 Твой профиль\n\n🆔 ID: %d\n👤 Имя: %s\n💰 Баланс: %d токенов\n📅 Дата регистрации: %s\n🧑‍🦰 Лица: %d / %d\n\nТокеномика: %d токенов = 1 фотосессия.",
		user.TelegramID, name, user.Tokens, user.CreatedAt.Format("02.01.2006"), len(faces), maxFaces, b.cfg.CostPerSession,
	)
	b.answerCallback(cb.ID, "")
	msgOut := tgbotapi.NewMessage(chatID, text)
	msgOut.ReplyMarkup = profileKeyboard()
	b.send(msgOut)
}

func (b *Bot) handleProfileTopup(cb *tgbotapi.CallbackQuery) {
	b.answerCallback(cb.ID, "")
	b.sendText(cb.Message.Chat.ID,
		"Пополнение баланса:\n"+
			"1) СБП — напиши в поддержку, укажи сумму.\n"+
			"2) Crypto — USDT/TON, адрес уточни в поддержке.\n"+
			"3) Stars — внутри Telegram.\n"+
			"Админ начислит токены после оплаты.",
	)
}

func (b *Bot) handleProfileFaces(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	faces, err := b.faces.ListFaces(ctx, cb.From.ID)
	if err != nil {
		b.log.Error("profile faces", "err", err)
		b.answerCallback(cb.ID, "Попробуй позже")
		return
	}
	if len(faces) == 0 {
		b.answerCallback(cb.ID, "У тебя нет сохранённых лиц.")
		return
	}
	lines := []string{"Сохранённые лица:"}
	for _, face := range faces {
		title := face.Title
		if title == "" {
			title = "Без названия"
		}
		lines = append(lines, fmt.Sprintf("• %s - #%d", title, face.ID))
	}
	b.answerCallback(cb.ID, "")
	b.sendText(cb.Message.Chat.ID, strings.Join(lines, "\n"))
}

func (b *Bot) handleShareSession(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	sessions, err := b.sessions.ListForUser(ctx, cb.From.ID, 1)
	if err != nil {
		b.log.Error("list sessions share", "err", err)
		b.answerCallback(cb.ID, "Попробуй позже")
		return
	}
	if len(sessions) == 0 {
		b.answerCallback(cb.ID, "Пока нет готовых съёмок.")
		return
	}
	last := sessions[0]
	if last.ResultPath == "" {
		b.answerCallback(cb.ID, "У последней съёмки нет файла.")
		return
	}
	photo := tgbotapi.NewPhoto(cb.Message.Chat.ID, tgbotapi.FilePath(last.ResultPath))
	photo.Caption = fmt.Sprintf("%s\nПерешли это фото другу или сохрани себе.", styleLabel(last.Style))
	photo.ReplyMarkup = sessionsKeyboard()
	b.send(photo)
	b.answerCallback(cb.ID, "Фото отправлено. Просто пересылай его дальше.")
}

func (b *Bot) generationErrorText(err error) string {
	switch {
	case errors.Is(err, service.ErrInsufficientFunds):
		return fmt.Sprintf("Недостаточно токенов: фотосессия стоит %d. Открой профиль и пополни баланс.", b.cfg.CostPerSession)
	case errors.Is(err, service.ErrAccountBlocked):
		return "Аккаунт заблокирован. Напиши в поддержку."
	case errors.Is(err, service.ErrProfileMissing):
		return "Не удалось получить профиль. Нажми /start."
	case errors.Is(err, service.ErrGenerationInFlight):
		return "Предыдущая генерация ещё идёт, подожди её окончания."
	default:
		b.log.Error("generation failed", "err", err)
		return "Не вышло сгенерировать. Токены возвращены, попробуй ещё раз."
	}
}

func (b *Bot) ensureUser(ctx context.Context, from *tgbotapi.User, chatID int64) (*models.User, error) {
	telegramID := chatID
	username := ""
	fullName := ""
	if from != nil {
		telegramID = from.ID
		username = from.UserName
		fullName = strings.TrimSpace(from.FirstName + " " + from.LastName)
	}
	return b.users.Ensure(ctx, telegramID, username, fullName)
}

func (b *Bot) send(c tgbotapi.Chattable) *tgbotapi.Message {
	msg, err := b.api.Send(c)
	if err != nil {
		b.log.Error("send message", "err", err)
		return nil
	}
	return &msg
}

func (b *Bot) sendText(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) answerCallback(id, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(id, text)); err != nil {
		b.log.Error("callback ack", "err", err)
	}
}

func (b *Bot) deleteMessage(chatID int64, messageID int) {
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		b.log.Error("delete message", "err", err)
	}
}

func (b *Bot) deleteStatus(chatID int64, status *tgbotapi.Message) {
	if status != nil {
		b.deleteMessage(chatID, status.MessageID)
	}
}

func (b *Bot) editOrSendText(chatID int64, status *tgbotapi.Message, text string) {
	if status != nil {
		edit := tgbotapi.NewEditMessageText(chatID, status.MessageID, text)
		if _, err := b.api.Send(edit); err == nil {
			return
		}
	}
	b.sendText(chatID, text)
}
