package bot

import (
	"bytes"
	"chat-analyzer/internal/adapters/exporter"
	"chat-analyzer/internal/adapters/source"
	"chat-analyzer/internal/collector"
	"chat-analyzer/internal/domain"
	"chat-analyzer/internal/pkg/config"
	"chat-analyzer/internal/ports"
	"context"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"sync"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	startCommand = "start"
	helpCommand  = "help"

	// telegramMessageLimit — максимальная длина текстового сообщения Telegram.
	telegramMessageLimit = 4096
)

const helpText = "Добро пожаловать! Я бот для анализа истории чатов WhatsApp.\n\n" +
	"Отправьте мне экспорт чата (.txt) или вставьте текст переписки сообщением, " +
	"и я пришлю статистику: самых активных участников, эмодзи, активность по дням и популярные слова.\n\n" +
	"Пожалуйста, обратите внимание:\n" +
	"• Я обрабатываю только один чат за раз.\n" +
	"• Файлы не сохраняются и обрабатываются на лету."

// Bot представляет собой основной объект Telegram-бота.
type Bot struct {
	api        *tgbotapi.BotAPI
	cfg        config.Bot
	service    ports.AnalysisService
	taskStore  *TaskStore
	logger     *slog.Logger
	httpClient *http.Client
	console    ports.Exporter
	excel      ports.Exporter
	wg         sync.WaitGroup

	// Подменяются в тестах.
	sendMessageFunc      func(msg tgbotapi.Chattable) (tgbotapi.Message, error)
	getFileDirectURLFunc func(fileID string) (string, error)
	spawn                func(task func())
}

// NewBot создает и инициализирует новый экземпляр бота.
func NewBot(cfg config.Bot, service ports.AnalysisService, taskStore *TaskStore, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot api: %w", err)
	}

	logger.Info("Authorized on account", slog.String("username", api.Self.UserName))

	b := newBot(cfg, service, taskStore, logger)
	b.api = api
	b.sendMessageFunc = api.Send
	b.getFileDirectURLFunc = api.GetFileDirectURL
	return b, nil
}

func newBot(cfg config.Bot, service ports.AnalysisService, taskStore *TaskStore, logger *slog.Logger) *Bot {
	b := &Bot{
		cfg:        cfg,
		service:    service,
		taskStore:  taskStore,
		logger:     logger,
		httpClient: &http.Client{Timeout: cfg.DownloadTimeout},
		console:    exporter.NewConsoleExporter(cfg.BarWidth),
		excel:      exporter.NewExcelExporter(),
	}
	b.spawn = func(task func()) {
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			task()
		}()
	}
	return b
}

// Start запускает основной цикл обработки обновлений от Telegram.
// После отмены ctx дожидается завершения начатых анализов.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.PollingTimeout

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Context cancelled, stopping bot...")
			b.api.StopReceivingUpdates()
			b.wg.Wait()
			return
		case update := <-updates:
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение.
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	switch {
	case msg.IsCommand():
		b.handleCommand(msg)
	case msg.Document != nil:
		b.handleDocument(ctx, msg)
	case msg.Text != "":
		b.handleText(ctx, msg)
	default:
		b.reply(msg.Chat.ID, "Пожалуйста, отправьте мне экспорт чата WhatsApp в формате .txt.")
	}
}

// handleCommand обрабатывает команды.
func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case startCommand, helpCommand:
		b.reply(msg.Chat.ID, helpText)
	default:
		b.reply(msg.Chat.ID, "Я не знаю такой команды.")
	}
}

// handleDocument проверяет файл и запускает его анализ.
func (b *Bot) handleDocument(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	doc := msg.Document
	logger := b.logger.With(slog.Int64("chat_id", chatID), slog.String("file_name", doc.FileName))

	if err := collector.ValidateFileName(doc.FileName); err != nil {
		logger.Info("rejected document", slog.String("reason", err.Error()))
		b.reply(chatID, collector.UserMessage(err))
		return
	}
	if limit := b.maxFileSize(); int64(doc.FileSize) > limit {
		logger.Info("rejected document", slog.Int("size", doc.FileSize))
		b.reply(chatID, b.sizeLimitMessage())
		return
	}

	b.startAnalysis(ctx, chatID, "file", func(ctx context.Context) (*domain.AnalysisResult, error) {
		file, err := b.download(ctx, doc)
		if err != nil {
			return nil, err
		}
		return b.service.AnalyzeFile(ctx, file)
	})
}

// handleText анализирует текст, вставленный прямо в сообщение.
func (b *Bot) handleText(ctx context.Context, msg *tgbotapi.Message) {
	content, err := collector.PrepareText(msg.Text)
	if err != nil {
		b.reply(msg.Chat.ID, collector.UserMessage(err))
		return
	}

	b.startAnalysis(ctx, msg.Chat.ID, "text", func(ctx context.Context) (*domain.AnalysisResult, error) {
		return b.service.AnalyzeText(ctx, content)
	})
}

// startAnalysis занимает чат и запускает call в фоне. Пока анализ идет, новые отклоняются.
func (b *Bot) startAnalysis(ctx context.Context, chatID int64, mode string, call func(ctx context.Context) (*domain.AnalysisResult, error)) {
	logger := b.logger.With(slog.Int64("chat_id", chatID), slog.String("mode", mode))

	if !b.taskStore.TryStart(chatID) {
		logger.Warn("user tried to start a new analysis while another is active")
		b.reply(chatID, "Пожалуйста, подождите завершения предыдущего анализа, прежде чем начинать новый.")
		return
	}

	b.reply(chatID, "⏳ Анализирую чат...")
	b.spawn(func() {
		defer b.taskStore.Delete(chatID)

		taskCtx, cancel := context.WithTimeout(ctx, b.cfg.TaskTimeout)
		defer cancel()

		start := time.Now()
		result, err := call(taskCtx)
		if err != nil {
			logger.Error("analysis failed", slog.String("error", err.Error()))
			b.reply(chatID, collector.UserMessage(err))
			return
		}

		logger.Info("analysis completed",
			slog.Int("total_messages", result.GetTotalMessages()),
			slog.Duration("duration", time.Since(start)))
		b.sendResult(chatID, result)
	})
}

// download скачивает документ с серверов Telegram, не читая больше лимита.
func (b *Bot) download(ctx context.Context, doc *tgbotapi.Document) (*domain.ChatFile, error) {
	fileURL, err := b.getFileDirectURLFunc(doc.FileID)
	if err != nil {
		return nil, fmt.Errorf("failed to get file direct url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download file: status %d", resp.StatusCode)
	}

	limit := b.maxFileSize()
	src, err := source.NewReaderSource(doc.FileName, resp.Body, limit+1)
	if err != nil {
		return nil, err
	}
	file, err := src.Fetch()
	if err != nil {
		return nil, err
	}
	if file.Size > limit {
		return nil, &collector.ValidationError{Message: b.sizeLimitMessage()}
	}
	return file, nil
}

// sendResult отправляет панель текстом в <pre>. Если она не помещается в сообщение,
// вместо нее отправляется Excel-книга.
func (b *Bot) sendResult(chatID int64, result *domain.AnalysisResult) {
	var buf bytes.Buffer
	if err := b.console.Export(&buf, result); err != nil {
		b.logger.Error("failed to render result", slog.String("error", err.Error()))
		b.reply(chatID, "Не удалось сформировать результат.")
		return
	}

	text := "<pre>" + html.EscapeString(buf.String()) + "</pre>"
	if utf8.RuneCountInString(text) > b.textLimit() {
		b.logger.Info("result is too long for a message, sending excel file", "length", len(text))
		b.sendExcelResult(chatID, result)
		return
	}

	reply := tgbotapi.NewMessage(chatID, text)
	reply.ParseMode = tgbotapi.ModeHTML
	b.sendMessage(reply)
}

func (b *Bot) sendExcelResult(chatID int64, result *domain.AnalysisResult) {
	var buf bytes.Buffer
	if err := b.excel.Export(&buf, result); err != nil {
		b.logger.Error("failed to write excel to buffer", slog.String("error", err.Error()))
		b.reply(chatID, "Не удалось сгенерировать Excel-файл.")
		return
	}

	fileName := fmt.Sprintf("chat_analysis_%s.xlsx", time.Now().Format("2006-01-02_15-04-05"))
	msg := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  fileName,
		Bytes: buf.Bytes(),
	})
	msg.Caption = fmt.Sprintf("Анализ завершен. Сообщений: %d, самый активный участник: %s.",
		result.GetTotalMessages(), result.GetMostActiveUser())
	b.sendMessage(msg)
}

func (b *Bot) textLimit() int {
	if b.cfg.ExcelThreshold > 0 && b.cfg.ExcelThreshold < telegramMessageLimit {
		return b.cfg.ExcelThreshold
	}
	return telegramMessageLimit
}

func (b *Bot) maxFileSize() int64 {
	return b.cfg.MaxFileSizeMB * 1024 * 1024
}

func (b *Bot) sizeLimitMessage() string {
	return fmt.Sprintf("File size exceeds %dMB limit", b.cfg.MaxFileSizeMB)
}

func (b *Bot) reply(chatID int64, text string) {
	b.sendMessage(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) sendMessage(msg tgbotapi.Chattable) {
	if _, err := b.sendMessageFunc(msg); err != nil {
		b.logger.Error("failed to send message", slog.String("error", err.Error()))
	}
}
