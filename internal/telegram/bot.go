package telegram

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ObiAU/newsfanout/internal/ai"
	"github.com/ObiAU/newsfanout/internal/models"
)

// Telegram rejects longer messages.
const maxMessageLength = 4096

var ErrNotConnected = errors.New("telegram bot is not connected")

type Searcher interface {
	Search(ctx context.Context, phrase string) ([]models.Article, error)
	Sources() []models.Source
}

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Bot struct {
	api        *tgbotapi.BotAPI
	out        sender
	webhookURL string
	searcher   Searcher
	digester   ai.Digester
	logger     *slog.Logger
}

// NewBot connects to the Bot API. digester may be nil, which disables
// /digest.
func NewBot(token, webhookURL string, searcher Searcher, digester ai.Digester, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	b := newBot(api, searcher, digester, logger)
	b.api = api
	b.webhookURL = webhookURL
	return b, nil
}

func newBot(out sender, searcher Searcher, digester ai.Digester, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		out:      out,
		searcher: searcher,
		digester: digester,
		logger:   logger,
	}
}

func (b *Bot) UsesWebhook() bool {
	return b.webhookURL != ""
}

// Run receives updates until ctx is done. In webhook mode it only
// registers the webhook; updates then arrive through ServeHTTP.
func (b *Bot) Run(ctx context.Context) error {
	if b.api == nil {
		return ErrNotConnected
	}
	if b.UsesWebhook() {
		if err := b.registerWebhook(); err != nil {
			return err
		}
		<-ctx.Done()
		return nil
	}

	if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		b.logger.Warn("could not delete telegram webhook", "error", err)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	b.logger.Info("telegram bot polling", "user", b.api.Self.UserName)
	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) registerWebhook() error {
	webhook, err := tgbotapi.NewWebhook(b.webhookURL)
	if err != nil {
		return err
	}

	if _, err := b.api.Request(webhook); err != nil {
		return err
	}

	info, err := b.api.GetWebhookInfo()
	if err != nil {
		return err
	}

	if info.LastErrorDate != 0 {
		b.logger.Warn("telegram webhook last error", "message", info.LastErrorMessage)
	}
	b.logger.Info("telegram webhook registered", "url", b.webhookURL)
	return nil
}

// ServeHTTP handles one webhook delivery. The reply is sent before the
// request completes.
func (b *Bot) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if b.api == nil {
		http.Error(w, "bot not connected", http.StatusServiceUnavailable)
		return
	}
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		b.logger.Warn("bad telegram webhook payload", "error", err)
		http.Error(w, "bad update", http.StatusBadRequest)
		return
	}
	b.handleUpdate(r.Context(), *update)
	w.WriteHeader(http.StatusOK)
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil || update.Message.Chat == nil {
		return
	}

	chatID := update.Message.Chat.ID
	command, args := parseCommand(update.Message.Text)

	switch command {
	case "/start":
		b.handleStart(chatID)
	case "/help":
		b.handleHelp(chatID)
	case "/news", "":
		b.handleNews(ctx, chatID, args)
	case "/digest":
		b.handleDigest(ctx, chatID, args)
	case "/sources":
		b.handleSources(chatID)
	default:
		b.handleUnknownCommand(chatID)
	}
}

// parseCommand splits "/news@SomeBot central bank" into "/news" and
// "central bank".
func parseCommand(text string) (string, string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", text
	}
	command, args, _ := strings.Cut(text, " ")
	command, _, _ = strings.Cut(command, "@")
	return strings.ToLower(command), strings.TrimSpace(args)
}

func (b *Bot) handleStart(chatID int64) {
	b.sendMessage(chatID, `Welcome to News Fan-out! 📰

Send me a phrase and I will search every configured news source for it.

/news central bank
/digest climate summit
/sources
/help`)
}

func (b *Bot) handleHelp(chatID int64) {
	helpText := `News Fan-out Help 📖

Commands:
/news &lt;phrase&gt; - Latest matching headlines, best sources first
/digest &lt;phrase&gt; - A short written digest of the matching headlines
/sources - Configured news sources
/help - Show this help`

	b.sendMessage(chatID, helpText)
}

func (b *Bot) handleNews(ctx context.Context, chatID int64, phrase string) {
	articles, ok := b.search(ctx, chatID, phrase, "/news")
	if !ok {
		return
	}
	b.sendMessage(chatID, formatArticles(phrase, articles))
}

func (b *Bot) handleDigest(ctx context.Context, chatID int64, phrase string) {
	if b.digester == nil {
		b.sendMessage(chatID, "Digests are not enabled on this bot.")
		return
	}
	articles, ok := b.search(ctx, chatID, phrase, "/digest")
	if !ok {
		return
	}
	if len(articles) == 0 {
		b.sendMessage(chatID, formatArticles(phrase, articles))
		return
	}

	digest, err := b.digester.Digest(ctx, phrase, articles)
	if err != nil {
		b.logger.Error("digest failed", "phrase", phrase, "error", err)
		b.sendMessage(chatID, "Could not write a digest right now. Try /news instead.")
		return
	}
	b.sendMessage(chatID, fmt.Sprintf("🗞 <b>%s</b>\n\n%s", html.EscapeString(phrase), html.EscapeString(digest)))
}

func (b *Bot) search(ctx context.Context, chatID int64, phrase, command string) ([]models.Article, bool) {
	if phrase == "" {
		b.sendMessage(chatID, fmt.Sprintf("Usage: %s &lt;phrase&gt;", command))
		return nil, false
	}
	articles, err := b.searcher.Search(ctx, phrase)
	if err != nil {
		b.logger.Error("search failed", "phrase", phrase, "error", err)
		b.sendMessage(chatID, "Search failed, please try again.")
		return nil, false
	}
	return articles, true
}

func (b *Bot) handleSources(chatID int64) {
	var sb strings.Builder
	sb.WriteString("Configured sources 📋\n\n")
	for _, src := range b.searcher.Sources() {
		sb.WriteString(fmt.Sprintf("• %s <code>%s</code>\n", html.EscapeString(src.Name), html.EscapeString(src.ID)))
	}
	b.sendMessage(chatID, sb.String())
}

func (b *Bot) handleUnknownCommand(chatID int64) {
	b.sendMessage(chatID, "Unknown command. Use /help for available commands.")
}

func formatArticles(phrase string, articles []models.Article) string {
	if len(articles) == 0 {
		return fmt.Sprintf("No news found for <b>%s</b>.", html.EscapeString(phrase))
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📰 <b>%s</b> (%d)\n", html.EscapeString(phrase), len(articles)))
	for _, article := range articles {
		title := article.Title
		if title == "" {
			title = article.Description
		}
		entry := fmt.Sprintf("\n• <a href=\"%s\">%s</a>\n  <i>%s</i>",
			html.EscapeString(article.URL),
			html.EscapeString(title),
			html.EscapeString(article.Source))
		if article.Timestamp > 0 {
			entry += " · " + article.PublishedAt().Format(time.RFC822)
		}
		entry += "\n"

		if sb.Len()+len(entry) > maxMessageLength {
			break
		}
		sb.WriteString(entry)
	}
	return sb.String()
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	_, err := b.out.Send(msg)
	if err != nil {
		b.logger.Error("failed to send telegram message", "chat_id", chatID, "error", err)
	}
}
