package notifier

import (
	"context"
	"fmt"
	"html"
	"time"

	"liquipedia-scraper/logging"
	"liquipedia-scraper/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender is the part of the bot API the notifier needs
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier posts run summaries to a Telegram chat
type Notifier struct {
	bot    Sender
	chatID int64
}

// New connects to the bot API with token
func New(token string, chatID int64) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	logging.L().Infof("Authorized on account %s", bot.Self.UserName)
	return NewWithSender(bot, chatID), nil
}

// NewWithSender creates a Notifier around an existing sender
func NewWithSender(bot Sender, chatID int64) *Notifier {
	return &Notifier{bot: bot, chatID: chatID}
}

// NotifySuccess sends the summary of a finished run
func (n *Notifier) NotifySuccess(ctx context.Context, report *models.RunReport) error {
	return n.send(ctx, FormatReport(report))
}

// NotifyFailure sends the error that ended a run
func (n *Notifier) NotifyFailure(ctx context.Context, runErr error) error {
	return n.send(ctx, fmt.Sprintf("❌ Scrape failed: %s", html.EscapeString(runErr.Error())))
}

func (n *Notifier) send(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// FormatReport renders a run summary as Telegram HTML
func FormatReport(report *models.RunReport) string {
	title := "✅ <b>Scrape finished</b>"
	if report.DryRun {
		title = "✅ <b>Scrape finished</b> (dry run, nothing written)"
	}

	text := fmt.Sprintf("%s\n\n"+
		"Regions: %d\n"+
		"Teams: %d/%d\n"+
		"Skipped: %d\n"+
		"Logos: %d saved, %d failed\n"+
		"Duration: %s",
		title,
		report.Stats.Regions,
		report.Stats.Records, report.Stats.Links,
		report.Stats.Skipped,
		report.LogosWritten, report.LogosFailed,
		report.Duration.Round(time.Second))
	return text
}
