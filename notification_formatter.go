package main

import (
	"fmt"
	"html"
	"net/url"
	"time"
	"unicode/utf8"

	"github.com/grutapig/colddm/profile"
	"github.com/grutapig/colddm/relay"
)

// GenerationNotification is what the admin chats learn about a finished run.
type GenerationNotification struct {
	RequestId      string
	Handle         string
	DisplayName    string
	DataSource     profile.DataSource
	FallbackReason string
	Message        string
	MessageLength  int
	OverBudget     bool
	Duration       time.Duration
	CompletedAt    time.Time
}

func NewGenerationNotification(outcome relay.Outcome) GenerationNotification {
	return GenerationNotification{
		RequestId:      outcome.RequestId,
		Handle:         outcome.Handle,
		DisplayName:    outcome.DisplayName,
		DataSource:     outcome.DataSource,
		FallbackReason: outcome.FallbackReason,
		Message:        outcome.FinalResponse,
		MessageLength:  outcome.FinalLength,
		OverBudget:     outcome.OverBudget,
		Duration:       outcome.Duration,
		CompletedAt:    outcome.Started.Add(outcome.Duration),
	}
}

type NotificationFormatter struct{}

func NewNotificationFormatter() *NotificationFormatter {
	return &NotificationFormatter{}
}

// FormatForTelegram renders HTML for the Telegram HTML parse mode.
func (nf *NotificationFormatter) FormatForTelegram(notification GenerationNotification) string {
	sourceLine := "🔥 <b>Source:</b> live profile"
	if notification.DataSource != profile.SourceLive {
		sourceLine = fmt.Sprintf("🎭 <b>Source:</b> fallback (%s)", html.EscapeString(notification.FallbackReason))
	}

	budgetLine := fmt.Sprintf("📏 <b>Length:</b> %d chars", notification.MessageLength)
	if notification.OverBudget {
		budgetLine += " ⚠️ over budget"
	}

	return fmt.Sprintf(`✉️ <b>COLD DM GENERATED</b>

🎯 <b>Target:</b> <a href="https://twitter.com/%s">@%s</a> (%s)
%s
%s
⏱ <b>Took:</b> %s

💬 <b>Message:</b>
<i>%s</i>

⏰ %s
🆔 %s`,
		url.PathEscape(notification.Handle),
		html.EscapeString(notification.Handle),
		html.EscapeString(notification.DisplayName),
		sourceLine,
		budgetLine,
		notification.Duration.Round(time.Millisecond),
		html.EscapeString(nf.truncateText(notification.Message, 600)),
		nf.formatTime(notification.CompletedAt),
		notification.RequestId)
}

func (nf *NotificationFormatter) truncateText(text string, maxLength int) string {
	if utf8.RuneCountInString(text) <= maxLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxLength-3]) + "..."
}

func (nf *NotificationFormatter) formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}
