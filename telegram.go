package main

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grutapig/colddm/log"
)

// MessageSender is the part of tgbotapi.BotAPI the service uses.
type MessageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type TelegramService struct {
	bot       MessageSender
	chatIDs   []int64
	formatter *NotificationFormatter
}

func NewTelegramService(apiKey string, proxyDSN string, initialChatIDs string, formatter *NotificationFormatter) (*TelegramService, error) {
	transport := &http.Transport{}
	if proxyDSN != "" {
		proxyURL, err := url.Parse(proxyDSN)
		if err != nil {
			return nil, fmt.Errorf("telegram service proxy dsn error: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}
	client := &http.Client{
		Transport: transport,
		Timeout:   10 * time.Second,
	}

	bot, err := tgbotapi.NewBotAPIWithClient(apiKey, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	log.Infof("Telegram notifier authorized as @%s", bot.Self.UserName)

	return newTelegramServiceWithSender(bot, initialChatIDs, formatter), nil
}

func newTelegramServiceWithSender(bot MessageSender, initialChatIDs string, formatter *NotificationFormatter) *TelegramService {
	service := &TelegramService{
		bot:       bot,
		formatter: formatter,
	}
	for _, chatIDStr := range strings.Split(initialChatIDs, ",") {
		chatIDStr = strings.TrimSpace(chatIDStr)
		if chatIDStr == "" {
			continue
		}
		chatID, err := strconv.ParseInt(chatIDStr, 10, 64)
		if err != nil {
			log.Warnf("Warning: Invalid chat ID format: %s", chatIDStr)
			continue
		}
		service.chatIDs = append(service.chatIDs, chatID)
	}
	return service
}

func (t *TelegramService) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send to %d: %w", chatID, err)
	}
	return nil
}

// BroadcastMessage sends text to every admin chat and returns the last error.
func (t *TelegramService) BroadcastMessage(text string) error {
	var lastErr error
	for _, chatID := range t.chatIDs {
		if err := t.SendMessage(chatID, text); err != nil {
			log.Errorf("Failed to send Telegram message: %v", err)
			lastErr = err
		}
	}
	return lastErr
}

func (t *TelegramService) GetRegisteredChats() []int64 {
	return append([]int64(nil), t.chatIDs...)
}
