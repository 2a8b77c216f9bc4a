package main

import (
	"github.com/grutapig/colddm/log"
	"github.com/grutapig/colddm/relay"
)

// EnqueueNotification queues a completed generation without blocking. Failed
// runs are not announced and a full queue drops the notification.
func EnqueueNotification(notificationCh chan<- GenerationNotification, outcome relay.Outcome) {
	if outcome.State != relay.StateComplete || outcome.FinalResponse == "" {
		return
	}
	select {
	case notificationCh <- NewGenerationNotification(outcome):
	default:
		log.Warnf("Notification channel full, skipping generation %s", outcome.RequestId)
	}
}

// NotificationHandler posts queued notifications until the channel is closed.
func NotificationHandler(notificationCh <-chan GenerationNotification, telegramService *TelegramService) {
	for notification := range notificationCh {
		err := telegramService.BroadcastMessage(telegramService.formatter.FormatForTelegram(notification))
		if err != nil {
			log.Errorf("Failed to send Telegram notification for @%s: %v", notification.Handle, err)
			continue
		}
		log.Debugf("Sent notification for @%s", notification.Handle)
	}
}
