package relay

import (
	"time"

	"github.com/google/uuid"
	"github.com/grutapig/colddm/profile"
)

// Metadata is the content of the metadata event sent before done.
type Metadata struct {
	ChatId      string      `json:"chatId"`
	Title       string      `json:"title"`
	TwitterData TwitterData `json:"twitterData"`
}

// TwitterData is the profile as used for generation plus derived fields.
type TwitterData struct {
	profile.Record
	ScrapedAt       string `json:"scraped_at"`
	EngagementScore int    `json:"engagement_score"`
}

func NewMetadata(handle string, record profile.Record, capturedAt time.Time) Metadata {
	title := "Enhanced Cold DM for @" + handle
	if record.DataSource == profile.SourceLive {
		title = "Real-time Cold DM for @" + handle
	}
	return Metadata{
		ChatId: "chat_" + uuid.NewString(),
		Title:  title,
		TwitterData: TwitterData{
			Record:          record,
			ScrapedAt:       capturedAt.UTC().Format(time.RFC3339Nano),
			EngagementScore: record.EngagementScore(),
		},
	}
}
