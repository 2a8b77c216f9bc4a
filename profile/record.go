package profile

import "strings"

type DataSource string

const (
	SourceLive     DataSource = "live"
	SourceFallback DataSource = "fallback"
)

// Activity is one recent post with its engagement counters.
type Activity struct {
	Text       string `json:"text"`
	LikeCount  int    `json:"like_count"`
	ShareCount int    `json:"share_count"`
	ReplyCount int    `json:"reply_count"`
	QuoteCount int    `json:"quote_count"`
	CreatedAt  string `json:"created_at,omitempty"`
}

// Record is everything known about an account for one request. It is built
// fresh per request and never shared.
type Record struct {
	Username       string     `json:"username"`
	DisplayName    string     `json:"display_name"`
	Bio            string     `json:"bio"`
	Location       string     `json:"location"`
	FollowerCount  int        `json:"follower_count"`
	FollowingCount int        `json:"following_count"`
	TweetCount     int        `json:"tweet_count"`
	Verified       bool       `json:"verified"`
	ProfileImage   string     `json:"profile_image,omitempty"`
	Website        string     `json:"website"`
	CreatedAt      string     `json:"created_at"`
	RecentActivity []Activity `json:"recent_activity"`
	DataSource     DataSource `json:"data_source"`
	SourceLabel    string     `json:"source_label"`
	FallbackReason string     `json:"fallback_reason,omitempty"`
	Success        bool       `json:"success"`
}

// EngagementScore sums likes and shares across recent activity.
func (r Record) EngagementScore() int {
	score := 0
	for _, activity := range r.RecentActivity {
		score += activity.LikeCount + activity.ShareCount
	}
	return score
}

// NormalizeHandle trims whitespace and any leading '@'.
func NormalizeHandle(handle string) string {
	return strings.TrimLeft(strings.TrimSpace(handle), "@")
}
