package profile

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/grutapig/colddm/log"
	"github.com/grutapig/colddm/twitterapi"
	"github.com/sony/gobreaker"
)

const LIVE_SOURCE_LABEL = "🔥 REAL Twitter API v2"
const REASON_NO_TOKEN = "No API token provided"
const REASON_CIRCUIT_OPEN = "circuit open"

const BREAKER_FAILURE_THRESHOLD = 5
const BREAKER_OPEN_TIMEOUT = 30 * time.Second

// LiveSource is the subset of the Twitter client the provider needs.
type LiveSource interface {
	GetUserByUsername(ctx context.Context, username string) (*twitterapi.User, error)
	GetUserTweets(ctx context.Context, userID string, maxResults int) ([]twitterapi.Tweet, error)
}

// outcome is either a live record or a fallback record with its reason.
// Fetch collapses it into a single Record carrying the source tag.
type outcome interface {
	collapse() Record
}

type liveOutcome struct {
	record Record
}

func (o liveOutcome) collapse() Record {
	o.record.DataSource = SourceLive
	o.record.SourceLabel = LIVE_SOURCE_LABEL
	o.record.Success = true
	return o.record
}

type fallbackOutcome struct {
	record Record
	reason string
}

func (o fallbackOutcome) collapse() Record {
	o.record.DataSource = SourceFallback
	o.record.FallbackReason = o.reason
	o.record.Success = false
	return o.record
}

type Provider struct {
	live     LiveSource
	breaker  *gobreaker.CircuitBreaker
	fallback *Fallback
}

type ProviderOption func(*Provider)

func WithFallback(fallback *Fallback) ProviderOption {
	return func(p *Provider) {
		p.fallback = fallback
	}
}

func WithBreakerSettings(settings gobreaker.Settings) ProviderOption {
	return func(p *Provider) {
		p.breaker = gobreaker.NewCircuitBreaker(settings)
	}
}

// NewProvider builds a provider. A nil live source sends every request
// straight to fallback data.
func NewProvider(live LiveSource, opts ...ProviderOption) *Provider {
	p := &Provider{
		live:     live,
		fallback: NewFallback(),
		breaker:  gobreaker.NewCircuitBreaker(DefaultBreakerSettings()),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func DefaultBreakerSettings() gobreaker.Settings {
	return gobreaker.Settings{
		Name:        "twitter-live",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     BREAKER_OPEN_TIMEOUT,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= BREAKER_FAILURE_THRESHOLD
		},
		// unknown handles and abandoned requests say nothing about the upstream's health
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, twitterapi.ErrUserNotFound) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warnf("circuit breaker %s: %s -> %s", name, from, to)
		},
	}
}

func (p *Provider) LiveConfigured() bool {
	return p.live != nil
}

// Fetch always returns a usable record; upstream problems only change its
// data source tag.
func (p *Provider) Fetch(ctx context.Context, handle string) Record {
	handle = NormalizeHandle(handle)
	return p.resolve(ctx, handle).collapse()
}

func (p *Provider) resolve(ctx context.Context, handle string) outcome {
	if p.live == nil {
		log.Infof("🔄 No Twitter API token, using fallback data for @%s", handle)
		return p.fallback.outcome(handle, REASON_NO_TOKEN)
	}

	log.Infof("🔍 Attempting live Twitter API for @%s", handle)
	result, err := p.breaker.Execute(func() (interface{}, error) {
		return p.fetchLive(ctx, handle)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		log.Infof("⏸️ Twitter API circuit open, using fallback data for @%s", handle)
		return p.fallback.outcome(handle, REASON_CIRCUIT_OPEN)
	}
	if err != nil {
		log.Warnf("❌ Twitter API failed for @%s: %v, falling back", handle, err)
		return p.fallback.outcome(handle, fmt.Sprintf("API Error: %v", err))
	}
	return liveOutcome{record: result.(Record)}
}

func (p *Provider) fetchLive(ctx context.Context, handle string) (Record, error) {
	user, err := p.live.GetUserByUsername(ctx, handle)
	if err != nil {
		return Record{}, err
	}
	tweets, err := p.live.GetUserTweets(ctx, user.Id, twitterapi.MAX_RECENT_TWEETS)
	if err != nil {
		return Record{}, err
	}
	return recordFromLive(user, tweets), nil
}

func recordFromLive(user *twitterapi.User, tweets []twitterapi.Tweet) Record {
	record := Record{
		Username:       user.Username,
		DisplayName:    user.Name,
		Bio:            user.Description,
		Location:       user.Location,
		FollowerCount:  max(0, user.PublicMetrics.FollowersCount),
		FollowingCount: max(0, user.PublicMetrics.FollowingCount),
		TweetCount:     max(0, user.PublicMetrics.TweetCount),
		Verified:       user.Verified,
		ProfileImage:   user.ProfileImageUrl,
		Website:        user.Url,
		RecentActivity: make([]Activity, 0, min(len(tweets), twitterapi.MAX_RECENT_TWEETS)),
	}
	if record.Bio == "" {
		record.Bio = "No bio available"
	}
	if record.Location == "" {
		record.Location = "Location not specified"
	}
	if user.CreatedAt != nil {
		record.CreatedAt = user.CreatedAt.UTC().Format(time.RFC3339)
	}

	sorted := make([]twitterapi.Tweet, len(tweets))
	copy(sorted, tweets)
	sort.SliceStable(sorted, func(i, j int) bool {
		return tweetTime(sorted[i]).After(tweetTime(sorted[j]))
	})
	for _, tweet := range sorted {
		if len(record.RecentActivity) == twitterapi.MAX_RECENT_TWEETS {
			break
		}
		activity := Activity{
			Text:       tweet.Text,
			LikeCount:  max(0, tweet.PublicMetrics.LikeCount),
			ShareCount: max(0, tweet.PublicMetrics.RetweetCount),
			ReplyCount: max(0, tweet.PublicMetrics.ReplyCount),
			QuoteCount: max(0, tweet.PublicMetrics.QuoteCount),
		}
		if tweet.CreatedAt != nil {
			activity.CreatedAt = tweet.CreatedAt.UTC().Format(time.RFC3339)
		}
		record.RecentActivity = append(record.RecentActivity, activity)
	}
	return record
}

func tweetTime(tweet twitterapi.Tweet) time.Time {
	if tweet.CreatedAt == nil {
		return time.Time{}
	}
	return *tweet.CreatedAt
}
