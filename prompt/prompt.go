// Package prompt renders a profile and an outreach motive into the single
// instruction sent to the generative backend.
package prompt

import (
	"strconv"
	"strings"
	"time"

	"github.com/grutapig/colddm/profile"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const ACTIVITY_SEPARATOR = " | "
const NO_ACTIVITY = "No recent tweets available"

// MESSAGE_BUDGET is the length the backend is asked to stay under. Nothing in
// this package enforces it.
const MESSAGE_BUDGET = 280

var printer = message.NewPrinter(language.English)

// Number formats n with thousands separators, e.g. 150,200,000.
func Number(n int) string {
	return printer.Sprintf("%d", n)
}

// Compose is pure: the same record and motive always give the same text.
// Missing fields render as empty strings or zeros.
func Compose(record profile.Record, motive string) string {
	var b strings.Builder

	b.WriteString("Create a highly personalized cold DM for Twitter user @" + record.Username + " using this comprehensive profile data:\n\n")

	b.WriteString("👤 PROFILE INFORMATION:\n")
	b.WriteString("Name: " + record.DisplayName + "\n")
	b.WriteString("Username: @" + record.Username + "\n")
	b.WriteString("Bio: " + record.Bio + "\n")
	b.WriteString("Location: " + record.Location + "\n")
	b.WriteString("Website: " + record.Website + "\n")
	b.WriteString("Data Source: " + record.SourceLabel + "\n\n")

	b.WriteString("📊 ACCOUNT METRICS:\n")
	b.WriteString("Followers: " + Number(record.FollowerCount) + "\n")
	b.WriteString("Following: " + Number(record.FollowingCount) + "\n")
	b.WriteString("Total Tweets: " + Number(record.TweetCount) + "\n")
	b.WriteString("Verified Status: " + verifiedStatus(record.Verified) + "\n")
	b.WriteString("Account Age: " + AccountAge(record.CreatedAt) + "\n\n")

	b.WriteString("📱 RECENT ACTIVITY ANALYSIS:\n")
	b.WriteString(Activity(record.RecentActivity) + "\n\n")

	b.WriteString("🎯 MY OUTREACH MOTIVE:\n")
	b.WriteString(motive + "\n\n")

	b.WriteString(instructions)
	return b.String()
}

// Activity condenses recent posts into one line.
func Activity(items []profile.Activity) string {
	if len(items) == 0 {
		return NO_ACTIVITY
	}
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, printer.Sprintf("\"%s\" (%d ❤️, %d 🔄, %d 💬)", item.Text, item.LikeCount, item.ShareCount, item.ReplyCount))
	}
	return strings.Join(parts, ACTIVITY_SEPARATOR)
}

// AccountAge gives "Since <year>" for a parseable creation timestamp.
func AccountAge(createdAt string) string {
	if createdAt == "" {
		return "Established user"
	}
	created, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return "Established user"
	}
	return "Since " + strconv.Itoa(created.Year())
}

func verifiedStatus(verified bool) string {
	if verified {
		return "✅ Verified Account"
	}
	return "❌ Not Verified"
}

var instructions = `PERSONALIZATION REQUIREMENTS:
- Reference their actual bio, location, or specific recent tweets
- Mention impressive metrics if relevant (high follower count, engagement, etc.)
- Acknowledge their expertise/field based on their content
- Keep it under ` + strconv.Itoa(MESSAGE_BUDGET) + ` characters for Twitter DM compatibility
- Sound genuinely interested, not salesy
- Include a specific, actionable call-to-action
- Match their communication style if possible

Generate only the personalized DM message.`
