package twitterapi

import (
	"fmt"
	"time"
)

const USER_FIELDS = "description,location,public_metrics,verified,created_at,profile_image_url,url"
const TWEET_FIELDS = "public_metrics,created_at"

type APIResponse struct {
	StatusCode int                 `json:"status_code"`
	Headers    map[string][]string `json:"headers"`
	RawBody    []byte              `json:"raw_body"`
}

type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("error %s, status non 200 (%d): %s", e.Endpoint, e.StatusCode, e.Body)
}

type User struct {
	Id              string            `json:"id"`
	Name            string            `json:"name"`
	Username        string            `json:"username"`
	Description     string            `json:"description"`
	Location        string            `json:"location"`
	Url             string            `json:"url"`
	ProfileImageUrl string            `json:"profile_image_url"`
	Verified        bool              `json:"verified"`
	CreatedAt       *time.Time        `json:"created_at"`
	PublicMetrics   UserPublicMetrics `json:"public_metrics"`
}

type UserPublicMetrics struct {
	FollowersCount int `json:"followers_count"`
	FollowingCount int `json:"following_count"`
	TweetCount     int `json:"tweet_count"`
	ListedCount    int `json:"listed_count"`
}

type Tweet struct {
	Id            string             `json:"id"`
	Text          string             `json:"text"`
	CreatedAt     *time.Time         `json:"created_at"`
	PublicMetrics TweetPublicMetrics `json:"public_metrics"`
}

type TweetPublicMetrics struct {
	RetweetCount int `json:"retweet_count"`
	ReplyCount   int `json:"reply_count"`
	LikeCount    int `json:"like_count"`
	QuoteCount   int `json:"quote_count"`
}

type APIError struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Type   string `json:"type"`
}

type UserResponse struct {
	Data   *User      `json:"data"`
	Errors []APIError `json:"errors"`
}

type TimelineResponse struct {
	Data []Tweet `json:"data"`
	Meta struct {
		ResultCount int    `json:"result_count"`
		NewestId    string `json:"newest_id"`
		OldestId    string `json:"oldest_id"`
	} `json:"meta"`
}
