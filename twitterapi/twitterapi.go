package twitterapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const DEFAULT_BASE_URL = "https://api.twitter.com"
const MAX_RECENT_TWEETS = 5

var ErrUserNotFound = errors.New("user not found")

type TwitterAPIService struct {
	bearerToken string
	httpClient  *http.Client
	baseUrl     string
}

func NewTwitterAPIService(bearerToken string, baseUrl string, proxyDSN string) (*TwitterAPIService, error) {
	transport := &http.Transport{}
	if proxyDSN != "" {
		proxyURL, err := url.Parse(proxyDSN)
		if err != nil {
			return nil, fmt.Errorf("twitter api proxy dsn error: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}
	if baseUrl == "" {
		baseUrl = DEFAULT_BASE_URL
	}

	return &TwitterAPIService{
		bearerToken: bearerToken,
		baseUrl:     baseUrl,
		httpClient: &http.Client{
			Timeout:   10 * time.Second,
			Transport: transport,
		},
	}, nil
}

func (s *TwitterAPIService) makeRequest(ctx context.Context, uri string, params map[string]string) (*APIResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("error create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.bearerToken)
	req.Header.Set("Accept", "application/json")

	q := req.URL.Query()
	for key, value := range params {
		if value != "" {
			q.Add(key, value)
		}
	}
	req.URL.RawQuery = q.Encode()

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error send request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error read response: %w", err)
	}

	return &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		RawBody:    bodyBytes,
	}, nil
}

// GetUserByUsername resolves a handle to its profile. The v2 API reports
// unknown users as a 200 with an "errors" array and no data; that case and a
// plain 404 both yield ErrUserNotFound.
func (s *TwitterAPIService) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	uri := s.baseUrl + "/2/users/by/username/" + url.PathEscape(username)

	params := map[string]string{
		"user.fields": USER_FIELDS,
	}

	response, err := s.makeRequest(ctx, uri, params)
	if err != nil {
		return nil, fmt.Errorf("error user by username: %w", err)
	}
	if response.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("error user by username @%s: %w", username, ErrUserNotFound)
	}
	if response.StatusCode != http.StatusOK {
		return nil, &StatusError{Endpoint: "users/by/username", StatusCode: response.StatusCode, Body: string(response.RawBody)}
	}

	userResponse := UserResponse{}
	if err := json.Unmarshal(response.RawBody, &userResponse); err != nil {
		return nil, fmt.Errorf("error user by username unmarshal: %w", err)
	}
	if userResponse.Data == nil {
		detail := ""
		if len(userResponse.Errors) > 0 {
			detail = ": " + userResponse.Errors[0].Detail
		}
		return nil, fmt.Errorf("error user by username @%s%s: %w", username, detail, ErrUserNotFound)
	}
	return userResponse.Data, nil
}

// GetUserTweets returns up to maxResults of the user's latest tweets, newest first.
func (s *TwitterAPIService) GetUserTweets(ctx context.Context, userID string, maxResults int) ([]Tweet, error) {
	uri := s.baseUrl + "/2/users/" + url.PathEscape(userID) + "/tweets"

	// the endpoint rejects max_results outside [5, 100]
	params := map[string]string{
		"max_results":  strconv.Itoa(min(100, max(5, maxResults))),
		"tweet.fields": TWEET_FIELDS,
	}

	response, err := s.makeRequest(ctx, uri, params)
	if err != nil {
		return nil, fmt.Errorf("error user tweets: %w", err)
	}
	if response.StatusCode != http.StatusOK {
		return nil, &StatusError{Endpoint: "users/tweets", StatusCode: response.StatusCode, Body: string(response.RawBody)}
	}

	timelineResponse := TimelineResponse{}
	if err := json.Unmarshal(response.RawBody, &timelineResponse); err != nil {
		return nil, fmt.Errorf("error user tweets unmarshal: %w", err)
	}
	tweets := timelineResponse.Data
	if maxResults >= 0 && len(tweets) > maxResults {
		tweets = tweets[:maxResults]
	}
	return tweets, nil
}
