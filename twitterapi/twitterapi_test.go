package twitterapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *TwitterAPIService {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	api, err := NewTwitterAPIService("test-bearer", server.URL, "")
	require.NoError(t, err)
	return api
}

func TestTwitterAPIService_GetUserByUsername(t *testing.T) {
	api := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2/users/by/username/jack", r.URL.Path)
		assert.Equal(t, "Bearer test-bearer", r.Header.Get("Authorization"))
		assert.Equal(t, USER_FIELDS, r.URL.Query().Get("user.fields"))
		w.Write([]byte(`{"data":{"id":"12","name":"jack","username":"jack","description":"no state is the best state","location":"","verified":true,"created_at":"2006-03-21T20:50:14.000Z","public_metrics":{"followers_count":6400000,"following_count":4500,"tweet_count":29000,"listed_count":30000}}}`))
	})

	user, err := api.GetUserByUsername(context.Background(), "jack")
	require.NoError(t, err)
	assert.Equal(t, "12", user.Id)
	assert.Equal(t, "no state is the best state", user.Description)
	assert.Equal(t, 6400000, user.PublicMetrics.FollowersCount)
	assert.True(t, user.Verified)
	require.NotNil(t, user.CreatedAt)
	assert.Equal(t, 2006, user.CreatedAt.Year())
}

func TestTwitterAPIService_GetUserByUsername_NotFound(t *testing.T) {
	t.Run("errors payload", func(t *testing.T) {
		api := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"errors":[{"title":"Not Found Error","detail":"Could not find user with username: [nobody].","type":"https://api.twitter.com/2/problems/resource-not-found"}]}`))
		})
		_, err := api.GetUserByUsername(context.Background(), "nobody")
		assert.True(t, errors.Is(err, ErrUserNotFound))
		assert.Contains(t, err.Error(), "Could not find user")
	})

	t.Run("404", func(t *testing.T) {
		api := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
		_, err := api.GetUserByUsername(context.Background(), "nobody")
		assert.True(t, errors.Is(err, ErrUserNotFound))
	})
}

func TestTwitterAPIService_GetUserByUsername_StatusError(t *testing.T) {
	api := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"title":"Too Many Requests"}`))
	})

	_, err := api.GetUserByUsername(context.Background(), "jack")
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	assert.False(t, errors.Is(err, ErrUserNotFound))
}

func TestTwitterAPIService_GetUserTweets(t *testing.T) {
	api := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2/users/12/tweets", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("max_results"))
		assert.Equal(t, TWEET_FIELDS, r.URL.Query().Get("tweet.fields"))
		w.Write([]byte(`{"data":[
			{"id":"3","text":"newest","created_at":"2024-05-03T10:00:00.000Z","public_metrics":{"retweet_count":2,"reply_count":1,"like_count":10,"quote_count":0}},
			{"id":"2","text":"middle","created_at":"2024-05-02T10:00:00.000Z","public_metrics":{"retweet_count":1,"reply_count":0,"like_count":5,"quote_count":1}}
		],"meta":{"result_count":2,"newest_id":"3","oldest_id":"2"}}`))
	})

	tweets, err := api.GetUserTweets(context.Background(), "12", 2)
	require.NoError(t, err)
	require.Len(t, tweets, 2)
	assert.Equal(t, "newest", tweets[0].Text)
	assert.Equal(t, 10, tweets[0].PublicMetrics.LikeCount)
	assert.Equal(t, 1, tweets[1].PublicMetrics.QuoteCount)
}

func TestTwitterAPIService_GetUserTweets_Truncates(t *testing.T) {
	api := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"id":"1","text":"a"},{"id":"2","text":"b"},{"id":"3","text":"c"},{"id":"4","text":"d"},{"id":"5","text":"e"},{"id":"6","text":"f"}]}`))
	})

	tweets, err := api.GetUserTweets(context.Background(), "12", MAX_RECENT_TWEETS)
	require.NoError(t, err)
	assert.Len(t, tweets, MAX_RECENT_TWEETS)
}

func TestNewTwitterAPIService_BadProxy(t *testing.T) {
	_, err := NewTwitterAPIService("token", "", "://bad proxy")
	assert.Error(t, err)
}
