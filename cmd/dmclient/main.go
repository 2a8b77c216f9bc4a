package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/grutapig/colddm/consumer"
	"github.com/grutapig/colddm/sse"
	"github.com/joho/godotenv"
)

const ENV_SERVER_URL = "colddm_server_url"

type metadataView struct {
	ChatId      string `json:"chatId"`
	Title       string `json:"title"`
	TwitterData struct {
		SourceLabel     string `json:"source_label"`
		EngagementScore int    `json:"engagement_score"`
	} `json:"twitterData"`
}

func main() {
	_ = godotenv.Load()

	serverURL := flag.String("server", envOr(ENV_SERVER_URL, consumer.DEFAULT_SERVER_URL), "Cold DM server base URL")
	handle := flag.String("handle", "", "Target account handle, with or without @")
	motive := flag.String("motive", "", "Why you are reaching out")
	timeout := flag.Duration("timeout", 2*time.Minute, "Give up after this long")
	flag.Parse()

	if *handle == "" || *motive == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -handle <handle> -motive <text> [-server %s]\n", os.Args[0], consumer.DEFAULT_SERVER_URL)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	fmt.Printf("🚀 Generating cold DM for %s via %s\n", *handle, *serverURL)
	startTime := time.Now()

	client := consumer.NewClient(*serverURL)
	state, err := client.Generate(ctx, *handle, *motive, printEvent)

	var streamErr *consumer.StreamError
	switch {
	case errors.As(err, &streamErr):
		fmt.Printf("❌ %s\n", streamErr.Message)
		os.Exit(1)
	case err != nil:
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}

	var meta metadataView
	if err := state.DecodeMetadata(&meta); err == nil {
		fmt.Printf("\n📌 %s (%s)\n", meta.Title, meta.ChatId)
		fmt.Printf("📊 Source: %s, engagement score %d\n", meta.TwitterData.SourceLabel, meta.TwitterData.EngagementScore)
	}
	if state.SkippedFrames > 0 {
		fmt.Printf("⚠️ Skipped %d undecodable frames\n", state.SkippedFrames)
	}
	fmt.Printf("✅ Done in %s\n", time.Since(startTime).Round(time.Millisecond))
}

func printEvent(event sse.Event, _ *consumer.State) {
	switch event.Kind {
	case sse.KindThinkingUpdate:
		fmt.Printf("   %s\n", event.Text)
	case sse.KindFinalResponse:
		fmt.Printf("\n💬 %s\n", event.Text)
	}
}

func envOr(key string, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
