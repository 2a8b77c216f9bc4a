package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/grutapig/colddm/log"
	"github.com/joho/godotenv"
)

func main() {
	configFile := flag.String("config", ".env", "Configuration file to load (e.g., .env, .dev.env, .prod.env)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Cold DM Personalizer - streaming outreach message server\n\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		fmt.Fprintf(os.Stderr, "  -config string\n")
		fmt.Fprintf(os.Stderr, "        Configuration file to load (default: .env)\n")
		fmt.Fprintf(os.Stderr, "  -help, -h\n")
		fmt.Fprintf(os.Stderr, "        Show this help information\n\n")
		fmt.Fprintf(os.Stderr, "Examples:\n")
		fmt.Fprintf(os.Stderr, "  %s                    # Run with .env if present\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -config .dev.env   # Run with development config\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Note: Environment variables already set are not overridden by the config file\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *configFile != "" {
		if err := godotenv.Load(*configFile); err != nil {
			log.Warnf("Warning: Failed to load config file %s: %v", *configFile, err)
			log.Infof("Continuing with environment variables...")
		} else {
			log.Infof("Successfully loaded configuration from %s", *configFile)
		}
	}
	log.SetLevel(os.Getenv(ENV_LOG_LEVEL))

	container, err := BuildContainer()
	if err != nil {
		log.Fatalf("Failed to build container: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = container.Invoke(func(app *Application) error {
		if err := app.Initialize(); err != nil {
			return fmt.Errorf("initialize application: %w", err)
		}
		defer app.Shutdown()

		return app.Run(ctx)
	})
	if err != nil {
		log.Fatalf("Failed to run application: %v", err)
	}
}
