// Copyright 2025 SentinelAI Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/sentinelai/sentinel"
	"github.com/sentinelai/sentinel/ai"
	"github.com/sentinelai/sentinel/reindex"
	"github.com/sentinelai/sentinel/server"
	"github.com/sentinelai/sentinel/watcher"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "sentinel",
		Usage: "Local GDPR-compliant document intelligence system",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API server",
				Action: serveCommand,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "host",
						Usage: "HTTP listen address",
						Value: "127.0.0.1",
					},
					&cli.IntFlag{
						Name:    "port",
						Aliases: []string{"p"},
						Usage:   "HTTP listen port",
						Value:   8000,
					},
					&cli.StringFlag{
						Name:  "allowed-origin",
						Usage: "CORS allowed origin",
						Value: "*",
					},
				}, aiFlags()...),
			},
			{
				Name:   "watch",
				Usage:  "Watch an inbox directory and ingest dropped files",
				Action: watchCommand,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "inbox",
						Aliases:  []string{"i"},
						Usage:    "Inbox directory to watch",
						Required: true,
					},
					&cli.DurationFlag{
						Name:  "stability-window",
						Usage: "How long a file's size must stay unchanged before ingestion",
						Value: watcher.DefaultStabilityWindow,
					},
				}, aiFlags()...),
			},
			{
				Name:      "ingest",
				Usage:     "Ingest document files from the command line",
				ArgsUsage: "FILE [FILE...]",
				Action:    ingestCommand,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "user",
						Aliases: []string{"u"},
						Usage:   "User the documents are ingested for",
					},
				}, aiFlags()...),
			},
			{
				Name:      "search",
				Usage:     "Search the stored documents",
				ArgsUsage: "QUERY",
				Action:    searchCommand,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results",
						Value:   5,
					},
				}, aiFlags()...),
			},
			{
				Name:   "reindex",
				Usage:  "Regenerate embeddings for all stored chunks",
				Action: reindexCommand,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks to process in each batch",
						Value: 50,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N chunks",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed embedding calls",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				}, aiFlags()...),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// aiFlags are the model service flags shared by every command.
func aiFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "ollama-host",
			Usage: "Ollama server base URL",
			Value: "http://localhost:11434",
		},
		&cli.StringFlag{
			Name:  "chat-model",
			Usage: "Chat model name",
			Value: "llama3.2",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "nomic-embed-text",
		},
	}
}

// openSystem builds the system from the shared flags.
func openSystem(c *cli.Context) (*sentinel.System, error) {
	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("ollama-host")),
		ai.WithChatModel(c.String("chat-model")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	system, err := sentinel.NewSystem(c.String("db"), sentinel.WithAIConfig(aiConfig))
	if err != nil {
		return nil, fmt.Errorf("failed to open system: %w", err)
	}
	return system, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func serveCommand(c *cli.Context) error {
	system, err := openSystem(c)
	if err != nil {
		return err
	}
	defer system.Close()

	config := &server.Config{
		Host:          c.String("host"),
		Port:          c.Int("port"),
		AllowedOrigin: c.String("allowed-origin"),
	}

	srv, err := server.New(system, config)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	defer srv.Close()

	ctx, cancel := signalContext()
	defer cancel()

	// The server starts either way; without the model service, uploads
	// and chat return errors while stored data stays available.
	if err := system.Provider().WaitReady(ctx); err != nil {
		slog.Warn("model service not ready, starting in restricted mode", "err", err)
	}

	return srv.Run(ctx)
}

func watchCommand(c *cli.Context) error {
	system, err := openSystem(c)
	if err != nil {
		return err
	}
	defer system.Close()

	pipeline, err := system.NewIngestionPipeline()
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	w, err := watcher.NewWatcher(c.String("inbox"), pipeline,
		watcher.WithStabilityWindow(c.Duration("stability-window")))
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one file is required")
	}

	system, err := openSystem(c)
	if err != nil {
		return err
	}
	defer system.Close()

	pipeline, err := system.NewIngestionPipeline()
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	ctx, cancel := signalContext()
	defer cancel()

	for _, path := range c.Args().Slice() {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		doc, err := pipeline.Ingest(ctx, filepath.Base(path), data, c.String("user"))
		if err != nil {
			return fmt.Errorf("failed to ingest %s: %w", path, err)
		}

		fmt.Printf("%s: %s (%d chunks, pii: %s)\n", doc.Filename, doc.Id, doc.ChunkCount, doc.PIISummary)
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("a search query is required")
	}

	system, err := openSystem(c)
	if err != nil {
		return err
	}
	defer system.Close()

	searcher, err := system.NewSearcher()
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	results, err := searcher.FindRelevant(ctx, query, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No matching documents.")
		return nil
	}

	for i, result := range results {
		fmt.Printf("%d. [%.3f] %s (chunk %d)\n", i+1, result.Score, result.Document.Filename, result.Chunk.Seq)
		fmt.Printf("   %s\n", firstLine(result.Chunk.Text, 120))
	}
	return nil
}

func reindexCommand(c *cli.Context) error {
	system, err := openSystem(c)
	if err != nil {
		return err
	}
	defer system.Close()

	config := &reindex.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}

	reindexer, err := system.NewReindexer(config, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to create reindexer: %w", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n\n", c.String("embedding-model"))

	if err := reindexer.Run(ctx); err != nil {
		return fmt.Errorf("reindexing failed: %w", err)
	}
	return nil
}

// firstLine trims a chunk preview to a single line of at most n bytes.
func firstLine(text string, n int) string {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	if len(text) > n {
		text = text[:n] + "..."
	}
	return text
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
