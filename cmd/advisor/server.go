package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"

	"github.com/scicon/advisor/internal/advisor"
	"github.com/scicon/advisor/internal/api"
	"github.com/scicon/advisor/internal/catalog"
	"github.com/scicon/advisor/internal/config"
	"github.com/scicon/advisor/internal/eventlog"
	"github.com/scicon/advisor/internal/intent"
	"github.com/scicon/advisor/internal/search"
	"github.com/scicon/advisor/internal/spareparts"
	"github.com/scicon/advisor/internal/storage"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the advisor server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running advisor server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return stopServer()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show advisor system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus()
	},
}

func pidFilePath(dataDir string) string {
	return filepath.Join(dataDir, "advisor.pid")
}

func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func removePIDFile(path string) {
	os.Remove(path)
}

func runServer() error {
	fmt.Fprintf(os.Stderr, "advisor version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	// Write PID file. Check if the server is already running via health endpoint.
	pidPath := pidFilePath(cfg.DataDir)
	healthURL := fmt.Sprintf("http://127.0.0.1:%d/health", cfg.Port)
	healthClient := &http.Client{Timeout: 2 * time.Second}
	if resp, err := healthClient.Get(healthURL); err == nil {
		resp.Body.Close()
		if pid, pidErr := readPIDFile(pidPath); pidErr == nil {
			printWarning("advisor is already running (PID %d)", pid)
			return fmt.Errorf("server already running (PID %d)", pid)
		}
		printWarning("advisor is already running on port %d", cfg.Port)
		return fmt.Errorf("server already running on port %d", cfg.Port)
	}
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer removePIDFile(pidPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Open the event log backend.
	var log eventlog.Log
	switch cfg.StorageBackend {
	case config.BackendSQLite:
		store, err := storage.Open(cfg.DataDir)
		if err != nil {
			return fmt.Errorf("opening storage: %w", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "warning: closing storage: %v\n", err)
			}
		}()
		log = store
	default:
		log = eventlog.NewFileLog(cfg.EventLogPath)
	}

	parts := spareparts.NewCSVCache(cfg.SparePartsCSV)

	// Intent classification and semantic search both need an OpenAI key.
	// Without one the advisor still works: the classifier answers with the
	// default intent and /chat/products reports unavailable.
	var (
		classifier advisor.Classifier = intent.Static{}
		chat       api.ProductAdvisor
	)
	if cfg.OpenAIAPIKey != "" {
		client := openai.NewClient(cfg.OpenAIAPIKey)
		classifier = intent.New(client, cfg.OpenAIModel)

		embedder := search.NewOpenAIEmbedder(client, cfg.EmbeddingModel)
		vectors := search.NewQdrantStore(search.QdrantConfig{
			URL:        cfg.QdrantURL,
			APIKey:     cfg.QdrantAPIKey,
			Collection: cfg.QdrantCollection,
		})
		searcher := search.NewSearcher(embedder, vectors, cfg.SearchTopK)
		chat = search.NewAdvisor(searcher, client, cfg.OpenAIModel)
	} else {
		slog.Warn("OPENAI_API_KEY not set: using default intent and disabling product search")
	}

	svc := advisor.New(log, classifier, catalog.Default(), parts, nil)

	handler := api.NewHandler(api.AppDeps{
		Advisor: svc,
		Chat:    chat,
		Parts:   parts,
		Token:   cfg.APIToken,
	})

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: handler,
	}

	// Build and start MCP server (stdio transport in a goroutine).
	mcpSrv := api.NewMCPServer(api.MCPDeps{
		Advisor: svc,
		Chat:    chat,
	})
	stdioSrv := server.NewStdioServer(mcpSrv)
	go func() {
		if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("MCP stdio server error", "error", err)
		}
	}()
	slog.Info("MCP server started (stdio transport)")

	// Start server in a goroutine.
	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "advisor listening on %s\n", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for signal or server error.
	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	// Graceful shutdown with timeout.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func stopServer() error {
	cfg, err := config.Load()
	if err != nil {
		printError("could not load config: %v", err)
		return err
	}

	pidPath := pidFilePath(cfg.DataDir)
	pid, err := readPIDFile(pidPath)
	if err != nil {
		printError("advisor is not running (no PID file)")
		return fmt.Errorf("not running: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		printError("could not find process %d", pid)
		return err
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		printError("could not stop advisor (PID %d): %v", pid, err)
		removePIDFile(pidPath)
		return err
	}

	printSuccess("Sent stop signal to advisor (PID %d)", pid)
	return nil
}

func showStatus() error {
	cfg, err := config.Load()
	if err != nil {
		printError("config error: %v", err)
		return nil
	}

	serverURL := fmt.Sprintf("http://127.0.0.1:%d", cfg.Port)
	client := &http.Client{Timeout: 2 * time.Second}

	resp, err := client.Get(serverURL + "/health")
	if err != nil {
		printStatus("Server", "stopped")
	} else {
		resp.Body.Close()
		if resp.StatusCode == 200 {
			printStatus("Server", "running on port %d", cfg.Port)
		} else {
			printStatus("Server", "error (HTTP %d)", resp.StatusCode)
		}
	}

	printStatus("Storage", "%s", cfg.StorageBackend)
	if cfg.StorageBackend == config.BackendSQLite {
		if store, err := storage.Open(cfg.DataDir); err == nil {
			if n, err := store.CountEvents(); err == nil {
				printStatus("Events", "%d", n)
			}
			store.Close()
		}
	} else {
		printStatus("Event log", "%s", cfg.EventLogPath)
	}

	if cfg.OpenAIAPIKey != "" {
		printStatus("Intent model", "%s", cfg.OpenAIModel)
		printStatus("Embedding model", "%s", cfg.EmbeddingModel)
		printStatus("Qdrant", "%s (%s)", cfg.QdrantURL, cfg.QdrantCollection)
	} else {
		printStatus("LLM", "not configured")
	}

	printStatus("Spare parts CSV", "%s", cfg.SparePartsCSV)
	printStatus("Data dir", "%s", cfg.DataDir)
	return nil
}
