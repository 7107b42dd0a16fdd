package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"schoolprofile/cmd"
)

var logger *slog.Logger

// setupLogger creates and configures the application logger
func setupLogger(dataDir, level string) error {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	logPath := filepath.Join(dataDir, "err.log")

	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	handler := slog.NewJSONHandler(logFile, &slog.HandlerOptions{
		Level:     parseLogLevel(level),
		AddSource: true,
	})

	logger = slog.New(handler)
	logger.Info("Application started", "version", "1.0", "data_dir", dataDir)

	return nil
}

func parseLogLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return slog.LevelInfo
	}
	return l
}

// renderMarkdown renders markdown content with glamour
func renderMarkdown(content string, width int) (string, error) {
	// Account for borders, padding, and glamour's internal gutter
	const glamourGutter = 2
	const borderWidth = 4

	renderWidth := width - borderWidth - glamourGutter
	if renderWidth < 40 {
		renderWidth = 40
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(renderWidth),
	)
	if err != nil {
		return "", err
	}

	rendered, err := renderer.Render(content)
	if err != nil {
		return "", err
	}

	return rendered, nil
}

// ensureDataFiles offers to download missing files when interactive is set.
func ensureDataFiles(cfg cmd.Config, interactive bool) error {
	missing, err := CheckDataFiles(cfg.DataDir, cfg.DataBaseURL)
	if err != nil {
		return fmt.Errorf("failed to check data files: %w", err)
	}
	if len(missing) == 0 {
		return nil
	}

	if !interactive {
		return fmt.Errorf("missing required data files, run 'schoolprofile download' first")
	}
	if !PromptUserForDownload(missing) {
		if logger != nil {
			logger.Warn("User declined to download required data files", "missing_files", len(missing))
		}
		return fmt.Errorf("cannot proceed without required data files")
	}
	return downloadData(cfg, false)
}

func launchTUI(cfg cmd.Config) {
	if err := setupLogger(cfg.DataDir, cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to setup logger: %v\n", err)
	}

	if err := ensureDataFiles(cfg, true); err != nil {
		if logger != nil {
			logger.Error("Data files unavailable", "error", err, "data_dir", cfg.DataDir)
		}
		fmt.Fprintf(os.Stderr, "\n❌ %v\n", err)
		os.Exit(1)
	}

	db, err := NewDB(cfg.DataDir)
	if err != nil {
		if logger != nil {
			logger.Error("Failed to initialize database", "error", err, "data_dir", cfg.DataDir)
		}
		fmt.Fprintf(os.Stderr, "Error initializing database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	svc, err := NewProfileService(db, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading school data: %v\n", err)
		os.Exit(1)
	}

	// AI overview is optional and needs ANTHROPIC_API_KEY
	var overviewer *AISummaryService
	if os.Getenv("ANTHROPIC_API_KEY") != "" {
		overviewer, err = initOverviewer(svc, cfg.Model)
		if err != nil {
			if logger != nil {
				logger.Warn("AI overview initialization failed", "error", err)
			}
			overviewer = nil
		}
	}

	p := tea.NewProgram(
		initialModel(svc, overviewer),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

// initService opens the database and loads the profile service for CLI
// commands and the web server.
func initService(cfg cmd.Config) (cmd.Service, func(), error) {
	if err := setupLogger(cfg.DataDir, cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to setup logger: %v\n", err)
	}

	if err := ensureDataFiles(cfg, false); err != nil {
		return nil, nil, err
	}

	db, err := NewDB(cfg.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	svc, err := NewProfileService(db, cfg)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to load school data: %w", err)
	}

	cleanup := func() {
		svc.Close()
	}
	return svc, cleanup, nil
}

func initCmdOverviewer(svc cmd.Service, cfg cmd.Config) (cmd.Overviewer, error) {
	ps, _ := svc.(*ProfileService)
	return initOverviewer(ps, cfg.Model)
}

func startServer(svc cmd.Service, cfg cmd.Config) error {
	ps, ok := svc.(*ProfileService)
	if !ok {
		return fmt.Errorf("unsupported service %T", svc)
	}
	return NewServer(ps, cfg).Start()
}

func main() {
	cmd.LaunchTUI = launchTUI
	cmd.InitService = initService
	cmd.InitOverviewer = initCmdOverviewer
	cmd.StartServer = startServer
	cmd.ExportXLSX = ExportProfileXLSX
	cmd.DownloadData = downloadData
	cmd.RenderProfile = renderProfile

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
