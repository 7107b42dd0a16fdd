package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"schoolprofile/cmd"
)

// DataFile represents a required data file with its download URL
type DataFile struct {
	Name string
	URL  string
}

// RequiredDataFiles lists the CSV files the profile needs, served from baseURL.
func RequiredDataFiles(baseURL string) []DataFile {
	base := strings.TrimRight(baseURL, "/")
	names := []string{schoolDataFile, schoolMessagesFile}
	files := make([]DataFile, 0, len(names))
	for _, name := range names {
		files = append(files, DataFile{
			Name: name,
			URL:  base + "/" + url.PathEscape(name),
		})
	}
	return files
}

// CheckDataFiles checks if all required data files exist in the data directory
func CheckDataFiles(dataDir, baseURL string) ([]DataFile, error) {
	var missing []DataFile

	for _, file := range RequiredDataFiles(baseURL) {
		filePath := filepath.Join(dataDir, file.Name)
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			missing = append(missing, file)
		} else if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", filePath, err)
		}
	}

	return missing, nil
}

// PromptUserForDownload asks the user if they want to download missing files
func PromptUserForDownload(missing []DataFile) bool {
	if len(missing) == 0 {
		return false
	}

	fmt.Println("\n⚠️  Missing required data files:")
	for _, file := range missing {
		fmt.Printf("   - %s\n", file.Name)
	}
	fmt.Println("\nThese files are required to build school profiles.")
	fmt.Print("\nWould you like to download them now? (y/N): ")

	var response string
	fmt.Scanln(&response)
	response = strings.ToLower(strings.TrimSpace(response))

	return response == "y" || response == "yes"
}

// ProgressCounter counts bytes as they're written and displays progress
type ProgressCounter struct {
	Total      int64
	Current    int64
	Name       string
	FileIndex  int
	TotalFiles int
	Out        io.Writer
}

func (pc *ProgressCounter) Write(p []byte) (int, error) {
	n := len(p)
	pc.Current += int64(n)
	if pc.Out == nil {
		return n, nil
	}

	currentKB := pc.Current / 1024
	if pc.Total > 0 {
		percentage := float64(pc.Current) / float64(pc.Total) * 100
		fmt.Fprintf(pc.Out, "\r   Downloading %s... %.1f%% (%d/%d KB) [%d/%d]",
			pc.Name, percentage, currentKB, pc.Total/1024, pc.FileIndex, pc.TotalFiles)
	} else {
		fmt.Fprintf(pc.Out, "\r   Downloading %s... %d KB [%d/%d]",
			pc.Name, currentKB, pc.FileIndex, pc.TotalFiles)
	}
	return n, nil
}

// Downloader fetches data files over HTTP.
type Downloader struct {
	client *http.Client
	out    io.Writer
}

func NewDownloader(out io.Writer) *Downloader {
	return &Downloader{
		client: &http.Client{Timeout: 5 * time.Minute},
		out:    out,
	}
}

// Download writes file into dataDir. The body goes to a temp file first so
// a failed transfer never leaves a truncated CSV behind.
func (d *Downloader) Download(ctx context.Context, dataDir string, file DataFile, index, total int) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.URL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", file.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status fetching %s: %s", file.URL, resp.Status)
	}

	tmp, err := os.CreateTemp(dataDir, ".download-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	counter := &ProgressCounter{
		Total:      resp.ContentLength,
		Name:       file.Name,
		FileIndex:  index,
		TotalFiles: total,
		Out:        d.out,
	}
	_, err = io.Copy(tmp, io.TeeReader(resp.Body, counter))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if d.out != nil {
		fmt.Fprintln(d.out)
	}
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", file.Name, err)
	}

	if err := os.Rename(tmp.Name(), filepath.Join(dataDir, file.Name)); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", file.Name, err)
	}
	if logger != nil {
		logger.Info("Downloaded data file", "file", file.Name, "bytes", counter.Current)
	}
	return nil
}

// DownloadFiles downloads every file in order, stopping at the first failure.
func (d *Downloader) DownloadFiles(ctx context.Context, dataDir string, files []DataFile) error {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	for i, file := range files {
		if err := d.Download(ctx, dataDir, file, i+1, len(files)); err != nil {
			return err
		}
	}
	return nil
}

// downloadData backs the download command. With force every file is
// fetched again, otherwise only the missing ones.
func downloadData(cfg cmd.Config, force bool) error {
	files := RequiredDataFiles(cfg.DataBaseURL)
	if !force {
		missing, err := CheckDataFiles(cfg.DataDir, cfg.DataBaseURL)
		if err != nil {
			return err
		}
		files = missing
	}
	if len(files) == 0 {
		fmt.Println("✅ All data files are present.")
		return nil
	}

	fmt.Println("\n📥 Downloading data files...")
	if err := NewDownloader(os.Stdout).DownloadFiles(context.Background(), cfg.DataDir, files); err != nil {
		return err
	}
	fmt.Println("✅ All data files downloaded successfully!")
	return nil
}
