// package formatter exports movie collections and recommendation history to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/cinehint/internal/models"
	"github.com/desertthunder/cinehint/internal/shared"
)

// PosterBaseURL prefixes TMDB poster paths.
const PosterBaseURL = "https://image.tmdb.org/t/p/w500"

// Format is an export format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "txt"
)

// ParseFormat accepts a format name or a common alias.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	}
	return "", fmt.Errorf("%w: unknown format %q (use json, csv, markdown or txt)", shared.ErrInvalidFlag, s)
}

// Ext returns the file extension for f.
func (f Format) Ext() string {
	if f == FormatMarkdown {
		return ".md"
	}
	return "." + string(f)
}

// Collection is a named list of movies, such as the watchlist.
type Collection struct {
	Name   string
	Movies []models.MovieRef
}

// PosterURL returns the full poster URL for a TMDB poster path.
func PosterURL(posterPath string) string {
	if posterPath == "" || strings.HasPrefix(posterPath, "http") {
		return posterPath
	}
	return PosterBaseURL + "/" + strings.TrimPrefix(posterPath, "/")
}

// FormatRuntime renders minutes as "2h 10m".
func FormatRuntime(minutes int) string {
	if minutes <= 0 {
		return ""
	}
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %02dm", minutes/60, minutes%60)
}

// FormatRating renders a rating with one decimal, or "-" when unknown.
func FormatRating(r *float64) string {
	if r == nil {
		return "-"
	}
	return strconv.FormatFloat(*r, 'f', 1, 64)
}

func formatYear(y *int) string {
	if y == nil || *y == 0 {
		return ""
	}
	return strconv.Itoa(*y)
}

func formatAdded(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}

// ExportToCSV converts a Collection to CSV format with columns: TMDB ID, Title, Year, Rating, Genres, Added
func ExportToCSV(c Collection) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"TMDB ID", "Title", "Year", "Rating", "Genres", "Added"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, m := range c.Movies {
		rating := ""
		if m.Rating != nil {
			rating = FormatRating(m.Rating)
		}
		record := []string{
			strconv.Itoa(m.TMDBID),
			m.Title,
			formatYear(m.Year),
			rating,
			strings.Join(m.Genres, "|"),
			formatAdded(m.AddedAt),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a Collection to Markdown. posters maps tmdbId to an image link; missing entries are skipped.
func ExportToMarkdown(c Collection, posters map[int]string) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", c.Name)
	fmt.Fprintf(&buf, "**Movies**: %d\n\n", len(c.Movies))

	for i, m := range c.Movies {
		fmt.Fprintf(&buf, "%d. **%s**", i+1, m.Title)
		if y := formatYear(m.Year); y != "" {
			fmt.Fprintf(&buf, " (%s)", y)
		}
		if m.Rating != nil {
			fmt.Fprintf(&buf, " ⭐ %s", FormatRating(m.Rating))
		}
		if len(m.Genres) > 0 {
			fmt.Fprintf(&buf, " - %s", strings.Join(m.Genres, ", "))
		}
		buf.WriteString("\n")
		if img := posters[m.TMDBID]; img != "" {
			fmt.Fprintf(&buf, "\n   ![%s](%s)\n\n", m.Title, img)
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts a Collection to plain text format
func ExportToText(c Collection) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s\n", c.Name)
	fmt.Fprintf(&buf, "Movies: %d\n\n", len(c.Movies))

	for i, m := range c.Movies {
		line := m.Title
		if y := formatYear(m.Year); y != "" {
			line += " (" + y + ")"
		}
		fmt.Fprintf(&buf, "%d. %s [%d]\n", i+1, line, m.TMDBID)
	}

	return buf.Bytes(), nil
}

// HistoryToCSV converts recommendation history to CSV with columns: Movie ID, Title, Outcome, Timestamp
func HistoryToCSV(entries []models.HistoryEntry) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"Movie ID", "Title", "Outcome", "Timestamp"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, h := range entries {
		record := []string{strconv.Itoa(h.MovieID), h.Title, h.Outcome(), h.Timestamp.UTC().Format(time.RFC3339)}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// HistoryToMarkdown renders recommendation history as a Markdown table.
func HistoryToMarkdown(entries []models.HistoryEntry) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("# Recommendation History\n\n")
	buf.WriteString("| Date | Title | Outcome |\n|---|---|---|\n")
	for _, h := range entries {
		title := strings.ReplaceAll(h.Title, "|", "\\|")
		fmt.Fprintf(&buf, "| %s | %s | %s |\n", h.Timestamp.Format(time.DateOnly), title, h.Outcome())
	}
	return buf.Bytes(), nil
}

// HistoryToText renders recommendation history one entry per line.
func HistoryToText(entries []models.HistoryEntry) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Recommendations: %d\n\n", len(entries))
	for _, h := range entries {
		fmt.Fprintf(&buf, "%s  %-10s  %s\n", h.Timestamp.Format(time.DateOnly), h.Outcome(), h.Title)
	}
	return buf.Bytes(), nil
}

// ExportCollection renders c in format f.
func ExportCollection(c Collection, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		return shared.MarshalJSON(c.Movies, true)
	case FormatCSV:
		return ExportToCSV(c)
	case FormatMarkdown:
		posters := make(map[int]string, len(c.Movies))
		for _, m := range c.Movies {
			posters[m.TMDBID] = PosterURL(m.PosterPath)
		}
		return ExportToMarkdown(c, posters)
	case FormatText:
		return ExportToText(c)
	}
	return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, f)
}

// ExportHistory renders entries in format f.
func ExportHistory(entries []models.HistoryEntry, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		return shared.MarshalJSON(entries, true)
	case FormatCSV:
		return HistoryToCSV(entries)
	case FormatMarkdown:
		return HistoryToMarkdown(entries)
	case FormatText:
		return HistoryToText(entries)
	}
	return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, f)
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build image request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// MarkdownExportOpts configures [WriteMarkdownExport].
type MarkdownExportOpts struct {
	HTTPClient      *http.Client
	DownloadPosters bool   // Save posters next to README.md instead of linking them
	PosterBaseURL   string // Defaults to PosterBaseURL
	Warn            func(msg string, kv ...any)
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory string
	Files     []string
	Posters   int
}

// WriteMarkdownExport exports a collection to {dir}/README.md, optionally with posters saved under {dir}/posters.
//
// A poster that fails to download is linked remotely instead.
func WriteMarkdownExport(ctx context.Context, c Collection, outputDir string, opts MarkdownExportOpts) (*MarkdownExportResult, error) {
	if outputDir == "" {
		return nil, fmt.Errorf("%w: output directory", shared.ErrMissingArgument)
	}
	if opts.PosterBaseURL == "" {
		opts.PosterBaseURL = PosterBaseURL
	}
	if opts.Warn == nil {
		opts.Warn = func(string, ...any) {}
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{Directory: outputDir, Files: []string{}}
	posters := make(map[int]string, len(c.Movies))

	for _, m := range c.Movies {
		if m.PosterPath == "" {
			continue
		}
		remote := strings.TrimRight(opts.PosterBaseURL, "/") + "/" + strings.TrimPrefix(m.PosterPath, "/")
		posters[m.TMDBID] = remote
		if !opts.DownloadPosters {
			continue
		}

		data, err := DownloadImage(ctx, opts.HTTPClient, remote)
		if err != nil {
			opts.Warn("failed to download poster", "tmdbId", m.TMDBID, "error", err)
			continue
		}

		name := strconv.Itoa(m.TMDBID) + path.Ext(m.PosterPath)
		if err := os.MkdirAll(filepath.Join(outputDir, "posters"), 0755); err != nil {
			return nil, fmt.Errorf("failed to create poster directory: %w", err)
		}
		posterPath := filepath.Join(outputDir, "posters", name)
		if err := os.WriteFile(posterPath, data, 0644); err != nil {
			opts.Warn("failed to save poster", "tmdbId", m.TMDBID, "error", err)
			continue
		}
		posters[m.TMDBID] = "posters/" + name
		result.Files = append(result.Files, posterPath)
		result.Posters++
	}

	mdData, err := ExportToMarkdown(c, posters)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}
	result.Files = append(result.Files, mdFile)

	return result, nil
}

// WriteExport writes data to file, creating parent directories.
func WriteExport(file string, data []byte) error {
	if dir := filepath.Dir(file); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(file, data, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}
