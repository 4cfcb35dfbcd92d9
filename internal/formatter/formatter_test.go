package formatter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/cinehint/internal/models"
	"github.com/desertthunder/cinehint/internal/shared"
	th "github.com/desertthunder/cinehint/internal/testing"
)

func ptr[T any](v T) *T { return &v }

func testCollection() Collection {
	added := time.Date(2025, 4, 2, 8, 0, 0, 0, time.UTC)
	return Collection{
		Name: "Watchlist",
		Movies: []models.MovieRef{
			{
				TMDBID:     949,
				Title:      "Heat",
				Genres:     []string{"Crime", "Drama"},
				PosterPath: "/heat.jpg",
				Rating:     ptr(8.3),
				Year:       ptr(1995),
				AddedAt:    &added,
			},
			{
				TMDBID: 680,
				Title:  "Pulp Fiction",
			},
		},
	}
}

func testHistory() []models.HistoryEntry {
	return []models.HistoryEntry{
		{MovieID: 27205, Title: "Inception", Accepted: ptr(true), Timestamp: time.Date(2025, 5, 1, 20, 0, 0, 0, time.UTC)},
		{MovieID: 603, Title: "The Matrix", Accepted: ptr(false), Timestamp: time.Date(2025, 4, 1, 20, 0, 0, 0, time.UTC)},
		{MovieID: 13, Title: "Forrest | Gump", Timestamp: time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC)},
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(testCollection())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "TMDB ID,Title,Year,Rating,Genres,Added") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "949,Heat,1995,8.3,Crime|Drama,2025-04-02") {
			t.Errorf("CSV missing full record, got: %s", output)
		}
		if !strings.Contains(output, "680,Pulp Fiction,,,,") {
			t.Errorf("CSV missing sparse record, got: %s", output)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(testCollection(), map[int]string{949: "posters/949.jpg"})
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"# Watchlist",
			"**Movies**: 2",
			"1. **Heat** (1995) ⭐ 8.3 - Crime, Drama",
			"![Heat](posters/949.jpg)",
			"2. **Pulp Fiction**\n",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(testCollection())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "1. Heat (1995) [949]") || !strings.Contains(output, "2. Pulp Fiction [680]") {
			t.Errorf("unexpected text export:\n%s", output)
		}
	})

	t.Run("History", func(t *testing.T) {
		csvData, err := HistoryToCSV(testHistory())
		if err != nil {
			t.Fatalf("HistoryToCSV failed: %v", err)
		}
		if !strings.Contains(string(csvData), "27205,Inception,accepted,2025-05-01T20:00:00Z") {
			t.Errorf("unexpected CSV:\n%s", csvData)
		}

		md, err := HistoryToMarkdown(testHistory())
		if err != nil {
			t.Fatalf("HistoryToMarkdown failed: %v", err)
		}
		if !strings.Contains(string(md), "| 2025-03-01 | Forrest \\| Gump | no feedback |") {
			t.Errorf("title pipes not escaped:\n%s", md)
		}

		txt, err := HistoryToText(testHistory())
		if err != nil {
			t.Fatalf("HistoryToText failed: %v", err)
		}
		if !strings.Contains(string(txt), "2025-04-01  rejected    The Matrix") {
			t.Errorf("unexpected text:\n%s", txt)
		}
	})

	t.Run("Dispatch", func(t *testing.T) {
		for _, f := range []Format{FormatJSON, FormatCSV, FormatMarkdown, FormatText} {
			if _, err := ExportCollection(testCollection(), f); err != nil {
				t.Errorf("ExportCollection(%s) error = %v", f, err)
			}
			if _, err := ExportHistory(testHistory(), f); err != nil {
				t.Errorf("ExportHistory(%s) error = %v", f, err)
			}
		}

		data, _ := ExportCollection(testCollection(), FormatMarkdown)
		if !strings.Contains(string(data), PosterBaseURL+"/heat.jpg") {
			t.Errorf("markdown dispatch should link remote posters:\n%s", data)
		}
		if _, err := ExportCollection(testCollection(), Format("pdf")); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ext  string
	}{
		{"", FormatJSON, ".json"},
		{"CSV", FormatCSV, ".csv"},
		{"md", FormatMarkdown, ".md"},
		{"text", FormatText, ".txt"},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if err != nil || got != tt.want || got.Ext() != tt.ext {
			t.Errorf("ParseFormat(%q) = %q (%s), %v", tt.in, got, got.Ext(), err)
		}
	}
	if _, err := ParseFormat("xml"); !errors.Is(err, shared.ErrInvalidFlag) {
		t.Errorf("ParseFormat(xml) error = %v", err)
	}
}

func TestHelpers(t *testing.T) {
	if got := FormatRuntime(170); got != "2h 50m" {
		t.Errorf("FormatRuntime(170) = %q", got)
	}
	if got := FormatRuntime(45); got != "45m" {
		t.Errorf("FormatRuntime(45) = %q", got)
	}
	if got := FormatRuntime(0); got != "" {
		t.Errorf("FormatRuntime(0) = %q", got)
	}
	if got := FormatRating(nil); got != "-" {
		t.Errorf("FormatRating(nil) = %q", got)
	}
	if got := PosterURL("/abc.jpg"); got != PosterBaseURL+"/abc.jpg" {
		t.Errorf("PosterURL() = %q", got)
	}
	if got := PosterURL("https://cdn/x.jpg"); got != "https://cdn/x.jpg" {
		t.Errorf("PosterURL(absolute) = %q", got)
	}
}

func TestDownloadImage(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("jpeg-bytes"))
		}))
		defer srv.Close()

		data, err := DownloadImage(ctx, srv.Client(), srv.URL+"/p.jpg")
		if err != nil || string(data) != "jpeg-bytes" {
			t.Errorf("DownloadImage() = %q, %v", data, err)
		}
	})

	t.Run("Status Error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		if _, err := DownloadImage(ctx, srv.Client(), srv.URL); err == nil {
			t.Error("expected error for 404")
		}
	})

	t.Run("Empty URL", func(t *testing.T) {
		if _, err := DownloadImage(ctx, nil, ""); err == nil {
			t.Error("expected error for empty URL")
		}
	})

	t.Run("Transport Error", func(t *testing.T) {
		client := &http.Client{Transport: th.NewMockRoundTripper(nil, errors.New("dial failed"))}
		if _, err := DownloadImage(ctx, client, "http://posters.invalid/p.jpg"); err == nil {
			t.Error("expected transport error")
		}
	})
}

func TestWriteMarkdownExport(t *testing.T) {
	ctx := context.Background()

	t.Run("Downloads Posters", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("poster"))
		}))
		defer srv.Close()

		dir := filepath.Join(t.TempDir(), "watchlist")
		res, err := WriteMarkdownExport(ctx, testCollection(), dir, MarkdownExportOpts{
			HTTPClient:      srv.Client(),
			DownloadPosters: true,
			PosterBaseURL:   srv.URL,
		})
		if err != nil {
			t.Fatalf("WriteMarkdownExport failed: %v", err)
		}
		if res.Posters != 1 || len(res.Files) != 2 {
			t.Errorf("result = %+v", res)
		}

		readme := th.MustReadFile(t, filepath.Join(dir, "README.md"))
		if !strings.Contains(readme, "![Heat](posters/949.jpg)") {
			t.Errorf("README should link the local poster:\n%s", readme)
		}
		if _, err := os.Stat(filepath.Join(dir, "posters", "949.jpg")); err != nil {
			t.Errorf("poster not written: %v", err)
		}
	})

	t.Run("Falls Back To Remote Link", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		var warnings int
		dir := t.TempDir()
		res, err := WriteMarkdownExport(ctx, testCollection(), dir, MarkdownExportOpts{
			HTTPClient:      srv.Client(),
			DownloadPosters: true,
			PosterBaseURL:   srv.URL,
			Warn:            func(string, ...any) { warnings++ },
		})
		if err != nil {
			t.Fatalf("WriteMarkdownExport failed: %v", err)
		}
		if res.Posters != 0 || warnings != 1 {
			t.Errorf("posters = %d, warnings = %d", res.Posters, warnings)
		}
		readme := th.MustReadFile(t, filepath.Join(dir, "README.md"))
		if !strings.Contains(readme, srv.URL+"/heat.jpg") {
			t.Errorf("README should link the remote poster:\n%s", readme)
		}
	})

	t.Run("Requires Directory", func(t *testing.T) {
		if _, err := WriteMarkdownExport(ctx, testCollection(), "", MarkdownExportOpts{}); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

func TestWriteExport(t *testing.T) {
	file := filepath.Join(t.TempDir(), "nested", "history.csv")
	if err := WriteExport(file, []byte("a,b\n")); err != nil {
		t.Fatalf("WriteExport failed: %v", err)
	}
	if got := th.MustReadFile(t, file); got != "a,b\n" {
		t.Errorf("file content = %q", got)
	}
}
