package formatter

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/songview/internal/models"
	"github.com/desertthunder/songview/internal/shared"
	"github.com/desertthunder/songview/internal/tasks"
	th "github.com/desertthunder/songview/internal/testing"
)

func testExport() *SongExport {
	public := true
	return &SongExport{
		Title:  "Post 42",
		Source: "http://127.0.0.1:5000/posts/42",
		Public: &public,
		Songs: []models.Song{
			{
				ID:          "1",
				Title:       "Song One",
				Artist:      "Artist One",
				PreviewURL:  "https://p.scdn.co/mp3-preview/one",
				SpotifyURL:  "https://open.spotify.com/track/one",
				IsFavorited: true,
			},
			{
				ID:     "2",
				Title:  "Song, Two",
				Artist: "Artist Two",
			},
		},
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(testExport())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "ID,Title,Artist,Favorited,Preview URL,Spotify URL") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "1,Song One,Artist One,true,https://p.scdn.co/mp3-preview/one,https://open.spotify.com/track/one") {
			t.Errorf("CSV missing song one, got: %s", output)
		}
		if !strings.Contains(output, `2,"Song, Two",Artist Two,false,,`) {
			t.Errorf("CSV should quote fields containing commas, got: %s", output)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(testExport(), "cover.jpg")
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"# Post 42",
			"![Cover](cover.jpg)",
			"**Source**: http://127.0.0.1:5000/posts/42",
			"**Songs**: 2",
			"**Visibility**: Public",
			"1. Artist One - [Song One](https://open.spotify.com/track/one) ♥ ([preview](https://p.scdn.co/mp3-preview/one))",
			"2. Artist Two - Song, Two",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("ExportToMarkdown Without Visibility", func(t *testing.T) {
		export := testExport()
		export.Public = nil

		data, err := ExportToMarkdown(export, "")
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}
		if strings.Contains(string(data), "Visibility") || strings.Contains(string(data), "Cover") {
			t.Errorf("unexpected optional sections:\n%s", data)
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(testExport())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		if !strings.HasPrefix(output, "Post 42\n") {
			t.Errorf("text should start with title, got: %s", output)
		}
		if !strings.Contains(output, "Songs: 2") {
			t.Errorf("text missing count, got: %s", output)
		}
		if !strings.Contains(output, "1. Song One - Artist One") {
			t.Errorf("text missing first song, got: %s", output)
		}
	})
}

func TestRender(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"json", `"title": "Post 42"`},
		{"", `"songs": [`},
		{"csv", "ID,Title,Artist"},
		{"markdown", "# Post 42"},
		{"md", "## Songs"},
		{"txt", "Songs: 2"},
		{"text", "Songs: 2"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			data, err := Render(testExport(), tt.format)
			if err != nil {
				t.Fatalf("Render(%q) failed: %v", tt.format, err)
			}
			if !strings.Contains(string(data), tt.want) {
				t.Errorf("Render(%q) missing %q, got:\n%s", tt.format, tt.want, data)
			}
		})
	}

	t.Run("unknown", func(t *testing.T) {
		_, err := Render(testExport(), "xml")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func bulkResult() *tasks.BulkLookupResult {
	return &tasks.BulkLookupResult{Outcomes: []tasks.LookupOutcome{
		{Index: 0, Query: "Bohemian Rhapsody Queen", Result: models.PreviewLookupResult{
			Name:        "Bohemian Rhapsody",
			SpotifyURL:  "https://open.spotify.com/track/b",
			PreviewURLs: []string{"https://p.scdn.co/mp3-preview/1", "https://p.scdn.co/mp3-preview/2"},
		}},
		{Index: 1, Query: "zzz", Result: models.NoMatch()},
		{Index: 2, Query: "down", Result: models.LookupError(errors.New("timeout"))},
	}}
}

func TestLookupExports(t *testing.T) {
	t.Run("LookupsToCSV", func(t *testing.T) {
		data, err := LookupsToCSV(bulkResult())
		if err != nil {
			t.Fatalf("LookupsToCSV failed: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if len(lines) != 4 {
			t.Fatalf("expected header and 3 rows, got %d lines", len(lines))
		}
		if lines[1] != "Bohemian Rhapsody Queen,Bohemian Rhapsody,https://open.spotify.com/track/b,https://p.scdn.co/mp3-preview/1 https://p.scdn.co/mp3-preview/2," {
			t.Errorf("unexpected match row: %s", lines[1])
		}
		if lines[3] != "down,,,,timeout" {
			t.Errorf("unexpected error row: %s", lines[3])
		}
	})

	t.Run("WriteLookupLines", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteLookupLines(&buf, bulkResult()); err != nil {
			t.Fatalf("WriteLookupLines failed: %v", err)
		}

		lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
		if len(lines) != 3 {
			t.Fatalf("expected 3 lines, got %d", len(lines))
		}
		for _, line := range lines {
			if !json.Valid([]byte(line)) {
				t.Errorf("line is not valid JSON: %s", line)
			}
		}
		if lines[1] != `{"previewUrls":[]}` {
			t.Errorf("unexpected no-match line: %s", lines[1])
		}
		if lines[2] != `{"error":"timeout"}` {
			t.Errorf("unexpected error line: %s", lines[2])
		}
	})

	t.Run("WriteLookupLines Write Failure", func(t *testing.T) {
		if err := WriteLookupLines(&th.FWriter{}, bulkResult()); err == nil {
			t.Error("expected error from failing writer")
		}

		lw := th.NewLimitedWriter(1, 0, &bytes.Buffer{})
		if err := WriteLookupLines(&lw, bulkResult()); err == nil {
			t.Error("expected error once the write limit is exceeded")
		}
	})
}

func TestDownloadImage(t *testing.T) {
	t.Run("EmptyURL", func(t *testing.T) {
		_, err := DownloadImage("")
		if err == nil {
			t.Error("DownloadImage with empty URL should return error")
		}
	})

	t.Run("Success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("jpegdata"))
		}))
		defer srv.Close()

		data, err := DownloadImage(srv.URL)
		if err != nil {
			t.Fatalf("DownloadImage failed: %v", err)
		}
		if string(data) != "jpegdata" {
			t.Errorf("unexpected image data %q", data)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		if _, err := DownloadImage(srv.URL); err == nil {
			t.Error("expected error for 404")
		}
	})
}

func TestWriters(t *testing.T) {
	t.Run("WriteExport", func(t *testing.T) {
		tests := []struct {
			format string
			file   string
			want   string
		}{
			{"json", "songs.json", `"title": "Post 42"`},
			{"csv", "songs.csv", "ID,Title,Artist"},
			{"txt", "songs.txt", "Songs: 2"},
		}

		for _, tt := range tests {
			t.Run(tt.format, func(t *testing.T) {
				path := filepath.Join(t.TempDir(), "nested", tt.file)

				files, err := WriteExport(testExport(), tt.format, path)
				if err != nil {
					t.Fatalf("WriteExport failed: %v", err)
				}
				if len(files) != 1 || files[0] != path {
					t.Errorf("unexpected files %v", files)
				}

				th.AssertFileExists(t, path)
				if content := th.MustReadFile(t, path); !strings.Contains(content, tt.want) {
					t.Errorf("file missing %q, got:\n%s", tt.want, content)
				}
			})
		}
	})

	t.Run("WriteExport Requires Path", func(t *testing.T) {
		if _, err := WriteExport(testExport(), "json", ""); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("WriteMarkdownExport", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("jpegdata"))
		}))
		defer srv.Close()

		export := testExport()
		export.Songs[0].ImageURL = srv.URL + "/cover"
		dir := filepath.Join(t.TempDir(), "post-42")

		result, err := WriteMarkdownExport(export, dir)
		if err != nil {
			t.Fatalf("WriteMarkdownExport failed: %v", err)
		}

		th.AssertDirExists(t, dir)
		th.AssertFileExists(t, filepath.Join(dir, "README.md"))
		th.AssertFileExists(t, filepath.Join(dir, "cover.jpg"))

		if len(result.Files) != 2 {
			t.Errorf("expected 2 files, got %d", len(result.Files))
		}
		readme := th.MustReadFile(t, filepath.Join(dir, "README.md"))
		if !strings.Contains(readme, "![Cover](cover.jpg)") {
			t.Errorf("README missing cover reference:\n%s", readme)
		}
	})

	t.Run("WriteMarkdownExport Without Cover", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "post-42")

		result, err := WriteExport(testExport(), "markdown", dir)
		if err != nil {
			t.Fatalf("WriteExport markdown failed: %v", err)
		}
		if len(result) != 1 || filepath.Base(result[0]) != "README.md" {
			t.Errorf("unexpected files %v", result)
		}
	})
}
