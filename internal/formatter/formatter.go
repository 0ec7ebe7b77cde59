// package formatter provides functions to export song lists and lookup results to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/desertthunder/songview/internal/models"
	"github.com/desertthunder/songview/internal/shared"
	"github.com/desertthunder/songview/internal/tasks"
)

// SongExport is a titled song list ready for export: a post's songs or a user's favorites.
type SongExport struct {
	Title  string        `json:"title"`
	Source string        `json:"source,omitempty"` // Page URL the songs came from
	Public *bool         `json:"public,omitempty"` // Favorites visibility, when known
	Songs  []models.Song `json:"songs"`
}

// Formats lists the names accepted by [Render] and [WriteExport].
var Formats = []string{"json", "csv", "markdown", "txt"}

// ExportToCSV converts a SongExport to CSV format with columns: ID, Title, Artist, Favorited, Preview URL, Spotify URL
func ExportToCSV(export *SongExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artist", "Favorited", "Preview URL", "Spotify URL"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, song := range export.Songs {
		record := []string{
			song.ID,
			song.Title,
			song.Artist,
			strconv.FormatBool(song.IsFavorited),
			song.PreviewURL,
			song.SpotifyURL,
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

// ExportToMarkdown converts a SongExport to Markdown format with optional cover image
func ExportToMarkdown(export *SongExport, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", export.Title))

	if imageFilename != "" {
		buf.WriteString(fmt.Sprintf("![Cover](%s)\n\n", imageFilename))
	}

	if export.Source != "" {
		buf.WriteString(fmt.Sprintf("**Source**: %s\n\n", export.Source))
	}

	buf.WriteString(fmt.Sprintf("**Songs**: %d\n", len(export.Songs)))
	if export.Public != nil {
		buf.WriteString(fmt.Sprintf("**Visibility**: %s\n", shared.VisibilityString(*export.Public)))
	}
	buf.WriteString("\n## Songs\n\n")

	for i, song := range export.Songs {
		title := song.Title
		if song.SpotifyURL != "" {
			title = fmt.Sprintf("[%s](%s)", song.Title, song.SpotifyURL)
		}
		marks := ""
		if song.IsFavorited {
			marks += " ♥"
		}
		if song.HasPreview() {
			marks += fmt.Sprintf(" ([preview](%s))", song.PreviewURL)
		}
		buf.WriteString(fmt.Sprintf("%d. %s - %s%s\n", i+1, song.Artist, title, marks))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a SongExport to plain text format
func ExportToText(export *SongExport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("%s\n", export.Title))
	if export.Source != "" {
		buf.WriteString(fmt.Sprintf("Source: %s\n", export.Source))
	}
	buf.WriteString(fmt.Sprintf("Songs: %d\n\n", len(export.Songs)))

	for i, song := range export.Songs {
		buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, song.Label()))
	}

	return buf.Bytes(), nil
}

// Render produces export in the named format. Unknown formats are rejected.
func Render(export *SongExport, format string) ([]byte, error) {
	switch format {
	case "csv":
		return ExportToCSV(export)
	case "markdown", "md":
		return ExportToMarkdown(export, "")
	case "txt", "text":
		return ExportToText(export)
	case "json", "":
		return shared.MarshalJSON(export, true)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// LookupsToCSV converts batch lookup outcomes to CSV with columns: Query, Name, Spotify URL, Preview URLs, Error.
// Multiple preview URLs are joined with a space.
func LookupsToCSV(result *tasks.BulkLookupResult) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"Query", "Name", "Spotify URL", "Preview URLs", "Error"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, o := range result.Outcomes {
		previews := ""
		for i, u := range o.Result.PreviewURLs {
			if i > 0 {
				previews += " "
			}
			previews += u
		}
		record := []string{o.Query, o.Result.Name, o.Result.SpotifyURL, previews, o.Result.Error}
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

// WriteLookupLines writes one JSON line per outcome, in input order.
func WriteLookupLines(w io.Writer, result *tasks.BulkLookupResult) error {
	for _, o := range result.Outcomes {
		line, err := o.Result.MarshalLine()
		if err != nil {
			return fmt.Errorf("failed to encode result for %q: %w", o.Query, err)
		}
		if _, err := w.Write(line); err != nil {
			return fmt.Errorf("failed to write result: %w", err)
		}
	}
	return nil
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
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

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
}

// WriteMarkdownExport exports songs to Markdown format in a dedicated directory.
//
// The cover is the first song's artwork, when it downloads.
// Creates a directory structure: {dir}/README.md and optionally {dir}/cover.jpg
func WriteMarkdownExport(export *SongExport, outputDir string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		return nil, fmt.Errorf("%w: output directory is required", shared.ErrMissingArgument)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var coverImageFilename string
	if len(export.Songs) > 0 && export.Songs[0].ImageURL != "" {
		imageData, err := DownloadImage(export.Songs[0].ImageURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to download cover image: %v\n", err)
		} else {
			coverImageFilename = "cover.jpg"
			coverImagePath := filepath.Join(outputDir, coverImageFilename)
			if err := os.WriteFile(coverImagePath, imageData, 0644); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to save cover image: %v\n", err)
				coverImageFilename = ""
			} else {
				result.CoverImage = coverImagePath
				result.Files = append(result.Files, coverImagePath)
			}
		}
	}

	mdData, err := ExportToMarkdown(export, coverImageFilename)
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

// WriteExport renders export in format and writes it to path, returning the files written.
// Markdown treats path as a directory.
func WriteExport(export *SongExport, format, path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: output path is required", shared.ErrMissingArgument)
	}

	if format == "markdown" || format == "md" {
		res, err := WriteMarkdownExport(export, path)
		if err != nil {
			return nil, err
		}
		return res.Files, nil
	}

	data, err := Render(export, format)
	if err != nil {
		return nil, err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s file: %w", format, err)
	}
	return []string{path}, nil
}
