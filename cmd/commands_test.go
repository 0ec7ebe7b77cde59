package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/songview/internal/formatter"
	"github.com/desertthunder/songview/internal/models"
	"github.com/desertthunder/songview/internal/services"
	"github.com/desertthunder/songview/internal/shared"
	tu "github.com/desertthunder/songview/internal/testing"
	"github.com/urfave/cli/v3"
)

// runCLI runs args through the full command tree.
func runCLI(r *Runner, args ...string) error {
	app := &cli.Command{Name: "songview", Commands: r.register()}
	return app.Run(context.Background(), append([]string{"songview"}, args...))
}

type fixture struct {
	site   *tu.FakeSite
	lookup *tu.MockLookup
	out    *bytes.Buffer
	runner *Runner
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	site := tu.NewFakeSite(10)
	t.Cleanup(site.Close)

	config := shared.DefaultConfig()
	config.Site.PageSize = 10
	config.Database.Path = filepath.Join(t.TempDir(), "cache.db")

	f := &fixture{site: site, lookup: tu.NewMockLookup(), out: &bytes.Buffer{}}
	f.runner = NewRunner(RunnerOpts{
		Config: config,
		Site:   services.NewSiteClient(site.URL, nil, nil),
		Lookup: f.lookup,
		Logger: shared.NewLogger(io.Discard),
		Output: f.out,
	})
	t.Cleanup(func() { f.runner.Close() })
	return f
}

func (f *fixture) export(t *testing.T) formatter.SongExport {
	t.Helper()
	var export formatter.SongExport
	if err := json.Unmarshal(f.out.Bytes(), &export); err != nil {
		t.Fatalf("failed to decode export: %v\n%s", err, f.out.String())
	}
	return export
}

func bohemian() models.PreviewLookupResult {
	return models.PreviewLookupResult{
		Name:        "Bohemian Rhapsody",
		SpotifyURL:  "https://open.spotify.com/track/abc",
		PreviewURLs: []string{"url1", "url2"},
	}
}

func TestLookupCommand(t *testing.T) {
	t.Run("match prints one line", func(t *testing.T) {
		f := newFixture(t)
		f.lookup.Results["Bohemian Rhapsody Queen"] = bohemian()

		if err := runCLI(f.runner, "lookup", "Bohemian", "Rhapsody", "Queen"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		want := `{"name":"Bohemian Rhapsody","spotifyUrl":"https://open.spotify.com/track/abc","previewUrls":["url1","url2"]}` + "\n"
		if f.out.String() != want {
			t.Errorf("expected %q, got %q", want, f.out.String())
		}
	})

	t.Run("no match", func(t *testing.T) {
		f := newFixture(t)

		if err := runCLI(f.runner, "lookup", "zzzz nothing"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if f.out.String() != `{"previewUrls":[]}`+"\n" {
			t.Errorf("unexpected output %q", f.out.String())
		}
	})

	t.Run("empty query is an error line", func(t *testing.T) {
		f := newFixture(t)

		if err := runCLI(f.runner, "lookup"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		out := f.out.String()
		if !strings.HasPrefix(out, `{"error":`) || strings.Count(out, "\n") != 1 {
			t.Errorf("expected a single error line, got %q", out)
		}
		if f.lookup.Calls() != 0 {
			t.Error("expected no lookup for an empty query")
		}
	})

	t.Run("missing credentials still exit cleanly", func(t *testing.T) {
		out := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: out})

		if err := runCLI(runner, "lookup", "Bohemian Rhapsody"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		var line map[string]string
		if err := json.Unmarshal(out.Bytes(), &line); err != nil {
			t.Fatalf("expected JSON, got %q", out.String())
		}
		if line["error"] == "" {
			t.Errorf("expected error field, got %v", line)
		}
	})

	t.Run("cache serves repeated queries", func(t *testing.T) {
		f := newFixture(t)
		f.lookup.Results["Bohemian Rhapsody Queen"] = bohemian()

		for range 2 {
			if err := runCLI(f.runner, "lookup", "--cache", "Bohemian Rhapsody Queen"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		}
		if f.lookup.Calls() != 1 {
			t.Errorf("expected one upstream lookup, got %d", f.lookup.Calls())
		}
		if lines := strings.Split(strings.TrimSpace(f.out.String()), "\n"); len(lines) != 2 || lines[0] != lines[1] {
			t.Errorf("expected identical lines, got %q", f.out.String())
		}
	})

	t.Run("write failure", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Lookup: tu.NewMockLookup(), Logger: shared.NewLogger(io.Discard), Output: &tu.FWriter{}})

		if err := runCLI(runner, "lookup", "q"); err == nil {
			t.Error("expected write error")
		}
	})
}

func TestLookupBatchCommand(t *testing.T) {
	writeQueries := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "queries.txt")
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write queries: %v", err)
		}
		return path
	}

	t.Run("jsonl keeps input order", func(t *testing.T) {
		f := newFixture(t)
		f.lookup.Results["Bohemian Rhapsody Queen"] = bohemian()
		path := writeQueries(t, "Bohemian Rhapsody Queen\n\n# skipped\nnothing here\n")

		if err := runCLI(f.runner, "lookup", "batch", "--file", path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		lines := strings.Split(strings.TrimSpace(f.out.String()), "\n")
		if len(lines) != 2 {
			t.Fatalf("expected 2 lines, got %d: %q", len(lines), f.out.String())
		}
		if !strings.Contains(lines[0], "Bohemian Rhapsody") {
			t.Errorf("expected match first, got %s", lines[0])
		}
		if lines[1] != `{"previewUrls":[]}` {
			t.Errorf("expected no match second, got %s", lines[1])
		}
	})

	t.Run("csv to file", func(t *testing.T) {
		f := newFixture(t)
		f.lookup.Results["Bohemian Rhapsody Queen"] = bohemian()
		path := writeQueries(t, "Bohemian Rhapsody Queen\n")
		dest := filepath.Join(t.TempDir(), "out.csv")

		if err := runCLI(f.runner, "lookup", "batch", "--file", path, "--format", "csv", "--output", dest); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		data, err := os.ReadFile(dest)
		if err != nil {
			t.Fatalf("expected output file: %v", err)
		}
		if !strings.HasPrefix(string(data), "Query,Name,Spotify URL,Preview URLs,Error") {
			t.Errorf("unexpected csv header: %s", data)
		}
		if !strings.Contains(string(data), "url1 url2") {
			t.Errorf("expected joined previews: %s", data)
		}
	})

	t.Run("errors", func(t *testing.T) {
		tests := []struct {
			name string
			args func(t *testing.T) []string
			want error
		}{
			{
				name: "unsupported format",
				args: func(t *testing.T) []string {
					return []string{"--file", writeQueries(t, "q\n"), "--format", "xml"}
				},
				want: shared.ErrInvalidArgument,
			},
			{
				name: "empty file",
				args: func(t *testing.T) []string {
					return []string{"--file", writeQueries(t, "\n# only comments\n")}
				},
				want: shared.ErrInvalidInput,
			},
			{
				name: "missing file",
				args: func(t *testing.T) []string {
					return []string{"--file", filepath.Join(t.TempDir(), "missing.txt")}
				},
				want: os.ErrNotExist,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := newFixture(t)
				err := runCLI(f.runner, append([]string{"lookup", "batch"}, tt.args(t)...)...)
				if !errors.Is(err, tt.want) {
					t.Errorf("expected %v, got %v", tt.want, err)
				}
			})
		}
	})
}

func TestReadQueries(t *testing.T) {
	got, err := readQueries(strings.NewReader("  one  \n\n#two\nthree\n"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 2 || got[0] != "one" || got[1] != "three" {
		t.Errorf("unexpected queries %q", got)
	}
}

// pagedSite serves the first page and fails every later one.
type pagedSite struct {
	first []models.Song
}

func (p *pagedSite) Songs(_ context.Context, _ string, offset int) ([]models.Song, error) {
	if offset == 0 {
		return p.first, nil
	}
	return nil, fmt.Errorf("%w: offset %d", shared.ErrUnexpectedStatus, offset)
}

func (p *pagedSite) Favorites(context.Context, string) (*models.FavoritesPage, error) {
	return nil, shared.ErrNotImplemented
}

func (p *pagedSite) PostForm(context.Context, string, url.Values) (int, error) {
	return 0, shared.ErrNotImplemented
}

func TestSongsCommand(t *testing.T) {
	t.Run("first page as json", func(t *testing.T) {
		f := newFixture(t)
		f.site.Posts["42"] = tu.MakeSongs(25)

		if err := runCLI(f.runner, "songs", "42"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		export := f.export(t)
		if len(export.Songs) != 10 {
			t.Errorf("expected 10 songs, got %d", len(export.Songs))
		}
		if export.Title != "Post 42" || export.Source != f.site.URL+"/posts/42" {
			t.Errorf("unexpected header %q %q", export.Title, export.Source)
		}
	})

	t.Run("offset", func(t *testing.T) {
		f := newFixture(t)
		f.site.Posts["42"] = tu.MakeSongs(25)

		if err := runCLI(f.runner, "songs", "--offset", "20", "42"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		export := f.export(t)
		if len(export.Songs) != 5 || export.Songs[0].ID != "21" {
			t.Errorf("expected songs 21..25, got %d starting %v", len(export.Songs), export.Songs)
		}
	})

	t.Run("all pages", func(t *testing.T) {
		f := newFixture(t)
		f.site.Posts["42"] = tu.MakeSongs(25)

		if err := runCLI(f.runner, "songs", "--all", "42"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		export := f.export(t)
		if len(export.Songs) != 25 {
			t.Fatalf("expected 25 songs, got %d", len(export.Songs))
		}
		for i, s := range export.Songs {
			if s.ID != fmt.Sprint(i+1) {
				t.Errorf("song %d: expected id %d, got %s", i, i+1, s.ID)
			}
		}
	})

	t.Run("all pages with an exact multiple", func(t *testing.T) {
		f := newFixture(t)
		f.site.Posts["42"] = tu.MakeSongs(20)

		if err := runCLI(f.runner, "songs", "--all", "42"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if n := len(f.export(t).Songs); n != 20 {
			t.Errorf("expected 20 songs, got %d", n)
		}
	})

	t.Run("failed page stops the walk", func(t *testing.T) {
		out := &bytes.Buffer{}
		config := shared.DefaultConfig()
		config.Site.PageSize = 10
		runner := NewRunner(RunnerOpts{
			Config: config,
			Site:   &pagedSite{first: tu.MakeSongs(10)},
			Logger: shared.NewLogger(io.Discard),
			Output: out,
		})

		err := runCLI(runner, "songs", "--all", "42")
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
		if out.Len() != 0 {
			t.Error("expected no output on failure")
		}
	})

	t.Run("csv", func(t *testing.T) {
		f := newFixture(t)
		f.site.Posts["42"] = tu.MakeSongs(2)

		if err := runCLI(f.runner, "songs", "--format", "csv", "42"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.HasPrefix(f.out.String(), "ID,Title,Artist,Favorited,Preview URL,Spotify URL") {
			t.Errorf("unexpected csv: %s", f.out.String())
		}
	})

	t.Run("output file", func(t *testing.T) {
		f := newFixture(t)
		f.site.Posts["42"] = tu.MakeSongs(2)
		dest := filepath.Join(t.TempDir(), "exports", "songs.txt")

		if err := runCLI(f.runner, "songs", "--format", "txt", "--output", dest, "42"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		tu.AssertFileExists(t, dest)
		if !strings.Contains(tu.MustReadFile(t, dest), "Song 1 - Artist") {
			t.Error("expected song labels in text export")
		}
		if f.out.Len() != 0 {
			t.Error("expected nothing on stdout")
		}
	})

	t.Run("fill previews", func(t *testing.T) {
		f := newFixture(t)
		songs := tu.MakeSongs(3)
		songs[1].PreviewURL = ""
		f.site.Posts["7"] = songs
		f.lookup.Results["Song 2 Artist"] = models.PreviewLookupResult{
			Name:        "Song 2",
			SpotifyURL:  "https://open.spotify.com/track/filled",
			PreviewURLs: []string{"https://p.scdn.co/mp3-preview/filled"},
		}

		if err := runCLI(f.runner, "songs", "--fill-previews", "7"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		export := f.export(t)
		if got := export.Songs[1].PreviewURL; got != "https://p.scdn.co/mp3-preview/filled" {
			t.Errorf("expected filled preview, got %q", got)
		}
		if f.lookup.Calls() != 1 {
			t.Errorf("expected one lookup, got %d", f.lookup.Calls())
		}
	})

	t.Run("errors", func(t *testing.T) {
		tests := []struct {
			name string
			args []string
			want error
		}{
			{"missing post id", []string{"songs"}, shared.ErrMissingArgument},
			{"negative offset", []string{"songs", "--offset", "-1", "42"}, shared.ErrInvalidArgument},
			{"all with offset", []string{"songs", "--all", "--offset", "5", "42"}, shared.ErrInvalidArgument},
			{"unknown format", []string{"songs", "--format", "xml", "42"}, shared.ErrInvalidArgument},
			{"unknown post", []string{"songs", "404"}, shared.ErrUnexpectedStatus},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := newFixture(t)
				f.site.Posts["42"] = tu.MakeSongs(2)

				err := runCLI(f.runner, tt.args...)
				if !errors.Is(err, tt.want) {
					t.Errorf("expected %v, got %v", tt.want, err)
				}
			})
		}
	})
}

func TestFavoritesCommand(t *testing.T) {
	t.Run("print as json", func(t *testing.T) {
		f := newFixture(t)
		songs := tu.MakeSongs(2)
		f.site.Favorites["3"] = &models.FavoritesPage{
			Public: true,
			Favorites: []models.FavoriteEntry{
				{ID: "11", PostID: "42", Song: songs[0]},
				{ID: "12", PostID: "42", Song: songs[1]},
			},
		}

		if err := runCLI(f.runner, "favorites", "--format", "json", "3"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		export := f.export(t)
		if len(export.Songs) != 2 {
			t.Errorf("expected 2 songs, got %d", len(export.Songs))
		}
		if export.Public == nil || !*export.Public {
			t.Error("expected public visibility in export")
		}
	})

	t.Run("missing ids", func(t *testing.T) {
		f := newFixture(t)

		if err := runCLI(f.runner, "favorites"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
		if err := runCLI(f.runner, "browse"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

func TestCacheCommands(t *testing.T) {
	f := newFixture(t)
	f.lookup.Results["Bohemian Rhapsody Queen"] = bohemian()

	for _, q := range []string{"Bohemian Rhapsody Queen", "nothing here"} {
		if err := runCLI(f.runner, "lookup", "--cache", q); err != nil {
			t.Fatalf("lookup failed: %v", err)
		}
	}

	t.Run("list", func(t *testing.T) {
		f.out.Reset()
		if err := runCLI(f.runner, "cache", "list"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		out := f.out.String()
		if !strings.Contains(out, "Cached lookups (2)") {
			t.Errorf("expected two entries:\n%s", out)
		}
		if !strings.Contains(out, "Bohemian Rhapsody Queen → Bohemian Rhapsody") {
			t.Errorf("expected matched entry:\n%s", out)
		}
		if !strings.Contains(out, "(no match)") {
			t.Errorf("expected no-match entry:\n%s", out)
		}
	})

	t.Run("list matched as json", func(t *testing.T) {
		f.out.Reset()
		if err := runCLI(f.runner, "cache", "list", "--matched", "--json"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var rows []cachedLookup
		if err := json.Unmarshal(f.out.Bytes(), &rows); err != nil {
			t.Fatalf("failed to decode: %v", err)
		}
		if len(rows) != 1 || rows[0].Name != "Bohemian Rhapsody" || len(rows[0].PreviewURLs) != 2 {
			t.Errorf("unexpected rows %+v", rows)
		}
	})

	t.Run("purge", func(t *testing.T) {
		f.out.Reset()
		if err := runCLI(f.runner, "cache", "purge", "--older-than", "1h"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(f.out.String(), "Removed 0") {
			t.Errorf("expected nothing removed, got %q", f.out.String())
		}

		time.Sleep(10 * time.Millisecond)
		f.out.Reset()
		if err := runCLI(f.runner, "cache", "purge"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(f.out.String(), "Removed 2") {
			t.Errorf("expected everything removed, got %q", f.out.String())
		}
	})
}

func TestSetupCommands(t *testing.T) {
	t.Run("database creates config and schema", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)

		f := newFixture(t)
		configPath := filepath.Join(dir, "config.toml")

		if err := runCLI(f.runner, "setup", "database", "--config", configPath); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		tu.AssertFileExists(t, configPath)
		tu.AssertFileExists(t, filepath.Join(dir, "songview.db"))
	})

	t.Run("session from curl", func(t *testing.T) {
		f := newFixture(t)
		dest := filepath.Join(t.TempDir(), "headers.txt")
		curl := `curl 'http://127.0.0.1:5000/users/3/favorited' -H 'User-Agent: test-agent' -b 'session=abc123; theme=dark'`

		if err := runCLI(f.runner, "setup", "session", "--curl", curl, "--output", dest); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		session, err := shared.LoadHeadersFile(dest)
		if err != nil {
			t.Fatalf("failed to load headers: %v", err)
		}
		if session.CookieValue("session") != "abc123" {
			t.Errorf("expected session cookie, got %q", session.Cookie)
		}
		if session.Headers["User-Agent"] != "test-agent" {
			t.Errorf("expected user agent header, got %v", session.Headers)
		}
		if !strings.Contains(f.out.String(), "site.headers_path") {
			t.Errorf("expected next steps, got %q", f.out.String())
		}
	})

	t.Run("session argument errors", func(t *testing.T) {
		f := newFixture(t)

		if err := runCLI(f.runner, "setup", "session"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
		if err := runCLI(f.runner, "setup", "session", "--curl", "x", "--curl-file", "y"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}
