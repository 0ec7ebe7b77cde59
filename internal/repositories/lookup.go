package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/songview/internal/models"
	"github.com/desertthunder/songview/internal/shared"
)

const lookupColumns = `id, query_key, query, name, spotify_url, preview_urls, hits, created_at, updated_at`

// LookupRepository implements models.Repository[*models.LookupRecord] over the lookup_cache table.
type LookupRepository struct {
	db *sql.DB
}

// NewLookupRepository creates a new LookupRepository with the given database connection
func NewLookupRepository(db *sql.DB) *LookupRepository {
	return &LookupRepository{db: db}
}

// Create inserts a new [models.LookupRecord] with a generated ID
func (r *LookupRepository) Create(rec *models.LookupRecord) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	urls, err := encodeURLs(rec.Result().PreviewURLs)
	if err != nil {
		return err
	}

	id := shared.GenerateID()
	query := `
		INSERT INTO lookup_cache (id, query_key, query, name, spotify_url, preview_urls, hits, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		rec.QueryKey(),
		rec.Query(),
		rec.Result().Name,
		rec.Result().SpotifyURL,
		urls,
		rec.Hits(),
		rec.CreatedAt(),
		rec.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert lookup: %w", err)
	}

	rec.SetID(id)
	return nil
}

// Get retrieves a record by ID
func (r *LookupRepository) Get(id string) (*models.LookupRecord, error) {
	query := `SELECT ` + lookupColumns + ` FROM lookup_cache WHERE id = ?`
	return r.scan(r.db.QueryRow(query, id))
}

// GetByQuery retrieves the record for an already-normalized query key
func (r *LookupRepository) GetByQuery(key string) (*models.LookupRecord, error) {
	query := `SELECT ` + lookupColumns + ` FROM lookup_cache WHERE query_key = ?`
	return r.scan(r.db.QueryRow(query, key))
}

// Update replaces the stored result of an existing record
func (r *LookupRepository) Update(rec *models.LookupRecord) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	urls, err := encodeURLs(rec.Result().PreviewURLs)
	if err != nil {
		return err
	}

	now := time.Now()
	rec.SetUpdatedAt(now)

	query := `
		UPDATE lookup_cache
		SET query = ?, name = ?, spotify_url = ?, preview_urls = ?, hits = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query,
		rec.Query(),
		rec.Result().Name,
		rec.Result().SpotifyURL,
		urls,
		rec.Hits(),
		now,
		rec.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update lookup: %w", err)
	}
	return expectOne(result, "lookup", rec.ID())
}

// Touch increments the hit counter for id
func (r *LookupRepository) Touch(id string) error {
	result, err := r.db.Exec(`UPDATE lookup_cache SET hits = hits + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to record hit: %w", err)
	}
	return expectOne(result, "lookup", id)
}

// Delete removes a record by ID
func (r *LookupRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM lookup_cache WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete lookup: %w", err)
	}
	return expectOne(result, "lookup", id)
}

// Purge removes records last updated before cutoff and returns how many were removed
func (r *LookupRepository) Purge(cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM lookup_cache WHERE updated_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge lookups: %w", err)
	}
	return result.RowsAffected()
}

// List retrieves records matching the given criteria, newest first.
//
// Supported criteria: "matched" (bool) keeps only records with a track name;
// "limit" (int) caps the result count.
func (r *LookupRepository) List(criteria map[string]any) ([]*models.LookupRecord, error) {
	query := `SELECT ` + lookupColumns + ` FROM lookup_cache WHERE 1 = 1`
	args := []any{}

	if matched, ok := criteria["matched"].(bool); ok {
		if matched {
			query += " AND name != ''"
		} else {
			query += " AND name = ''"
		}
	}

	query += " ORDER BY created_at DESC, query_key ASC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query lookups: %w", err)
	}
	defer rows.Close()

	var records []*models.LookupRecord
	for rows.Next() {
		rec, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

// scan reads one row in [lookupColumns] order into a [models.LookupRecord]
func (r *LookupRepository) scan(row rowScanner) (*models.LookupRecord, error) {
	var (
		id         string
		queryKey   string
		query      string
		name       string
		spotifyURL string
		urls       string
		hits       int
		createdAt  time.Time
		updatedAt  time.Time
	)

	err := row.Scan(&id, &queryKey, &query, &name, &spotifyURL, &urls, &hits, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: lookup", shared.ErrRecordNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan lookup: %w", err)
	}

	previews := []string{}
	if err := json.Unmarshal([]byte(urls), &previews); err != nil {
		return nil, fmt.Errorf("failed to decode preview urls: %w", err)
	}

	result := models.PreviewLookupResult{Name: name, SpotifyURL: spotifyURL, PreviewURLs: previews}
	rec := models.NewLookupRecord(queryKey, query, result)
	rec.SetID(id)
	rec.SetHits(hits)
	rec.SetCreatedAt(createdAt)
	rec.SetUpdatedAt(updatedAt)
	return rec, nil
}

func encodeURLs(urls []string) (string, error) {
	if urls == nil {
		urls = []string{}
	}
	data, err := json.Marshal(urls)
	if err != nil {
		return "", fmt.Errorf("failed to encode preview urls: %w", err)
	}
	return string(data), nil
}
