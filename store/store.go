// Package store is the SQLite system of record for chunks, governance
// attributes, relationship edges, and the query audit log.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"lexgov/governance"
)

// ErrNotFound is returned when a chunk lookup matches nothing.
var ErrNotFound = errors.New("chunk not found")

// Lifecycle states. Only active chunks are eligible for retrieval; retired
// chunks stay in the store for audit.
const (
	LifecycleDraft   = "draft"
	LifecycleActive  = "active"
	LifecycleRetired = "retired"
)

// Chunk is the aggregate view of one chunk: identity, content, and the
// governance attributes stamped on it at ingestion time. Children carry
// their parent's governance fields verbatim.
type Chunk struct {
	ID          string                    `json:"chunk_id"`
	Statute     string                    `json:"statute"`
	DocType     governance.DocumentType   `json:"doc_type"`
	Section     string                    `json:"section"`
	ChunkType   string                    `json:"chunk_type"` // "parent" or "child"
	ParentID    string                    `json:"parent_chunk_id,omitempty"`
	Position    int                       `json:"position"`
	Content     string                    `json:"content"`
	ContentHash string                    `json:"content_hash"`
	SourceFile  string                    `json:"source_file,omitempty"`
	ParseMethod string                    `json:"parse_method,omitempty"`
	Lifecycle   string                    `json:"lifecycle_status"`
	Version     int                       `json:"version"`
	Binding     bool                      `json:"binding"`
	Priority    int                       `json:"priority"`
	Authority   governance.AuthorityLevel `json:"authority_level"`
	Refusal     governance.RefusalPolicy  `json:"refusal_policy"`
}

// IsChild reports whether the chunk is a child chunk.
func (c Chunk) IsChild() bool { return c.ChunkType == "child" }

// Relationship is an edge in the citation graph between two chunks.
type Relationship struct {
	ID          int64                       `json:"id"`
	SourceID    string                      `json:"source_chunk_id"`
	TargetID    string                      `json:"target_chunk_id"`
	Type        governance.RelationshipType `json:"relation_type"`
	Confidence  float64                     `json:"confidence"`
	Description string                      `json:"description,omitempty"`
}

// QueryLog represents a row in the query audit log.
type QueryLog struct {
	QueryID         string      `json:"query_id"`
	Query           string      `json:"query"`
	Answer          string      `json:"answer"`
	RetrievalMethod string      `json:"retrieval_method"`
	Sources         interface{} `json:"sources"`
	Refused         bool        `json:"refused"`
}

// Stats holds counts of key database objects. Children counts only active
// chunks; retired ones are reported separately.
type Stats struct {
	Parents       int `json:"parents"`
	Children      int `json:"children"`
	Retired       int `json:"retired"`
	Embedded      int `json:"embedded"`
	Relationships int `json:"relationships"`
	Queries       int `json:"queries"`
}

// Store wraps the SQLite database for all lexgov persistence.
type Store struct {
	db *sql.DB
}

// New opens (or creates) a SQLite database at the given path and
// initialises the schema.
func New(dbPath string) (*Store, error) {
	// Ensure parent directory exists
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	// Connection pool settings for SQLite.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := &Store{db: db}

	if err := s.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for advanced queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// --- Chunk operations ---

// UpsertChunk writes a chunk and all of its governance rows in a single
// transaction. It reports whether the chunk content changed (a new chunk
// counts as changed); re-upserting identical content is a no-op apart from
// refreshed provenance fields, so downstream chunking and embedding can be
// skipped. A content change on a child resets its embedding status.
func (s *Store) UpsertChunk(ctx context.Context, c Chunk) (changed bool, err error) {
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		var existingHash string
		row := tx.QueryRowContext(ctx,
			"SELECT content_hash FROM chunks WHERE chunk_id = ?", c.ID)
		switch err := row.Scan(&existingHash); {
		case err == sql.ErrNoRows:
			changed = true
		case err != nil:
			return err
		default:
			changed = existingHash != c.ContentHash
		}

		if err := upsertChunkTx(ctx, tx, c, changed); err != nil {
			return err
		}
		return nil
	})
	return changed, err
}

// UpsertChunks writes a batch of chunks in one transaction, all or nothing.
// Used by the chunking engine so a parent never ends up with a partial set
// of children.
func (s *Store) UpsertChunks(ctx context.Context, chunks []Chunk) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, c := range chunks {
			if err := upsertChunkTx(ctx, tx, c, true); err != nil {
				return fmt.Errorf("upserting chunk %s: %w", c.ID, err)
			}
		}
		return nil
	})
}

func upsertChunkTx(ctx context.Context, tx *sql.Tx, c Chunk, contentChanged bool) error {
	var parentID interface{}
	if c.ParentID != "" {
		parentID = c.ParentID
	}
	if c.Lifecycle == "" {
		c.Lifecycle = LifecycleActive
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO chunks (chunk_id, statute, doc_type, section, chunk_type,
			parent_chunk_id, position, content, content_hash, source_file,
			parse_method, lifecycle_status, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)
		ON CONFLICT(chunk_id) DO UPDATE SET
			statute = excluded.statute,
			doc_type = excluded.doc_type,
			section = excluded.section,
			chunk_type = excluded.chunk_type,
			parent_chunk_id = excluded.parent_chunk_id,
			position = excluded.position,
			content = excluded.content,
			content_hash = excluded.content_hash,
			source_file = excluded.source_file,
			parse_method = excluded.parse_method,
			lifecycle_status = excluded.lifecycle_status,
			version = chunks.version + (chunks.content_hash <> excluded.content_hash),
			updated_at = CURRENT_TIMESTAMP
	`, c.ID, c.Statute, string(c.DocType), c.Section, c.ChunkType,
		parentID, c.Position, c.Content, c.ContentHash, c.SourceFile,
		c.ParseMethod, c.Lifecycle); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO retrieval_rules (chunk_id, binding, priority, authority_level)
		VALUES (?, ?, ?, ?)
	`, c.ID, c.Binding, c.Priority, string(c.Authority)); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO refusal_policies (chunk_id, can_answer_standalone,
			must_reference_parent_law, refuse_if_parent_missing)
		VALUES (?, ?, ?, ?)
	`, c.ID, c.Refusal.CanAnswerStandalone, c.Refusal.MustReferenceParentLaw,
		c.Refusal.RefuseIfParentMissing); err != nil {
		return err
	}

	// Only children are ever embedded; parents get no status row.
	if c.IsChild() {
		if contentChanged {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO embedding_status (chunk_id, embedded) VALUES (?, 0)
				ON CONFLICT(chunk_id) DO UPDATE SET embedded = 0, embedded_at = NULL
			`, c.ID); err != nil {
				return err
			}
		} else {
			if _, err := tx.ExecContext(ctx,
				"INSERT OR IGNORE INTO embedding_status (chunk_id, embedded) VALUES (?, 0)",
				c.ID); err != nil {
				return err
			}
		}
	}

	return nil
}

const chunkSelect = `
	SELECT c.chunk_id, c.statute, c.doc_type, c.section, c.chunk_type,
		COALESCE(c.parent_chunk_id, ''), c.position, c.content, c.content_hash,
		COALESCE(c.source_file, ''), COALESCE(c.parse_method, ''),
		c.lifecycle_status, c.version,
		r.binding, r.priority, r.authority_level,
		p.can_answer_standalone, p.must_reference_parent_law, p.refuse_if_parent_missing
	FROM chunks c
	JOIN retrieval_rules r ON r.chunk_id = c.chunk_id
	JOIN refusal_policies p ON p.chunk_id = c.chunk_id`

func scanChunk(row interface{ Scan(...interface{}) error }) (Chunk, error) {
	var c Chunk
	var docType, authority string
	err := row.Scan(&c.ID, &c.Statute, &docType, &c.Section, &c.ChunkType,
		&c.ParentID, &c.Position, &c.Content, &c.ContentHash,
		&c.SourceFile, &c.ParseMethod, &c.Lifecycle, &c.Version,
		&c.Binding, &c.Priority, &authority,
		&c.Refusal.CanAnswerStandalone, &c.Refusal.MustReferenceParentLaw,
		&c.Refusal.RefuseIfParentMissing)
	if err != nil {
		return Chunk{}, err
	}
	c.DocType = governance.DocumentType(docType)
	c.Authority = governance.AuthorityLevel(authority)
	return c, nil
}

func (s *Store) queryChunks(ctx context.Context, query string, args ...interface{}) ([]Chunk, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []Chunk
	for rows.Next() {
		c, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// GetChunk retrieves a single chunk by its structured ID.
func (s *Store) GetChunk(ctx context.Context, chunkID string) (*Chunk, error) {
	row := s.db.QueryRowContext(ctx, chunkSelect+" WHERE c.chunk_id = ?", chunkID)
	c, err := scanChunk(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, chunkID)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetChunks retrieves multiple chunks by ID, in no particular order.
// Missing IDs are silently skipped.
func (s *Store) GetChunks(ctx context.Context, chunkIDs []string) ([]Chunk, error) {
	if len(chunkIDs) == 0 {
		return nil, nil
	}
	query := chunkSelect + " WHERE c.chunk_id IN (?" + repeatPlaceholders(len(chunkIDs)-1) + ")"
	args := make([]interface{}, len(chunkIDs))
	for i, id := range chunkIDs {
		args[i] = id
	}
	return s.queryChunks(ctx, query, args...)
}

// GetChunksBySection returns every active chunk for a zero-padded section
// number, parents before children, higher-authority documents first.
func (s *Store) GetChunksBySection(ctx context.Context, section string) ([]Chunk, error) {
	return s.queryChunks(ctx, chunkSelect+`
		WHERE c.section = ? AND c.lifecycle_status = 'active'
		ORDER BY CASE c.chunk_type WHEN 'parent' THEN 0 ELSE 1 END,
			r.priority, c.chunk_id
	`, section)
}

// GetParentByTypeAndSection resolves the unique base parent chunk for a
// document type and zero-padded section number. Variant parents (pdf2, ...)
// are excluded by taking the lowest chunk ID, which is the base variant.
func (s *Store) GetParentByTypeAndSection(ctx context.Context, docType governance.DocumentType, section string) (*Chunk, error) {
	row := s.db.QueryRowContext(ctx, chunkSelect+`
		WHERE c.doc_type = ? AND c.section = ? AND c.chunk_type = 'parent'
		ORDER BY c.chunk_id LIMIT 1
	`, string(docType), section)
	c, err := scanChunk(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s section %s", ErrNotFound, docType, section)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Children returns the child chunks of a parent, in position order.
func (s *Store) Children(ctx context.Context, parentID string) ([]Chunk, error) {
	return s.queryChunks(ctx, chunkSelect+`
		WHERE c.parent_chunk_id = ? ORDER BY c.position
	`, parentID)
}

// SearchDefinitions does a case-insensitive substring match for a term in
// the act's definitions section. Children are matched first so the hit is
// the tightest span containing the definition.
func (s *Store) SearchDefinitions(ctx context.Context, term, defSection string) ([]Chunk, error) {
	return s.queryChunks(ctx, chunkSelect+`
		WHERE c.doc_type = 'act' AND c.section = ? AND c.lifecycle_status = 'active'
		  AND LOWER(c.content) LIKE '%' || LOWER(?) || '%'
		ORDER BY CASE c.chunk_type WHEN 'child' THEN 0 ELSE 1 END, c.position
	`, defSection, term)
}

// FindParentByIDPattern resolves a parent chunk of a document type whose ID
// matches a LIKE pattern. Matching is case-insensitive with hyphens removed
// so "Form MGT-7" finds a chunk ID containing "mgt7". The lowest matching
// ID wins, which is the base file variant.
func (s *Store) FindParentByIDPattern(ctx context.Context, docType governance.DocumentType, pattern string) (*Chunk, error) {
	normalized := strings.ToLower(strings.ReplaceAll(pattern, "-", ""))
	row := s.db.QueryRowContext(ctx, chunkSelect+`
		WHERE c.doc_type = ? AND c.chunk_type = 'parent'
		  AND LOWER(REPLACE(c.chunk_id, '-', '')) LIKE ?
		ORDER BY c.chunk_id LIMIT 1
	`, string(docType), normalized)
	c, err := scanChunk(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s matching %s", ErrNotFound, docType, pattern)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindParentBySourceFile returns the parent chunk previously ingested from a
// source file, letting re-ingestion reuse the same chunk ID.
func (s *Store) FindParentBySourceFile(ctx context.Context, sourceFile string) (*Chunk, error) {
	row := s.db.QueryRowContext(ctx, chunkSelect+`
		WHERE c.source_file = ? AND c.chunk_type = 'parent'
		ORDER BY c.chunk_id LIMIT 1
	`, sourceFile)
	c, err := scanChunk(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: source %s", ErrNotFound, sourceFile)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// PadSection normalizes a section number to the canonical zero-padded
// three-digit store key ("45" -> "045"). Non-numeric input is returned
// unchanged.
func PadSection(section string) string {
	section = strings.TrimSpace(section)
	if section == "" {
		return section
	}
	for _, r := range section {
		if r < '0' || r > '9' {
			return section
		}
	}
	for len(section) < 3 {
		section = "0" + section
	}
	return section
}

// CountParentVariants returns how many parent chunks already exist for a
// statute, document type, and section. The ingestion pipeline seeds its
// file-variant counter from this.
func (s *Store) CountParentVariants(ctx context.Context, statute string, docType governance.DocumentType, section string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM chunks
		WHERE statute = ? AND doc_type = ? AND section = ? AND chunk_type = 'parent'
	`, statute, string(docType), section).Scan(&n)
	return n, err
}

// --- Embedding status ---

// UnembeddedChildren returns child chunks not yet written to the vector
// index, optionally restricted to a set of sections.
func (s *Store) UnembeddedChildren(ctx context.Context, sections []string) ([]Chunk, error) {
	query := chunkSelect + `
		JOIN embedding_status e ON e.chunk_id = c.chunk_id
		WHERE c.chunk_type = 'child' AND e.embedded = 0
		  AND c.lifecycle_status = 'active'`
	var args []interface{}
	if len(sections) > 0 {
		query += " AND c.section IN (?" + repeatPlaceholders(len(sections)-1) + ")"
		for _, sec := range sections {
			args = append(args, sec)
		}
	}
	query += " ORDER BY c.chunk_id"
	return s.queryChunks(ctx, query, args...)
}

// MarkEmbedded records that the given child chunks are now in the vector
// index.
func (s *Store) MarkEmbedded(ctx context.Context, chunkIDs []string) error {
	if len(chunkIDs) == 0 {
		return nil
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			UPDATE embedding_status SET embedded = 1, embedded_at = CURRENT_TIMESTAMP
			WHERE chunk_id = ?
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, id := range chunkIDs {
			if _, err := stmt.ExecContext(ctx, id); err != nil {
				return err
			}
		}
		return nil
	})
}

// RetireChildren marks a parent's active children retired and drops their
// edges, returning the retired IDs so the caller can remove them from the
// vector index. Rows stay in the store for audit but are excluded from
// every retrieval path. Re-upserting a retired chunk ID reactivates it.
func (s *Store) RetireChildren(ctx context.Context, parentID string) ([]string, error) {
	var retired []string
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `
			SELECT chunk_id FROM chunks
			WHERE parent_chunk_id = ? AND lifecycle_status = 'active'
			ORDER BY position
		`, parentID)
		if err != nil {
			return err
		}
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return err
			}
			retired = append(retired, id)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}
		if len(retired) == 0 {
			return nil
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE chunks SET lifecycle_status = 'retired', updated_at = CURRENT_TIMESTAMP
			WHERE parent_chunk_id = ? AND lifecycle_status = 'active'
		`, parentID); err != nil {
			return err
		}
		for _, id := range retired {
			if _, err := tx.ExecContext(ctx, `
				DELETE FROM relationships
				WHERE source_chunk_id = ? OR target_chunk_id = ?
			`, id, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return retired, nil
}

// --- Relationship operations ---

// InsertRelationship writes an edge, validating it against the governance
// rules first. It reports whether a new edge was created; duplicates by
// (source, target, type) are ignored.
func (s *Store) InsertRelationship(ctx context.Context, r Relationship) (created bool, err error) {
	var srcType, dstType string
	if err := s.db.QueryRowContext(ctx,
		"SELECT chunk_type FROM chunks WHERE chunk_id = ?", r.SourceID).Scan(&srcType); err != nil {
		if err == sql.ErrNoRows {
			return false, fmt.Errorf("%w: %s", ErrNotFound, r.SourceID)
		}
		return false, err
	}
	if err := s.db.QueryRowContext(ctx,
		"SELECT chunk_type FROM chunks WHERE chunk_id = ?", r.TargetID).Scan(&dstType); err != nil {
		if err == sql.ErrNoRows {
			return false, fmt.Errorf("%w: %s", ErrNotFound, r.TargetID)
		}
		return false, err
	}
	if err := governance.ValidateEdge(r.Type, srcType == "child", dstType == "child"); err != nil {
		return false, err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO relationships (source_chunk_id, target_chunk_id,
			relation_type, confidence, description)
		VALUES (?, ?, ?, ?, ?)
	`, r.SourceID, r.TargetID, string(r.Type), r.Confidence, r.Description)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RelationshipsFrom returns all outgoing edges of a chunk.
func (s *Store) RelationshipsFrom(ctx context.Context, chunkID string) ([]Relationship, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source_chunk_id, target_chunk_id, relation_type, confidence, COALESCE(description, '')
		FROM relationships WHERE source_chunk_id = ? ORDER BY id
	`, chunkID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rels []Relationship
	for rows.Next() {
		var r Relationship
		var relType string
		if err := rows.Scan(&r.ID, &r.SourceID, &r.TargetID, &relType, &r.Confidence, &r.Description); err != nil {
			return nil, err
		}
		r.Type = governance.RelationshipType(relType)
		rels = append(rels, r)
	}
	return rels, rows.Err()
}

// --- Purge ---

// PurgeParent removes a parent chunk, its children, and every edge touching
// them, in one transaction. It returns the IDs of all removed chunks so the
// caller can drop them from the vector index as well.
func (s *Store) PurgeParent(ctx context.Context, parentID string) ([]string, error) {
	removed := []string{parentID}
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var chunkType string
		row := tx.QueryRowContext(ctx,
			"SELECT chunk_type FROM chunks WHERE chunk_id = ?", parentID)
		if err := row.Scan(&chunkType); err != nil {
			if err == sql.ErrNoRows {
				return fmt.Errorf("%w: %s", ErrNotFound, parentID)
			}
			return err
		}
		if chunkType != "parent" {
			return fmt.Errorf("purge target %s is not a parent chunk", parentID)
		}

		rows, err := tx.QueryContext(ctx,
			"SELECT chunk_id FROM chunks WHERE parent_chunk_id = ?", parentID)
		if err != nil {
			return err
		}
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return err
			}
			removed = append(removed, id)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		// Children first so the parent_chunk_id foreign key stays valid.
		// Governance rows and edges cascade off the chunk rows.
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM chunks WHERE parent_chunk_id = ?", parentID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM chunks WHERE chunk_id = ?", parentID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// --- Query log ---

// LogQuery writes an entry to the query audit log.
func (s *Store) LogQuery(ctx context.Context, q QueryLog) error {
	sourcesJSON, _ := json.Marshal(q.Sources)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO query_log (query_id, query, answer, retrieval_method, sources, refused)
		VALUES (?, ?, ?, ?, ?, ?)
	`, q.QueryID, q.Query, q.Answer, q.RetrievalMethod, string(sourcesJSON), q.Refused)
	return err
}

// --- Stats ---

// Stats returns counts of parents, children, embedded children, edges, and
// logged queries.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	queries := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM chunks WHERE chunk_type = 'parent'", &stats.Parents},
		{"SELECT COUNT(*) FROM chunks WHERE chunk_type = 'child' AND lifecycle_status = 'active'", &stats.Children},
		{"SELECT COUNT(*) FROM chunks WHERE lifecycle_status = 'retired'", &stats.Retired},
		{"SELECT COUNT(*) FROM embedding_status WHERE embedded = 1", &stats.Embedded},
		{"SELECT COUNT(*) FROM relationships", &stats.Relationships},
		{"SELECT COUNT(*) FROM query_log", &stats.Queries},
	}
	for _, q := range queries {
		if err := s.db.QueryRowContext(ctx, q.query).Scan(q.dest); err != nil {
			return nil, fmt.Errorf("counting %s: %w", q.query, err)
		}
	}
	return stats, nil
}

// --- helpers ---

func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func repeatPlaceholders(n int) string {
	s := ""
	for i := 0; i < n; i++ {
		s += ", ?"
	}
	return s
}
