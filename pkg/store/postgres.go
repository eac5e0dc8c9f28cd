package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/praetorian-inc/checkparens/pkg/brackets"
	"github.com/praetorian-inc/checkparens/pkg/types"
)

// PostgresStore implements Store on a single PostgreSQL connection.
// pgx.Conn is not safe for concurrent use, so calls are serialized.
type PostgresStore struct {
	mu   sync.Mutex
	conn *pgx.Conn
}

// NewPostgres connects to dsn and creates the schema.
func NewPostgres(dsn string) (*PostgresStore, error) {
	ctx := context.Background()

	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	for _, stmt := range postgresSchema {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			conn.Close(ctx)
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}

	return &PostgresStore{conn: conn}, nil
}

// AddBlob stores a blob record.
func (s *PostgresStore) AddBlob(id types.BlobID, size int64, verdict brackets.Verdict) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.conn.Exec(context.Background(),
		"INSERT INTO blobs (id, size, verdict) VALUES ($1, $2, $3) ON CONFLICT (id) DO NOTHING",
		id.Hex(), size, string(verdict))
	if err != nil {
		return fmt.Errorf("inserting blob: %w", err)
	}
	return nil
}

// AddProvenance associates provenance with a blob.
func (s *PostgresStore) AddProvenance(blobID types.BlobID, prov types.Provenance) error {
	path, repoPath, commitHash, err := provenanceColumns(prov)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.conn.Exec(context.Background(), `
		INSERT INTO provenance (blob_id, type, path, repo_path, commit_hash)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT DO NOTHING
	`, blobID.Hex(), prov.Kind(), path, repoPath, commitHash)
	if err != nil {
		return fmt.Errorf("inserting provenance: %w", err)
	}
	return nil
}

// BlobExists checks if a blob has already been checked.
func (s *PostgresStore) BlobExists(id types.BlobID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exists bool
	err := s.conn.QueryRow(context.Background(),
		"SELECT EXISTS (SELECT 1 FROM blobs WHERE id = $1)", id.Hex()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking blob: %w", err)
	}
	return exists, nil
}

// GetVerdict returns the stored verdict of a blob.
func (s *PostgresStore) GetVerdict(id types.BlobID) (brackets.Verdict, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var raw string
	err := s.conn.QueryRow(context.Background(),
		"SELECT verdict FROM blobs WHERE id = $1", id.Hex()).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("querying verdict: %w", err)
	}
	return brackets.ParseVerdict(raw)
}

// GetResults returns one result per provenance, ordered by path.
func (s *PostgresStore) GetResults() ([]*types.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.conn.Query(context.Background(), `
		SELECT p.blob_id, p.type, p.path, p.repo_path, b.size, b.verdict
		FROM provenance p
		JOIN blobs b ON b.id = p.blob_id
		ORDER BY p.path COLLATE "C", p.type, p.id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying results: %w", err)
	}
	defer rows.Close()

	var results []*types.Result
	for rows.Next() {
		var r types.Result
		var blobHex, verdict string
		if err := rows.Scan(&blobHex, &r.Kind, &r.Path, &r.Container, &r.Size, &verdict); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		if r.BlobID, err = types.ParseBlobID(blobHex); err != nil {
			return nil, fmt.Errorf("parsing blob ID: %w", err)
		}
		if r.Verdict, err = brackets.ParseVerdict(verdict); err != nil {
			return nil, err
		}
		results = append(results, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating results: %w", err)
	}
	return results, nil
}

// Close closes the connection.
func (s *PostgresStore) Close() error {
	return s.conn.Close(context.Background())
}
