package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mkalinin/docqa-backend/internal/entity"
	"github.com/pgvector/pgvector-go"
)

// FragmentRepository is the store interface for document fragments.
// Fragments are written once by the indexing worker and never mutated, so
// Nearest may be called concurrently without locking.
type FragmentRepository interface {
	AddBatch(ctx context.Context, fragments []entity.Fragment) error
	// Nearest returns up to k fragments of the document ordered by ascending
	// Euclidean distance to the query vector, ties broken by fragment id.
	// Fewer than k fragments is not an error.
	Nearest(ctx context.Context, documentID string, queryVector []float32, k int) ([]entity.Fragment, error)
}

var _ FragmentRepository = &FragmentPostgres{}

// FragmentPostgres implements FragmentRepository using PostgreSQL + pgvector
type FragmentPostgres struct {
	db *pgxpool.Pool
}

func NewFragmentPostgres(db *pgxpool.Pool) *FragmentPostgres {
	return &FragmentPostgres{db: db}
}

func (r *FragmentPostgres) AddBatch(ctx context.Context, fragments []entity.Fragment) error {
	if len(fragments) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, f := range fragments {
		fragmentID, err := uuid.Parse(f.ID)
		if err != nil {
			return fmt.Errorf("parse fragment ID: %w", err)
		}
		documentID, err := uuid.Parse(f.DocumentID)
		if err != nil {
			return fmt.Errorf("parse document ID: %w", err)
		}

		batch.Queue(
			`INSERT INTO fragments (id, document_id, idx, text, embedding) VALUES ($1, $2, $3, $4, $5)`,
			pgtype.UUID{Bytes: fragmentID, Valid: true},
			pgtype.UUID{Bytes: documentID, Valid: true},
			f.Index,
			f.Text,
			pgvector.NewVector(f.Embedding),
		)
	}

	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert fragments: %w", err)
	}

	return nil
}

func (r *FragmentPostgres) Nearest(ctx context.Context, documentID string, queryVector []float32, k int) ([]entity.Fragment, error) {
	docID, err := uuid.Parse(documentID)
	if err != nil {
		return nil, fmt.Errorf("parse document ID: %w", err)
	}

	// <-> is the pgvector L2 distance operator; id keeps equal distances in
	// a stable order.
	rows, err := r.db.Query(ctx,
		`SELECT id, document_id, idx, text, embedding
		 FROM fragments
		 WHERE document_id = $1
		 ORDER BY embedding <-> $2, id
		 LIMIT $3`,
		pgtype.UUID{Bytes: docID, Valid: true},
		pgvector.NewVector(queryVector),
		k,
	)
	if err != nil {
		return nil, fmt.Errorf("query nearest fragments: %w", err)
	}
	defer rows.Close()

	var fragments []entity.Fragment
	for rows.Next() {
		var (
			rawID    pgtype.UUID
			rawDocID pgtype.UUID
			vec      pgvector.Vector
			fragment entity.Fragment
		)
		if err := rows.Scan(&rawID, &rawDocID, &fragment.Index, &fragment.Text, &vec); err != nil {
			return nil, fmt.Errorf("scan fragment: %w", err)
		}
		fragment.ID = uuid.UUID(rawID.Bytes).String()
		fragment.DocumentID = uuid.UUID(rawDocID.Bytes).String()
		fragment.Embedding = vec.Slice()
		fragments = append(fragments, fragment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query nearest fragments: %w", err)
	}

	return fragments, nil
}
