package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mkalinin/docqa-backend/internal/entity"
)

// DocumentRepository defines the interface for document persistence
type DocumentRepository interface {
	Create(ctx context.Context, doc entity.Document) (*entity.Document, error)
	Get(ctx context.Context, id string) (*entity.Document, error)
	List(ctx context.Context) ([]*entity.Document, error)
}

var _ DocumentRepository = &DocumentPostgres{}

// DocumentPostgres implements DocumentRepository using PostgreSQL
type DocumentPostgres struct {
	db *pgxpool.Pool
}

func NewDocumentPostgres(db *pgxpool.Pool) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

func (r *DocumentPostgres) Create(ctx context.Context, doc entity.Document) (*entity.Document, error) {
	docID, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("parse document ID: %w", err)
	}

	row := r.db.QueryRow(ctx,
		`INSERT INTO documents (id, name, content) VALUES ($1, $2, $3) RETURNING created_at`,
		pgtype.UUID{Bytes: docID, Valid: true}, doc.Name, doc.Content,
	)
	if err := row.Scan(&doc.CreatedAt); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}

	return &doc, nil
}

func (r *DocumentPostgres) Get(ctx context.Context, id string) (*entity.Document, error) {
	docID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse document ID: %w", err)
	}

	var (
		rawID pgtype.UUID
		doc   entity.Document
	)
	row := r.db.QueryRow(ctx,
		`SELECT id, name, content, created_at FROM documents WHERE id = $1`,
		pgtype.UUID{Bytes: docID, Valid: true},
	)
	if err := row.Scan(&rawID, &doc.Name, &doc.Content, &doc.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	doc.ID = uuid.UUID(rawID.Bytes).String()

	return &doc, nil
}

// List returns document metadata without the extracted content.
func (r *DocumentPostgres) List(ctx context.Context) ([]*entity.Document, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, created_at FROM documents ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []*entity.Document
	for rows.Next() {
		var (
			rawID pgtype.UUID
			doc   entity.Document
		)
		if err := rows.Scan(&rawID, &doc.Name, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		doc.ID = uuid.UUID(rawID.Bytes).String()
		docs = append(docs, &doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	return docs, nil
}
