package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/prinik8/AIcare/internal/domain/knowledge"
)

type KnowledgeRepo struct {
	db *sql.DB
}

func NewKnowledgeRepo(db *sql.DB) *KnowledgeRepo {
	return &KnowledgeRepo{db: db}
}

func (r *KnowledgeRepo) Create(ctx context.Context, n knowledge.Note) error {
	meta, err := json.Marshal(n.Metadata)
	if err != nil {
		return err
	}
	emb, err := json.Marshal(n.Embedding)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO knowledge_notes (id, content, metadata, embedding, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`,
		n.ID,
		n.Content,
		string(meta),
		string(emb),
		n.CreatedAt,
	)
	return err
}

func (r *KnowledgeRepo) List(ctx context.Context) ([]knowledge.Note, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, content, metadata, embedding, created_at
		FROM knowledge_notes
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]knowledge.Note, 0)
	for rows.Next() {
		var n knowledge.Note
		var meta, emb []byte

		if err := rows.Scan(&n.ID, &n.Content, &meta, &emb, &n.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(meta, &n.Metadata); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(emb, &n.Embedding); err != nil {
			return nil, err
		}

		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *KnowledgeRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM knowledge_notes`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
