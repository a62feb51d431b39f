package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"podcast-catalog/internal/domains/podcast/model"
	pkgdb "podcast-catalog/pkg/database"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

const podcastColumns = `
	id, owner_id, title, author, description, image_url, audio_url,
	episodes, created_at, updated_at
`

func scanPodcast(row pgx.Row) (*model.Podcast, error) {
	var (
		p        model.Podcast
		episodes []byte
	)
	err := row.Scan(
		&p.ID, &p.OwnerID, &p.Title, &p.Author, &p.Description, &p.ImageURL, &p.AudioURL,
		&episodes, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(episodes, &p.Episodes); err != nil {
		return nil, fmt.Errorf("decode episodes of %s: %w", p.ID, err)
	}
	p.Normalize()
	return &p, nil
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ErrPodcastNotFound
	}
	return err
}

// ========================================
// CREATE / READ
// ========================================

func (r *postgresRepository) Create(ctx context.Context, p *model.Podcast) error {
	p.Normalize()
	episodes, err := json.Marshal(p.Episodes)
	if err != nil {
		return fmt.Errorf("encode episodes: %w", err)
	}

	query := `
		INSERT INTO podcasts (
			id, owner_id, title, author, description, image_url, audio_url,
			episodes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9, $9)
	`
	_, err = r.pool.Exec(ctx, query,
		p.ID, p.OwnerID, p.Title, p.Author, p.Description, p.ImageURL, p.AudioURL,
		episodes, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert podcast: %w", err)
	}
	p.UpdatedAt = p.CreatedAt
	return nil
}

func (r *postgresRepository) List(ctx context.Context) ([]model.Podcast, error) {
	query := `SELECT ` + podcastColumns + ` FROM podcasts ORDER BY created_at DESC, id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query podcasts: %w", err)
	}
	defer rows.Close()

	podcasts := make([]model.Podcast, 0)
	for rows.Next() {
		p, err := scanPodcast(rows)
		if err != nil {
			return nil, fmt.Errorf("scan podcast: %w", err)
		}
		podcasts = append(podcasts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate podcasts: %w", err)
	}
	return podcasts, nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Podcast, error) {
	query := `SELECT ` + podcastColumns + ` FROM podcasts WHERE id = $1`

	p, err := scanPodcast(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

// ========================================
// OWNER-SCOPED WRITES
// ========================================

// Update: field NULL giữ nguyên giá trị cũ; audioUrl "" xóa giá trị legacy
func (r *postgresRepository) Update(ctx context.Context, id, ownerID uuid.UUID, patch model.UpdatePodcastRequest) (*model.Podcast, error) {
	query := `
		UPDATE podcasts SET
			title       = COALESCE($3, title),
			author      = COALESCE($4, author),
			description = COALESCE($5, description),
			image_url   = COALESCE($6, image_url),
			audio_url   = CASE WHEN $7::text IS NULL THEN audio_url ELSE NULLIF($7::text, '') END,
			updated_at  = NOW()
		WHERE id = $1 AND owner_id = $2
		RETURNING ` + podcastColumns

	p, err := scanPodcast(r.pool.QueryRow(ctx, query,
		id, ownerID, patch.Title, patch.Author, patch.Description, patch.ImageURL, patch.AudioURL,
	))
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

func (r *postgresRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM podcasts WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete podcast: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrPodcastNotFound
	}
	return nil
}

// AppendEpisode dùng jsonb || để append trong một statement, không có read-modify-write
func (r *postgresRepository) AppendEpisode(ctx context.Context, id, ownerID uuid.UUID, ep model.Episode) (*model.Podcast, error) {
	payload, err := json.Marshal([]model.Episode{ep})
	if err != nil {
		return nil, fmt.Errorf("encode episode: %w", err)
	}

	query := `
		UPDATE podcasts SET
			episodes   = episodes || $3::jsonb,
			updated_at = NOW()
		WHERE id = $1 AND owner_id = $2
		RETURNING ` + podcastColumns

	p, err := scanPodcast(r.pool.QueryRow(ctx, query, id, ownerID, payload))
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

// RemoveEpisode lọc episode ra khỏi mảng, giữ nguyên thứ tự các phần tử còn lại.
// UPDATE và check tồn tại chạy chung một transaction.
func (r *postgresRepository) RemoveEpisode(ctx context.Context, id, ownerID, episodeID uuid.UUID) error {
	query := `
		UPDATE podcasts SET
			episodes = COALESCE((
				SELECT jsonb_agg(e.value ORDER BY e.ordinality)
				FROM jsonb_array_elements(podcasts.episodes) WITH ORDINALITY AS e(value, ordinality)
				WHERE e.value->>'id' <> $3::text
			), '[]'::jsonb),
			updated_at = NOW()
		WHERE id = $1 AND owner_id = $2
		  AND episodes @> jsonb_build_array(jsonb_build_object('id', $3::text))
	`

	return pkgdb.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query, id, ownerID, episodeID.String())
		if err != nil {
			return fmt.Errorf("remove episode: %w", err)
		}
		if tag.RowsAffected() > 0 {
			return nil
		}

		// phân biệt podcast biến mất với episode không tồn tại
		var exists bool
		err = tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM podcasts WHERE id = $1 AND owner_id = $2)`, id, ownerID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check podcast: %w", err)
		}
		if !exists {
			return model.ErrPodcastNotFound
		}
		return model.ErrEpisodeNotFound
	})
}
