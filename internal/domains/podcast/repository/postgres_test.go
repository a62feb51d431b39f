package repository

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podcast-catalog/internal/domains/podcast/model"
	"podcast-catalog/internal/infrastructure/database"
)

// Các test này cần Postgres thật: TEST_DATABASE_URL hoặc DATABASE_URL
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		url = os.Getenv("DATABASE_URL")
	}
	if url == "" {
		t.Skip("TEST_DATABASE_URL / DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, pool.Ping(ctx))

	_, err = (&database.PostgresDB{Pool: pool}).Migrate(ctx)
	require.NoError(t, err)
	return pool
}

// createOwner insert user để thỏa FK owner_id; cleanup xóa podcasts trước rồi tới user
func createOwner(t *testing.T, pool *pgxpool.Pool) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO users (id, email, password_hash) VALUES ($1, $2, 'hash')`,
		id, id.String()+"@repo.test")
	require.NoError(t, err)

	t.Cleanup(func() {
		ctx := context.Background()
		_, _ = pool.Exec(ctx, `DELETE FROM podcasts WHERE owner_id = $1`, id)
		_, _ = pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	})
	return id
}

func newPodcast(ownerID uuid.UUID) *model.Podcast {
	legacy := "http://legacy/a.mp3"
	return &model.Podcast{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Title:       "Show",
		Author:      "Host",
		Description: "About things",
		ImageURL:    "http://img/1.png",
		AudioURL:    &legacy,
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}
}

func episode(title string) model.Episode {
	return model.Episode{
		ID:          uuid.New(),
		Title:       title,
		AudioURL:    "http://a/" + title + ".mp3",
		ReleaseDate: time.Now().UTC().Truncate(time.Millisecond),
	}
}

func strPtr(s string) *string { return &s }

func episodeTitles(p *model.Podcast) []string {
	titles := make([]string, 0, len(p.Episodes))
	for _, ep := range p.Episodes {
		titles = append(titles, ep.Title)
	}
	return titles
}

func TestPostgresCreateAndFind(t *testing.T) {
	pool := testPool(t)
	repo := NewPostgresRepository(pool)
	ctx := context.Background()
	owner := createOwner(t, pool)

	p := newPodcast(owner)
	require.NoError(t, repo.Create(ctx, p))

	got, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Title, got.Title)
	assert.Equal(t, owner, got.OwnerID)
	assert.NotNil(t, got.Episodes)
	assert.Empty(t, got.Episodes)
	assert.True(t, p.CreatedAt.Equal(got.CreatedAt))

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, model.ErrPodcastNotFound)
}

func TestPostgresUpdateMergesPatch(t *testing.T) {
	pool := testPool(t)
	repo := NewPostgresRepository(pool)
	ctx := context.Background()
	owner := createOwner(t, pool)

	p := newPodcast(owner)
	require.NoError(t, repo.Create(ctx, p))

	// field nil giữ nguyên (COALESCE)
	got, err := repo.Update(ctx, p.ID, owner, model.UpdatePodcastRequest{Title: strPtr("Renamed")})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, "Host", got.Author)
	assert.Equal(t, "About things", got.Description)
	require.NotNil(t, got.AudioURL)
	assert.Equal(t, "http://legacy/a.mp3", *got.AudioURL)
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))

	// audioUrl "" xóa giá trị legacy
	got, err = repo.Update(ctx, p.ID, owner, model.UpdatePodcastRequest{AudioURL: strPtr("")})
	require.NoError(t, err)
	assert.Nil(t, got.AudioURL)
	assert.Equal(t, "Renamed", got.Title)

	got, err = repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.AudioURL)

	_, err = repo.Update(ctx, p.ID, uuid.New(), model.UpdatePodcastRequest{Title: strPtr("Hijack")})
	assert.ErrorIs(t, err, model.ErrPodcastNotFound)
}

func TestPostgresAppendAndRemoveEpisodeKeepOrder(t *testing.T) {
	pool := testPool(t)
	repo := NewPostgresRepository(pool)
	ctx := context.Background()
	owner := createOwner(t, pool)

	p := newPodcast(owner)
	require.NoError(t, repo.Create(ctx, p))

	eps := []model.Episode{episode("e1"), episode("e2"), episode("e3")}
	for _, ep := range eps {
		_, err := repo.AppendEpisode(ctx, p.ID, owner, ep)
		require.NoError(t, err)
	}

	got, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e2", "e3"}, episodeTitles(got))
	assert.Equal(t, eps[1].ID, got.Episodes[1].ID)

	require.NoError(t, repo.RemoveEpisode(ctx, p.ID, owner, eps[1].ID))
	got, err = repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e3"}, episodeTitles(got))

	// xóa hết vẫn là mảng rỗng, không phải NULL
	require.NoError(t, repo.RemoveEpisode(ctx, p.ID, owner, eps[0].ID))
	require.NoError(t, repo.RemoveEpisode(ctx, p.ID, owner, eps[2].ID))
	got, err = repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.Episodes)
	assert.Empty(t, got.Episodes)

	_, err = repo.AppendEpisode(ctx, p.ID, uuid.New(), episode("x"))
	assert.ErrorIs(t, err, model.ErrPodcastNotFound)
}

func TestPostgresRemoveEpisodeErrors(t *testing.T) {
	pool := testPool(t)
	repo := NewPostgresRepository(pool)
	ctx := context.Background()
	owner := createOwner(t, pool)

	p := newPodcast(owner)
	require.NoError(t, repo.Create(ctx, p))
	ep := episode("only")
	_, err := repo.AppendEpisode(ctx, p.ID, owner, ep)
	require.NoError(t, err)

	// podcast còn nhưng episode không có
	err = repo.RemoveEpisode(ctx, p.ID, owner, uuid.New())
	assert.ErrorIs(t, err, model.ErrEpisodeNotFound)

	// sai owner như podcast không tồn tại
	err = repo.RemoveEpisode(ctx, p.ID, uuid.New(), ep.ID)
	assert.ErrorIs(t, err, model.ErrPodcastNotFound)

	err = repo.RemoveEpisode(ctx, uuid.New(), owner, ep.ID)
	assert.ErrorIs(t, err, model.ErrPodcastNotFound)

	got, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, got.Episodes, 1)

	require.NoError(t, repo.Delete(ctx, p.ID, owner))
	err = repo.RemoveEpisode(ctx, p.ID, owner, ep.ID)
	assert.ErrorIs(t, err, model.ErrPodcastNotFound)
}

func TestPostgresConcurrentAppendsAllLand(t *testing.T) {
	pool := testPool(t)
	repo := NewPostgresRepository(pool)
	ctx := context.Background()
	owner := createOwner(t, pool)

	p := newPodcast(owner)
	require.NoError(t, repo.Create(ctx, p))

	const writers = 20
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.AppendEpisode(ctx, p.ID, owner, episode(uuid.NewString()))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, got.Episodes, writers)

	seen := make(map[uuid.UUID]bool, writers)
	for _, ep := range got.Episodes {
		seen[ep.ID] = true
	}
	assert.Len(t, seen, writers)
}

func TestPostgresDeleteOwnerScoped(t *testing.T) {
	pool := testPool(t)
	repo := NewPostgresRepository(pool)
	ctx := context.Background()
	owner := createOwner(t, pool)

	p := newPodcast(owner)
	require.NoError(t, repo.Create(ctx, p))

	assert.ErrorIs(t, repo.Delete(ctx, p.ID, uuid.New()), model.ErrPodcastNotFound)
	require.NoError(t, repo.Delete(ctx, p.ID, owner))
	assert.ErrorIs(t, repo.Delete(ctx, p.ID, owner), model.ErrPodcastNotFound)

	_, err := repo.FindByID(ctx, p.ID)
	assert.ErrorIs(t, err, model.ErrPodcastNotFound)
}
