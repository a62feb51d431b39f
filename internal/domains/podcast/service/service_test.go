package service

import (
	"context"
	"sync"
	"time"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podcast-catalog/internal/domains/podcast/model"
	"podcast-catalog/internal/testutil"
)

type fixture struct {
	svc   ServiceInterface
	repo  *testutil.MemoryPodcastRepository
	cache *testutil.MemoryCache
	owner uuid.UUID
	other uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := testutil.NewMemoryPodcastRepository()
	c := testutil.NewMemoryCache()
	return &fixture{
		svc:   NewPodcastService(repo, c),
		repo:  repo,
		cache: c,
		owner: uuid.New(),
		other: uuid.New(),
	}
}

func strPtr(s string) *string { return &s }

func validCreate() model.CreatePodcastRequest {
	return model.CreatePodcastRequest{Title: "T", Author: "A", Description: "D", ImageURL: "http://i"}
}

func (f *fixture) create(t *testing.T) *model.Podcast {
	t.Helper()
	p, err := f.svc.Create(context.Background(), f.owner, validCreate())
	require.NoError(t, err)
	return p
}

func TestCreateAssignsOwnerFromCaller(t *testing.T) {
	f := newFixture(t)
	p := f.create(t)

	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.Equal(t, f.owner, p.OwnerID)
	assert.NotNil(t, p.Episodes)
	assert.Empty(t, p.Episodes)
	assert.False(t, p.CreatedAt.IsZero())
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)

	for _, field := range []string{"title", "author", "description", "imageUrl"} {
		t.Run(field, func(t *testing.T) {
			req := validCreate()
			switch field {
			case "title":
				req.Title = "   "
			case "author":
				req.Author = ""
			case "description":
				req.Description = ""
			case "imageUrl":
				req.ImageURL = ""
			}
			_, err := f.svc.Create(context.Background(), f.owner, req)
			var verrs validation.Errors
			require.ErrorAs(t, err, &verrs)
			assert.Contains(t, verrs, field)
		})
	}
	assert.Equal(t, 0, f.repo.Len())
}

func TestCreateWithInitialEpisodes(t *testing.T) {
	f := newFixture(t)
	req := validCreate()
	dur := 42.0
	req.Episodes = []model.EpisodeInput{
		{Title: "E1", AudioURL: "http://a/1.mp3", Duration: &dur},
		{Title: "E2", AudioURL: "http://a/2.mp3"},
	}

	p, err := f.svc.Create(context.Background(), f.owner, req)
	require.NoError(t, err)
	require.Len(t, p.Episodes, 2)
	assert.NotEqual(t, p.Episodes[0].ID, p.Episodes[1].ID)
	assert.Equal(t, "E1", p.Episodes[0].Title)
	assert.False(t, p.Episodes[1].ReleaseDate.IsZero())

	bad := validCreate()
	bad.Episodes = []model.EpisodeInput{{Title: "no audio"}}
	_, err = f.svc.Create(context.Background(), f.owner, bad)
	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "episodes")
}

func TestCreateRequiresCaller(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(context.Background(), uuid.Nil, validCreate())
	assert.ErrorIs(t, err, model.ErrUnauthenticated)
}

func TestListNewestFirst(t *testing.T) {
	f := newFixture(t)
	first := f.create(t)
	second := f.create(t)

	list, err := f.svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	if first.CreatedAt.Equal(second.CreatedAt) {
		t.Skip("timestamps collided")
	}
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}

func TestGetUsesCache(t *testing.T) {
	f := newFixture(t)
	p := f.create(t)
	ctx := context.Background()

	got, err := f.svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.True(t, f.cache.Has(detailCacheKey(p.ID, 0)))

	// cache hit không cần store
	f.repo.Err = assert.AnError
	cached, err := f.svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "T", cached.Title)
}

// pausingRepo dừng lần FindByID đầu tiên sau khi đã đọc xong row
type pausingRepo struct {
	*testutil.MemoryPodcastRepository
	once    sync.Once
	read    chan struct{}
	release chan struct{}
}

func (r *pausingRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Podcast, error) {
	p, err := r.MemoryPodcastRepository.FindByID(ctx, id)
	r.once.Do(func() {
		close(r.read)
		<-r.release
	})
	return p, err
}

func TestSlowGetCannotResurrectDeletedPodcast(t *testing.T) {
	ctx := context.Background()
	repo := &pausingRepo{
		MemoryPodcastRepository: testutil.NewMemoryPodcastRepository(),
		read:                    make(chan struct{}),
		release:                 make(chan struct{}),
	}
	store := testutil.NewMemoryCache()
	svc := NewPodcastService(repo, store)
	owner := uuid.New()

	p, err := svc.Create(ctx, owner, validCreate())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Get(ctx, p.ID)
		done <- err
	}()

	select {
	case <-repo.read:
	case <-time.After(5 * time.Second):
		t.Fatal("Get never reached the store")
	}

	require.NoError(t, svc.Delete(ctx, p.ID, owner))
	close(repo.release)
	require.NoError(t, <-done)

	_, err = svc.Get(ctx, p.ID)
	assert.ErrorIs(t, err, model.ErrPodcastNotFound)
}

func TestSlowGetCannotServeStaleUpdate(t *testing.T) {
	ctx := context.Background()
	repo := &pausingRepo{
		MemoryPodcastRepository: testutil.NewMemoryPodcastRepository(),
		read:                    make(chan struct{}),
		release:                 make(chan struct{}),
	}
	svc := NewPodcastService(repo, testutil.NewMemoryCache())
	owner := uuid.New()

	p, err := svc.Create(ctx, owner, validCreate())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Get(ctx, p.ID)
		done <- err
	}()
	<-repo.read

	_, err = svc.Update(ctx, p.ID, owner, model.UpdatePodcastRequest{Title: strPtr("Renamed")})
	require.NoError(t, err)
	close(repo.release)
	require.NoError(t, <-done)

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
}

func TestGetSurvivesCacheOutage(t *testing.T) {
	f := newFixture(t)
	p := f.create(t)
	f.cache.SetFailure(testutil.ErrCacheDown)

	got, err := f.svc.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
}

func TestGetNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, model.ErrPodcastNotFound)
}

func TestUpdateMergesPatchAndInvalidatesCache(t *testing.T) {
	f := newFixture(t)
	p := f.create(t)
	ctx := context.Background()

	_, err := f.svc.Get(ctx, p.ID)
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, p.ID, f.owner, model.UpdatePodcastRequest{Title: strPtr("New")})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)
	assert.Equal(t, "A", updated.Author)
	assert.Equal(t, f.owner, updated.OwnerID)
	assert.False(t, f.cache.Has(detailCacheKey(p.ID, 1)))

	got, err := f.svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Title)
}

func TestUpdateRejectsEmptyRequiredField(t *testing.T) {
	f := newFixture(t)
	p := f.create(t)

	_, err := f.svc.Update(context.Background(), p.ID, f.owner, model.UpdatePodcastRequest{Author: strPtr("")})
	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "author")
}

func TestEmptyPatchReturnsCurrent(t *testing.T) {
	f := newFixture(t)
	p := f.create(t)

	got, err := f.svc.Update(context.Background(), p.ID, f.owner, model.UpdatePodcastRequest{})
	require.NoError(t, err)
	assert.Equal(t, p.Title, got.Title)
}

func TestNonOwnerMutationsAreForbiddenAndLeaveStateUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.create(t)
	withEp, err := f.svc.AddEpisode(ctx, p.ID, f.owner, model.EpisodeInput{Title: "E", AudioURL: "http://a"})
	require.NoError(t, err)
	epID := withEp.Episodes[0].ID

	before, err := f.repo.FindByID(ctx, p.ID)
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, p.ID, f.other, model.UpdatePodcastRequest{Title: strPtr("hijack")})
	assert.ErrorIs(t, err, model.ErrForbidden)

	err = f.svc.Delete(ctx, p.ID, f.other)
	assert.ErrorIs(t, err, model.ErrForbidden)

	_, err = f.svc.AddEpisode(ctx, p.ID, f.other, model.EpisodeInput{Title: "X", AudioURL: "http://x"})
	assert.ErrorIs(t, err, model.ErrForbidden)

	err = f.svc.DeleteEpisode(ctx, p.ID, epID, f.other)
	assert.ErrorIs(t, err, model.ErrForbidden)

	after, err := f.repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestErrorPrecedence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.create(t)

	// podcast không tồn tại thắng mọi thứ khác
	err := f.svc.DeleteEpisode(ctx, uuid.New(), uuid.New(), f.other)
	assert.ErrorIs(t, err, model.ErrPodcastNotFound)

	// ownership được kiểm tra trước khi tìm episode
	err = f.svc.DeleteEpisode(ctx, p.ID, uuid.New(), f.other)
	assert.ErrorIs(t, err, model.ErrForbidden)

	err = f.svc.DeleteEpisode(ctx, p.ID, uuid.New(), f.owner)
	assert.ErrorIs(t, err, model.ErrEpisodeNotFound)

	// non-owner với payload sai vẫn nhận Forbidden
	_, err = f.svc.AddEpisode(ctx, p.ID, f.other, model.EpisodeInput{})
	assert.ErrorIs(t, err, model.ErrForbidden)
}

func TestDeleteTwiceIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.create(t)

	require.NoError(t, f.svc.Delete(ctx, p.ID, f.owner))

	err := f.svc.Delete(ctx, p.ID, f.owner)
	assert.ErrorIs(t, err, model.ErrPodcastNotFound)

	_, err = f.svc.Get(ctx, p.ID)
	assert.ErrorIs(t, err, model.ErrPodcastNotFound)
}

func TestAddThenDeleteEpisodeRestoresSequence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.create(t)

	first, err := f.svc.AddEpisode(ctx, p.ID, f.owner, model.EpisodeInput{Title: "E1", AudioURL: "http://a/1"})
	require.NoError(t, err)
	before := first.Episodes

	added, err := f.svc.AddEpisode(ctx, p.ID, f.owner, model.EpisodeInput{Title: "E2", AudioURL: "http://a/2"})
	require.NoError(t, err)
	require.Len(t, added.Episodes, 2)
	newID := added.Episodes[1].ID
	assert.False(t, added.Episodes[1].ReleaseDate.IsZero())

	require.NoError(t, f.svc.DeleteEpisode(ctx, p.ID, newID, f.owner))

	got, err := f.svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, before, got.Episodes)
}

func TestAddEpisodeValidation(t *testing.T) {
	f := newFixture(t)
	p := f.create(t)
	neg := -1.0

	_, err := f.svc.AddEpisode(context.Background(), p.ID, f.owner, model.EpisodeInput{Title: "E", AudioURL: "http://a", Duration: &neg})
	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "duration")
}

func TestConcurrentAddEpisodeLosesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.create(t)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.AddEpisode(ctx, p.ID, f.owner, model.EpisodeInput{Title: "E", AudioURL: "http://a"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := f.repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, got.Episodes, n)
}

func TestAuthorize(t *testing.T) {
	owner := uuid.New()
	p := &model.Podcast{OwnerID: owner}

	assert.NoError(t, Authorize(owner, p))
	assert.ErrorIs(t, Authorize(uuid.New(), p), model.ErrForbidden)
	assert.ErrorIs(t, Authorize(uuid.Nil, p), model.ErrUnauthenticated)
	assert.ErrorIs(t, Authorize(owner, nil), model.ErrForbidden)
}
