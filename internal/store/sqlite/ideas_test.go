package sqlite_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/ideaforge/internal/domain"
	"github.com/davidbz/ideaforge/internal/store/sqlite"
)

var _ domain.IdeaRepository = (*sqlite.IdeaStore)(nil)

func newTestStore(t *testing.T) *sqlite.IdeaStore {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "ideas.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func record(id string, ideaType domain.IdeaType, at time.Time) *domain.IdeaRecord {
	return &domain.IdeaRecord{
		ID:             id,
		Text:           "idea " + id,
		IdeaType:       ideaType,
		Score:          6.5,
		Recommendation: domain.RecommendationExplore,
		Provider:       domain.ProviderHeuristic,
		Cached:         id == "b",
		CreatedAt:      at,
	}
}

func TestIdeaStore_SaveAndList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 600, time.UTC)

	require.NoError(t, store.Save(ctx, record("a", domain.IdeaTechnical, base)))
	require.NoError(t, store.Save(ctx, record("b", domain.IdeaBusiness, base.Add(time.Minute))))
	require.NoError(t, store.Save(ctx, record("c", domain.IdeaContent, base.Add(2*time.Minute))))

	records, err := store.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "c", records[0].ID)
	require.Equal(t, "b", records[1].ID)
	require.True(t, records[1].Cached)
	require.Equal(t, domain.IdeaBusiness, records[1].IdeaType)
	require.Equal(t, domain.RecommendationExplore, records[1].Recommendation)
	require.Equal(t, domain.ProviderHeuristic, records[1].Provider)
	require.True(t, base.Add(time.Minute).Equal(records[1].CreatedAt))
}

func TestIdeaStore_SameTimestampNewestInsertFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	at := time.Now().UTC()

	for i := range 3 {
		require.NoError(t, store.Save(ctx, record(fmt.Sprintf("r%d", i), domain.IdeaGeneral, at)))
	}

	records, err := store.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, "r2", records[0].ID)
	require.Equal(t, "r0", records[2].ID)
}

func TestIdeaStore_DuplicateID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, record("a", domain.IdeaGeneral, time.Now())))
	err := store.Save(ctx, record("a", domain.IdeaGeneral, time.Now()))
	require.Error(t, err)
	require.Contains(t, err.Error(), "save idea")
}

func TestIdeaStore_CountByType(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Save(ctx, record("a", domain.IdeaTechnical, now)))
	require.NoError(t, store.Save(ctx, record("b", domain.IdeaTechnical, now)))
	require.NoError(t, store.Save(ctx, record("c", domain.IdeaContent, now)))

	counts, err := store.CountByType(ctx)
	require.NoError(t, err)
	require.Equal(t, map[domain.IdeaType]int{
		domain.IdeaTechnical: 2,
		domain.IdeaContent:   1,
	}, counts)
}

func TestIdeaStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ideas.db")
	ctx := context.Background()

	store, err := sqlite.New(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, record("a", domain.IdeaGeneral, time.Now())))
	require.NoError(t, store.Close())

	reopened, err := sqlite.New(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	records, err := reopened.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestNew_EmptyPath(t *testing.T) {
	_, err := sqlite.New("")
	require.Error(t, err)
}
