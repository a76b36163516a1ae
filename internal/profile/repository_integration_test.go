//go:build integration

package profile

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentledger/talentledger/internal/apperr"
	"github.com/talentledger/talentledger/internal/testutil/containers"
)

func TestPostgresRepositoryRoundTripsEveryCategory(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	svc := NewService(NewPostgresRepository(pg.Pool))
	ctx := context.Background()
	user := uuid.NewString()
	pg.CreateUser(t, user, "profile@talentledger.io")

	for _, c := range Categories {
		src := svc.Source(c)
		n, err := src.Count(ctx, user)
		require.NoError(t, err)
		assert.Zero(t, n, c)

		entry, err := svc.Add(ctx, user, c, EntryInput{Title: string(c) + " entry", Organization: "Acme"})
		require.NoError(t, err)

		n, err = src.Count(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, 1, n, c)

		entries, err := svc.List(ctx, user, c)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, entry.ID, entries[0].ID)
		assert.Equal(t, "Acme", entries[0].Organization)
	}

	entries, err := svc.List(ctx, user, Skills)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, user, Skills, entries[0].ID))
	err = svc.Delete(ctx, user, Skills, entries[0].ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
