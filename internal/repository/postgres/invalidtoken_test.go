package postgres

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/sga-edu/sgaauth/internal/testutil"
)

func Test_InvalidTokenRepo(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	withRepo := func(t *testing.T, fn func(r *InvalidTokenRepo)) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			fn(&InvalidTokenRepo{DB: tx})
		})
	}

	t.Run("Add and Contains", func(t *testing.T) {
		withRepo(t, func(r *InvalidTokenRepo) {
			err := r.Add(t.Context(), "some.raw.token", time.Now().Add(8*time.Hour))
			require.NoError(t, err)

			found, err := r.Contains(t.Context(), "some.raw.token")
			require.NoError(t, err)
			require.True(t, found)

			found, err = r.Contains(t.Context(), "other.raw.token")
			require.NoError(t, err)
			require.False(t, found, "lookup is exact string match")
		})
	})

	t.Run("Add is idempotent", func(t *testing.T) {
		withRepo(t, func(r *InvalidTokenRepo) {
			expiresAt := time.Now().Add(8 * time.Hour)

			require.NoError(t, r.Add(t.Context(), "some.raw.token", expiresAt))
			require.NoError(t, r.Add(t.Context(), "some.raw.token", expiresAt), "second insert must not error")

			found, err := r.Contains(t.Context(), "some.raw.token")
			require.NoError(t, err)
			require.True(t, found)
		})
	})

	t.Run("DeleteExpired", func(t *testing.T) {
		withRepo(t, func(r *InvalidTokenRepo) {
			now := time.Now()

			require.NoError(t, r.Add(t.Context(), "dead.token", now.Add(-time.Hour)))
			require.NoError(t, r.Add(t.Context(), "live.token", now.Add(time.Hour)))

			deleted, err := r.DeleteExpired(t.Context(), now)
			require.NoError(t, err)
			require.Equal(t, int64(1), deleted)

			found, err := r.Contains(t.Context(), "dead.token")
			require.NoError(t, err)
			require.False(t, found)

			found, err = r.Contains(t.Context(), "live.token")
			require.NoError(t, err)
			require.True(t, found, "records still inside their veto window must survive")
		})
	})
}
