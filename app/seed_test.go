package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayoisaiah/studyblocks/store"
)

func TestSeed(t *testing.T) {
	ctx := context.Background()

	st, err := store.NewBolt(filepath.Join(t.TempDir(), "seed.db"))
	require.NoError(t, err)

	t.Cleanup(func() { _ = st.Close() })

	f, err := os.Open(filepath.Join("testdata", "seed.yml"))
	require.NoError(t, err)

	defer f.Close()

	res, err := seed(ctx, st, f)
	require.NoError(t, err)
	assert.Equal(t, seedResult{Users: 2, Sessions: 2, Blocks: 4}, res)

	ada, err := st.GetUserByName(ctx, "ada")
	require.NoError(t, err)

	sessions, err := st.ListSessions(ctx, ada.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	algebra, err := st.GetSession(ctx, ada.ID, sessions[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Linear algebra", algebra.Subject)
	assert.Equal(t, 30, algebra.TotalMinutes)
	require.Len(t, algebra.Blocks, 3)
	assert.False(t, algebra.Blocks[2].Completed)

	numbers, err := st.GetSession(ctx, ada.ID, sessions[1].ID)
	require.NoError(t, err)
	assert.True(t, numbers.Completed)
	assert.Equal(t, 50, numbers.TotalMinutes)

	_, err = f.Seek(0, 0)
	require.NoError(t, err)

	res, err = seed(ctx, st, f)
	require.NoError(t, err)
	assert.Equal(t, seedResult{Skipped: 2}, res)
}

func TestSeedInvalid(t *testing.T) {
	ctx := context.Background()

	st, err := store.NewBolt(filepath.Join(t.TempDir(), "seed.db"))
	require.NoError(t, err)

	t.Cleanup(func() { _ = st.Close() })

	cases := []struct {
		name string
		yaml string
		want error
	}{
		{
			name: "not yaml",
			yaml: "users: [",
			want: errParseSeed,
		},
		{
			name: "missing password",
			yaml: "users:\n  - username: bob\n    email: bob@example.com\n",
			want: errInvalidSeed,
		},
		{
			name: "unknown block type",
			yaml: `users:
  - username: carol
    email: carol@example.com
    password: pw
    sessions:
      - subject: History
        blocks:
          - type: nap
            minutes: 20
`,
			want: errInvalidSeed,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := seed(ctx, st, strings.NewReader(tc.yaml))
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
