package client

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayoisaiah/studyblocks/store"
)

func TestCredentials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.json")

	_, err := LoadCredentials(path)
	assert.ErrorIs(t, err, ErrUnauthorized)

	want := &Credentials{
		ServerURL: "http://localhost:5555",
		Token:     "abc",
		Username:  "ada",
	}

	require.NoError(t, SaveCredentials(path, want))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := LoadCredentials(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	c := FromCredentials(got, "http://ignored")
	assert.Equal(t, "http://localhost:5555", c.BaseURL())
	assert.Equal(t, "abc", c.Token())

	require.NoError(t, DeleteCredentials(path))
	require.NoError(t, DeleteCredentials(path))

	_, err = LoadCredentials(path)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAPIErrorUnwrap(t *testing.T) {
	cases := []struct {
		want   error
		body   string
		status int
	}{
		{status: 401, body: `{"error":"Not logged in."}`, want: ErrUnauthorized},
		{status: 422, body: `{"error":"subject is required"}`, want: ErrInvalidRequest},
		{
			status: 422,
			body:   `{"error":"study session is already completed"}`,
			want:   store.ErrSessionCompleted,
		},
		{status: 500, body: `oops`, want: errServer},
	}

	for _, tc := range cases {
		err := newAPIError(tc.status, []byte(tc.body))
		assert.ErrorIs(t, err, tc.want)
	}

	assert.Equal(t, "Internal Server Error (500)", newAPIError(500, []byte("oops")).Error())
}
