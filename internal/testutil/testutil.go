// Package testutil holds helpers shared by the package tests.
package testutil

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/ayoisaiah/studyblocks/internal/osutil"
)

type GoldenTest interface {
	Output() ([]byte, string)
}

// CompareGoldenFile verifies that the output of an operation matches
// the expected output.
func CompareGoldenFile(t *testing.T, tc GoldenTest) {
	t.Helper()

	if runtime.GOOS == osutil.Windows {
		// TODO: need to sort out line endings
		t.Skip("skipping golden file test in Windows")
	}

	g := goldie.New(
		t,
		goldie.WithFixtureDir("testdata"),
	)

	snap, golden := tc.Output()

	if snap != nil {
		g.Assert(t, golden, snap)
		return
	}

	f := filepath.Join("testdata", golden+".golden")
	if _, err := os.Stat(f); err == nil || errors.Is(err, os.ErrExist) {
		t.Fatalf("expected no output, but golden file exists: %s", f)
	}
}

// JSONGolden is a GoldenTest that compares an indented JSON rendering of
// Value against testdata/Name.golden.
type JSONGolden struct {
	Value any
	Name  string
}

func (j JSONGolden) Output() ([]byte, string) {
	b, err := json.MarshalIndent(j.Value, "", "  ")
	if err != nil {
		panic(err)
	}

	return append(b, '\n'), j.Name
}
