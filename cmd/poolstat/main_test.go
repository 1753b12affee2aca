package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"-cubes", "3"}, &stdout, &stderr))

	out := stdout.String()
	assert.Contains(t, out, "pools=1 in_use=1392 capacity=4096 allocations=9")
	assert.Contains(t, out, "available")
	assert.Empty(t, stderr.String())
}

func TestRunConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alloc.toml")
	require.NoError(t, os.WriteFile(path, []byte("pool_size = 464\nordering = \"resort\"\n"), 0o644))

	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"-config", path, "-cubes", "3", "-v"}, &stdout, &stderr))

	assert.Contains(t, stdout.String(), "pools=3 in_use=1392 capacity=1392")
	assert.Contains(t, stderr.String(), "pool created")
	assert.Contains(t, stderr.String(), "released")
}

func TestRunErrors(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Error(t, run([]string{"-cubes", "-1"}, &stdout, &stderr))
	assert.Error(t, run([]string{"-config", filepath.Join(t.TempDir(), "none.toml")}, &stdout, &stderr))
	assert.Error(t, run([]string{"-nope"}, &stdout, &stderr))
}

type stubReleaser struct {
	err   error
	calls int
}

func (s *stubReleaser) Release() error {
	s.calls++
	return s.err
}

func TestReleaseAfter(t *testing.T) {
	cause := errors.New("cube 2: out of memory")

	ok := &stubReleaser{}
	assert.Equal(t, cause, releaseAfter(ok, cause))
	assert.Equal(t, 1, ok.calls)

	failing := &stubReleaser{err: errors.New("munmap: invalid argument")}
	err := releaseAfter(failing, cause)
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "munmap: invalid argument")
	assert.Contains(t, err.Error(), "cube 2: out of memory")
}
