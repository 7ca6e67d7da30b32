package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leakhound/leakhound/internal/ignore"
)

func runWalk(t *testing.T, cfg Config) (seen []string, warned []string) {
	t.Helper()
	ign, err := ignore.Load(cfg.Root + "/" + ignore.FileName)
	require.NoError(t, err)
	_, werr := walkFiles(context.Background(), cfg, ign,
		func(rel string, data []byte) { seen = append(seen, rel) },
		func(path, msg string) { warned = append(warned, path) })
	require.NoError(t, werr)
	return seen, warned
}

func TestWalkDefaultExcludes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/main.go", "package main\n")
	writeFile(t, root, "node_modules/pkg/index.js", "var x = 1\n")
	writeFile(t, root, "dist/app.min.js", "var x=1\n")
	writeFile(t, root, "yarn.lock", "lockfile\n")

	seen, _ := runWalk(t, Config{Root: root, MaxBytes: defaultMaxBytes, DefaultExcludes: true})
	assert.Equal(t, []string{"src/main.go"}, seen)
}

func TestWalkWithoutDefaultExcludes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "node_modules/pkg/index.js", "var x = 1\n")

	seen, _ := runWalk(t, Config{Root: root, MaxBytes: defaultMaxBytes})
	assert.Equal(t, []string{"node_modules/pkg/index.js"}, seen)
}

func TestWalkIncludeExcludeGlobs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.py", "x = 1\n")
	writeFile(t, root, "b.js", "var x = 1\n")
	writeFile(t, root, "sub/c.py", "y = 2\n")

	seen, _ := runWalk(t, Config{Root: root, MaxBytes: defaultMaxBytes, IncludeGlobs: "**/*.py"})
	assert.ElementsMatch(t, []string{"a.py", "sub/c.py"}, seen)

	seen, _ = runWalk(t, Config{Root: root, MaxBytes: defaultMaxBytes, ExcludeGlobs: "**/*.py"})
	assert.Equal(t, []string{"b.js"}, seen)
}

func TestWalkHonorsIgnoreFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ignore.FileName, "secrets/\n*.env\n")
	writeFile(t, root, "secrets/key.txt", "anything\n")
	writeFile(t, root, "prod.env", "anything\n")
	writeFile(t, root, "keep.txt", "anything\n")

	seen, _ := runWalk(t, Config{Root: root, MaxBytes: defaultMaxBytes})
	assert.ElementsMatch(t, []string{ignore.FileName, "keep.txt"}, seen)
}

func TestWalkFileDirective(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "gen.txt", "# leakhound:ignore-file\ndata\n")
	writeFile(t, root, "plain.txt", "data\n")

	seen, _ := runWalk(t, Config{Root: root, MaxBytes: defaultMaxBytes})
	assert.Equal(t, []string{"plain.txt"}, seen)
}

func TestWalkWarnsOnEmptyFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "empty.txt", "")

	seen, warned := runWalk(t, Config{Root: root, MaxBytes: defaultMaxBytes})
	assert.Empty(t, seen)
	assert.Equal(t, []string{"empty.txt"}, warned)
}

func TestWalkSizeLimit(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "big.txt", "0123456789abcdef0123456789abcdef\n")

	seen, warned := runWalk(t, Config{Root: root, MaxBytes: 16})
	assert.Empty(t, seen)
	assert.Equal(t, []string{"big.txt"}, warned)
}
