package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLitePath(t *testing.T) {
	p, err := SQLitePath("file:data/app.db?_pragma=busy_timeout(5000)")
	require.NoError(t, err)
	assert.Equal(t, "data/app.db", p)

	p, err = SQLitePath("app.db")
	require.NoError(t, err)
	assert.Equal(t, "app.db", p)

	for _, dsn := range []string{"", "file::memory:", ":memory:", "file:x?mode=memory"} {
		_, err = SQLitePath(dsn)
		var unsupported *ErrUnsupported
		assert.ErrorAs(t, err, &unsupported, dsn)
	}
}

func TestExecuteCopiesAndPrunes(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "app.db")
	require.NoError(t, os.WriteFile(src, []byte("sqlite-bytes"), 0o644))
	backups := filepath.Join(dir, "backups")

	var last string
	for i := 0; i < 3; i++ {
		dst, err := Execute(Options{Driver: "sqlite", DSN: src, Dir: backups, Keep: 2})
		require.NoError(t, err)
		last = dst
		time.Sleep(5 * time.Millisecond)
	}

	data, err := os.ReadFile(last)
	require.NoError(t, err)
	assert.Equal(t, "sqlite-bytes", string(data))

	entries, err := os.ReadDir(backups)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestExecuteUnsupportedDriver(t *testing.T) {
	_, err := Execute(Options{Driver: "mysql"})
	var unsupported *ErrUnsupported
	assert.ErrorAs(t, err, &unsupported)
}
