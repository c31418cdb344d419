package database

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationFilesOrderAndFilter(t *testing.T) {
	fsys := fstest.MapFS{
		"010_index.sql":      {Data: []byte("SELECT 1")},
		"002_users.sql":      {Data: []byte("SELECT 1")},
		"001_extensions.sql": {Data: []byte("SELECT 1")},
		"README.md":          {Data: []byte("notes")},
		"old/003_x.sql":      {Data: []byte("SELECT 1")},
	}

	files, err := migrationFiles(fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_extensions.sql", "002_users.sql", "010_index.sql"}, files)
}

func TestEmbeddedSchemaIsComplete(t *testing.T) {
	files, err := migrationFiles(Source(""))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"001_extensions.sql",
		"002_legal_files.sql",
		"003_users.sql",
		"004_chat_messages.sql",
	}, files)
}
