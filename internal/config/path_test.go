package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, filepath.Join(home, "receipts.db"), ExpandPath("~/receipts.db"))
	assert.Equal(t, "/var/lib/receipts.db", ExpandPath("/var/lib/receipts.db"))

	t.Setenv("RECEIPTS_TEST_DIR", "/data")
	assert.Equal(t, "/data/receipts.db", ExpandPath("$RECEIPTS_TEST_DIR/receipts.db"))
}
