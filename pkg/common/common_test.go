package common

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUniqueInt64(t *testing.T) {
	assert.Equal(t, []int64{3, 1, 2}, UniqueInt64([]int64{3, 1, 3, 2, 1}))
	assert.Empty(t, UniqueInt64(nil))
}

func TestSplitTrim(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SplitTrim(" a, ,b ,", ","))
	assert.Nil(t, SplitTrim("", ","))
}

func TestIfEmptyStr(t *testing.T) {
	assert.Equal(t, "def", IfEmptyStr("  ", "def"))
	assert.Equal(t, "x", IfEmptyStr("x", "def"))
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	assert.True(t, FileExists(dir))
	assert.False(t, FileExists(filepath.Join(dir, "missing")))
}
