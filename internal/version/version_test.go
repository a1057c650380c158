package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	old := Version
	t.Cleanup(func() { Version = old })
	Version = "v1.2.3"

	s := String()
	assert.True(t, strings.HasPrefix(s, "v1.2.3 (commit: "), s)
	assert.Contains(t, s, "go")
}
