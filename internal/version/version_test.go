package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfo(t *testing.T) {
	old := GitCommit
	t.Cleanup(func() { GitCommit = old })

	GitCommit = "0123456789abcdef"
	assert.Contains(t, Info(), "commit: 0123456")

	GitCommit = ""
	assert.Contains(t, Info(), "commit: unknown")
	assert.Contains(t, Info(), Version)
}
