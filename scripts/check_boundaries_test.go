package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSource(t *testing.T, root string, rel string, imports ...string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	src := "package x\n\nimport (\n"
	for _, imp := range imports {
		src += "\t_ \"" + imp + "\"\n"
	}
	src += ")\n"
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
}

func TestCollectViolationsFlagsLayerBreaks(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "community-events/event-service/domain/entities/event.go", "time")
	writeSource(t, root, "community-events/event-service/application/commands/rsvp.go",
		"communitypulse/contexts/community-events/event-service/ports",
		"communitypulse/contracts/identity/v1",
		"communitypulse/contexts/community-events/event-service/adapters/memory",
	)
	writeSource(t, root, "community-events/event-service/ports/ports.go",
		"communitypulse/internal/platform/config",
	)
	writeSource(t, root, "community-events/trust-score-service/domain/services/score.go",
		"github.com/shopspring/decimal",
	)
	writeSource(t, root, "community-signals/poll-service/adapters/http/handler.go",
		"communitypulse/contexts/community-events/event-service/ports",
		"github.com/google/uuid",
	)

	violations, err := collectViolations(root)
	require.NoError(t, err)

	rules := make(map[string]string, len(violations))
	for _, v := range violations {
		rules[v.Import] = v.Rule
	}
	assert.Len(t, violations, 4)
	assert.Equal(t, "application must not import adapters",
		rules["communitypulse/contexts/community-events/event-service/adapters/memory"])
	assert.Equal(t, "ports must not import runtime infrastructure",
		rules["communitypulse/internal/platform/config"])
	assert.Equal(t, "domain import is outside explicit allowlist",
		rules["github.com/shopspring/decimal"])
	assert.Equal(t, "cross-service imports are forbidden",
		rules["communitypulse/contexts/community-events/event-service/ports"])
}

func TestIsStdlib(t *testing.T) {
	assert.True(t, isStdlib("net/http"))
	assert.False(t, isStdlib("communitypulse/internal/platform/config"))
	assert.False(t, isStdlib("gorm.io/gorm"))
}
