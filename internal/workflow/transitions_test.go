package workflow

import (
	"testing"

	"brototype.com/complaintdesk/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestDefaultTransitionsAllowEverything(t *testing.T) {
	table := DefaultTransitions()
	statuses := []model.Status{
		model.StatusOpen,
		model.StatusInProgress,
		model.StatusResolved,
		model.StatusClosed,
	}

	for _, from := range statuses {
		for _, to := range statuses {
			assert.True(t, table.Allowed(from, to), "%s -> %s should be allowed by default", from, to)
		}
	}
}

func TestTransitionsRejectUnknownStatus(t *testing.T) {
	table := DefaultTransitions()

	assert.False(t, table.Allowed(model.StatusOpen, model.Status("archived")))
	assert.False(t, table.Allowed(model.Status("pending"), model.StatusOpen))
}

func TestRestrictedTable(t *testing.T) {
	table := DefaultTransitions()
	table.Forbid(model.StatusClosed, model.StatusOpen)
	table.Forbid(model.StatusClosed, model.StatusInProgress)
	table.Forbid(model.StatusClosed, model.StatusResolved)

	assert.False(t, table.Allowed(model.StatusClosed, model.StatusOpen))
	assert.True(t, table.Allowed(model.StatusClosed, model.StatusClosed), "no-op stays allowed")
	assert.True(t, table.Allowed(model.StatusOpen, model.StatusClosed))

	table.Allow(model.StatusClosed, model.StatusOpen)
	assert.True(t, table.Allowed(model.StatusClosed, model.StatusOpen))
}
