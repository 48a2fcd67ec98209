package tasks

import (
	"encoding/json"
	"testing"
	"time"

	"smartparking/models"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReleaseTask(t *testing.T) {
	until := time.Date(2025, 3, 14, 16, 0, 0, 0, time.UTC)
	task, opts, err := NewReleaseTask(models.ReleasePayload{SpotID: "s1", Until: until.Format(time.RFC3339)}, until)
	require.NoError(t, err)

	assert.Equal(t, TypeOccupancyRelease, task.Type())
	var p models.ReleasePayload
	require.NoError(t, json.Unmarshal(task.Payload(), &p))
	assert.Equal(t, "s1", p.SpotID)
	assert.Equal(t, "2025-03-14T16:00:00Z", p.Until)

	found := map[asynq.OptionType]any{}
	for _, o := range opts {
		found[o.Type()] = o.Value()
	}
	assert.Equal(t, until, found[asynq.ProcessAtOpt])
	assert.Equal(t, "release:s1:1741968000", found[asynq.TaskIDOpt])
}
