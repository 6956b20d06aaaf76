package notify

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBuildEvent_JSONShape(t *testing.T) {
	ev := BuildEvent{
		BuildID:     "abc12345",
		Input:       "site",
		Output:      "public",
		Pages:       4,
		Assets:      2,
		Failures:    1,
		DurationMS:  321,
		CompletedAt: time.Unix(1700000000, 0).UTC(),
	}

	payload, err := json.Marshal(ev)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))
	require.Equal(t, "abc12345", decoded["build_id"])
	require.Equal(t, float64(4), decoded["pages"])
	require.Equal(t, float64(1), decoded["failures"])
	require.Equal(t, float64(321), decoded["duration_ms"])
	require.Contains(t, decoded, "completed_at")
}
