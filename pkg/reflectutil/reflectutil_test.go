package reflectutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetColumnNames(t *testing.T) {
	type record struct {
		MessageID string
		ChannelID string
		ViewType  string
		CreatedAt int64
	}

	got := GetColumnNames(&record{})
	require.Equal(t, []string{"channel_id", "created_at", "message_id", "view_type"}, got)
}
