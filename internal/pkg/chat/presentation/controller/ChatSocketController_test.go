package controller

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseInboundFrame(t *testing.T) {
	t.Parallel()

	frame, err := parseInboundFrame([]byte(`{"type":"message","target_id":7,"kind":"friend","body":"hi there"}`))
	require.NoError(t, err)
	require.Equal(t, "message", frame.Type)
	require.Equal(t, int64(7), frame.TargetID)
	require.Equal(t, "friend", frame.Kind)
	require.Equal(t, "hi there", frame.Body)
}

func TestParseInboundFramePartial(t *testing.T) {
	t.Parallel()

	// absent fields decode to zero values, handlers validate them
	frame, err := parseInboundFrame([]byte(`{"type":"leave"}`))
	require.NoError(t, err)
	require.Equal(t, "leave", frame.Type)
	require.Zero(t, frame.TargetID)
	require.Empty(t, frame.Kind)
	require.Empty(t, frame.Body)
}

func TestParseInboundFrameRejectsMalformed(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "{", `"just a string"?`, "{'single':1}"} {
		_, err := parseInboundFrame([]byte(raw))
		require.Error(t, err, "input %q", raw)
	}
}
