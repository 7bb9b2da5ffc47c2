package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveParams(t *testing.T) {
	flowData := map[string]any{
		"kind":   "primary",
		"amount": "150.50",
	}
	params := map[string]any{
		"redirectTarget": "{$.kind}Home",
		"summary":        "sending {$.amount}",
		"static":         "completed",
		"count":          3,
		"nested": map[string]any{
			"kind": "{$.kind}",
		},
	}
	out := ResolveParams(flowData, params)
	require.Equal(t, "primaryHome", out["redirectTarget"])
	require.Equal(t, "sending 150.50", out["summary"])
	require.Equal(t, "completed", out["static"])
	require.Equal(t, 3, out["count"])
	require.Equal(t, "primary", out["nested"].(map[string]any)["kind"])
}

func TestResolveParamsMissingPath(t *testing.T) {
	out := ResolveParams(map[string]any{}, map[string]any{"value": "{$.missing}"})
	require.Equal(t, "{$.missing}", out["value"])
}
