package toon

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeScalars(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected string
	}{
		{"string", "hello", "hello"},
		{"ambiguous string", "true", `"true"`},
		{"numeric string", "42", `"42"`},
		{"integer", 42, "42"},
		{"float", 1.5, "1.5"},
		{"bool", true, "true"},
		{"null", nil, "null"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			encoded, err := Encode(tc.value)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, encoded)
		})
	}
}

func TestEncodeTabularArray(t *testing.T) {
	value := map[string]any{
		"racks": []any{
			map[string]any{"name": "rack-1", "units": 42, "powered": true},
			map[string]any{"name": "rack-2", "units": 48, "powered": false},
		},
	}

	encoded, err := Encode(value)
	require.NoError(t, err)

	expected := strings.Join([]string{
		"racks[2]{name,powered,units}:",
		"  rack-1,true,42",
		"  rack-2,false,48",
	}, "\n")
	assert.Equal(t, expected, encoded)
}

func TestEncodeInlineScalarList(t *testing.T) {
	encoded, err := Encode(map[string]any{"metros": []any{"Amsterdam", "Berlin", "Paris"}})
	require.NoError(t, err)
	assert.Equal(t, "metros[3]: Amsterdam,Berlin,Paris", encoded)
}

func TestEncodeEmptyList(t *testing.T) {
	encoded, err := Encode(map[string]any{"nodes": []any{}})
	require.NoError(t, err)
	assert.Equal(t, "nodes[0]:", encoded)
}

func TestEncodeMixedArrayFallsBackToList(t *testing.T) {
	value := map[string]any{
		"items": []any{
			map[string]any{"name": "a"},
			map[string]any{"name": "b", "extra": true},
		},
	}

	encoded, err := Encode(value)
	require.NoError(t, err)
	assert.Contains(t, encoded, "items[2]:")
	assert.Contains(t, encoded, "-")
	assert.NotContains(t, encoded, "{")
}

func TestEncodeCellQuoting(t *testing.T) {
	value := map[string]any{
		"rows": []any{
			map[string]any{"label": "a,b"},
			map[string]any{"label": "plain"},
		},
	}

	encoded, err := Encode(value)
	require.NoError(t, err)
	assert.Contains(t, encoded, `"a,b"`)

	decoded, err := Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, value, decoded)
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{
			name:  "flat map",
			value: map[string]any{"name": "dc-fra-01", "racks": float64(12), "active": true},
		},
		{
			name:  "scalar list",
			value: map[string]any{"strategies": []any{"ebgp-evpn", "isis-ibgp", "ospf-ibgp", "ebgp-ibgp"}},
		},
		{
			name: "tabular",
			value: map[string]any{
				"pools": []any{
					map[string]any{"name": "Management-IPv4", "prefix": "172.16.0.0/18"},
					map[string]any{"name": "Loopback-IPv4", "prefix": "10.0.0.0/24"},
				},
			},
		},
		{
			name: "nested datacenters",
			value: map[string]any{
				"datacenters": []any{
					map[string]any{
						"name":     "dc1",
						"metro":    "Amsterdam",
						"design":   "M-Standard",
						"strategy": "ebgp-ibgp",
						"pods": []any{
							map[string]any{"name": "pod-1", "racks": float64(8)},
							map[string]any{"name": "pod-2", "racks": float64(8)},
						},
					},
					map[string]any{
						"name":     "dc2",
						"metro":    "Berlin",
						"design":   "L-Hierarchical",
						"strategy": "ebgp-evpn",
						"pods": []any{
							map[string]any{"name": "pod-1", "racks": float64(16)},
						},
					},
				},
				"total": float64(2),
			},
		},
		{
			name: "mixed values",
			value: map[string]any{
				"empty_list": []any{},
				"empty_map":  map[string]any{},
				"nil_value":  nil,
				"nested":     map[string]any{"deep": map[string]any{"value": float64(1)}},
			},
		},
		{
			name:  "top-level array",
			value: []any{"a", "b", "c"},
		},
		{
			name:  "empty map",
			value: map[string]any{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			encoded, err := Encode(tc.value)
			require.NoError(t, err)

			decoded, err := Decode(encoded)
			require.NoError(t, err)
			assert.Equal(t, tc.value, decoded)
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name     string
		document string
	}{
		{"odd indentation", "a:\n b: 1"},
		{"row count mismatch", "items[2]{name}:\n  only-one"},
		{"cell count mismatch", "items[1]{a,b}:\n  single"},
		{"unterminated header", "items[2: x"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.document)
			assert.Error(t, err)
		})
	}
}

func TestEncodeNotSerializable(t *testing.T) {
	_, err := Encode(make(chan int))
	assert.Error(t, err)

	_, err = Analyze(func() {})
	assert.Error(t, err)
}

func TestAnalyze(t *testing.T) {
	value := map[string]any{
		"nodes": []any{
			map[string]any{"name": "leaf-01", "role": "leaf", "asn": 65000},
			map[string]any{"name": "leaf-02", "role": "leaf", "asn": 65001},
			map[string]any{"name": "spine-01", "role": "spine", "asn": 64512},
		},
	}

	stats, err := Analyze(value)
	require.NoError(t, err)

	assert.Greater(t, stats.JSONLength, 0)
	assert.Greater(t, stats.ToonLength, 0)
	assert.Less(t, stats.ToonLength, stats.JSONLength)
	assert.Greater(t, stats.SavingsPercent, 0.0)
}

func TestAnalyzeSavingsFlooredAtZero(t *testing.T) {
	// A bare number renders identically in both formats
	stats, err := Analyze(42)
	require.NoError(t, err)
	assert.Equal(t, 0.0, stats.SavingsPercent)
}
