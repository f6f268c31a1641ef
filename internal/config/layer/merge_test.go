package layer

import (
	"reflect"
	"testing"
)

func TestDeepMerge(t *testing.T) {
	tests := []struct {
		name     string
		dst      map[string]any
		src      map[string]any
		expected map[string]any
	}{
		{
			name:     "nil dst",
			dst:      nil,
			src:      map[string]any{"a": 1},
			expected: map[string]any{"a": 1},
		},
		{
			name:     "nil src",
			dst:      map[string]any{"a": 1},
			src:      nil,
			expected: map[string]any{"a": 1},
		},
		{
			name:     "simple merge - no overlap",
			dst:      map[string]any{"a": 1},
			src:      map[string]any{"b": 2},
			expected: map[string]any{"a": 1, "b": 2},
		},
		{
			name:     "src overrides dst",
			dst:      map[string]any{"a": 1},
			src:      map[string]any{"a": 2},
			expected: map[string]any{"a": 2},
		},
		{
			name: "nested merge",
			dst: map[string]any{
				"keymaps": map[string]any{
					"search": "<leader>cs",
				},
			},
			src: map[string]any{
				"keymaps": map[string]any{
					"analyze": "<leader>ca",
				},
			},
			expected: map[string]any{
				"keymaps": map[string]any{
					"search":  "<leader>cs",
					"analyze": "<leader>ca",
				},
			},
		},
		{
			name: "nested override leaves siblings",
			dst: map[string]any{
				"tools": map[string]any{
					"search":  "cseek",
					"analyze": "cseek-analyze",
				},
			},
			src: map[string]any{
				"tools": map[string]any{
					"search": "cseek-next",
				},
			},
			expected: map[string]any{
				"tools": map[string]any{
					"search":  "cseek-next",
					"analyze": "cseek-analyze",
				},
			},
		},
		{
			name: "deep nested merge",
			dst: map[string]any{
				"level1": map[string]any{
					"level2": map[string]any{
						"a": 1,
					},
				},
			},
			src: map[string]any{
				"level1": map[string]any{
					"level2": map[string]any{
						"b": 2,
					},
				},
			},
			expected: map[string]any{
				"level1": map[string]any{
					"level2": map[string]any{
						"a": 1,
						"b": 2,
					},
				},
			},
		},
		{
			name: "non-map overwrites map",
			dst: map[string]any{
				"value": map[string]any{"a": 1},
			},
			src: map[string]any{
				"value": "string",
			},
			expected: map[string]any{
				"value": "string",
			},
		},
		{
			name: "map overwrites non-map",
			dst: map[string]any{
				"value": "string",
			},
			src: map[string]any{
				"value": map[string]any{"a": 1},
			},
			expected: map[string]any{
				"value": map[string]any{"a": 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DeepMerge(tt.dst, tt.src)
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("DeepMerge() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestGetByPath(t *testing.T) {
	data := map[string]any{
		"keymaps": map[string]any{
			"search": "<leader>cs",
			"nested": map[string]any{
				"deep": "value",
			},
		},
		"simple": "string",
	}

	tests := []struct {
		path     string
		expected any
		found    bool
	}{
		{"keymaps.search", "<leader>cs", true},
		{"keymaps.nested.deep", "value", true},
		{"simple", "string", true},
		{"nonexistent", nil, false},
		{"keymaps.nonexistent", nil, false},
		{"keymaps.search.invalid", nil, false},
	}

	for _, tt := range tests {
		val, found := GetByPath(data, tt.path)
		if found != tt.found {
			t.Errorf("GetByPath(%q): found = %v, want %v", tt.path, found, tt.found)
		}
		if found && val != tt.expected {
			t.Errorf("GetByPath(%q) = %v, want %v", tt.path, val, tt.expected)
		}
	}
}

func TestSetByPath(t *testing.T) {
	data := map[string]any{}

	SetByPath(data, "history.max_entries", 50)

	history, ok := data["history"].(map[string]any)
	if !ok {
		t.Fatal("history should be a map")
	}
	if history["max_entries"] != 50 {
		t.Errorf("max_entries = %v, want 50", history["max_entries"])
	}

	// Overwrite an existing leaf
	SetByPath(data, "history.max_entries", 100)
	if history["max_entries"] != 100 {
		t.Errorf("max_entries = %v, want 100", history["max_entries"])
	}
}

func TestDeepMerge_SourceIsolation(t *testing.T) {
	src := map[string]any{
		"tools": map[string]any{
			"search": "cseek",
		},
	}

	merged := DeepMerge(nil, src)

	// Mutating the merge result must not reach the source layer
	tools := merged["tools"].(map[string]any)
	tools["search"] = "changed"

	srcTools := src["tools"].(map[string]any)
	if srcTools["search"] != "cseek" {
		t.Error("merge result mutation leaked into source map")
	}
}
