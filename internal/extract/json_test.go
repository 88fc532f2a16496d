package extract

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestExtractJSONObjectRoundTrip(t *testing.T) {
	obj := map[string]any{
		"businessRequirements": []any{"req one", "req two"},
		"summary":              "an app",
	}
	buf, err := json.Marshal(obj)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		raw  string
	}{
		{"bare", string(buf)},
		{"fenced", "```json\n" + string(buf) + "\n```"},
		{"unlabeled fence", "```\n" + string(buf) + "\n```"},
		{"prose wrapped", "Here is the result: " + string(buf) + " Thanks."},
		{"prose and fence", "Sure!\n```json\n" + string(buf) + "\n```\nLet me know."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSONObject(tt.raw)
			if err != nil {
				t.Fatalf("ExtractJSONObject: %v", err)
			}
			if !reflect.DeepEqual(got, obj) {
				t.Fatalf("got %v, want %v", got, obj)
			}
		})
	}
}

func TestExtractJSONObjectErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"no braces", "plain prose with no object"},
		{"unparseable", "{not valid json}"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ExtractJSONObject(tt.raw); err == nil {
				t.Fatalf("expected error for %q", tt.raw)
			}
		})
	}
}

func TestFlattenWorkItemsNested(t *testing.T) {
	story := map[string]any{"title": "story one"}
	epic := map[string]any{"title": "epic one", "stories": []any{story}}
	data := map[string]any{
		"features": []any{
			map[string]any{"name": "f1", "epics": []any{epic}},
		},
	}

	got := FlattenWorkItems(data)

	epics, ok := got["epics"].([]any)
	if !ok || len(epics) != 1 {
		t.Fatalf("epics = %v", got["epics"])
	}
	stories, ok := got["stories"].([]any)
	if !ok || len(stories) != 1 {
		t.Fatalf("stories = %v", got["stories"])
	}
	// Original nested structure must survive.
	features := got["features"].([]any)
	feature := features[0].(map[string]any)
	if _, ok := feature["epics"]; !ok {
		t.Fatal("nested epics were stripped")
	}
	// Input map must not be mutated.
	if _, ok := data["epics"]; ok {
		t.Fatal("input map was mutated")
	}
}

func TestFlattenWorkItemsMergesTopLevel(t *testing.T) {
	nestedEpic := map[string]any{"title": "nested"}
	data := map[string]any{
		"features": []any{
			map[string]any{"epics": []any{nestedEpic}},
		},
		"epics":   []any{map[string]any{"title": "top-level"}},
		"stories": []any{map[string]any{"title": "existing story"}},
	}

	got := FlattenWorkItems(data)

	epics := got["epics"].([]any)
	if len(epics) != 2 {
		t.Fatalf("expected nested + top-level epics, got %d", len(epics))
	}
	if epics[0].(map[string]any)["title"] != "nested" {
		t.Fatal("nested epic should come first")
	}
	if len(got["stories"].([]any)) != 1 {
		t.Fatalf("stories = %v", got["stories"])
	}
}

func TestFlattenWorkItemsNoStructure(t *testing.T) {
	got := FlattenWorkItems(map[string]any{"summary": "nothing nested"})
	if len(got["epics"].([]any)) != 0 || len(got["stories"].([]any)) != 0 {
		t.Fatalf("expected empty arrays, got %v / %v", got["epics"], got["stories"])
	}
	if got["summary"] != "nothing nested" {
		t.Fatal("unrelated keys must be preserved")
	}
}
