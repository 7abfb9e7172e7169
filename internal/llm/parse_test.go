package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestExtractJSON_Direct(t *testing.T) {
	raw, err := ExtractJSON(`[{"name": "a"}, {"name": "b"}]`)
	if err != nil {
		t.Fatalf("ExtractJSON failed: %v", err)
	}

	var items []map[string]string
	if err := json.Unmarshal(raw, &items); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("expected 2 items, got %d", len(items))
	}
}

func TestExtractJSON_FencedBlock(t *testing.T) {
	text := "Here is the data:\n```json\n{\"key\": \"value\"}\n```\nHope that helps!"
	raw, err := ExtractJSON(text)
	if err != nil {
		t.Fatalf("ExtractJSON failed: %v", err)
	}

	var obj map[string]string
	if err := json.Unmarshal(raw, &obj); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if obj["key"] != "value" {
		t.Errorf("expected value, got %q", obj["key"])
	}
}

func TestExtractJSON_FencedWithoutLanguage(t *testing.T) {
	text := "```\n[1, 2, 3]\n```"
	raw, err := ExtractJSON(text)
	if err != nil {
		t.Fatalf("ExtractJSON failed: %v", err)
	}

	var nums []int
	if err := json.Unmarshal(raw, &nums); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(nums) != 3 {
		t.Errorf("expected 3 numbers, got %d", len(nums))
	}
}

func TestExtractJSON_ArrayInProse(t *testing.T) {
	text := `Sure! The extracted events are: [{"description": "x"}] and that is all I found.`
	raw, err := ExtractJSON(text)
	if err != nil {
		t.Fatalf("ExtractJSON failed: %v", err)
	}

	var items []map[string]string
	if err := json.Unmarshal(raw, &items); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if items[0]["description"] != "x" {
		t.Errorf("unexpected content: %v", items)
	}
}

func TestExtractJSON_ObjectInProse(t *testing.T) {
	text := `The stance is {"stance": "pro", "confidence": 0.9} based on the quote.`
	raw, err := ExtractJSON(text)
	if err != nil {
		t.Fatalf("ExtractJSON failed: %v", err)
	}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if obj["stance"] != "pro" {
		t.Errorf("expected pro, got %v", obj["stance"])
	}
}

func TestExtractJSON_NoStructuredData(t *testing.T) {
	cases := []string{
		"Sure! Here's the data: not json",
		"",
		"just plain prose with no structure at all",
		"broken [json, here} too",
	}

	for _, text := range cases {
		_, err := ExtractJSON(text)
		if !errors.Is(err, ErrNoStructuredData) {
			t.Errorf("ExtractJSON(%q): expected ErrNoStructuredData, got %v", text, err)
		}
	}
}
