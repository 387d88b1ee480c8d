package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestRenderTableAlignsNumericColumns(t *testing.T) {
	out := renderTable(
		[]column{{title: "Stage"}, {title: "Done", numeric: true}},
		[][]string{
			{"data-collection", "20%"},
			{"content", "40%"},
		},
	)

	for _, want := range []string{"Stage", "Done", "data-collection", "40%"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table output missing %q:\n%s", want, out)
		}
	}

	// Right alignment pads the shorter value on the left.
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "20%") && !strings.Contains(line, " 20%") {
			t.Fatalf("numeric column not right-aligned:\n%s", out)
		}
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable(
		[]column{{title: "A"}, {title: "B"}},
		[][]string{{"only"}},
	)
	if !strings.Contains(out, "only") {
		t.Fatalf("row value missing:\n%s", out)
	}
}

func TestEmitJSONWritesIndentedDocument(t *testing.T) {
	cmd := &cobra.Command{}
	var buf bytes.Buffer
	cmd.SetOut(&buf)

	if err := emitJSON(cmd, map[string]string{"campaign": "spring-sale-2026"}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if !strings.HasSuffix(buf.String(), "\n") {
		t.Fatal("output must end with a newline")
	}
	var doc map[string]string
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if doc["campaign"] != "spring-sale-2026" {
		t.Fatalf("unexpected document: %v", doc)
	}
	if !strings.Contains(buf.String(), "\n  \"campaign\"") {
		t.Fatalf("output is not indented:\n%s", buf.String())
	}
}
