package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"loom/internal/campaign"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	cfgPath := filepath.Join(base, "loom.toml")
	body := fmt.Sprintf("[paths]\ncampaigns_root = %q\nlog_dir = %q\n",
		filepath.Join(base, "campaigns"), filepath.Join(base, "logs"))
	if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return cfgPath
}

func runCommand(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("command %v failed: %v\noutput: %s", args, err, out.String())
	}
	return out.String()
}

func TestInitAndStatusCommands(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out := runCommand(t, "", "-c", cfgPath, "init", "spring-sale", "--type", "promotional", "--name", "spring sale", "--json")
	var meta campaign.Metadata
	if err := json.Unmarshal([]byte(out), &meta); err != nil {
		t.Fatalf("parse init output: %v\n%s", err, out)
	}
	if meta.ID != "spring-sale" || meta.Status != campaign.StatusActive {
		t.Fatalf("unexpected metadata: %+v", meta)
	}

	raw := `{
		"consolidated_insights": {"audience_profile": "bargain hunters"},
		"pricing_analysis": {"currency": "USD", "list_price": 20},
		"date_analysis": {"campaign_start": "2026-05-01", "campaign_end": "2026-05-05"}
	}`
	campaignDir := filepath.Join(filepath.Dir(cfgPath), "campaigns", "spring-sale")
	out = runCommand(t, raw, "-c", cfgPath, "finalize", "data-collection", campaignDir)
	if !strings.Contains(out, "data-collection -> content (20%)") {
		t.Fatalf("unexpected finalize output: %s", out)
	}

	out = runCommand(t, "", "-c", cfgPath, "status", campaignDir, "--json")
	var snap map[string]any
	if err := json.Unmarshal([]byte(out), &snap); err != nil {
		t.Fatalf("parse status output: %v\n%s", err, out)
	}
	if snap["completion_percentage"] != 20.0 {
		t.Fatalf("unexpected completion: %v", snap["completion_percentage"])
	}
}

func TestToolsCommandScopesToStage(t *testing.T) {
	cfgPath := writeTestConfig(t)
	out := runCommand(t, "", "-c", cfgPath, "tools", "content", "--json")
	if strings.Contains(out, "finalize-design") {
		t.Fatalf("content toolset leaked another stage's tools: %s", out)
	}
	if !strings.Contains(out, "finalize-content") {
		t.Fatalf("content finalize tool missing: %s", out)
	}
}

func TestConfigInitCommand(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	out := runCommand(t, "", "config", "init", "--path", target)
	if !strings.Contains(out, target) {
		t.Fatalf("unexpected output: %s", out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample config not written: %v", err)
	}
}
