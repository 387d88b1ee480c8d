package store

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"loom/internal/campaign"
	"loom/internal/paths"
)

var titleCaser = cases.Title(language.English)

// renderReadme produces the campaign README written once at bootstrap.
func renderReadme(meta campaign.Metadata) string {
	title := titleCaser.String(strings.ReplaceAll(meta.Name, "-", " "))
	if strings.TrimSpace(title) == "" {
		title = meta.ID
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "- Campaign ID: %s\n", meta.ID)
	if meta.Brand != "" {
		fmt.Fprintf(&b, "- Brand: %s\n", meta.Brand)
	}
	fmt.Fprintf(&b, "- Type: %s\n", meta.Type)
	if meta.Audience != "" {
		fmt.Fprintf(&b, "- Audience: %s\n", meta.Audience)
	}
	fmt.Fprintf(&b, "- Created: %s\n\n", meta.CreatedAt.UTC().Format(time.RFC3339))

	b.WriteString("## Layout\n\n")
	for _, sub := range paths.ContentDirNames {
		fmt.Fprintf(&b, "- `%s/` %s\n", sub, dirPurpose(sub))
	}
	fmt.Fprintf(&b, "- `%s/` stage-to-stage handoff envelopes\n", paths.HandoffDirName)
	return b.String()
}

func dirPurpose(name string) string {
	switch name {
	case "data":
		return "collected research and analysis"
	case "content":
		return "drafted copy and content analysis"
	case "assets":
		return "produced visual assets"
	case "templates":
		return "compiled templates"
	case "docs":
		return "quality and compliance reports"
	case "exports":
		return "final deliverables"
	case "logs":
		return "stage execution logs"
	default:
		return "working files"
	}
}
