// Package paths gives campaign directories and handoff files distinct types
// so a handoff file path can never silently stand in for a campaign
// directory. Collaborators that still pass handoff file paths where a
// directory is expected go through NormalizeCampaignDir exactly once.
package paths

import (
	"fmt"
	"path/filepath"
	"strings"

	"loom/internal/campaign"
)

// HandoffDirName is the subdirectory holding envelope files.
const HandoffDirName = "handoffs"

// MetadataFileName is the campaign metadata file name.
const MetadataFileName = "campaign-metadata.json"

// ContentDirNames are the working subdirectories every campaign owns.
var ContentDirNames = []string{"data", "content", "assets", "templates", "docs", "exports", "logs"}

// CampaignDir is the root directory of one campaign's subtree.
type CampaignDir string

// HandoffFile is the path of one persisted envelope.
type HandoffFile string

func (d CampaignDir) String() string { return string(d) }

func (f HandoffFile) String() string { return string(f) }

// Metadata returns the campaign metadata file path.
func (d CampaignDir) Metadata() string {
	return filepath.Join(string(d), MetadataFileName)
}

// HandoffDir returns the handoffs subdirectory path.
func (d CampaignDir) HandoffDir() string {
	return filepath.Join(string(d), HandoffDirName)
}

// Artifact returns the path of a secondary artifact file relative to the
// campaign root (e.g. "content/email-content.json").
func (d CampaignDir) Artifact(rel string) string {
	return filepath.Join(string(d), filepath.FromSlash(rel))
}

// Handoff returns the canonical envelope path for a from→to pair.
func (d CampaignDir) Handoff(from, to campaign.Specialist) HandoffFile {
	return HandoffFile(filepath.Join(d.HandoffDir(), HandoffFileName(from, to)))
}

// HandoffFileName returns the canonical stage-pair file name.
func HandoffFileName(from, to campaign.Specialist) string {
	return fmt.Sprintf("%s-to-%s.json", from, to)
}

// LegacyHandoffFileName returns the older "<from>-specialist-to-<to>-specialist"
// alias still found in campaigns produced by earlier tooling.
func LegacyHandoffFileName(from, to campaign.Specialist) string {
	return fmt.Sprintf("%s-specialist-to-%s-specialist.json", from, to)
}

// TerminalHandoffFileName is the record written when the delivery stage
// completes and there is no successor to hand off to.
const TerminalHandoffFileName = "delivery-completion.json"

// TerminalHandoff returns the end-of-pipeline record path.
func (d CampaignDir) TerminalHandoff() HandoffFile {
	return HandoffFile(filepath.Join(d.HandoffDir(), TerminalHandoffFileName))
}

// LegacyHandoff returns the alias envelope path for a from→to pair.
func (d CampaignDir) LegacyHandoff(from, to campaign.Specialist) HandoffFile {
	return HandoffFile(filepath.Join(d.HandoffDir(), LegacyHandoffFileName(from, to)))
}

// NormalizeCampaignDir accepts either a campaign directory or a handoff file
// path and returns the campaign directory. Trailing "handoffs/<file>.json"
// segments are stripped.
func NormalizeCampaignDir(path string) CampaignDir {
	cleaned := filepath.Clean(strings.TrimSpace(path))
	if cleaned == "" || cleaned == "." {
		return CampaignDir(cleaned)
	}
	if strings.HasSuffix(strings.ToLower(cleaned), ".json") {
		cleaned = filepath.Dir(cleaned)
	}
	if filepath.Base(cleaned) == HandoffDirName {
		cleaned = filepath.Dir(cleaned)
	}
	return CampaignDir(cleaned)
}
