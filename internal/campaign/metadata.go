package campaign

import (
	"strings"
	"time"
)

// Status represents the campaign lifecycle recorded in metadata.
type Status string

const (
	StatusActive    Status = "active"
	StatusDraft     Status = "draft"
	StatusCompleted Status = "completed"
	StatusArchived  Status = "archived"
)

var statusSet = map[Status]struct{}{
	StatusActive:    {},
	StatusDraft:     {},
	StatusCompleted: {},
	StatusArchived:  {},
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	_, ok := statusSet[normalized]
	return normalized, ok
}

// Type classifies the campaign's purpose.
type Type string

const (
	TypePromotional   Type = "promotional"
	TypeTransactional Type = "transactional"
	TypeNewsletter    Type = "newsletter"
	TypeAnnouncement  Type = "announcement"
)

var typeSet = map[Type]struct{}{
	TypePromotional:   {},
	TypeTransactional: {},
	TypeNewsletter:    {},
	TypeAnnouncement:  {},
}

// ParseType converts a string into a known campaign Type.
func ParseType(value string) (Type, bool) {
	normalized := Type(strings.ToLower(strings.TrimSpace(value)))
	_, ok := typeSet[normalized]
	return normalized, ok
}

// Ref is the denormalized campaign identity copied into every handoff
// envelope so downstream stages never re-read metadata for identity fields.
type Ref struct {
	ID       string `json:"campaign_id"`
	Name     string `json:"campaign_name"`
	Brand    string `json:"brand"`
	Type     Type   `json:"campaign_type"`
	Audience string `json:"target_audience"`
}

// Metadata is the identity and lifecycle record for one production run.
// Completion flags are monotonic: once a specialist is recorded complete it
// is never reset within the campaign's lifetime.
type Metadata struct {
	ID        string    `json:"campaign_id"`
	Name      string    `json:"campaign_name"`
	Brand     string    `json:"brand"`
	Type      Type      `json:"campaign_type"`
	Audience  string    `json:"target_audience"`
	CreatedAt time.Time `json:"created_at"`
	Phase     Phase     `json:"workflow_phase"`
	Completed Flags     `json:"specialists_completed"`
	Status    Status    `json:"status"`
}

// Flags records per-specialist completion.
type Flags struct {
	DataCollection bool `json:"data-collection"`
	Content        bool `json:"content"`
	Design         bool `json:"design"`
	Quality        bool `json:"quality"`
	Delivery       bool `json:"delivery"`
}

// Done reports whether the given specialist has completed.
func (f Flags) Done(s Specialist) bool {
	switch s {
	case SpecialistDataCollection:
		return f.DataCollection
	case SpecialistContent:
		return f.Content
	case SpecialistDesign:
		return f.Design
	case SpecialistQuality:
		return f.Quality
	case SpecialistDelivery:
		return f.Delivery
	default:
		return false
	}
}

// MarkDone returns a copy with the given specialist flagged complete.
// Flags never transition back to false.
func (f Flags) MarkDone(s Specialist) Flags {
	switch s {
	case SpecialistDataCollection:
		f.DataCollection = true
	case SpecialistContent:
		f.Content = true
	case SpecialistDesign:
		f.Design = true
	case SpecialistQuality:
		f.Quality = true
	case SpecialistDelivery:
		f.Delivery = true
	}
	return f
}

// CompletedList returns the completed specialists in pipeline order.
func (f Flags) CompletedList() []Specialist {
	var out []Specialist
	for _, s := range Specialists() {
		if f.Done(s) {
			out = append(out, s)
		}
	}
	return out
}

// Count returns the number of completed specialists.
func (f Flags) Count() int {
	return len(f.CompletedList())
}

// AllDone reports whether every specialist has completed.
func (f Flags) AllDone() bool {
	return f.Count() == TotalStages
}

// Ref builds the denormalized identity view embedded in envelopes.
func (m Metadata) Ref() Ref {
	return Ref{
		ID:       m.ID,
		Name:     m.Name,
		Brand:    m.Brand,
		Type:     m.Type,
		Audience: m.Audience,
	}
}

// CompletionPercent computes the campaign's completion percentage from the
// recorded flags.
func (m Metadata) CompletionPercent() int {
	return CompletionPercent(m.Completed.Count())
}
