package campaign

import "strings"

// Specialist identifies one of the five fixed pipeline stages.
type Specialist string

const (
	SpecialistDataCollection Specialist = "data-collection"
	SpecialistContent        Specialist = "content"
	SpecialistDesign         Specialist = "design"
	SpecialistQuality        Specialist = "quality"
	SpecialistDelivery       Specialist = "delivery"
)

// TotalStages is the fixed pipeline length.
const TotalStages = 5

var specialistOrder = []Specialist{
	SpecialistDataCollection,
	SpecialistContent,
	SpecialistDesign,
	SpecialistQuality,
	SpecialistDelivery,
}

var specialistIndex = func() map[Specialist]int {
	idx := make(map[Specialist]int, len(specialistOrder))
	for i, s := range specialistOrder {
		idx[s] = i
	}
	return idx
}()

// Specialists returns the fixed pipeline order.
func Specialists() []Specialist {
	cp := make([]Specialist, len(specialistOrder))
	copy(cp, specialistOrder)
	return cp
}

// ParseSpecialist converts a string into a known Specialist. Legacy
// "<name>-specialist" suffixes from older envelope files are accepted.
func ParseSpecialist(value string) (Specialist, bool) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.TrimSuffix(normalized, "-specialist")
	s := Specialist(normalized)
	_, ok := specialistIndex[s]
	return s, ok
}

// Index returns the zero-based position of the specialist in pipeline order.
func (s Specialist) Index() (int, bool) {
	i, ok := specialistIndex[s]
	return i, ok
}

// Next returns the immediate successor, or false for the terminal stage.
func (s Specialist) Next() (Specialist, bool) {
	i, ok := specialistIndex[s]
	if !ok || i == len(specialistOrder)-1 {
		return "", false
	}
	return specialistOrder[i+1], true
}

// Previous returns the immediate predecessor, or false for the first stage.
func (s Specialist) Previous() (Specialist, bool) {
	i, ok := specialistIndex[s]
	if !ok || i == 0 {
		return "", false
	}
	return specialistOrder[i-1], true
}

// IsTerminal reports whether the specialist is the last pipeline stage.
func (s Specialist) IsTerminal() bool {
	return s == specialistOrder[len(specialistOrder)-1]
}

// Valid reports whether the specialist is one of the five known stages.
func (s Specialist) Valid() bool {
	_, ok := specialistIndex[s]
	return ok
}

// Phase is the workflow phase recorded in campaign metadata. Phases follow
// the stage that is currently producing output.
type Phase string

const (
	PhaseDataCollection Phase = "data-collection"
	PhaseContent        Phase = "content-generation"
	PhaseDesign         Phase = "design"
	PhaseQuality        Phase = "quality-assurance"
	PhaseDelivery       Phase = "delivery"
	PhaseCompleted      Phase = "completed"
)

var specialistPhase = map[Specialist]Phase{
	SpecialistDataCollection: PhaseDataCollection,
	SpecialistContent:        PhaseContent,
	SpecialistDesign:         PhaseDesign,
	SpecialistQuality:        PhaseQuality,
	SpecialistDelivery:       PhaseDelivery,
}

// PhaseFor maps a specialist to its workflow phase.
func PhaseFor(s Specialist) Phase {
	if phase, ok := specialistPhase[s]; ok {
		return phase
	}
	return PhaseDataCollection
}

// CompletionPercent computes round(100 * completed / TotalStages).
func CompletionPercent(completed int) int {
	if completed < 0 {
		completed = 0
	}
	if completed > TotalStages {
		completed = TotalStages
	}
	return (completed*100 + TotalStages/2) / TotalStages
}
