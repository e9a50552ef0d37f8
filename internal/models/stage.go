package models

import (
	"fmt"
	"strings"
)

// Stage is one step of the hiring pipeline. The declaration order of the
// constants below is the left-to-right column order of the board.
type Stage string

const (
	StageApplied  Stage = "applied"
	StageScreen   Stage = "screen"
	StageTech     Stage = "tech"
	StageOffer    Stage = "offer"
	StageHired    Stage = "hired"
	StageRejected Stage = "rejected"
)

type stageInfo struct {
	name  string
	color string
}

var stageOrder = [...]Stage{
	StageApplied,
	StageScreen,
	StageTech,
	StageOffer,
	StageHired,
	StageRejected,
}

var stageMeta = map[Stage]stageInfo{
	StageApplied:  {name: "Applied", color: "stage-applied"},
	StageScreen:   {name: "Screening", color: "stage-screen"},
	StageTech:     {name: "Technical", color: "stage-tech"},
	StageOffer:    {name: "Offer", color: "stage-offer"},
	StageHired:    {name: "Hired", color: "stage-hired"},
	StageRejected: {name: "Rejected", color: "stage-rejected"},
}

// AllStages returns the registry in display order. The returned slice is a
// fresh copy.
func AllStages() []Stage {
	out := make([]Stage, len(stageOrder))
	copy(out, stageOrder[:])
	return out
}

func (s Stage) String() string { return string(s) }

func (s Stage) IsValid() bool {
	_, ok := stageMeta[s]
	return ok
}

// DisplayName returns the column title for the stage.
func (s Stage) DisplayName() string {
	if info, ok := stageMeta[s]; ok {
		return info.name
	}
	return string(s)
}

// ColorToken returns the style key the UI uses for the stage column.
func (s Stage) ColorToken() string {
	if info, ok := stageMeta[s]; ok {
		return info.color
	}
	return "stage-unknown"
}

// Index returns the column position of the stage, or -1 if it is not registered.
func (s Stage) Index() int {
	for i, st := range stageOrder {
		if st == s {
			return i
		}
	}
	return -1
}

// ParseStage normalises raw input and checks it against the registry.
func ParseStage(raw string) (Stage, error) {
	s := Stage(strings.ToLower(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", NewValidationError("stage", fmt.Sprintf("unknown stage %q", raw))
	}
	return s, nil
}

// StageInfo is the wire shape of a registry entry.
type StageInfo struct {
	ID    Stage  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Order int    `json:"order"`
}

func StageRegistry() []StageInfo {
	out := make([]StageInfo, 0, len(stageOrder))
	for i, s := range stageOrder {
		out = append(out, StageInfo{ID: s, Name: s.DisplayName(), Color: s.ColorToken(), Order: i})
	}
	return out
}
