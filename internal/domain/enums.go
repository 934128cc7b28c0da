package domain

import (
	"strings"
)

// WorkArea is a trade classification shared by article categories
// and a user's primary area of work.
type WorkArea string

// Known work areas.
const (
	WorkAreaStructural WorkArea = "GRUBI_RADOVI"
	WorkAreaPlumbing   WorkArea = "VODA_I_PLIN"
	WorkAreaElectrical WorkArea = "ELEKTRIKA"
	WorkAreaTiling     WorkArea = "KERAMIKA"
)

var workAreaLabels = map[WorkArea]string{
	WorkAreaStructural: "Grubi radovi",
	WorkAreaPlumbing:   "Voda i plin",
	WorkAreaElectrical: "Elektrika",
	WorkAreaTiling:     "Keramika",
}

// Label returns the display name.
func (w WorkArea) Label() string {
	return workAreaLabels[w]
}

// ParseWorkArea accepts a code or label, case-insensitively.
func ParseWorkArea(field, s string) (WorkArea, error) {
	return parseEnum(field, s, workAreaLabels)
}

// MeasureUnit is the unit an article is priced per.
type MeasureUnit string

// Known measure units.
const (
	MeasureUnitSquareMeter MeasureUnit = "M2"
	MeasureUnitCubicMeter  MeasureUnit = "M3"
	MeasureUnitPiece       MeasureUnit = "KOM"
)

var measureUnitLabels = map[MeasureUnit]string{
	MeasureUnitSquareMeter: "m²",
	MeasureUnitCubicMeter:  "m³",
	MeasureUnitPiece:       "kom",
}

// Label returns the display symbol.
func (u MeasureUnit) Label() string {
	return measureUnitLabels[u]
}

// ParseMeasureUnit accepts a code or label, case-insensitively.
func ParseMeasureUnit(field, s string) (MeasureUnit, error) {
	return parseEnum(field, s, measureUnitLabels)
}

// ProjectStatus is the lifecycle stage of a project.
type ProjectStatus string

// Known project statuses.
const (
	ProjectStatusActive    ProjectStatus = "AKTIVAN"
	ProjectStatusPending   ProjectStatus = "NA_CEKANJU"
	ProjectStatusCompleted ProjectStatus = "ZAVRSEN"
)

var projectStatusLabels = map[ProjectStatus]string{
	ProjectStatusActive:    "Aktivan",
	ProjectStatusPending:   "Na čekanju",
	ProjectStatusCompleted: "Završen",
}

// Label returns the display name.
func (s ProjectStatus) Label() string {
	return projectStatusLabels[s]
}

// ParseProjectStatus accepts a code or label, case-insensitively.
func ParseProjectStatus(field, s string) (ProjectStatus, error) {
	return parseEnum(field, s, projectStatusLabels)
}

func parseEnum[T ~string](field, s string, labels map[T]string) (T, error) {
	value := strings.TrimSpace(s)

	for code, label := range labels {
		if strings.EqualFold(string(code), value) || strings.EqualFold(label, value) {
			return code, nil
		}
	}

	var zero T

	return zero, NewValidationErrorWithValue(field, "unknown value", s)
}
