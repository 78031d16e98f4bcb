package models

import (
	"strings"

	"github.com/google/uuid"
)

// PackagingKind enumerates the supported waste packaging types
type PackagingKind string

const (
	PackagingDrum      PackagingKind = "drum"
	PackagingContainer PackagingKind = "container"
	PackagingTote      PackagingKind = "tote"
	PackagingPallet    PackagingKind = "pallet"
	PackagingSack      PackagingKind = "sack"
	PackagingBox       PackagingKind = "box"
	PackagingBag       PackagingKind = "bag"
	PackagingTank      PackagingKind = "tank"
	PackagingOther     PackagingKind = "other"
)

// HazardClass is the six-flag hazard classification set
type HazardClass struct {
	Corrosive  bool `db:"hazard_corrosive" json:"corrosive"`
	Reactive   bool `db:"hazard_reactive" json:"reactive"`
	Explosive  bool `db:"hazard_explosive" json:"explosive"`
	Toxic      bool `db:"hazard_toxic" json:"toxic"`
	Flammable  bool `db:"hazard_flammable" json:"flammable"`
	Biological bool `db:"hazard_biological" json:"biological"`
}

// Letters renders the classification as its letter codes, e.g. "C, T, I"
func (h HazardClass) Letters() string {
	var letters []string
	if h.Corrosive {
		letters = append(letters, "C")
	}
	if h.Reactive {
		letters = append(letters, "R")
	}
	if h.Explosive {
		letters = append(letters, "E")
	}
	if h.Toxic {
		letters = append(letters, "T")
	}
	if h.Flammable {
		letters = append(letters, "I")
	}
	if h.Biological {
		letters = append(letters, "B")
	}
	return strings.Join(letters, ", ")
}

// WasteLine is one waste entry of a manifest version. Lines are owned by
// exactly one version and never shared across versions.
// Maps to: waste_line table
type WasteLine struct {
	ID        uuid.UUID `db:"id" json:"id"`
	VersionID uuid.UUID `db:"version_id" json:"version_id"`

	Name string `db:"name" json:"name"`

	// Always kilograms
	QuantityKg float64 `db:"quantity_kg" json:"quantity_kg"`

	Hazard HazardClass `json:"hazard"`

	Packaging         PackagingKind `db:"packaging" json:"packaging"`
	PackagingCapacity string        `db:"packaging_capacity" json:"packaging_capacity,omitempty"`

	// Mutually exclusive labeling flag pair
	LabeledYes bool `db:"labeled_yes" json:"labeled_yes"`
	LabeledNo  bool `db:"labeled_no" json:"labeled_no"`

	// Order within the version
	Position int `db:"position" json:"position"`
}

// CloneFor returns a full field copy of the line bound to another version,
// with a new identity
func (l *WasteLine) CloneFor(versionID uuid.UUID) *WasteLine {
	clone := *l
	clone.ID = uuid.New()
	clone.VersionID = versionID
	return &clone
}

// LabelingText renders the labeling flag pair for listings and dumps
func (l *WasteLine) LabelingText() string {
	if l.LabeledYes {
		return "yes"
	}
	return "no"
}
