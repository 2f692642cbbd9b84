// Package medication owns the global drug catalog.
package medication

import (
	"time"

	"github.com/google/uuid"
)

// Units accepted for a catalog entry.
var validUnits = map[string]bool{
	"mg": true, "ml": true, "tablets": true,
	"capsules": true, "drops": true, "patches": true,
}

// Medication maps to the medications table. The catalog is global; there is
// no owner and no ownership gate on reads.
type Medication struct {
	ID                uuid.UUID `db:"id" json:"id"`
	Name              string    `db:"name" json:"name"`
	Description       *string   `db:"description" json:"description,omitempty"`
	Dosage            string    `db:"dosage" json:"dosage"`
	Unit              string    `db:"unit" json:"unit"`
	Instructions      *string   `db:"instructions" json:"instructions,omitempty"`
	SideEffects       []string  `db:"side_effects" json:"side_effects"`
	Contraindications []string  `db:"contraindications" json:"contraindications"`
	BrandName         *string   `db:"brand_name" json:"brand_name,omitempty"`
	GenericName       *string   `db:"generic_name" json:"generic_name,omitempty"`
	Manufacturer      *string   `db:"manufacturer" json:"manufacturer,omitempty"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// CreateInput is the catalog creation request body.
type CreateInput struct {
	Name              string   `json:"name"`
	Description       *string  `json:"description"`
	Dosage            string   `json:"dosage"`
	Unit              string   `json:"unit"`
	Instructions      *string  `json:"instructions"`
	SideEffects       []string `json:"side_effects"`
	Contraindications []string `json:"contraindications"`
	BrandName         *string  `json:"brand_name"`
	GenericName       *string  `json:"generic_name"`
	Manufacturer      *string  `json:"manufacturer"`
}

// UpdateInput carries a partial catalog update; nil fields are left
// unchanged.
type UpdateInput struct {
	Name              *string  `json:"name"`
	Description       *string  `json:"description"`
	Dosage            *string  `json:"dosage"`
	Unit              *string  `json:"unit"`
	Instructions      *string  `json:"instructions"`
	SideEffects       []string `json:"side_effects"`
	Contraindications []string `json:"contraindications"`
	BrandName         *string  `json:"brand_name"`
	GenericName       *string  `json:"generic_name"`
	Manufacturer      *string  `json:"manufacturer"`
}

// ListFilter narrows the catalog listing.
type ListFilter struct {
	Search string
	Unit   string
}

// Interaction flags a pair of medications that share a generic name and
// would duplicate therapy.
type Interaction struct {
	MedicationID      uuid.UUID `json:"medication_id"`
	MedicationName    string    `json:"medication_name"`
	WithMedicationID  uuid.UUID `json:"with_medication_id"`
	WithMedication    string    `json:"with_medication_name"`
	GenericName       string    `json:"generic_name"`
	Description       string    `json:"description"`
}
