package invoice

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================================
// CUSTOMER CATEGORY
// ============================================================================

// CustomerType is the billing category of the customer on a job.
type CustomerType string

const (
	CustomerRetail CustomerType = "retail"
	CustomerDealer CustomerType = "dealer"
	CustomerFleet  CustomerType = "fleet"
)

// IsValid checks if the customer type is one of the known categories.
func (c CustomerType) IsValid() bool {
	switch c {
	case CustomerRetail, CustomerDealer, CustomerFleet:
		return true
	default:
		return false
	}
}

// ============================================================================
// JOB TYPE
// ============================================================================

// JobType identifies the glass work performed for a single part.
type JobType string

const (
	JobTypeUnspecified           JobType = ""
	JobTypeWindshieldReplacement JobType = "windshield_replacement"
	JobTypeWindshieldRepair      JobType = "windshield_repair"
	JobTypeDoorGlass             JobType = "door_glass"
	JobTypeBackGlass             JobType = "back_glass"
	JobTypeQuarterGlass          JobType = "quarter_glass"
	JobTypeSunroof               JobType = "sunroof"
	JobTypeSideMirror            JobType = "side_mirror"
)

// IsValid checks if the job type is part of the fixed enumeration.
func (t JobType) IsValid() bool {
	switch t {
	case JobTypeUnspecified, JobTypeWindshieldReplacement, JobTypeWindshieldRepair,
		JobTypeDoorGlass, JobTypeBackGlass, JobTypeQuarterGlass, JobTypeSunroof, JobTypeSideMirror:
		return true
	default:
		return false
	}
}

// ============================================================================
// JOB ENTITY
// ============================================================================

// Job is one billable service engagement, fully populated by the job
// management system before an invoice is generated.
type Job struct {
	JobNumber    string       `json:"jobNumber" validate:"required"`
	CustomerType CustomerType `json:"customerType" validate:"omitempty,oneof=retail dealer fleet"`
	IsBusiness   bool         `json:"isBusiness"`
	BusinessName string       `json:"businessName,omitempty"`
	FirstName    string       `json:"firstName,omitempty"`
	LastName     string       `json:"lastName,omitempty"`

	StreetAddress string `json:"streetAddress,omitempty"`
	City          string `json:"city,omitempty"`
	State         string `json:"state,omitempty"`
	ZipCode       string `json:"zipCode,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Email         string `json:"email,omitempty" validate:"omitempty,email"`

	InstallDate *time.Time `json:"installDate,omitempty"`
	CreatedAt   time.Time  `json:"createdAt" validate:"required"`

	Vehicles []Vehicle `json:"vehicles" validate:"dive"`

	TotalDue   decimal.Decimal `json:"totalDue"`
	AmountPaid decimal.Decimal `json:"amountPaid"`
	BalanceDue decimal.Decimal `json:"balanceDue"`

	CalibrationDeclined bool `json:"calibrationDeclined"`
}

// Vehicle is owned by exactly one Job.
type Vehicle struct {
	Year  string `json:"vehicleYear,omitempty"`
	Make  string `json:"vehicleMake,omitempty"`
	Model string `json:"vehicleModel,omitempty"`
	VIN   string `json:"vin,omitempty" validate:"omitempty,max=17"`
	Parts []Part `json:"parts" validate:"dive"`
}

// Part is owned by exactly one Vehicle. Quantity is always one.
type Part struct {
	JobType   JobType         `json:"jobType" validate:"omitempty,oneof=windshield_replacement windshield_repair door_glass back_glass quarter_glass sunroof side_mirror"`
	PartTotal decimal.Decimal `json:"partTotal"`
}

// Parts flattens the parts of every vehicle in storage order.
func (j *Job) Parts() []Part {
	if j == nil {
		return nil
	}
	var parts []Part
	for _, v := range j.Vehicles {
		parts = append(parts, v.Parts...)
	}
	return parts
}

// Subtotal sums every part total on the job.
func (j *Job) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, p := range j.Parts() {
		total = total.Add(p.PartTotal)
	}
	return total
}

// Reconciles reports whether totalDue equals balanceDue plus amountPaid.
func (j *Job) Reconciles() bool {
	return j.TotalDue.Equal(j.BalanceDue.Add(j.AmountPaid))
}

// InvoiceDate is the install date when present, else the creation date.
func (j *Job) InvoiceDate() time.Time {
	if j.InstallDate != nil && !j.InstallDate.IsZero() {
		return *j.InstallDate
	}
	return j.CreatedAt
}

// Description renders "year make model" skipping empty parts.
func (v Vehicle) Description() string {
	return joinNonEmpty(" ", v.Year, v.Make, v.Model)
}
