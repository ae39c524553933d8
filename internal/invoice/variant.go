package invoice

// Variant is the document classification derived from a Job. It selects the
// warranty text and whether the signature block is printed. It is never stored.
type Variant string

const (
	VariantDealer                Variant = "dealer"
	VariantFleet                 Variant = "fleet"
	VariantRockChipRepair        Variant = "rock_chip_repair"
	VariantWindshieldReplacement Variant = "windshield_replacement"
	VariantOtherGlassReplacement Variant = "other_glass_replacement"
)

// Variants lists every variant in classification precedence order.
var Variants = []Variant{
	VariantDealer,
	VariantFleet,
	VariantRockChipRepair,
	VariantWindshieldReplacement,
	VariantOtherGlassReplacement,
}

// Classify maps a job to its document variant. First match wins:
// dealer, fleet, single-part rock chip repair, any windshield replacement,
// everything else.
func Classify(job *Job) Variant {
	if job == nil {
		return VariantOtherGlassReplacement
	}
	switch job.CustomerType {
	case CustomerDealer:
		return VariantDealer
	case CustomerFleet:
		return VariantFleet
	}

	parts := job.Parts()
	if len(parts) == 1 && parts[0].JobType == JobTypeWindshieldRepair {
		return VariantRockChipRepair
	}
	for _, p := range parts {
		if p.JobType == JobTypeWindshieldReplacement {
			return VariantWindshieldReplacement
		}
	}
	return VariantOtherGlassReplacement
}

// IncludesSignature reports whether a signed acknowledgment is collected.
func IncludesSignature(job *Job, variant Variant) bool {
	return !job.IsBusiness && variant != VariantDealer
}

// IncludesCalibrationDisclaimer reports whether the declined ADAS
// calibration notice is printed.
func IncludesCalibrationDisclaimer(job *Job, variant Variant) bool {
	return job.CalibrationDeclined && variant == VariantWindshieldReplacement
}
