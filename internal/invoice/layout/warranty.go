package layout

import "github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/invoice"

// paragraph is one atomic piece of legal text.
type paragraph struct {
	heading bool
	text    string
}

const (
	WarrantyHeading = "WARRANTY INFORMATION"

	workmanshipWarranty = "We warrant our installation workmanship against air leaks, water leaks and " +
		"wind noise caused by improper installation for as long as you own the vehicle on which the " +
		"glass was installed. Manufacturing defects in the glass itself are covered for one (1) year " +
		"from the installation date. If a covered defect appears, we will repair or replace the " +
		"affected glass at no charge for parts or labor."

	warrantyExclusions = "This warranty does not cover: (a) breakage or damage caused by rocks, road " +
		"debris, accidents, vandalism, theft or acts of nature; (b) stress cracks originating from " +
		"impact points; (c) body rust, pinch weld corrosion or prior body damage; (d) glass or parts " +
		"supplied by the customer; (e) damage from car washes, extreme temperature changes or " +
		"improper care within 24 hours of installation."

	liabilityLimitation = "Our liability under this warranty is limited to the repair or replacement " +
		"of the covered glass or workmanship. We are not responsible for incidental or consequential " +
		"damages, including loss of use of the vehicle, rental charges, lost time or lost income."

	nonTransferable = "This warranty is non-transferable and applies only to the original purchaser " +
		"and the vehicle listed on this invoice."

	adasNotice = "ADAS NOTICE: Vehicles equipped with Advanced Driver Assistance Systems (lane " +
		"departure warning, forward collision braking, adaptive cruise control and similar features) " +
		"may require camera or sensor recalibration after windshield replacement. Recalibration is " +
		"required by most vehicle manufacturers to restore these systems to factory specifications."

	rockChipWarranty = "LIFETIME ROCK CHIP REPAIR WARRANTY: We guarantee that the repaired chip will " +
		"not spread for as long as you own the vehicle. If the repaired area cracks or spreads, you may " +
		"choose one of the following: (1) we will re-repair the same chip at no charge, up to two (2) " +
		"times; or (2) we will credit forty percent (40%) of the original repair price toward the " +
		"replacement of the windshield."

	rockChipWeather = "Repairs reduce the visibility of the damage but do not make it disappear " +
		"entirely. This warranty does not cover new chips or cracks, or spreading caused by extreme " +
		"weather, hail, freezing temperatures, defroster or heater shock, or any new impact to the " +
		"repaired area."

	freeRockChipBonus = "BONUS: Your new windshield includes free rock chip repair for one (1) year " +
		"from the installation date. Bring the vehicle in as soon as a chip appears and we will repair " +
		"it at no charge before it can spread."
)

func fleetWarranty() []paragraph {
	return []paragraph{
		{heading: true, text: WarrantyHeading},
		{text: workmanshipWarranty},
		{text: warrantyExclusions},
		{text: liabilityLimitation},
		{text: nonTransferable},
		{text: adasNotice},
	}
}

func rockChipRepairWarranty() []paragraph {
	return []paragraph{
		{heading: true, text: WarrantyHeading},
		{text: rockChipWarranty},
		{text: rockChipWeather},
	}
}

// windshieldReplacementWarranty is the bonus paragraph followed by the full
// fleet warranty text, all under one heading.
func windshieldReplacementWarranty() []paragraph {
	fleet := fleetWarranty()
	out := make([]paragraph, 0, len(fleet)+1)
	out = append(out, fleet[0], paragraph{text: freeRockChipBonus})
	return append(out, fleet[1:]...)
}

// warrantyFor selects the warranty entry for a variant. Dealer invoices carry
// no warranty; other glass replacement shares the fleet text.
func warrantyFor(v invoice.Variant) func() []paragraph {
	switch v {
	case invoice.VariantDealer:
		return nil
	case invoice.VariantFleet, invoice.VariantOtherGlassReplacement:
		return fleetWarranty
	case invoice.VariantRockChipRepair:
		return rockChipRepairWarranty
	case invoice.VariantWindshieldReplacement:
		return windshieldReplacementWarranty
	default:
		return fleetWarranty
	}
}

const (
	CalibrationHeading = "ADAS CALIBRATION DECLINED"

	calibrationDeclined = "The customer has declined the recommended ADAS camera and sensor " +
		"recalibration following windshield replacement and acknowledges that:\n" +
		"1. The vehicle's driver assistance systems may not function as designed, or may not " +
		"function at all, until they are recalibrated.\n" +
		"2. The vehicle manufacturer requires recalibration after windshield replacement and the " +
		"customer was advised of this requirement before the work began.\n" +
		"3. The customer assumes all responsibility for any accident, injury or damage resulting " +
		"from operation of the vehicle without recalibration.\n" +
		"4. We are released from any liability arising from the malfunction of ADAS features, and " +
		"the warranty does not cover sensor or camera faults caused by the lack of recalibration."

	PaymentHeading = "PAYMENT INFORMATION"

	cardPaymentNotice = "Payment is due on or before the due date shown above. By paying with a " +
		"credit or debit card, the cardholder authorizes us to charge the balance due to the card " +
		"provided and agrees that the charge is for services completed as described on this invoice. " +
		"Card payments are non-refundable once work has been performed; questions about a charge must " +
		"be raised with our office before a dispute is filed with the card issuer. Past-due balances " +
		"may be subject to collection costs as permitted by law."

	SignatureAcknowledgment = "I acknowledge that the work described above has been completed to my " +
		"satisfaction and I have read and accept the terms of this invoice and warranty."
)
