package medication

// refillDaysOfSupply is the stock level, in days, at which a medication is
// flagged for resupply.
const refillDaysOfSupply = 7

// NeedsRefill reports whether remaining stock has dropped to roughly one
// week of doses. This is the single threshold used everywhere stock
// sufficiency is evaluated.
func NeedsRefill(m Medication) bool {
	return m.RemainingQuantity <= m.DosesPerDay()*refillDaysOfSupply
}
