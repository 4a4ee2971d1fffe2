package fulfillment

// Platform commission: 10% of the payment amount, remainder paid out net.
const commissionPercent = 10

// SplitCommission returns the platform commission (rounded half up) and the
// provider's net amount. The two always sum to amount exactly.
func SplitCommission(amount int64) (commission, net int64) {
	commission = (amount*commissionPercent + 50) / 100
	return commission, amount - commission
}
