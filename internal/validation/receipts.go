package validation

import (
	"math"

	"claimline/internal/domain"
)

// verifiesPrice reports whether one receipt plausibly backs the
// declared purchase price: merchant and date extracted, positive
// total, and the total within the allowed variance of the price
// (tax and fees allowance).
func (e *Engine) verifiesPrice(receipt domain.Receipt, price float64) bool {
	if receipt.MerchantName == "" || receipt.TotalAmount <= 0 || receipt.PurchaseDate == nil {
		return false
	}
	return math.Abs(receipt.TotalAmount-price) <= price*e.Config.ReceiptVariance
}

func (e *Engine) checkReceipts(items []domain.Item, results *Results) {
	var pricedValue, verifiedValue float64

	for _, item := range items {
		if item.PurchasePrice == nil {
			continue
		}
		price := *item.PurchasePrice
		pricedValue += price

		verified := false
		for _, receipt := range item.Receipts {
			if e.verifiesPrice(receipt, price) {
				verified = true
				verifiedValue += price
				break
			}
		}

		if !verified && len(item.Receipts) > 0 {
			results.add(domain.ValidationIssue{
				ItemID:   item.ID,
				ItemName: item.Name,
				Issues:   []string{"Receipt does not verify the declared purchase price"},
				Severity: domain.SeverityWarning,
			})
		}
	}

	if pricedValue > 0 {
		results.ReceiptVerificationScore = verifiedValue / pricedValue
	} else {
		results.ReceiptVerificationScore = 1.0
	}
}
