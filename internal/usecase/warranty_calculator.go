package usecase

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/slimsamil/Wortmann2Shopify/internal/domain"
)

// currencyPrecision is Shopify's price precision in decimal places.
const currencyPrecision = 2

// WarrantyCalculator computes warranty add-on price tiers from the rule set
// loaded for one run.
type WarrantyCalculator struct {
	rulesByGroup map[int][]domain.WarrantyRow
}

// NewWarrantyCalculator indexes the rule rows by warranty group.
func NewWarrantyCalculator(rules []domain.WarrantyRow) *WarrantyCalculator {
	byGroup := make(map[int][]domain.WarrantyRow, len(rules))
	for _, r := range rules {
		if r.Group == 0 {
			continue
		}
		byGroup[r.Group] = append(byGroup[r.Group], r)
	}
	return &WarrantyCalculator{rulesByGroup: byGroup}
}

// Compute returns the add-on tiers for a warranty group, ordered by ascending
// duration. Each add-on is max(minimum, basePrice*percentage), rounded
// half-up to currency precision. Group 0 means "no warranty group" and yields
// no tiers; a group absent from the rule set returns ErrUnknownWarrantyGroup.
func (c *WarrantyCalculator) Compute(basePrice decimal.Decimal, group int) ([]domain.WarrantyTier, error) {
	if group == 0 {
		return nil, nil
	}
	rules, ok := c.rulesByGroup[group]
	if !ok {
		return nil, fmt.Errorf("%w: %d", domain.ErrUnknownWarrantyGroup, group)
	}

	tiers := make([]domain.WarrantyTier, 0, len(rules))
	seen := make(map[int]bool, len(rules))
	for _, r := range rules {
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true

		addOn := basePrice.Mul(r.Percentage)
		if addOn.LessThan(r.Minimum) {
			addOn = r.Minimum
		}
		tiers = append(tiers, domain.WarrantyTier{
			RuleID: r.ID,
			Name:   r.Name,
			Months: r.Months,
			AddOn:  addOn.Round(currencyPrecision),
		})
	}

	sort.SliceStable(tiers, func(i, j int) bool { return tiers[i].Months < tiers[j].Months })
	return tiers, nil
}
