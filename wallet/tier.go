package wallet

import "github.com/pkg/errors"

// Tier is a fixed top-up package, named after its price in dollars.
type Tier string

const (
	Tier10 Tier = "10"
	Tier20 Tier = "20"
	Tier30 Tier = "30"
	Tier40 Tier = "40"
)

var ErrUnknownTier = errors.New("unknown top-up tier")

type tierSpec struct {
	credit      int
	amountCents int64
}

var tiers = map[Tier]tierSpec{
	Tier10: {credit: 200, amountCents: 1000},
	Tier20: {credit: 500, amountCents: 2000},
	Tier30: {credit: 1000, amountCents: 3000},
	Tier40: {credit: 2000, amountCents: 4000},
}

// AllTiers in ascending price.
var AllTiers = []Tier{Tier10, Tier20, Tier30, Tier40}

func ParseTier(s string) (Tier, error) {
	t := Tier(s)
	if _, ok := tiers[t]; !ok {
		return "", errors.Wrap(ErrUnknownTier, s)
	}
	return t, nil
}

// Credit is the number of wallet units the tier buys.
func (t Tier) Credit() int {
	return tiers[t].credit
}

// AmountCents is what the card is charged for the tier.
func (t Tier) AmountCents() int64 {
	return tiers[t].amountCents
}

func (t Tier) String() string {
	return string(t)
}
