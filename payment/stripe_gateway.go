package payment

import (
	"context"

	"github.com/pkg/errors"
	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/client"
)

// StripeGateway creates a customer from the card token, then charges them.
type StripeGateway struct {
	api      *client.API
	currency string
}

func NewStripeGateway(secretKey string) *StripeGateway {
	return NewStripeGatewayWithBackends(secretKey, nil)
}

// NewStripeGatewayWithBackends lets tests point the client at a local server.
func NewStripeGatewayWithBackends(secretKey string, backends *stripe.Backends) *StripeGateway {
	return &StripeGateway{
		api:      client.New(secretKey, backends),
		currency: string(stripe.CurrencyUSD),
	}
}

// wrapStripeError reports card problems as ErrChargeDeclined, everything else
// is passed through.
func wrapStripeError(err error, message string) error {
	if stripeErr, ok := err.(*stripe.Error); ok && stripeErr.Type == stripe.ErrorTypeCard {
		return errors.Wrap(ErrChargeDeclined, stripeErr.Msg)
	}
	return errors.Wrap(err, message)
}

func (g *StripeGateway) Charge(ctx context.Context, req ChargeRequest) (*Confirmation, error) {
	customerParams := &stripe.CustomerParams{
		Source: &stripe.SourceParams{Token: stripe.String(req.Token)},
	}
	if req.Email != "" {
		customerParams.Email = stripe.String(req.Email)
	}
	customerParams.Context = ctx
	customer, err := g.api.Customers.New(customerParams)
	if err != nil {
		return nil, wrapStripeError(err, "fail to create stripe customer")
	}

	chargeParams := &stripe.ChargeParams{
		Amount:      stripe.Int64(req.AmountCents),
		Currency:    stripe.String(g.currency),
		Customer:    stripe.String(customer.ID),
		Description: stripe.String(req.Description),
	}
	chargeParams.Context = ctx
	charge, err := g.api.Charges.New(chargeParams)
	if err != nil {
		return nil, wrapStripeError(err, "fail to create stripe charge")
	}

	return &Confirmation{
		CustomerID: customer.ID,
		ChargeID:   charge.ID,
		PayerEmail: customer.Email,
		Paid:       charge.Paid,
	}, nil
}
