package payment

import (
	"context"
	"fmt"
	"sync"
)

// FakeGateway records requests and answers with a canned result.
type FakeGateway struct {
	mu       sync.Mutex
	Paid     bool
	Err      error
	Requests []ChargeRequest
}

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{Paid: true}
}

func (g *FakeGateway) Charge(ctx context.Context, req ChargeRequest) (*Confirmation, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Err != nil {
		return nil, g.Err
	}
	g.Requests = append(g.Requests, req)
	n := len(g.Requests)
	return &Confirmation{
		CustomerID: fmt.Sprintf("cus_fake_%d", n),
		ChargeID:   fmt.Sprintf("ch_fake_%d", n),
		PayerEmail: req.Email,
		Paid:       g.Paid,
	}, nil
}
