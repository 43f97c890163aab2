// Package payment models the external capture capability. The storefront
// never talks to a gateway directly; checkout receives a Gateway as a
// collaborator and treats it as a black box that returns a capture record.
package payment

import (
	"context"
	"strings"

	"github.com/openmallhq/openmall/internal/domain"
	"github.com/openmallhq/openmall/internal/errs"
)

// Confirmation is what the client-side payment widget reports back after
// the buyer approves the payment.
type Confirmation struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
	PayerEmail    string `json:"payer_email"`
}

type Gateway interface {
	// Capture validates a widget confirmation for the given order total and
	// returns the payment record to persist.
	Capture(ctx context.Context, orderID int64, total float64, conf Confirmation) (domain.PaymentResult, error)
}

// SandboxGateway accepts any completed confirmation without calling out.
// Used in development and tests.
type SandboxGateway struct{}

func (SandboxGateway) Capture(_ context.Context, _ int64, _ float64, conf Confirmation) (domain.PaymentResult, error) {
	if conf.TransactionID == "" {
		return domain.PaymentResult{}, errs.Validation("missing transaction id")
	}
	if !strings.EqualFold(conf.Status, "COMPLETED") {
		return domain.PaymentResult{}, errs.Validation("payment not completed: %s", conf.Status)
	}
	return domain.PaymentResult{
		TransactionID: conf.TransactionID,
		Status:        "COMPLETED",
		PayerEmail:    conf.PayerEmail,
	}, nil
}
