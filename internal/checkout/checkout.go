// Package checkout drives the guarded step sequence from cart review to
// order placement and payment. Guards are explicit precondition checks
// returning a typed decision; redirection is the caller's concern.
package checkout

import (
	"github.com/openmallhq/openmall/internal/domain"
)

// Step is a checkout screen in the linear flow.
type Step string

const (
	StepLogin    Step = "login"
	StepCart     Step = "cart"
	StepShipping Step = "shipping"
	StepPayment  Step = "payment"
	StepReview   Step = "review"
)

// Session is the state a guard decision depends on.
type Session struct {
	Authenticated bool
	Cart          *domain.Cart
}

// Decision is the outcome of a guard check. When not allowed, RedirectTo
// names the step to send the user to and ReturnTo preserves the intended
// destination for after login.
type Decision struct {
	Allowed    bool `json:"allowed"`
	RedirectTo Step `json:"redirect_to,omitempty"`
	ReturnTo   Step `json:"return_to,omitempty"`
}

func allowed() Decision { return Decision{Allowed: true} }

func redirect(to, returnTo Step) Decision {
	return Decision{RedirectTo: to, ReturnTo: returnTo}
}

// EnterStep evaluates the guard for entering a step. Navigating back to an
// earlier step is always allowed and never rolls back collected data.
func EnterStep(step Step, s Session) Decision {
	switch step {
	case StepCart:
		return allowed()
	case StepShipping:
		if !s.Authenticated {
			return redirect(StepLogin, StepShipping)
		}
		return allowed()
	case StepPayment:
		if !s.Authenticated {
			return redirect(StepLogin, StepPayment)
		}
		if s.Cart == nil || s.Cart.ShippingAddress == nil || !s.Cart.ShippingAddress.Complete() {
			return redirect(StepShipping, StepPayment)
		}
		return allowed()
	case StepReview:
		if !s.Authenticated {
			return redirect(StepLogin, StepReview)
		}
		return allowed()
	default:
		return redirect(StepCart, "")
	}
}
