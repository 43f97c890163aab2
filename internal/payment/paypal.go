package payment

import (
	"context"
	"net/http"
	"strings"

	"github.com/guonaihong/gout"
	"go.uber.org/zap"

	"github.com/openmallhq/openmall/internal/domain"
	"github.com/openmallhq/openmall/internal/errs"
)

// PayPalGateway verifies widget confirmations against the PayPal Orders API
// before trusting them. Only the capture status and payer are read; the
// widget itself performed the actual capture.
type PayPalGateway struct {
	ApiUrl string
	Token  string
}

func NewPayPalGateway(apiUrl, token string) *PayPalGateway {
	return &PayPalGateway{ApiUrl: strings.TrimRight(apiUrl, "/"), Token: token}
}

type paypalOrder struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Payer  struct {
		EmailAddress string `json:"email_address"`
	} `json:"payer"`
}

func (g *PayPalGateway) Capture(ctx context.Context, orderID int64, total float64, conf Confirmation) (domain.PaymentResult, error) {
	if conf.TransactionID == "" {
		return domain.PaymentResult{}, errs.Validation("missing transaction id")
	}

	var remote paypalOrder
	var code int
	err := gout.GET(g.ApiUrl + "/v2/checkout/orders/" + conf.TransactionID).
		WithContext(ctx).
		SetHeader(gout.H{"Authorization": "Bearer " + g.Token}).
		BindJSON(&remote).
		Code(&code).
		Do()
	if err != nil {
		zap.L().Error("paypal order lookup failed",
			zap.Int64("order_id", orderID),
			zap.String("transaction_id", conf.TransactionID),
			zap.Error(err))
		return domain.PaymentResult{}, errs.Wrap(errs.KindValidation, err, "payment verification failed")
	}
	if code == http.StatusNotFound {
		return domain.PaymentResult{}, errs.Validation("unknown transaction %s", conf.TransactionID)
	}
	if code != http.StatusOK {
		return domain.PaymentResult{}, errs.Validation("paypal lookup returned status %d", code)
	}
	if !strings.EqualFold(remote.Status, "COMPLETED") {
		return domain.PaymentResult{}, errs.Validation("payment not completed: %s", remote.Status)
	}

	return domain.PaymentResult{
		TransactionID: remote.ID,
		Status:        remote.Status,
		PayerEmail:    remote.Payer.EmailAddress,
	}, nil
}
