package app

import (
	"fmt"

	evbus "github.com/asaskevich/EventBus"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
	"gorm.io/gorm"

	"github.com/openmallhq/openmall/config"
	"github.com/openmallhq/openmall/internal/domain"
	"github.com/openmallhq/openmall/internal/order"
)

// Mailer sends order confirmations for bus events. Without SMTP configured
// it only logs, so event wiring stays identical across environments.
type Mailer struct {
	cfg config.SmtpConfig
	db  *gorm.DB
}

func NewMailer(cfg config.SmtpConfig, db *gorm.DB) *Mailer {
	return &Mailer{cfg: cfg, db: db}
}

func (m *Mailer) Subscribe(bus evbus.Bus) {
	if err := bus.SubscribeAsync(order.TopicOrderPlaced, m.onOrderPlaced, false); err != nil {
		zap.L().Error("failed to subscribe order.placed", zap.Error(err))
	}
	if err := bus.SubscribeAsync(order.TopicOrderPaid, m.onOrderPaid, false); err != nil {
		zap.L().Error("failed to subscribe order.paid", zap.Error(err))
	}
}

func (m *Mailer) onOrderPlaced(o *domain.Order) {
	subject := fmt.Sprintf("Order %d received", o.ID)
	body := fmt.Sprintf(
		"Thanks for your order.\n\nItems: %.2f\nShipping: %.2f\nTax: %.2f\nTotal: %.2f\n",
		o.ItemsPrice, o.ShippingPrice, o.TaxPrice, o.TotalPrice)
	m.send(o.UserID, subject, body)
}

func (m *Mailer) onOrderPaid(o *domain.Order) {
	subject := fmt.Sprintf("Payment received for order %d", o.ID)
	body := fmt.Sprintf("Payment %s confirmed. Amount: %.2f\n",
		o.PaymentResult.TransactionID, o.TotalPrice)
	m.send(o.UserID, subject, body)
}

func (m *Mailer) send(userID int64, subject, body string) {
	var user domain.User
	if err := m.db.First(&user, userID).Error; err != nil {
		zap.L().Warn("notify: user lookup failed", zap.Int64("user_id", userID), zap.Error(err))
		return
	}

	if !m.cfg.Enabled {
		zap.L().Debug("smtp disabled, skipping mail",
			zap.String("to", user.Email),
			zap.String("subject", subject))
		return
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", user.Email)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	dialer := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	if err := dialer.DialAndSend(msg); err != nil {
		zap.L().Error("failed to send mail",
			zap.String("to", user.Email),
			zap.String("subject", subject),
			zap.Error(err))
		return
	}
	zap.L().Info("mail sent", zap.String("to", user.Email), zap.String("subject", subject))
}
