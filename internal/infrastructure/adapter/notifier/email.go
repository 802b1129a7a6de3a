package notifier

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/amirhossein-jamali/payment-gateway/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/payment-gateway/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-gateway/internal/domain/port/gateway"
	"github.com/amirhossein-jamali/payment-gateway/internal/infrastructure/config"
)

// MailSender delivers prepared messages; *gomail.Dialer satisfies it
type MailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailNotifier mails the merchant when NotifyEmail is on
type EmailNotifier struct {
	sender       MailSender
	from         string
	timeProvider coreport.TimeProvider
}

var _ gateway.PaymentNotifier = (*EmailNotifier)(nil)

// NewEmailNotifier creates a notifier over an SMTP dialer. It returns nil
// when no SMTP host is configured.
func NewEmailNotifier(cfg config.SMTPConfig, timeProvider coreport.TimeProvider) *EmailNotifier {
	if cfg.Host == "" {
		return nil
	}
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return NewEmailNotifierWithSender(dialer, cfg.From, timeProvider)
}

// NewEmailNotifierWithSender creates a notifier over any MailSender
func NewEmailNotifierWithSender(sender MailSender, from string, timeProvider coreport.TimeProvider) *EmailNotifier {
	return &EmailNotifier{sender: sender, from: from, timeProvider: timeProvider}
}

// Name implements gateway.PaymentNotifier
func (n *EmailNotifier) Name() string { return "email" }

// NotifyPaymentReceived sends one email. gomail has no context support, so
// the send runs aside and the call returns at the ctx deadline.
func (n *EmailNotifier) NotifyPaymentReceived(ctx context.Context, merchant *entity.Merchant, tx *entity.Transaction) error {
	if !merchant.NotifyEmail || merchant.Email == "" {
		return nil
	}

	msg := n.message(merchant, tx)
	done := make(chan error, 1)
	go func() {
		done <- n.sender.DialAndSend(msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send email: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("send email: %w", ctx.Err())
	}
}

func (n *EmailNotifier) message(merchant *entity.Merchant, tx *entity.Transaction) *gomail.Message {
	paidAt := n.timeProvider.Now()
	if tx.FinalizedAt != nil {
		paidAt = *tx.FinalizedAt
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", merchant.Email)
	m.SetHeader("Subject", fmt.Sprintf("Pembayaran %s diterima", entity.FormatRupiah(tx.Amount)))
	m.SetBody("text/plain", fmt.Sprintf(
		"Halo %s,\n\nPembayaran untuk transaksi %s sebesar %s via %s telah diterima pada %s.\n\nTerima kasih.",
		merchant.Username,
		tx.TransactionID,
		entity.FormatRupiah(tx.Amount),
		tx.PaymentMethod,
		paidAt.Format("02/01/2006 15:04:05"),
	))
	return m
}
