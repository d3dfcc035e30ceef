package utils

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/wneessen/go-mail"

	"marketplace/internal/models"
)

// OrderNotifier tells a buyer their order went through.
type OrderNotifier interface {
	OrderPlaced(ctx context.Context, to string, order *models.Order) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPNotifier sends order confirmations through go-mail.
type SMTPNotifier struct {
	cfg SMTPConfig
}

func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg}
}

func (n *SMTPNotifier) OrderPlaced(ctx context.Context, to string, order *models.Order) error {
	body, err := OrderConfirmationHTML(order)
	if err != nil {
		return err
	}

	msg := mail.NewMsg()
	if err := msg.From(n.cfg.From); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("mail to: %w", err)
	}
	msg.Subject(fmt.Sprintf("Order #%d confirmed", order.ID))
	msg.SetBodyString(mail.TypeTextHTML, body)

	opts := []mail.Option{mail.WithPort(n.cfg.Port), mail.WithTLSPolicy(mail.TLSOpportunistic)}
	if n.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthLogin),
			mail.WithUsername(n.cfg.Username),
			mail.WithPassword(n.cfg.Password),
		)
	}
	client, err := mail.NewClient(n.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("mail client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send order %d mail: %w", order.ID, err)
	}
	return nil
}

// LogNotifier is used when no SMTP host is configured.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) OrderPlaced(ctx context.Context, to string, order *models.Order) error {
	n.logger.InfoContext(ctx, "order confirmation (mail disabled)",
		"to", to, "order_id", order.ID, "total", order.Total.StringFixed(2), "items", len(order.Items))
	return nil
}

var orderMail = template.Must(template.New("order").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>Order confirmation</title></head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
	<h2 style="color: #333;">Thanks for your order</h2>
	<p>Order #{{.ID}} has been placed.</p>
	<table style="width: 100%; border-collapse: collapse; margin: 20px 0;">
		<thead>
			<tr style="background-color: #f0f0f0;">
				<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Product</th>
				<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Quantity</th>
				<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Unit price</th>
				<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Subtotal</th>
			</tr>
		</thead>
		<tbody>
		{{range .Items}}
			<tr>
				<td style="padding: 10px; border: 1px solid #ddd;">{{if .Product}}{{.Product.Title}}{{else}}#{{.ProductID}}{{end}}</td>
				<td style="padding: 10px; border: 1px solid #ddd;">{{.Quantity}}</td>
				<td style="padding: 10px; border: 1px solid #ddd;">{{.Price.StringFixed 2}}</td>
				<td style="padding: 10px; border: 1px solid #ddd;">{{.Subtotal.StringFixed 2}}</td>
			</tr>
		{{end}}
		</tbody>
		<tfoot>
			<tr>
				<td colspan="3" style="padding: 10px; text-align: right; font-weight: bold;">Total:</td>
				<td style="padding: 10px; font-weight: bold;">{{.Total.StringFixed 2}}</td>
			</tr>
		</tfoot>
	</table>
</div>
</body>
</html>`))

func OrderConfirmationHTML(order *models.Order) (string, error) {
	var buf bytes.Buffer
	if err := orderMail.Execute(&buf, order); err != nil {
		return "", fmt.Errorf("render order mail: %w", err)
	}
	return buf.String(), nil
}
