package email

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/silvercar/backend/internal/server/models"
)

// Subjects of the two transactional messages.
const (
	SubjectPasswordReset     = "Password reset - Silver Car"
	SubjectOrderConfirmation = "Order confirmation - Silver Car"
)

var passwordResetTmpl = template.Must(template.New("password_reset").Parse(
	`Hello, {{.Name}}!

You requested a password reset for your Silver Car account.

Use the following token to reset your password:
{{.Token}}

The token is valid for 1 hour.

If you did not request a password reset, please ignore this message.

Best regards,
The Silver Car team
`))

var orderConfirmationTmpl = template.Must(template.New("order_confirmation").Parse(
	`Hello, {{.Name}}!

Your order has been created.

Order details:
- Car: {{.AutoName}}
- Phone number: {{.Number}}
- Comment: {{.Comment}}
- Status: {{.Status}}

We will contact you shortly.

Best regards,
The Silver Car team
`))

// RenderPasswordReset builds the reset email body. username may be empty.
func RenderPasswordReset(username, token string) (string, error) {
	name := username
	if name == "" {
		name = "Customer"
	}

	var b strings.Builder
	data := struct{ Name, Token string }{Name: name, Token: token}
	if err := passwordResetTmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("rendering password reset email: %w", err)
	}
	return b.String(), nil
}

// RenderOrderConfirmation builds the order confirmation body.
func RenderOrderConfirmation(o *models.Order) (string, error) {
	data := struct{ Name, AutoName, Number, Comment, Status string }{
		Name:     valueOr(o.Name, "Customer"),
		AutoName: valueOr(o.AutoName, "not specified"),
		Number:   valueOr(o.Number, "not specified"),
		Comment:  valueOr(o.Comment, "no comment"),
		Status:   valueOr(o.Status, models.OrderStatusPending),
	}

	var b strings.Builder
	if err := orderConfirmationTmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("rendering order confirmation email: %w", err)
	}
	return b.String(), nil
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
