package email

import (
	"bytes"
	"html/template"
	"strconv"
	"strings"
)

// OrderItem is one purchased line as shown in the confirmation email.
type OrderItem struct {
	ProductID string
	Name      string
	Quantity  int
	Price     int
}

func (i OrderItem) Label() string {
	if i.Name == "" {
		return i.ProductID
	}
	return i.Name
}

func (i OrderItem) Subtotal() int { return i.Price * i.Quantity }

// Confirmation is everything the order confirmation email renders.
type Confirmation struct {
	Reference    string
	CustomerName string
	Location     string
	Items        []OrderItem
	Total        int
}

var confirmationTmpl = template.Must(template.New("confirmation").Funcs(template.FuncMap{
	"xaf": FormatXAF,
}).Parse(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="background: linear-gradient(135deg, #f7b733 0%, #fc4a1a 100%); padding: 30px; border-radius: 10px 10px 0 0;">
		<h1 style="color: white; margin: 0; font-size: 24px;">Thank you for your order</h1>
	</div>

	<div style="background: #fff; padding: 30px; border: 1px solid #eee; border-top: none; border-radius: 0 0 10px 10px;">
		<p style="margin-top: 0;">{{if .CustomerName}}Hello {{.CustomerName}}, w{{else}}W{{end}}e have received your order and will contact you to arrange delivery{{if .Location}} to {{.Location}}{{end}}.</p>

		<div style="background: #f8f9fa; padding: 15px; border-radius: 5px; margin: 20px 0;">
			<p style="margin: 0; font-size: 14px; color: #666;">Reference</p>
			<p style="margin: 5px 0 0 0; font-size: 18px; font-weight: bold; font-family: monospace;">{{.Reference}}</p>
		</div>

		<table style="width: 100%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background: #f8f9fa;">
					<th style="padding: 12px; text-align: left;">Product</th>
					<th style="padding: 12px; text-align: center;">Qty</th>
					<th style="padding: 12px; text-align: right;">Unit price</th>
					<th style="padding: 12px; text-align: right;">Subtotal</th>
				</tr>
			</thead>
			<tbody>
				{{- range .Items}}
				<tr>
					<td style="padding: 12px; border-bottom: 1px solid #eee;">{{.Label}}</td>
					<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: center;">{{.Quantity}}</td>
					<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">{{xaf .Price}}</td>
					<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">{{xaf .Subtotal}}</td>
				</tr>
				{{- end}}
			</tbody>
		</table>

		<div style="text-align: right; padding: 20px; background: #f8f9fa; border-radius: 5px;">
			<span style="font-size: 14px; color: #666;">Total</span>
			<span style="font-size: 24px; font-weight: bold; color: #fc4a1a; margin-left: 10px;">{{xaf .Total}}</span>
		</div>

		<p style="font-size: 12px; color: #999; margin-bottom: 0;">
			Final amounts are confirmed by our sales team. This email was sent automatically.
		</p>
	</div>
</body>
</html>`))

// BuildOrderConfirmationBody renders the HTML body of the confirmation email.
func BuildOrderConfirmationBody(c Confirmation) (string, error) {
	var buf bytes.Buffer
	if err := confirmationTmpl.Execute(&buf, c); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FormatXAF formats an amount as "1,234,500 XAF".
func FormatXAF(n int) string {
	return formatNumber(n) + " XAF"
}

// formatNumber formats a number with comma separators
func formatNumber(n int) string {
	sign := ""
	if n < 0 {
		sign, n = "-", -n
	}
	digits := strconv.Itoa(n)

	var b strings.Builder
	b.WriteString(sign)
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return b.String()
}
