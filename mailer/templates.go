package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/yashrajoria/storefront-backend/models"
)

const layout = `<!DOCTYPE html>
<html><body style="font-family:Arial,sans-serif;color:#222">
{{template "content" .}}
<p style="color:#888;font-size:12px">{{.Store}}</p>
</body></html>`

const otpContent = `{{define "content"}}
<h2>{{.Heading}}</h2>
<p>Hi {{.Name}},</p>
<p>{{.Intro}}</p>
<p style="font-size:28px;letter-spacing:6px;font-weight:bold">{{.OTP}}</p>
<p>This code expires in {{.ExpiresIn}}.</p>
{{end}}`

const orderContent = `{{define "content"}}
<h2>Thanks for your order</h2>
<p>Hi {{.Name}}, we received order <b>{{.Order.ID.Hex}}</b>.</p>
<table cellpadding="6">
{{range .Order.LineItems}}<tr><td>{{.Name}}{{if .Size}} ({{.Size}}){{end}}</td><td>x{{.Quantity}}</td><td>{{printf "%.2f" .Price}}</td></tr>
{{end}}</table>
<p>Total: <b>{{printf "%.2f" .Order.Price.Total}}</b></p>
{{end}}`

// Mailer renders storefront emails and hands them to a sender.
type Mailer struct {
	sender EmailSender
	store  string
	otp    *template.Template
	order  *template.Template
}

func New(sender EmailSender, storeName string) *Mailer {
	return &Mailer{
		sender: sender,
		store:  storeName,
		otp:    template.Must(template.Must(template.New("otp").Parse(layout)).Parse(otpContent)),
		order:  template.Must(template.Must(template.New("order").Parse(layout)).Parse(orderContent)),
	}
}

type otpData struct {
	Store     string
	Heading   string
	Name      string
	Intro     string
	OTP       string
	ExpiresIn string
}

type orderData struct {
	Store string
	Name  string
	Order *models.Order
}

func (m *Mailer) SendVerificationOTP(ctx context.Context, to, name, otp string) error {
	return m.send(ctx, to, "Verify your email", m.otp, otpData{
		Store: m.store, Heading: "Verify your email", Name: name,
		Intro: "Use this code to finish creating your account.", OTP: otp, ExpiresIn: "10 minutes",
	})
}

func (m *Mailer) SendPasswordResetOTP(ctx context.Context, to, name, otp string) error {
	return m.send(ctx, to, "Reset your password", m.otp, otpData{
		Store: m.store, Heading: "Password reset", Name: name,
		Intro: "Use this code to reset your password. Ignore this email if you did not ask for it.", OTP: otp, ExpiresIn: "10 minutes",
	})
}

func (m *Mailer) SendOrderConfirmation(ctx context.Context, to, name string, order *models.Order) error {
	return m.send(ctx, to, "Order confirmed", m.order, orderData{Store: m.store, Name: name, Order: order})
}

func (m *Mailer) send(ctx context.Context, to, subject string, tmpl *template.Template, data interface{}) error {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("render %s: %w", tmpl.Name(), err)
	}
	_, err := m.sender.SendEmail(ctx, to, m.store+": "+subject, buf.String())
	return err
}
