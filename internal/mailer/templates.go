package mailer

import "gotrip/internal/models"

const layout = `{{define "layout"}}<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><meta name="viewport" content="width=device-width, initial-scale=1.0"></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; margin: 0; padding: 0;">
<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="text-align: center; margin-bottom: 30px; background-color: #f4f8fb; padding: 20px;">
		<h2 style="color: #1e6fa8; margin: 0;">GoTrip</h2>
	</div>
	{{if .RecipientName}}<p>Hello {{.RecipientName}},</p>{{else}}<p>Hello,</p>{{end}}
	{{template "content" .}}
	<div style="text-align: center; margin-top: 20px; font-size: 12px; color: #666; border-top: 1px solid #eee; padding-top: 20px;">
		<p>This is an automated message, please do not reply to this email.</p>
		<p><a href="{{.BaseURL}}">{{.BaseURL}}</a></p>
	</div>
</div>
</body>
</html>{{end}}`

const bookingSummary = `{{define "booking"}}<table style="width: 100%; border-collapse: collapse;">
	<tr><td><strong>Reference</strong></td><td>{{.Booking.Reference}}</td></tr>
	<tr><td><strong>Service</strong></td><td>{{.Booking.ServiceName}} ({{.Booking.ServiceType}})</td></tr>
	<tr><td><strong>Start date</strong></td><td>{{.Booking.StartDate.Format "2006-01-02"}}</td></tr>
	{{if .Booking.EndDate}}<tr><td><strong>End date</strong></td><td>{{.Booking.EndDate.Format "2006-01-02"}}</td></tr>{{end}}
	<tr><td><strong>Total</strong></td><td>{{money .Booking.TotalAmount}} {{.Booking.Currency}}</td></tr>
	<tr><td><strong>Status</strong></td><td>{{.Booking.Status}}</td></tr>
</table>
<p><a href="{{.BaseURL}}/bookings/{{.Booking.BookingID}}">View your booking</a></p>{{end}}`

const tripPlanSummary = `{{define "tripplan"}}<table style="width: 100%; border-collapse: collapse;">
	<tr><td><strong>Plan</strong></td><td>{{.TripPlan.Title}}</td></tr>
	<tr><td><strong>Destination</strong></td><td>{{.TripPlan.Destination}}</td></tr>
	<tr><td><strong>Status</strong></td><td>{{.TripPlan.Status}}</td></tr>
	{{if .TripPlan.QuoteAmount}}<tr><td><strong>Quote</strong></td><td>{{money (deref .TripPlan.QuoteAmount)}} {{.TripPlan.QuoteCurrency}}</td></tr>{{end}}
</table>{{end}}`

type mailTemplate struct {
	subject string
	content string
}

var catalog = map[string]mailTemplate{
	models.EventBookingCreated: {
		subject: "Booking {{.Booking.Reference}} received",
		content: `<p>Thank you for booking with GoTrip. We have received your request and will confirm it shortly.</p>{{template "booking" .}}`,
	},
	models.EventBookingConfirmed: {
		subject: "Booking {{.Booking.Reference}} confirmed",
		content: `<p>Good news, your booking is confirmed.</p>{{template "booking" .}}`,
	},
	models.EventBookingCompleted: {
		subject: "Thank you for travelling with GoTrip",
		content: `<p>Your trip is complete. We hope you enjoyed it.</p>{{template "booking" .}}`,
	},
	models.EventBookingCancelled: {
		subject: "Booking {{.Booking.Reference}} cancelled",
		content: `<p>Your booking has been cancelled.</p>{{if .Booking.Reason}}<p>Reason: {{.Booking.Reason}}</p>{{end}}{{template "booking" .}}`,
	},
	models.EventTripPlanReceived: {
		subject: "New trip plan request: {{.TripPlan.Title}}",
		content: `<p>A new custom trip plan was submitted and is waiting for review.</p>{{template "tripplan" .}}`,
	},
	models.EventTripPlanUpdated: {
		subject: "Your trip plan is now {{.TripPlan.Status}}",
		content: `<p>There is an update on your custom trip plan.</p>{{template "tripplan" .}}`,
	},
	models.EventContactReceived: {
		subject: "Contact form: {{.Contact.Subject}}",
		content: `<p>New message from {{.Contact.Name}} &lt;{{.Contact.Email}}&gt;:</p>
<blockquote style="border-left: 3px solid #ccc; padding-left: 10px;">{{.Contact.Message}}</blockquote>`,
	},
	models.EventNewsletterWelcome: {
		subject: "Welcome to the GoTrip newsletter",
		content: `<p>You are now subscribed to travel stories, guides and offers from GoTrip.</p>
<p>You can unsubscribe at any time from <a href="{{.BaseURL}}/newsletter/unsubscribe">this page</a>.</p>`,
	},
}
