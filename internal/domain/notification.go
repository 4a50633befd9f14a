package domain

type NotificationType string

const (
	NotificationBookingPaid     NotificationType = "BOOKING_PAID"
	NotificationPaymentReminder NotificationType = "PAYMENT_REMINDER"
)

type Notification struct {
	ID             string           `json:"id"`
	RecipientEmail string           `json:"recipient_email"`
	Subject        string           `json:"subject"`
	Body           string           `json:"body"`
	Type           NotificationType `json:"type"`
}
