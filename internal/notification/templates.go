package notification

import (
	"fmt"

	"github.com/Domenick1991/skyline/internal/domain"
)

func BookingConfirmed(email, customerName string, ticketID int64, flightInfo string) domain.Notification {
	return domain.Notification{
		RecipientEmail: email,
		Subject:        fmt.Sprintf("Booking Confirmed - Ticket #%d", ticketID),
		Body: fmt.Sprintf("Dear %s,\n\nYour payment was successful. Your seat is confirmed for: %s.\nHave a safe flight!",
			customerName, flightInfo),
		Type: domain.NotificationBookingPaid,
	}
}

func PaymentReminder(email, customerName string, reservationID int64) domain.Notification {
	return domain.Notification{
		RecipientEmail: email,
		Subject:        fmt.Sprintf("Action Required: Pay for Reservation #%d", reservationID),
		Body: fmt.Sprintf("Dear %s,\n\nYou have reserved a seat using 'Pay Later'.\n"+
			"IMPORTANT: You have 24 hours to complete this payment, otherwise your booking will automatically expire.",
			customerName),
		Type: domain.NotificationPaymentReminder,
	}
}
