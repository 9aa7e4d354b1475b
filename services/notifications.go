package services

import (
	"fmt"
	"kos-marketplace-server/models"
	"kos-marketplace-server/storage"
	"log"
	"time"
)

// NotificationService records booking and review lifecycle events for the
// affected user. Delivery is in-app only; rows are read back through the
// notifications routes.
type NotificationService struct{}

func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

func (ns *NotificationService) create(n models.Notification) {
	if err := storage.DB.Create(&n).Error; err != nil {
		log.Printf("notification write failed for user %d: %v", n.UserID, err)
	}
}

// BookRequested notifies the kos owner about a new pending book.
func (ns *NotificationService) BookRequested(book models.Book, kos models.Kos, renterName string) {
	ns.create(models.Notification{
		UserID: kos.OwnerID,
		Title:  "New Booking Request",
		Message: fmt.Sprintf("%s requested %s from %s to %s",
			renterName, kos.Name,
			book.StartDate.Format("Jan 2, 2006"), book.EndDate.Format("Jan 2, 2006")),
		Type:    "book_request",
		RefID:   book.ID,
		RefType: "book",
	})
}

// BookResolved notifies the renter after the owner accepts or rejects.
func (ns *NotificationService) BookResolved(book models.Book, kosName string) {
	verb := "accepted"
	if book.Status == models.BookStatusReject {
		verb = "rejected"
	}
	ns.create(models.Notification{
		UserID:  book.UserID,
		Title:   "Booking " + verb,
		Message: fmt.Sprintf("Your booking for %s has been %s", kosName, verb),
		Type:    "book_status",
		RefID:   book.ID,
		RefType: "book",
	})
}

// ReviewReplied notifies the review author when the kos owner responds.
func (ns *NotificationService) ReviewReplied(review models.Review, kosName string) {
	ns.create(models.Notification{
		UserID:  review.UserID,
		Title:   "Owner replied to your review",
		Message: fmt.Sprintf("The owner of %s replied to your review on %s", kosName, time.Now().Format("Jan 2, 2006")),
		Type:    "review_reply",
		RefID:   review.ID,
		RefType: "review",
	})
}
