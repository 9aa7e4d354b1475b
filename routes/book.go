package routes

import (
	"errors"
	"kos-marketplace-server/models"
	"kos-marketplace-server/services"
	"kos-marketplace-server/storage"
	"kos-marketplace-server/utils"
	"time"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"
)

// Booking lifecycle: a society user opens a pending book, the kos owner
// resolves it exactly once (accept or reject), and only acceptance consumes
// a room. Every check-then-write sequence runs inside one DB transaction so
// concurrent requests cannot slip between the check and the write.

type CreateBookInput struct {
	KosID     uint      `json:"kosID" validate:"required"`
	StartDate time.Time `json:"startDate" validate:"required"`
	EndDate   time.Time `json:"endDate" validate:"required"`
}

type UpdateBookInput struct {
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
	Status    string     `json:"status" validate:"omitempty,oneof=pending accept reject"`
}

var (
	errBookConflict = errors.New("duplicate pending book")
	errNoRooms      = errors.New("no rooms available")
	errBookResolved = errors.New("book already resolved")
)

func CreateBook(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var input CreateBookInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if input.EndDate.Before(input.StartDate) {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "startDate must not be after endDate.", ctx)
		return
	}

	var book models.Book
	txErr := storage.DB.Transaction(func(tx *gorm.DB) error {
		var kos models.Kos
		if err := tx.First(&kos, input.KosID).Error; err != nil {
			return err
		}

		var pendingCount int64
		if err := tx.Model(&models.Book{}).
			Where("user_id = ? AND kos_id = ? AND status = ?", userID, input.KosID, models.BookStatusPending).
			Count(&pendingCount).Error; err != nil {
			return err
		}
		if pendingCount > 0 {
			return errBookConflict
		}

		if kos.RoomAvailable <= 0 {
			return errNoRooms
		}

		book = models.Book{
			KosID:     input.KosID,
			UserID:    userID,
			StartDate: input.StartDate,
			EndDate:   input.EndDate,
			Status:    models.BookStatusPending,
		}
		return tx.Create(&book).Error
	})

	switch {
	case errors.Is(txErr, gorm.ErrRecordNotFound):
		utils.CreateError(iris.StatusNotFound, "Not Found", "Kos not found.", ctx)
		return
	case errors.Is(txErr, errBookConflict):
		utils.CreateError(iris.StatusConflict, "Conflict", "You already have a pending booking for this kos.", ctx)
		return
	case errors.Is(txErr, errNoRooms):
		utils.CreateError(iris.StatusConflict, "Conflict", "No rooms are available for this kos.", ctx)
		return
	case txErr != nil:
		utils.CreateInternalServerError(ctx)
		return
	}

	storage.DB.Preload("Kos").Preload("User").First(&book, book.ID)

	if book.Kos != nil && book.User != nil {
		services.NewNotificationService().BookRequested(book, *book.Kos, book.User.Name)
	}

	utils.JSONSuccess(ctx, iris.StatusCreated, "Booking created.", book)
}

func UpdateBook(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	userRole := ctx.Values().Get("userRole").(string)
	bookID := ctx.Params().Get("id")

	var input UpdateBookInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var book models.Book
	if err := storage.DB.Preload("Kos").First(&book, bookID).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Booking not found.", ctx)
		return
	}

	switch userRole {
	case models.RoleSociety:
		updateBookDates(ctx, &book, userID, input)
	case models.RoleOwner:
		updateBookStatus(ctx, &book, userID, input)
	default:
		utils.CreateError(iris.StatusForbidden, "Forbidden", "Role may not modify bookings.", ctx)
	}
}

// updateBookDates lets the renter move a still-pending booking. Status is
// owner territory; a renter patch carrying it is refused outright.
func updateBookDates(ctx iris.Context, book *models.Book, userID uint, input UpdateBookInput) {
	if book.UserID != userID {
		utils.CreateError(iris.StatusForbidden, "Forbidden", "This booking belongs to another user.", ctx)
		return
	}
	if input.Status != "" {
		utils.CreateError(iris.StatusForbidden, "Forbidden", "Only the kos owner may change the booking status.", ctx)
		return
	}
	if book.Status != models.BookStatusPending {
		utils.CreateError(iris.StatusBadRequest, "Invalid State", "Booking has already been processed.", ctx)
		return
	}

	if input.StartDate != nil {
		book.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		book.EndDate = *input.EndDate
	}
	if book.EndDate.Before(book.StartDate) {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "startDate must not be after endDate.", ctx)
		return
	}

	if err := storage.DB.Save(book).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.JSONSuccess(ctx, iris.StatusOK, "Booking updated.", book)
}

// updateBookStatus resolves a pending booking. Acceptance consumes one room;
// the guarded decrement keeps RoomAvailable off the floor even under
// concurrent accepts.
func updateBookStatus(ctx iris.Context, book *models.Book, userID uint, input UpdateBookInput) {
	if book.Kos == nil || book.Kos.OwnerID != userID {
		utils.CreateError(iris.StatusForbidden, "Forbidden", "Only the kos owner may change the booking status.", ctx)
		return
	}
	if input.Status == "" {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "status is required and must be one of pending, accept, reject.", ctx)
		return
	}
	if book.Status != models.BookStatusPending {
		utils.CreateError(iris.StatusBadRequest, "Invalid State", "Booking has already been processed.", ctx)
		return
	}

	// The transition itself is conditional on the row still being pending,
	// so two concurrent resolutions cannot both go through even though the
	// check above ran on a stale read.
	txErr := storage.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Book{}).
			Where("id = ? AND status = ?", book.ID, models.BookStatusPending).
			Update("status", input.Status)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errBookResolved
		}

		if input.Status == models.BookStatusAccept {
			res := tx.Model(&models.Kos{}).
				Where("id = ? AND room_available > 0", book.KosID).
				UpdateColumn("room_available", gorm.Expr("room_available - 1"))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errNoRooms
			}
		}
		return nil
	})

	switch {
	case errors.Is(txErr, errBookResolved):
		utils.CreateError(iris.StatusBadRequest, "Invalid State", "Booking has already been processed.", ctx)
		return
	case errors.Is(txErr, errNoRooms):
		utils.CreateError(iris.StatusConflict, "Conflict", "No rooms are available for this kos.", ctx)
		return
	case txErr != nil:
		utils.CreateInternalServerError(ctx)
		return
	}

	book.Status = input.Status

	if input.Status != models.BookStatusPending {
		services.NewNotificationService().BookResolved(*book, book.Kos.Name)
	}

	storage.DB.Preload("Kos").First(book, book.ID)
	utils.JSONSuccess(ctx, iris.StatusOK, "Booking status updated.", book)
}

func DeleteBook(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	bookID := ctx.Params().Get("id")

	var book models.Book
	if err := storage.DB.First(&book, bookID).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Booking not found.", ctx)
		return
	}

	if book.UserID != userID {
		utils.CreateError(iris.StatusForbidden, "Forbidden", "This booking belongs to another user.", ctx)
		return
	}
	// Conditional delete so a resolution landing after the read above
	// cannot be undone by a stale cancel.
	res := storage.DB.
		Where("id = ? AND status = ?", book.ID, models.BookStatusPending).
		Delete(&models.Book{})
	if res.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if res.RowsAffected == 0 {
		utils.CreateError(iris.StatusBadRequest, "Invalid State", "Booking has already been processed.", ctx)
		return
	}

	utils.JSONSuccess(ctx, iris.StatusOK, "Booking deleted.", nil)
}

// GetBookHistory lists bookings for the caller, owners see bookings on their
// kos, society users see their own. Optional month/year narrow the window by
// start date. An empty result is a success with an empty list.
func GetBookHistory(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	userRole := ctx.Values().Get("userRole").(string)

	month := ctx.URLParamIntDefault("month", 0)
	year := ctx.URLParamIntDefault("year", 0)
	if (month != 0) != (year != 0) {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "month and year must be supplied together.", ctx)
		return
	}
	if month != 0 && (month < 1 || month > 12) {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "month must be between 1 and 12.", ctx)
		return
	}

	query := storage.DB.Model(&models.Book{}).Preload("Kos").Preload("User")

	if userRole == models.RoleOwner {
		query = query.Joins("JOIN kos ON kos.id = books.kos_id").Where("kos.owner_id = ?", userID)
	} else {
		query = query.Where("books.user_id = ?", userID)
	}

	if month > 0 && year > 0 {
		windowStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		windowEnd := windowStart.AddDate(0, 1, 0)
		query = query.Where("books.start_date >= ? AND books.start_date < ?", windowStart, windowEnd)
	}

	books := []models.Book{}
	if err := query.Order("books.start_date DESC").Find(&books).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.JSONSuccess(ctx, iris.StatusOK, "Booking history retrieved.", books)
}

// GetBookReceipt returns the receipt for an accepted booking, as JSON or as
// a PDF download when ?download=true.
func GetBookReceipt(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	bookID := ctx.Params().Get("id")

	var book models.Book
	if err := storage.DB.Preload("Kos").Preload("User").First(&book, bookID).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Booking not found.", ctx)
		return
	}

	if book.UserID != userID {
		utils.CreateError(iris.StatusForbidden, "Forbidden", "This booking belongs to another user.", ctx)
		return
	}
	if book.Status != models.BookStatusAccept {
		utils.CreateError(iris.StatusBadRequest, "Invalid State", "Receipt is only available for accepted bookings.", ctx)
		return
	}

	receipt := services.BuildReceipt(book)

	if download, _ := ctx.URLParamBool("download"); download {
		pdfBytes, err := services.RenderReceiptPDF(receipt)
		if err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
		ctx.ContentType("application/pdf")
		ctx.Header("Content-Disposition", `attachment; filename="`+receipt.ReceiptNumber+`.pdf"`)
		ctx.Write(pdfBytes)
		return
	}

	utils.JSONSuccess(ctx, iris.StatusOK, "Receipt generated.", receipt)
}
