package routes

import (
	"kos-marketplace-server/models"
	"kos-marketplace-server/services"
	"kos-marketplace-server/storage"
	"kos-marketplace-server/utils"

	"github.com/kataras/iris/v12"
)

type CreateReviewInput struct {
	KosID   uint   `json:"kosID" validate:"required"`
	Comment string `json:"comment" validate:"required,max=1000"`
}

type UpdateReviewInput struct {
	Comment string `json:"comment" validate:"required,max=1000"`
}

type ReplyReviewInput struct {
	Reply string `json:"reply" validate:"required,max=1000"`
}

func GetReviewsByKos(ctx iris.Context) {
	kosID := ctx.Params().Get("kosId")

	reviews := []models.Review{}
	if err := storage.DB.Preload("User").
		Where("kos_id = ?", kosID).
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.JSONSuccess(ctx, iris.StatusOK, "Reviews retrieved.", reviews)
}

func CreateReview(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var input CreateReviewInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var kos models.Kos
	if err := storage.DB.First(&kos, input.KosID).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Kos not found.", ctx)
		return
	}

	review := models.Review{
		KosID:   input.KosID,
		UserID:  userID,
		Comment: input.Comment,
	}
	if err := storage.DB.Create(&review).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.JSONSuccess(ctx, iris.StatusCreated, "Review created.", review)
}

func UpdateReview(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	id := ctx.Params().Get("id")

	var review models.Review
	if err := storage.DB.First(&review, id).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Review not found.", ctx)
		return
	}
	if review.UserID != userID {
		utils.CreateError(iris.StatusForbidden, "Forbidden", "This review belongs to another user.", ctx)
		return
	}

	var input UpdateReviewInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	review.Comment = input.Comment
	if err := storage.DB.Save(&review).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.JSONSuccess(ctx, iris.StatusOK, "Review updated.", review)
}

func DeleteReview(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	id := ctx.Params().Get("id")

	var review models.Review
	if err := storage.DB.First(&review, id).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Review not found.", ctx)
		return
	}
	if review.UserID != userID {
		utils.CreateError(iris.StatusForbidden, "Forbidden", "This review belongs to another user.", ctx)
		return
	}

	if err := storage.DB.Delete(&review).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.JSONSuccess(ctx, iris.StatusOK, "Review deleted.", nil)
}

// ReplyReview lets the owning kos owner answer a review once.
func ReplyReview(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	id := ctx.Params().Get("id")

	var review models.Review
	if err := storage.DB.Preload("Kos").First(&review, id).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Review not found.", ctx)
		return
	}
	if review.Kos == nil || review.Kos.OwnerID != userID {
		utils.CreateError(iris.StatusForbidden, "Forbidden", "Only the kos owner may reply to this review.", ctx)
		return
	}
	if review.Reply != "" {
		utils.CreateError(iris.StatusConflict, "Conflict", "This review has already been replied to.", ctx)
		return
	}

	var input ReplyReviewInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	review.Reply = input.Reply
	if err := storage.DB.Save(&review).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	services.NewNotificationService().ReviewReplied(review, review.Kos.Name)

	utils.JSONSuccess(ctx, iris.StatusOK, "Reply sent.", review)
}
