package routes

import (
	"kos-marketplace-server/models"
	"kos-marketplace-server/storage"
	"kos-marketplace-server/utils"

	"github.com/kataras/iris/v12"
)

func GetUserNotifications(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	notifications := []models.Notification{}
	if err := storage.DB.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(100).
		Find(&notifications).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.JSONSuccess(ctx, iris.StatusOK, "Notifications retrieved.", notifications)
}

func MarkNotificationRead(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	id := ctx.Params().Get("id")

	var notification models.Notification
	if err := storage.DB.First(&notification, id).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Notification not found.", ctx)
		return
	}
	if notification.UserID != userID {
		utils.CreateError(iris.StatusForbidden, "Forbidden", "This notification belongs to another user.", ctx)
		return
	}

	if err := storage.DB.Model(&notification).Update("is_read", true).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.JSONSuccess(ctx, iris.StatusOK, "Notification marked as read.", notification)
}
