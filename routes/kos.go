package routes

import (
	"kos-marketplace-server/models"
	"kos-marketplace-server/storage"
	"kos-marketplace-server/utils"
	"strings"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"
)

type CreateKosInput struct {
	Name          string  `json:"name" validate:"required,max=256"`
	Address       string  `json:"address" validate:"required,max=512"`
	PricePerMonth float64 `json:"pricePerMonth" validate:"required,gt=0"`
	Description   string  `json:"description"`
	Gender        string  `json:"gender" validate:"required,oneof=male female all"`
	RoomTotal     int     `json:"roomTotal" validate:"required,gte=1"`
	RoomAvailable *int    `json:"roomAvailable" validate:"required,gte=0"`
}

type UpdateKosInput struct {
	Name          string   `json:"name"`
	Address       string   `json:"address"`
	PricePerMonth *float64 `json:"pricePerMonth"`
	Description   *string  `json:"description"`
	Gender        string   `json:"gender" validate:"omitempty,oneof=male female all"`
	RoomTotal     *int     `json:"roomTotal"`
	RoomAvailable *int     `json:"roomAvailable"`
}

func GetAllKos(ctx iris.Context) {
	search := ctx.URLParamDefault("search", "")

	var kosList []models.Kos
	query := storage.DB.
		Preload("Owner").
		Preload("Facilities").
		Preload("Reviews").
		Preload("Pictures", "is_thumbnail = ?", true).
		Order("id DESC")
	if search != "" {
		query = query.Where("lower(name) LIKE lower(?)", "%"+search+"%")
	}

	if err := query.Find(&kosList).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.JSONSuccess(ctx, iris.StatusOK, "Kos list retrieved.", kosList)
}

func GetKos(ctx iris.Context) {
	id := ctx.Params().Get("id")

	var kos models.Kos
	if err := storage.DB.
		Preload("Owner").
		Preload("Facilities").
		Preload("Pictures").
		Preload("Reviews").
		First(&kos, id).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Kos not found.", ctx)
		return
	}

	utils.JSONSuccess(ctx, iris.StatusOK, "Kos retrieved.", kos)
}

func CreateKos(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var input CreateKosInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if *input.RoomAvailable > input.RoomTotal {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "roomAvailable cannot exceed roomTotal.", ctx)
		return
	}

	kos := models.Kos{
		OwnerID:       userID,
		Name:          input.Name,
		Address:       input.Address,
		PricePerMonth: input.PricePerMonth,
		Description:   input.Description,
		Gender:        strings.ToLower(input.Gender),
		RoomTotal:     input.RoomTotal,
		RoomAvailable: *input.RoomAvailable,
	}

	if err := storage.DB.Create(&kos).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.JSONSuccess(ctx, iris.StatusCreated, "Kos created.", kos)
}

// getOwnedKos loads the kos and enforces that the caller owns it. Writes the
// failure response and returns nil otherwise.
func getOwnedKos(ctx iris.Context, id string, userID uint) *models.Kos {
	var kos models.Kos
	if err := storage.DB.First(&kos, id).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Kos not found.", ctx)
		return nil
	}
	if kos.OwnerID != userID {
		utils.CreateError(iris.StatusForbidden, "Forbidden", "You do not own this kos.", ctx)
		return nil
	}
	return &kos
}

func UpdateKos(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	id := ctx.Params().Get("id")

	kos := getOwnedKos(ctx, id, userID)
	if kos == nil {
		return
	}

	var input UpdateKosInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if input.Name != "" {
		kos.Name = input.Name
	}
	if input.Address != "" {
		kos.Address = input.Address
	}
	if input.PricePerMonth != nil {
		kos.PricePerMonth = *input.PricePerMonth
	}
	if input.Description != nil {
		kos.Description = *input.Description
	}
	if input.Gender != "" {
		kos.Gender = strings.ToLower(input.Gender)
	}
	if input.RoomTotal != nil {
		kos.RoomTotal = *input.RoomTotal
	}
	if input.RoomAvailable != nil {
		kos.RoomAvailable = *input.RoomAvailable
	}

	if kos.RoomAvailable > kos.RoomTotal || kos.RoomAvailable < 0 {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "roomAvailable must be between 0 and roomTotal.", ctx)
		return
	}

	if err := storage.DB.Save(kos).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.JSONSuccess(ctx, iris.StatusOK, "Kos updated.", kos)
}

// DeleteKos removes the kos together with its dependent books, reviews,
// facilities and pictures in one transaction.
func DeleteKos(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	id := ctx.Params().Get("id")

	kos := getOwnedKos(ctx, id, userID)
	if kos == nil {
		return
	}

	txErr := storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("kos_id = ?", kos.ID).Delete(&models.Book{}).Error; err != nil {
			return err
		}
		if err := tx.Where("kos_id = ?", kos.ID).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Where("kos_id = ?", kos.ID).Delete(&models.Facility{}).Error; err != nil {
			return err
		}
		if err := tx.Where("kos_id = ?", kos.ID).Delete(&models.KosPicture{}).Error; err != nil {
			return err
		}
		return tx.Delete(kos).Error
	})
	if txErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.JSONSuccess(ctx, iris.StatusOK, "Kos '"+kos.Name+"' deleted together with its bookings, reviews, facilities and pictures.", nil)
}

// GetAvailableKos lists kos that still have at least one open room, cheapest
// first.
func GetAvailableKos(ctx iris.Context) {
	kosList := []models.Kos{}
	if err := storage.DB.
		Preload("Owner").
		Preload("Facilities").
		Where("room_available > 0").
		Order("price_per_month ASC").
		Find(&kosList).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.JSONSuccess(ctx, iris.StatusOK, "Available kos retrieved.", kosList)
}

func GetKosByGender(ctx iris.Context) {
	gender := strings.ToLower(ctx.URLParamDefault("gender", ""))
	if gender == "" {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "gender query parameter is required.", ctx)
		return
	}
	if gender != "male" && gender != "female" && gender != "all" {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "gender must be one of: male, female, all.", ctx)
		return
	}

	kosList := []models.Kos{}
	if err := storage.DB.
		Preload("Owner").
		Preload("Facilities").
		Where("gender = ? AND room_available > 0", gender).
		Find(&kosList).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.JSONSuccess(ctx, iris.StatusOK, "Kos with gender '"+gender+"' retrieved.", kosList)
}
