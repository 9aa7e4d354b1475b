package routes

import (
	"kos-marketplace-server/models"
	"kos-marketplace-server/storage"
	"kos-marketplace-server/utils"

	"github.com/kataras/iris/v12"
)

type CreateFacilityInput struct {
	KosID uint   `json:"kosID" validate:"required"`
	Name  string `json:"name" validate:"required,max=256"`
}

type UpdateFacilityInput struct {
	Name string `json:"name" validate:"required,max=256"`
}

func GetAllFacilities(ctx iris.Context) {
	facilities := []models.Facility{}
	if err := storage.DB.Preload("Kos").Find(&facilities).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.JSONSuccess(ctx, iris.StatusOK, "Facilities retrieved.", facilities)
}

func GetFacilitiesByKos(ctx iris.Context) {
	kosID := ctx.Params().Get("kosId")

	facilities := []models.Facility{}
	if err := storage.DB.Where("kos_id = ?", kosID).Find(&facilities).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.JSONSuccess(ctx, iris.StatusOK, "Facilities retrieved.", facilities)
}

func CreateFacility(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var input CreateFacilityInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var kos models.Kos
	if err := storage.DB.First(&kos, input.KosID).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Kos not found.", ctx)
		return
	}
	if kos.OwnerID != userID {
		utils.CreateError(iris.StatusForbidden, "Forbidden", "You do not own this kos.", ctx)
		return
	}

	facility := models.Facility{KosID: input.KosID, Name: input.Name}
	if err := storage.DB.Create(&facility).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.JSONSuccess(ctx, iris.StatusCreated, "Facility created.", facility)
}

// getOwnedFacility loads the facility and enforces kos ownership.
func getOwnedFacility(ctx iris.Context, id string, userID uint) *models.Facility {
	var facility models.Facility
	if err := storage.DB.Preload("Kos").First(&facility, id).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Facility not found.", ctx)
		return nil
	}
	if facility.Kos == nil || facility.Kos.OwnerID != userID {
		utils.CreateError(iris.StatusForbidden, "Forbidden", "You do not own the kos this facility belongs to.", ctx)
		return nil
	}
	return &facility
}

func UpdateFacility(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	id := ctx.Params().Get("id")

	facility := getOwnedFacility(ctx, id, userID)
	if facility == nil {
		return
	}

	var input UpdateFacilityInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	facility.Name = input.Name
	if err := storage.DB.Save(facility).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.JSONSuccess(ctx, iris.StatusOK, "Facility updated.", facility)
}

func DeleteFacility(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	id := ctx.Params().Get("id")

	facility := getOwnedFacility(ctx, id, userID)
	if facility == nil {
		return
	}

	if err := storage.DB.Delete(facility).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.JSONSuccess(ctx, iris.StatusOK, "Facility deleted.", nil)
}
