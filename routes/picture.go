package routes

import (
	"encoding/base64"
	"io"
	"kos-marketplace-server/models"
	"kos-marketplace-server/storage"
	"kos-marketplace-server/utils"
	"mime/multipart"

	"github.com/google/uuid"
	"github.com/kataras/iris/v12"
)

const maxPictureSize = 2 << 20 // 2 MB per file

var allowedPictureTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
}

// UploadKosPictures accepts a multipart form with an optional "thumbnail"
// field and up to three "photos" fields, pushes each to the blob store and
// records a row per image.
func UploadKosPictures(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	id := ctx.Params().Get("id")

	kos := getOwnedKos(ctx, id, userID)
	if kos == nil {
		return
	}

	ctx.SetMaxRequestBodySize(4 * maxPictureSize)
	if err := ctx.Request().ParseMultipartForm(4 * maxPictureSize); err != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Expected a multipart form.", ctx)
		return
	}
	form := ctx.Request().MultipartForm

	thumbnails := form.File["thumbnail"]
	photos := form.File["photos"]
	if len(thumbnails) == 0 && len(photos) == 0 {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Upload at least one picture (thumbnail or photos).", ctx)
		return
	}
	if len(thumbnails) > 1 || len(photos) > 3 {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "At most one thumbnail and three photos per upload.", ctx)
		return
	}

	created := []models.KosPicture{}

	store := func(fh *multipart.FileHeader, isThumbnail bool) bool {
		if fh.Size > maxPictureSize {
			utils.CreateError(iris.StatusBadRequest, "Validation Error", "Pictures must be 2MB or smaller.", ctx)
			return false
		}
		if !allowedPictureTypes[fh.Header.Get("Content-Type")] {
			utils.CreateError(iris.StatusBadRequest, "Validation Error", "Only JPG/PNG pictures are allowed.", ctx)
			return false
		}

		file, openErr := fh.Open()
		if openErr != nil {
			utils.CreateInternalServerError(ctx)
			return false
		}
		defer file.Close()

		raw, readErr := io.ReadAll(file)
		if readErr != nil {
			utils.CreateInternalServerError(ctx)
			return false
		}

		url, uploadErr := storage.UploadBase64Image(base64.StdEncoding.EncodeToString(raw), "kos/"+uuid.NewString())
		if uploadErr != nil {
			utils.CreateError(iris.StatusBadGateway, "Upload Error", "Failed to store picture.", ctx)
			return false
		}

		picture := models.KosPicture{KosID: kos.ID, ImageURL: url, IsThumbnail: isThumbnail}
		if err := storage.DB.Create(&picture).Error; err != nil {
			utils.CreateInternalServerError(ctx)
			return false
		}
		created = append(created, picture)
		return true
	}

	for _, fh := range thumbnails {
		if !store(fh, true) {
			return
		}
	}
	for _, fh := range photos {
		if !store(fh, false) {
			return
		}
	}

	utils.JSONSuccess(ctx, iris.StatusCreated, "Kos pictures uploaded.", created)
}

func DeleteKosPicture(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	id := ctx.Params().Get("id")

	var picture models.KosPicture
	if err := storage.DB.First(&picture, id).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Picture not found.", ctx)
		return
	}

	var kos models.Kos
	if err := storage.DB.First(&kos, picture.KosID).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Kos not found.", ctx)
		return
	}
	if kos.OwnerID != userID {
		utils.CreateError(iris.StatusForbidden, "Forbidden", "You do not own this kos.", ctx)
		return
	}

	// Blob removal is best effort; the row is the source of truth.
	_ = storage.DeleteImage(picture.ImageURL)

	if err := storage.DB.Delete(&picture).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.JSONSuccess(ctx, iris.StatusOK, "Picture deleted.", nil)
}
