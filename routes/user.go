package routes

import (
	"encoding/json"
	"kos-marketplace-server/models"
	"kos-marketplace-server/storage"
	"kos-marketplace-server/utils"
	"strings"

	"github.com/kataras/iris/v12"
	"golang.org/x/crypto/bcrypt"
)

type RegisterUserInput struct {
	Name     string `json:"name" validate:"required,max=256"`
	Email    string `json:"email" validate:"required,max=256,email"`
	Password string `json:"password" validate:"required,min=8,max=256"`
	Phone    string `json:"phone" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=owner society"`
}

type LoginUserInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateUserInput struct {
	Name     string `json:"name"`
	Password string `json:"password" validate:"omitempty,min=8,max=256"`
	Phone    string `json:"phone"`
}

type AlterSavedKosInput struct {
	KosID uint   `json:"kosID" validate:"required"`
	Op    string `json:"op" validate:"required,oneof=add remove"`
}

func Register(ctx iris.Context) {
	var userInput RegisterUserInput
	if err := ctx.ReadJSON(&userInput); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if !utils.ValidatePhoneNumber(userInput.Phone) {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Invalid phone number format.", ctx)
		return
	}

	var newUser models.User
	userExists, userExistsErr := getAndHandleUserExists(&newUser, userInput.Email)
	if userExistsErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if userExists {
		utils.CreateEmailAlreadyRegistered(ctx)
		return
	}

	hashedPassword, hashErr := hashAndSaltPassword(userInput.Password)
	if hashErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	newUser = models.User{
		Name:     userInput.Name,
		Email:    strings.ToLower(userInput.Email),
		Password: hashedPassword,
		Phone:    utils.NormalizePhoneNumber(userInput.Phone),
		Role:     userInput.Role,
	}

	if err := storage.DB.Create(&newUser).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	returnUser(newUser, ctx)
}

func Login(ctx iris.Context) {
	var userInput LoginUserInput
	if err := ctx.ReadJSON(&userInput); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	errorMsg := "Invalid email or password."

	var existingUser models.User
	userExists, userExistsErr := getAndHandleUserExists(&existingUser, userInput.Email)
	if userExistsErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if !userExists {
		utils.CreateError(iris.StatusUnauthorized, "Credentials Error", errorMsg, ctx)
		return
	}

	passwordErr := bcrypt.CompareHashAndPassword([]byte(existingUser.Password), []byte(userInput.Password))
	if passwordErr != nil {
		utils.CreateError(iris.StatusUnauthorized, "Credentials Error", errorMsg, ctx)
		return
	}

	returnUser(existingUser, ctx)
}

func GetAllUsers(ctx iris.Context) {
	search := ctx.URLParamDefault("search", "")

	users := []models.User{}
	query := storage.DB.Select("id, name, email, phone, role, created_at, updated_at")
	if search != "" {
		query = query.Where("lower(name) LIKE lower(?)", "%"+search+"%")
	}
	if err := query.Find(&users).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.JSONSuccess(ctx, iris.StatusOK, "User list retrieved.", users)
}

func UpdateUser(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	id := ctx.Params().GetUintDefault("id", 0)

	if id == 0 || id != userID {
		utils.CreateError(iris.StatusForbidden, "Forbidden", "You may only update your own account.", ctx)
		return
	}

	var user models.User
	if err := storage.DB.First(&user, id).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "User not found.", ctx)
		return
	}

	var input UpdateUserInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if input.Name != "" {
		user.Name = input.Name
	}
	if input.Phone != "" {
		if !utils.ValidatePhoneNumber(input.Phone) {
			utils.CreateError(iris.StatusBadRequest, "Validation Error", "Invalid phone number format.", ctx)
			return
		}
		user.Phone = utils.NormalizePhoneNumber(input.Phone)
	}
	if input.Password != "" {
		hashedPassword, hashErr := hashAndSaltPassword(input.Password)
		if hashErr != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
		user.Password = hashedPassword
	}

	if err := storage.DB.Save(&user).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.JSONSuccess(ctx, iris.StatusOK, "User updated.", user)
}

func DeleteUser(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	id := ctx.Params().GetUintDefault("id", 0)

	if id == 0 || id != userID {
		utils.CreateError(iris.StatusForbidden, "Forbidden", "You may only delete your own account.", ctx)
		return
	}

	var user models.User
	if err := storage.DB.First(&user, id).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "User not found.", ctx)
		return
	}

	if err := storage.DB.Delete(&user).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.JSONSuccess(ctx, iris.StatusOK, "User deleted.", nil)
}

func GetUserSavedKos(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var user models.User
	if err := storage.DB.First(&user, userID).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "User not found.", ctx)
		return
	}

	savedIDs := []uint{}
	if user.SavedKos != nil {
		if err := json.Unmarshal(user.SavedKos, &savedIDs); err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	}

	kosList := []models.Kos{}
	if len(savedIDs) > 0 {
		if err := storage.DB.Where("id IN ?", savedIDs).Find(&kosList).Error; err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	}

	utils.JSONSuccess(ctx, iris.StatusOK, "Saved kos retrieved.", kosList)
}

func AlterUserSavedKos(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var user models.User
	if err := storage.DB.First(&user, userID).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "User not found.", ctx)
		return
	}

	var input AlterSavedKosInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	saved := []uint{}
	if user.SavedKos != nil {
		if err := json.Unmarshal(user.SavedKos, &saved); err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	}

	switch input.Op {
	case "add":
		for _, id := range saved {
			if id == input.KosID {
				utils.JSONSuccess(ctx, iris.StatusOK, "Kos already saved.", saved)
				return
			}
		}
		saved = append(saved, input.KosID)
	case "remove":
		filtered := saved[:0]
		for _, id := range saved {
			if id != input.KosID {
				filtered = append(filtered, id)
			}
		}
		saved = filtered
	}

	raw, marshalErr := json.Marshal(saved)
	if marshalErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if err := storage.DB.Model(&user).Update("saved_kos", raw).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.JSONSuccess(ctx, iris.StatusOK, "Saved kos updated.", saved)
}

func getAndHandleUserExists(user *models.User, email string) (exists bool, err error) {
	userExistsQuery := storage.DB.Where("email = ?", strings.ToLower(email)).Limit(1).Find(user)
	if userExistsQuery.Error != nil {
		return false, userExistsQuery.Error
	}
	return userExistsQuery.RowsAffected > 0, nil
}

func hashAndSaltPassword(password string) (hashedPassword string, err error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func returnUser(user models.User, ctx iris.Context) {
	tokenPair, tokenErr := utils.CreateTokenPair(user.ID)
	if tokenErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{
		"status":  true,
		"message": "Login success.",
		"data": iris.Map{
			"ID":           user.ID,
			"name":         user.Name,
			"email":        user.Email,
			"phone":        user.Phone,
			"role":         user.Role,
			"accessToken":  string(tokenPair.AccessToken),
			"refreshToken": string(tokenPair.RefreshToken),
		},
	})
}
