package main

import (
	"fmt"
	"kos-marketplace-server/models"
	"kos-marketplace-server/routes"
	"kos-marketplace-server/storage"
	"kos-marketplace-server/utils"
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

func main() {
	if os.Getenv("APP_ENV") != "production" {
		godotenv.Load()
	}

	storage.InitializeDB()
	storage.InitializeImageStore()
	storage.InitializeRedis()

	app := iris.New()
	app.Validator = validator.New()

	// CORS configuration
	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	app.Use(iris.Compression)

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.WithDefaultBlocklist()
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	refreshTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("REFRESH_TOKEN_SECRET")))
	refreshTokenVerifier.WithDefaultBlocklist()
	refreshTokenVerifierMiddleware := refreshTokenVerifier.Verify(func() interface{} {
		return new(jwt.Claims)
	})

	refreshTokenVerifier.Extractors = append(refreshTokenVerifier.Extractors, func(ctx iris.Context) string {
		var tokenInput utils.RefreshTokenInput
		if err := ctx.ReadJSON(&tokenInput); err != nil {
			return ""
		}
		return tokenInput.RefreshToken
	})

	app.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"status": "ok"})
	})

	user := app.Party("/api/user")
	{
		user.Post("/register", routes.Register)
		user.Post("/login", routes.Login)
		user.Get("/", routes.GetAllUsers)
		user.Put("/{id:uint}", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.UpdateUser)
		user.Delete("/{id:uint}", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.DeleteUser)
		user.Get("/kos/saved", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.GetUserSavedKos)
		user.Patch("/kos/saved", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.AlterUserSavedKos)
	}

	kos := app.Party("/api/kos")
	{
		kos.Get("/", routes.GetAllKos)
		kos.Get("/available", routes.GetAvailableKos)
		kos.Get("/filter", routes.GetKosByGender)
		kos.Get("/{id:uint}", routes.GetKos)
		kos.Post("/", accessTokenVerifierMiddleware, utils.RoleMiddleware(models.RoleOwner), routes.CreateKos)
		kos.Put("/{id:uint}", accessTokenVerifierMiddleware, utils.RoleMiddleware(models.RoleOwner), routes.UpdateKos)
		kos.Delete("/{id:uint}", accessTokenVerifierMiddleware, utils.RoleMiddleware(models.RoleOwner), routes.DeleteKos)
		kos.Post("/{id:uint}/pictures", accessTokenVerifierMiddleware, utils.RoleMiddleware(models.RoleOwner), routes.UploadKosPictures)
	}

	book := app.Party("/api/book")
	{
		book.Post("/", accessTokenVerifierMiddleware, utils.RoleMiddleware(models.RoleSociety), routes.CreateBook)
		book.Patch("/{id:uint}", accessTokenVerifierMiddleware, utils.RoleMiddleware(models.RoleSociety, models.RoleOwner), routes.UpdateBook)
		book.Delete("/{id:uint}", accessTokenVerifierMiddleware, utils.RoleMiddleware(models.RoleSociety), routes.DeleteBook)
		book.Get("/history", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.GetBookHistory)
		book.Get("/receipt/{id:uint}", accessTokenVerifierMiddleware, utils.RoleMiddleware(models.RoleSociety), routes.GetBookReceipt)
	}

	review := app.Party("/api/review")
	{
		review.Get("/{kosId:uint}", routes.GetReviewsByKos)
		review.Post("/", accessTokenVerifierMiddleware, utils.RoleMiddleware(models.RoleSociety), routes.CreateReview)
		review.Put("/{id:uint}", accessTokenVerifierMiddleware, utils.RoleMiddleware(models.RoleSociety), routes.UpdateReview)
		review.Delete("/{id:uint}", accessTokenVerifierMiddleware, utils.RoleMiddleware(models.RoleSociety), routes.DeleteReview)
		review.Post("/reply/{id:uint}", accessTokenVerifierMiddleware, utils.RoleMiddleware(models.RoleOwner), routes.ReplyReview)
	}

	facility := app.Party("/api/facility")
	{
		facility.Get("/", routes.GetAllFacilities)
		facility.Get("/{kosId:uint}", routes.GetFacilitiesByKos)
		facility.Post("/", accessTokenVerifierMiddleware, utils.RoleMiddleware(models.RoleOwner), routes.CreateFacility)
		facility.Put("/{id:uint}", accessTokenVerifierMiddleware, utils.RoleMiddleware(models.RoleOwner), routes.UpdateFacility)
		facility.Delete("/{id:uint}", accessTokenVerifierMiddleware, utils.RoleMiddleware(models.RoleOwner), routes.DeleteFacility)
	}

	picture := app.Party("/api/picture")
	{
		picture.Delete("/{id:uint}", accessTokenVerifierMiddleware, utils.RoleMiddleware(models.RoleOwner), routes.DeleteKosPicture)
	}

	notifications := app.Party("/api/notifications")
	{
		notifications.Get("/", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.GetUserNotifications)
		notifications.Patch("/{id:uint}/read", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.MarkNotificationRead)
	}

	app.Post("/api/refresh", refreshTokenVerifierMiddleware, utils.RefreshToken)

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}
	addr := "0.0.0.0:" + port

	fmt.Printf("Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
