package routes

import (
	"encoding/json"
	"kos-marketplace-server/models"
	"kos-marketplace-server/storage"
	"kos-marketplace-server/utils"
	"net/http"
	"os"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"golang.org/x/crypto/bcrypt"
)

func buildUserTestApp(t *testing.T) *iris.Application {
	t.Helper()
	os.Setenv("ACCESS_TOKEN_SECRET", "testsecret")
	os.Setenv("REFRESH_TOKEN_SECRET", "testsecret2")

	// Refresh token whitelisting is fire-and-forget, a dead address is fine.
	if storage.Redis == nil {
		storage.Redis = redis.NewClient(&redis.Options{Addr: "localhost:0"})
	}

	app := iris.New()
	app.Validator = validator.New()

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	user := app.Party("/api/user")
	{
		user.Post("/register", Register)
		user.Post("/login", Login)
		user.Get("/", GetAllUsers)
		user.Put("/{id:uint}", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, UpdateUser)
		user.Delete("/{id:uint}", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, DeleteUser)
		user.Get("/kos/saved", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, GetUserSavedKos)
		user.Patch("/kos/saved", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, AlterUserSavedKos)
	}

	if err := app.Build(); err != nil {
		t.Fatalf("build test app: %v", err)
	}
	return app
}

func TestRegister(t *testing.T) {
	db := newTestDB(t)
	app := buildUserTestApp(t)

	input := RegisterUserInput{
		Name:     "Sari",
		Email:    "Sari@Example.com",
		Password: "rahasia-sekali",
		Phone:    "0812-3456-7890",
		Role:     models.RoleSociety,
	}

	resp := doJSON(t, app, http.MethodPost, "/api/user/register", "", input)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 registering, got %d: %s", resp.Code, resp.Body.String())
	}

	var res struct {
		Status bool `json:"status"`
		Data   struct {
			Email        string `json:"email"`
			Phone        string `json:"phone"`
			Role         string `json:"role"`
			AccessToken  string `json:"accessToken"`
			RefreshToken string `json:"refreshToken"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	if !res.Status || res.Data.AccessToken == "" || res.Data.RefreshToken == "" {
		t.Fatalf("expected token pair in response: %s", resp.Body.String())
	}
	if res.Data.Email != "sari@example.com" {
		t.Fatalf("email should be lowercased, got %q", res.Data.Email)
	}
	if res.Data.Phone != "628123456789" && res.Data.Phone != "6281234567890" {
		t.Fatalf("phone should be normalized to 62 prefix, got %q", res.Data.Phone)
	}

	var user models.User
	if err := db.Where("email = ?", "sari@example.com").First(&user).Error; err != nil {
		t.Fatalf("user row not created: %v", err)
	}
	if user.Password == "rahasia-sekali" {
		t.Fatal("password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("rahasia-sekali")); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}

	// duplicate email, case-insensitive
	resp = doJSON(t, app, http.MethodPost, "/api/user/register", "", input)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d", resp.Code)
	}

	// unknown role
	bad := input
	bad.Email = "other@example.com"
	bad.Role = "admin"
	resp = doJSON(t, app, http.MethodPost, "/api/user/register", "", bad)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown role, got %d", resp.Code)
	}

	// malformed phone
	bad = input
	bad.Email = "other@example.com"
	bad.Phone = "12345"
	resp = doJSON(t, app, http.MethodPost, "/api/user/register", "", bad)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed phone, got %d", resp.Code)
	}
}

func TestLogin(t *testing.T) {
	db := newTestDB(t)
	app := buildUserTestApp(t)

	hash, _ := bcrypt.GenerateFromPassword([]byte("rahasia-sekali"), bcrypt.DefaultCost)
	db.Create(&models.User{Name: "Sari", Email: "sari@example.com", Password: string(hash), Role: models.RoleSociety})

	resp := doJSON(t, app, http.MethodPost, "/api/user/login", "", LoginUserInput{
		Email: "sari@example.com", Password: "rahasia-sekali"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 logging in, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = doJSON(t, app, http.MethodPost, "/api/user/login", "", LoginUserInput{
		Email: "sari@example.com", Password: "salah-password"})
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", resp.Code)
	}

	resp = doJSON(t, app, http.MethodPost, "/api/user/login", "", LoginUserInput{
		Email: "tidak-ada@example.com", Password: "rahasia-sekali"})
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown email, got %d", resp.Code)
	}
}

func TestUpdateUserSelfOnly(t *testing.T) {
	db := newTestDB(t)
	app := buildUserTestApp(t)

	alice := seedSociety(t, db, "sari@example.com")
	bob := seedSociety(t, db, "dewi@example.com")

	resp := doJSON(t, app, http.MethodPut, "/api/user/1", signTestToken(t, bob.ID, models.RoleSociety),
		iris.Map{"name": "Hijacked"})
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 updating another account, got %d", resp.Code)
	}

	resp = doJSON(t, app, http.MethodPut, "/api/user/1", signTestToken(t, alice.ID, models.RoleSociety),
		iris.Map{"name": "Sari Baru"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 updating own account, got %d: %s", resp.Code, resp.Body.String())
	}

	var fresh models.User
	db.First(&fresh, alice.ID)
	if fresh.Name != "Sari Baru" {
		t.Fatalf("name not updated, got %q", fresh.Name)
	}
}

func TestSavedKos(t *testing.T) {
	db := newTestDB(t)
	app := buildUserTestApp(t)

	_, kos := seedOwnerAndKos(t, db, 3)
	renter := seedSociety(t, db, "sari@example.com")
	token := signTestToken(t, renter.ID, models.RoleSociety)

	resp := doJSON(t, app, http.MethodPatch, "/api/user/kos/saved", token,
		AlterSavedKosInput{KosID: kos.ID, Op: "add"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 saving kos, got %d: %s", resp.Code, resp.Body.String())
	}

	type savedRes struct {
		Data []models.Kos `json:"data"`
	}
	resp = doJSON(t, app, http.MethodGet, "/api/user/kos/saved", token, nil)
	var got savedRes
	if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode saved kos: %v", err)
	}
	if len(got.Data) != 1 || got.Data[0].ID != kos.ID {
		t.Fatalf("expected the saved kos back, got %+v", got.Data)
	}

	resp = doJSON(t, app, http.MethodPatch, "/api/user/kos/saved", token,
		AlterSavedKosInput{KosID: kos.ID, Op: "remove"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 removing saved kos, got %d", resp.Code)
	}

	resp = doJSON(t, app, http.MethodGet, "/api/user/kos/saved", token, nil)
	got = savedRes{}
	json.Unmarshal(resp.Body.Bytes(), &got)
	if len(got.Data) != 0 {
		t.Fatalf("expected empty saved list, got %d", len(got.Data))
	}
}
