package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/openmallhq/openmall/internal/domain"
	"github.com/openmallhq/openmall/internal/webserver"
	"github.com/openmallhq/openmall/pkg/common"
)

type registerPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type profilePayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// userView is the identity payload returned by register/login/profile.
type userView struct {
	ID      int64  `json:"id,string"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
	Token   string `json:"token,omitempty"`
}

func registerUserRoutes() {
	webserver.PubPOST("/users", registerUser)
	webserver.PubPOST("/users/login", loginUser)
	webserver.ApiGET("/users/profile", getProfile)
	webserver.ApiPUT("/users/profile", updateProfile)
}

func registerUser(c echo.Context) error {
	var payload registerPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse registration", nil)
	}
	payload.Name = strings.TrimSpace(payload.Name)
	payload.Email = strings.ToLower(strings.TrimSpace(payload.Email))
	if payload.Name == "" || payload.Email == "" || payload.Password == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Name, email and password are required", nil)
	}

	var dup domain.User
	if err := GetDB(c).Where("email = ?", payload.Email).First(&dup).Error; err == nil {
		return fail(c, http.StatusConflict, "DUPLICATE_EMAIL", "An account with this email already exists", nil)
	}

	hashed, err := common.HashPassword(payload.Password)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "SERVER_ERROR", "Failed to hash password", nil)
	}
	user := domain.User{
		ID:        common.UUIDint64(),
		Name:      payload.Name,
		Email:     payload.Email,
		Password:  hashed,
		LastLogin: time.Now(),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := GetDB(c).Create(&user).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create account", err.Error())
	}

	token, err := webserver.IssueToken(&user)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "SERVER_ERROR", "Failed to issue token", nil)
	}
	return ok(c, userView{ID: user.ID, Name: user.Name, Email: user.Email, IsAdmin: user.IsAdmin, Token: token})
}

func loginUser(c echo.Context) error {
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse credentials", nil)
	}
	payload.Email = strings.ToLower(strings.TrimSpace(payload.Email))

	var user domain.User
	if err := GetDB(c).Where("email = ?", payload.Email).First(&user).Error; err != nil {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid email or password", nil)
	}
	if !common.CheckPassword(user.Password, payload.Password) {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid email or password", nil)
	}

	GetDB(c).Model(&domain.User{}).Where("id = ?", user.ID).Update("last_login", time.Now())

	token, err := webserver.IssueToken(&user)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "SERVER_ERROR", "Failed to issue token", nil)
	}
	return ok(c, userView{ID: user.ID, Name: user.Name, Email: user.Email, IsAdmin: user.IsAdmin, Token: token})
}

func getProfile(c echo.Context) error {
	caller := identity(c)
	var user domain.User
	if err := GetDB(c).First(&user, caller.UserID).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "User not found", nil)
	}
	return ok(c, userView{ID: user.ID, Name: user.Name, Email: user.Email, IsAdmin: user.IsAdmin})
}

func updateProfile(c echo.Context) error {
	caller := identity(c)
	var user domain.User
	if err := GetDB(c).First(&user, caller.UserID).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "User not found", nil)
	}

	var payload profilePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse profile", nil)
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if name := strings.TrimSpace(payload.Name); name != "" {
		updates["name"] = name
	}
	if email := strings.ToLower(strings.TrimSpace(payload.Email)); email != "" && email != user.Email {
		var dup domain.User
		if err := GetDB(c).Where("email = ? AND id != ?", email, user.ID).First(&dup).Error; err == nil {
			return fail(c, http.StatusConflict, "DUPLICATE_EMAIL", "An account with this email already exists", nil)
		}
		updates["email"] = email
	}
	if payload.Password != "" {
		hashed, err := common.HashPassword(payload.Password)
		if err != nil {
			return fail(c, http.StatusInternalServerError, "SERVER_ERROR", "Failed to hash password", nil)
		}
		updates["password"] = hashed
	}

	if err := GetDB(c).Model(&user).Updates(updates).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update profile", err.Error())
	}
	GetDB(c).First(&user, user.ID)
	return ok(c, userView{ID: user.ID, Name: user.Name, Email: user.Email, IsAdmin: user.IsAdmin})
}
