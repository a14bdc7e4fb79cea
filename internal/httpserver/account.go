package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"storefront/internal/service/account"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email"`
	Phone    string `json:"phone_number"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func loginHandler(accounts AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondMessage(c, http.StatusBadRequest, "Invalid request body")
			return
		}
		identifier := strings.TrimSpace(req.Email)
		if identifier == "" {
			identifier = strings.TrimSpace(req.Phone)
		}
		u, token, err := accounts.Login(c.Request.Context(), identifier, req.Password)
		if err != nil {
			if errors.Is(err, account.ErrInvalidCredentials) {
				respondMessage(c, http.StatusUnauthorized, "Invalid credentials")
				return
			}
			respondMessage(c, http.StatusInternalServerError, "Login failed")
			return
		}
		c.JSON(http.StatusOK, loginResponse{Token: token, User: toUserResponse(*u)})
	}
}

func registerHandler(accounts AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req account.RegisterInput
		if err := c.ShouldBindJSON(&req); err != nil {
			respondMessage(c, http.StatusBadRequest, "Invalid request body")
			return
		}
		u, err := accounts.Register(c.Request.Context(), req)
		if err != nil {
			var fe account.FieldErrors
			if errors.As(err, &fe) {
				respondFieldErrors(c, fe)
				return
			}
			respondMessage(c, http.StatusInternalServerError, "Registration failed")
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"message": "Registration successful",
			"user":    toUserResponse(*u),
		})
	}
}

func logoutHandler(accounts AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := accounts.Logout(c.Request.Context(), currentToken(c)); err != nil {
			respondMessage(c, http.StatusInternalServerError, "Logout failed")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
	}
}

func currentUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := currentUser(c)
		if u == nil {
			respondMessage(c, http.StatusUnauthorized, "Unauthenticated.")
			return
		}
		c.JSON(http.StatusOK, toUserResponse(*u))
	}
}

type updateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func updateProfileHandler(accounts AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondMessage(c, http.StatusBadRequest, "Invalid request body")
			return
		}
		u := currentUser(c)
		updated, err := accounts.UpdateProfile(c.Request.Context(), u.ID, req.Name, req.Email)
		if err != nil {
			var fe account.FieldErrors
			if errors.As(err, &fe) {
				respondFieldErrors(c, fe)
				return
			}
			respondMessage(c, http.StatusInternalServerError, "Profile update failed")
			return
		}
		c.JSON(http.StatusOK, toUserResponse(*updated))
	}
}

type changePasswordRequest struct {
	CurrentPassword         string `json:"current_password"`
	NewPassword             string `json:"new_password"`
	NewPasswordConfirmation string `json:"new_password_confirmation"`
}

func changePasswordHandler(accounts AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req changePasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondMessage(c, http.StatusBadRequest, "Invalid request body")
			return
		}
		u := currentUser(c)
		err := accounts.ChangePassword(c.Request.Context(), u.ID, req.CurrentPassword, req.NewPassword, req.NewPasswordConfirmation)
		if err != nil {
			var fe account.FieldErrors
			if errors.As(err, &fe) {
				respondFieldErrors(c, fe)
				return
			}
			respondMessage(c, http.StatusInternalServerError, "Password update failed")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
	}
}
