package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fyp-management-api/middleware"
	"fyp-management-api/services"
	"fyp-management-api/utils"
)

// GetUsers returns all users, optionally filtered by role. Admin only.
func GetUsers(c *gin.Context) {
	actor := middleware.CurrentUser(c)

	users, err := userService.List(actor, c.Query("role"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"total": len(users),
	})
}

// GetUser returns a single user by ID.
func GetUser(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	id, ok := paramID(c)
	if !ok {
		return
	}

	user, err := userService.Get(actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// CreateUser registers a new account. Admin only.
func CreateUser(c *gin.Context) {
	type CreateUserRequest struct {
		Email     string `json:"email" binding:"required,email"`
		Password  string `json:"password" binding:"required,min=8"`
		FirstName string `json:"first_name" binding:"required"`
		LastName  string `json:"last_name" binding:"required"`
		Role      string `json:"role" binding:"required"`
	}

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if ok, msg := utils.ValidatePassword(req.Password); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	actor := middleware.CurrentUser(c)
	user, err := userService.Create(actor, services.UserInput{
		Email:        utils.SanitizeInput(req.Email),
		PasswordHash: hash,
		FirstName:    utils.SanitizeInput(req.FirstName),
		LastName:     utils.SanitizeInput(req.LastName),
		Role:         req.Role,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":    user,
		"message": "User created successfully",
	})
}
