// Migration script to hash passwords that predate bcrypt storage.
package main

import (
	"log"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"fyp-management-api/config"
	"fyp-management-api/models"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Initialize database
	config.InitDB()

	var users []models.User
	if err := config.DB.Find(&users).Error; err != nil {
		log.Fatal("Failed to fetch users:", err)
	}

	migrated := 0
	for _, user := range users {
		// bcrypt hashes start with $2
		if strings.HasPrefix(user.Password, "$2") {
			continue
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("Failed to hash password for %s: %v", user.Email, err)
			continue
		}

		if err := config.DB.Model(&models.User{}).
			Where("user_id = ?", user.UserID).
			Update("password", string(hashed)).Error; err != nil {
			log.Printf("Failed to update %s: %v", user.Email, err)
			continue
		}
		migrated++
	}

	log.Printf("Password migration completed: %d of %d users updated", migrated, len(users))
}
