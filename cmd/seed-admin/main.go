// Command seed-admin creates the initial administrator account so a fresh
// deployment can log in. Safe to re-run: an existing account is left alone.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"fyp-management-api/config"
	"fyp-management-api/models"
	"fyp-management-api/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	var email, password, firstName, lastName string
	flag.StringVar(&email, "email", os.Getenv("ADMIN_EMAIL"), "admin email address")
	flag.StringVar(&password, "password", os.Getenv("ADMIN_PASSWORD"), "admin password")
	flag.StringVar(&firstName, "first-name", "System", "admin first name")
	flag.StringVar(&lastName, "last-name", "Administrator", "admin last name")
	flag.Parse()

	if email == "" || password == "" {
		log.Fatal("email and password are required (flags or ADMIN_EMAIL/ADMIN_PASSWORD)")
	}

	config.InitDB()
	st := store.NewGormStore(config.DB)
	if err := st.AutoMigrate(); err != nil {
		log.Fatal("Failed to run database migrations:", err)
	}

	if existing, err := st.GetUserByEmail(email); err == nil {
		log.Printf("Account %s already exists (user_id=%d, role=%s), nothing to do", existing.Email, existing.UserID, existing.Role)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Failed to hash password:", err)
	}

	admin := &models.User{
		Email:     email,
		Password:  string(hash),
		FirstName: firstName,
		LastName:  lastName,
		Role:      models.RoleAdmin,
	}
	if err := st.CreateUser(admin); err != nil {
		log.Fatal("Failed to create admin account:", err)
	}

	log.Printf("Admin account created: %s (user_id=%d)", admin.Email, admin.UserID)
}
