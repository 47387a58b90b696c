// Package main provides role management utilities for Quartermaster.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"quartermaster/internal/config"
	"quartermaster/internal/database"
	"quartermaster/internal/models"
	"quartermaster/internal/repository"

	"gorm.io/gorm"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/admin promote <email>   - Grant the admin role")
	fmt.Println("  go run ./cmd/admin demote <email>    - Revoke the admin role")
	fmt.Println("  go run ./cmd/admin list-admins       - List all admins")
	fmt.Println()
	fmt.Println("Role changes apply from the user's next sign-in.")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	users := repository.NewUserRepository(db)

	switch command := os.Args[1]; command {
	case "promote", "demote":
		if len(os.Args) < 3 {
			usage()
			os.Exit(1)
		}
		role := models.RoleAdmin
		if command == "demote" {
			role = models.RoleUser
		}
		setRole(users, os.Args[2], role)

	case "list-admins":
		listAdmins(db)

	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}

func setRole(users repository.UserRepository, email string, role models.Role) {
	ctx := context.Background()
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := users.GetByEmail(ctx, email)
	if err != nil {
		log.Fatalf("Database error: %v", err)
	}
	if user == nil {
		fmt.Printf("User with email %s not found\n", email)
		os.Exit(1)
	}

	if user.Role == role {
		fmt.Printf("User %s (ID: %d) already has role %s\n", user.Email, user.ID, role)
		return
	}

	user.Role = role
	if err := users.Update(ctx, user); err != nil {
		log.Fatalf("Failed to update role: %v", err)
	}
	fmt.Printf("✅ %s (ID: %d) now has role %s\n", user.Email, user.ID, role)
}

func listAdmins(db *gorm.DB) {
	var admins []models.User
	if err := db.Where("role = ?", models.RoleAdmin).Order("id").Find(&admins).Error; err != nil {
		log.Fatalf("Failed to fetch admins: %v", err)
	}

	if len(admins) == 0 {
		fmt.Println("No admins found in the system")
		return
	}

	fmt.Printf("Admins (%d):\n", len(admins))
	for _, a := range admins {
		fmt.Printf("  %d\t%s\t%s\n", a.ID, a.Email, a.FullName)
	}
}
