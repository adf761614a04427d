package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"storefront-backend/internal/auth"
	"storefront-backend/internal/config"
	"storefront-backend/internal/database"
	"storefront-backend/internal/logger"
	"storefront-backend/internal/models"
)

func main() {
	fmt.Println("Creating Admin User")
	fmt.Println("===================")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New("warn", true)
	ctx := context.Background()

	db, err := database.Connect(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := database.Migrate(cfg.DatabaseURL, log); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	userQueries := database.NewUserQueries(db)
	reader := bufio.NewReader(os.Stdin)

	email, err := prompt(reader, "Enter admin email: ")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read email")
	}
	if email == "" {
		log.Fatal().Msg("email cannot be empty")
	}

	existingUser, err := userQueries.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		fmt.Printf("User with email %s already exists.\n", email)
		confirm, err := prompt(reader, "Do you want to update this user to admin role? (y/N): ")
		if err != nil {
			log.Fatal().Err(err).Msg("failed to read confirmation")
		}
		if confirm = strings.ToLower(confirm); confirm != "y" && confirm != "yes" {
			fmt.Println("Operation cancelled.")
			return
		}

		if err := userQueries.UpdateUserRole(ctx, existingUser.ID, models.RoleAdmin); err != nil {
			log.Fatal().Err(err).Msg("failed to update user role")
		}
		fmt.Printf("Successfully updated user %s to admin role.\n", email)
		return
	case !errors.Is(err, database.ErrNotFound):
		log.Fatal().Err(err).Msg("failed to look up user")
	}

	password, err := readPassword("Enter admin password: ")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read password")
	}
	if len(password) < 6 {
		log.Fatal().Msg("password must be at least 6 characters long")
	}

	confirmPassword, err := readPassword("Confirm admin password: ")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read password confirmation")
	}
	if password != confirmPassword {
		log.Fatal().Msg("passwords do not match")
	}

	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to hash password")
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         models.RoleAdmin,
	}
	if err := userQueries.CreateUser(ctx, user); err != nil {
		log.Fatal().Err(err).Msg("failed to create admin user")
	}

	if _, err := database.NewProfileQueries(db).CreateUserProfile(ctx, user.ID); err != nil {
		log.Warn().Err(err).Msg("failed to create admin profile")
	}

	fmt.Printf("Successfully created admin user: %s\n", email)
	fmt.Printf("User ID: %d\n", user.ID)
	fmt.Printf("Created at: %s\n", user.CreatedAt.Format("2006-01-02 15:04:05"))
}

func prompt(reader *bufio.Reader, label string) (string, error) {
	fmt.Print(label)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func readPassword(label string) (string, error) {
	fmt.Print(label)
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(b), nil
}
