package cmd

import (
	"fmt"
	"log"
	"strings"
	"time"

	userDatamodel "github.com/edi-app/edi-intake/internal/core/datamodel/user"
	"github.com/edi-app/edi-intake/internal/sequence"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with development identities and the applicant number counter.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		if clearData {
			fmt.Println("Clearing applicants and users...")
			if err := db.Exec("DELETE FROM applicants").Error; err != nil {
				log.Fatalf("failed to clear applicants: %v", err)
			}
			if err := db.Exec("DELETE FROM users").Error; err != nil {
				log.Fatalf("failed to clear users: %v", err)
			}
			// The sequence counter is left alone: freed numbers are never reissued.
		}

		password := "password"
		hash, err := bcrypt.GenerateFromPassword([]byte(password), cfg.Security.BCryptCost)
		if err != nil {
			log.Fatalf("failed to hash seed password: %v", err)
		}

		for _, email := range cfg.Security.AdminEmailList() {
			seedUser(db, email, "admin", hash)
		}
		seedUser(db, "collector@edi.example", "collector", hash)

		if err := db.Exec(
			"INSERT INTO sequences (name, current_value) VALUES (?, 0) ON CONFLICT (name) DO NOTHING",
			sequence.ApplicantCounter,
		).Error; err != nil {
			log.Fatalf("failed to ensure sequence counter: %v", err)
		}
		fmt.Println("Ensured sequence counter:", sequence.ApplicantCounter)
	},
}

func seedUser(db *gorm.DB, email, role string, hash []byte) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return
	}

	var count int64
	if err := db.Model(&userDatamodel.User{}).Where("lower(email) = ?", email).Count(&count).Error; err != nil {
		log.Fatalf("failed to check user %s: %v", email, err)
	}
	if count > 0 {
		fmt.Println("user already exists:", email)
		return
	}

	user := &userDatamodel.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now(),
	}
	if err := db.Create(user).Error; err != nil {
		log.Fatalf("failed to insert user %s: %v", email, err)
	}
	fmt.Println("Seeded user:", email, "role:", role)
}
