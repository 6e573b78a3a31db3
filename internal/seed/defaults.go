// Package seed provides database seeding for built-in content and demo data.
package seed

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"guildhall/internal/models"
	"guildhall/internal/service"
	"guildhall/internal/slug"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultsOptions configures built-in seeding.
type DefaultsOptions struct {
	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

var defaultCategories = []models.Category{
	{Name: "Announcements", Description: "Official news from the staff", Position: 0},
	{Name: "General", Description: "Anything and everything", Position: 1},
	{Name: "Looking for Group", Description: "Find people to play with", Position: 2},
	{Name: "Tech Support", Description: "Hardware, drivers, and connection issues", Position: 3},
}

var defaultTags = []models.Tag{
	{Name: "LFG", Color: "#4f9d69"},
	{Name: "Guide", Color: "#3b82c4"},
	{Name: "Question", Color: "#c4a13b"},
	{Name: "Staff", Color: "#b04343", IsHidden: true},
}

// EnsureDefaults creates the content every fresh install needs: the root
// admin account, the well-known CMS pages, the starter forum categories, and
// the starter tags. Safe to run repeatedly.
func EnsureDefaults(db *gorm.DB, opts DefaultsOptions) error {
	if err := ensureAdmin(db, opts); err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}
	if err := ensureWellKnownPages(db); err != nil {
		return fmt.Errorf("ensure pages: %w", err)
	}
	if err := ensureCategories(db); err != nil {
		return fmt.Errorf("ensure categories: %w", err)
	}
	if err := ensureTags(db); err != nil {
		return fmt.Errorf("ensure tags: %w", err)
	}
	return nil
}

func ensureAdmin(db *gorm.DB, opts DefaultsOptions) error {
	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	username := strings.TrimSpace(opts.AdminUsername)
	if username == "" {
		username = "guildmaster"
	}
	email := strings.ToLower(strings.TrimSpace(opts.AdminEmail))
	if email == "" {
		email = "admin@guildhall.local"
	}
	if opts.AdminPassword == "" {
		return errors.New("admin password required when no admin account exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(opts.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		Username: username,
		Email:    email,
		Password: string(hashed),
		Role:     models.RoleAdmin,
		Settings: models.UserSettings{
			Theme:              "dark",
			EmailNotifications: true,
			ForumNotifications: true,
			EventReminders:     true,
		},
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	log.Printf("created initial admin account %s (%s)", username, email)
	return nil
}

func ensureWellKnownPages(db *gorm.DB) error {
	for _, pageSlug := range service.WellKnownSlugs() {
		var existing models.Page
		err := db.Where("slug = ?", pageSlug).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		page, ok := service.DefaultPage(pageSlug)
		if !ok {
			continue
		}
		if err := db.Create(page).Error; err != nil {
			return err
		}
	}
	return nil
}

func ensureCategories(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for i := range defaultCategories {
		category := defaultCategories[i]
		category.Slug = slug.Make(category.Name)
		if err := db.Create(&category).Error; err != nil {
			return err
		}
	}
	return nil
}

func ensureTags(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Tag{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for i := range defaultTags {
		tag := defaultTags[i]
		tag.Slug = slug.Make(tag.Name)
		if err := db.Create(&tag).Error; err != nil {
			return err
		}
	}
	return nil
}
