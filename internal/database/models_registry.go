package database

import "guildhall/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Page{},
		&models.ContentBlock{},
		&models.ContentRevision{},
		&models.Category{},
		&models.Thread{},
		&models.Post{},
		&models.Comment{},
		&models.ThreadVote{},
		&models.Tag{},
		&models.NewsArticle{},
		&models.Event{},
	}
}
