// Package seed creates demo data for development databases: the built-in
// categories plus fake authors, posts, comments and likes.
package seed

import (
	_ "embed"
	"fmt"

	"tecnopronto/internal/models"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:embed categories.yml
var categoriesYAML []byte

// BuiltInCategory is one entry of the embedded category list.
type BuiltInCategory struct {
	Name string `yaml:"name"`
	Slug string `yaml:"slug"`
}

// BuiltInCategories parses the embedded category list.
func BuiltInCategories() ([]BuiltInCategory, error) {
	var items []BuiltInCategory
	if err := yaml.Unmarshal(categoriesYAML, &items); err != nil {
		return nil, fmt.Errorf("parse categories.yml: %w", err)
	}
	for _, item := range items {
		if item.Name == "" || item.Slug == "" {
			return nil, fmt.Errorf("categories.yml: entry %+v needs a name and a slug", item)
		}
	}
	return items, nil
}

// Categories upserts the built-in categories by slug. It is safe to run repeatedly.
func Categories(db *gorm.DB) ([]models.Category, error) {
	items, err := BuiltInCategories()
	if err != nil {
		return nil, err
	}

	categories := make([]models.Category, 0, len(items))
	for _, item := range items {
		category := models.Category{Name: item.Name, Slug: item.Slug}
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{"name"}),
		}).Create(&category).Error
		if err != nil {
			return nil, fmt.Errorf("seed category %s: %w", item.Slug, err)
		}
		if category.ID == 0 {
			if err := db.Where("slug = ?", item.Slug).First(&category).Error; err != nil {
				return nil, err
			}
		}
		categories = append(categories, category)
	}
	return categories, nil
}
