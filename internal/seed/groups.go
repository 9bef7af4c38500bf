package seed

import (
	_ "embed"
	"fmt"

	"quill/internal/models"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:embed groups.yaml
var builtInGroupsYAML []byte

// BuiltInGroup is a permanent group created on every seed run.
type BuiltInGroup struct {
	Title       string `yaml:"title"`
	Slug        string `yaml:"slug"`
	Description string `yaml:"description"`
}

// BuiltInGroups parses the embedded group definitions.
func BuiltInGroups() ([]BuiltInGroup, error) {
	var doc struct {
		Groups []BuiltInGroup `yaml:"groups"`
	}
	if err := yaml.Unmarshal(builtInGroupsYAML, &doc); err != nil {
		return nil, fmt.Errorf("parse built-in groups: %w", err)
	}
	return doc.Groups, nil
}

// Groups seeds the permanent built-in groups. Existing groups are
// updated in place, keyed by slug.
func Groups(db *gorm.DB) error {
	groups, err := BuiltInGroups()
	if err != nil {
		return err
	}

	for _, item := range groups {
		group := models.Group{
			Title:       item.Title,
			Slug:        item.Slug,
			Description: item.Description,
		}

		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "description"}),
		}).Create(&group).Error; err != nil {
			return fmt.Errorf("seed group %q: %w", item.Slug, err)
		}
	}

	return nil
}
