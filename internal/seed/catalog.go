package seed

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"quartermaster/internal/models"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// CatalogEntry is one resource in a seed catalog file.
type CatalogEntry struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Category    string `yaml:"category"`
	Quantity    int    `yaml:"quantity"`
}

// Catalog is the top-level document of a seed catalog file.
type Catalog struct {
	Resources []CatalogEntry `yaml:"resources"`
}

// DefaultCatalog is used when no catalog file is given.
var DefaultCatalog = Catalog{Resources: []CatalogEntry{
	{Name: "Arduino Uno R3", Description: "Microcontroller board for prototyping.", Category: "electronics", Quantity: 25},
	{Name: "Raspberry Pi 4 (4GB)", Description: "Single-board computer with case and power supply.", Category: "electronics", Quantity: 12},
	{Name: "Digital Multimeter", Description: "Auto-ranging handheld multimeter.", Category: "instruments", Quantity: 10},
	{Name: "Oscilloscope 100MHz", Description: "Two-channel digital storage oscilloscope.", Category: "instruments", Quantity: 3},
	{Name: "Soldering Station", Description: "Temperature-controlled soldering iron.", Category: "tools", Quantity: 8},
	{Name: "Breadboard (830 points)", Description: "Solderless breadboard.", Category: "electronics", Quantity: 60},
	{Name: "Projector", Description: "Portable HDMI projector for presentations.", Category: "av", Quantity: 4},
	{Name: "Conference Camera", Description: "USB camera with wide-angle lens.", Category: "av", Quantity: 0},
}}

// ParseCatalog decodes and validates a YAML catalog document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	for i := range c.Resources {
		e := &c.Resources[i]
		e.Name = strings.TrimSpace(e.Name)
		e.Category = strings.TrimSpace(e.Category)
		e.Description = strings.TrimSpace(e.Description)
		if e.Name == "" || e.Category == "" {
			return nil, fmt.Errorf("catalog entry %d: name and category are required", i+1)
		}
		if e.Quantity < 0 {
			return nil, fmt.Errorf("catalog entry %d (%s): quantity must not be negative", i+1, e.Name)
		}
	}
	return &c, nil
}

// LoadCatalog reads and parses a catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// ApplyCatalog upserts every entry, matching existing resources on name and
// category. It returns the number of resources created.
func ApplyCatalog(db *gorm.DB, c *Catalog, createdBy uint) (int, error) {
	if c == nil {
		return 0, nil
	}
	created := 0
	err := db.Transaction(func(tx *gorm.DB) error {
		for _, e := range c.Resources {
			var existing models.Resource
			findErr := tx.Where("name = ? AND category = ?", e.Name, e.Category).First(&existing).Error
			switch {
			case errors.Is(findErr, gorm.ErrRecordNotFound):
				r := models.Resource{
					Name:              e.Name,
					Description:       e.Description,
					Category:          e.Category,
					QuantityAvailable: e.Quantity,
					CreatedByUserID:   createdBy,
				}
				if err := tx.Create(&r).Error; err != nil {
					return fmt.Errorf("create %s: %w", e.Name, err)
				}
				created++
			case findErr != nil:
				return findErr
			default:
				updates := map[string]any{
					"description":        e.Description,
					"quantity_available": e.Quantity,
				}
				if err := tx.Model(&existing).Updates(updates).Error; err != nil {
					return fmt.Errorf("update %s: %w", e.Name, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}
