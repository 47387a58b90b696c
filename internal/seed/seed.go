package seed

import (
	"fmt"
	"log"

	"quartermaster/internal/models"

	"gorm.io/gorm"
)

// Plan describes one seeding run.
type Plan struct {
	// CatalogPath is a YAML catalog file; empty uses DefaultCatalog.
	CatalogPath string
	Resources   int
	Users       int
	// Requests is the number of pending requests spread over generated users.
	Requests int
	Clean    bool
}

// Summary reports what a run created.
type Summary struct {
	CatalogCreated int
	Resources      int
	Users          int
	Requests       int
}

// Seeder applies a Plan against a database.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a Seeder backed by db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db, opts)}
}

// ClearAll removes every request, resource and non-admin user.
func (s *Seeder) ClearAll() error {
	log.Println("🧹 Clearing existing data...")
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Request{}).Error; err != nil {
			return fmt.Errorf("clear requests: %w", err)
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(&models.Resource{}).Error; err != nil {
			return fmt.Errorf("clear resources: %w", err)
		}
		if err := tx.Where("role <> ?", models.RoleAdmin).Delete(&models.User{}).Error; err != nil {
			return fmt.Errorf("clear users: %w", err)
		}
		return nil
	})
}

// Run executes plan. createdBy is recorded as the creator of seeded resources.
func (s *Seeder) Run(plan Plan, createdBy uint) (*Summary, error) {
	if plan.Clean {
		if err := s.ClearAll(); err != nil {
			return nil, err
		}
	}

	catalog := &DefaultCatalog
	if plan.CatalogPath != "" {
		loaded, err := LoadCatalog(plan.CatalogPath)
		if err != nil {
			return nil, err
		}
		catalog = loaded
	}

	var summary Summary
	created, err := ApplyCatalog(s.db, catalog, createdBy)
	if err != nil {
		return nil, fmt.Errorf("apply catalog: %w", err)
	}
	summary.CatalogCreated = created

	resources, err := s.factory.CreateResources(plan.Resources, createdBy)
	if err != nil {
		return nil, err
	}
	summary.Resources = len(resources)

	users, err := s.factory.CreateUsers(plan.Users)
	if err != nil {
		return nil, err
	}
	summary.Users = len(users)

	if plan.Requests > 0 && len(users) > 0 {
		var pool []models.Resource
		if err := s.db.Find(&pool).Error; err != nil {
			return nil, fmt.Errorf("load resources: %w", err)
		}
		if len(pool) > 0 {
			for i := 0; i < plan.Requests; i++ {
				u := users[i%len(users)]
				r := pool[i%len(pool)]
				if _, err := s.factory.CreateRequest(u, &r); err != nil {
					return nil, err
				}
				summary.Requests++
			}
		}
	}

	return &summary, nil
}
