package service

import (
	"context"
	"testing"

	"quartermaster/internal/models"
	"quartermaster/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogService_CreateRequiresAdmin(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCatalogService(repository.NewResourceRepository(db))
	user := seedUser(t, db, "user@example.com", models.RoleUser)

	_, err := svc.Create(context.Background(), principalFor(user), ResourceInput{Name: "Scope", Category: "lab", QuantityAvailable: 1})
	assertCode(t, err, models.CodeForbidden)

	_, err = svc.Create(context.Background(), nil, ResourceInput{Name: "Scope", Category: "lab", QuantityAvailable: 1})
	assertCode(t, err, models.CodeUnauthorized)

	var count int64
	require.NoError(t, db.Model(&models.Resource{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCatalogService_CreateValidates(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCatalogService(repository.NewResourceRepository(db))
	admin := principalFor(seedUser(t, db, "admin@example.com", models.RoleAdmin))

	tests := []struct {
		name string
		in   ResourceInput
	}{
		{"blank name", ResourceInput{Name: "  ", Category: "lab"}},
		{"blank category", ResourceInput{Name: "Scope", Category: ""}},
		{"negative quantity", ResourceInput{Name: "Scope", Category: "lab", QuantityAvailable: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), admin, tt.in)
			assertCode(t, err, models.CodeValidation)
		})
	}
}

func TestCatalogService_Lifecycle(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCatalogService(repository.NewResourceRepository(db))
	adminUser := seedUser(t, db, "admin@example.com", models.RoleAdmin)
	admin := principalFor(adminUser)
	ctx := context.Background()

	created, err := svc.Create(ctx, admin, ResourceInput{Name: " Oscilloscope ", Category: "lab", QuantityAvailable: 4})
	require.NoError(t, err)
	assert.Equal(t, "Oscilloscope", created.Name)
	assert.Equal(t, adminUser.ID, created.CreatedByUserID)

	updated, err := svc.Update(ctx, admin, created.ID, ResourceInput{Name: "Scope", Description: "4 channel", Category: "electronics", QuantityAvailable: 2})
	require.NoError(t, err)
	assert.Equal(t, "Scope", updated.Name)
	assert.Equal(t, "electronics", updated.Category)
	assert.Equal(t, 2, updated.QuantityAvailable)

	cats, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"electronics"}, cats)

	require.NoError(t, svc.Delete(ctx, admin, created.ID))
	_, err = svc.Get(ctx, created.ID)
	assertCode(t, err, models.CodeNotFound)

	err = svc.Delete(ctx, admin, created.ID)
	assertCode(t, err, models.CodeNotFound)

	_, err = svc.Update(ctx, admin, 999, ResourceInput{Name: "x", Category: "y"})
	assertCode(t, err, models.CodeNotFound)
}

func TestCatalogService_NonAdminCannotMutate(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCatalogService(repository.NewResourceRepository(db))
	user := principalFor(seedUser(t, db, "user@example.com", models.RoleUser))
	res := seedResource(t, db, "Projector", 3)

	_, err := svc.Update(context.Background(), user, res.ID, ResourceInput{Name: "x", Category: "y", QuantityAvailable: 100})
	assertCode(t, err, models.CodeForbidden)
	assertCode(t, svc.Delete(context.Background(), user, res.ID), models.CodeForbidden)

	assert.Equal(t, 3, quantityOf(t, db, res.ID))
	got, err := svc.Get(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, "Projector", got.Name)
}

func TestCatalogService_ListFilters(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCatalogService(repository.NewResourceRepository(db))
	seedResource(t, db, "Projector", 3)
	seedResource(t, db, "Soldering iron", 0)

	all, err := svc.List(context.Background(), repository.ResourceFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	found, err := svc.List(context.Background(), repository.ResourceFilter{Search: "SOLDER"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Soldering iron", found[0].Name)
}
