package service

import (
	"context"
	"testing"
	"tienda-services/internal/client"
	"tienda-services/internal/config"
	"tienda-services/internal/dto"
	"tienda-services/internal/model"
	"tienda-services/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestDB opens a private in-memory database. A single connection keeps
// the schema alive and serialises transactions.
func newTestDB(t *testing.T, models ...any) *gorm.DB {
	t.Helper()

	db, err := client.InitDBClient(config.Database{
		Driver:       "sqlite",
		URL:          ":memory:",
		MaxIdleConns: 1,
		MaxOpenConns: 1,
	}, models...)
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func pricePtr(s string) *decimal.Decimal {
	d := price(s)
	return &d
}

func createCategory(t *testing.T, repo repository.CategoryRepository, name string) *model.Category {
	t.Helper()

	category := &model.Category{Name: name, Description: name + " items"}
	require.NoError(t, repo.Create(context.Background(), category))
	return category
}

func productRequest(name, unitPrice string, stock int64, categoryIDs ...uint) dto.ProductRequest {
	refs := make([]dto.Ref, len(categoryIDs))
	for i, id := range categoryIDs {
		refs[i] = dto.Ref{ID: id}
	}
	return dto.ProductRequest{
		Name:        name,
		Description: name + " description",
		Price:       price(unitPrice),
		Stock:       stock,
		Image:       name + ".png",
		Categories:  refs,
	}
}

func categoryNames(categories []model.Category) []string {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.Name
	}
	return names
}

func categoryIDs(p *model.Product) []uint {
	ids := make([]uint, len(p.Categories))
	for i, c := range p.Categories {
		ids[i] = c.ID
	}
	return ids
}

func roleIDs(u *model.User) []uint {
	ids := make([]uint, len(u.Roles))
	for i, r := range u.Roles {
		ids[i] = r.ID
	}
	return ids
}

// parseToken verifies a token the way a downstream consumer of the login
// response would.
func parseToken(issuer *TokenIssuer, token string) (*UserClaims, error) {
	claims := &UserClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return issuer.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(issuer.now))
	if err != nil {
		return nil, err
	}
	return claims, nil
}
