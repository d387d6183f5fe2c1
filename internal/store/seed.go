package store

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/joelkehle/metria/internal/models"
)

type seedUser struct {
	user     models.User
	password string
}

func seedCompanies(now time.Time) []models.Company {
	return []models.Company{
		{ID: "comp-001", Name: "Metria HQ", Industry: "SaaS / Technology", Status: models.CompanyActive, CreatedAt: now},
		{ID: "comp-002", Name: "TechCorp Solutions", Industry: "IT Consulting", Status: models.CompanyActive, CreatedAt: now},
		{ID: "comp-003", Name: "Startup Lab", Industry: "Accelerator", Status: models.CompanyActive, CreatedAt: now},
		{ID: "comp-004", Name: "Varejo 4.0", Industry: "Retail", Status: models.CompanyActive, CreatedAt: now},
	}
}

func seedUsers(now time.Time) []seedUser {
	return []seedUser{
		{password: "admin", user: models.User{
			ID: "admin-001", Name: "Fundadora Metria", Email: "admin@metria.com", Role: models.RoleAdmin,
			Company: "Metria HQ", JobTitle: "CEO & Founder", Phone: "+55 11 99999-9999",
			City: "São Paulo", State: "SP", Country: "Brasil", CreatedAt: now,
		}},
		{password: "123", user: models.User{
			ID: "user-001", Name: "Carlos Tech", Email: "carlos@techcorp.com.br", Role: models.RoleUser,
			Company: "TechCorp Solutions", JobTitle: "CTO", Phone: "+55 41 98888-8888",
			City: "Curitiba", State: "PR", Country: "Brasil", CreatedAt: now,
		}},
		{password: "123", user: models.User{
			ID: "user-002", Name: "Ana Inovação", Email: "ana@startuplab.com", Role: models.RoleUser,
			Company: "Startup Lab", JobTitle: "Innovation Manager", Phone: "+55 21 97777-7777",
			City: "Rio de Janeiro", State: "RJ", Country: "Brasil", CreatedAt: now,
		}},
		{password: "123", user: models.User{
			ID: "user-003", Name: "Roberto Vendas", Email: "roberto@varejo.com", Role: models.RoleUser,
			Company: "Varejo 4.0", JobTitle: "Sales Director", Phone: "+55 31 96666-6666",
			City: "Belo Horizonte", State: "MG", Country: "Brasil", CreatedAt: now,
		}},
	}
}

// AvatarURL builds the generated avatar used when a user has none.
func AvatarURL(name string) string {
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(name) + "&background=random"
}

// Seed loads the initial users and companies when the users collection is
// empty. Companies are restored on their own if only that collection is empty.
func Seed(ctx context.Context, repos *Repos, hash func(string) (string, error), logger *zap.Logger) error {
	now := time.Now().UTC()
	users, err := repos.Users.All(ctx)
	if err != nil {
		return fmt.Errorf("seed: list users: %w", err)
	}
	companies, err := repos.Companies.All(ctx)
	if err != nil {
		return fmt.Errorf("seed: list companies: %w", err)
	}

	if len(companies) == 0 {
		for _, c := range seedCompanies(now) {
			if err := repos.Companies.Add(ctx, c); err != nil {
				return fmt.Errorf("seed company %s: %w", c.Name, err)
			}
		}
		logger.Info("seeded companies")
	}
	if len(users) > 0 {
		logger.Debug("users present, skipping user seed", zap.Int("users", len(users)))
		return nil
	}
	for _, su := range seedUsers(now) {
		h, err := hash(su.password)
		if err != nil {
			return fmt.Errorf("seed user %s: %w", su.user.Email, err)
		}
		u := su.user
		u.PasswordHash = h
		u.Avatar = AvatarURL(u.Name)
		if err := repos.Users.Add(ctx, u); err != nil {
			return fmt.Errorf("seed user %s: %w", u.Email, err)
		}
	}
	logger.Info("seeded users")
	return nil
}
