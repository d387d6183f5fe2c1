// Package admin aggregates platform usage and manages the company registry.
package admin

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/joelkehle/metria/internal/apperr"
	"github.com/joelkehle/metria/internal/logging"
	"github.com/joelkehle/metria/internal/models"
	"github.com/joelkehle/metria/internal/store"
)

const topCompanies = 10

type UserStat struct {
	models.User
	ProjectCount int `json:"projectCount"`
}

type CompanyStat struct {
	models.Company
	UserCount    int `json:"userCount"`
	ProjectCount int `json:"projectCount"`
}

type CompanyProjects struct {
	Name     string `json:"name"`
	Projects int    `json:"projects"`
}

type Overview struct {
	TotalUsers         int               `json:"totalUsers"`
	TotalProjects      int               `json:"totalProjects"`
	TotalCompanies     int               `json:"totalCompanies"`
	AvgProjectsPerUser float64           `json:"avgProjectsPerUser"`
	Users              []UserStat        `json:"users"`
	Companies          []CompanyStat     `json:"companies"`
	TopCompanies       []CompanyProjects `json:"topCompanies"`
}

// CompanyInput carries the editable company fields.
type CompanyInput struct {
	Name     string               `json:"name"`
	Industry string               `json:"industry"`
	Status   models.CompanyStatus `json:"status"`
}

type Service struct {
	repos  *store.Repos
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

func NewService(repos *store.Repos, logger *zap.Logger) *Service {
	return &Service{
		repos:  repos,
		logger: logging.OrNop(logger).Named("admin"),
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
	}
}

// Overview counts users, reports and companies. A company's users are those
// whose company field equals its name; its projects are those users' reports.
func (s *Service) Overview(ctx context.Context) (Overview, error) {
	users, err := s.repos.Users.All(ctx)
	if err != nil {
		return Overview{}, apperr.Internal("list users", err)
	}
	reports, err := s.repos.Reports.All(ctx)
	if err != nil {
		return Overview{}, apperr.Internal("list reports", err)
	}
	companies, err := s.repos.Companies.All(ctx)
	if err != nil {
		return Overview{}, apperr.Internal("list companies", err)
	}

	perUser := make(map[string]int, len(users))
	for _, r := range reports {
		perUser[r.UserID]++
	}

	out := Overview{
		TotalUsers:     len(users),
		TotalProjects:  len(reports),
		TotalCompanies: len(companies),
		Users:          make([]UserStat, 0, len(users)),
		Companies:      make([]CompanyStat, 0, len(companies)),
	}
	if len(users) > 0 {
		avg := decimal.NewFromInt(int64(len(reports))).Div(decimal.NewFromInt(int64(len(users))))
		out.AvgProjectsPerUser = avg.Round(1).InexactFloat64()
	}

	for _, u := range users {
		out.Users = append(out.Users, UserStat{User: u.Public(), ProjectCount: perUser[u.ID]})
	}
	sort.SliceStable(out.Users, func(i, j int) bool {
		return out.Users[i].ProjectCount > out.Users[j].ProjectCount
	})

	for _, c := range companies {
		stat := CompanyStat{Company: c}
		for _, u := range users {
			if u.Company == c.Name {
				stat.UserCount++
				stat.ProjectCount += perUser[u.ID]
			}
		}
		out.Companies = append(out.Companies, stat)
	}

	top := make([]CompanyProjects, 0, len(out.Companies))
	for _, c := range out.Companies {
		top = append(top, CompanyProjects{Name: c.Name, Projects: c.ProjectCount})
	}
	sort.SliceStable(top, func(i, j int) bool { return top[i].Projects > top[j].Projects })
	if len(top) > topCompanies {
		top = top[:topCompanies]
	}
	out.TopCompanies = top
	return out, nil
}

func (s *Service) ListCompanies(ctx context.Context) ([]models.Company, error) {
	companies, err := s.repos.Companies.All(ctx)
	if err != nil {
		return nil, apperr.Internal("list companies", err)
	}
	return companies, nil
}

func normalizeCompany(in CompanyInput) (CompanyInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Industry = strings.TrimSpace(in.Industry)
	if in.Name == "" {
		return in, apperr.Validation("company name is required")
	}
	switch in.Status {
	case "":
		in.Status = models.CompanyActive
	case models.CompanyActive, models.CompanyInactive:
	default:
		return in, apperr.Validation("status must be active or inactive")
	}
	return in, nil
}

func (s *Service) CreateCompany(ctx context.Context, in CompanyInput) (models.Company, error) {
	in, err := normalizeCompany(in)
	if err != nil {
		return models.Company{}, err
	}
	existing, err := s.repos.Companies.FindByName(ctx, in.Name)
	if err != nil {
		return models.Company{}, apperr.Internal("lookup company", err)
	}
	if existing != nil {
		return models.Company{}, apperr.Conflict("company name already in use")
	}
	c := models.Company{
		ID:        s.newID(),
		Name:      in.Name,
		Industry:  in.Industry,
		Status:    in.Status,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repos.Companies.Add(ctx, c); err != nil {
		return models.Company{}, apperr.Internal("save company", err)
	}
	s.logger.Info("company created", zap.String("company_id", c.ID), zap.String("name", c.Name))
	return c, nil
}

// UpdateCompany saves the company and, on rename, moves every user linked by
// the old name to the new one. It returns the number of users moved.
func (s *Service) UpdateCompany(ctx context.Context, id string, in CompanyInput) (models.Company, int, error) {
	in, err := normalizeCompany(in)
	if err != nil {
		return models.Company{}, 0, err
	}
	c, err := s.company(ctx, id)
	if err != nil {
		return models.Company{}, 0, err
	}
	oldName := c.Name
	if in.Name != oldName {
		existing, err := s.repos.Companies.FindByName(ctx, in.Name)
		if err != nil {
			return models.Company{}, 0, apperr.Internal("lookup company", err)
		}
		if existing != nil && existing.ID != c.ID {
			return models.Company{}, 0, apperr.Conflict("company name already in use")
		}
	}

	c.Name, c.Industry, c.Status = in.Name, in.Industry, in.Status
	if err := s.repos.Companies.Update(ctx, c); err != nil {
		return models.Company{}, 0, apperr.Internal("save company", err)
	}
	if in.Name == oldName {
		return c, 0, nil
	}

	users, err := s.repos.Users.FindByCompany(ctx, oldName)
	if err != nil {
		return c, 0, apperr.Internal("list company users", err)
	}
	for _, u := range users {
		u.Company = c.Name
		if err := s.repos.Users.Update(ctx, u); err != nil {
			return c, 0, apperr.Internal("move user to renamed company", err)
		}
	}
	s.logger.Info("company renamed",
		zap.String("company_id", c.ID),
		zap.String("from", oldName),
		zap.String("to", c.Name),
		zap.Int("users_updated", len(users)))
	return c, len(users), nil
}

// DeleteCompany refuses while any user is still linked to the company.
func (s *Service) DeleteCompany(ctx context.Context, id string) error {
	c, err := s.company(ctx, id)
	if err != nil {
		return err
	}
	users, err := s.repos.Users.FindByCompany(ctx, c.Name)
	if err != nil {
		return apperr.Internal("list company users", err)
	}
	if len(users) > 0 {
		return apperr.Conflict("company still has users")
	}
	if err := s.repos.Companies.Delete(ctx, id); err != nil {
		return apperr.Internal("delete company", err)
	}
	s.logger.Info("company deleted", zap.String("company_id", id))
	return nil
}

func (s *Service) company(ctx context.Context, id string) (models.Company, error) {
	c, err := s.repos.Companies.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return models.Company{}, apperr.NotFound("company not found")
	}
	if err != nil {
		return models.Company{}, apperr.Internal("load company", err)
	}
	return c, nil
}
