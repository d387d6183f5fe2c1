package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/joelkehle/metria/internal/models"
)

// Repos wraps a Store with typed accessors for each collection.
type Repos struct {
	Users     *UserRepo
	Companies *CompanyRepo
	Reports   *ReportRepo
	Sessions  *SessionRepo
}

func NewRepos(s Store) *Repos {
	return &Repos{
		Users:     &UserRepo{s: s},
		Companies: &CompanyRepo{s: s},
		Reports:   &ReportRepo{s: s},
		Sessions:  &SessionRepo{s: s},
	}
}

func add[T any](ctx context.Context, s Store, c Collection, id string, v T) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c, err)
	}
	return s.Add(ctx, c, id, b)
}

func update[T any](ctx context.Context, s Store, c Collection, id string, v T) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c, err)
	}
	return s.Update(ctx, c, id, b)
}

func get[T any](ctx context.Context, s Store, c Collection, id string) (T, error) {
	var v T
	rec, err := s.Get(ctx, c, id)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(rec.Body, &v); err != nil {
		return v, fmt.Errorf("decode %s/%s: %w", c, id, err)
	}
	return v, nil
}

func decodeAll[T any](c Collection, recs []Record) ([]T, error) {
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		var v T
		if err := json.Unmarshal(rec.Body, &v); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", c, rec.ID, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func all[T any](ctx context.Context, s Store, c Collection) ([]T, error) {
	recs, err := s.GetAll(ctx, c)
	if err != nil {
		return nil, err
	}
	return decodeAll[T](c, recs)
}

func find[T any](ctx context.Context, s Store, c Collection, field, value string) ([]T, error) {
	recs, err := s.FindByField(ctx, c, field, value)
	if err != nil {
		return nil, err
	}
	return decodeAll[T](c, recs)
}

type UserRepo struct{ s Store }

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *UserRepo) Add(ctx context.Context, u models.User) error {
	u.Email = NormalizeEmail(u.Email)
	return add(ctx, r.s, Users, u.ID, u)
}

func (r *UserRepo) Update(ctx context.Context, u models.User) error {
	u.Email = NormalizeEmail(u.Email)
	return update(ctx, r.s, Users, u.ID, u)
}

func (r *UserRepo) Get(ctx context.Context, id string) (models.User, error) {
	return get[models.User](ctx, r.s, Users, id)
}

// FindByEmail returns nil when no user has the address.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	users, err := find[models.User](ctx, r.s, Users, "email", NormalizeEmail(email))
	if err != nil || len(users) == 0 {
		return nil, err
	}
	return &users[0], nil
}

func (r *UserRepo) FindByCompany(ctx context.Context, company string) ([]models.User, error) {
	return find[models.User](ctx, r.s, Users, "company", company)
}

func (r *UserRepo) All(ctx context.Context) ([]models.User, error) {
	return all[models.User](ctx, r.s, Users)
}

type CompanyRepo struct{ s Store }

func (r *CompanyRepo) Add(ctx context.Context, c models.Company) error {
	return add(ctx, r.s, Companies, c.ID, c)
}

func (r *CompanyRepo) Update(ctx context.Context, c models.Company) error {
	return update(ctx, r.s, Companies, c.ID, c)
}

func (r *CompanyRepo) Delete(ctx context.Context, id string) error {
	return r.s.Delete(ctx, Companies, id)
}

func (r *CompanyRepo) Get(ctx context.Context, id string) (models.Company, error) {
	return get[models.Company](ctx, r.s, Companies, id)
}

func (r *CompanyRepo) FindByName(ctx context.Context, name string) (*models.Company, error) {
	companies, err := find[models.Company](ctx, r.s, Companies, "name", name)
	if err != nil || len(companies) == 0 {
		return nil, err
	}
	return &companies[0], nil
}

func (r *CompanyRepo) All(ctx context.Context) ([]models.Company, error) {
	return all[models.Company](ctx, r.s, Companies)
}

type ReportRepo struct{ s Store }

func (r *ReportRepo) Add(ctx context.Context, rep models.SavedReport) error {
	return add(ctx, r.s, Reports, rep.ID, rep)
}

func (r *ReportRepo) Delete(ctx context.Context, id string) error {
	return r.s.Delete(ctx, Reports, id)
}

func (r *ReportRepo) Get(ctx context.Context, id string) (models.SavedReport, error) {
	return get[models.SavedReport](ctx, r.s, Reports, id)
}

// ByUser returns the user's reports, newest first.
func (r *ReportRepo) ByUser(ctx context.Context, userID string) ([]models.SavedReport, error) {
	reports, err := find[models.SavedReport](ctx, r.s, Reports, "userId", userID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].CreatedAt.After(reports[j].CreatedAt)
	})
	return reports, nil
}

func (r *ReportRepo) All(ctx context.Context) ([]models.SavedReport, error) {
	return all[models.SavedReport](ctx, r.s, Reports)
}

type SessionRepo struct{ s Store }

func (r *SessionRepo) Add(ctx context.Context, sess models.Session) error {
	return add(ctx, r.s, Sessions, sess.Token, sess)
}

// Get returns nil when the token is unknown.
func (r *SessionRepo) Get(ctx context.Context, token string) (*models.Session, error) {
	sess, err := get[models.Session](ctx, r.s, Sessions, token)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	err := r.s.Delete(ctx, Sessions, token)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

func (r *SessionRepo) ByUser(ctx context.Context, userID string) ([]models.Session, error) {
	return find[models.Session](ctx, r.s, Sessions, "userId", userID)
}
