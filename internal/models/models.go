package models

import (
	"time"

	"github.com/joelkehle/metria/internal/metrics"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash,omitempty"`
	Role         Role      `json:"role"`
	Company      string    `json:"company,omitempty"`
	Avatar       string    `json:"avatar,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	JobTitle     string    `json:"jobTitle,omitempty"`
	City         string    `json:"city,omitempty"`
	State        string    `json:"state,omitempty"`
	Country      string    `json:"country,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Public returns the user without credentials.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

type CompanyStatus string

const (
	CompanyActive   CompanyStatus = "active"
	CompanyInactive CompanyStatus = "inactive"
)

type Company struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Industry  string        `json:"industry"`
	Status    CompanyStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
}

type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

type Analysis struct {
	StrategicAnalysis string   `json:"strategicAnalysis"`
	RiskAssessment    string   `json:"riskAssessment"`
	MarketViability   string   `json:"marketViability"`
	Recommendations   []string `json:"recommendations"`
	MarketFitScore    float64  `json:"marketFitScore"`
}

type SavedReport struct {
	ID        string                    `json:"id"`
	UserID    string                    `json:"userId"`
	CreatedAt time.Time                 `json:"createdAt"`
	Data      metrics.ProjectInputs     `json:"data"`
	Metrics   metrics.CalculatedMetrics `json:"metrics"`
	Analysis  *Analysis                 `json:"analysis"`
	// Warning is set when the analysis is the offline fallback.
	Warning string `json:"warning,omitempty"`
}
