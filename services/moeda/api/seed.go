package moedaapi

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/AulusHZP/LabProjetoDeSoftware/internal/auth"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/domain/moeda"
	"github.com/AulusHZP/LabProjetoDeSoftware/services/moeda/store"
)

//go:embed seed.yaml
var defaultSeed []byte

// Seed is a set of fixtures loaded into an empty store.
type Seed struct {
	Institutions []moeda.Institution `yaml:"institutions"`
	Companies    []SeedCompany       `yaml:"companies"`
	Professors   []SeedProfessor     `yaml:"professors"`
	Students     []SeedStudent       `yaml:"students"`
	Advantages   []SeedAdvantage     `yaml:"advantages"`
}

type SeedCompany struct {
	ID          string `yaml:"id"`
	CompanyName string `yaml:"companyName"`
	CNPJ        string `yaml:"cnpj"`
	Email       string `yaml:"email"`
	Password    string `yaml:"password"`
}

type SeedProfessor struct {
	ID            string `yaml:"id"`
	Name          string `yaml:"name"`
	Email         string `yaml:"email"`
	CPF           string `yaml:"cpf"`
	Department    string `yaml:"department"`
	InstitutionID string `yaml:"institutionId"`
	Password      string `yaml:"password"`
	CoinBalance   *int64 `yaml:"coinBalance"`
}

type SeedStudent struct {
	ID            string `yaml:"id"`
	Name          string `yaml:"name"`
	Email         string `yaml:"email"`
	CPF           string `yaml:"cpf"`
	RG            string `yaml:"rg"`
	Address       string `yaml:"address"`
	InstitutionID string `yaml:"institutionId"`
	Course        string `yaml:"course"`
	Password      string `yaml:"password"`
	CoinBalance   int64  `yaml:"coinBalance"`
}

type SeedAdvantage struct {
	ID             string `yaml:"id"`
	CompanyID      string `yaml:"companyId"`
	Title          string `yaml:"title"`
	Description    string `yaml:"description"`
	PhotoURL       string `yaml:"photoUrl"`
	CoinCost       int64  `yaml:"coinCost"`
	MaxRedemptions int    `yaml:"maxRedemptions"`
	Inactive       bool   `yaml:"inactive"`
}

// ParseSeed decodes YAML fixtures.
func ParseSeed(data []byte) (*Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed: %w", err)
	}
	return &seed, nil
}

// LoadSeed reads fixtures from path, or the built-in demo data when path is empty.
func LoadSeed(path string) (*Seed, error) {
	if path == "" {
		return ParseSeed(defaultSeed)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed: %w", err)
	}
	return ParseSeed(data)
}

// Apply writes the fixtures unless the store already has institutions.
// It reports whether anything was written.
func (seed *Seed) Apply(ctx context.Context, st store.Store, initialCoins int64) (bool, error) {
	existing, err := st.ListInstitutions(ctx)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}

	for _, inst := range seed.Institutions {
		if _, err := st.CreateInstitution(ctx, inst); err != nil {
			return false, fmt.Errorf("seed institution %s: %w", inst.Name, err)
		}
	}
	for _, c := range seed.Companies {
		hash, err := auth.HashPassword(c.Password)
		if err != nil {
			return false, err
		}
		if _, err := st.CreateCompany(ctx, moeda.Company{
			ID: c.ID, CompanyName: c.CompanyName, CNPJ: c.CNPJ, Email: c.Email, PasswordHash: hash,
		}); err != nil {
			return false, fmt.Errorf("seed company %s: %w", c.Email, err)
		}
	}
	// Seeded professors count as credited for the current semester.
	refreshed := time.Now().UTC()
	for _, p := range seed.Professors {
		hash, err := auth.HashPassword(p.Password)
		if err != nil {
			return false, err
		}
		balance := initialCoins
		if p.CoinBalance != nil {
			balance = *p.CoinBalance
		}
		if _, err := st.CreateProfessor(ctx, moeda.Professor{
			ID: p.ID, Name: p.Name, Email: p.Email, CPF: p.CPF, Department: p.Department,
			InstitutionID: p.InstitutionID, CoinBalance: balance, LastCoinRefresh: &refreshed, PasswordHash: hash,
		}); err != nil {
			return false, fmt.Errorf("seed professor %s: %w", p.Email, err)
		}
	}
	for _, s := range seed.Students {
		hash, err := auth.HashPassword(s.Password)
		if err != nil {
			return false, err
		}
		if _, err := st.CreateStudent(ctx, moeda.Student{
			ID: s.ID, Name: s.Name, Email: s.Email, CPF: s.CPF, RG: s.RG, Address: s.Address,
			InstitutionID: s.InstitutionID, Course: s.Course, CoinBalance: s.CoinBalance, PasswordHash: hash,
		}); err != nil {
			return false, fmt.Errorf("seed student %s: %w", s.Email, err)
		}
	}
	for _, a := range seed.Advantages {
		if _, err := st.CreateAdvantage(ctx, moeda.Advantage{
			ID: a.ID, CompanyID: a.CompanyID, Title: a.Title, Description: a.Description, PhotoURL: a.PhotoURL,
			CoinCost: a.CoinCost, MaxRedemptions: a.MaxRedemptions, IsActive: !a.Inactive,
		}); err != nil {
			return false, fmt.Errorf("seed advantage %s: %w", a.Title, err)
		}
	}
	return true, nil
}
