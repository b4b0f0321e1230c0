package models

import (
	"errors"
	"strings"
	"time"
)

const (
	ProviderStatusActive   = "ACTIVE"
	ProviderStatusInactive = "INACTIVE"
	ProviderStatusExpired  = "EXPIRED"
)

type ProviderContact struct {
	Person string `bson:"person,omitempty" json:"person,omitempty"`
	Email  string `bson:"email,omitempty" json:"email,omitempty"`
	Phone  string `bson:"phone,omitempty" json:"phone,omitempty"`
}

// ServiceProvider is an external contractor (housekeeping agency, lift AMC, ...) with its contract.
type ServiceProvider struct {
	ScopedBase        `bson:",inline"`
	ProviderName      string          `bson:"providerName" json:"providerName"`
	ProviderNameKey   string          `bson:"providerNameKey" json:"-"`
	Category          string          `bson:"category" json:"category"`
	Contact           ProviderContact `bson:"contact" json:"contact"`
	ContractStartDate *time.Time      `bson:"contractStartDate,omitempty" json:"contractStartDate,omitempty"`
	ContractEndDate   *time.Time      `bson:"contractEndDate,omitempty" json:"contractEndDate,omitempty"`
	ContractValue     float64         `bson:"contractValue,omitempty" json:"contractValue,omitempty"`
	Status            string          `bson:"status" json:"status"`
}

func (p *ServiceProvider) Validate() error {
	switch {
	case p.FacilityID.IsZero():
		return errors.New("facilityId is required")
	case strings.TrimSpace(p.ProviderName) == "":
		return errors.New("providerName is required")
	case strings.TrimSpace(p.Category) == "":
		return errors.New("category is required")
	case p.ContractValue < 0:
		return errors.New("contractValue must not be negative")
	}
	if p.ContractStartDate != nil && p.ContractEndDate != nil && !p.ContractStartDate.Before(*p.ContractEndDate) {
		return errors.New("contractStartDate must be before contractEndDate")
	}
	switch p.Status {
	case ProviderStatusActive, ProviderStatusInactive, ProviderStatusExpired:
	default:
		return errors.New("status must be one of ACTIVE, INACTIVE, EXPIRED")
	}
	return nil
}

// Normalize derives the case-insensitive uniqueness key.
func (p *ServiceProvider) Normalize() {
	p.ProviderName = strings.TrimSpace(p.ProviderName)
	p.ProviderNameKey = strings.ToLower(p.ProviderName)
	p.Category = strings.TrimSpace(p.Category)
	p.Status = strings.ToUpper(p.Status)
	if p.Status == "" {
		p.Status = ProviderStatusActive
	}
}

// ContractActive reports whether at falls inside the contract window.
func (p *ServiceProvider) ContractActive(at time.Time) bool {
	if p.ContractStartDate != nil && at.Before(*p.ContractStartDate) {
		return false
	}
	if p.ContractEndDate != nil && !at.Before(*p.ContractEndDate) {
		return false
	}
	return true
}
