package models

import (
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CatalogKind string

const (
	CatalogRegular CatalogKind = "REGULAR"
	CatalogIoT     CatalogKind = "IOT"
)

// IoT service states. An IoT entry is active exactly when its status is ACTIVE.
const (
	IoTStatusActive      = "ACTIVE"
	IoTStatusInactive    = "INACTIVE"
	IoTStatusMaintenance = "MAINTENANCE"
)

func IsValidIoTStatus(s string) bool {
	return s == IoTStatusActive || s == IoTStatusInactive || s == IoTStatusMaintenance
}

var (
	ErrCategoryNotFound  = errors.New("category not found")
	ErrServiceNotFound   = errors.New("service not found")
	ErrDuplicateCategory = errors.New("category with this name already exists")
	ErrDuplicateService  = errors.New("service with this name already exists in the category")
	ErrInvalidIoTStatus  = errors.New("invalid IoT service status")
	ErrCategoryNameEmpty = errors.New("category name is required")
	ErrServiceNameEmpty  = errors.New("service name is required")
)

// newEntryID generates category and service ids. Replaced in tests that need stable ids.
var newEntryID = func() string { return primitive.NewObjectID().Hex() }

type ServiceEntry struct {
	ID                  string    `bson:"serviceId" json:"serviceId"`
	Name                string    `bson:"name" json:"name"`
	Description         string    `bson:"description,omitempty" json:"description,omitempty"`
	IsActive            bool      `bson:"isActive" json:"isActive"`
	Status              string    `bson:"status,omitempty" json:"status,omitempty"`
	Features            []string  `bson:"features,omitempty" json:"features,omitempty"`
	IntegrationEndpoint string    `bson:"integrationEndpoint,omitempty" json:"integrationEndpoint,omitempty"`
	UpdatedAt           time.Time `bson:"updatedAt" json:"updatedAt"`
}

type ServiceCategory struct {
	ID          string         `bson:"categoryId" json:"categoryId"`
	Name        string         `bson:"name" json:"name"`
	Description string         `bson:"description,omitempty" json:"description,omitempty"`
	Services    []ServiceEntry `bson:"services" json:"services"`
	TotalCount  int            `bson:"totalCount" json:"totalCount"`
	ActiveCount int            `bson:"activeCount" json:"activeCount"`
}

// ServiceCatalog is the per-facility tree of service categories. The same shape backs
// both the regular and the IoT collections; Kind tells them apart.
//
// The counters are a materialized view of the nested lists. They are only changed by
// the mutation methods below, each of which ends with Recount.
type ServiceCatalog struct {
	ScopedBase             `bson:",inline"`
	Kind                   CatalogKind       `bson:"kind" json:"kind"`
	FacilityName           string            `bson:"facilityName" json:"facilityName"`
	FacilityType           string            `bson:"facilityType" json:"facilityType"`
	Categories             []ServiceCategory `bson:"categories" json:"categories"`
	TotalServicesAvailable int               `bson:"totalServicesAvailable" json:"totalServicesAvailable"`
	TotalServicesActive    int               `bson:"totalServicesActive" json:"totalServicesActive"`
	IoTEnabled             bool              `bson:"iotEnabled,omitempty" json:"iotEnabled,omitempty"`
}

func (c *ServiceCatalog) Validate() error {
	if c.FacilityID.IsZero() {
		return errors.New("facilityId is required")
	}
	if c.Kind != CatalogRegular && c.Kind != CatalogIoT {
		return errors.New("invalid catalog kind")
	}
	return nil
}

// Recount rebuilds every derived counter from the nested lists.
func (c *ServiceCatalog) Recount() {
	c.TotalServicesAvailable = 0
	c.TotalServicesActive = 0
	for i := range c.Categories {
		cat := &c.Categories[i]
		cat.TotalCount = len(cat.Services)
		cat.ActiveCount = 0
		for _, s := range cat.Services {
			if s.IsActive {
				cat.ActiveCount++
			}
		}
		c.TotalServicesAvailable += cat.TotalCount
		c.TotalServicesActive += cat.ActiveCount
	}
}

func (c *ServiceCatalog) category(id string) (*ServiceCategory, error) {
	for i := range c.Categories {
		if c.Categories[i].ID == id {
			return &c.Categories[i], nil
		}
	}
	return nil, ErrCategoryNotFound
}

func (cat *ServiceCategory) service(id string) (*ServiceEntry, int, error) {
	for i := range cat.Services {
		if cat.Services[i].ID == id {
			return &cat.Services[i], i, nil
		}
	}
	return nil, -1, ErrServiceNotFound
}

func (cat *ServiceCategory) hasServiceNamed(name, exceptID string) bool {
	name = strings.TrimSpace(name)
	for _, s := range cat.Services {
		if s.ID != exceptID && strings.EqualFold(s.Name, name) {
			return true
		}
	}
	return false
}

// ServiceInput describes a service entry to add.
type ServiceInput struct {
	Name                string
	Description         string
	IsActive            bool
	Status              string
	Features            []string
	IntegrationEndpoint string
}

// ServiceUpdate carries a partial update; nil fields are left unchanged.
type ServiceUpdate struct {
	Name                *string
	Description         *string
	IsActive            *bool
	Status              *string
	Features            []string
	IntegrationEndpoint *string
}

// CategoryInput describes a category (optionally with services) to add.
type CategoryInput struct {
	Name        string
	Description string
	Services    []ServiceInput
}

func (c *ServiceCatalog) newEntry(in ServiceInput, now time.Time) (ServiceEntry, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return ServiceEntry{}, ErrServiceNameEmpty
	}
	entry := ServiceEntry{
		ID:          newEntryID(),
		Name:        name,
		Description: in.Description,
		IsActive:    in.IsActive,
		UpdatedAt:   now,
	}
	if c.Kind == CatalogIoT {
		entry.Features = in.Features
		entry.IntegrationEndpoint = in.IntegrationEndpoint
		if err := applyIoTStatus(&entry, in.Status); err != nil {
			return ServiceEntry{}, err
		}
	}
	return entry, nil
}

// syncIoTStatus derives Status from IsActive.
func syncIoTStatus(entry *ServiceEntry) {
	if entry.IsActive {
		entry.Status = IoTStatusActive
	} else {
		entry.Status = IoTStatusInactive
	}
}

// applyIoTStatus keeps Status and IsActive in agreement. An empty status derives from IsActive.
func applyIoTStatus(entry *ServiceEntry, status string) error {
	if status == "" {
		syncIoTStatus(entry)
		return nil
	}
	if !IsValidIoTStatus(status) {
		return ErrInvalidIoTStatus
	}
	entry.Status = status
	entry.IsActive = status == IoTStatusActive
	return nil
}

// AddCategory appends a category with its services.
func (c *ServiceCatalog) AddCategory(in CategoryInput, now time.Time) (*ServiceCategory, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrCategoryNameEmpty
	}
	for _, existing := range c.Categories {
		if strings.EqualFold(existing.Name, name) {
			return nil, ErrDuplicateCategory
		}
	}

	cat := ServiceCategory{
		ID:          newEntryID(),
		Name:        name,
		Description: in.Description,
		Services:    []ServiceEntry{},
	}
	for _, svc := range in.Services {
		if cat.hasServiceNamed(svc.Name, "") {
			return nil, ErrDuplicateService
		}
		entry, err := c.newEntry(svc, now)
		if err != nil {
			return nil, err
		}
		cat.Services = append(cat.Services, entry)
	}

	c.Categories = append(c.Categories, cat)
	c.Recount()
	return &c.Categories[len(c.Categories)-1], nil
}

// AddService appends a service to a category.
func (c *ServiceCatalog) AddService(categoryID string, in ServiceInput, now time.Time) (*ServiceEntry, error) {
	cat, err := c.category(categoryID)
	if err != nil {
		return nil, err
	}
	if cat.hasServiceNamed(in.Name, "") {
		return nil, ErrDuplicateService
	}
	entry, err := c.newEntry(in, now)
	if err != nil {
		return nil, err
	}
	cat.Services = append(cat.Services, entry)
	c.Recount()
	return &cat.Services[len(cat.Services)-1], nil
}

// UpdateService applies a partial update to one service.
func (c *ServiceCatalog) UpdateService(categoryID, serviceID string, in ServiceUpdate, now time.Time) (*ServiceEntry, error) {
	cat, err := c.category(categoryID)
	if err != nil {
		return nil, err
	}
	svc, _, err := cat.service(serviceID)
	if err != nil {
		return nil, err
	}

	updated := *svc
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, ErrServiceNameEmpty
		}
		if cat.hasServiceNamed(name, serviceID) {
			return nil, ErrDuplicateService
		}
		updated.Name = name
	}
	if in.Description != nil {
		updated.Description = *in.Description
	}
	if in.IsActive != nil {
		updated.IsActive = *in.IsActive
	}
	if c.Kind == CatalogIoT {
		if in.Features != nil {
			updated.Features = in.Features
		}
		if in.IntegrationEndpoint != nil {
			updated.IntegrationEndpoint = *in.IntegrationEndpoint
		}
		switch {
		case in.Status != nil:
			if err := applyIoTStatus(&updated, *in.Status); err != nil {
				return nil, err
			}
		case in.IsActive != nil:
			syncIoTStatus(&updated)
		}
	}
	updated.UpdatedAt = now

	*svc = updated
	c.Recount()
	return svc, nil
}

// ToggleService flips a service between active and inactive.
func (c *ServiceCatalog) ToggleService(categoryID, serviceID string, now time.Time) (*ServiceEntry, error) {
	cat, err := c.category(categoryID)
	if err != nil {
		return nil, err
	}
	svc, _, err := cat.service(serviceID)
	if err != nil {
		return nil, err
	}
	svc.IsActive = !svc.IsActive
	if c.Kind == CatalogIoT {
		syncIoTStatus(svc)
	}
	svc.UpdatedAt = now
	c.Recount()
	return svc, nil
}

// RemoveService deletes a service from its category.
func (c *ServiceCatalog) RemoveService(categoryID, serviceID string) error {
	cat, err := c.category(categoryID)
	if err != nil {
		return err
	}
	_, idx, err := cat.service(serviceID)
	if err != nil {
		return err
	}
	cat.Services = append(cat.Services[:idx], cat.Services[idx+1:]...)
	c.Recount()
	return nil
}
