package services

import "facility-ops-api-server/internal/models"

func svc(names ...string) []models.ServiceInput {
	out := make([]models.ServiceInput, len(names))
	for i, n := range names {
		out[i] = models.ServiceInput{Name: n, IsActive: true}
	}
	return out
}

// IoT devices start INACTIVE until someone wires up the integration.
func device(name string, features ...string) models.ServiceInput {
	return models.ServiceInput{Name: name, Status: models.IoTStatusInactive, Features: features}
}

var baseRegularCategories = []models.CategoryInput{
	{Name: "Power Management", Description: "Grid supply, backup and distribution", Services: svc("Grid Supply", "DG Backup", "UPS Maintenance")},
	{Name: "Water Management", Description: "Supply, storage and quality", Services: svc("Municipal Supply", "Borewell", "Water Tank Cleaning")},
	{Name: "Housekeeping", Description: "Cleaning and hygiene", Services: svc("Common Area Cleaning", "Washroom Hygiene", "Waste Collection")},
	{Name: "Security", Description: "Guarding and access control", Services: svc("Manned Guarding", "CCTV Surveillance", "Visitor Management")},
}

var regularCategoriesByType = map[string][]models.CategoryInput{
	models.FacilityTypeResidential: {
		{Name: "Swimming Pool", Description: "Pool upkeep and safety", Services: svc("Pool Maintenance", "Lifeguard")},
		{Name: "Lifts", Services: svc("Lift AMC")},
	},
	models.FacilityTypeCommercial: {
		{Name: "Lifts & Escalators", Services: svc("Lift AMC", "Escalator AMC")},
		{Name: "HVAC", Services: svc("Chiller Maintenance", "AHU Servicing")},
	},
	models.FacilityTypeIndustrial: {
		{Name: "STP/WTP/RO Plant", Description: "Effluent and process water treatment", Services: svc("Sewage Treatment Plant", "Water Treatment Plant", "RO Plant")},
		{Name: "Fire Safety", Services: svc("Fire Hydrant System", "Extinguisher Refilling")},
	},
	models.FacilityTypeHospital: {
		{Name: "Biomedical Waste", Services: svc("Segregation", "Authorized Disposal")},
		{Name: "Medical Gas", Services: svc("Oxygen Manifold", "Vacuum Line")},
		{Name: "STP/WTP/RO Plant", Services: svc("Sewage Treatment Plant", "RO Plant")},
	},
	models.FacilityTypeHotel: {
		{Name: "Swimming Pool", Description: "Pool upkeep and safety", Services: svc("Pool Maintenance", "Lifeguard")},
		{Name: "Laundry", Services: svc("Linen Laundry", "Guest Laundry")},
	},
	models.FacilityTypeEducational: {
		{Name: "Campus Transport", Services: svc("Bus Fleet Maintenance")},
		{Name: "Sports Facilities", Services: svc("Ground Maintenance")},
	},
}

var baseIoTCategories = []models.CategoryInput{
	{Name: "Energy Monitoring", Services: []models.ServiceInput{
		device("Smart Energy Meter", "real-time kWh", "load alerts"),
		device("DG Fuel Level Sensor", "fuel level", "theft alerts"),
	}},
	{Name: "Water Monitoring", Services: []models.ServiceInput{
		device("Tank Level Sensor", "level tracking", "overflow alerts"),
		device("Flow Meter", "consumption tracking"),
	}},
	{Name: "Environment", Services: []models.ServiceInput{
		device("Air Quality Sensor", "PM2.5", "CO2"),
	}},
}

var iotCategoriesByType = map[string][]models.CategoryInput{
	models.FacilityTypeResidential: {
		{Name: "Pool Monitoring", Services: []models.ServiceInput{device("pH Sensor", "pH"), device("Chlorine Sensor", "free chlorine")}},
	},
	models.FacilityTypeHotel: {
		{Name: "Pool Monitoring", Services: []models.ServiceInput{device("pH Sensor", "pH"), device("Chlorine Sensor", "free chlorine")}},
	},
	models.FacilityTypeIndustrial: {
		{Name: "Plant Monitoring", Services: []models.ServiceInput{device("STP Outlet Sensor", "BOD", "COD"), device("RO TDS Monitor", "TDS")}},
	},
	models.FacilityTypeHospital: {
		{Name: "Cold Chain", Services: []models.ServiceInput{device("Vaccine Fridge Sensor", "temperature", "door alerts")}},
		{Name: "Plant Monitoring", Services: []models.ServiceInput{device("RO TDS Monitor", "TDS")}},
	},
}

// defaultCategories returns the starting category list for a catalog kind and facility type.
func defaultCategories(kind models.CatalogKind, facilityType string) []models.CategoryInput {
	if kind == models.CatalogIoT {
		return append(append([]models.CategoryInput{}, baseIoTCategories...), iotCategoriesByType[facilityType]...)
	}
	return append(append([]models.CategoryInput{}, baseRegularCategories...), regularCategoriesByType[facilityType]...)
}
