package handlers

import (
	"net/http"
	"testing"

	"facility-ops-api-server/internal/access"
	"facility-ops-api-server/internal/models"
	"facility-ops-api-server/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func facilityRouter(h *FacilityHandler, a access.Actor) *gin.Engine {
	r := gin.New()
	g := r.Group("/api/facilities", mockAuth(a))
	g.POST("", h.CreateFacility)
	g.GET("", h.GetAllFacilities)
	g.GET("/:id", h.GetFacilityByID)
	g.PUT("/:id", h.UpdateFacility)
	g.DELETE("/:id", h.DeleteFacility)
	return r
}

func TestCreateFacilityHandler(t *testing.T) {
	_, svc, _ := newServices(t)
	h := &FacilityHandler{Facilities: svc.Facilities}

	tests := []struct {
		name           string
		actor          access.Actor
		body           map[string]interface{}
		expectedStatus int
		check          func(t *testing.T, env envelope)
	}{
		{
			name:  "admin onboards facility with manager",
			actor: adminActor(),
			body: map[string]interface{}{
				"siteName":     "Tower A",
				"city":         "Pune",
				"facilityType": "commercial",
				"clientName":   "Jane Roe",
				"email":        "jane@example.com",
			},
			expectedStatus: http.StatusCreated,
			check: func(t *testing.T, env envelope) {
				var res services.OnboardingResult
				decodeData(t, env, &res)
				assert.Equal(t, "success", env.Status)
				assert.Equal(t, models.FacilityTypeCommercial, res.Facility.FacilityType)
				require.NotNil(t, res.Credentials)
				assert.Equal(t, services.DefaultManagerPassword("Jane Roe", res.Facility.TenantID), res.Credentials.Password)
				require.NotNil(t, res.Catalog)
				require.NotNil(t, res.IoTCatalog)
				assert.Empty(t, res.Warnings)
			},
		},
		{
			name:           "missing site name",
			actor:          adminActor(),
			body:           map[string]interface{}{"city": "Pune", "facilityType": "HOTEL", "clientName": "X"},
			expectedStatus: http.StatusBadRequest,
			check: func(t *testing.T, env envelope) {
				assert.Equal(t, "error", env.Status)
				assert.Equal(t, "siteName is required", env.Message)
			},
		},
		{
			name:           "facility manager cannot onboard",
			actor:          memberActor(models.RoleFacilityManager),
			body:           map[string]interface{}{"siteName": "B", "city": "Pune", "facilityType": "HOTEL", "clientName": "X"},
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := doJSON(t, facilityRouter(h, tt.actor), http.MethodPost, "/api/facilities", tt.body)
			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.check != nil {
				tt.check(t, env)
			}
		})
	}
}

func TestFacilityListAndGetHandler(t *testing.T) {
	_, svc, _ := newServices(t)
	h := &FacilityHandler{Facilities: svc.Facilities}
	admin := adminActor()

	for _, site := range []string{"Tower A", "Tower B", "Mall C"} {
		w, _ := doJSON(t, facilityRouter(h, admin), http.MethodPost, "/api/facilities", map[string]interface{}{
			"siteName": site, "city": "Pune", "facilityType": "COMMERCIAL", "clientName": "Client",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w, env := doJSON(t, facilityRouter(h, admin), http.MethodGet, "/api/facilities?search=tower&limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.Facility
	decodeData(t, env, &list)
	require.Len(t, list, 1)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, models.Pagination{CurrentPage: 1, TotalPages: 2, TotalCount: 2, HasNextPage: true}, *env.Pagination)

	id := list[0].ID.Hex()
	w, _ = doJSON(t, facilityRouter(h, memberActor(models.RoleFacilityManager)), http.MethodGet, "/api/facilities/"+id, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env = doJSON(t, facilityRouter(h, memberActor(models.RoleFacilityManager)), http.MethodGet, "/api/facilities", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", string(env.Data))

	w, _ = doJSON(t, facilityRouter(h, admin), http.MethodGet, "/api/facilities/not-an-id", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = doJSON(t, facilityRouter(h, admin), http.MethodPut, "/api/facilities/"+id, map[string]interface{}{
		"siteName": "Tower A2", "city": "Mumbai", "facilityType": "COMMERCIAL", "clientName": "Client", "tenantId": "forged",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated models.Facility
	decodeData(t, env, &updated)
	assert.Equal(t, "Tower A2", updated.SiteName)
	assert.Equal(t, list[0].TenantID, updated.TenantID)

	w, _ = doJSON(t, facilityRouter(h, admin), http.MethodDelete, "/api/facilities/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = doJSON(t, facilityRouter(h, admin), http.MethodGet, "/api/facilities/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
