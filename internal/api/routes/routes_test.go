package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"facility-ops-api-server/config"
	"facility-ops-api-server/internal/auth"
	"facility-ops-api-server/internal/database"
	"facility-ops-api-server/internal/models"
	"facility-ops-api-server/internal/services"
	"facility-ops-api-server/internal/socket"
	"facility-ops-api-server/internal/testutil/memstore"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	auth.HashCost = bcrypt.MinCost
	os.Exit(m.Run())
}

type testServer struct {
	router *gin.Engine
	db     *memstore.DB
	hub    *socket.Hub
}

func newTestServer(t *testing.T, ping func(ctx context.Context) error) *testServer {
	t.Helper()
	logger := zap.NewNop()
	db := memstore.New()
	hub := socket.NewHub(logger)
	svc := services.New(services.Stores{
		Tx:                db.Tx,
		Facilities:        db.Facilities,
		Users:             db.Users,
		Catalogs:          db.Catalogs,
		IoTCatalogs:       db.IoTCatalogs,
		FloorLocations:    db.FloorLocations,
		DailyChecklists:   db.DailyChecklists,
		HygieneSections:   db.HygieneSections,
		HygieneChecklists: db.HygieneChecklists,
		Rosters:           db.Rosters,
		LeavePlanners:     db.LeavePlanners,
		ShiftSchedules:    db.ShiftSchedules,
		WeekoffPlanners:   db.WeekoffPlanners,
		ServiceProviders:  db.ServiceProviders,
	}, services.Deps{
		Events:           hub,
		Tokens:           auth.NewTokenService("routes-test-secret", time.Hour),
		CredentialWindow: 10 * time.Second,
	}, logger)

	require.NoError(t, database.SeedSuperAdmin(context.Background(), db.Users, config.SeedConfig{
		SuperAdminEmail:    "root@example.com",
		SuperAdminPassword: "root-password",
	}, logger))

	return &testServer{
		router: SetupRouter(Dependencies{Services: svc, Hub: hub, Ping: ping, Logger: logger}),
		db:     db,
		hub:    hub,
	}
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (s *testServer) call(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	code, env := s.call(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, code, env.Message)
	var res struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	return res.Token
}

func TestOnboardingThroughRouter(t *testing.T) {
	s := newTestServer(t, nil)

	code, _ := s.call(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "root@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = s.call(t, http.MethodGet, "/api/facilities", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	rootToken := s.login(t, "root@example.com", "root-password")
	code, env := s.call(t, http.MethodGet, "/api/auth/me", rootToken, nil)
	require.Equal(t, http.StatusOK, code)
	var me models.User
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, models.RoleSuperAdmin, me.Role)

	code, env = s.call(t, http.MethodPost, "/api/facilities", rootToken, map[string]string{
		"siteName": "Tower A", "city": "Pune", "facilityType": "COMMERCIAL", "clientName": "Jane Roe", "email": "jane@example.com",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var onboarding services.OnboardingResult
	require.NoError(t, json.Unmarshal(env.Data, &onboarding))
	require.NotNil(t, onboarding.Credentials)
	assert.Equal(t, "janeroe@"+onboarding.Facility.TenantID[:8], onboarding.Credentials.Password)

	managerToken := s.login(t, onboarding.Credentials.Email, onboarding.Credentials.Password)

	code, _ = s.call(t, http.MethodPost, "/api/facilities", managerToken, map[string]string{
		"siteName": "Tower B", "city": "Pune", "facilityType": "COMMERCIAL", "clientName": "Someone",
	})
	assert.Equal(t, http.StatusForbidden, code)

	code, env = s.call(t, http.MethodGet, "/api/services/"+onboarding.Facility.ID.Hex(), managerToken, nil)
	require.Equal(t, http.StatusOK, code)
	var catalog models.ServiceCatalog
	require.NoError(t, json.Unmarshal(env.Data, &catalog))
	assert.Equal(t, onboarding.Catalog.ID, catalog.ID)

	code, env = s.call(t, http.MethodPost, "/api/employees", managerToken, map[string]string{
		"firstName": "Asha", "email": "asha@example.com", "password": "housekeeping1", "role": models.RoleHousekeeping,
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var employee models.User
	require.NoError(t, json.Unmarshal(env.Data, &employee))
	assert.Equal(t, onboarding.Facility.ID, employee.ManagedFacilities[0])

	code, env = s.call(t, http.MethodPost, "/api/floor-locations", managerToken, map[string]interface{}{
		"floorNumber": 3, "floorName": "Third",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var floor models.FloorLocation
	require.NoError(t, json.Unmarshal(env.Data, &floor))
	assert.True(t, floor.IsActive)
	code, env = s.call(t, http.MethodGet, "/api/daily-checklists/qr/"+floor.QRCode, managerToken, nil)
	assert.Equal(t, http.StatusOK, code, env.Message)

	code, _ = s.call(t, http.MethodGet, "/api/rosters", managerToken, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = s.call(t, http.MethodGet, "/api/no-such-thing", managerToken, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestHealth(t *testing.T) {
	code, env := newTestServer(t, func(ctx context.Context) error { return nil }).
		call(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "success", env.Status)

	code, env = newTestServer(t, func(ctx context.Context) error { return errors.New("no primary") }).
		call(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "Database unavailable", env.Message)
}

func TestWebSocketReceivesChecklistEvents(t *testing.T) {
	s := newTestServer(t, nil)
	server := httptest.NewServer(s.router)
	defer server.Close()

	rootToken := s.login(t, "root@example.com", "root-password")
	code, env := s.call(t, http.MethodPost, "/api/facilities", rootToken, map[string]string{
		"siteName": "Tower A", "city": "Pune", "facilityType": "COMMERCIAL", "clientName": "Jane Roe", "email": "jane@example.com",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var onboarding services.OnboardingResult
	require.NoError(t, json.Unmarshal(env.Data, &onboarding))
	managerToken := s.login(t, onboarding.Credentials.Email, onboarding.Credentials.Password)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/ws"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	if resp != nil {
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?token="+managerToken, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return s.hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	code, env = s.call(t, http.MethodPost, "/api/floor-locations", managerToken, map[string]interface{}{
		"floorNumber": 3, "floorName": "Third", "isActive": true,
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var floor models.FloorLocation
	require.NoError(t, json.Unmarshal(env.Data, &floor))

	code, env = s.call(t, http.MethodPost, "/api/hygiene-sections", managerToken, map[string]interface{}{"name": "Washrooms", "isActive": true})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var section models.HygieneSection
	require.NoError(t, json.Unmarshal(env.Data, &section))

	code, env = s.call(t, http.MethodPost, "/api/daily-checklists", managerToken, map[string]interface{}{
		"sectionId": section.ID.Hex(), "floorLocationId": floor.ID.Hex(),
		"items": []map[string]string{{"name": "Mop floor"}},
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var checklist models.DailyChecklist
	require.NoError(t, json.Unmarshal(env.Data, &checklist))

	code, _ = s.call(t, http.MethodPatch, "/api/daily-checklists/"+checklist.ID.Hex()+"/items/0/complete", managerToken, nil)
	require.Equal(t, http.StatusOK, code)

	var received []string
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for len(received) < 2 {
		var event socket.Event
		require.NoError(t, conn.ReadJSON(&event))
		assert.Equal(t, onboarding.Facility.ID.Hex(), event.FacilityID)
		received = append(received, event.Type)
	}
	assert.Equal(t, []string{services.EventChecklistUpdated, services.EventChecklistCompleted}, received)
}
