package services

import (
	"context"
	"testing"

	"facility-ops-api-server/internal/apperror"
	"facility-ops-api-server/internal/auth"
	"facility-ops-api-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreateEmployeeInheritsFacilities(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	facilityA, facilityB := primitive.NewObjectID(), primitive.NewObjectID()
	manager := member(models.RoleFacilityManager, facilityA, facilityB)

	user, err := f.svc.Employees.Create(ctx, manager, EmployeeInput{
		FirstName: "Ravi",
		LastName:  "Kumar",
		Email:     " Ravi@Example.com ",
		Password:  "s3cret-pass",
		Role:      "housekeeping",
	})
	require.NoError(t, err)
	assert.Equal(t, "ravi@example.com", user.Email)
	assert.Equal(t, []primitive.ObjectID{facilityA, facilityB}, user.ManagedFacilities)
	assert.Equal(t, models.RoleHousekeeping, user.Role)
	assert.True(t, auth.CheckPasswordHash("s3cret-pass", user.Password))

	_, err = f.svc.Employees.Create(ctx, manager, EmployeeInput{FirstName: "Ravi", Email: "ravi@example.com", Password: "another-pass", Role: models.RoleEmployee})
	requireKind(t, err, apperror.KindConflict)
}

func TestCreateEmployeeRoleRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	facility := primitive.NewObjectID()
	manager := member(models.RoleFacilityManager, facility)
	in := func(role string) EmployeeInput {
		return EmployeeInput{FirstName: "A", Email: role + "@corp.example", Password: "password1", Role: role}
	}

	_, err := f.svc.Employees.Create(ctx, manager, in(models.RoleAdmin))
	requireKind(t, err, apperror.KindValidation)
	_, err = f.svc.Employees.Create(ctx, manager, in(models.RoleFacilityManager))
	requireKind(t, err, apperror.KindForbidden)
	_, err = f.svc.Employees.Create(ctx, member(models.RoleTechnician, facility), in(models.RoleEmployee))
	requireKind(t, err, apperror.KindForbidden)

	user, err := f.svc.Employees.Create(ctx, admin(), in(models.RoleFacilityManager))
	require.NoError(t, err)
	assert.Empty(t, user.ManagedFacilities)

	short := in(models.RoleEmployee)
	short.Password = "short"
	_, err = f.svc.Employees.Create(ctx, manager, short)
	requireKind(t, err, apperror.KindValidation)
}

func TestEmployeeScoping(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	facility := primitive.NewObjectID()
	manager := member(models.RoleFacilityManager, facility)

	worker, err := f.svc.Employees.Create(ctx, manager, EmployeeInput{FirstName: "W", Email: "w@corp.example", Password: "password1", Role: models.RoleTechnician})
	require.NoError(t, err)
	_, err = f.svc.Employees.Create(ctx, member(models.RoleFacilityManager, primitive.NewObjectID()), EmployeeInput{FirstName: "X", Email: "x@corp.example", Password: "password1", Role: models.RoleTechnician})
	require.NoError(t, err)
	require.NoError(t, f.db.Users.Insert(ctx, &models.User{Email: "root@corp.example", Role: models.RoleAdmin, ManagedFacilities: []primitive.ObjectID{facility}}))

	list, page, err := f.svc.Employees.List(ctx, manager, EmployeeFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, worker.ID, list[0].ID)
	assert.Equal(t, int64(1), page.TotalCount)

	all, _, err := f.svc.Employees.List(ctx, admin(), EmployeeFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	outsider := member(models.RoleFacilityManager, primitive.NewObjectID())
	_, err = f.svc.Employees.Get(ctx, outsider, worker.ID)
	requireKind(t, err, apperror.KindNotFound)

	updated, err := f.svc.Employees.Update(ctx, manager, worker.ID, EmployeeInput{Phone: "98765", Role: models.RoleSupervisor})
	require.NoError(t, err)
	assert.Equal(t, models.RoleSupervisor, updated.Role)
	assert.Equal(t, "98765", updated.Phone)

	requireKind(t, f.svc.Employees.Delete(ctx, manager, manager.ID), apperror.KindValidation)
	require.NoError(t, f.svc.Employees.Delete(ctx, manager, worker.ID))
	_, err = f.svc.Employees.Get(ctx, manager, worker.ID)
	requireKind(t, err, apperror.KindNotFound)
}

func TestLoginAndAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.onboard(t, "Tower A", "Jane Roe", "jane@example.com")
	user, err := f.db.Users.FindByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	facility := user.ManagedFacilities[0]
	fac, err := f.db.Facilities.FindByID(ctx, facility)
	require.NoError(t, err)

	_, err = f.svc.Auth.Login(ctx, "jane@example.com", "wrong")
	requireKind(t, err, apperror.KindUnauthorized)
	_, err = f.svc.Auth.Login(ctx, "nobody@example.com", "wrong")
	requireKind(t, err, apperror.KindUnauthorized)

	res, err := f.svc.Auth.Login(ctx, "JANE@example.com", DefaultManagerPassword("Jane Roe", fac.TenantID))
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)

	actor, err := f.svc.Auth.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, actor.ID)
	assert.Equal(t, models.RoleFacilityManager, actor.Role)
	assert.Equal(t, []primitive.ObjectID{facility}, actor.ManagedFacilities)

	_, err = f.svc.Auth.Authenticate(ctx, "not-a-token")
	requireKind(t, err, apperror.KindUnauthorized)

	require.NoError(t, f.db.Users.SoftDelete(ctx, user.ID, primitive.NewObjectID(), testNow))
	_, err = f.svc.Auth.Authenticate(ctx, res.Token)
	requireKind(t, err, apperror.KindUnauthorized)
}
