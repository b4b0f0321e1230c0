package handlers

import (
	"net/http"

	"facility-ops-api-server/internal/api/response"
	"facility-ops-api-server/internal/models"
	"facility-ops-api-server/internal/services"

	"github.com/gin-gonic/gin"
)

type EmployeeHandler struct {
	Employees *services.EmployeeService
}

func (h *EmployeeHandler) CreateEmployee(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req services.EmployeeInput
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.Employees.Create(c.Request.Context(), a, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Employee created successfully", user)
}

func (h *EmployeeHandler) ListEmployees(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	facilityID, ok := facilityQuery(c)
	if !ok {
		return
	}

	users, pagination, err := h.Employees.List(c.Request.Context(), a, services.EmployeeFilter{
		FacilityID: facilityID,
		Role:       c.Query("role"),
		Status:     c.Query("status"),
		Page:       pageQuery(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	response.Paged(c, users, pagination)
}

func (h *EmployeeHandler) GetEmployee(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	user, err := h.Employees.Get(c.Request.Context(), a, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, user)
}

func (h *EmployeeHandler) UpdateEmployee(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var req services.EmployeeInput
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.Employees.Update(c.Request.Context(), a, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "Employee updated successfully", user)
}

// DeleteEmployee soft deletes the account and records who removed it.
func (h *EmployeeHandler) DeleteEmployee(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.Employees.Delete(c.Request.Context(), a, id); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "Employee deleted successfully", nil)
}
