// Copyright (c) 2026 Allsoft PIMS. All rights reserved.

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/allsoft/pims/internal/platform/constants"
	"github.com/allsoft/pims/internal/platform/middleware"
	requestutil "github.com/allsoft/pims/internal/platform/request"
	"github.com/allsoft/pims/internal/platform/respond"
)

// Handler exposes the auth domain over HTTP.
type Handler struct {
	service *Service
}

// NewHandler creates a new auth HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes mounts the auth endpoints.
//
// # Access Control
//
// Login is the only anonymous endpoint; account and role administration is
// restricted to callers holding the Admin role claim.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/login", handler.login)

	router.Group(func(router chi.Router) {
		router.Use(middleware.RequireRole(constants.RoleAdmin))

		router.Post("/addUser", handler.addUser)
		router.Post("/addRole", handler.addRole)
		router.Post("/assignRole", handler.assignRoles)
	})

	return router
}

// login handles POST /login.
//
// Response: 200 with {"token": "..."} on success, 401 with
// "Invalid login attempt" for any credential failure.
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var payload LoginRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.Login(request.Context(), payload)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// The login body is the bare {"token": ...} object, not the data envelope;
	// existing clients decode it directly.
	respond.JSON(writer, http.StatusOK, result)
}

// addUser handles POST /addUser.
func (handler *Handler) addUser(writer http.ResponseWriter, request *http.Request) {
	var payload AddUserRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.AddUser(request.Context(), payload)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

// addRole handles POST /addRole.
func (handler *Handler) addRole(writer http.ResponseWriter, request *http.Request) {
	var payload AddRoleRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	role, err := handler.service.AddRole(request.Context(), payload)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, role)
}

// assignRoles handles POST /assignRole.
//
// Response: 200 with a bare true payload once every assignment committed.
// Any validation failure aborts before a single row is written.
func (handler *Handler) assignRoles(writer http.ResponseWriter, request *http.Request) {
	var payload AssignRolesRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	ok, err := handler.service.AssignRoles(request.Context(), payload)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// Bare boolean body, matching the established client contract.
	respond.JSON(writer, http.StatusOK, ok)
}
