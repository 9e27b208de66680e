package category

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/allsoft/pims/internal/platform/constants"
	"github.com/allsoft/pims/internal/platform/middleware"
	requestutil "github.com/allsoft/pims/internal/platform/request"
	"github.com/allsoft/pims/internal/platform/respond"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Group(func(router chi.Router) {
		router.Use(middleware.RequireRole(constants.RoleAdmin, constants.RoleUser))

		router.Get("/", handler.list)
		router.Get("/{id}", handler.get)
	})

	router.Group(func(router chi.Router) {
		router.Use(middleware.RequireRole(constants.RoleAdmin))

		router.Post("/", handler.create)
	})

	return router
}

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	categories, err := handler.service.List(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, categories)
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	category, err := handler.service.Get(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, category)
}

func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var payload CreateRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	category, err := handler.service.Create(request.Context(), payload)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, category)
}
