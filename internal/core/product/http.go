package product

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/allsoft/pims/internal/platform/constants"
	"github.com/allsoft/pims/internal/platform/middleware"
	requestutil "github.com/allsoft/pims/internal/platform/request"
	"github.com/allsoft/pims/internal/platform/respond"
	"github.com/allsoft/pims/pkg/pagination"
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
		router.Get("/by-category/{categoryID}", handler.filterByCategory)
	})

	router.Group(func(router chi.Router) {
		router.Use(middleware.RequireRole(constants.RoleAdmin))

		router.Post("/", handler.create)
		router.Put("/{id}", handler.update)
		router.Post("/adjust-prices", handler.adjustPrices)
	})

	return router
}

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	products, meta, err := handler.service.ListAll(request.Context(), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, products, meta)
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	product, err := handler.service.Get(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, product)
}

func (handler *Handler) filterByCategory(writer http.ResponseWriter, request *http.Request) {
	categoryID, err := requestutil.IntParam(request, "categoryID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	params := pagination.FromRequest(request)

	products, meta, err := handler.service.FilterByCategory(request.Context(), categoryID, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, products, meta)
}

func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var payload CreateRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	product, err := handler.service.Create(request.Context(), payload)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, product)
}

func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var payload UpdateRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	product, err := handler.service.Update(request.Context(), id, payload)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, product)
}

func (handler *Handler) adjustPrices(writer http.ResponseWriter, request *http.Request) {
	var payload AdjustPricesRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated, err := handler.service.AdjustPrices(request.Context(), payload)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, map[string]int64{"updated": updated})
}
