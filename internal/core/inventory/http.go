package inventory

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/allsoft/pims/internal/platform/constants"
	"github.com/allsoft/pims/internal/platform/middleware"
	requestutil "github.com/allsoft/pims/internal/platform/request"
	"github.com/allsoft/pims/internal/platform/respond"
	"github.com/allsoft/pims/internal/platform/validate"
)

// defaultLowThreshold is used when /low is called without a threshold.
const defaultLowThreshold = 10

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Use(middleware.RequireRole(constants.RoleAdmin))

	router.Post("/adjust", handler.adjust)
	router.Post("/audit", handler.audit)
	router.Get("/low", handler.lowInventory)
	router.Get("/product/{productID}", handler.forProduct)

	return router
}

func (handler *Handler) adjust(writer http.ResponseWriter, request *http.Request) {
	var payload AdjustRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	record, err := handler.service.Adjust(request.Context(), payload, claims.UserName)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, record)
}

func (handler *Handler) audit(writer http.ResponseWriter, request *http.Request) {
	var payload AuditRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	record, err := handler.service.Audit(request.Context(), payload, claims.UserName)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, record)
}

func (handler *Handler) lowInventory(writer http.ResponseWriter, request *http.Request) {
	threshold := int64(defaultLowThreshold)
	if raw := request.URL.Query().Get("threshold"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			respond.Error(writer, request, validate.RequiredError("threshold", "Must be a non-negative integer"))
			return
		}
		threshold = parsed
	}

	records, err := handler.service.LowInventory(request.Context(), threshold)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, records)
}

func (handler *Handler) forProduct(writer http.ResponseWriter, request *http.Request) {
	productID, err := requestutil.IntParam(request, "productID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	records, err := handler.service.ForProduct(request.Context(), productID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, records)
}
