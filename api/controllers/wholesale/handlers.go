package wholesale

import (
	"net/http"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	wholesalesvc "github.com/angelmondragon/storefront-backend/internal/wholesale"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// InquiryCreate records a bulk-order request from the storefront.
func InquiryCreate(svc wholesalesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wholesale service unavailable"))
			return
		}

		var payload createRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := payload.toInput()
		input.Actor = middleware.ActorFromContext(r.Context())
		inquiry, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newInquiryResponse(inquiry))
	}
}

func AdminInquiryList(svc wholesalesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wholesale service unavailable"))
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := validators.ParseQueryEnum(r, "status", enums.ParseWholesaleStatus, enums.WholesaleStatuses())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters := wholesalesvc.ListFilters{Status: status}

		list, err := svc.List(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := inquiryListResponse{
			Inquiries:  make([]inquiryResponse, 0, len(list.Inquiries)),
			NextCursor: list.NextCursor,
		}
		for i := range list.Inquiries {
			out.Inquiries = append(out.Inquiries, newInquiryResponse(&list.Inquiries[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// AdminInquiryStatus moves an inquiry through the sales pipeline.
func AdminInquiryStatus(svc wholesalesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wholesale service unavailable"))
			return
		}

		inquiryID, err := validators.ParseUUIDParam(r, "inquiryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload statusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		inquiry, err := svc.UpdateStatus(r.Context(), wholesalesvc.StatusInput{
			InquiryID: inquiryID,
			Status:    payload.Status,
			Actor:     middleware.ActorFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newInquiryResponse(inquiry))
	}
}
