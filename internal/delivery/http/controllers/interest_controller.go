package controllers

import (
	"log/slog"
	"net/http"

	"birthdayclub/internal/delivery/http/helpers"
	"birthdayclub/internal/delivery/http/middleware"
	"birthdayclub/internal/domain"
)

type InterestController struct {
	Logger  *slog.Logger
	Service domain.InterestService
}

func NewInterestController(logger *slog.Logger, svc domain.InterestService) *InterestController {
	return &InterestController{
		Logger:  logger,
		Service: svc,
	}
}

// InterestsSuccessResponse is the success envelope for interest lists.
type InterestsSuccessResponse struct {
	Data  []*domain.Interest `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// ReplaceInterestsRequest is the request body for PUT /users/me/interests.
type ReplaceInterestsRequest struct {
	Interests []string `json:"interests"`
}

// ListInterests godoc
// @Summary List interests
// @Tags interests
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.InterestsSuccessResponse "data contains all interests by name"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /interests [get]
func (c *InterestController) ListInterests(w http.ResponseWriter, r *http.Request) {
	items, err := c.Service.List(r.Context())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, items)
}

// ListMyInterests godoc
// @Summary Caller's interests
// @Tags interests
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.InterestsSuccessResponse "data contains the caller's interests"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/me/interests [get]
func (c *InterestController) ListMyInterests(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	items, err := c.Service.ListForUser(r.Context(), userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, items)
}

// ReplaceMyInterests godoc
// @Summary Replace caller's interests
// @Description Replaces the caller's interests with the given names (at most 20). Names are trimmed and deduplicated case-insensitively; unknown names are created. An empty list clears them.
// @Tags interests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ReplaceInterestsRequest true "Interest names"
// @Success 200 {object} controllers.InterestsSuccessResponse "data contains the new interest set"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/me/interests [put]
func (c *InterestController) ReplaceMyInterests(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req ReplaceInterestsRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	items, err := c.Service.ReplaceForUser(r.Context(), userID, req.Interests)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, items)
}
