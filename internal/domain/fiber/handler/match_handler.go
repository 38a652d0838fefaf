package handler

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/talentbridge/profile-matcher/internal/matching"
	"github.com/talentbridge/profile-matcher/internal/middleware"
	"github.com/talentbridge/profile-matcher/internal/repository"
	"github.com/talentbridge/profile-matcher/internal/response"
	"github.com/talentbridge/profile-matcher/internal/usecase"
	"github.com/talentbridge/profile-matcher/internal/util"
)

type MatchHandler struct {
	uc *usecase.MatchUsecase
}

func NewMatchHandler(uc *usecase.MatchUsecase) *MatchHandler {
	return &MatchHandler{uc: uc}
}

func (h *MatchHandler) RegisterRoutes(app *fiber.App) {
	app.Post("/match/jd-to-resumes", middleware.RateLimiter(10, 1*time.Minute), h.MatchJDToProfiles)
	app.Post("/match/resume-to-jds", middleware.RateLimiter(10, 1*time.Minute), h.MatchResumeToJDs)
	app.Post("/match/one-to-one", h.MatchOneToOne)
	app.Get("/match/results/:jd_id", h.MatchResults)
	app.Get("/profiles/search", h.SearchProfiles)
	app.Get("/tracker/agent-health", h.AgentHealth)
	app.Post("/embeddings/refresh", h.RefreshEmbeddings)
}

type matchRequest struct {
	JDID      string `json:"jd_id"`
	ProfileID string `json:"profile_id"`
}

func (h *MatchHandler) MatchJDToProfiles(c *fiber.Ctx) error {
	var req matchRequest
	if err := c.BodyParser(&req); err != nil || req.JDID == "" {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "jd_id is required",
		}, err)
	}

	result, err := h.uc.MatchJDToProfiles(c.Context(), req.JDID)
	if err != nil {
		if errors.Is(err, usecase.ErrAlreadyMatched) {
			return util.SuccessResponse(c, util.SuccessResponseFormat{
				Message: "JD already matched",
				Data:    result,
			})
		}
		return h.matchError(c, err, "failed to match jd to profiles")
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Match run completed",
		Data:    result,
	})
}

func (h *MatchHandler) MatchResumeToJDs(c *fiber.Ctx) error {
	var req matchRequest
	if err := c.BodyParser(&req); err != nil || req.ProfileID == "" {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "profile_id is required",
		}, err)
	}

	result, err := h.uc.MatchResumeToJDs(c.Context(), req.ProfileID)
	if err != nil {
		return h.matchError(c, err, "failed to match resume to jds")
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Match run completed",
		Data:    result,
	})
}

func (h *MatchHandler) MatchOneToOne(c *fiber.Ctx) error {
	var req matchRequest
	if err := c.BodyParser(&req); err != nil || req.JDID == "" || req.ProfileID == "" {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "jd_id and profile_id are required",
		}, err)
	}

	result, err := h.uc.MatchOneToOne(c.Context(), req.JDID, req.ProfileID)
	if err != nil {
		return h.matchError(c, err, "failed to match pair")
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Match completed",
		Data:    result,
	})
}

// matchError maps core failure classes onto HTTP codes: unreadable
// documents are the caller's problem, commit failures are ours.
func (h *MatchHandler) matchError(c *fiber.Ctx, err error, message string) error {
	code := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, matching.ErrTextUnreadable), errors.Is(err, matching.ErrTextTooShort):
		code = fiber.StatusUnprocessableEntity
	case errors.Is(err, repository.ErrCommitFailed):
		code = fiber.StatusInternalServerError
		message = "match results could not be committed"
	}
	return util.ErrorResponse(c, util.ErrorResponseFormat{
		Code:    code,
		Message: message,
	}, err)
}

func (h *MatchHandler) MatchResults(c *fiber.Ctx) error {
	jdID := c.Params("jd_id")
	if jdID == "" {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "jd_id is required",
		})
	}

	results, err := h.uc.MatchResults(jdID)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to load match results",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get match results",
		Data:    results,
	})
}

func (h *MatchHandler) SearchProfiles(c *fiber.Ctx) error {
	filter := repository.ProfileFilter{
		EmpID:    c.Query("emp_id"),
		Name:     c.Query("name"),
		Vertical: c.Query("vertical"),
		MinExp:   c.QueryFloat("min_exp"),
		MaxExp:   c.QueryFloat("max_exp"),
	}
	if skills := c.Query("skills"); skills != "" {
		filter.Skills = strings.Split(skills, ",")
	}
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("page_size", 20)

	profiles, total, err := h.uc.SearchProfiles(filter, page, pageSize)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to search profiles",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message:    "Success search profiles",
		Data:       profiles,
		Pagination: response.NewPagination(page, pageSize, total),
	})
}

func (h *MatchHandler) AgentHealth(c *fiber.Ctx) error {
	health, err := h.uc.AgentHealth()
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to load agent health",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get agent health",
		Data:    health,
	})
}

func (h *MatchHandler) RefreshEmbeddings(c *fiber.Ctx) error {
	updated, err := h.uc.RefreshEmbeddings(c.Context())
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to refresh embeddings",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success refresh embeddings",
		Data:    fiber.Map{"updated": updated},
	})
}
