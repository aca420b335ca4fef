package handler

import (
	"context"
	"net/http"
	"strconv"

	"leadflow_backend/internal/leads/assignment"
	"leadflow_backend/internal/leads/dashboard"
	"leadflow_backend/internal/leads/intake"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/review"
	"leadflow_backend/internal/leads/transport"
	"leadflow_backend/internal/scheduler"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/httpkit"
	"leadflow_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Services groups what the handler calls into.
type Services struct {
	Intake     *intake.Service
	Assignment *assignment.Service
	Dashboard  *dashboard.Service
	Review     *review.Service
	Leads      repository.LeadReader
	// Queue is nil when queued imports are not configured.
	Queue scheduler.ImportQueue
}

type Handler struct {
	svc         Services
	val         *validator.Validator
	importLimit gin.HandlerFunc
}

// New creates the handler. importLimit guards the import endpoint and may be nil.
func New(svc Services, val *validator.Validator, importLimit gin.HandlerFunc) *Handler {
	if importLimit == nil {
		importLimit = func(c *gin.Context) { c.Next() }
	}
	return &Handler{svc: svc, val: val, importLimit: importLimit}
}

// RegisterRoutes mounts every lead route on an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	manager := httpkit.RequireRole(httpkit.RoleManager)

	leads := rg.Group("/leads")
	leads.GET("", h.List)
	leads.POST("", h.Create)
	leads.GET("/dashboard", h.Dashboard)
	leads.POST("/import", manager, h.importLimit, h.Import)
	leads.GET("/pool", manager, h.Pool)
	leads.GET("/pool/filters", manager, h.PoolFilters)

	assign := rg.Group("/assignment", manager)
	assign.GET("/availability", h.Availability)
	assign.POST("/availability/toggle", h.ToggleAvailability)
	assign.DELETE("/availability", h.ResetAvailability)
	assign.POST("/distribute", h.Distribute)

	team := rg.Group("/team", manager)
	team.PATCH("/telecallers/:id/paused", h.SetTelecallerPaused)

	dups := rg.Group("/duplicates", manager)
	dups.GET("", h.ListDuplicates)
	dups.POST("/:id/ignore", h.IgnoreDuplicate)
	dups.POST("/:id/merge", h.MergeDuplicate)
	dups.POST("/:id/promote", h.PromoteDuplicate)
}

func (h *Handler) List(c *gin.Context) {
	scope, ok := httpkit.MustGetScope(c)
	if !ok {
		return
	}

	var assignedTo *uuid.UUID
	if !scope.IsManager() {
		assignedTo = &scope.CallerID
	}

	leads, err := h.svc.Leads.ListLeads(c.Request.Context(), scope.ManagerID, assignedTo)
	if err != nil {
		httpkit.HandleError(c, apperr.Wrap(apperr.KindInternal, "could not list leads", err))
		return
	}

	httpkit.OK(c, transport.LeadListResponse{Items: toLeadResponses(leads), Total: len(leads)})
}

// Create runs the manual form through the ingest pipeline as a batch of one.
// A manager picks the owner; a telecaller's lead is always their own.
func (h *Handler) Create(c *gin.Context) {
	scope, ok := httpkit.MustGetScope(c)
	if !ok {
		return
	}

	var req transport.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	owner := scope.CallerID
	if scope.IsManager() {
		if req.AssignedTo == nil {
			httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, "assignedTo is required")
			return
		}
		if _, err := h.svc.Assignment.Member(c.Request.Context(), scope.ManagerID, *req.AssignedTo); httpkit.HandleError(c, err) {
			return
		}
		owner = *req.AssignedTo
	}

	report, err := h.svc.Intake.Submit(c.Request.Context(), scope.ManagerID, req.Record(owner.String()), req.NotesText())
	if httpkit.HandleError(c, err) {
		return
	}

	status := http.StatusOK
	if report.Inserted > 0 {
		status = http.StatusCreated
	}
	httpkit.JSON(c, status, toImportResponse(report))
}

func (h *Handler) Import(c *gin.Context) {
	scope, ok := httpkit.MustGetScope(c)
	if !ok {
		return
	}

	var req transport.ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	async, _ := strconv.ParseBool(c.DefaultQuery("async", "false"))
	if async {
		if h.svc.Queue == nil {
			httpkit.HandleError(c, apperr.Unsupported("queued import is not configured"))
			return
		}
		taskID, err := h.svc.Queue.EnqueueLeadImport(c.Request.Context(), scheduler.LeadImportPayload{
			ManagerID: scope.ManagerID.String(),
			ActorID:   scope.CallerID.String(),
			Rows:      req.Records(),
		})
		if err != nil {
			httpkit.HandleError(c, apperr.Wrap(apperr.KindInternal, "could not queue import", err))
			return
		}
		httpkit.JSON(c, http.StatusAccepted, transport.ImportQueuedResponse{TaskID: taskID, Rows: len(req.Rows)})
		return
	}

	report, err := h.svc.Intake.Ingest(c.Request.Context(), scope.ManagerID, req.Records())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, toImportResponse(report))
}

func (h *Handler) Pool(c *gin.Context) {
	scope, ok := httpkit.MustGetScope(c)
	if !ok {
		return
	}

	var query transport.PoolQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	leads, err := h.svc.Leads.ListUnassigned(c.Request.Context(), scope.ManagerID, repository.PoolFilter{
		City:   optionalString(query.City),
		Source: optionalString(query.Source),
		Status: optionalString(query.Status),
	})
	if err != nil {
		httpkit.HandleError(c, apperr.Wrap(apperr.KindInternal, "could not list the lead pool", err))
		return
	}

	httpkit.OK(c, transport.LeadListResponse{Items: toLeadResponses(leads), Total: len(leads)})
}

func (h *Handler) PoolFilters(c *gin.Context) {
	scope, ok := httpkit.MustGetScope(c)
	if !ok {
		return
	}

	opts, err := h.svc.Leads.PoolFilterOptions(c.Request.Context(), scope.ManagerID)
	if err != nil {
		httpkit.HandleError(c, apperr.Wrap(apperr.KindInternal, "could not load pool filters", err))
		return
	}

	httpkit.OK(c, transport.PoolFiltersResponse{Cities: opts.Cities, Sources: opts.Sources, Statuses: opts.Statuses})
}

func (h *Handler) Dashboard(c *gin.Context) {
	scope, ok := httpkit.MustGetScope(c)
	if !ok {
		return
	}

	var (
		summary dashboard.Summary
		err     error
	)
	if scope.IsManager() {
		summary, err = h.svc.Dashboard.ForManager(c.Request.Context(), scope.ManagerID)
	} else {
		summary, err = h.svc.Dashboard.ForTelecaller(c.Request.Context(), scope.ManagerID, scope.CallerID)
	}
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, toDashboardResponse(summary, scope.IsManager()))
}

func (h *Handler) Availability(c *gin.Context) {
	scope, ok := httpkit.MustGetScope(c)
	if !ok {
		return
	}

	list, err := h.svc.Assignment.Availability(c.Request.Context(), scope.ManagerID, scope.CallerID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, toAvailabilityResponse(list))
}

func (h *Handler) ToggleAvailability(c *gin.Context) {
	scope, ok := httpkit.MustGetScope(c)
	if !ok {
		return
	}

	var req transport.ToggleAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	list, err := h.svc.Assignment.Toggle(c.Request.Context(), scope.ManagerID, scope.CallerID, req.TelecallerID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, toAvailabilityResponse(list))
}

func (h *Handler) ResetAvailability(c *gin.Context) {
	scope, ok := httpkit.MustGetScope(c)
	if !ok {
		return
	}

	if err := h.svc.Assignment.Reset(c.Request.Context(), scope.ManagerID, scope.CallerID); httpkit.HandleError(c, err) {
		return
	}

	c.Status(http.StatusNoContent)
}

// SetTelecallerPaused persists a pause that outlives any availability session.
func (h *Handler) SetTelecallerPaused(c *gin.Context) {
	scope, ok := httpkit.MustGetScope(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.SetPausedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	if err := h.svc.Assignment.SetPaused(c.Request.Context(), scope.ManagerID, id, *req.Paused); httpkit.HandleError(c, err) {
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) Distribute(c *gin.Context) {
	scope, ok := httpkit.MustGetScope(c)
	if !ok {
		return
	}

	var req transport.DistributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Assignment.Distribute(c.Request.Context(), assignment.DistributeInput{
		ManagerID:     scope.ManagerID,
		CallerID:      scope.CallerID,
		LeadIDs:       req.LeadIDs,
		TelecallerIDs: req.TelecallerIDs,
		Policy:        req.Policy,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, toDistributeResponse(result))
}

func (h *Handler) ListDuplicates(c *gin.Context) {
	scope, ok := httpkit.MustGetScope(c)
	if !ok {
		return
	}

	groups, err := h.svc.Review.List(c.Request.Context(), scope.ManagerID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, toDuplicateGroups(groups))
}

func (h *Handler) IgnoreDuplicate(c *gin.Context) {
	h.discardDuplicate(c, h.svc.Review.Ignore)
}

func (h *Handler) MergeDuplicate(c *gin.Context) {
	h.discardDuplicate(c, h.svc.Review.Merge)
}

func (h *Handler) discardDuplicate(c *gin.Context, action func(ctx context.Context, managerID, actorID, duplicateID uuid.UUID) error) {
	scope, ok := httpkit.MustGetScope(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	if err := action(c.Request.Context(), scope.ManagerID, scope.CallerID, id); httpkit.HandleError(c, err) {
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) PromoteDuplicate(c *gin.Context) {
	scope, ok := httpkit.MustGetScope(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.PromoteDuplicateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Review.Promote(c.Request.Context(), scope.ManagerID, scope.CallerID, id, req.TelecallerID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.PromoteResponse{
		Lead:              toLeadResponse(result.Lead),
		DuplicateRetained: result.DeleteErr != nil,
	})
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
