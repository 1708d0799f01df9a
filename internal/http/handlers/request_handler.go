package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/audit-backend/internal/dto"
	"github.com/ignatzorin/audit-backend/internal/http/handlers/common"
	"github.com/ignatzorin/audit-backend/internal/models"
	"github.com/ignatzorin/audit-backend/internal/service"
)

// RequestHandler предоставляет HTTP слой жизненного цикла заявок на аудит.
type RequestHandler struct {
	requests *service.RequestService
}

// NewRequestHandler создаёт хэндлер.
func NewRequestHandler(requests *service.RequestService) *RequestHandler {
	return &RequestHandler{requests: requests}
}

// Create POST /requests
func (h *RequestHandler) Create(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.CreateAuditRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	opts, err := models.NewCategoryOptions(req.Category, req.CategoryOptions)
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	created, err := h.requests.CreateRequest(c.Request.Context(), userID, service.CreateRequestInput{
		Category:        req.Category,
		Title:           req.Title,
		AIChatURL:       req.AIChatURL,
		Content:         req.Content,
		Budget:          req.Budget,
		CategoryOptions: opts,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// Get GET /requests/:id
func (h *RequestHandler) Get(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentUserRole(c)

	requestID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	req, delivery, err := h.requests.GetRequest(c.Request.Context(), requestID, userID, role)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAuditRequestResponse(req, delivery))
}

// OpenPool GET /requests/open
func (h *RequestHandler) OpenPool(c *gin.Context) {
	limit, offset := common.GetPagination(c)

	requests, err := h.requests.OpenPool(c.Request.Context(), limit, offset)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, paginated(requests, limit, offset))
}

// MyRequests GET /requests/my
func (h *RequestHandler) MyRequests(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	limit, offset := common.GetPagination(c)

	requests, err := h.requests.MyRequests(c.Request.Context(), userID, limit, offset)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, paginated(requests, limit, offset))
}

// MyAssignments GET /requests/assigned
func (h *RequestHandler) MyAssignments(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	limit, offset := common.GetPagination(c)

	requests, err := h.requests.MyAssignments(c.Request.Context(), userID, limit, offset)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, paginated(requests, limit, offset))
}

// Claim POST /requests/:id/claim
func (h *RequestHandler) Claim(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	requestID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	req, err := h.requests.ClaimRequest(c.Request.Context(), requestID, userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, req)
}

// Deliver POST /requests/:id/deliver
func (h *RequestHandler) Deliver(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	requestID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.DeliverAuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	result, err := h.requests.DeliverAudit(c.Request.Context(), requestID, userID, service.DeliverInput{
		Verdict:  req.Verdict,
		Comment:  req.Comment,
		Revision: req.Revision,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Cancel POST /requests/:id/cancel
func (h *RequestHandler) Cancel(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentUserRole(c)

	requestID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	req, err := h.requests.CancelRequest(c.Request.Context(), requestID, userID, role)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, req)
}

// paginated оборачивает список заявок в стандартный конверт пагинации.
func paginated(requests []models.AuditRequest, limit, offset int) dto.PaginatedRequestsResponse {
	return dto.PaginatedRequestsResponse{
		Data: requests,
		Pagination: dto.Pagination{
			Total:   len(requests),
			Limit:   limit,
			Offset:  offset,
			HasMore: len(requests) == limit,
		},
	}
}
