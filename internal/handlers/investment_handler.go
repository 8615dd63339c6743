package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "altvest/internal/errors"
	"altvest/internal/models"
	"altvest/internal/pagination"
	"altvest/internal/services"
)

// InvestmentHandler handles investment-related requests.
type InvestmentHandler struct {
	investmentService services.InvestmentServicer
	auditService      services.AuditServicer
}

// NewInvestmentHandler creates a new InvestmentHandler.
func NewInvestmentHandler(investmentService services.InvestmentServicer, auditService services.AuditServicer) *InvestmentHandler {
	return &InvestmentHandler{investmentService: investmentService, auditService: auditService}
}

// CreateInvestmentRequest represents the request payload for recording an investment.
type CreateInvestmentRequest struct {
	StructureID    string  `json:"structure_id" binding:"required,uuid"`
	Name           string  `json:"name" binding:"required,min=1,max=200"`
	InvestmentType string  `json:"investment_type" binding:"required,investment_type"`
	EquityInvested float64 `json:"equity_invested" binding:"gte=0"`

	PrincipalProvided float64 `json:"principal_provided" binding:"gte=0"`
	InterestRate      float64 `json:"interest_rate" binding:"gte=0"`

	CurrentValue  float64    `json:"current_value" binding:"gte=0"`
	TotalInvested float64    `json:"total_invested" binding:"gte=0"`
	InvestedDate  *time.Time `json:"invested_date,omitempty"`
}

// UpdateInvestmentRequest represents the request payload for updating an investment.
type UpdateInvestmentRequest struct {
	Name         *string    `json:"name,omitempty" binding:"omitempty,min=1,max=200"`
	InterestRate *float64   `json:"interest_rate,omitempty" binding:"omitempty,gte=0"`
	InvestedDate *time.Time `json:"invested_date,omitempty"`
}

// UpdatePerformanceRequest represents the request payload for updating
// performance metrics. At least one field must be supplied.
type UpdatePerformanceRequest struct {
	IRR           *float64 `json:"irr,omitempty"`
	MOIC          *float64 `json:"moic,omitempty" binding:"omitempty,gte=0"`
	CurrentValue  *float64 `json:"current_value,omitempty" binding:"omitempty,gte=0"`
	TotalInvested *float64 `json:"total_invested,omitempty" binding:"omitempty,gte=0"`
}

// MarkExitedRequest represents the request payload for exiting an investment.
type MarkExitedRequest struct {
	ExitDate        time.Time `json:"exit_date" binding:"required"`
	EquityExitValue *float64  `json:"equity_exit_value,omitempty" binding:"omitempty,gte=0"`
}

// CreateInvestment handles recording a new investment.
// @Summary     Create investment
// @Description Record an equity, debt, or mixed investment under a structure
// @Tags        investments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateInvestmentRequest true "Investment details"
// @Success     201 {object} models.Investment "Investment created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Access denied"
// @Failure     404 {object} ErrorResponse "Structure not found"
// @Router      /investments [post]
func (h *InvestmentHandler) CreateInvestment(c *gin.Context) {
	caller, err := getCaller(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateInvestmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	investment, err := h.investmentService.CreateInvestment(caller, services.CreateInvestmentInput{
		StructureID:       req.StructureID,
		Name:              req.Name,
		Type:              models.InvestmentType(req.InvestmentType),
		EquityInvested:    req.EquityInvested,
		PrincipalProvided: req.PrincipalProvided,
		InterestRate:      req.InterestRate,
		CurrentValue:      req.CurrentValue,
		TotalInvested:     req.TotalInvested,
		InvestedDate:      req.InvestedDate,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(caller.ID, "CREATE_INVESTMENT", "investment", investment.ID, c.ClientIP(),
		map[string]interface{}{"structure_id": req.StructureID, "investment_type": req.InvestmentType})

	c.JSON(http.StatusCreated, gin.H{"investment": investment})
}

// GetInvestment handles retrieving a specific investment.
// @Summary     Get investment by ID
// @Tags        investments
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Investment ID"
// @Success     200 {object} models.Investment "Investment details"
// @Failure     403 {object} ErrorResponse "Access denied"
// @Failure     404 {object} ErrorResponse "Investment not found"
// @Router      /investments/{id} [get]
func (h *InvestmentHandler) GetInvestment(c *gin.Context) {
	caller, err := getCaller(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	investmentID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	investment, err := h.investmentService.GetInvestment(caller, investmentID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"investment": investment})
}

// ListInvestments handles listing a structure's investments.
// @Summary     List structure investments
// @Tags        investments
// @Produce     json
// @Security    BearerAuth
// @Param       id        path  string true  "Structure ID"
// @Param       active    query bool   false "Only active investments"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Investment] "Paginated investments"
// @Failure     403 {object} ErrorResponse "Access denied"
// @Failure     404 {object} ErrorResponse "Structure not found"
// @Router      /structures/{id}/investments [get]
func (h *InvestmentHandler) ListInvestments(c *gin.Context) {
	caller, err := getCaller(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	structureID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var result *pagination.PageResponse[models.Investment]
	if c.Query("active") == "true" {
		result, err = h.investmentService.ListActiveInvestments(caller, structureID, page)
	} else {
		result, err = h.investmentService.ListInvestments(caller, structureID, page)
	}
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// UpdateInvestment handles patching an investment's general fields.
// @Summary     Update investment
// @Tags        investments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                  true "Investment ID"
// @Param       request body UpdateInvestmentRequest true "Fields to update"
// @Success     200 {object} models.Investment "Updated investment"
// @Failure     403 {object} ErrorResponse "Access denied"
// @Failure     404 {object} ErrorResponse "Investment not found"
// @Router      /investments/{id} [put]
func (h *InvestmentHandler) UpdateInvestment(c *gin.Context) {
	caller, err := getCaller(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	investmentID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateInvestmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	investment, err := h.investmentService.UpdateInvestment(caller, investmentID, services.UpdateInvestmentInput{
		Name:         req.Name,
		InterestRate: req.InterestRate,
		InvestedDate: req.InvestedDate,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(caller.ID, "UPDATE_INVESTMENT", "investment", investmentID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"investment": investment})
}

// UpdatePerformance handles patching an investment's performance metrics.
// @Summary     Update investment performance
// @Tags        investments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                   true "Investment ID"
// @Param       request body UpdatePerformanceRequest true "Metrics to update (at least one)"
// @Success     200 {object} models.Investment "Updated investment"
// @Failure     400 {object} ErrorResponse "No fields supplied"
// @Failure     403 {object} ErrorResponse "Access denied"
// @Failure     404 {object} ErrorResponse "Investment not found"
// @Router      /investments/{id}/performance [put]
func (h *InvestmentHandler) UpdatePerformance(c *gin.Context) {
	caller, err := getCaller(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	investmentID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdatePerformanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	investment, err := h.investmentService.UpdatePerformance(caller, investmentID, services.UpdatePerformanceInput{
		IRR:           req.IRR,
		MOIC:          req.MOIC,
		CurrentValue:  req.CurrentValue,
		TotalInvested: req.TotalInvested,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(caller.ID, "UPDATE_INVESTMENT_PERFORMANCE", "investment", investmentID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"investment": investment})
}

// MarkExited handles the one-way Active -> Exited transition.
// @Summary     Mark investment exited
// @Tags        investments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string            true "Investment ID"
// @Param       request body MarkExitedRequest true "Exit details"
// @Success     200 {object} models.Investment "Exited investment"
// @Failure     403 {object} ErrorResponse "Access denied"
// @Failure     404 {object} ErrorResponse "Investment not found"
// @Failure     409 {object} ErrorResponse "Already exited"
// @Router      /investments/{id}/exit [post]
func (h *InvestmentHandler) MarkExited(c *gin.Context) {
	caller, err := getCaller(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	investmentID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req MarkExitedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	investment, err := h.investmentService.MarkExited(caller, investmentID, req.ExitDate, req.EquityExitValue)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(caller.ID, "EXIT_INVESTMENT", "investment", investmentID, c.ClientIP(),
		map[string]interface{}{"exit_date": req.ExitDate})

	c.JSON(http.StatusOK, gin.H{"investment": investment})
}

// DeleteInvestment handles soft-deleting an investment.
// @Summary     Delete investment
// @Tags        investments
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Investment ID"
// @Success     204 "Investment deleted"
// @Failure     403 {object} ErrorResponse "Access denied"
// @Failure     404 {object} ErrorResponse "Investment not found"
// @Router      /investments/{id} [delete]
func (h *InvestmentHandler) DeleteInvestment(c *gin.Context) {
	caller, err := getCaller(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	investmentID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.investmentService.DeleteInvestment(caller, investmentID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(caller.ID, "DELETE_INVESTMENT", "investment", investmentID, c.ClientIP(), nil)

	c.Status(http.StatusNoContent)
}

// GetStructurePortfolio handles aggregating a structure's investments.
// @Summary     Structure portfolio summary
// @Description Aggregate the investments held by a structure
// @Tags        investments
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Structure ID"
// @Success     200 {object} services.StructurePortfolio "Portfolio summary"
// @Failure     403 {object} ErrorResponse "Access denied"
// @Failure     404 {object} ErrorResponse "Structure not found"
// @Router      /structures/{id}/portfolio [get]
func (h *InvestmentHandler) GetStructurePortfolio(c *gin.Context) {
	caller, err := getCaller(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	structureID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.investmentService.StructurePortfolioSummary(caller, structureID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"portfolio": summary})
}
