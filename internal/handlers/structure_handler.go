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

// StructureHandler handles structure-related requests.
type StructureHandler struct {
	structureService services.StructureServicer
	auditService     services.AuditServicer
}

// NewStructureHandler creates a new StructureHandler.
func NewStructureHandler(structureService services.StructureServicer, auditService services.AuditServicer) *StructureHandler {
	return &StructureHandler{structureService: structureService, auditService: auditService}
}

// CreateStructureRequest represents the request payload for creating a structure.
type CreateStructureRequest struct {
	Name              string     `json:"name" binding:"required,min=1,max=200"`
	Description       string     `json:"description" binding:"max=2000"`
	ParentStructureID *string    `json:"parent_structure_id,omitempty" binding:"omitempty,uuid"`
	BaseCurrency      string     `json:"base_currency" binding:"omitempty,iso4217"`
	ManagementFee     float64    `json:"management_fee" binding:"gte=0,lte=100"`
	CarriedInterest   float64    `json:"carried_interest" binding:"gte=0,lte=100"`
	HurdleRate        float64    `json:"hurdle_rate" binding:"gte=0,lte=100"`
	WaterfallType     string     `json:"waterfall_type" binding:"omitempty,waterfall_type"`
	TermYears         int        `json:"term_years" binding:"gte=0"`
	ExtensionYears    int        `json:"extension_years" binding:"gte=0"`
	VintageDate       *time.Time `json:"vintage_date,omitempty"`
	FinalCloseDate    *time.Time `json:"final_close_date,omitempty"`
}

// UpdateStructureRequest represents the request payload for updating a structure.
// Financial totals cannot be changed here; use the financials endpoint.
type UpdateStructureRequest struct {
	Name            *string    `json:"name,omitempty" binding:"omitempty,min=1,max=200"`
	Description     *string    `json:"description,omitempty" binding:"omitempty,max=2000"`
	Status          *string    `json:"status,omitempty" binding:"omitempty,structure_status"`
	CurrentNAV      *float64   `json:"current_nav,omitempty" binding:"omitempty,gte=0"`
	ManagementFee   *float64   `json:"management_fee,omitempty" binding:"omitempty,gte=0,lte=100"`
	CarriedInterest *float64   `json:"carried_interest,omitempty" binding:"omitempty,gte=0,lte=100"`
	HurdleRate      *float64   `json:"hurdle_rate,omitempty" binding:"omitempty,gte=0,lte=100"`
	WaterfallType   *string    `json:"waterfall_type,omitempty" binding:"omitempty,waterfall_type"`
	TermYears       *int       `json:"term_years,omitempty" binding:"omitempty,gte=0"`
	ExtensionYears  *int       `json:"extension_years,omitempty" binding:"omitempty,gte=0"`
	VintageDate     *time.Time `json:"vintage_date,omitempty"`
	FinalCloseDate  *time.Time `json:"final_close_date,omitempty"`
}

// UpdateFinancialsRequest represents the request payload for updating
// rollup totals. At least one field must be supplied.
type UpdateFinancialsRequest struct {
	TotalCalled      *float64 `json:"total_called,omitempty" binding:"omitempty,gte=0"`
	TotalDistributed *float64 `json:"total_distributed,omitempty" binding:"omitempty,gte=0"`
	TotalInvested    *float64 `json:"total_invested,omitempty" binding:"omitempty,gte=0"`
}

// GrantAdminRequest represents the request payload for delegating access.
type GrantAdminRequest struct {
	UserID             string `json:"user_id" binding:"required,uuid"`
	Role               string `json:"role" binding:"required,grant_role"`
	CanEdit            *bool  `json:"can_edit,omitempty"`
	CanDelete          *bool  `json:"can_delete,omitempty"`
	CanManageInvestors *bool  `json:"can_manage_investors,omitempty"`
	CanManageDocuments *bool  `json:"can_manage_documents,omitempty"`
}

// AddInvestorRequest represents the request payload for linking an investor.
type AddInvestorRequest struct {
	UserID           string  `json:"user_id" binding:"required,uuid"`
	CommitmentAmount float64 `json:"commitment_amount" binding:"gte=0"`
	OwnershipPercent float64 `json:"ownership_percent" binding:"gte=0,lte=100"`
}

// CreateStructure handles creating a structure, optionally under a parent.
// @Summary     Create structure
// @Description Create an investment vehicle, optionally nested under a parent
// @Tags        structures
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateStructureRequest true "Structure details"
// @Success     201 {object} models.Structure "Structure created"
// @Failure     400 {object} ErrorResponse "Invalid input or depth exceeded"
// @Failure     403 {object} ErrorResponse "Not the parent's owner"
// @Failure     404 {object} ErrorResponse "Parent not found"
// @Router      /structures [post]
func (h *StructureHandler) CreateStructure(c *gin.Context) {
	caller, err := getCaller(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateStructureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	structure, err := h.structureService.CreateStructure(caller, services.CreateStructureInput{
		Name:              req.Name,
		Description:       req.Description,
		ParentStructureID: req.ParentStructureID,
		BaseCurrency:      req.BaseCurrency,
		ManagementFee:     req.ManagementFee,
		CarriedInterest:   req.CarriedInterest,
		HurdleRate:        req.HurdleRate,
		Waterfall:         models.WaterfallType(req.WaterfallType),
		TermYears:         req.TermYears,
		ExtensionYears:    req.ExtensionYears,
		VintageDate:       req.VintageDate,
		FinalCloseDate:    req.FinalCloseDate,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(caller.ID, "CREATE_STRUCTURE", "structure", structure.ID, c.ClientIP(),
		map[string]interface{}{"name": structure.Name, "hierarchy_level": structure.HierarchyLevel})

	c.JSON(http.StatusCreated, gin.H{"structure": structure})
}

// GetStructure handles retrieving a structure.
// @Summary     Get structure by ID
// @Tags        structures
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Structure ID"
// @Success     200 {object} models.Structure "Structure details"
// @Failure     403 {object} ErrorResponse "Access denied"
// @Failure     404 {object} ErrorResponse "Structure not found"
// @Router      /structures/{id} [get]
func (h *StructureHandler) GetStructure(c *gin.Context) {
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

	structure, err := h.structureService.GetStructure(caller, structureID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"structure": structure})
}

// ListStructures handles listing the caller's top-level structures.
// @Summary     List root structures
// @Tags        structures
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Structure] "Paginated structures"
// @Router      /structures [get]
func (h *StructureHandler) ListStructures(c *gin.Context) {
	caller, err := getCaller(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.structureService.ListRootStructures(caller, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetChildren handles listing the direct children of a structure.
// @Summary     List child structures
// @Tags        structures
// @Produce     json
// @Security    BearerAuth
// @Param       id        path  string true  "Structure ID"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Structure] "Paginated children"
// @Failure     404 {object} ErrorResponse "Structure not found"
// @Router      /structures/{id}/children [get]
func (h *StructureHandler) GetChildren(c *gin.Context) {
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

	result, err := h.structureService.FindChildren(caller, structureID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// UpdateStructure handles patching a structure's declared-updatable fields.
// @Summary     Update structure
// @Tags        structures
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                 true "Structure ID"
// @Param       request body UpdateStructureRequest true "Fields to update"
// @Success     200 {object} models.Structure "Updated structure"
// @Failure     403 {object} ErrorResponse "Access denied"
// @Failure     404 {object} ErrorResponse "Structure not found"
// @Router      /structures/{id} [put]
func (h *StructureHandler) UpdateStructure(c *gin.Context) {
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

	var req UpdateStructureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	input := services.UpdateStructureInput{
		Name:            req.Name,
		Description:     req.Description,
		CurrentNAV:      req.CurrentNAV,
		ManagementFee:   req.ManagementFee,
		CarriedInterest: req.CarriedInterest,
		HurdleRate:      req.HurdleRate,
		TermYears:       req.TermYears,
		ExtensionYears:  req.ExtensionYears,
		VintageDate:     req.VintageDate,
		FinalCloseDate:  req.FinalCloseDate,
	}
	if req.Status != nil {
		status := models.StructureStatus(*req.Status)
		input.Status = &status
	}
	if req.WaterfallType != nil {
		waterfall := models.WaterfallType(*req.WaterfallType)
		input.Waterfall = &waterfall
	}

	structure, err := h.structureService.UpdateStructure(caller, structureID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(caller.ID, "UPDATE_STRUCTURE", "structure", structureID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"structure": structure})
}

// UpdateFinancials handles the sanctioned update path for rollup totals.
// @Summary     Update structure financials
// @Description Persist rollup totals; the single sanctioned mutation path for them
// @Tags        structures
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                  true "Structure ID"
// @Param       request body UpdateFinancialsRequest true "Totals to update (at least one)"
// @Success     200 {object} models.Structure "Updated structure"
// @Failure     400 {object} ErrorResponse "No fields supplied"
// @Failure     403 {object} ErrorResponse "Access denied"
// @Failure     404 {object} ErrorResponse "Structure not found"
// @Router      /structures/{id}/financials [put]
func (h *StructureHandler) UpdateFinancials(c *gin.Context) {
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

	var req UpdateFinancialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	structure, err := h.structureService.UpdateFinancials(caller, structureID, services.UpdateFinancialsInput{
		TotalCalled:      req.TotalCalled,
		TotalDistributed: req.TotalDistributed,
		TotalInvested:    req.TotalInvested,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(caller.ID, "UPDATE_STRUCTURE_FINANCIALS", "structure", structureID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"structure": structure})
}

// DeleteStructure handles soft-deleting a structure.
// @Summary     Delete structure
// @Description Soft-delete a structure; blocked while children exist
// @Tags        structures
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Structure ID"
// @Success     204 "Structure deleted"
// @Failure     403 {object} ErrorResponse "Access denied"
// @Failure     404 {object} ErrorResponse "Structure not found"
// @Failure     409 {object} ErrorResponse "Structure has children"
// @Router      /structures/{id} [delete]
func (h *StructureHandler) DeleteStructure(c *gin.Context) {
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

	if err := h.structureService.DeleteStructure(caller, structureID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(caller.ID, "DELETE_STRUCTURE", "structure", structureID, c.ClientIP(), nil)

	c.Status(http.StatusNoContent)
}

// GrantAdmin handles delegating structure access to a user.
// @Summary     Grant structure admin
// @Description Delegate structure-scoped capabilities to a user
// @Tags        structures
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string            true "Structure ID"
// @Param       request body GrantAdminRequest true "Grant details"
// @Success     201 {object} models.StructureAdmin "Grant created"
// @Failure     403 {object} ErrorResponse "Only the owner or Root may grant"
// @Failure     404 {object} ErrorResponse "Structure or user not found"
// @Failure     409 {object} ErrorResponse "Duplicate grant"
// @Router      /structures/{id}/admins [post]
func (h *StructureHandler) GrantAdmin(c *gin.Context) {
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

	var req GrantAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	input := services.GrantInput{
		UserID: req.UserID,
		Role:   models.GrantRole(req.Role),
	}
	// Flags default per DefaultGrantCapabilities; any explicit flag narrows
	// the whole set from the defaults.
	if req.CanEdit != nil || req.CanDelete != nil || req.CanManageInvestors != nil || req.CanManageDocuments != nil {
		caps := models.DefaultGrantCapabilities
		if req.CanEdit != nil {
			caps.CanEdit = *req.CanEdit
		}
		if req.CanDelete != nil {
			caps.CanDelete = *req.CanDelete
		}
		if req.CanManageInvestors != nil {
			caps.CanManageInvestors = *req.CanManageInvestors
		}
		if req.CanManageDocuments != nil {
			caps.CanManageDocuments = *req.CanManageDocuments
		}
		input.Capabilities = &caps
	}

	grant, err := h.structureService.GrantAdmin(caller, structureID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(caller.ID, "GRANT_STRUCTURE_ADMIN", "structure_admin", grant.ID, c.ClientIP(),
		map[string]interface{}{"structure_id": structureID, "user_id": req.UserID, "role": req.Role})

	c.JSON(http.StatusCreated, gin.H{"grant": grant})
}

// ListAdmins handles listing the grants on a structure.
// @Summary     List structure admins
// @Tags        structures
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Structure ID"
// @Success     200 {array} models.StructureAdmin "Grants"
// @Failure     403 {object} ErrorResponse "Access denied"
// @Failure     404 {object} ErrorResponse "Structure not found"
// @Router      /structures/{id}/admins [get]
func (h *StructureHandler) ListAdmins(c *gin.Context) {
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

	grants, err := h.structureService.ListAdmins(caller, structureID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"admins": grants})
}

// RevokeAdmin handles deleting a grant.
// @Summary     Revoke structure admin
// @Tags        structures
// @Produce     json
// @Security    BearerAuth
// @Param       id     path string true "Structure ID"
// @Param       userId path string true "Grantee user ID"
// @Success     204 "Grant revoked"
// @Failure     403 {object} ErrorResponse "Only the owner or Root may revoke"
// @Failure     404 {object} ErrorResponse "Grant not found"
// @Router      /structures/{id}/admins/{userId} [delete]
func (h *StructureHandler) RevokeAdmin(c *gin.Context) {
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

	userID, err := parsePathID(c, "userId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.structureService.RevokeAdmin(caller, structureID, userID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(caller.ID, "REVOKE_STRUCTURE_ADMIN", "structure_admin", structureID, c.ClientIP(),
		map[string]interface{}{"user_id": userID})

	c.Status(http.StatusNoContent)
}

// AddInvestor handles linking an investor to a structure.
// @Summary     Add investor
// @Description Link an investor to a structure with commitment and ownership
// @Tags        structures
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string             true "Structure ID"
// @Param       request body AddInvestorRequest true "Investor link details"
// @Success     201 {object} models.StructureInvestorLink "Investor linked"
// @Failure     403 {object} ErrorResponse "Access denied"
// @Failure     404 {object} ErrorResponse "Structure or user not found"
// @Failure     409 {object} ErrorResponse "Already an investor"
// @Router      /structures/{id}/investors [post]
func (h *StructureHandler) AddInvestor(c *gin.Context) {
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

	var req AddInvestorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	link, err := h.structureService.AddInvestor(caller, structureID, services.InvestorInput{
		UserID:           req.UserID,
		CommitmentAmount: req.CommitmentAmount,
		OwnershipPercent: req.OwnershipPercent,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(caller.ID, "ADD_STRUCTURE_INVESTOR", "structure_investor", link.ID, c.ClientIP(),
		map[string]interface{}{"structure_id": structureID, "user_id": req.UserID, "commitment": req.CommitmentAmount})

	c.JSON(http.StatusCreated, gin.H{"investor": link})
}

// ListInvestors handles listing a structure's investor links.
// @Summary     List investors
// @Tags        structures
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Structure ID"
// @Success     200 {array} models.StructureInvestorLink "Investor links"
// @Failure     403 {object} ErrorResponse "Access denied"
// @Failure     404 {object} ErrorResponse "Structure not found"
// @Router      /structures/{id}/investors [get]
func (h *StructureHandler) ListInvestors(c *gin.Context) {
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

	links, err := h.structureService.ListInvestors(caller, structureID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"investors": links})
}

// RemoveInvestor handles unlinking an investor from a structure.
// @Summary     Remove investor
// @Tags        structures
// @Produce     json
// @Security    BearerAuth
// @Param       id     path string true "Structure ID"
// @Param       userId path string true "Investor user ID"
// @Success     204 "Investor removed"
// @Failure     403 {object} ErrorResponse "Access denied"
// @Failure     404 {object} ErrorResponse "Investor link not found"
// @Router      /structures/{id}/investors/{userId} [delete]
func (h *StructureHandler) RemoveInvestor(c *gin.Context) {
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

	userID, err := parsePathID(c, "userId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.structureService.RemoveInvestor(caller, structureID, userID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(caller.ID, "REMOVE_STRUCTURE_INVESTOR", "structure_investor", structureID, c.ClientIP(),
		map[string]interface{}{"user_id": userID})

	c.Status(http.StatusNoContent)
}
