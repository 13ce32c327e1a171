package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/khighway/storefront-service/internal/database"
	"github.com/khighway/storefront-service/internal/importer"
	"github.com/khighway/storefront-service/internal/pricing"
)

// maxImportSize caps uploaded spreadsheet size at 10 MiB
const maxImportSize = 10 << 20

// CampaignRequest is the create/update body for a campaign
type CampaignRequest struct {
	Name       string    `json:"name" binding:"required"`
	Kind       string    `json:"kind" binding:"required,oneof=percentage fixed"`
	Value      float64   `json:"value" binding:"min=0"`
	Status     string    `json:"status" binding:"omitempty,oneof=active inactive"`
	StartTime  time.Time `json:"startTime" binding:"required"`
	EndTime    time.Time `json:"endTime" binding:"required"`
	ProductIDs []string  `json:"productIds" binding:"required,min=1"`
}

// CampaignResponse is the API shape of a campaign
type CampaignResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Kind       string    `json:"kind"`
	Value      float64   `json:"value"`
	Status     string    `json:"status"`
	StartTime  time.Time `json:"startTime"`
	EndTime    time.Time `json:"endTime"`
	ProductIDs []string  `json:"productIds"`
}

// ListCampaignsResponse is a paginated campaign listing
type ListCampaignsResponse struct {
	Campaigns []CampaignResponse `json:"campaigns"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
}

// ImportCampaignsResponse reports the outcome of a spreadsheet import
type ImportCampaignsResponse struct {
	TotalRows int                 `json:"totalRows"`
	Imported  int                 `json:"imported"`
	Errors    []importer.RowError `json:"errors"`
}

func toCampaignResponse(c *pricing.Campaign) CampaignResponse {
	return CampaignResponse{
		ID:         c.ID,
		Name:       c.Name,
		Kind:       c.Kind.String(),
		Value:      c.Value,
		Status:     string(c.Status),
		StartTime:  c.StartTime,
		EndTime:    c.EndTime,
		ProductIDs: c.ProductIDs,
	}
}

func (r *CampaignRequest) toCampaign(id string) (*pricing.Campaign, error) {
	kind, err := pricing.ParseDiscountKind(r.Kind)
	if err != nil {
		return nil, err
	}
	status := pricing.StatusActive
	if r.Status != "" {
		status = pricing.CampaignStatus(r.Status)
	}
	c := &pricing.Campaign{
		ID:         id,
		Name:       r.Name,
		Kind:       kind,
		Value:      r.Value,
		Status:     status,
		StartTime:  r.StartTime,
		EndTime:    r.EndTime,
		ProductIDs: r.ProductIDs,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// ListCampaignsRequest represents pagination query parameters
type ListCampaignsRequest struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=200"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

// ListCampaigns returns a paginated list of campaigns
// @Summary List campaigns
// @Description Returns campaigns ordered by start time, newest first
// @Tags campaigns
// @Produce json
// @Param limit query int false "Number of items to return" default(50) minimum(1) maximum(200)
// @Param offset query int false "Number of items to skip" default(0) minimum(0)
// @Success 200 {object} ListCampaignsResponse
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /internal/campaigns [get]
func ListCampaigns(c *gin.Context) {
	var req ListCampaignsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Limit == 0 {
		req.Limit = 50
	}

	campaigns, err := database.ListCampaigns(c.Request.Context(), req.Limit, req.Offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list campaigns"})
		return
	}

	out := make([]CampaignResponse, 0, len(campaigns))
	for i := range campaigns {
		out = append(out, toCampaignResponse(&campaigns[i]))
	}
	c.JSON(http.StatusOK, ListCampaignsResponse{
		Campaigns: out,
		Limit:     req.Limit,
		Offset:    req.Offset,
	})
}

// GetCampaign returns a single campaign
// @Summary Get campaign
// @Tags campaigns
// @Produce json
// @Param campaignId path string true "Campaign ID"
// @Success 200 {object} CampaignResponse
// @Failure 404 {object} map[string]string "Campaign not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /internal/campaigns/{campaignId} [get]
func GetCampaign(c *gin.Context) {
	campaign, err := database.GetCampaign(c.Request.Context(), c.Param("campaignId"))
	if err != nil {
		if database.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch campaign"})
		return
	}
	c.JSON(http.StatusOK, toCampaignResponse(campaign))
}

// CreateCampaign creates a new campaign
// @Summary Create campaign
// @Description Creates a campaign and invalidates the campaign cache so the discount takes effect immediately
// @Tags campaigns
// @Accept json
// @Produce json
// @Param campaign body CampaignRequest true "Campaign"
// @Success 201 {object} CampaignResponse
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /internal/campaigns [post]
func CreateCampaign(c *gin.Context) {
	var req CampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	campaign, err := req.toCampaign("")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := database.CreateCampaign(c.Request.Context(), campaign); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create campaign"})
		return
	}
	campaignCache.Invalidate()

	c.JSON(http.StatusCreated, toCampaignResponse(campaign))
}

// UpdateCampaign replaces a campaign's fields
// @Summary Update campaign
// @Description Overwrites the campaign and invalidates the campaign cache
// @Tags campaigns
// @Accept json
// @Produce json
// @Param campaignId path string true "Campaign ID"
// @Param campaign body CampaignRequest true "Campaign"
// @Success 200 {object} CampaignResponse
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 404 {object} map[string]string "Campaign not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /internal/campaigns/{campaignId} [put]
func UpdateCampaign(c *gin.Context) {
	var req CampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	campaign, err := req.toCampaign(c.Param("campaignId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := database.UpdateCampaign(c.Request.Context(), campaign); err != nil {
		if database.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update campaign"})
		return
	}
	campaignCache.Invalidate()

	c.JSON(http.StatusOK, toCampaignResponse(campaign))
}

// DeleteCampaign removes a campaign
// @Summary Delete campaign
// @Description Deletes the campaign and invalidates the campaign cache
// @Tags campaigns
// @Produce json
// @Param campaignId path string true "Campaign ID"
// @Success 204 "No content"
// @Failure 404 {object} map[string]string "Campaign not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /internal/campaigns/{campaignId} [delete]
func DeleteCampaign(c *gin.Context) {
	if err := database.DeleteCampaign(c.Request.Context(), c.Param("campaignId")); err != nil {
		if database.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete campaign"})
		return
	}
	campaignCache.Invalidate()

	c.Status(http.StatusNoContent)
}

// ImportCampaigns bulk-imports campaigns from a CSV or XLSX upload
// @Summary Import campaigns
// @Description Parses an uploaded spreadsheet and upserts every valid row. Rejected rows are reported, they do not abort the import.
// @Tags campaigns
// @Accept mpfd
// @Produce json
// @Param file formData file true "CSV or XLSX file"
// @Success 200 {object} ImportCampaignsResponse
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /internal/campaigns/import [post]
func ImportCampaigns(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if fileHeader.Size > maxImportSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open upload"})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxImportSize))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upload"})
		return
	}

	result, err := importer.Parse(fileHeader.Filename, content)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	imported := 0
	if len(result.Campaigns) > 0 {
		imported, err = database.BulkUpsertCampaigns(c.Request.Context(), result.Campaigns)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store campaigns"})
			return
		}
		campaignCache.Invalidate()
	}

	log.Info().
		Str("filename", fileHeader.Filename).
		Int("total", result.TotalRows).
		Int("imported", imported).
		Int("rejected", len(result.Errors)).
		Msg("Campaign import finished")

	c.JSON(http.StatusOK, ImportCampaignsResponse{
		TotalRows: result.TotalRows,
		Imported:  imported,
		Errors:    result.Errors,
	})
}
