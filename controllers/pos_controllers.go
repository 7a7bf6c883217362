package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/opskitchen/resto-ops/models"
	"github.com/opskitchen/resto-ops/utils"
)

type POSController struct {
	DB *gorm.DB
}

func NewPOSController(db *gorm.DB) *POSController {
	return &POSController{DB: db}
}

var validPOSEvents = map[string]bool{
	models.POSCheckOpened:  true,
	models.POSCheckPrinted: true,
	models.POSCheckPaid:    true,
}

// IngestEvent records a point-of-sale signal for a table. The suggestion
// engine reads these; nothing here mutates table state.
func (pc *POSController) IngestEvent(c *gin.Context) {
	var req struct {
		TableID   uint   `json:"table_id" binding:"required"`
		EventType string `json:"event_type" binding:"required"`
		Provider  string `json:"provider"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidation(c, err)
		return
	}

	if !validPOSEvents[req.EventType] {
		utils.RespondError(c, utils.ErrValidation("unknown POS event type "+req.EventType))
		return
	}

	var table models.Table
	if err := pc.DB.First(&table, req.TableID).Error; err != nil {
		utils.RespondError(c, utils.ErrNotFound("table", req.TableID))
		return
	}

	event := models.POSEvent{
		TableID:   req.TableID,
		EventType: req.EventType,
		Provider:  req.Provider,
	}
	if err := pc.DB.Create(&event).Error; err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "POS event recorded", event)
}
