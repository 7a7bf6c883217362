package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/opskitchen/resto-ops/middlewares"
	"github.com/opskitchen/resto-ops/models"
	"github.com/opskitchen/resto-ops/services"
	"github.com/opskitchen/resto-ops/utils"
)

type TableController struct {
	DB           *gorm.DB
	StateMachine *services.TableStateMachine
}

func NewTableController(db *gorm.DB, sm *services.TableStateMachine) *TableController {
	return &TableController{DB: db, StateMachine: sm}
}

func (tc *TableController) CreateTable(c *gin.Context) {
	var req struct {
		TableNumber string `json:"table_number" binding:"required"`
		Capacity    int    `json:"capacity" binding:"required,min=1"`
		Zone        string `json:"zone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidation(c, err)
		return
	}

	table := models.Table{
		TableNumber:  req.TableNumber,
		Capacity:     req.Capacity,
		Zone:         req.Zone,
		CurrentState: models.TableAvailable,
	}
	if err := tc.DB.Create(&table).Error; err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.InfoLogger.Printf("table created: %s (capacity %d)", table.TableNumber, table.Capacity)
	utils.RespondJSON(c, http.StatusCreated, "Table created", table)
}

func (tc *TableController) GetAllTables(c *gin.Context) {
	tx := tc.DB
	if state := c.Query("state"); state != "" {
		tx = tx.Where("current_state = ?", state)
	}

	var tables []models.Table
	if err := tx.Order("table_number").Find(&tables).Error; err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

func (tc *TableController) GetTableByID(c *gin.Context) {
	id, err := parseID(c, "table_id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var table models.Table
	if err := tc.DB.First(&table, id).Error; err != nil {
		utils.RespondError(c, utils.ErrNotFound("table", id))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}

// UpdateTableState applies a lifecycle transition through the state machine.
func (tc *TableController) UpdateTableState(c *gin.Context) {
	id, err := parseID(c, "table_id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var req struct {
		State         string `json:"state" binding:"required"`
		ReservationID *uint  `json:"reservation_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidation(c, err)
		return
	}

	actorID, role := middlewares.ActorFromContext(c)

	table, err := tc.StateMachine.Apply(id, req.State, actorID, role, models.SourceManual, req.ReservationID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Table state updated", table)
}

// GetTableHistory returns the table's state events, newest first.
func (tc *TableController) GetTableHistory(c *gin.Context) {
	id, err := parseID(c, "table_id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	history, err := tc.StateMachine.History(id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table state history", history)
}

func parseID(c *gin.Context, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil {
		return 0, utils.ErrValidation("invalid " + param)
	}
	return uint(id), nil
}
