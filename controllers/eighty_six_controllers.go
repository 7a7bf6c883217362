package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/opskitchen/resto-ops/middlewares"
	"github.com/opskitchen/resto-ops/services"
	"github.com/opskitchen/resto-ops/utils"
)

type EightySixController struct {
	Engine *services.EightySixEngine
}

func NewEightySixController(engine *services.EightySixEngine) *EightySixController {
	return &EightySixController{Engine: engine}
}

// Scan triggers a detection pass and returns the suggestions it created.
func (ec *EightySixController) Scan(c *gin.Context) {
	suggestions, err := ec.Engine.ScanForTriggers()
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Scan complete", gin.H{
		"suggestions": suggestions,
		"count":       len(suggestions),
	})
}

func (ec *EightySixController) Pending(c *gin.Context) {
	suggestions, err := ec.Engine.Pending()
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Pending 86 suggestions", suggestions)
}

func (ec *EightySixController) Confirm(c *gin.Context) {
	id, err := parseID(c, "suggestion_id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	actorID, role := middlewares.ActorFromContext(c)
	event, err := ec.Engine.Confirm(id, actorID, role)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "86 event created", event)
}

func (ec *EightySixController) Reject(c *gin.Context) {
	id, err := parseID(c, "suggestion_id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	actorID, _ := middlewares.ActorFromContext(c)
	if err := ec.Engine.Reject(id, actorID); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "86 suggestion rejected", nil)
}

func (ec *EightySixController) Resolve(c *gin.Context) {
	id, err := parseID(c, "event_id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	actorID, role := middlewares.ActorFromContext(c)
	event, err := ec.Engine.Resolve(id, actorID, role)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "86 event resolved", event)
}

// CanOrder is the read-only availability guard for order placement.
func (ec *EightySixController) CanOrder(c *gin.Context) {
	id, err := parseID(c, "menu_id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	ok, reason, err := ec.Engine.CanOrder(id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Availability check", gin.H{
		"can_order": ok,
		"reason":    reason,
	})
}
