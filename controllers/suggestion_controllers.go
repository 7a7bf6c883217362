package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/opskitchen/resto-ops/middlewares"
	"github.com/opskitchen/resto-ops/models"
	"github.com/opskitchen/resto-ops/services"
	"github.com/opskitchen/resto-ops/utils"
)

type SuggestionController struct {
	Engine       *services.SuggestionEngine
	StateMachine *services.TableStateMachine
}

func NewSuggestionController(engine *services.SuggestionEngine, sm *services.TableStateMachine) *SuggestionController {
	return &SuggestionController{Engine: engine, StateMachine: sm}
}

func (sc *SuggestionController) Generate(c *gin.Context) {
	id, err := parseID(c, "table_id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	suggestion, err := sc.Engine.Generate(id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if suggestion == nil {
		utils.RespondJSON(c, http.StatusOK, "No suggestion produced", nil)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Suggestion generated", suggestion)
}

func (sc *SuggestionController) Pending(c *gin.Context) {
	suggestions, err := sc.Engine.Pending()
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Pending suggestions", suggestions)
}

// Review records the reviewer's verdict. On accept, this handler - not the
// engine - applies the transition through the state machine, so the
// role-state ceiling and graph validation still run against the reviewer.
func (sc *SuggestionController) Review(c *gin.Context) {
	id, err := parseID(c, "suggestion_id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var req struct {
		Accepted *bool `json:"accepted" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidation(c, err)
		return
	}

	reviewerID, role := middlewares.ActorFromContext(c)

	suggestion, err := sc.Engine.Review(id, *req.Accepted, reviewerID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	if !*req.Accepted {
		utils.RespondJSON(c, http.StatusOK, "Suggestion rejected", suggestion)
		return
	}

	table, err := sc.StateMachine.Apply(
		suggestion.TableID, suggestion.SuggestedState,
		reviewerID, role, models.SourceAISuggested, nil)
	if err != nil {
		// The review itself is terminal; surface the apply failure so the
		// reviewer can act manually.
		utils.RespondError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Suggestion accepted and applied", gin.H{
		"suggestion": suggestion,
		"table":      table,
	})
}
