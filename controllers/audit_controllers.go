package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/opskitchen/resto-ops/audit"
	"github.com/opskitchen/resto-ops/utils"
)

type AuditController struct {
	Sink *audit.Sink
}

func NewAuditController(sink *audit.Sink) *AuditController {
	return &AuditController{Sink: sink}
}

// GetAuditLogs lists audit entries, newest first, with optional filters.
func (ac *AuditController) GetAuditLogs(c *gin.Context) {
	q := audit.Query{
		TargetEntity: c.Query("entity"),
		Action:       c.Query("action"),
	}
	if v, err := strconv.ParseUint(c.Query("actor_id"), 10, 32); err == nil {
		q.ActorID = uint(v)
	}
	if v, err := strconv.ParseUint(c.Query("target_id"), 10, 32); err == nil {
		q.TargetID = uint(v)
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		q.Limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil {
		q.Offset = v
	}

	entries, err := ac.Sink.Find(q)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Audit log entries", entries)
}
