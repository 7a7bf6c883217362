package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/opskitchen/resto-ops/models"
	"github.com/opskitchen/resto-ops/utils"
)

type ReservationController struct {
	DB *gorm.DB
}

func NewReservationController(db *gorm.DB) *ReservationController {
	return &ReservationController{DB: db}
}

func (rc *ReservationController) CreateReservation(c *gin.Context) {
	var req struct {
		GuestName       string    `json:"guest_name" binding:"required"`
		PartySize       int       `json:"party_size" binding:"required,min=1"`
		TableID         *uint     `json:"table_id"`
		ReservationTime time.Time `json:"reservation_time" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidation(c, err)
		return
	}

	reservation := models.Reservation{
		GuestName:       req.GuestName,
		PartySize:       req.PartySize,
		TableID:         req.TableID,
		ReservationTime: req.ReservationTime,
		Status:          models.ReservationBooked,
	}
	if err := rc.DB.Create(&reservation).Error; err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Reservation created", reservation)
}

func (rc *ReservationController) GetAllReservations(c *gin.Context) {
	var reservations []models.Reservation
	if err := rc.DB.Order("reservation_time").Find(&reservations).Error; err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of reservations", reservations)
}

// MarkArrived flags the guest as arrived, feeding the suggestion engine's
// reservation-proximity probe.
func (rc *ReservationController) MarkArrived(c *gin.Context) {
	id, err := parseID(c, "reservation_id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	res := rc.DB.Model(&models.Reservation{}).
		Where("id = ? AND status = ?", id, models.ReservationBooked).
		Update("status", models.ReservationArrived)
	if res.Error != nil {
		utils.RespondError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondError(c, utils.ErrNotFound("booked reservation", id))
		return
	}

	var reservation models.Reservation
	if err := rc.DB.First(&reservation, id).Error; err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Guest marked as arrived", reservation)
}
