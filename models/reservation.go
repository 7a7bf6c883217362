package models

import "time"

// Reservation statuses used by the reservation-proximity probe.
const (
	ReservationBooked   = "BOOKED"
	ReservationArrived  = "ARRIVED"
	ReservationSeated   = "SEATED"
	ReservationCanceled = "CANCELED"
	ReservationNoShow   = "NO_SHOW"
)

type Reservation struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	GuestName       string    `gorm:"type:varchar(255);not null" json:"guest_name"`
	PartySize       int       `gorm:"not null" json:"party_size"`
	TableID         *uint     `gorm:"index" json:"table_id,omitempty"`
	ReservationTime time.Time `gorm:"not null;index" json:"reservation_time"`
	Status          string    `gorm:"type:varchar(20);not null;default:'BOOKED'" json:"status"`
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null" json:"updated_at"`
}
