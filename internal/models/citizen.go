package models

import "time"

// Citizen represents a household registered under an RT/RW
type Citizen struct {
	ID           string    `json:"id,omitempty"`
	Name         string    `json:"name" validate:"required"`
	NIK          string    `json:"nik" validate:"required"`
	KK           string    `json:"kk" validate:"required"`
	Address      string    `json:"address" validate:"required"`
	RT           string    `json:"rt"`
	RW           string    `json:"rw"`
	CouponNumber string    `json:"couponNumber" validate:"required"`
	Phone        string    `json:"phone,omitempty"` // WhatsApp number for reminders
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Area identifies an RT/RW pair
type Area struct {
	RT string `json:"rt"`
	RW string `json:"rw"`
}

// IsZero reports whether no area filter is set
func (a Area) IsZero() bool {
	return a.RT == "" && a.RW == ""
}

// Area returns the RT/RW pair of the citizen
func (c Citizen) Area() Area {
	return Area{RT: c.RT, RW: c.RW}
}
