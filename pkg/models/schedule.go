package models

// Schedule is the single active course schedule.
// Days holds the weekday tokens exactly as the admin entered them ("Вт, Чт"),
// Time is HH:MM and Timezone is either an IANA name or a fixed offset like "UTC+6".
type Schedule struct {
	ID       int64  `json:"id" db:"id"`
	Text     string `json:"text" db:"text"`
	Days     string `json:"days" db:"days"`
	Time     string `json:"time" db:"time"`
	Timezone string `json:"timezone" db:"timezone"`
}
