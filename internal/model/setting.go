package model

import "time"

// AppSetting is one runtime-tunable key/value pair.
type AppSetting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
