package monitor

import "time"

// Status is the last observed health of the backing services.
type Status struct {
	Storage       bool      `json:"storage"`
	StorageDriver string    `json:"storage_driver"`
	Redis         bool      `json:"redis"`
	RedisEnabled  bool      `json:"redis_enabled"`
	Buffer        bool      `json:"buffer"`
	BufferSize    int       `json:"buffer_size"`
	LastCheck     time.Time `json:"last_check"`
}
