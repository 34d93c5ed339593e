package model

import "time"

// HubStats is a point-in-time snapshot of the connection registry,
// served over REST and rendered by the monitor command.
type HubStats struct {
	OnlineUsers      int           `json:"online_users"`
	TotalConnections int           `json:"total_connections"`
	Uptime           time.Duration `json:"uptime"`
	UserIDs          []int64       `json:"user_ids,omitempty"`
}
