package domain

import "time"

// Project is a job site that groups quotes and calendar events.
type Project struct {
	ID        uint
	OwnerID   uint
	Name      string
	Address   string
	Status    ProjectStatus
	ImageURL  string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
