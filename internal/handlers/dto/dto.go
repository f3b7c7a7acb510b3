package dto

import (
	"todoList/internal/models/task"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

type LocationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
}

// Photo values accepted on edit.
const (
	PhotoKeep   = "keep"
	PhotoRemove = "remove"
)

// TaskRequest is the create/edit form. On create Location may be omitted,
// in which case the device position header is used.
type TaskRequest struct {
	Title    string           `json:"title"`
	Comments string           `json:"comments"`
	Location *LocationRequest `json:"location,omitempty"`
	Photo    string           `json:"photo,omitempty"`
}

func (r TaskRequest) ToLocation() *task.Location {
	if r.Location == nil {
		return nil
	}
	return &task.Location{
		Latitude:  r.Location.Latitude,
		Longitude: r.Location.Longitude,
		Address:   r.Location.Address,
	}
}

type LocationResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
}

type TaskResponse struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Comments  string            `json:"comments,omitempty"`
	PhotoURI  *string           `json:"photoUri"`
	PhotoURL  string            `json:"photoUrl,omitempty"`
	Location  *LocationResponse `json:"location"`
	Completed bool              `json:"completed"`
	UserEmail string            `json:"userEmail"`
	CreatedAt int64             `json:"createdAt"`
}

func FromTask(t *task.Task) TaskResponse {
	res := TaskResponse{
		ID:        t.ID,
		Title:     t.Title,
		Comments:  t.Comments,
		PhotoURI:  t.PhotoURI,
		Completed: t.Completed,
		UserEmail: t.UserEmail,
		CreatedAt: t.CreatedAt,
	}
	if t.HasPhoto() {
		res.PhotoURL = "/tasks/" + t.ID + "/photo"
	}
	if t.Location != nil {
		res.Location = &LocationResponse{
			Latitude:  t.Location.Latitude,
			Longitude: t.Location.Longitude,
			Address:   t.Location.Address,
		}
	}
	return res
}

func FromTaskList(tasks []*task.Task) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t)
	}
	return result
}

type StatsResponse struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
}

func FromStats(s task.Stats) StatsResponse {
	return StatsResponse{Total: s.Total, Completed: s.Completed, Pending: s.Pending}
}
