package task

import (
	"gophtasks/internal/domain/task"
)

type listInput struct {
	Since string `query:"since" doc:"RFC 3339 time; only tasks changed after it are returned" example:"2024-06-01T09:00:00Z"`
}

type listOutput struct {
	Body listResponse
}

type listResponse struct {
	Tasks []task.Remote `json:"tasks"`
}

type createInput struct {
	Body task.Payload
}

type createOutput struct {
	Body task.CreateResponse
}

type updateInput struct {
	ID   int64 `path:"id" minimum:"1" example:"42" doc:"Task ID"`
	Body task.UpdateRequest
}

type deleteInput struct {
	ID int64 `path:"id" minimum:"1" example:"42" doc:"Task ID"`
}
