package task

// Remote — задача в том виде, в каком её отдаёт сервер.
type Remote struct {
	ID int64 `json:"id" doc:"Server-assigned identifier"`
	Payload
}

type CreateResponse struct {
	ID int64 `json:"id" doc:"Server-assigned identifier"`
}

// UpdateRequest — тело PATCH: отсутствующее поле не меняется.
// Пустая строка в description или due_date очищает поле.
type UpdateRequest struct {
	Title       *string    `json:"title,omitempty" minLength:"1"`
	Description *string    `json:"description,omitempty"`
	DueDate     *string    `json:"due_date,omitempty"`
	IsCompleted *bool      `json:"is_completed,omitempty"`
	Priority    *Priority  `json:"priority,omitempty"`
	Comments    *[]Comment `json:"comments,omitempty"`
	Media       *[]Media   `json:"media,omitempty"`
}

// UpdateRequestFrom строит PATCH со всеми пользовательскими полями задачи.
func UpdateRequestFrom(p Payload) UpdateRequest {
	empty := ""
	req := UpdateRequest{
		Title:       &p.Title,
		Description: &empty,
		DueDate:     &empty,
		IsCompleted: &p.IsCompleted,
		Priority:    &p.Priority,
		Comments:    &p.Comments,
		Media:       &p.Media,
	}
	if p.Description != nil {
		req.Description = p.Description
	}
	if p.DueDate != nil {
		req.DueDate = p.DueDate
	}
	if p.Comments == nil {
		req.Comments = &[]Comment{}
	}
	if p.Media == nil {
		req.Media = &[]Media{}
	}
	return req
}

// Patch переводит тело запроса в частичное изменение.
func (r UpdateRequest) Patch() Patch {
	var patch Patch
	if r.Title != nil {
		patch.Title = Some(*r.Title)
	}
	if r.Description != nil {
		patch.Description = Some(clearable(*r.Description))
	}
	if r.DueDate != nil {
		patch.DueDate = Some(clearable(*r.DueDate))
	}
	if r.IsCompleted != nil {
		patch.IsCompleted = Some(*r.IsCompleted)
	}
	if r.Priority != nil {
		patch.Priority = Some(*r.Priority)
	}
	if r.Comments != nil {
		patch.Comments = Some(*r.Comments)
	}
	if r.Media != nil {
		patch.Media = Some(*r.Media)
	}
	return patch
}

func clearable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
