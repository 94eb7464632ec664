package service

import (
	"context"
	"strings"
	"time"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   *bool  `json:"completed"`
}

type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

type TaskService struct {
	Repo repo.Repository[models.Task]
	Now  func() time.Time
}

func (s *TaskService) List(ctx context.Context) ([]models.Task, error) {
	return s.Repo.List(ctx)
}

func (s *TaskService) Get(ctx context.Context, id string) (models.Task, error) {
	t, err := s.Repo.Get(ctx, id)
	return t, fromRepo(err, "task %s not found", id)
}

func (s *TaskService) Create(ctx context.Context, req CreateTaskRequest) (models.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return models.Task{}, fail(ErrValidation, "title is required")
	}

	ts := now(s.Now)
	t := models.Task{
		ID:          newID(),
		Title:       title,
		Description: req.Description,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	if req.Completed != nil {
		t.Completed = *req.Completed
	}

	out, err := s.Repo.Insert(ctx, t)
	return out, fromRepo(err, "task %s already exists", t.ID)
}

// Update applies the provided fields. A request that sets nothing is
// rejected once the task is known to exist.
func (s *TaskService) Update(ctx context.Context, id string, req UpdateTaskRequest) (models.Task, error) {
	t, err := s.Repo.Update(ctx, id, func(t *models.Task) error {
		if req.Title == nil && req.Description == nil && req.Completed == nil {
			return fail(ErrValidation, "at least one field must be provided")
		}
		if req.Title != nil {
			title := strings.TrimSpace(*req.Title)
			if title == "" {
				return fail(ErrValidation, "title cannot be empty")
			}
			t.Title = title
		}
		if req.Description != nil {
			t.Description = *req.Description
		}
		if req.Completed != nil {
			t.Completed = *req.Completed
		}
		t.UpdatedAt = now(s.Now)
		return nil
	})
	return t, fromRepo(err, "task %s not found", id)
}

func (s *TaskService) Delete(ctx context.Context, id string) (models.Task, error) {
	t, err := s.Repo.Delete(ctx, id)
	return t, fromRepo(err, "task %s not found", id)
}
