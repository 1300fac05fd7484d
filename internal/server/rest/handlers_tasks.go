package rest

import (
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/taskapi/internal/server/auth"
	"github.com/dmitrijs2005/taskapi/internal/server/models"
	"github.com/dmitrijs2005/taskapi/internal/server/services"
	"github.com/go-chi/chi/v5"
)

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// updateTaskRequest lists the only fields a task update may touch. Anything
// else in the body is dropped by the decoder.
type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request, p auth.Principal) error {
	var req createTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}

	task, err := s.tasks.Create(r.Context(), services.NewTask{Title: req.Title, Description: req.Description}, p.UserID)
	if err != nil {
		return err
	}

	view := newTaskView(task)
	view.ID = task.ID
	writeJSON(w, http.StatusCreated, envelope{
		Message: fmt.Sprintf("Your task with title | %s | Has been created succfully!", task.Title),
		Data:    view,
	})
	return nil
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request, p auth.Principal) error {
	list, err := s.tasks.ListForOwner(r.Context(), p.UserID)
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, envelope{Data: newTaskViews(list, false)})
	return nil
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request, p auth.Principal) error {
	task, err := s.tasks.GetOne(r.Context(), p.UserID, chi.URLParam(r, "id"))
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, envelope{Data: newTaskView(task)})
	return nil
}

func (s *Server) completeTask(w http.ResponseWriter, r *http.Request, p auth.Principal) error {
	task, err := s.tasks.Complete(r.Context(), p.UserID, chi.URLParam(r, "id"))
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, envelope{Data: newTaskView(task)})
	return nil
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request, p auth.Principal) error {
	var req updateTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}

	patch := models.TaskPatch{Title: req.Title, Description: req.Description}
	task, err := s.tasks.Update(r.Context(), chi.URLParam(r, "id"), p.UserID, patch)
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, envelope{Data: newTaskView(task)})
	return nil
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request, p auth.Principal) error {
	task, err := s.tasks.Delete(r.Context(), p.UserID, chi.URLParam(r, "id"))
	if err != nil {
		return err
	}

	writeMessage(w, http.StatusOK, fmt.Sprintf("This task %s have been removed succfully!", task.Title))
	return nil
}

func (s *Server) listAllTasks(w http.ResponseWriter, r *http.Request, _ auth.Principal) error {
	list, err := s.tasks.ListAll(r.Context())
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, envelope{
		Message: "Successfully fetched all tasks",
		Data:    newTaskViews(list, true),
	})
	return nil
}

func (s *Server) removeTask(w http.ResponseWriter, r *http.Request, _ auth.Principal) error {
	task, err := s.tasks.RemoveTask(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}

	writeMessage(w, http.StatusOK, fmt.Sprintf("Task with title %s removed successfully", task.Title))
	return nil
}
