package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"todoList/internal/handlers/dto"
	"todoList/internal/models/task"
)

const maxUploadSize = 10 << 20

var errUnsupportedMedia = errors.New("content type must be application/json or multipart/form-data")

func checkContentType(r *http.Request, target string) bool {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return false
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == target
}

type taskForm struct {
	request     dto.TaskRequest
	photoSource string
	cleanup     func()
}

func (f *taskForm) close() {
	if f.cleanup != nil {
		f.cleanup()
	}
}

// readTaskForm accepts a JSON body, or multipart with a "task" JSON field and
// an optional "photo" file which is staged locally.
func readTaskForm(r *http.Request, stager Stager) (*taskForm, error) {
	switch {
	case checkContentType(r, "application/json"):
		var req dto.TaskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, fmt.Errorf("invalid request body: %w", err)
		}
		return &taskForm{request: req}, nil

	case checkContentType(r, "multipart/form-data"):
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			return nil, fmt.Errorf("invalid multipart body: %w", err)
		}

		var req dto.TaskRequest
		if raw := r.FormValue("task"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &req); err != nil {
				return nil, fmt.Errorf("invalid task field: %w", err)
			}
		}
		form := &taskForm{request: req}

		file, _, err := r.FormFile("photo")
		switch {
		case errors.Is(err, http.ErrMissingFile):
			return form, nil
		case err != nil:
			return nil, fmt.Errorf("invalid photo: %w", err)
		}
		defer file.Close()

		uri, cleanup, err := stager.Stage(file)
		if err != nil {
			return nil, fmt.Errorf("staging photo: %w", err)
		}
		form.photoSource = uri
		form.cleanup = cleanup
		return form, nil
	}
	return nil, errUnsupportedMedia
}

func (f *taskForm) draft() task.Draft {
	return task.Draft{
		Title:    f.request.Title,
		Comments: f.request.Comments,
		Location: f.request.ToLocation(),
	}
}

// createDraft treats an uploaded photo as the picked image.
func (f *taskForm) createDraft() task.Draft {
	d := f.draft()
	if f.photoSource != "" {
		d.Photo = task.ReplacePhoto(f.photoSource)
	}
	return d
}

// editDraft: an uploaded photo replaces, "remove" clears, anything else keeps.
func (f *taskForm) editDraft() (task.Draft, error) {
	d := f.draft()
	if f.photoSource != "" {
		d.Photo = task.ReplacePhoto(f.photoSource)
		return d, nil
	}
	switch strings.ToLower(strings.TrimSpace(f.request.Photo)) {
	case "", dto.PhotoKeep:
		d.Photo = task.KeepPhoto()
	case dto.PhotoRemove:
		d.Photo = task.RemovePhoto()
	default:
		return task.Draft{}, fmt.Errorf("photo must be %q or %q", dto.PhotoKeep, dto.PhotoRemove)
	}
	return d, nil
}
