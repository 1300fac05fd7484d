package rest

import "github.com/dmitrijs2005/taskapi/internal/server/models"

// userView never carries the password hash.
type userView struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName,omitempty"`
	IsAdmin  bool   `json:"isAdmin"`
}

func newUserView(u *models.User) userView {
	return userView{ID: u.ID, Email: u.Email, FullName: u.FullName, IsAdmin: u.IsAdmin}
}

func newUserViews(list []*models.User) []userView {
	out := make([]userView, 0, len(list))
	for _, u := range list {
		out = append(out, newUserView(u))
	}
	return out
}

// displayName is how confirmation messages address a user.
func displayName(u *models.User) string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Email
}

// taskView is the owner facing projection. ID is only filled in on creation
// and UserID only on the admin listing.
type taskView struct {
	ID          string            `json:"id,omitempty"`
	UserID      string            `json:"userId,omitempty"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      models.TaskStatus `json:"status"`
}

func newTaskView(t *models.Task) taskView {
	return taskView{Title: t.Title, Description: t.Description, Status: t.Status}
}

func newTaskViews(list []*models.Task, withOwner bool) []taskView {
	out := make([]taskView, 0, len(list))
	for _, t := range list {
		v := newTaskView(t)
		if withOwner {
			v.UserID = t.UserID
		}
		out = append(out, v)
	}
	return out
}
