package rest

import (
	"net/http"

	"github.com/dmitrijs2005/taskapi/internal/common"
	"github.com/dmitrijs2005/taskapi/internal/server/auth"
	"github.com/go-chi/chi/v5"
)

type access int

const (
	accessPublic access = iota
	accessUser
	accessAdmin
)

// handlerFunc serves a request on behalf of an already gated principal. The
// principal is the zero value on public routes.
type handlerFunc func(w http.ResponseWriter, r *http.Request, p auth.Principal) error

type route struct {
	method  string
	pattern string
	access  access
	// limited routes go through the auth rate limiter
	limited bool
	handler handlerFunc
}

func (s *Server) routes() []route {
	return []route{
		{http.MethodPost, "/user/signup", accessPublic, true, s.signup},
		{http.MethodPost, "/user/signin", accessPublic, true, s.signin},
		{http.MethodPatch, "/user/update", accessUser, false, s.updateUser},
		{http.MethodDelete, "/user/unsubscribe", accessUser, false, s.unsubscribe},
		{http.MethodGet, "/user/getAll", accessAdmin, false, s.listUsers},
		{http.MethodDelete, "/user/remove/{id}", accessAdmin, false, s.removeUser},

		{http.MethodPost, "/task/new", accessUser, false, s.createTask},
		{http.MethodGet, "/task/getAll", accessUser, false, s.listTasks},
		{http.MethodGet, "/task/getById/{id}", accessUser, false, s.getTask},
		{http.MethodPost, "/task/done/{id}", accessUser, false, s.completeTask},
		{http.MethodPatch, "/task/update/{id}", accessUser, false, s.updateTask},
		{http.MethodDelete, "/task/delete/{id}", accessUser, false, s.deleteTask},
		{http.MethodGet, "/task/getAllTasks", accessAdmin, false, s.listAllTasks},
		{http.MethodDelete, "/task/remove/{id}", accessAdmin, false, s.removeTask},

		{http.MethodGet, "/healthz", accessPublic, false, s.healthz},
	}
}

// mount registers every route with the middleware its access level needs.
func (s *Server) mount(r chi.Router) {
	for _, rt := range s.routes() {
		var mws []func(http.Handler) http.Handler
		if rt.limited && s.authLimiter != nil {
			mws = append(mws, s.authLimiter)
		}
		if rt.access != accessPublic {
			mws = append(mws, s.authenticate)
		}
		r.With(mws...).Method(rt.method, rt.pattern, s.gate(rt))
	}
}

// gate enforces the route's access level once, before dispatch. A missing
// principal and a non-admin principal on an admin route fail the same way.
func (s *Server) gate(rt route) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFrom(r.Context())

		switch rt.access {
		case accessUser:
			if !ok {
				writeError(r.Context(), s.logger, w, common.ErrMissingCredentials)
				return
			}
		case accessAdmin:
			if !ok || !p.IsAdmin {
				writeError(r.Context(), s.logger, w, common.ErrMissingCredentials)
				return
			}
		}

		if err := rt.handler(w, r, p); err != nil {
			writeError(r.Context(), s.logger, w, err)
		}
	}
}
