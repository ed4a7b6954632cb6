package bridge

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/muurk/tapauth/internal/directory"
	"github.com/muurk/tapauth/internal/logging"
)

// Upstream payload keys
const (
	upstreamUID   = "NFC_Code"
	upstreamState = "State"
)

// manualLoginInfo is the Info returned when no card is on the reader
const manualLoginInfo = "Manually logging in..."

// Routes builds the bridge's HTTP routes
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Post("/", s.handleAction)
	r.Post("/cards", s.handleCard)
	r.Get("/uids/count", s.handleCount)
	r.Handle("/ws/cards", s.hub)

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logging.LogHTTPRequest(r.RemoteAddr, r.Method, r.URL.Path, ww.Status())
	})
}

func unknownRequest(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusNotFound)
	render.JSON(w, r, map[string]interface{}{"Error": "Unknown request.", "State": int(directory.StateConnectionError)})
}

func emptyNotFound(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusNotFound)
	render.JSON(w, r, map[string]interface{}{})
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	var body map[string]interface{}
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		logging.Debug("Undecodable bridge request", zap.Error(err))
		unknownRequest(w, r)
		return
	}
	fields := toFields(body)

	uid := fields[directory.FieldUID]
	if uid == "" {
		unknownRequest(w, r)
		return
	}

	action := directory.Action(fields[directory.FieldAction])
	switch action {
	case directory.ActionAuth:
		s.authenticate(uid)
		render.JSON(w, r, map[string]interface{}{})

	case directory.ActionCheck:
		render.JSON(w, r, s.check(r, uid).Wire())

	case directory.ActionRegister:
		resp := s.forward(r, map[string]interface{}{
			upstreamUID:             uid,
			upstreamState:           int(directory.UpstreamRegister),
			directory.FieldUsername: fields[directory.FieldUsername],
			directory.FieldPassword: fields[directory.FieldPassword],
			directory.FieldPin:      fields[directory.FieldPin],
		})
		if resp.Parsed() && resp.State == directory.StateSucceeded {
			s.provision(r, fields[directory.FieldUsername], fields[directory.FieldPassword])
		}
		render.JSON(w, r, resp.Wire())

	case directory.ActionChangePassword:
		resp := s.forward(r, map[string]interface{}{
			upstreamUID:                uid,
			upstreamState:              int(directory.UpstreamChangePassword),
			directory.FieldOldPassword: fields[directory.FieldOldPassword],
			directory.FieldPassword:    fields[directory.FieldPassword],
		})
		if resp.Parsed() && resp.State == directory.StateSucceeded {
			s.provision(r, fields[directory.FieldUsername], fields[directory.FieldPassword])
		}
		render.JSON(w, r, resp.Wire())

	default:
		emptyNotFound(w, r)
	}
}

func (s *Server) authenticate(uid string) {
	if s.active.Touch(uid) {
		logging.Info("UID active", zap.String("uid", logging.Fingerprint(uid)))
		s.hub.Publish(CountEvent(s.active.Count()))
	}
}

// check forwards a check upstream, unless a reader is configured and no card
// is on it, in which case the greeter is told to log in manually.
func (s *Server) check(r *http.Request, uid string) directory.Response {
	if s.reader != nil {
		present, err := s.reader.Present(r.Context())
		if err != nil {
			logging.Warn("Card reader check failed", zap.Error(err))
		}
		if present == "" {
			return directory.Response{Kind: directory.KindDecoded, State: directory.StateManualLogin, Info: manualLoginInfo}
		}
	}

	resp := s.forward(r, map[string]interface{}{
		upstreamUID:   uid,
		upstreamState: int(directory.UpstreamCheck),
	})
	if resp.Parsed() && resp.State == directory.StateKnown {
		s.provision(r, resp.Username, resp.Password)
	}
	return resp
}

func (s *Server) forward(r *http.Request, payload map[string]interface{}) directory.Response {
	action := fmt.Sprint(payload[upstreamState])
	logging.LogRequest("upstream:"+action, fmt.Sprint(payload[upstreamUID]))

	res := s.upstream.Post(r.Context(), payload)

	logging.LogResponse("upstream:"+action, int(res.Response.State), res.Outcome.String())
	return res.Response
}

func (s *Server) provision(r *http.Request, username, password string) {
	if username == "" {
		return
	}
	if err := s.provisioner.Provision(r.Context(), username, password); err != nil {
		logging.Error("Provisioning failed", zap.String("username", username), zap.Error(err))
	}
}

type cardRequest struct {
	UID string `json:"UID"`
}

// handleCard publishes a read reported by a card reader
func (s *Server) handleCard(w http.ResponseWriter, r *http.Request) {
	var req cardRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil || req.UID == "" {
		unknownRequest(w, r)
		return
	}
	s.hub.Publish(CardEvent{UID: req.UID})
	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, map[string]interface{}{})
}

func (s *Server) handleCount(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]int{"Count": s.active.Count()})
}

// toFields flattens a request body to strings. Non-string scalars are
// formatted; nested values are dropped.
func toFields(body map[string]interface{}) directory.Fields {
	fields := make(directory.Fields, len(body))
	for k, v := range body {
		switch v := v.(type) {
		case string:
			fields[k] = v
		case float64:
			fields[k] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			fields[k] = strconv.FormatBool(v)
		}
	}
	return fields
}
