package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ashureev/writebot/internal/domain"
	"github.com/ashureev/writebot/internal/langflow"
	"github.com/ashureev/writebot/internal/parser"
	"github.com/ashureev/writebot/internal/session"
	"github.com/go-chi/chi/v5"
)

// callListLimit caps how many flow calls the calls endpoint returns.
const callListLimit = 200

// Flows is the subset of the Langflow service the onboarding handlers use.
type Flows interface {
	GenerateScenario(ctx context.Context, sessionID string, form map[string]any) (any, error)
	StartExercise(ctx context.Context, sessionID string, form map[string]any, topic string) (any, error)
	ContinueExercise(ctx context.Context, sessionID string, form map[string]any, message string) (any, error)
	AssessAndPlan(ctx context.Context, sessionID string, responses map[string]any) (any, error)
	SessionFeedback(ctx context.Context, sessionID string, conversation []langflow.ChatTurn) (any, error)
}

// FlowCallLister reads the flow-call log.
type FlowCallLister interface {
	ListFlowCalls(ctx context.Context, sessionID string, limit int) ([]domain.FlowCall, error)
}

// OnboardingHandler serves the onboarding endpoints.
type OnboardingHandler struct {
	sessions *session.Store
	flows    Flows
	calls    FlowCallLister
	limiter  *RateLimiter
}

// NewOnboardingHandler creates an onboarding handler. limiter may be nil
// to disable rate limiting.
func NewOnboardingHandler(sessions *session.Store, flows Flows, calls FlowCallLister, limiter *RateLimiter) *OnboardingHandler {
	return &OnboardingHandler{
		sessions: sessions,
		flows:    flows,
		calls:    calls,
		limiter:  limiter,
	}
}

// RegisterRoutes registers onboarding routes.
func (h *OnboardingHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/onboarding", func(r chi.Router) {
		r.Get("/session/{sessionID}", h.GetSession)
		r.Get("/session/{sessionID}/calls", h.ListCalls)

		r.Group(func(r chi.Router) {
			if h.limiter != nil {
				r.Use(h.limiter.Middleware)
			}
			r.Post("/scenario", h.GenerateScenario)
			r.Post("/exercise/start", h.StartExercise)
			r.Post("/exercise/chat", h.ChatExercise)
			r.Post("/assessment", h.Assess)
		})
	})
}

type scenarioResponse struct {
	SessionID string                  `json:"session_id"`
	Scenario  *string                 `json:"scenario"`
	Exercises []domain.ExerciseRecord `json:"exercises"`
	Message   string                  `json:"message"`
}

// GenerateScenario validates the intake form, opens a session and asks the
// scenario flow for a scenario and exercises.
func (h *OnboardingHandler) GenerateScenario(w http.ResponseWriter, r *http.Request) {
	var form domain.IntakeForm
	if err := decodeJSON(w, r, &form); err != nil {
		writeError(w, r, err)
		return
	}
	if err := form.Validate(); err != nil {
		writeError(w, r, err)
		return
	}

	sess := h.sessions.Create()
	formData := form.ToMap()
	if _, err := h.sessions.Update(sess.SessionID, session.Fields{session.FieldFormData: formData}); err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("Generating scenario", "session_id", sess.SessionID, "age_group", form.AgeGroup)

	raw, err := h.flows.GenerateScenario(r.Context(), sess.SessionID, formData)
	if err != nil {
		writeError(w, r, err)
		return
	}

	result := parser.ParseScenarioAndExercises(raw)
	if len(result.Skipped) > 0 {
		slog.Warn("Skipped malformed exercises",
			"session_id", sess.SessionID,
			"skipped", len(result.Skipped),
			"error", errors.Join(result.Skipped...))
	}

	if _, err := h.sessions.Update(sess.SessionID, session.Fields{
		session.FieldScenario:  result.Scenario,
		session.FieldExercises: result.Exercises,
	}); err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("Scenario generated",
		"session_id", sess.SessionID,
		"marker_found", result.MarkerFound,
		"exercises", len(result.Exercises))

	resp := scenarioResponse{
		SessionID: sess.SessionID,
		Scenario:  &result.Scenario,
		Message:   "Scenario generated successfully",
	}
	if len(result.Exercises) > 0 {
		resp.Exercises = result.Exercises
	}
	JSON(w, http.StatusOK, resp)
}

// GetSession returns a snapshot of a session.
func (h *OnboardingHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, sess)
}

// ListCalls returns the recorded flow calls of a session.
func (h *OnboardingHandler) ListCalls(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if _, err := h.sessions.Get(sessionID); err != nil {
		writeError(w, r, err)
		return
	}

	calls, err := h.calls.ListFlowCalls(r.Context(), sessionID, callListLimit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"calls":      calls,
	})
}

type exerciseStartRequest struct {
	SessionID           string `json:"session_id"`
	ExerciseTitle       string `json:"exercise_title"`
	ExerciseDescription string `json:"exercise_description"`
}

// StartExercise opens an exercise conversation for a session's learner.
func (h *OnboardingHandler) StartExercise(w http.ResponseWriter, r *http.Request) {
	var req exerciseStartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.SessionID == "" || strings.TrimSpace(req.ExerciseTitle) == "" {
		writeError(w, r, badRequest("session_id and exercise_title are required"))
		return
	}

	sess, ok := h.sessionWithForm(w, r, req.SessionID)
	if !ok {
		return
	}

	topic := req.ExerciseTitle
	if req.ExerciseDescription != "" {
		topic = req.ExerciseTitle + ": " + req.ExerciseDescription
	}

	slog.Info("Starting exercise", "session_id", sess.SessionID, "topic", topic)

	raw, err := h.flows.StartExercise(r.Context(), sess.SessionID, sess.FormData, topic)
	if err != nil {
		writeError(w, r, err)
		return
	}

	JSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"session_id":     sess.SessionID,
		"exercise_topic": req.ExerciseTitle,
		"reply":          parser.Normalize(raw),
		"response":       raw,
	})
}

type exerciseChatRequest struct {
	SessionID string              `json:"session_id"`
	Message   string              `json:"message"`
	End       bool                `json:"end"`
	History   []langflow.ChatTurn `json:"history"`
}

// ChatExercise continues an exercise conversation. When the learner ends
// the exercise, feedback on the whole conversation is requested as well.
func (h *OnboardingHandler) ChatExercise(w http.ResponseWriter, r *http.Request) {
	var req exerciseChatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.SessionID == "" || strings.TrimSpace(req.Message) == "" {
		writeError(w, r, badRequest("session_id and message are required"))
		return
	}

	sess, ok := h.sessionWithForm(w, r, req.SessionID)
	if !ok {
		return
	}

	raw, err := h.flows.ContinueExercise(r.Context(), sess.SessionID, sess.FormData, req.Message)
	if err != nil {
		writeError(w, r, err)
		return
	}
	reply := parser.Normalize(raw)

	resp := map[string]any{
		"success":    true,
		"session_id": sess.SessionID,
		"reply":      reply,
		"response":   raw,
	}

	if req.End {
		conversation := append(append([]langflow.ChatTurn(nil), req.History...),
			langflow.ChatTurn{Role: "user", Content: req.Message},
			langflow.ChatTurn{Role: "assistant", Content: reply},
		)
		fb, err := h.flows.SessionFeedback(r.Context(), sess.SessionID, conversation)
		if err != nil {
			slog.Warn("Session feedback failed", "session_id", sess.SessionID, "error", err)
			resp["feedback"] = nil
		} else {
			resp["feedback"] = parser.Normalize(fb)
		}
	}

	JSON(w, http.StatusOK, resp)
}

type assessmentRequest struct {
	SessionID  string         `json:"session_id"`
	Responses  map[string]any `json:"responses"`
	FocusAreas []string       `json:"focus_areas"`
}

// Assess sends assessment responses to the planning flow and stores the
// resulting plan on the session.
func (h *OnboardingHandler) Assess(w http.ResponseWriter, r *http.Request) {
	var req assessmentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.SessionID == "" || len(req.Responses) == 0 {
		writeError(w, r, badRequest("session_id and responses are required"))
		return
	}

	if _, err := h.sessions.Get(req.SessionID); err != nil {
		writeError(w, r, err)
		return
	}

	raw, err := h.flows.AssessAndPlan(r.Context(), req.SessionID, req.Responses)
	if err != nil {
		writeError(w, r, err)
		return
	}

	assessment := map[string]any{
		"responses": req.Responses,
		"plan":      parser.Normalize(raw),
	}
	fields := session.Fields{session.FieldAssessment: assessment}
	if req.FocusAreas != nil {
		fields[session.FieldFocusAreas] = req.FocusAreas
	}

	sess, err := h.sessions.Update(req.SessionID, fields)
	if err != nil {
		writeError(w, r, err)
		return
	}

	JSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"session_id":  sess.SessionID,
		"assessment":  sess.Assessment,
		"focus_areas": sess.FocusAreas,
	})
}

// sessionWithForm loads a session that already holds an intake form,
// writing a 404 or 400 response when it cannot.
func (h *OnboardingHandler) sessionWithForm(w http.ResponseWriter, r *http.Request, id string) (domain.Session, bool) {
	sess, err := h.sessions.Get(id)
	if err != nil {
		writeError(w, r, err)
		return domain.Session{}, false
	}
	if !sess.HasFormData() {
		writeError(w, r, badRequest("no form data found in session"))
		return domain.Session{}, false
	}
	return sess, true
}
