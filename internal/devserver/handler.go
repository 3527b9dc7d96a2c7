package devserver

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/interview-prep/studyclient/internal/auth"
	"github.com/interview-prep/studyclient/internal/models"
)

const refineLimitMessage = "Plan refinement is limited to once per day. Check back tomorrow."

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes mounts the study and plan endpoints on an authenticated router.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	study := r.PathPrefix("/study").Subrouter()
	study.HandleFunc("/start_session", h.StartSession).Methods("POST")
	study.HandleFunc("/session/{id:[0-9]+}", h.GetSession).Methods("GET")
	study.HandleFunc("/end_session/{id:[0-9]+}", h.EndSession).Methods("PUT")
	study.HandleFunc("/generate_questions/{id:[0-9]+}", h.GenerateQuestions).Methods("POST")
	study.HandleFunc("/evaluate_answer/{id:[0-9]+}", h.EvaluateAnswer).Methods("POST")
	study.HandleFunc("/generate_story/{id:[0-9]+}", h.GenerateStory).Methods("POST")
	study.HandleFunc("/story/{id:[0-9]+}", h.GetStory).Methods("GET")
	study.HandleFunc("/story/{id:[0-9]+}", h.UpdateStory).Methods("PUT")
	study.HandleFunc("/suggested_session", h.SuggestedSession).Methods("GET")
	study.HandleFunc("/sessions", h.ListSessions).Methods("GET")

	plan := r.PathPrefix("/plan").Subrouter()
	plan.HandleFunc("/suggest_new", h.SuggestNew).Methods("POST")
	plan.HandleFunc("/suggest_changes", h.SuggestChanges).Methods("POST")
	plan.HandleFunc("/approve_plan", h.ApprovePlan).Methods("POST")
	plan.HandleFunc("/can_refine", h.CanRefine).Methods("GET")
	plan.HandleFunc("/view", h.ViewPlan).Methods("GET")
	plan.HandleFunc("/user_context", h.GetUserContext).Methods("GET")
	plan.HandleFunc("/user_context", h.SetUserContext).Methods("POST")
}

func getUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	uid, ok := auth.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
	}
	return uid, ok
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return id, true
}

// ── Study ────────────────────────────────────────────────

func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(w, r)
	if !ok {
		return
	}

	var req models.StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PlannedStudyTime <= 0 {
		writeError(w, http.StatusBadRequest, "planned_study_time must be positive")
		return
	}

	sess, err := h.store.StartSession(userID, req.TopicID, req.PlannedStudyTime)
	if err != nil {
		writeError(w, http.StatusNotFound, "Topic not found")
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	sess, err := h.store.Session(userID, id)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *Handler) EndSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	sess, err := h.store.EndSession(userID, id)
	if errors.Is(err, errSessionEnded) {
		writeError(w, http.StatusBadRequest, "Session already ended")
		return
	}
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *Handler) GenerateQuestions(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	topic, err := h.store.SessionTopic(userID, id)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	strength := h.store.TopicStrength(userID, topic.Name)
	batch := mockQuestions(topic, strength, h.store.PreviouslyAsked(userID, topic.ID))
	questions, err := h.store.RecordQuestions(userID, id, batch)
	if err != nil {
		log.Printf("[devserver] GenerateQuestions error: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to generate questions: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, models.GenerateQuestionsResponse{Questions: questions})
}

func (h *Handler) EvaluateAnswer(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req models.EvaluateAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Question) == "" || strings.TrimSpace(req.RawAnswer) == "" {
		writeError(w, http.StatusBadRequest, "question and raw_answer are required")
		return
	}

	result := mockEvaluation(req.Question, req.RawAnswer, req.AnswerTimeSeconds)
	if err := h.store.RecordAttempt(userID, id, req.Question, req.RawAnswer, result.Score, req.AnswerTimeSeconds); err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) GenerateStory(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req models.GenerateStoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	resp, err := h.store.CreateStory(userID, id, req.Question, mockStory(req.Question))
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetStory(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(w, r)
	if !ok {
		return
	}
	questionID, ok := pathID(w, r)
	if !ok {
		return
	}

	story, err := h.store.StoryForQuestion(userID, questionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Story not found")
		return
	}
	writeJSON(w, http.StatusOK, story)
}

func (h *Handler) UpdateStory(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(w, r)
	if !ok {
		return
	}
	storyID, ok := pathID(w, r)
	if !ok {
		return
	}

	var req models.UpdateStoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	story, err := h.store.UpdateStory(userID, storyID, req.StructureText)
	if err != nil {
		writeError(w, http.StatusNotFound, "Story not found")
		return
	}
	writeJSON(w, http.StatusOK, story)
}

func (h *Handler) SuggestedSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(w, r)
	if !ok {
		return
	}

	s, err := h.store.SuggestSession(userID)
	if err != nil {
		writeError(w, http.StatusNotFound, "No plan found for user")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	var topicID *int64
	if v := query.Get("topic_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid topic_id")
			return
		}
		topicID = &id
	}

	rows := h.store.ListSessions(userID, intQueryParam(query, "limit", 20), intQueryParam(query, "offset", 0), topicID)
	writeJSON(w, http.StatusOK, models.SessionListResponse{Sessions: rows})
}

// ── Plan ─────────────────────────────────────────────────

func (h *Handler) SuggestNew(w http.ResponseWriter, r *http.Request) {
	if _, ok := getUserID(w, r); !ok {
		return
	}

	var req models.SuggestNewPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Role = strings.TrimSpace(req.Role)
	if req.Role == "" || strings.TrimSpace(req.RawUserContext) == "" {
		writeError(w, http.StatusBadRequest, "role and raw_user_context are required")
		return
	}
	if req.MotivationLevel != "" && !models.ValidMotivationLevels[req.MotivationLevel] {
		writeError(w, http.StatusBadRequest, "motivation_level must be 'low', 'medium', or 'high'")
		return
	}

	writeJSON(w, http.StatusOK, mockPlan(req))
}

func (h *Handler) SuggestChanges(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(w, r)
	if !ok {
		return
	}

	var req models.SuggestChangesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.store.MarkRefined(userID); err != nil {
		if errors.Is(err, errRefineLimited) {
			writeJSON(w, http.StatusTooManyRequests, models.ErrorResponse{
				Detail: refineLimitMessage,
				Code:   models.CodeRefineRateLimited,
			})
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to refine plan")
		return
	}

	writeJSON(w, http.StatusOK, mockPlanChanges(req))
}

func (h *Handler) ApprovePlan(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(w, r)
	if !ok {
		return
	}

	var req models.ApprovePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Plan.Topics) == 0 {
		writeError(w, http.StatusBadRequest, "plan must contain at least one topic")
		return
	}

	ids := h.store.ApprovePlan(userID, req.Plan)
	writeJSON(w, http.StatusOK, models.Ack{Status: "success", Message: "Plan approved and saved", TopicIDs: ids})
}

func (h *Handler) CanRefine(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, models.CanRefineResponse{CanRefine: h.store.CanRefine(userID)})
}

func (h *Handler) ViewPlan(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(w, r)
	if !ok {
		return
	}

	plan, err := h.store.ViewPlan(userID)
	if err != nil {
		writeError(w, http.StatusNotFound, "No plan found for user")
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (h *Handler) GetUserContext(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, models.UserContext{ContextText: h.store.UserContext(userID)})
}

func (h *Handler) SetUserContext(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(w, r)
	if !ok {
		return
	}

	var req models.UserContext
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	writeJSON(w, http.StatusOK, models.UserContext{ContextText: h.store.SetUserContext(userID, req.ContextText)})
}

// ── Helpers ──────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, models.ErrorResponse{Detail: detail})
}

func intQueryParam(query url.Values, key string, defaultVal int) int {
	s := query.Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return defaultVal
	}
	return v
}
