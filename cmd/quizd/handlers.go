package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/quizora/platform/middlewares"
	"github.com/quizora/platform/pkg/cache"
	"github.com/quizora/platform/pkg/quota"
)

type quizSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Plays int    `json:"plays"`
}

type quizDetail struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Questions int       `json:"questions"`
	CreatedAt time.Time `json:"created_at"`
}

// Stand-in data until the relational query layer is mounted. The handlers
// only exist to exercise the cache and quota wiring end to end.
var demoQuizzes = map[string]quizDetail{
	"1": {ID: "1", Title: "World Capitals", Questions: 12, CreatedAt: time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)},
	"2": {ID: "2", Title: "Famous Rivers", Questions: 8, CreatedAt: time.Date(2026, 3, 5, 16, 30, 0, 0, time.UTC)},
}

func listQuizzesHandler(store *cache.Store, cfg cache.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := cache.QuizListKey(cache.ScopePublic, 1, 20)
		list, _, err := cache.Fetch(r.Context(), store, key, cfg.ListTTL,
			func(ctx context.Context) ([]quizSummary, bool, error) {
				out := make([]quizSummary, 0, len(demoQuizzes))
				for _, q := range demoQuizzes {
					out = append(out, quizSummary{ID: q.ID, Title: q.Title})
				}
				return out, true, nil
			})
		if err != nil {
			http.Error(w, "failed to load quizzes", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func quizDetailHandler(store *cache.Store, cfg cache.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		detail, found, err := cache.Fetch(r.Context(), store, cache.QuizDetailKey(id), cfg.DetailTTL,
			func(ctx context.Context) (quizDetail, bool, error) {
				q, ok := demoQuizzes[id]
				return q, ok, nil
			})
		if err != nil {
			http.Error(w, "failed to load quiz", http.StatusInternalServerError)
			return
		}
		if !found {
			http.Error(w, "quiz not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, detail)
	}
}

func playHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]string{
			"attempt_id": uuid.NewString(),
			"quiz_id":    chi.URLParam(r, "id"),
		})
	}
}

func generateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// The AI pipeline is an external collaborator; accepting the job is
		// all this subsystem is responsible for.
		writeJSON(w, http.StatusAccepted, map[string]string{
			"generation_id": uuid.NewString(),
		})
	}
}

func quotaStatusHandler(tracker *quota.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := tracker.Status(middlewares.ClientIP(r))
		writeJSON(w, http.StatusOK, map[string]any{
			"allowed":        res.Allowed,
			"remaining":      res.Remaining,
			"reset_in_ms":    res.ResetIn.Milliseconds(),
			"limit":          tracker.Limit(),
			"exhausted_axis": string(res.Scope),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
