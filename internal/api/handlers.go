package api

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/matchbot-dev/matchbot/internal/matchmaking"
)

type queueSummary struct {
	ID      string `json:"id"`
	GuildID string `json:"guild_id"`
	Teams   string `json:"teams"`
}

func (a *API) handleListQueues(w http.ResponseWriter, r *http.Request) {
	var out []queueSummary
	for _, id := range a.engine.QueueIDs() {
		cfg, err := a.engine.Config(id)
		if err != nil {
			continue
		}
		summary := queueSummary{
			ID:    id.String(),
			Teams: strconv.Itoa(cfg.TeamCount) + "x" + strconv.Itoa(cfg.TeamSize),
		}
		if entry, ok := a.registry.Entry(id); ok {
			summary.GuildID = entry.GuildID
		}
		out = append(out, summary)
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) queueID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["queue_id"])
	if err != nil {
		http.Error(w, "bad queue id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

type sessionStatus struct {
	Name       string     `json:"name"`
	Teams      [][]string `json:"teams"`
	MapOptions []string   `json:"map_options,omitempty"`
}

func (a *API) handleQueueStatus(w http.ResponseWriter, r *http.Request) {
	qid, ok := a.queueID(w, r)
	if !ok {
		return
	}

	queued, err := a.engine.Queued(qid)
	if err != nil {
		http.Error(w, "queue not found", http.StatusNotFound)
		return
	}
	sessions, _ := a.engine.Sessions(qid)

	live := make([]sessionStatus, 0, len(sessions))
	for _, s := range sessions {
		live = append(live, sessionStatus{Name: s.Name, Teams: s.Teams, MapOptions: s.MapOptions})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"waiting":  len(queued),
		"sessions": live,
	})
}

type leaderboardRow struct {
	Rank   int                     `json:"rank"`
	UserID string                  `json:"user_id"`
	Rating float64                 `json:"rating"`
	Sigma  float64                 `json:"sigma"`
	Record matchmaking.PlayerStats `json:"record"`
}

func (a *API) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	qid, ok := a.queueID(w, r)
	if !ok {
		return
	}

	standings, err := a.engine.Leaderboard(qid)
	if err != nil {
		http.Error(w, "queue not found", http.StatusNotFound)
		return
	}

	out := make([]leaderboardRow, 0, len(standings))
	for rank, st := range standings {
		out = append(out, leaderboardRow{
			Rank:   rank + 1,
			UserID: st.UserID,
			Rating: st.Data.Rating.Mu,
			Sigma:  st.Data.Rating.Sigma,
			Record: st.Data.Stats,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) handleHistory(w http.ResponseWriter, r *http.Request) {
	qid, ok := a.queueID(w, r)
	if !ok {
		return
	}
	if a.db == nil {
		http.Error(w, "history unavailable", http.StatusServiceUnavailable)
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	matches, err := a.db.RecentMatches(r.Context(), qid, limit)
	if err != nil {
		http.Error(w, "failed to load history", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

func (a *API) handleOwnStats(w http.ResponseWriter, r *http.Request) {
	qid, ok := a.queueID(w, r)
	if !ok {
		return
	}
	claims := claimsFrom(r)
	if claims == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	pd, err := a.engine.Stats(qid, claims.UserID)
	if err != nil {
		http.Error(w, "queue not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":  claims.UserID,
		"username": claims.Username,
		"rating":   pd.Rating,
		"record":   pd.Stats,
	})
}
