package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

func HandleStats(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps) {
	opts := optionMap(i.ApplicationCommandData().Options)
	qid, ok := resolveQueue(deps, i, opts)
	if !ok {
		respondEphemeral(s, i, "No matchmaking queue is set up here.")
		return
	}

	user := invokerID(i)
	if opt, ok := opts["user"]; ok {
		if u := opt.UserValue(s); u != nil {
			user = u.ID
		}
	}

	pd, err := deps.Engine.Stats(qid, user)
	if err != nil {
		respondEphemeral(s, i, fmt.Sprintf("Could not load stats: %v", err))
		return
	}

	respond(s, i, fmt.Sprintf(
		"<@%s> — rating %.1f ± %.1f, %dW %dL %dD",
		user, pd.Rating.Mu, pd.Rating.Sigma,
		pd.Stats.Wins, pd.Stats.Losses, pd.Stats.Draws))
}

func HandleLeaderboard(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps) {
	opts := optionMap(i.ApplicationCommandData().Options)
	qid, ok := resolveQueue(deps, i, opts)
	if !ok {
		respondEphemeral(s, i, "No matchmaking queue is set up here.")
		return
	}

	standings, err := deps.Engine.Leaderboard(qid)
	if err != nil {
		respondEphemeral(s, i, fmt.Sprintf("Could not load the leaderboard: %v", err))
		return
	}
	if len(standings) == 0 {
		respond(s, i, "Nobody has played yet.")
		return
	}
	if len(standings) > 20 {
		standings = standings[:20]
	}

	var body strings.Builder
	for rank, st := range standings {
		fmt.Fprintf(&body, "%d. <@%s> — %.1f (%dW %dL %dD)\n",
			rank+1, st.UserID, st.Data.Rating.Mu,
			st.Data.Stats.Wins, st.Data.Stats.Losses, st.Data.Stats.Draws)
	}
	respond(s, i, body.String())
}

func HandleHistory(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps) {
	opts := optionMap(i.ApplicationCommandData().Options)
	qid, ok := resolveQueue(deps, i, opts)
	if !ok {
		respondEphemeral(s, i, "No matchmaking queue is set up here.")
		return
	}
	if deps.DB == nil {
		respondEphemeral(s, i, "Match history is not available.")
		return
	}

	matches, err := deps.DB.RecentMatches(context.Background(), qid, 10)
	if err != nil {
		respondEphemeral(s, i, fmt.Sprintf("Could not load history: %v", err))
		return
	}
	if len(matches) == 0 {
		respond(s, i, "No finished sessions yet.")
		return
	}

	var body strings.Builder
	for _, m := range matches {
		fmt.Fprintf(&body, "%s — %s", m.SessionName, m.Outcome)
		if m.MapName != "" {
			fmt.Fprintf(&body, " on %s", m.MapName)
		}
		fmt.Fprintf(&body, " (<t:%d:R>)\n", m.FinishedAt.Unix())
	}
	respond(s, i, body.String())
}
