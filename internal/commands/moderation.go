package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"github.com/matchbot-dev/matchbot/internal/matchmaking"
)

// sessionOf finds the live session a participant is playing in.
func sessionOf(deps *Deps, queueID uuid.UUID, user string) (matchmaking.SessionInfo, bool) {
	sessions, err := deps.Engine.Sessions(queueID)
	if err != nil {
		return matchmaking.SessionInfo{}, false
	}
	for _, s := range sessions {
		for _, team := range s.Teams {
			for _, member := range team {
				if member == user {
					return s, true
				}
			}
		}
	}
	return matchmaking.SessionInfo{}, false
}

func HandleMarkLeaver(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps) {
	opts := optionMap(i.ApplicationCommandData().Options)
	qid, ok := resolveQueue(deps, i, opts)
	if !ok {
		respondEphemeral(s, i, "No matchmaking queue is set up here.")
		return
	}

	target := opts["user"].UserValue(s)
	if target == nil {
		respondEphemeral(s, i, "Pick who to flag.")
		return
	}
	flagger := invokerID(i)

	info, ok := sessionOf(deps, qid, flagger)
	if !ok {
		respondEphemeral(s, i, "You are not in a session.")
		return
	}

	window, err := deps.Engine.FlagLeaver(qid, info.ID, flagger, target.ID)
	switch {
	case errors.Is(err, matchmaking.ErrNotAParticipant):
		respondEphemeral(s, i, "They are not in your session.")
		return
	case err != nil:
		respondEphemeral(s, i, fmt.Sprintf("Could not flag: %v", err))
		return
	}

	respond(s, i, fmt.Sprintf(
		"<@%s> has been flagged as a leaver. They have %s to confirm with /present.",
		target.ID, window.Round(time.Second)))
}

func HandlePresent(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps) {
	opts := optionMap(i.ApplicationCommandData().Options)
	qid, ok := resolveQueue(deps, i, opts)
	if !ok {
		respondEphemeral(s, i, "No matchmaking queue is set up here.")
		return
	}
	user := invokerID(i)

	info, ok := sessionOf(deps, qid, user)
	if !ok {
		respondEphemeral(s, i, "You are not in a session.")
		return
	}
	if err := deps.Engine.ConfirmPresence(qid, info.ID, user); err != nil {
		respondEphemeral(s, i, fmt.Sprintf("Could not confirm: %v", err))
		return
	}
	respond(s, i, "Presence confirmed.")
}

func HandleBan(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps) {
	opts := optionMap(i.ApplicationCommandData().Options)
	qid, ok := resolveQueue(deps, i, opts)
	if !ok {
		respondEphemeral(s, i, "No matchmaking queue is set up here.")
		return
	}

	target := opts["user"].UserValue(s)
	if target == nil {
		respondEphemeral(s, i, "Pick who to ban.")
		return
	}

	var until *time.Time
	if opt, ok := opts["duration"]; ok {
		d, err := time.ParseDuration(opt.StringValue())
		if err != nil || d <= 0 {
			respondEphemeral(s, i, "Duration must look like 24h or 30m.")
			return
		}
		t := time.Now().Add(d)
		until = &t
	}
	var reason string
	if opt, ok := opts["reason"]; ok {
		reason = opt.StringValue()
	}
	var shadow bool
	if opt, ok := opts["shadow"]; ok {
		shadow = opt.BoolValue()
	}

	if err := deps.Engine.Ban(qid, target.ID, until, reason, shadow); err != nil {
		respondEphemeral(s, i, fmt.Sprintf("Could not ban: %v", err))
		return
	}
	if shadow {
		// Keep shadow bans invisible to the channel.
		respondEphemeral(s, i, fmt.Sprintf("<@%s> is shadow banned.", target.ID))
		return
	}
	if until != nil {
		respond(s, i, fmt.Sprintf("<@%s> is banned until <t:%d>.", target.ID, until.Unix()))
		return
	}
	respond(s, i, fmt.Sprintf("<@%s> is banned.", target.ID))
}

func HandleUnban(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps) {
	opts := optionMap(i.ApplicationCommandData().Options)
	qid, ok := resolveQueue(deps, i, opts)
	if !ok {
		respondEphemeral(s, i, "No matchmaking queue is set up here.")
		return
	}
	target := opts["user"].UserValue(s)
	if target == nil {
		respondEphemeral(s, i, "Pick who to unban.")
		return
	}
	if err := deps.Engine.Unban(qid, target.ID); err != nil {
		respondEphemeral(s, i, fmt.Sprintf("Could not unban: %v", err))
		return
	}
	respond(s, i, fmt.Sprintf("<@%s> is unbanned.", target.ID))
}

func HandleListBans(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps) {
	opts := optionMap(i.ApplicationCommandData().Options)
	qid, ok := resolveQueue(deps, i, opts)
	if !ok {
		respondEphemeral(s, i, "No matchmaking queue is set up here.")
		return
	}
	bans, err := deps.Engine.Bans(qid)
	if err != nil {
		respondEphemeral(s, i, fmt.Sprintf("Could not list bans: %v", err))
		return
	}
	if len(bans) == 0 {
		respondEphemeral(s, i, "No active bans.")
		return
	}
	var body strings.Builder
	for _, b := range bans {
		fmt.Fprintf(&body, "<@%s>", b.UserID)
		if b.Ban.EndTime != nil {
			fmt.Fprintf(&body, " until <t:%d>", b.Ban.EndTime.Unix())
		}
		if b.Ban.Shadow {
			body.WriteString(" (shadow)")
		}
		if b.Ban.Reason != "" {
			fmt.Fprintf(&body, " — %s", b.Ban.Reason)
		}
		body.WriteString("\n")
	}
	respondEphemeral(s, i, body.String())
}

func HandleListLeavers(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps) {
	opts := optionMap(i.ApplicationCommandData().Options)
	qid, ok := resolveQueue(deps, i, opts)
	if !ok {
		respondEphemeral(s, i, "No matchmaking queue is set up here.")
		return
	}
	leavers, err := deps.Engine.Leavers(qid)
	if err != nil {
		respondEphemeral(s, i, fmt.Sprintf("Could not list leavers: %v", err))
		return
	}
	if len(leavers) == 0 {
		respondEphemeral(s, i, "No confirmed leavers.")
		return
	}
	var body strings.Builder
	for _, l := range leavers {
		fmt.Fprintf(&body, "<@%s>: %d\n", l.UserID, l.Count)
	}
	respondEphemeral(s, i, body.String())
}

func HandleForceOutcome(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps) {
	opts := optionMap(i.ApplicationCommandData().Options)
	qid, ok := resolveQueue(deps, i, opts)
	if !ok {
		respondEphemeral(s, i, "No matchmaking queue is set up here.")
		return
	}

	sessionID := uint64(opts["session"].IntValue())
	outcome, err := parseOutcome(opts["outcome"].StringValue())
	if err != nil {
		respondEphemeral(s, i, err.Error())
		return
	}

	err = deps.Engine.ForceOutcome(qid, sessionID, outcome)
	if errors.Is(err, matchmaking.ErrNoSuchSession) {
		respondEphemeral(s, i, fmt.Sprintf("Session #%d is not live.", sessionID))
		return
	}
	if err != nil {
		respondEphemeral(s, i, fmt.Sprintf("Could not resolve: %v", err))
		return
	}
	respond(s, i, fmt.Sprintf("Session #%d resolved: %s.", sessionID, outcome))
}

func parseOutcome(v string) (matchmaking.Outcome, error) {
	switch {
	case v == "tie":
		return matchmaking.Tie, nil
	case v == "cancel":
		return matchmaking.Cancelled, nil
	case strings.HasPrefix(v, "win:"):
		team, err := strconv.Atoi(strings.TrimPrefix(v, "win:"))
		if err != nil {
			return matchmaking.Outcome{}, fmt.Errorf("bad outcome %q", v)
		}
		return matchmaking.Win(team), nil
	}
	return matchmaking.Outcome{}, fmt.Errorf("bad outcome %q", v)
}
