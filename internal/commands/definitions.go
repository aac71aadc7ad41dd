package commands

import "github.com/bwmarrin/discordgo"

func GetCommands() []*discordgo.ApplicationCommand {
	manageGuild := int64(discordgo.PermissionManageServer)

	return []*discordgo.ApplicationCommand{
		{
			Name:         "queue",
			Description:  "Join, leave or inspect the matchmaking queue",
			DMPermission: boolPtr(false),
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "join",
					Description: "Enter the queue (your whole party joins with you)",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "queue",
							Description: "Queue id when the guild has more than one",
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "leave",
					Description: "Leave the queue",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "queue",
							Description: "Queue id when the guild has more than one",
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "list",
					Description: "Show who is waiting",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "queue",
							Description: "Queue id when the guild has more than one",
						},
					},
				},
			},
		},
		{
			Name:         "party",
			Description:  "Group up so the composer keeps you on one team",
			DMPermission: boolPtr(false),
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "invite",
					Description: "Invite someone to your party",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "Who to invite",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "leave",
					Description: "Leave your party",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "list",
					Description: "Show your party",
				},
			},
		},
		{
			Name:         "mark_leaver",
			Description:  "Flag a participant who left the session",
			DMPermission: boolPtr(false),
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "The suspected leaver",
					Required:    true,
				},
			},
		},
		{
			Name:         "present",
			Description:  "Confirm you are still in your session",
			DMPermission: boolPtr(false),
		},
		{
			Name:                     "ban",
			Description:              "Ban a participant from the queue",
			DMPermission:             boolPtr(false),
			DefaultMemberPermissions: &manageGuild,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "Who to ban",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "duration",
					Description: "For how long, e.g. 24h or 30m (omit for permanent)",
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "reason",
					Description: "Shown to the participant when they try to queue",
				},
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "shadow",
					Description: "Let them queue but never match them",
				},
			},
		},
		{
			Name:                     "unban",
			Description:              "Lift a queue ban",
			DMPermission:             boolPtr(false),
			DefaultMemberPermissions: &manageGuild,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "Who to unban",
					Required:    true,
				},
			},
		},
		{
			Name:                     "list_bans",
			Description:              "List active queue bans",
			DMPermission:             boolPtr(false),
			DefaultMemberPermissions: &manageGuild,
		},
		{
			Name:                     "list_leavers",
			Description:              "List participants with confirmed leaves",
			DMPermission:             boolPtr(false),
			DefaultMemberPermissions: &manageGuild,
		},
		{
			Name:                     "force_outcome",
			Description:              "Resolve a session without a vote",
			DMPermission:             boolPtr(false),
			DefaultMemberPermissions: &manageGuild,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "session",
					Description: "Session number, e.g. 12 for #12",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "outcome",
					Description: "The result to record",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Team 1 won", Value: "win:0"},
						{Name: "Team 2 won", Value: "win:1"},
						{Name: "Team 3 won", Value: "win:2"},
						{Name: "Team 4 won", Value: "win:3"},
						{Name: "Tie", Value: "tie"},
						{Name: "Cancel", Value: "cancel"},
					},
				},
			},
		},
		{
			Name:         "stats",
			Description:  "Show a participant's rating and record",
			DMPermission: boolPtr(false),
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "Whose stats (defaults to you)",
				},
			},
		},
		{
			Name:         "leaderboard",
			Description:  "Show the queue leaderboard",
			DMPermission: boolPtr(false),
		},
		{
			Name:         "history",
			Description:  "Show recent finished sessions",
			DMPermission: boolPtr(false),
		},
		{
			Name:                     "configure",
			Description:              "Change queue settings",
			DMPermission:             boolPtr(false),
			DefaultMemberPermissions: &manageGuild,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "show",
					Description: "Show the current configuration",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "teams",
					Description: "Set team shape",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "size",
							Description: "Players per team",
							MinValue:    float64Ptr(1),
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "count",
							Description: "Number of teams",
							MinValue:    float64Ptr(2),
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "maps",
					Description: "Set the map pool and ballot",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "pool",
							Description: "Comma-separated map names",
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "ballot",
							Description: "How many maps go up for vote",
							MinValue:    float64Ptr(1),
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "vote_seconds",
							Description: "Seconds before the map vote expires",
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "matchmaking",
					Description: "Set matchmaking thresholds",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionNumber,
							Name:        "max_cost",
							Description: "Highest acceptable assignment cost",
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "leaver_seconds",
							Description: "Leaver confirmation window in seconds",
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "category",
					Description: "Define a match category and its options",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "name",
							Description: "Category name, e.g. region",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "options",
							Description: "Comma-separated options (empty removes the category)",
						},
					},
				},
			},
		},
		{
			Name:         "player_config",
			Description:  "Tune your personal matchmaking preferences",
			DMPermission: boolPtr(false),
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "costs",
					Description: "Override how strict matchmaking is for you",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionNumber,
							Name:        "cost_per_spread",
							Description: "Weight on team rating difference",
						},
						{
							Type:        discordgo.ApplicationCommandOptionNumber,
							Name:        "acceptable_spread",
							Description: "Team rating difference you tolerate for free",
						},
						{
							Type:        discordgo.ApplicationCommandOptionNumber,
							Name:        "cost_per_range",
							Description: "Weight on strongest-vs-weakest gap",
						},
						{
							Type:        discordgo.ApplicationCommandOptionNumber,
							Name:        "acceptable_range",
							Description: "Strongest-vs-weakest gap you tolerate for free",
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "category",
					Description: "Pick which category options you play",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "name",
							Description: "Category name",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "options",
							Description: "Comma-separated option numbers, e.g. 1,3",
							Required:    true,
						},
					},
				},
			},
		},
		{
			Name:                     "setup_queue",
			Description:              "Create a matchmaking queue in this guild",
			DMPermission:             boolPtr(false),
			DefaultMemberPermissions: &manageGuild,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "queue_channel",
					Description: "Voice channel that acts as the queue entrance",
					Required:    true,
					ChannelTypes: []discordgo.ChannelType{
						discordgo.ChannelTypeGuildVoice,
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "announce_channel",
					Description: "Text channel for session posts and results",
					Required:    true,
					ChannelTypes: []discordgo.ChannelType{
						discordgo.ChannelTypeGuildText,
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "category",
					Description: "Category to create session channels under",
					ChannelTypes: []discordgo.ChannelType{
						discordgo.ChannelTypeGuildCategory,
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "team_size",
					Description: "Players per team (default 5)",
					MinValue:    float64Ptr(1),
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "team_count",
					Description: "Number of teams (default 2)",
					MinValue:    float64Ptr(2),
				},
			},
		},
		{
			Name:                     "remove_queue",
			Description:              "Remove a matchmaking queue from this guild",
			DMPermission:             boolPtr(false),
			DefaultMemberPermissions: &manageGuild,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "queue",
					Description: "Queue id (or prefix) when the guild has several",
				},
			},
		},
	}
}

func boolPtr(b bool) *bool {
	return &b
}

func float64Ptr(f float64) *float64 {
	return &f
}
