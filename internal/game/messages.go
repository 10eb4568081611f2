package game

import (
	"fmt"
	"strings"
)

// Fixed texts sent by the orchestrator.
const (
	MsgWelcome        = "👋 Hi! I'm your Word Clash bot.\nChoose a game mode by adding me to your group."
	MsgChooseMode     = "🎮 Choose a game mode:"
	MsgNotEnough      = "😴 Not enough players. Game cancelled."
	MsgLeaderPrompt   = "📝 You are the leader!\nSend `/word yourword` to set the secret word."
	MsgWordAccepted   = "✅ Word set successfully!"
	MsgWordBroadcast  = "💡 Word is set! Players, start guessing!"
	MsgProvideWord    = "❌ Please provide a word."
	MsgJoined         = "🎯 Joined!"
	MsgAlreadyJoined  = "😏 Already joined."
	MsgJoinClosed     = "🚫 Join time is over."
	MsgModeSelected   = "✅ Mode selected"
	MsgInvalidButton  = "❌ Invalid action"
	noPlayersYet      = "_None yet_"
	leaderboardHeader = "🏆 Final Leaderboard:\n"
)

// FormatLobbyMessage renders the join status shown while the lobby is open.
func FormatLobbyMessage(mode Mode, remainingSeconds int, players []Player) string {
	return fmt.Sprintf("🎮 *New Game (%s Mode)*\nYou have *%d seconds* to join.\n\nPlayers: %s",
		mode.Title(), remainingSeconds, FormatPlayerList(players))
}

// FormatPlayerList renders joined players as "@a, @b" or a placeholder.
func FormatPlayerList(players []Player) string {
	if len(players) == 0 {
		return noPlayersYet
	}
	names := make([]string, len(players))
	for i, p := range players {
		names[i] = "@" + EscapeMarkdown(p.Name)
	}
	return strings.Join(names, ", ")
}

var markdownEscaper = strings.NewReplacer(
	"_", `\_`,
	"*", `\*`,
	"`", "\\`",
	"[", `\[`,
)

// EscapeMarkdown escapes the characters legacy Telegram Markdown treats as
// entity delimiters.
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// FormatRestartNotice announces a restart countdown.
func FormatRestartNotice(delaySeconds int) string {
	return fmt.Sprintf("♻ Game restarting in %d seconds...", delaySeconds)
}

// FormatLeaderAnnouncement announces the rapid-mode leader.
func FormatLeaderAnnouncement(leader Player) string {
	return fmt.Sprintf("👑 Leader: @%s! (Check your DM)", leader.Name)
}

// FormatRoundAnnouncement announces a round and its leader.
func FormatRoundAnnouncement(round int, leader Player) string {
	return fmt.Sprintf("🎯 Round %d\n👑 Leader: @%s! (Check your DM)", round, leader.Name)
}
