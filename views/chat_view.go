package views

import (
	"fmt"

	"satex_server/models"
)

// ChatTab is the channel-kind axis of the chat view.
type ChatTab string

const (
	TabGlobal  ChatTab = "global"
	TabFriends ChatTab = "friends"
)

// ChatState is the snapshot the chat renderer works from: which tab is
// active, which direct target (if any) is open, and the cached
// collections behind both panes.
type ChatState struct {
	Tab        ChatTab
	TargetID   string
	TargetName string
	SelfID     string

	GlobalMessages []models.Message // newest-first as delivered
	DirectMessages []models.Message // oldest-first as delivered
	Friends        []models.FriendEdge
	Threads        []models.ChatThread
	OnlineIDs      map[string]bool
	OnlineCount    int
}

// MessageRow is one rendered transcript line.
type MessageRow struct {
	SenderID   string
	SenderName string
	Avatar     string
	Text       string
	Mine       bool
}

// SideEntry is one row of the side list: a friend with presence and
// thread summary on the friends tab, nothing on the global tab.
type SideEntry struct {
	UserID      string
	Name        string
	Avatar      string
	LastMessage string
	Unread      int
	Online      bool
}

// ChatViewModel is the full rendered description of the chat panel.
// Renderers replace the whole transcript on every update instead of
// merging rows in.
type ChatViewModel struct {
	ActiveTab    ChatTab
	TargetID     string
	InputEnabled bool
	Placeholder  string
	LobbyLabel   string
	Messages     []MessageRow
	SideList     []SideEntry
}

// BuildChatView computes the chat panel from a state snapshot. Pure: no
// fetching, no side effects.
func BuildChatView(state ChatState) ChatViewModel {
	vm := ChatViewModel{ActiveTab: state.Tab, TargetID: state.TargetID}

	switch state.Tab {
	case TabFriends:
		vm.SideList = buildFriendList(state)
		if state.TargetID == "" {
			vm.InputEnabled = false
			vm.Placeholder = "Select a friend to chat"
			return vm
		}
		vm.InputEnabled = true
		vm.Placeholder = fmt.Sprintf("Message %s...", state.TargetName)
		// Direct transcripts arrive oldest-first and render as delivered.
		for _, msg := range state.DirectMessages {
			vm.Messages = append(vm.Messages, messageRow(msg, state.SelfID))
		}
	default:
		vm.InputEnabled = true
		vm.Placeholder = "Type a message..."
		vm.LobbyLabel = fmt.Sprintf("GLOBAL CHANNEL · %d Users Online", state.OnlineCount)
		// Global history arrives newest-first; display is newest-last.
		for i := len(state.GlobalMessages) - 1; i >= 0; i-- {
			vm.Messages = append(vm.Messages, messageRow(state.GlobalMessages[i], state.SelfID))
		}
	}
	return vm
}

func messageRow(msg models.Message, selfID string) MessageRow {
	return MessageRow{
		SenderID:   msg.SenderID,
		SenderName: msg.SenderName,
		Avatar:     msg.Avatar,
		Text:       msg.Text,
		Mine:       msg.SenderID == selfID,
	}
}

// buildFriendList merges the friend edges with thread summaries so each
// row carries last message and unread count alongside presence.
func buildFriendList(state ChatState) []SideEntry {
	byPeer := make(map[string]models.ChatThread, len(state.Threads))
	for _, thread := range state.Threads {
		byPeer[thread.PeerID] = thread
	}

	entries := make([]SideEntry, 0, len(state.Friends))
	for _, friend := range state.Friends {
		entry := SideEntry{
			UserID: friend.FriendID,
			Name:   friend.Username,
			Avatar: friend.Avatar,
			Online: state.OnlineIDs[friend.FriendID],
		}
		if thread, ok := byPeer[friend.FriendID]; ok {
			entry.LastMessage = thread.LastMessage
			entry.Unread = thread.Unread
		}
		entries = append(entries, entry)
	}
	return entries
}
