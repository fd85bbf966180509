package socket

import (
	"log"

	"satex_server/events"

	socketio "github.com/googollee/go-socket.io"
)

const portalRoom = "portal"

// NewSocketServer initializes the Socket.IO server. Connected clients
// join the shared portal room plus any chat-channel rooms they ask for.
func NewSocketServer() *socketio.Server {
	server := socketio.NewServer(nil)

	server.OnConnect("/", func(c socketio.Conn) error {
		log.Println("✅ Socket connected:", c.ID())
		c.Join(portalRoom)
		return nil
	})

	server.OnEvent("/", "join", func(c socketio.Conn, channelID string) {
		if channelID == "" {
			log.Println("❌ Invalid channelId in join request")
			return
		}
		log.Printf("👥 Socket %s joined channel %s", c.ID(), channelID)
		c.Join(channelID)
	})

	server.OnEvent("/", "leave", func(c socketio.Conn, channelID string) {
		if channelID != "" {
			c.Leave(channelID)
		}
	})

	server.OnError("/", func(c socketio.Conn, err error) {
		log.Printf("❌ Socket error: %v", err)
	})

	server.OnDisconnect("/", func(c socketio.Conn, reason string) {
		log.Println("❌ Socket disconnected:", c.ID(), reason)
	})

	return server
}

// roomBroadcaster is the slice of the socket server Bridge needs.
type roomBroadcaster interface {
	BroadcastToRoom(namespace string, room, event string, args ...interface{}) bool
}

// Bridge re-broadcasts bus events to connected clients. Topic names
// double as socket event names. Direct-chat snapshots go only to their
// channel room, never the shared portal room, so clients that have not
// joined the conversation never see its transcript. Returns the
// unsubscribe funcs.
func Bridge(bus *events.Bus, server roomBroadcaster) []func() {
	emit := func(event events.Event) {
		server.BroadcastToRoom("/", portalRoom, event.Topic(), event)
	}

	var unsubs []func()
	for _, topic := range []string{
		events.TopicAuthStateChanged,
		events.TopicProfileUpdated,
		events.TopicFriendsUpdated,
		events.TopicRequestsUpdated,
		events.TopicOnlineUsersUpdated,
		events.TopicGlobalChatUpdated,
		events.TopicDMThreadsUpdated,
		events.TopicFeedUpdated,
		events.TopicServiceError,
	} {
		unsubs = append(unsubs, bus.Subscribe(topic, emit))
	}

	unsubs = append(unsubs, bus.Subscribe(events.TopicDirectChatUpdated, func(event events.Event) {
		update, ok := event.(events.DirectChatUpdated)
		if !ok || update.ChannelID == "" {
			return
		}
		server.BroadcastToRoom("/", update.ChannelID, update.Topic(), update)
	}))

	return unsubs
}
