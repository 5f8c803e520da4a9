package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"showroom/config"
	"showroom/internal/auth"
	"showroom/internal/domain"
	"showroom/internal/models"
	"showroom/internal/observability"
	"showroom/internal/repository"
	"showroom/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var chatUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type joinRoomPayload struct {
	RoomID  uint `json:"roomId"`
	UserID  uint `json:"userId"`
	GroupID uint `json:"groupId"`
}

type sendMessagePayload struct {
	Kind          string `json:"kind"`
	Content       string `json:"content"`
	FileID        string `json:"fileId"`
	FileName      string `json:"fileName"`
	FileSize      int64  `json:"fileSize"`
	FileMimeType  string `json:"fileMimeType"`
	CorrelationID string `json:"correlationId"`
}

type typingEventPayload struct {
	Name string `json:"name"`
}

// UpgradeChatWS serves the group chat socket. After the upgrade the
// client must announce itself with join_room carrying {roomId, userId,
// groupId}; everything else on the connection is room-scoped.
func UpgradeChatWS(cfg *config.JWTConfig, chatHub *ws.ChatHub, chatRepo *repository.ChatRepository, groupRepo *repository.GroupRepository, userRepo *repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}
		claims, err := auth.ParseAccessToken(cfg, token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		conn, err := chatUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		observability.WSConnected("chat")
		defer observability.WSDisconnected("chat")

		conn.SetReadDeadline(time.Now().Add(hubPongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(hubPongWait))
			return nil
		})

		// First frame must be join_room.
		room, client, ok := awaitJoin(conn, claims, chatHub, chatRepo, groupRepo)
		if !ok {
			return
		}
		u, err := userRepo.GetByID(claims.UserID)
		if err != nil {
			return
		}
		room.Join(client)
		defer func() {
			room.Leave(client)
			client.Close()
			chatHub.RemoveRoomIfEmpty(room.RoomID)
		}()
		go writePump(client, conn)

		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				break
			}
			var frame ws.Event
			if json.Unmarshal(raw, &frame) != nil {
				continue
			}
			observability.IncWSEvent("chat", frame.Event)
			switch frame.Event {
			case domain.ChatEventSendMessage:
				handleSendMessage(frame.Data, room, u, chatRepo)
			case domain.ChatEventTypingStart:
				var p typingEventPayload
				if json.Unmarshal(frame.Data, &p) == nil {
					room.SetTyping(client, p.Name, true)
				}
			case domain.ChatEventTypingStop:
				room.SetTyping(client, "", false)
			case domain.ChatEventMarkRead:
				_ = chatRepo.MarkReadUpTo(room.RoomID, claims.UserID)
			}
		}
	}
}

// awaitJoin reads the join_room frame and checks the caller actually
// belongs to the group behind the room.
func awaitJoin(conn *websocket.Conn, claims *auth.Claims, chatHub *ws.ChatHub, chatRepo *repository.ChatRepository, groupRepo *repository.GroupRepository) (*ws.ChatRoom, *ws.Client, bool) {
	_, raw, err := conn.ReadMessage()
	if err != nil {
		return nil, nil, false
	}
	var frame ws.Event
	if json.Unmarshal(raw, &frame) != nil || frame.Event != domain.ChatEventJoinRoom {
		conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"expected join_room"}`))
		return nil, nil, false
	}
	var join joinRoomPayload
	if json.Unmarshal(frame.Data, &join) != nil || join.RoomID == 0 || join.UserID == 0 || join.GroupID == 0 {
		conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"roomId, userId and groupId required"}`))
		return nil, nil, false
	}
	if join.UserID != claims.UserID {
		conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"user mismatch"}`))
		return nil, nil, false
	}
	dbRoom, err := chatRepo.GetRoom(join.RoomID)
	if err != nil || dbRoom.GroupID != join.GroupID {
		conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"room not found"}`))
		return nil, nil, false
	}
	member, err := groupRepo.IsMember(join.GroupID, claims.UserID)
	if err != nil || !member {
		conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"not a member of this group"}`))
		return nil, nil, false
	}
	client := &ws.Client{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   claims.Role,
		Send:   make(chan []byte, 256),
	}
	room := chatHub.GetOrCreateRoom(join.RoomID, join.GroupID)
	return room, client, true
}

func handleSendMessage(data json.RawMessage, room *ws.ChatRoom, sender *models.User, chatRepo *repository.ChatRepository) {
	var p sendMessagePayload
	if json.Unmarshal(data, &p) != nil {
		return
	}
	kind := p.Kind
	switch kind {
	case domain.MessageKindText, domain.MessageKindImage, domain.MessageKindFile:
	default:
		kind = domain.MessageKindText
	}
	// Sender identity is frozen into the row at send time.
	msg := &models.ChatMessage{
		RoomID:        room.RoomID,
		SenderID:      sender.ID,
		SenderName:    sender.FullName,
		SenderEmail:   sender.Email,
		SenderAvatar:  sender.AvatarURL,
		Kind:          kind,
		Content:       p.Content,
		FileID:        p.FileID,
		FileName:      p.FileName,
		FileSize:      p.FileSize,
		FileMimeType:  p.FileMimeType,
		CorrelationID: p.CorrelationID,
	}
	if err := chatRepo.CreateMessage(msg); err != nil {
		return
	}
	room.BroadcastMessage(msg)
}
