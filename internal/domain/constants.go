package domain

const (
	RoleAdmin      = "Admin"
	RoleInstructor = "Instructor"
	RoleStudent    = "Student"
)

// Roles lists every known role. Role checks elsewhere must stay in sync.
var Roles = []string{RoleAdmin, RoleInstructor, RoleStudent}

const (
	NotificationInfo    = "Info"
	NotificationSuccess = "Success"
	NotificationWarning = "Warning"
	NotificationError   = "Error"
)

const (
	MessageKindText  = "text"
	MessageKindImage = "image"
	MessageKindFile  = "file"
)

const (
	ProjectStatusDraft     = "Draft"
	ProjectStatusSubmitted = "Submitted"
	ProjectStatusGraded    = "Graded"
)

const (
	GroupStatusForming = "Forming"
	GroupStatusActive  = "Active"
	GroupStatusClosed  = "Closed"
)

// Notification hub event names. Each client listens on its own
// email-derived channel plus the generic broadcast fallback.
const (
	EventReceiveNotification = "ReceiveNotification"
	userEventPrefix          = "notifications_email_"
)

func UserNotificationEvent(email string) string {
	return userEventPrefix + email
}

// Chat socket events, client to server.
const (
	ChatEventJoinRoom    = "join_room"
	ChatEventSendMessage = "send_message"
	ChatEventTypingStart = "typing_start"
	ChatEventTypingStop  = "typing_stop"
	ChatEventMarkRead    = "mark_read"
)

// Chat socket events, server to client.
const (
	ChatEventNewMessage    = "new_message"
	ChatEventUserTyping    = "user_typing"
	ChatEventMemberOnline  = "member_online"
	ChatEventMemberOffline = "member_offline"
	ChatEventOnlineUsers   = "online_users"
)
