package consts

// TraceKey global trace id
const TraceKey string = "x-collab-trace"

// UserKey global user id
const UserKey string = "x-collab-uid"

// Document store collections
const (
	UsersCollection        = "users"
	TasksCollection        = "tasks"
	GroupsCollection       = "groups"
	GroupMembersCollection = "group_members"
	MessagesCollection     = "messages"
	ReceiptsCollection     = "read_receipts"
	TypingCollection       = "typing_status"
)

// Document field names used by ownership filters
const (
	FieldUserID   = "userId"
	FieldSenderID = "senderId"
	FieldChatID   = "chatId"
)
