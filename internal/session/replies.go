package session

// Server reply texts.  Clients match on these, so they are exact.
const (
	ReplyRecipientPrompt  = "Enter the username of the person you want to connect with:"
	ReplyNoUsersFound     = "No users found with that name."
	ReplyMultipleHeader   = "Multiple users found. Please choose a UUID:"
	ReplyConnectedPrefix  = "Connected to "
	ReplyUserNotFound     = "User UUID not found"
	ReplyInvalidChoice    = "Invalid UUID. Please try again."
	ReplySentPrefix       = "Message sent to "
	ReplyRecipientOffline = "The recipient is no longer online."
	ReplyNotConnected     = "You are not connected to anyone yet."
)

// anonymousName labels chat payloads from a session with no name.
const anonymousName = "anon"
