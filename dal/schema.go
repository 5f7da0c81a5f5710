package dal

// Table names.
const (
	MsgTable       = "msgs"
	UserTable      = "users"
	MsgOfUserTable = "msg_of_user"
)

// Columns shared by all tables.
const (
	ColId      = "_id"
	ColInsDate = "ins_date"
)

// Columns of the msgs table.
const (
	ColMsgOid          = "msg_oid"
	ColOriginId        = "origin_id"
	ColAuthorId        = "author_id"
	ColSenderId        = "sender_id"
	ColBody            = "body"
	ColVia             = "via"
	ColInReplyToMsgId  = "in_reply_to_msg_id"
	ColInReplyToUserId = "in_reply_to_user_id"
	ColRecipientId     = "recipient_id"
	ColCreatedDate     = "created_date"
	ColSentDate        = "sent_date"
)

// Columns of the msg_of_user junction table. One row per (message, account);
// absence of a row means "no relationship recorded", not "false".
const (
	ColMsgId      = "msg_id"
	ColUserId     = "user_id"
	ColSubscribed = "subscribed"
	ColFavorited  = "favorited"
	ColReblogged  = "reblogged"
	ColReblogOid  = "reblog_oid"
	ColMentioned  = "mentioned"
	ColReplied    = "replied"
	ColDirected   = "directed"
)

// Columns of the users table.
const (
	ColUserOid    = "user_oid"
	ColUsername   = "username"
	ColAvatarBlob = "avatar_blob"

	ColHomeTimelineMsgId      = "home_timeline_msg_id"
	ColHomeTimelineDate       = "home_timeline_date"
	ColFavoritesTimelineMsgId = "favorites_timeline_msg_id"
	ColFavoritesTimelineDate  = "favorites_timeline_date"
	ColDirectTimelineMsgId    = "direct_timeline_msg_id"
	ColDirectTimelineDate     = "direct_timeline_date"
	ColMentionsTimelineMsgId  = "mentions_timeline_msg_id"
	ColMentionsTimelineDate   = "mentions_timeline_date"
	ColUserTimelineMsgId      = "user_timeline_msg_id"
	ColUserTimelineDate       = "user_timeline_date"
)

// Aliases projected by the four user joins of a timeline query.
const (
	ColAuthorName    = "author_name"
	ColSenderName    = "sender_name"
	ColInReplyToName = "in_reply_to_name"
	ColRecipientName = "recipient_name"
)

// OidKind selects which external id an id-to-oid lookup resolves.
type OidKind int

const (
	OidMsg OidKind = iota
	OidUser
	// OidReblog resolves the external id of the account's reblog action,
	// falling back to the message's own external id when there is none.
	OidReblog
)
