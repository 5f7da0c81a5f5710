package dal

// TriState is a boolean flag that also knows whether it was supplied at all.
// The write path preserves the distinction between "false" and "not present"
// so partial updates only touch supplied fields.
type TriState int

const (
	TriUnknown TriState = iota
	TriFalse
	TriTrue
)

// Int coerces to the 0/1 stored form. Only meaningful when Known.
func (ts TriState) Int() int {
	if ts == TriTrue {
		return 1
	}
	return 0
}

func (ts TriState) Known() bool {
	return ts != TriUnknown
}

func TriOf(b bool) TriState {
	if b {
		return TriTrue
	}
	return TriFalse
}

// Values is the field set of an insert or update request. The concrete type
// must match the table family the uri addresses.
type Values interface {
	isValues()
}

// MsgValues carries the optional fields of a message write. Nil pointer /
// TriUnknown means "not supplied". The flag fields are destined for the
// msg_of_user table; SplitValues pulls them apart.
type MsgValues struct {
	MsgOid          *string
	OriginId        *int64
	AuthorId        *int64
	SenderId        *int64
	Body            *string
	Via             *string
	InReplyToMsgId  *int64
	InReplyToUserId *int64
	RecipientId     *int64
	CreatedDate     *int64
	SentDate        *int64

	Subscribed TriState
	Favorited  TriState
	Reblogged  TriState
	ReblogOid  *string
	Mentioned  TriState
	Replied    TriState
	Directed   TriState
}

func (*MsgValues) isValues() {}

// UserValues carries the optional fields of a user write, including the
// per-timeline "last seen" cursors.
type UserValues struct {
	UserOid     *string
	OriginId    *int64
	Username    *string
	AvatarUrl   *string
	CreatedDate *int64

	HomeTimelineMsgId      *int64
	HomeTimelineDate       *int64
	FavoritesTimelineMsgId *int64
	FavoritesTimelineDate  *int64
	DirectTimelineMsgId    *int64
	DirectTimelineDate     *int64
	MentionsTimelineMsgId  *int64
	MentionsTimelineDate   *int64
	UserTimelineMsgId      *int64
	UserTimelineDate       *int64
}

func (*UserValues) isValues() {}

// colArgs accumulates the column/argument pairs of a dynamic statement.
type colArgs struct {
	cols []string
	args []any
}

func (ca *colArgs) add(col string, arg any) {
	ca.cols = append(ca.cols, col)
	ca.args = append(ca.args, arg)
}

func (ca *colArgs) addStr(col string, val *string) {
	if val != nil {
		ca.add(col, *val)
	}
}

func (ca *colArgs) addInt(col string, val *int64) {
	if val != nil {
		ca.add(col, *val)
	}
}

func (ca *colArgs) addTri(col string, val TriState) {
	if val.Known() {
		ca.add(col, val.Int())
	}
}

func (ca *colArgs) empty() bool {
	return len(ca.cols) == 0
}

// msgColArgs classifies the message-table fields of vals.
func msgColArgs(vals *MsgValues) *colArgs {
	ca := &colArgs{}
	ca.addStr(ColMsgOid, vals.MsgOid)
	ca.addInt(ColOriginId, vals.OriginId)
	ca.addInt(ColAuthorId, vals.AuthorId)
	ca.addInt(ColSenderId, vals.SenderId)
	ca.addStr(ColBody, vals.Body)
	ca.addStr(ColVia, vals.Via)
	ca.addInt(ColInReplyToMsgId, vals.InReplyToMsgId)
	ca.addInt(ColInReplyToUserId, vals.InReplyToUserId)
	ca.addInt(ColRecipientId, vals.RecipientId)
	ca.addInt(ColCreatedDate, vals.CreatedDate)
	ca.addInt(ColSentDate, vals.SentDate)
	return ca
}

// flagColArgs classifies the junction-table fields of vals. Returns nil when
// no flags row is called for (account id zero); an empty result still means
// "record the relationship row", just with no flags set.
func flagColArgs(vals *MsgValues, accountId int64) *colArgs {
	if accountId == 0 {
		return nil
	}
	ca := &colArgs{}
	ca.addTri(ColSubscribed, vals.Subscribed)
	ca.addTri(ColFavorited, vals.Favorited)
	ca.addTri(ColReblogged, vals.Reblogged)
	ca.addStr(ColReblogOid, vals.ReblogOid)
	ca.addTri(ColMentioned, vals.Mentioned)
	ca.addTri(ColReplied, vals.Replied)
	ca.addTri(ColDirected, vals.Directed)
	return ca
}

// hasFlagFields says whether any junction-table field was supplied.
func (mv *MsgValues) hasFlagFields() bool {
	return mv.Subscribed.Known() || mv.Favorited.Known() || mv.Reblogged.Known() ||
		mv.ReblogOid != nil || mv.Mentioned.Known() || mv.Replied.Known() || mv.Directed.Known()
}

func userColArgs(vals *UserValues, avatarRef func(string) string) *colArgs {
	ca := &colArgs{}
	ca.addStr(ColUserOid, vals.UserOid)
	ca.addInt(ColOriginId, vals.OriginId)
	ca.addStr(ColUsername, vals.Username)
	if vals.AvatarUrl != nil {
		ca.add(ColAvatarBlob, avatarRef(*vals.AvatarUrl))
	}
	ca.addInt(ColCreatedDate, vals.CreatedDate)
	ca.addInt(ColHomeTimelineMsgId, vals.HomeTimelineMsgId)
	ca.addInt(ColHomeTimelineDate, vals.HomeTimelineDate)
	ca.addInt(ColFavoritesTimelineMsgId, vals.FavoritesTimelineMsgId)
	ca.addInt(ColFavoritesTimelineDate, vals.FavoritesTimelineDate)
	ca.addInt(ColDirectTimelineMsgId, vals.DirectTimelineMsgId)
	ca.addInt(ColDirectTimelineDate, vals.DirectTimelineDate)
	ca.addInt(ColMentionsTimelineMsgId, vals.MentionsTimelineMsgId)
	ca.addInt(ColMentionsTimelineDate, vals.MentionsTimelineDate)
	ca.addInt(ColUserTimelineMsgId, vals.UserTimelineMsgId)
	ca.addInt(ColUserTimelineDate, vals.UserTimelineDate)
	return ca
}
