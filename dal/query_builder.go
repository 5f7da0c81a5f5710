package dal

import (
	"fmt"
	"strings"

	"timeline_store/shared"
)

// msgProjectionColumns fixes the order of the full message projection.
var msgProjectionColumns = []string{
	ColId, ColMsgId, ColOriginId, ColMsgOid,
	ColAuthorId, ColAuthorName, ColSenderId, ColSenderName,
	ColBody, ColVia,
	ColInReplyToMsgId, ColInReplyToUserId, ColInReplyToName,
	ColRecipientId, ColRecipientName,
	ColUserId, ColSubscribed, ColFavorited, ColReblogged, ColReblogOid,
	ColMentioned, ColReplied, ColDirected,
	ColCreatedDate, ColSentDate, ColInsDate,
}

// msgProjection maps requestable column names to their qualified SQL form.
// All four display-name aliases are always resolvable; absent relations
// come back null from the outer joins.
var msgProjection = map[string]string{
	ColId:              MsgTable + "." + ColId + " AS " + ColId,
	ColMsgId:           MsgTable + "." + ColId + " AS " + ColMsgId,
	ColOriginId:        ColOriginId,
	ColMsgOid:          ColMsgOid,
	ColAuthorId:        ColAuthorId,
	ColAuthorName:      ColAuthorName,
	ColSenderId:        ColSenderId,
	ColSenderName:      ColSenderName,
	ColBody:            ColBody,
	ColVia:             ColVia,
	ColInReplyToMsgId:  ColInReplyToMsgId,
	ColInReplyToUserId: ColInReplyToUserId,
	ColInReplyToName:   ColInReplyToName,
	ColRecipientId:     ColRecipientId,
	ColRecipientName:   ColRecipientName,
	ColUserId:          MsgOfUserTable + "." + ColUserId + " AS " + ColUserId,
	ColSubscribed:      ColSubscribed,
	ColFavorited:       ColFavorited,
	ColReblogged:       ColReblogged,
	ColReblogOid:       ColReblogOid,
	ColMentioned:       ColMentioned,
	ColReplied:         ColReplied,
	ColDirected:        ColDirected,
	ColCreatedDate:     MsgTable + "." + ColCreatedDate + " AS " + ColCreatedDate,
	ColSentDate:        ColSentDate,
	ColInsDate:         MsgTable + "." + ColInsDate + " AS " + ColInsDate,
}

var userProjectionColumns = []string{
	ColId, ColUserId, ColOriginId, ColUserOid, ColUsername, ColAvatarBlob,
	ColCreatedDate, ColInsDate,
	ColHomeTimelineMsgId, ColHomeTimelineDate,
	ColFavoritesTimelineMsgId, ColFavoritesTimelineDate,
	ColDirectTimelineMsgId, ColDirectTimelineDate,
	ColMentionsTimelineMsgId, ColMentionsTimelineDate,
	ColUserTimelineMsgId, ColUserTimelineDate,
}

var userProjection = map[string]string{
	ColId:                     UserTable + "." + ColId + " AS " + ColId,
	ColUserId:                 UserTable + "." + ColId + " AS " + ColUserId,
	ColOriginId:               ColOriginId,
	ColUserOid:                ColUserOid,
	ColUsername:               ColUsername,
	ColAvatarBlob:             ColAvatarBlob,
	ColCreatedDate:            ColCreatedDate,
	ColInsDate:                ColInsDate,
	ColHomeTimelineMsgId:      ColHomeTimelineMsgId,
	ColHomeTimelineDate:       ColHomeTimelineDate,
	ColFavoritesTimelineMsgId: ColFavoritesTimelineMsgId,
	ColFavoritesTimelineDate:  ColFavoritesTimelineDate,
	ColDirectTimelineMsgId:    ColDirectTimelineMsgId,
	ColDirectTimelineDate:     ColDirectTimelineDate,
	ColMentionsTimelineMsgId:  ColMentionsTimelineMsgId,
	ColMentionsTimelineDate:   ColMentionsTimelineDate,
	ColUserTimelineMsgId:      ColUserTimelineMsgId,
	ColUserTimelineDate:       ColUserTimelineDate,
}

const (
	defaultMsgOrder  = MsgTable + "." + ColCreatedDate + " DESC"
	defaultUserOrder = ColUsername + " ASC"
)

// tablesForTimeline builds the FROM clause of a timeline query. A combined
// timeline (or account id zero) must show all known messages, so the flags
// table is outer-joined; a per-account timeline must only show messages with
// a relationship row for that account, so it is inner-joined and filtered.
// The four user joins project the display names; they stay outer joins so
// missing relations yield nulls rather than dropping the message.
func tablesForTimeline(accountId int64, isCombined bool) (string, []any) {
	var args []any
	tables := MsgTable
	if isCombined || accountId == 0 {
		tables += " LEFT OUTER JOIN " + MsgOfUserTable + " ON " +
			MsgTable + "." + ColId + "=" + MsgOfUserTable + "." + ColMsgId
	} else {
		tables += " INNER JOIN " + MsgOfUserTable + " ON " +
			MsgTable + "." + ColId + "=" + MsgOfUserTable + "." + ColMsgId +
			" AND " + MsgOfUserTable + "." + ColUserId + "=?"
		args = append(args, accountId)
	}
	userJoins := []struct {
		alias   string
		nameCol string
		joinCol string
	}{
		{"author", ColAuthorName, ColAuthorId},
		{"sender", ColSenderName, ColSenderId},
		{"prevauthor", ColInReplyToName, ColInReplyToUserId},
		{"recipient", ColRecipientName, ColRecipientId},
	}
	for _, uj := range userJoins {
		tables = "(" + tables + ") LEFT OUTER JOIN (SELECT " +
			ColId + ", " + ColUsername + " AS " + uj.nameCol +
			" FROM " + UserTable + ") AS " + uj.alias + " ON " +
			MsgTable + "." + uj.joinCol + "=" + uj.alias + "." + ColId
	}
	return tables, args
}

func buildProjection(requested []string, projMap map[string]string, allCols []string) (string, error) {
	if len(requested) == 0 {
		requested = allCols
	}
	parts := make([]string, 0, len(requested))
	for _, col := range requested {
		expr, ok := projMap[col]
		if !ok {
			return "", fmt.Errorf("%w: unknown projection column %q", ErrInvalidArgument, col)
		}
		parts = append(parts, expr)
	}
	return strings.Join(parts, ", "), nil
}

// buildTimelineSelect assembles the SELECT for the timeline uri family.
// Search terms are bound as parameters, never concatenated into the
// statement.
func buildTimelineSelect(m shared.MatchedUri, projection []string,
	selection string, selectionArgs []any, sortOrder string) (string, []any, error) {

	proj, err := buildProjection(projection, msgProjection, msgProjectionColumns)
	if err != nil {
		return "", nil, err
	}
	tables, args := tablesForTimeline(m.Timeline.AccountId, m.Timeline.IsCombined)

	var where []string
	switch m.Kind {
	case shared.MatchTimeline:
		// no extra filter
	case shared.MatchTimelineMsg:
		where = append(where, MsgTable+"."+ColId+"=?")
		args = append(args, m.Timeline.MsgId)
	case shared.MatchTimelineSearch:
		where = append(where, "("+ColAuthorName+" LIKE ? OR "+ColBody+" LIKE ?)")
		term := "%" + m.Timeline.SearchQuery + "%"
		args = append(args, term, term)
	default:
		return "", nil, fmt.Errorf("%w: %s", ErrUnsupportedOperation, m.Kind)
	}
	if selection != "" {
		where = append(where, "("+selection+")")
		args = append(args, selectionArgs...)
	}

	orderBy := sortOrder
	if orderBy == "" {
		orderBy = defaultMsgOrder
	}

	sqlStr := "SELECT " + proj + " FROM " + tables
	if len(where) > 0 {
		sqlStr += " WHERE " + strings.Join(where, " AND ")
	}
	sqlStr += " ORDER BY " + orderBy
	return sqlStr, args, nil
}

func buildUsersSelect(m shared.MatchedUri, projection []string,
	selection string, selectionArgs []any, sortOrder string) (string, []any, error) {

	proj, err := buildProjection(projection, userProjection, userProjectionColumns)
	if err != nil {
		return "", nil, err
	}

	var where []string
	var args []any
	if m.Kind == shared.MatchUserId {
		where = append(where, UserTable+"."+ColId+"=?")
		args = append(args, m.UserId)
	}
	if selection != "" {
		where = append(where, "("+selection+")")
		args = append(args, selectionArgs...)
	}

	orderBy := sortOrder
	if orderBy == "" {
		orderBy = defaultUserOrder
	}

	sqlStr := "SELECT " + proj + " FROM " + UserTable
	if len(where) > 0 {
		sqlStr += " WHERE " + strings.Join(where, " AND ")
	}
	sqlStr += " ORDER BY " + orderBy
	return sqlStr, args, nil
}

func buildMsgCount(selection string, selectionArgs []any) (string, []any) {
	sqlStr := "SELECT count(*) AS cnt FROM " + MsgTable
	if selection != "" {
		sqlStr += " WHERE " + selection
	}
	return sqlStr, selectionArgs
}
