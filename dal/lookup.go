package dal

import (
	"database/sql"
	"errors"
	"fmt"

	"timeline_store/shared"
)

// The lookup functions return zero-value sentinels (0 / "") when nothing is
// found, because absence is routine for them. Store breakage still comes
// back as an error; "not found" and "query broke" are different answers.

// OidToId translates an origin-assigned external id into our internal id,
// scoped by origin. The uri picks the table: message uris resolve against
// msgs, user uris against users.
func (p *Provider) OidToId(uriStr string, originId int64, oid string) (int64, error) {

	if oid == "" {
		return 0, nil
	}
	m, err := shared.ParseUri(uriStr)
	if err != nil {
		return 0, err
	}

	var sqlStr string
	switch m.Kind {
	case shared.MatchMsg, shared.MatchTimeline:
		sqlStr = "SELECT " + ColId + " FROM " + MsgTable +
			" WHERE " + ColOriginId + "=? AND " + ColMsgOid + "=?"
	case shared.MatchUsers:
		sqlStr = "SELECT " + ColId + " FROM " + UserTable +
			" WHERE " + ColOriginId + "=? AND " + ColUserOid + "=?"
	default:
		return 0, fmt.Errorf("%w: oid lookup via %s", ErrUnsupportedOperation, m.Kind)
	}

	p.muDb.RLock()
	defer p.muDb.RUnlock()

	var id int64
	err = p.db.QueryRow(sqlStr, originId, oid).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v; sql=%q", ErrStoreUnavailable, err, sqlStr)
	}
	p.logger.Debugf("OidToId: %d+%s -> %d", originId, oid, id)
	return id, nil
}

// IdToOid translates an internal id back into the origin's external id.
// For OidReblog the external id of the account's reblog action is returned;
// when there is none the message's own external id serves as the canonical
// remote identity, whether original or reblogged.
func (p *Provider) IdToOid(kind OidKind, msgId int64, accountId int64) (string, error) {

	if msgId <= 0 {
		return "", nil
	}

	var sqlStr string
	var args []any
	switch kind {
	case OidMsg:
		sqlStr = "SELECT " + ColMsgOid + " FROM " + MsgTable + " WHERE " + ColId + "=?"
		args = []any{msgId}
	case OidUser:
		sqlStr = "SELECT " + ColUserOid + " FROM " + UserTable + " WHERE " + ColId + "=?"
		args = []any{msgId}
	case OidReblog:
		if accountId == 0 {
			p.logger.Warnf("IdToOid: reblog lookup for msg %d without an account id", msgId)
		}
		sqlStr = "SELECT " + ColReblogOid + " FROM " + MsgOfUserTable +
			" WHERE " + ColMsgId + "=? AND " + ColUserId + "=?"
		args = []any{msgId, accountId}
	default:
		return "", fmt.Errorf("%w: unknown oid kind %d", ErrInvalidArgument, kind)
	}

	p.muDb.RLock()
	var oid sql.NullString
	err := p.db.QueryRow(sqlStr, args...).Scan(&oid)
	p.muDb.RUnlock()

	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %v; sql=%q", ErrStoreUnavailable, err, sqlStr)
	}
	res := ""
	if err == nil && oid.Valid {
		res = oid.String
	}

	if res == "" && kind == OidReblog {
		// Not a reblogged message; its own external id is the answer.
		return p.IdToOid(OidMsg, msgId, 0)
	}
	p.logger.Debugf("IdToOid: %d + %d -> %s", kind, msgId, res)
	return res, nil
}

// IdToColumnValue reads one integer column of one row, generic over table
// and column. Empty names are a programming error, not a "not found".
func (p *Provider) IdToColumnValue(table, column string, id int64) (int64, error) {

	if table == "" || column == "" {
		return 0, fmt.Errorf("%w: table or column name is empty", ErrInvalidArgument)
	}
	if id == 0 {
		return 0, nil
	}

	sqlStr := "SELECT t." + column + " FROM " + table + " AS t WHERE t." + ColId + "=?"

	p.muDb.RLock()
	defer p.muDb.RUnlock()

	var val sql.NullInt64
	err := p.db.QueryRow(sqlStr, id).Scan(&val)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v; sql=%q", ErrStoreUnavailable, err, sqlStr)
	}
	return val.Int64, nil
}

// msgUserColumns are the message columns that link to a user row.
var msgUserColumns = map[string]bool{
	ColAuthorId:        true,
	ColSenderId:        true,
	ColInReplyToUserId: true,
	ColRecipientId:     true,
}

// MsgIdToUserId reads one of the user-linking columns of a message.
func (p *Provider) MsgIdToUserId(msgUserColumn string, msgId int64) (int64, error) {
	if !msgUserColumns[msgUserColumn] {
		return 0, fmt.Errorf("%w: %q is not a user-linking message column", ErrInvalidArgument, msgUserColumn)
	}
	return p.IdToColumnValue(MsgTable, msgUserColumn, msgId)
}

// MsgIdToUsername resolves the username behind one of a message's
// user-linking columns.
func (p *Provider) MsgIdToUsername(msgUserColumn string, msgId int64) (string, error) {

	if !msgUserColumns[msgUserColumn] {
		return "", fmt.Errorf("%w: %q is not a user-linking message column", ErrInvalidArgument, msgUserColumn)
	}
	if msgId == 0 {
		return "", nil
	}

	sqlStr := "SELECT " + ColUsername + " FROM " + UserTable +
		" INNER JOIN " + MsgTable + " ON " + MsgTable + "." + msgUserColumn + "=" + UserTable + "." + ColId +
		" WHERE " + MsgTable + "." + ColId + "=?"

	p.muDb.RLock()
	defer p.muDb.RUnlock()

	var name string
	err := p.db.QueryRow(sqlStr, msgId).Scan(&name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("%w: %v; sql=%q", ErrStoreUnavailable, err, sqlStr)
	}
	return name, nil
}

func (p *Provider) UserIdToName(userId int64) (string, error) {

	if userId == 0 {
		return "", nil
	}

	sqlStr := "SELECT " + ColUsername + " FROM " + UserTable + " WHERE " + ColId + "=?"

	p.muDb.RLock()
	defer p.muDb.RUnlock()

	var name string
	err := p.db.QueryRow(sqlStr, userId).Scan(&name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("%w: %v; sql=%q", ErrStoreUnavailable, err, sqlStr)
	}
	return name, nil
}

// UserNameToId resolves a username within an origin.
func (p *Provider) UserNameToId(originId int64, username string) (int64, error) {

	sqlStr := "SELECT " + ColId + " FROM " + UserTable +
		" WHERE " + ColOriginId + "=? AND " + ColUsername + "=?"

	p.muDb.RLock()
	defer p.muDb.RUnlock()

	var id int64
	err := p.db.QueryRow(sqlStr, originId, username).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v; sql=%q", ErrStoreUnavailable, err, sqlStr)
	}
	return id, nil
}

func (p *Provider) MsgSentDate(msgId int64) (int64, error) {

	if msgId <= 0 {
		return 0, nil
	}

	sqlStr := "SELECT " + ColSentDate + " FROM " + MsgTable + " WHERE " + ColId + "=?"

	p.muDb.RLock()
	defer p.muDb.RUnlock()

	var val sql.NullInt64
	err := p.db.QueryRow(sqlStr, msgId).Scan(&val)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v; sql=%q", ErrStoreUnavailable, err, sqlStr)
	}
	return val.Int64, nil
}
