package dal

import (
	"database/sql"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"timeline_store/shared"
)

// Message bodies arrive from origins as HTML; only the text is stored.
func stripHtml(htm string) string {
	p := bluemonday.StrictPolicy()
	plain := p.Sanitize(htm)
	plain = html.UnescapeString(plain)
	plain = strings.TrimSpace(plain)
	return plain
}

// insertMsg writes the message row and, for a nonzero account, the account's
// flags row as one atomic unit. A message without its requesting account's
// relationship row is an inconsistent state, so a failed flags insert rolls
// the message back too.
func (p *Provider) insertMsg(tl shared.TimelineUri, vals *MsgValues) (int64, error) {

	v := *vals
	if v.AuthorId == nil {
		if v.SenderId == nil {
			return 0, fmt.Errorf("%w: message insert needs a sender or author id", ErrInvalidArgument)
		}
		v.AuthorId = v.SenderId
	}
	empty := ""
	if v.Body == nil {
		v.Body = &empty
	} else {
		plain := stripHtml(*v.Body)
		v.Body = &plain
	}
	if v.Via == nil {
		v.Via = &empty
	}

	if tl.AccountId != 0 && !tl.Timeline.AppliesToAccount() {
		return 0, fmt.Errorf("%w: timeline type %q cannot carry account flags",
			ErrUnsupportedOperation, tl.Timeline.Token())
	}
	flags := flagColArgs(&v, tl.AccountId)

	now := time.Now().UnixMilli()
	msgCa := msgColArgs(&v)
	msgCa.add(ColInsDate, now)

	p.muDb.Lock()
	defer p.muDb.Unlock()

	tx, err := p.db.Begin()
	if err != nil {
		return 0, mapWriteErr(err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(insertStmt(MsgTable, msgCa.cols), msgCa.args...)
	if err != nil {
		return 0, mapWriteErr(err)
	}
	newId, err := res.LastInsertId()
	if err != nil {
		return 0, mapWriteErr(err)
	}

	if flags != nil {
		flags.add(ColMsgId, newId)
		flags.add(ColUserId, tl.AccountId)
		if _, err = tx.Exec(insertStmt(MsgOfUserTable, flags.cols), flags.args...); err != nil {
			return 0, mapWriteErr(err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, mapWriteErr(err)
	}
	return newId, nil
}

func (p *Provider) insertUser(vals *UserValues) (int64, error) {

	if vals.Username == nil || *vals.Username == "" {
		return 0, fmt.Errorf("%w: user insert needs a username", ErrInvalidArgument)
	}
	if err := shared.ValidateUsername(*vals.Username); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	ca := userColArgs(vals, shared.AvatarRef)
	ca.add(ColInsDate, time.Now().UnixMilli())

	p.muDb.Lock()
	defer p.muDb.Unlock()

	res, err := p.db.Exec(insertStmt(UserTable, ca.cols), ca.args...)
	if err != nil {
		return 0, mapWriteErr(err)
	}
	newId, err := res.LastInsertId()
	if err != nil {
		return 0, mapWriteErr(err)
	}
	return newId, nil
}

// updateMsgs updates message rows by raw selection; flag fields are not
// addressable without an account, so their presence is a caller error.
func (p *Provider) updateMsgs(vals *MsgValues, selection string, selectionArgs []any) (int64, error) {

	if vals.hasFlagFields() {
		return 0, fmt.Errorf("%w: flag fields need a timeline-message uri", ErrInvalidArgument)
	}
	ca := msgColArgs(vals)
	if ca.empty() {
		return 0, fmt.Errorf("%w: no fields to update", ErrInvalidArgument)
	}

	p.muDb.Lock()
	defer p.muDb.Unlock()

	args := append(ca.args, selectionArgs...)
	res, err := p.db.Exec(updateStmt(MsgTable, ca.cols, selection), args...)
	if err != nil {
		return 0, mapWriteErr(err)
	}
	return rowsAffected(res)
}

// updateTimelineMsg updates one message addressed through an account's
// timeline and upserts the account's flags row in the same transaction.
// The upsert keeps the one-row-per-(message, account) invariant: an existing
// row is updated, never duplicated.
func (p *Provider) updateTimelineMsg(tl shared.TimelineUri, vals *MsgValues,
	selection string, selectionArgs []any) (int64, error) {

	if tl.AccountId != 0 && !tl.Timeline.AppliesToAccount() {
		return 0, fmt.Errorf("%w: timeline type %q cannot carry account flags",
			ErrUnsupportedOperation, tl.Timeline.Token())
	}
	flags := flagColArgs(vals, tl.AccountId)
	msgCa := msgColArgs(vals)

	p.muDb.Lock()
	defer p.muDb.Unlock()

	tx, err := p.db.Begin()
	if err != nil {
		return 0, mapWriteErr(err)
	}
	defer tx.Rollback()

	var count int64
	if !msgCa.empty() {
		where := ColId + "=?"
		args := append(msgCa.args, tl.MsgId)
		if selection != "" {
			where += " AND (" + selection + ")"
			args = append(args, selectionArgs...)
		}
		res, err := tx.Exec(updateStmt(MsgTable, msgCa.cols, where), args...)
		if err != nil {
			return 0, mapWriteErr(err)
		}
		if count, err = rowsAffected(res); err != nil {
			return 0, err
		}
	}

	if flags != nil {
		var existing int
		row := tx.QueryRow("SELECT count(*) FROM "+MsgOfUserTable+
			" WHERE "+ColMsgId+"=? AND "+ColUserId+"=?", tl.MsgId, tl.AccountId)
		if err = row.Scan(&existing); err != nil {
			return 0, mapWriteErr(err)
		}
		if existing == 0 {
			// A flags row must never outlive or predate its message.
			var msgExists int
			row = tx.QueryRow("SELECT count(*) FROM "+MsgTable+
				" WHERE "+ColId+"=?", tl.MsgId)
			if err = row.Scan(&msgExists); err != nil {
				return 0, mapWriteErr(err)
			}
			if msgExists == 0 {
				if err = tx.Commit(); err != nil {
					return 0, mapWriteErr(err)
				}
				return count, nil
			}
			flags.add(ColMsgId, tl.MsgId)
			flags.add(ColUserId, tl.AccountId)
			_, err = tx.Exec(insertStmt(MsgOfUserTable, flags.cols), flags.args...)
		} else if !flags.empty() {
			where := ColMsgId + "=? AND " + ColUserId + "=?"
			args := append(flags.args, tl.MsgId, tl.AccountId)
			_, err = tx.Exec(updateStmt(MsgOfUserTable, flags.cols, where), args...)
		}
		if err != nil {
			return 0, mapWriteErr(err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, mapWriteErr(err)
	}
	return count, nil
}

func (p *Provider) updateUsers(vals *UserValues, where string, args []any) (int64, error) {

	ca := userColArgs(vals, shared.AvatarRef)
	if ca.empty() {
		return 0, fmt.Errorf("%w: no fields to update", ErrInvalidArgument)
	}

	p.muDb.Lock()
	defer p.muDb.Unlock()

	res, err := p.db.Exec(updateStmt(UserTable, ca.cols, where), append(ca.args, args...)...)
	if err != nil {
		return 0, mapWriteErr(err)
	}
	return rowsAffected(res)
}

// deleteMsgs removes message rows and their flags rows in one transaction so
// no orphaned junction rows survive.
func (p *Provider) deleteMsgs(selection string, selectionArgs []any) (int64, error) {

	msgFilter := selection
	if msgFilter == "" {
		msgFilter = "1"
	}

	p.muDb.Lock()
	defer p.muDb.Unlock()

	tx, err := p.db.Begin()
	if err != nil {
		return 0, mapWriteErr(err)
	}
	defer tx.Rollback()

	// Flags rows of the doomed messages go first, while the messages still
	// exist to join against.
	flagsFilter := "EXISTS (SELECT * FROM " + MsgTable + " WHERE (" +
		MsgTable + "." + ColId + "=" + MsgOfUserTable + "." + ColMsgId +
		") AND (" + msgFilter + "))"
	if _, err = tx.Exec("DELETE FROM "+MsgOfUserTable+" WHERE "+flagsFilter, selectionArgs...); err != nil {
		return 0, mapWriteErr(err)
	}

	res, err := tx.Exec("DELETE FROM "+MsgTable+" WHERE "+msgFilter, selectionArgs...)
	if err != nil {
		return 0, mapWriteErr(err)
	}
	count, err := rowsAffected(res)
	if err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, mapWriteErr(err)
	}
	return count, nil
}

func (p *Provider) deleteUsers(where string, args []any) (int64, error) {

	if where == "" {
		where = "1"
	}

	p.muDb.Lock()
	defer p.muDb.Unlock()

	res, err := p.db.Exec("DELETE FROM "+UserTable+" WHERE "+where, args...)
	if err != nil {
		return 0, mapWriteErr(err)
	}
	return rowsAffected(res)
}

func insertStmt(table string, cols []string) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	return "INSERT INTO " + table + " (" + strings.Join(cols, ", ") + ") VALUES (" + placeholders + ")"
}

func updateStmt(table string, cols []string, where string) string {
	sets := make([]string, len(cols))
	for i, col := range cols {
		sets[i] = col + "=?"
	}
	res := "UPDATE " + table + " SET " + strings.Join(sets, ", ")
	if where != "" {
		res += " WHERE " + where
	}
	return res
}

func rowsAffected(res sql.Result) (int64, error) {
	count, err := res.RowsAffected()
	if err != nil {
		return 0, mapWriteErr(err)
	}
	return count, nil
}
