package dal

import (
	"fmt"

	"timeline_store/shared"
)

func (p *Provider) Query(uriStr string, projection []string, selection string,
	selectionArgs []any, sortOrder string) ([]Row, error) {

	m, err := shared.ParseUri(uriStr)
	if err != nil {
		return nil, err
	}

	var sqlStr string
	var args []any
	switch m.Kind {
	case shared.MatchTimeline, shared.MatchTimelineMsg, shared.MatchTimelineSearch:
		sqlStr, args, err = buildTimelineSelect(m, projection, selection, selectionArgs, sortOrder)
	case shared.MatchMsgCount:
		sqlStr, args = buildMsgCount(selection, selectionArgs)
	case shared.MatchUsers, shared.MatchUserId:
		sqlStr, args, err = buildUsersSelect(m, projection, selection, selectionArgs, sortOrder)
	default:
		return nil, fmt.Errorf("%w: query via %s", ErrUnsupportedOperation, m.Kind)
	}
	if err != nil {
		return nil, err
	}

	p.muDb.RLock()
	defer p.muDb.RUnlock()

	// Statement text only; bound values stay out of logs and errors.
	p.logger.Debugf("query, SQL=%q", sqlStr)
	rows, err := p.db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v; sql=%q", ErrStoreUnavailable, err, sqlStr)
	}
	defer rows.Close()
	res, err := readRows(rows)
	if err != nil {
		return nil, fmt.Errorf("%w: %v; sql=%q", ErrStoreUnavailable, err, sqlStr)
	}
	return res, nil
}

func (p *Provider) Insert(uriStr string, vals Values) (int64, error) {

	m, err := shared.ParseUri(uriStr)
	if err != nil {
		return 0, err
	}

	var newId int64
	switch m.Kind {
	case shared.MatchTimeline:
		mv, ok := vals.(*MsgValues)
		if !ok {
			return 0, fmt.Errorf("%w: timeline insert takes MsgValues", ErrInvalidArgument)
		}
		newId, err = p.insertMsg(m.Timeline, mv)
	case shared.MatchUsers:
		uv, ok := vals.(*UserValues)
		if !ok {
			return 0, fmt.Errorf("%w: user insert takes UserValues", ErrInvalidArgument)
		}
		newId, err = p.insertUser(uv)
	default:
		return 0, fmt.Errorf("%w: insert via %s", ErrUnsupportedOperation, m.Kind)
	}
	if err != nil {
		return 0, err
	}
	p.notifier.PublishChange(uriStr)
	return newId, nil
}

func (p *Provider) Update(uriStr string, vals Values, selection string, selectionArgs []any) (int64, error) {

	m, err := shared.ParseUri(uriStr)
	if err != nil {
		return 0, err
	}

	var count int64
	switch m.Kind {
	case shared.MatchMsg:
		mv, ok := vals.(*MsgValues)
		if !ok {
			return 0, fmt.Errorf("%w: message update takes MsgValues", ErrInvalidArgument)
		}
		count, err = p.updateMsgs(mv, selection, selectionArgs)
	case shared.MatchTimelineMsg:
		mv, ok := vals.(*MsgValues)
		if !ok {
			return 0, fmt.Errorf("%w: message update takes MsgValues", ErrInvalidArgument)
		}
		count, err = p.updateTimelineMsg(m.Timeline, mv, selection, selectionArgs)
	case shared.MatchUsers:
		uv, ok := vals.(*UserValues)
		if !ok {
			return 0, fmt.Errorf("%w: user update takes UserValues", ErrInvalidArgument)
		}
		count, err = p.updateUsers(uv, selection, selectionArgs)
	case shared.MatchUserId:
		uv, ok := vals.(*UserValues)
		if !ok {
			return 0, fmt.Errorf("%w: user update takes UserValues", ErrInvalidArgument)
		}
		where := UserTable + "." + ColId + "=?"
		args := []any{m.UserId}
		if selection != "" {
			where += " AND (" + selection + ")"
			args = append(args, selectionArgs...)
		}
		count, err = p.updateUsers(uv, where, args)
	default:
		return 0, fmt.Errorf("%w: update via %s", ErrUnsupportedOperation, m.Kind)
	}
	if err != nil {
		return 0, err
	}
	p.notifier.PublishChange(uriStr)
	return count, nil
}

func (p *Provider) Delete(uriStr string, selection string, selectionArgs []any) (int64, error) {

	m, err := shared.ParseUri(uriStr)
	if err != nil {
		return 0, err
	}

	var count int64
	switch m.Kind {
	case shared.MatchMsg:
		count, err = p.deleteMsgs(selection, selectionArgs)
	case shared.MatchUsers:
		count, err = p.deleteUsers(selection, selectionArgs)
	case shared.MatchUserId:
		where := UserTable + "." + ColId + "=?"
		args := []any{m.UserId}
		if selection != "" {
			where += " AND (" + selection + ")"
			args = append(args, selectionArgs...)
		}
		count, err = p.deleteUsers(where, args)
	default:
		return 0, fmt.Errorf("%w: delete via %s", ErrUnsupportedOperation, m.Kind)
	}
	if err != nil {
		return 0, err
	}
	p.notifier.PublishChange(uriStr)
	return count, nil
}
