package logic

import (
	"fmt"
	"sort"

	"timeline_store/dal"
	"timeline_store/shared"
)

// ConversationRow is one display row of a threaded conversation. It is a
// transient projection: built per render, never persisted.
type ConversationRow struct {
	MsgId          int64
	InReplyToMsgId int64
	CreatedDate    int64
	LinkedUserId   int64
	Favorited      bool
	AuthorName     string
	SenderName     string
	InReplyToName  string
	RecipientName  string
	Body           string
	Via            string

	// ListOrder is the traversal rank: ancestors and branches precede
	// descendants, consistent with a depth-first walk.
	ListOrder int
	// HistoryOrder is the user-visible numbering; the conversation root
	// has 1 and it grows toward the leaves.
	HistoryOrder int
	NReplies     int
	IndentLevel  int
	ReplyLevel   int
}

type IConversation interface {
	// Load assembles the whole thread around msgId into display order.
	Load(msgId int64, accountId int64) ([]*ConversationRow, error)
}

type conversation struct {
	logger   shared.ILogger
	provider dal.IProvider
	metrics  IMetrics
}

func NewConversation(logger shared.ILogger, provider dal.IProvider, metrics IMetrics) IConversation {
	return &conversation{
		logger:   logger,
		provider: provider,
		metrics:  metrics,
	}
}

var conversationProjection = []string{
	dal.ColMsgId, dal.ColInReplyToMsgId, dal.ColCreatedDate,
	dal.ColUserId, dal.ColFavorited,
	dal.ColAuthorName, dal.ColSenderName, dal.ColInReplyToName, dal.ColRecipientName,
	dal.ColBody, dal.ColVia,
}

func (c *conversation) Load(msgId int64, accountId int64) ([]*ConversationRow, error) {

	if msgId <= 0 {
		return nil, fmt.Errorf("%w: message id must be positive", dal.ErrInvalidArgument)
	}

	rootId, err := c.findRoot(msgId)
	if err != nil {
		return nil, err
	}

	visited := map[int64]bool{}
	var ordered []*ConversationRow
	if err = c.walk(rootId, 0, accountId, visited, &ordered); err != nil {
		return nil, err
	}

	for i, row := range ordered {
		row.ListOrder = i
	}
	// Two messages may share a timestamp; the id tie-break keeps the order
	// a strict total one.
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.ListOrder != b.ListOrder {
			return a.ListOrder < b.ListOrder
		}
		if a.CreatedDate != b.CreatedDate {
			return a.CreatedDate > b.CreatedDate
		}
		return a.MsgId > b.MsgId
	})
	for i, row := range ordered {
		row.HistoryOrder = i + 1
		row.IndentLevel = row.ReplyLevel
	}

	c.metrics.ConversationLoaded(len(ordered))
	c.logger.Debugf("Conversation for msg %d: %d rows from root %d", msgId, len(ordered), rootId)
	return ordered, nil
}

// findRoot follows in-reply-to edges upward until there is no stored parent.
// A message already seen is never followed again, so malformed reply cycles
// terminate.
func (c *conversation) findRoot(msgId int64) (int64, error) {
	cur := msgId
	seen := map[int64]bool{cur: true}
	for {
		parent, err := c.provider.IdToColumnValue(dal.MsgTable, dal.ColInReplyToMsgId, cur)
		if err != nil {
			return 0, err
		}
		if parent == 0 || seen[parent] {
			return cur, nil
		}
		// A dangling in-reply-to reference keeps cur as the root.
		exists, err := c.provider.IdToColumnValue(dal.MsgTable, dal.ColId, parent)
		if err != nil {
			return 0, err
		}
		if exists == 0 {
			return cur, nil
		}
		seen[parent] = true
		cur = parent
	}
}

func (c *conversation) walk(msgId int64, replyLevel int, accountId int64,
	visited map[int64]bool, out *[]*ConversationRow) error {

	if visited[msgId] {
		return nil
	}
	visited[msgId] = true

	row, err := c.loadRow(msgId, replyLevel, accountId)
	if err != nil {
		return err
	}
	if row == nil {
		return nil
	}
	*out = append(*out, row)

	replies, err := c.loadReplies(msgId)
	if err != nil {
		return err
	}
	row.NReplies = len(replies)
	for _, replyId := range replies {
		if err = c.walk(replyId, replyLevel+1, accountId, visited, out); err != nil {
			return err
		}
	}
	return nil
}

func (c *conversation) loadRow(msgId int64, replyLevel int, accountId int64) (*ConversationRow, error) {

	uri := shared.TimelineUri{
		AccountId:  accountId,
		Timeline:   shared.TimelineHome,
		IsCombined: true,
		MsgId:      msgId,
	}
	rows, err := c.provider.Query(uri.String(), conversationProjection, "", nil, "")
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	// The outer join yields one result row per flags row. Only the
	// requesting account's row may contribute relationship state; another
	// account's flags are that account's business.
	row := rows[0]
	ownRow := false
	for _, r := range rows {
		if r.Int64(dal.ColUserId) == accountId {
			row = r
			ownRow = true
			break
		}
	}

	res := ConversationRow{
		MsgId:          row.Int64(dal.ColMsgId),
		InReplyToMsgId: row.Int64(dal.ColInReplyToMsgId),
		CreatedDate:    row.Int64(dal.ColCreatedDate),
		AuthorName:     row.Str(dal.ColAuthorName),
		SenderName:     row.Str(dal.ColSenderName),
		InReplyToName:  row.Str(dal.ColInReplyToName),
		RecipientName:  row.Str(dal.ColRecipientName),
		Body:           row.Str(dal.ColBody),
		Via:            row.Str(dal.ColVia),
		ReplyLevel:     replyLevel,
	}
	if ownRow {
		res.LinkedUserId = row.Int64(dal.ColUserId)
		res.Favorited = row.Bool(dal.ColFavorited)
	}
	c.logger.Debugf("Conversation row %d by %s: %s", res.MsgId, res.AuthorName,
		shared.TruncateWithEllipsis(res.Body, shared.MaxSnippetLen))
	return &res, nil
}

// loadReplies returns the ids of direct replies, oldest first.
func (c *conversation) loadReplies(msgId int64) ([]int64, error) {

	uri := shared.TimelineUri{Timeline: shared.TimelineAll, IsCombined: true}
	rows, err := c.provider.Query(uri.String(),
		[]string{dal.ColMsgId, dal.ColCreatedDate},
		dal.MsgTable+"."+dal.ColInReplyToMsgId+"=?", []any{msgId},
		dal.MsgTable+"."+dal.ColCreatedDate+" ASC")
	if err != nil {
		return nil, err
	}
	var res []int64
	seen := map[int64]bool{}
	for _, row := range rows {
		id := row.Int64(dal.ColMsgId)
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		res = append(res, id)
	}
	return res, nil
}
