package test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"timeline_store/dal"
	"timeline_store/logic"
	"timeline_store/shared"
	"timeline_store/test/mocks"
)

type convHarness struct {
	*storeHarness
	mockMetrics *mocks.MockIMetrics
	conv        logic.IConversation
}

func setupConversationTest(t *testing.T) (*gomock.Controller, *convHarness) {

	ctrl, sh := setupStoreTest(t)

	h := &convHarness{
		storeHarness: sh,
		mockMetrics:  mocks.NewMockIMetrics(ctrl),
	}
	h.conv = logic.NewConversation(h.mockLogger, h.provider, h.mockMetrics)
	return ctrl, h
}

// insertThreadMsg writes one message with an explicit parent and timestamp.
func (h *convHarness) insertThreadMsg(t *testing.T, oid string, parentId, createdDate int64) int64 {
	vals := &dal.MsgValues{
		MsgOid:      ptr(oid),
		OriginId:    ptr(int64(1)),
		SenderId:    ptr(int64(11)),
		Body:        ptr("post " + oid),
		CreatedDate: ptr(createdDate),
	}
	if parentId != 0 {
		vals.InReplyToMsgId = ptr(parentId)
	}
	return h.insertMsg(t, 0, vals)
}

func msgIds(rows []*logic.ConversationRow) []int64 {
	res := make([]int64, len(rows))
	for i, row := range rows {
		res[i] = row.MsgId
	}
	return res
}

func Test_Conversation_RepliesOldestFirst(t *testing.T) {

	ctrl, h := setupConversationTest(t)
	defer ctrl.Finish()

	// Root at t=100; B replies at t=200, C replies at t=150. The thread
	// reads root first, then replies in the order they were made.
	a := h.insertThreadMsg(t, "a", 0, 100)
	b := h.insertThreadMsg(t, "b", a, 200)
	c := h.insertThreadMsg(t, "c", a, 150)

	h.mockMetrics.EXPECT().ConversationLoaded(3)

	rows, err := h.conv.Load(a, 0)
	assert.Nil(t, err)
	assert.Equal(t, []int64{a, c, b}, msgIds(rows))
	assert.Equal(t, 2, rows[0].NReplies)
	assert.Equal(t, []int{1, 2, 3}, []int{rows[0].HistoryOrder, rows[1].HistoryOrder, rows[2].HistoryOrder})
	assert.Equal(t, []int{0, 1, 1}, []int{rows[0].IndentLevel, rows[1].IndentLevel, rows[2].IndentLevel})
}

func Test_Conversation_LoadFromLeafFindsRoot(t *testing.T) {

	ctrl, h := setupConversationTest(t)
	defer ctrl.Finish()

	a := h.insertThreadMsg(t, "a", 0, 100)
	b := h.insertThreadMsg(t, "b", a, 200)
	c := h.insertThreadMsg(t, "c", b, 300)

	h.mockMetrics.EXPECT().ConversationLoaded(3)

	rows, err := h.conv.Load(c, 0)
	assert.Nil(t, err)
	assert.Equal(t, []int64{a, b, c}, msgIds(rows))
	assert.Equal(t, []int{0, 1, 2}, []int{rows[0].ReplyLevel, rows[1].ReplyLevel, rows[2].ReplyLevel})
}

func Test_Conversation_DanglingParentTreatedAsRoot(t *testing.T) {

	ctrl, h := setupConversationTest(t)
	defer ctrl.Finish()

	// Parent 9999 is referenced but never stored
	vals := &dal.MsgValues{
		MsgOid:         ptr("orphan"),
		OriginId:       ptr(int64(1)),
		SenderId:       ptr(int64(11)),
		CreatedDate:    ptr(int64(100)),
		InReplyToMsgId: ptr(int64(9999)),
	}
	orphan := h.insertMsg(t, 0, vals)

	h.mockMetrics.EXPECT().ConversationLoaded(1)

	rows, err := h.conv.Load(orphan, 0)
	assert.Nil(t, err)
	assert.Equal(t, []int64{orphan}, msgIds(rows))
	assert.Equal(t, 0, rows[0].ReplyLevel)
}

func Test_Conversation_ReplyCycleTerminates(t *testing.T) {

	ctrl, h := setupConversationTest(t)
	defer ctrl.Finish()

	a := h.insertThreadMsg(t, "a", 0, 100)
	b := h.insertThreadMsg(t, "b", a, 200)

	// Corrupt the thread into a two-node cycle
	_, err := h.provider.Update(shared.MsgUri(),
		&dal.MsgValues{InReplyToMsgId: ptr(b)},
		dal.ColId+"=?", []any{a})
	assert.Nil(t, err)

	h.mockMetrics.EXPECT().ConversationLoaded(2)

	rows, err := h.conv.Load(b, 0)
	assert.Nil(t, err)
	assert.Equal(t, 2, len(rows))
}

func Test_Conversation_AccountFlagsPreferred(t *testing.T) {

	ctrl, h := setupConversationTest(t)
	defer ctrl.Finish()

	a := h.insertThreadMsg(t, "a", 0, 100)

	// Two accounts hold flags rows; account 5 favorited the message
	uri5 := shared.TimelineUri{AccountId: 5, Timeline: shared.TimelineHome, MsgId: a}
	_, err := h.provider.Update(uri5.String(), &dal.MsgValues{Favorited: dal.TriTrue}, "", nil)
	assert.Nil(t, err)
	uri7 := shared.TimelineUri{AccountId: 7, Timeline: shared.TimelineHome, MsgId: a}
	_, err = h.provider.Update(uri7.String(), &dal.MsgValues{Favorited: dal.TriFalse}, "", nil)
	assert.Nil(t, err)

	h.mockMetrics.EXPECT().ConversationLoaded(1).Times(2)

	rows, err := h.conv.Load(a, 5)
	assert.Nil(t, err)
	assert.Equal(t, 1, len(rows))
	assert.True(t, rows[0].Favorited)
	assert.Equal(t, int64(5), rows[0].LinkedUserId)

	rows, err = h.conv.Load(a, 7)
	assert.Nil(t, err)
	assert.False(t, rows[0].Favorited)
	assert.Equal(t, int64(7), rows[0].LinkedUserId)
}

func Test_Conversation_ForeignFlagsNotLeaked(t *testing.T) {

	ctrl, h := setupConversationTest(t)
	defer ctrl.Finish()

	a := h.insertThreadMsg(t, "a", 0, 100)

	// Account 5 favorited the message; account 9 has no relationship.
	uri5 := shared.TimelineUri{AccountId: 5, Timeline: shared.TimelineHome, MsgId: a}
	_, err := h.provider.Update(uri5.String(), &dal.MsgValues{Favorited: dal.TriTrue}, "", nil)
	assert.Nil(t, err)

	h.mockMetrics.EXPECT().ConversationLoaded(1).Times(2)

	rows, err := h.conv.Load(a, 9)
	assert.Nil(t, err)
	assert.Equal(t, 1, len(rows))
	assert.False(t, rows[0].Favorited)
	assert.Equal(t, int64(0), rows[0].LinkedUserId)
	// The message itself still renders
	assert.Equal(t, "post a", rows[0].Body)

	// Without a requesting account no relationship state is reported either
	rows, err = h.conv.Load(a, 0)
	assert.Nil(t, err)
	assert.False(t, rows[0].Favorited)
	assert.Equal(t, int64(0), rows[0].LinkedUserId)
}

func Test_Conversation_RepeatLoadsIdentical(t *testing.T) {

	ctrl, h := setupConversationTest(t)
	defer ctrl.Finish()

	a := h.insertThreadMsg(t, "a", 0, 100)
	b := h.insertThreadMsg(t, "b", a, 200)
	h.insertThreadMsg(t, "c", b, 150)
	h.insertThreadMsg(t, "d", a, 150)

	h.mockMetrics.EXPECT().ConversationLoaded(4).Times(2)

	first, err := h.conv.Load(a, 0)
	assert.Nil(t, err)
	second, err := h.conv.Load(a, 0)
	assert.Nil(t, err)
	assert.Equal(t, first, second)
}

func Test_Conversation_BadMsgId_Rejected(t *testing.T) {

	ctrl, h := setupConversationTest(t)
	defer ctrl.Finish()

	_, err := h.conv.Load(0, 0)
	assert.ErrorIs(t, err, dal.ErrInvalidArgument)
	_, err = h.conv.Load(-1, 0)
	assert.ErrorIs(t, err, dal.ErrInvalidArgument)
}
