package test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"timeline_store/dal"
	"timeline_store/shared"
)

func Test_OidToId_RoundTrip(t *testing.T) {

	ctrl, h := setupStoreTest(t)
	defer ctrl.Finish()

	msgId := h.insertMsg(t, 0, &dal.MsgValues{
		MsgOid:   ptr("oid-1"),
		OriginId: ptr(int64(1)),
		SenderId: ptr(int64(11)),
	})
	userId := h.insertUser(t, 1, "uoid-1", "pixie")

	id, err := h.provider.OidToId(shared.MsgUri(), 1, "oid-1")
	assert.Nil(t, err)
	assert.Equal(t, msgId, id)

	id, err = h.provider.OidToId(shared.UsersUri(), 1, "uoid-1")
	assert.Nil(t, err)
	assert.Equal(t, userId, id)

	// Origin scoping: same oid, wrong origin
	id, err = h.provider.OidToId(shared.MsgUri(), 2, "oid-1")
	assert.Nil(t, err)
	assert.Equal(t, int64(0), id)

	// Empty oid short-circuits without touching the store
	id, err = h.provider.OidToId(shared.MsgUri(), 1, "")
	assert.Nil(t, err)
	assert.Equal(t, int64(0), id)

	oid, err := h.provider.IdToOid(dal.OidMsg, msgId, 0)
	assert.Nil(t, err)
	assert.Equal(t, "oid-1", oid)

	oid, err = h.provider.IdToOid(dal.OidUser, userId, 0)
	assert.Nil(t, err)
	assert.Equal(t, "uoid-1", oid)
}

func Test_IdToOid_ReblogFallsBackToMsgOid(t *testing.T) {

	ctrl, h := setupStoreTest(t)
	defer ctrl.Finish()

	// Account 5 has a flags row but never reblogged the message
	msgId := h.insertMsg(t, 5, &dal.MsgValues{
		MsgOid:   ptr("oid-1"),
		OriginId: ptr(int64(1)),
		SenderId: ptr(int64(11)),
	})

	oid, err := h.provider.IdToOid(dal.OidReblog, msgId, 5)
	assert.Nil(t, err)
	assert.Equal(t, "oid-1", oid)

	// Once a reblog is recorded, its own oid wins
	uri := shared.TimelineUri{AccountId: 5, Timeline: shared.TimelineHome, MsgId: msgId}
	_, err = h.provider.Update(uri.String(), &dal.MsgValues{
		Reblogged: dal.TriTrue,
		ReblogOid: ptr("reblog-oid-1"),
	}, "", nil)
	assert.Nil(t, err)

	oid, err = h.provider.IdToOid(dal.OidReblog, msgId, 5)
	assert.Nil(t, err)
	assert.Equal(t, "reblog-oid-1", oid)
}

func Test_IdToColumnValue(t *testing.T) {

	ctrl, h := setupStoreTest(t)
	defer ctrl.Finish()

	msgId := h.insertMsg(t, 0, &dal.MsgValues{
		MsgOid:         ptr("oid-1"),
		OriginId:       ptr(int64(1)),
		SenderId:       ptr(int64(11)),
		InReplyToMsgId: ptr(int64(77)),
	})

	val, err := h.provider.IdToColumnValue(dal.MsgTable, dal.ColInReplyToMsgId, msgId)
	assert.Nil(t, err)
	assert.Equal(t, int64(77), val)

	// Null column reads as zero
	val, err = h.provider.IdToColumnValue(dal.MsgTable, dal.ColRecipientId, msgId)
	assert.Nil(t, err)
	assert.Equal(t, int64(0), val)

	// Zero id reads as zero without touching the store
	val, err = h.provider.IdToColumnValue(dal.MsgTable, dal.ColInReplyToMsgId, 0)
	assert.Nil(t, err)
	assert.Equal(t, int64(0), val)

	_, err = h.provider.IdToColumnValue("", dal.ColInReplyToMsgId, msgId)
	assert.ErrorIs(t, err, dal.ErrInvalidArgument)
	_, err = h.provider.IdToColumnValue(dal.MsgTable, "", msgId)
	assert.ErrorIs(t, err, dal.ErrInvalidArgument)
}

func Test_MsgUserLookups(t *testing.T) {

	ctrl, h := setupStoreTest(t)
	defer ctrl.Finish()

	authorId := h.insertUser(t, 1, "uoid-1", "pixie")
	msgId := h.insertMsg(t, 0, &dal.MsgValues{
		MsgOid:   ptr("oid-1"),
		OriginId: ptr(int64(1)),
		AuthorId: ptr(authorId),
	})

	id, err := h.provider.MsgIdToUserId(dal.ColAuthorId, msgId)
	assert.Nil(t, err)
	assert.Equal(t, authorId, id)

	name, err := h.provider.MsgIdToUsername(dal.ColAuthorId, msgId)
	assert.Nil(t, err)
	assert.Equal(t, "pixie", name)

	// Sender column is null on this message
	name, err = h.provider.MsgIdToUsername(dal.ColSenderId, msgId)
	assert.Nil(t, err)
	assert.Equal(t, "", name)

	// Only user-linking columns are legal
	_, err = h.provider.MsgIdToUserId(dal.ColBody, msgId)
	assert.ErrorIs(t, err, dal.ErrInvalidArgument)
	_, err = h.provider.MsgIdToUsername(dal.ColBody, msgId)
	assert.ErrorIs(t, err, dal.ErrInvalidArgument)
}

func Test_UserNameLookups(t *testing.T) {

	ctrl, h := setupStoreTest(t)
	defer ctrl.Finish()

	userId := h.insertUser(t, 1, "uoid-1", "pixie")

	name, err := h.provider.UserIdToName(userId)
	assert.Nil(t, err)
	assert.Equal(t, "pixie", name)

	name, err = h.provider.UserIdToName(9999)
	assert.Nil(t, err)
	assert.Equal(t, "", name)

	id, err := h.provider.UserNameToId(1, "pixie")
	assert.Nil(t, err)
	assert.Equal(t, userId, id)

	id, err = h.provider.UserNameToId(2, "pixie")
	assert.Nil(t, err)
	assert.Equal(t, int64(0), id)
}

func Test_MsgSentDate(t *testing.T) {

	ctrl, h := setupStoreTest(t)
	defer ctrl.Finish()

	msgId := h.insertMsg(t, 0, &dal.MsgValues{
		MsgOid:   ptr("oid-1"),
		OriginId: ptr(int64(1)),
		SenderId: ptr(int64(11)),
		SentDate: ptr(int64(987654)),
	})

	val, err := h.provider.MsgSentDate(msgId)
	assert.Nil(t, err)
	assert.Equal(t, int64(987654), val)

	val, err = h.provider.MsgSentDate(9999)
	assert.Nil(t, err)
	assert.Equal(t, int64(0), val)
}
