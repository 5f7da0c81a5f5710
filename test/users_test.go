package test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"timeline_store/dal"
	"timeline_store/shared"
)

func Test_InsertUser_AndQueryBack(t *testing.T) {

	ctrl, h := setupStoreTest(t)
	defer ctrl.Finish()

	id, err := h.provider.Insert(shared.UsersUri(), &dal.UserValues{
		UserOid:   ptr("uoid-1"),
		OriginId:  ptr(int64(1)),
		Username:  ptr("pixie"),
		AvatarUrl: ptr("https://stardust.community/avatars/pixie.png"),
	})
	assert.Nil(t, err)
	assert.NotZero(t, id)

	rows, err := h.provider.Query(shared.UserUri(id), nil, "", nil, "")
	assert.Nil(t, err)
	assert.Equal(t, 1, len(rows))
	assert.Equal(t, "pixie", rows[0].Str(dal.ColUsername))
	// The avatar url is stored as its stable reference, not verbatim
	assert.Equal(t, shared.AvatarRef("https://stardust.community/avatars/pixie.png"),
		rows[0].Str(dal.ColAvatarBlob))
	// Cursors start at zero
	assert.Equal(t, int64(0), rows[0].Int64(dal.ColHomeTimelineMsgId))
}

func Test_InsertUser_MissingUsername_Rejected(t *testing.T) {

	ctrl, h := setupStoreTest(t)
	defer ctrl.Finish()

	_, err := h.provider.Insert(shared.UsersUri(), &dal.UserValues{
		UserOid:  ptr("uoid-1"),
		OriginId: ptr(int64(1)),
	})
	assert.ErrorIs(t, err, dal.ErrInvalidArgument)

	_, err = h.provider.Insert(shared.UsersUri(), &dal.UserValues{
		UserOid:  ptr("uoid-1"),
		OriginId: ptr(int64(1)),
		Username: ptr("two words"),
	})
	assert.ErrorIs(t, err, dal.ErrInvalidArgument)
}

func Test_InsertUser_DuplicateUsername_ConstraintViolation(t *testing.T) {

	ctrl, h := setupStoreTest(t)
	defer ctrl.Finish()

	h.insertUser(t, 1, "uoid-1", "pixie")

	_, err := h.provider.Insert(shared.UsersUri(), &dal.UserValues{
		UserOid:  ptr("uoid-2"),
		OriginId: ptr(int64(1)),
		Username: ptr("pixie"),
	})
	assert.ErrorIs(t, err, dal.ErrConstraintViolation)

	// Same name on another origin is fine
	_, err = h.provider.Insert(shared.UsersUri(), &dal.UserValues{
		UserOid:  ptr("uoid-2"),
		OriginId: ptr(int64(2)),
		Username: ptr("pixie"),
	})
	assert.Nil(t, err)
}

func Test_UpdateUser_TimelineCursor(t *testing.T) {

	ctrl, h := setupStoreTest(t)
	defer ctrl.Finish()

	id := h.insertUser(t, 1, "uoid-1", "pixie")

	count, err := h.provider.Update(shared.UserUri(id), &dal.UserValues{
		HomeTimelineMsgId: ptr(int64(42)),
		HomeTimelineDate:  ptr(int64(1234)),
	}, "", nil)
	assert.Nil(t, err)
	assert.Equal(t, int64(1), count)

	rows, err := h.provider.Query(shared.UserUri(id), nil, "", nil, "")
	assert.Nil(t, err)
	assert.Equal(t, int64(42), rows[0].Int64(dal.ColHomeTimelineMsgId))
	assert.Equal(t, int64(1234), rows[0].Int64(dal.ColHomeTimelineDate))
	// Other cursors untouched
	assert.Equal(t, int64(0), rows[0].Int64(dal.ColMentionsTimelineMsgId))
}

func Test_QueryUsers_DefaultOrder(t *testing.T) {

	ctrl, h := setupStoreTest(t)
	defer ctrl.Finish()

	h.insertUser(t, 1, "uoid-1", "zork")
	h.insertUser(t, 1, "uoid-2", "ada")

	rows, err := h.provider.Query(shared.UsersUri(), []string{dal.ColUsername}, "", nil, "")
	assert.Nil(t, err)
	assert.Equal(t, 2, len(rows))
	assert.Equal(t, "ada", rows[0].Str(dal.ColUsername))
	assert.Equal(t, "zork", rows[1].Str(dal.ColUsername))
}

func Test_DeleteUser_ById(t *testing.T) {

	ctrl, h := setupStoreTest(t)
	defer ctrl.Finish()

	id := h.insertUser(t, 1, "uoid-1", "pixie")
	h.insertUser(t, 1, "uoid-2", "ada")

	count, err := h.provider.Delete(shared.UserUri(id), "", nil)
	assert.Nil(t, err)
	assert.Equal(t, int64(1), count)

	rows, err := h.provider.Query(shared.UsersUri(), nil, "", nil, "")
	assert.Nil(t, err)
	assert.Equal(t, 1, len(rows))
	assert.Equal(t, "ada", rows[0].Str(dal.ColUsername))
}
