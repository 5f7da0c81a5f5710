package test

import (
	"path/filepath"
	"testing"

	"go.uber.org/mock/gomock"

	"timeline_store/dal"
	"timeline_store/shared"
	"timeline_store/test/mocks"
)

func ptr[T any](v T) *T {
	return &v
}

// changeCollector stands in for the change notifier and records what the
// store publishes.
type changeCollector struct {
	uris []string
	subs []func(uri string)
}

func (cc *changeCollector) Subscribe(fn func(uri string)) {
	cc.subs = append(cc.subs, fn)
}

func (cc *changeCollector) PublishChange(uri string) {
	cc.uris = append(cc.uris, uri)
	for _, fn := range cc.subs {
		fn(uri)
	}
}

type storeHarness struct {
	mockLogger *mocks.MockILogger
	notifier   *changeCollector
	provider   dal.IProvider
}

func setupDummyLogger(mockLogger *mocks.MockILogger) {
	mockLogger.EXPECT().Debug(gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Debugf(gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Info(gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Infof(gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Warn(gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Warnf(gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Error(gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Errorf(gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Printf(gomock.Any(), gomock.Any()).AnyTimes()
}

func setupDummyMetrics(mockMetrics *mocks.MockIMetrics) {
	dummyObserver := &dummyRequestObserver{}
	mockMetrics.EXPECT().StartApiRequestIn(gomock.Any()).Return(dummyObserver).AnyTimes()
	mockMetrics.EXPECT().ChangePublished(gomock.Any()).AnyTimes()
	mockMetrics.EXPECT().ConversationLoaded(gomock.Any()).AnyTimes()
	mockMetrics.EXPECT().ServiceStarted().AnyTimes()
}

type dummyRequestObserver struct{}

func (*dummyRequestObserver) Finish() {}

// setupStoreTest opens a fresh store over a throwaway database file.
func setupStoreTest(t *testing.T) (*gomock.Controller, *storeHarness) {

	ctrl := gomock.NewController(t)

	h := &storeHarness{
		mockLogger: mocks.NewMockILogger(ctrl),
		notifier:   &changeCollector{},
	}
	setupDummyLogger(h.mockLogger)

	cfg := &shared.Config{DbFile: filepath.Join(t.TempDir(), "store.db")}
	h.provider = dal.NewProvider(cfg, h.mockLogger, h.notifier)
	h.provider.InitUpdateDb()
	t.Cleanup(func() { _ = h.provider.Close() })

	return ctrl, h
}

// insertMsg writes one message through an account's home timeline.
func (h *storeHarness) insertMsg(t *testing.T, accountId int64, vals *dal.MsgValues) int64 {
	uri := shared.TimelineUri{AccountId: accountId, Timeline: shared.TimelineHome}
	id, err := h.provider.Insert(uri.String(), vals)
	if err != nil {
		t.Fatalf("message insert failed: %v", err)
	}
	return id
}

func (h *storeHarness) insertUser(t *testing.T, originId int64, oid, username string) int64 {
	vals := &dal.UserValues{
		UserOid:  ptr(oid),
		OriginId: ptr(originId),
		Username: ptr(username),
	}
	id, err := h.provider.Insert(shared.UsersUri(), vals)
	if err != nil {
		t.Fatalf("user insert failed: %v", err)
	}
	return id
}
