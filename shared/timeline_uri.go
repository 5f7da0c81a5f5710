package shared

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ErrMalformedUri is returned when an identifier's structural shape does not
// match any recognized pattern. It fires before any store access.
var ErrMalformedUri = errors.New("malformed uri")

const (
	timelineSegment = "timeline"
	ttSegment       = "tt"
	combinedSegment = "combined"
	messageSegment  = "message"
	countSegment    = "count"
	userSegment     = "user"
	searchSegment   = "search"
)

// TimelineType is the kind of timeline a uri refers to.
type TimelineType int

const (
	TimelineUnknown TimelineType = iota
	TimelineHome
	TimelineMentions
	TimelineFavorites
	TimelineDirect
	TimelineUser
	TimelineAll
)

var timelineTokens = map[TimelineType]string{
	TimelineUnknown:   "unknown",
	TimelineHome:      "home",
	TimelineMentions:  "mentions",
	TimelineFavorites: "favorites",
	TimelineDirect:    "direct",
	TimelineUser:      "user",
	TimelineAll:       "all",
}

// Token returns the stable textual form used in uris.
func (tt TimelineType) Token() string {
	return timelineTokens[tt]
}

// ParseTimelineType resolves a uri token. ok is false for tokens outside the
// vocabulary; "unknown" itself is a valid token.
func ParseTimelineType(token string) (TimelineType, bool) {
	for tt, tok := range timelineTokens {
		if tok == token {
			return tt, true
		}
	}
	return TimelineUnknown, false
}

// AppliesToAccount says whether a flags row may be derived for this kind.
func (tt TimelineType) AppliesToAccount() bool {
	return tt != TimelineUnknown
}

// MatchKind classifies a parsed uri into one of the recognized operations.
type MatchKind int

const (
	MatchNone MatchKind = iota
	MatchTimeline
	MatchTimelineMsg
	MatchTimelineSearch
	MatchMsg
	MatchMsgCount
	MatchUsers
	MatchUserId
)

func (mk MatchKind) String() string {
	switch mk {
	case MatchTimeline:
		return "timeline"
	case MatchTimelineMsg:
		return "timeline-msg"
	case MatchTimelineSearch:
		return "timeline-search"
	case MatchMsg:
		return "msg"
	case MatchMsgCount:
		return "msg-count"
	case MatchUsers:
		return "users"
	case MatchUserId:
		return "user-id"
	}
	return "none"
}

// TimelineUri identifies one timeline view: whose it is, which kind, whether
// it spans all accounts, and optionally a single message or a search term.
// A zero MsgId means "no message segment".
type TimelineUri struct {
	AccountId   int64
	Timeline    TimelineType
	IsCombined  bool
	MsgId       int64
	SearchQuery string
}

// MatchedUri is the result of parsing an identifier: the operation kind plus
// its decoded parameters. Timeline is only meaningful for the timeline
// family, UserId only for MatchUserId.
type MatchedUri struct {
	Kind     MatchKind
	Timeline TimelineUri
	UserId   int64
}

// String encodes the uri in its canonical path form. It is the left inverse
// of ParseUri: parsing the result yields an equal TimelineUri.
func (u TimelineUri) String() string {
	combined := "0"
	if u.IsCombined {
		combined = "1"
	}
	res := fmt.Sprintf("%s/%d/%s/%s/%s/%s",
		timelineSegment, u.AccountId, ttSegment, u.Timeline.Token(), combinedSegment, combined)
	if u.MsgId != 0 {
		res += fmt.Sprintf("/%s/%d", messageSegment, u.MsgId)
	} else if u.SearchQuery != "" {
		res += "/" + searchSegment + "/" + url.PathEscape(u.SearchQuery)
	}
	return res
}

// MsgUri addresses the message table as a whole.
func MsgUri() string {
	return messageSegment
}

// MsgCountUri addresses the count of rows in the message table.
func MsgCountUri() string {
	return messageSegment + "/" + countSegment
}

// UsersUri addresses the user table as a whole.
func UsersUri() string {
	return userSegment
}

// UserUri addresses a single user row.
func UserUri(userId int64) string {
	return userSegment + "/" + strconv.FormatInt(userId, 10)
}

// ParseUri decodes a structured identifier and classifies it. It fails with
// ErrMalformedUri on wrong segment count, non-numeric id segments and
// timeline-kind tokens outside the vocabulary.
func ParseUri(uri string) (MatchedUri, error) {
	segs := strings.Split(strings.Trim(uri, "/"), "/")

	switch segs[0] {
	case timelineSegment:
		return parseTimelineUri(uri, segs)
	case messageSegment:
		if len(segs) == 1 {
			return MatchedUri{Kind: MatchMsg}, nil
		}
		if len(segs) == 2 && segs[1] == countSegment {
			return MatchedUri{Kind: MatchMsgCount}, nil
		}
	case userSegment:
		if len(segs) == 1 {
			return MatchedUri{Kind: MatchUsers}, nil
		}
		if len(segs) == 2 {
			userId, err := strconv.ParseInt(segs[1], 10, 64)
			if err != nil {
				return MatchedUri{}, fmt.Errorf("%w: bad user id in %q", ErrMalformedUri, uri)
			}
			return MatchedUri{Kind: MatchUserId, UserId: userId}, nil
		}
	}
	return MatchedUri{}, fmt.Errorf("%w: %q", ErrMalformedUri, uri)
}

func parseTimelineUri(uri string, segs []string) (MatchedUri, error) {
	// timeline/{accountId}/tt/{type}/combined/{0|1} [+ /message/{id} | /search/{term}]
	if len(segs) != 6 && len(segs) != 8 {
		return MatchedUri{}, fmt.Errorf("%w: wrong segment count in %q", ErrMalformedUri, uri)
	}
	if segs[2] != ttSegment || segs[4] != combinedSegment {
		return MatchedUri{}, fmt.Errorf("%w: %q", ErrMalformedUri, uri)
	}
	accountId, err := strconv.ParseInt(segs[1], 10, 64)
	if err != nil {
		return MatchedUri{}, fmt.Errorf("%w: bad account id in %q", ErrMalformedUri, uri)
	}
	tt, ok := ParseTimelineType(segs[3])
	if !ok {
		return MatchedUri{}, fmt.Errorf("%w: bad timeline type in %q", ErrMalformedUri, uri)
	}
	var isCombined bool
	switch segs[5] {
	case "0":
		isCombined = false
	case "1":
		isCombined = true
	default:
		return MatchedUri{}, fmt.Errorf("%w: bad combined flag in %q", ErrMalformedUri, uri)
	}

	res := MatchedUri{
		Kind:     MatchTimeline,
		Timeline: TimelineUri{AccountId: accountId, Timeline: tt, IsCombined: isCombined},
	}
	if len(segs) == 6 {
		return res, nil
	}

	switch segs[6] {
	case messageSegment:
		msgId, err := strconv.ParseInt(segs[7], 10, 64)
		if err != nil || msgId == 0 {
			return MatchedUri{}, fmt.Errorf("%w: bad message id in %q", ErrMalformedUri, uri)
		}
		res.Kind = MatchTimelineMsg
		res.Timeline.MsgId = msgId
	case searchSegment:
		term, err := url.PathUnescape(segs[7])
		if err != nil || term == "" {
			return MatchedUri{}, fmt.Errorf("%w: bad search term in %q", ErrMalformedUri, uri)
		}
		res.Kind = MatchTimelineSearch
		res.Timeline.SearchQuery = term
	default:
		return MatchedUri{}, fmt.Errorf("%w: %q", ErrMalformedUri, uri)
	}
	return res, nil
}
