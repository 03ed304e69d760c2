package shared

import (
	"fmt"
	"sync"
)

// NoticeKind classifies a transient user-visible notice.
type NoticeKind int

const (
	NoticeInfo NoticeKind = iota
	NoticeSuccess
	NoticeError
)

func (k NoticeKind) String() string {
	switch k {
	case NoticeInfo:
		return "info"
	case NoticeSuccess:
		return "success"
	case NoticeError:
		return "error"
	default:
		return ""
	}
}

// MarshalText renders the kind as its lowercase name.
func (k NoticeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *NoticeKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "info":
		*k = NoticeInfo
	case "success":
		*k = NoticeSuccess
	case "error":
		*k = NoticeError
	default:
		return fmt.Errorf("unknown notice kind %q", text)
	}
	return nil
}

// Notice is a short message surfaced to the user without interrupting what they were doing.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
}

// Notifier receives notices; implementations must not block.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to [Notifier].
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// DiscardNotifier drops every notice.
var DiscardNotifier Notifier = NotifierFunc(func(Notice) {})

// NoticeLog is a [Notifier] that keeps every notice in memory.
//
// Used for page flashes and in tests.
type NoticeLog struct {
	mu      sync.Mutex
	notices []Notice
}

func (l *NoticeLog) Notify(n Notice) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.notices = append(l.notices, n)
}

// Drain returns the collected notices and clears the log.
func (l *NoticeLog) Drain() []Notice {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.notices
	l.notices = nil
	return out
}

// Last returns the most recent notice, if any.
func (l *NoticeLog) Last() (Notice, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.notices) == 0 {
		return Notice{}, false
	}
	return l.notices[len(l.notices)-1], true
}
