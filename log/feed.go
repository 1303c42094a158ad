package log

import (
	"strings"
	"sync"

	logrus "github.com/sirupsen/logrus"
)

// subscriberBuffer is the number of pending lines a slow subscriber may hold before lines are dropped.
const subscriberBuffer = 256

// broadcastHook fans formatted entries out to live subscribers without ever blocking the logger.
type broadcastHook struct {
	mu   sync.RWMutex
	next int
	subs map[int]chan string
}

var feed = &broadcastHook{subs: make(map[int]chan string)}

func (h *broadcastHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *broadcastHook) Fire(entry *logrus.Entry) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.subs) == 0 {
		return nil
	}

	line, err := entry.String()
	if err != nil {
		return err
	}
	line = strings.TrimRight(line, "\n")

	for _, ch := range h.subs {
		select {
		case ch <- line:
		default:
		}
	}
	return nil
}

func (h *broadcastHook) subscribe() (<-chan string, func()) {
	ch := make(chan string, subscriberBuffer)

	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Subscribe registers a live listener for log lines. The returned func detaches it and closes the channel.
func Subscribe() (<-chan string, func()) {
	return feed.subscribe()
}
