// Package dict resolves non verbose message ids against a catalog
// extracted from the generating system, typically converted from a
// FIBEX description.
package dict

import (
	"fmt"
	"strings"
)

// MessageEntry describes one catalogued non verbose message. Format is
// the printf style string the generator compiled the arguments against.
type MessageEntry struct {
	ApplicationID string
	ContextID     string
	MessageID     uint32
	Name          string
	Format        string
}

type Store struct {
	scoped   map[scopedKey]MessageEntry
	wildcard map[uint32]MessageEntry
}

type scopedKey struct {
	app string
	ctx string
	id  uint32
}

type JSONFile struct {
	Messages []JSONMessageEntry `json:"messages"`
}

type JSONMessageEntry struct {
	ApplicationID string `json:"appId,omitempty"`
	ContextID     string `json:"ctxId,omitempty"`
	MessageID     int64  `json:"messageId"`
	Name          string `json:"name"`
	Format        string `json:"format,omitempty"`
}

func FromJSON(file JSONFile) (*Store, error) {
	store := &Store{
		scoped:   make(map[scopedKey]MessageEntry),
		wildcard: make(map[uint32]MessageEntry),
	}
	for i, entry := range file.Messages {
		if entry.MessageID < 0 || entry.MessageID > 0xFFFF_FFFF {
			return nil, fmt.Errorf("messages[%d]: message id out of range", i)
		}
		app := strings.TrimSpace(entry.ApplicationID)
		ctx := strings.TrimSpace(entry.ContextID)
		if len(app) > 4 {
			return nil, fmt.Errorf("messages[%d]: application id longer than 4 characters", i)
		}
		if len(ctx) > 4 {
			return nil, fmt.Errorf("messages[%d]: context id longer than 4 characters", i)
		}
		if (app == "") != (ctx == "") {
			return nil, fmt.Errorf("messages[%d]: appId and ctxId must be given together", i)
		}
		e := MessageEntry{
			ApplicationID: app,
			ContextID:     ctx,
			MessageID:     uint32(entry.MessageID),
			Name:          strings.TrimSpace(entry.Name),
			Format:        entry.Format,
		}
		if app == "" {
			if _, exists := store.wildcard[e.MessageID]; exists {
				return nil, fmt.Errorf("messages[%d]: duplicate message id %d", i, e.MessageID)
			}
			store.wildcard[e.MessageID] = e
			continue
		}
		key := scopedKey{app: app, ctx: ctx, id: e.MessageID}
		if _, exists := store.scoped[key]; exists {
			return nil, fmt.Errorf("messages[%d]: duplicate app/ctx/message id", i)
		}
		store.scoped[key] = e
	}
	return store, nil
}

// Lookup resolves a message id. Entries scoped to an app/ctx pair take
// precedence over catalog wide ones.
func (s *Store) Lookup(app, ctx string, id uint32) (MessageEntry, bool) {
	if s == nil {
		return MessageEntry{}, false
	}
	if e, ok := s.scoped[scopedKey{app: app, ctx: ctx, id: id}]; ok {
		return e, true
	}
	e, ok := s.wildcard[id]
	return e, ok
}

// Len returns the number of catalogued messages.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.scoped) + len(s.wildcard)
}
