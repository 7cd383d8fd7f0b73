package marketdata

// Mappings resolves feed-agnostic observable keys to the concrete feed they
// are sourced from. Keys with no configured feed resolve to a missing-mapping
// ID rather than an error, so unrelated keys in the same request still build.
type Mappings struct {
	byType      map[Type]Feed
	byKey       map[Key]Feed
	defaultFeed Feed
}

// NewMappings constructs a mapping layer with an optional default feed.
// An empty default means unmapped keys are missing.
func NewMappings(defaultFeed Feed) *Mappings {
	return &Mappings{
		byType:      make(map[Type]Feed),
		byKey:       make(map[Key]Feed),
		defaultFeed: defaultFeed,
	}
}

// SetFeed maps every key of a type to a feed.
func (m *Mappings) SetFeed(t Type, feed Feed) *Mappings {
	m.byType[t] = feed
	return m
}

// SetKeyFeed maps one specific key to a feed, overriding the type mapping.
func (m *Mappings) SetKeyFeed(k Key, feed Feed) *Mappings {
	m.byKey[k] = feed
	return m
}

// Resolve binds a key to its feed. Derived keys carry FeedNone; observables
// without any mapping carry FeedNoMatch.
func (m *Mappings) Resolve(k Key) ID {
	if !k.Observable() {
		return ID{Key: k, Feed: FeedNone}
	}
	if feed, ok := m.byKey[k]; ok {
		return ID{Key: k, Feed: feed}
	}
	if feed, ok := m.byType[k.Type()]; ok {
		return ID{Key: k, Feed: feed}
	}
	if m.defaultFeed != "" {
		return ID{Key: k, Feed: m.defaultFeed}
	}
	return ID{Key: k, Feed: FeedNoMatch}
}
