package domain

import "time"

// Contact aggregates everything observed about one non-user identity over
// the course of an analysis run. Contacts are derived from the event
// collection and never persisted independently.
type Contact struct {
	Identity         string          `json:"identity"`
	EventsByChannel  map[Channel]int `json:"events_by_channel"`
	TotalEvents      int             `json:"total_events"`
	TagsSeen         []Tag           `json:"tags_seen"`
	FirstSeen        time.Time       `json:"first_seen"`
	LastSeen         time.Time       `json:"last_seen"`
	TotalCallSeconds int             `json:"total_call_seconds,omitempty"`
}

// Observe folds one event into the aggregate.
func (c *Contact) Observe(e *Event) {
	if c.EventsByChannel == nil {
		c.EventsByChannel = make(map[Channel]int)
	}
	c.EventsByChannel[e.Channel]++
	c.TotalEvents++
	if e.Channel == ChannelCall {
		c.TotalCallSeconds += e.DurationSeconds
	}
	if c.FirstSeen.IsZero() || e.Timestamp.Before(c.FirstSeen) {
		c.FirstSeen = e.Timestamp
	}
	if e.Timestamp.After(c.LastSeen) {
		c.LastSeen = e.Timestamp
	}
	for _, t := range e.Tags {
		if !c.hasTagSeen(t) {
			c.TagsSeen = append(c.TagsSeen, t)
		}
	}
}

func (c *Contact) hasTagSeen(t Tag) bool {
	for _, seen := range c.TagsSeen {
		if seen == t {
			return true
		}
	}
	return false
}
