// Package monitor polls a torrent client and turns differences between
// listings into events on the bus.
package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pokerjest/qbittorrent-go/internal/event"
	"github.com/pokerjest/qbittorrent-go/pkg/torrentclient"
)

// AfterPollFunc runs after every successful poll.
type AfterPollFunc func(ctx context.Context, data *torrentclient.AllClientData)

type Monitor struct {
	client    torrentclient.Client
	bus       event.Bus
	interval  time.Duration
	log       logrus.FieldLogger
	afterPoll []AfterPollFunc

	mu     sync.Mutex
	known  map[string]torrentclient.NormalizedTorrent
	primed bool
}

type Option func(*Monitor)

func WithLogger(log logrus.FieldLogger) Option {
	return func(m *Monitor) { m.log = log }
}

func WithAfterPoll(fn AfterPollFunc) Option {
	return func(m *Monitor) { m.afterPoll = append(m.afterPoll, fn) }
}

func New(client torrentclient.Client, bus event.Bus, interval time.Duration, opts ...Option) *Monitor {
	m := &Monitor{
		client:   client,
		bus:      bus,
		interval: interval,
		log:      logrus.StandardLogger(),
		known:    map[string]torrentclient.NormalizedTorrent{},
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.WithField("component", "monitor")
	return m
}

// Run polls immediately and then every interval until ctx is done. Poll
// errors are logged and do not stop the loop.
func (m *Monitor) Run(ctx context.Context) error {
	m.log.WithField("interval", m.interval.String()).Info("monitor started")
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		if err := m.Poll(ctx); err != nil && ctx.Err() == nil {
			m.log.WithError(err).Warn("poll failed")
		}
		select {
		case <-ctx.Done():
			m.log.Info("monitor stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// Poll lists every torrent once and publishes the changes since the last
// successful poll. The first poll only records the baseline.
func (m *Monitor) Poll(ctx context.Context) error {
	data, err := m.client.GetAllData(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	changes := m.diff(data.Torrents)
	m.mu.Unlock()

	for _, c := range changes {
		m.bus.Publish(c.typ, c.change)
	}
	if len(changes) > 0 {
		m.log.WithField("events", len(changes)).Debug("published torrent changes")
	}

	for _, fn := range m.afterPoll {
		fn(ctx, data)
	}
	return nil
}

type pending struct {
	typ    event.EventType
	change event.TorrentChange
}

// diff must be called with m.mu held.
func (m *Monitor) diff(torrents []torrentclient.NormalizedTorrent) []pending {
	current := make(map[string]torrentclient.NormalizedTorrent, len(torrents))
	for _, t := range torrents {
		current[t.ID] = t
	}

	var out []pending
	if m.primed {
		for _, t := range torrents {
			prev, ok := m.known[t.ID]
			if !ok {
				out = append(out, pending{event.EventTorrentAdded, event.TorrentChange{
					Hash: t.ID, Name: t.Name, Current: t.State, Torrent: &t,
				}})
				continue
			}
			if prev.State != t.State {
				out = append(out, pending{event.EventTorrentStateChanged, event.TorrentChange{
					Hash: t.ID, Name: t.Name, Previous: prev.State, Current: t.State, Torrent: &t,
				}})
			}
			if !prev.IsCompleted && t.IsCompleted {
				out = append(out, pending{event.EventTorrentCompleted, event.TorrentChange{
					Hash: t.ID, Name: t.Name, Previous: prev.State, Current: t.State, Torrent: &t,
				}})
			}
		}
		for id, prev := range m.known {
			if _, ok := current[id]; !ok {
				out = append(out, pending{event.EventTorrentRemoved, event.TorrentChange{
					Hash: id, Name: prev.Name, Previous: prev.State,
				}})
			}
		}
	}

	m.known = current
	m.primed = true
	return out
}
