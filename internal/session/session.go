// Package session implements the per-connection handshake automaton and
// chat relay.
//
// A Session is driven by exactly one goroutine, the protocol unit, which
// feeds it complete inbound text frames through HandleText.  Every field
// is owned by that goroutine.  Other sessions interact with this one only
// through the Registry and this session's relay channel.
//
// The handshake is: choose a display name, then name the partner.  A
// name shared by several sessions asks the client to pick a session id.
// Once Ready, every text frame is relayed to the partner as
// "<name>: <text>".
package session

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"yggdrasil/internal/metrics"
	"yggdrasil/internal/registry"
	"yggdrasil/internal/relay"
	"yggdrasil/util"
)

// Replier delivers server replies to the session's own client.
type Replier interface {
	Reply(text string) error
}

// Session is one live connection's protocol state.
type Session struct {
	id       string
	name     string
	named    bool
	target   string
	targeted bool
	state    State

	outbox   *relay.Channel
	registry *registry.Registry
	out      Replier
	logger   *util.Logger
	metrics  *metrics.Collector

	closeOnce sync.Once
}

// New creates a session in AwaitingUsername with a fresh relay channel.
// It is not reachable by other sessions until Open is called.  logger
// is expected to be scoped to this session already.
func New(id string, reg *registry.Registry, out Replier, logger *util.Logger, m *metrics.Collector) *Session {
	if logger == nil {
		logger = util.NewLogger(0)
	}
	return &Session{
		id:       id,
		state:    State{Phase: AwaitingUsername},
		outbox:   relay.New(),
		registry: reg,
		out:      out,
		logger:   logger,
		metrics:  m,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the current protocol state.
func (s *Session) State() State { return s.state }

// Name returns the display name, if one has been chosen.
func (s *Session) Name() (string, bool) { return s.name, s.named }

// Target returns the chosen partner id, if any.
func (s *Session) Target() (string, bool) { return s.target, s.targeted }

// Outbox returns the receiving side of the session's relay channel.  It
// belongs to the forwarder.
func (s *Session) Outbox() *relay.Channel { return s.outbox }

// Open publishes the session in the Directory.
func (s *Session) Open() {
	s.registry.Directory.Register(s.id, s.outbox)
}

// Close withdraws the session from the Directory and closes its relay
// channel, which ends the forwarder once the queue drains.  The Username
// Index is left untouched.  Close is idempotent.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.registry.Directory.Remove(s.id)
		s.outbox.Close()
	})
}

// HandleText advances the automaton with one inbound text frame.  The
// only error returned is a failure to write a reply, which is terminal
// for the connection.
func (s *Session) HandleText(text string) error {
	before := s.state
	var err error

	switch s.state.Phase {
	case AwaitingUsername:
		err = s.chooseName(text)
	case AwaitingRecipient:
		err = s.chooseRecipient(text)
	case AwaitingRecipientChoice:
		err = s.chooseAmong(text)
	case Ready:
		err = s.relayChat(text)
	}

	if s.state != before {
		s.logger.Debug("%s -> %s", before, s.state)
	}
	return err
}

// ── handshake ────────────────────────────────────────────────────────

func (s *Session) chooseName(name string) error {
	s.name, s.named = name, true
	s.registry.Usernames.AddMembership(name, s.id)
	s.state = State{Phase: AwaitingRecipient}
	return s.reply(ReplyRecipientPrompt)
}

func (s *Session) chooseRecipient(name string) error {
	members := s.registry.Usernames.LookupMembers(name)

	switch len(members) {
	case 0:
		return s.reply(ReplyNoUsersFound)
	case 1:
		s.setTarget(members[0])
		return s.connect(members[0])
	default:
		sort.Strings(members)
		s.state = State{Phase: AwaitingRecipientChoice, Pending: name}
		return s.reply(candidateList(name, members))
	}
}

func (s *Session) chooseAmong(id string) error {
	if _, ok := s.registry.Directory.Lookup(id); !ok {
		return s.reply(ReplyInvalidChoice)
	}
	s.setTarget(id)
	return s.connect(id)
}

// setTarget records the partner and enters Ready before reachability is
// confirmed; connect does not roll this back.
func (s *Session) setTarget(id string) {
	s.target, s.targeted = id, true
	s.state = State{Phase: Ready}
}

// connect announces this session to the partner by enqueueing our id on
// the partner's relay channel, then confirms to our own client.
func (s *Session) connect(id string) error {
	h, ok := s.registry.Directory.Lookup(id)
	if !ok {
		return s.reply(ReplyUserNotFound)
	}
	if err := h.Send(s.id); err != nil {
		s.logger.Verbose("partner %s closed during connect: %v", id, err)
		return s.reply(ReplyUserNotFound)
	}
	s.metrics.RelayConnected()
	s.logger.Verbose("connected to %s", id)
	return s.reply(ReplyConnectedPrefix + id)
}

// ── chat ─────────────────────────────────────────────────────────────

func (s *Session) relayChat(text string) error {
	if !s.targeted {
		return s.reply(ReplyNotConnected)
	}

	h, ok := s.registry.Directory.Lookup(s.target)
	if !ok {
		return s.reply(ReplyRecipientOffline)
	}
	if err := h.Send(s.displayName() + ": " + text); err != nil {
		return s.reply(ReplyRecipientOffline)
	}
	s.metrics.MessageRelayed()
	return s.reply(ReplySentPrefix + s.target)
}

func (s *Session) displayName() string {
	if s.named {
		return s.name
	}
	return anonymousName
}

func (s *Session) reply(text string) error {
	if err := s.out.Reply(text); err != nil {
		return fmt.Errorf("session %s reply: %w", s.id, err)
	}
	return nil
}

// candidateList renders the multiple-match prompt.
func candidateList(name string, ids []string) string {
	var b strings.Builder
	b.WriteString(ReplyMultipleHeader)
	for _, id := range ids {
		fmt.Fprintf(&b, "\n- %s (UUID: %s)", name, id)
	}
	return b.String()
}
