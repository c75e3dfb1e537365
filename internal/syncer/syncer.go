package syncer

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/akhdanfadh/momosync/internal/lock"
	"github.com/akhdanfadh/momosync/internal/logger"
)

// contentSeparator joins words into notepad content.
const contentSeparator = ","

// NotepadClient is the subset of the Maimemo client the syncer drives.
// It is satisfied by *maimemo.Client.
type NotepadClient interface {
	Title() string
	FindNotepad(ctx context.Context) (id string, found bool, err error)
	CreateNotepad(ctx context.Context) (string, error)
	ListWords(ctx context.Context, id string) ([]string, error)
	UpdateNotepad(ctx context.Context, id, content string) (bool, error)
}

// Syncer merges local words into a remote notepad.
type Syncer struct {
	client NotepadClient
	locker lock.Locker
	logger logger.Logger
}

// Option configures the Syncer.
type Option func(s *Syncer)

// New creates a new Syncer with the given client and options.
func New(client NotepadClient, opts ...Option) *Syncer {
	s := &Syncer{
		client: client,
		logger: logger.Noop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithLogger sets the logger for info/warn/error messages.
func WithLogger(l logger.Logger) Option {
	return func(s *Syncer) {
		s.logger = l
	}
}

// WithLocker guards every Sync with a lock keyed by the notepad title.
// Without a locker, concurrent runs against one notepad may double-create it
// or lose each other's words.
func WithLocker(l lock.Locker) Option {
	return func(s *Syncer) {
		s.locker = l
	}
}

// Result describes what a Sync did.
type Result struct {
	NotepadID string
	Created   bool     // the notepad did not exist and was created
	Existing  int      // distinct words on the notepad before the sync
	Added     []string // words written that were not there before, sorted
	Changed   bool     // an update was sent and accepted
}

// Sync merges words into the notepad and reports whether it changed.
//
// The following business logic is made:
//  1. Find the notepad by title; create it if it does not exist.
//  2. Read its current words (a failed read may count as no words, see maimemo.ReadFailurePolicy).
//  3. Union them with the given words by exact string equality.
//  4. If the union has no more words than the notepad, return false without writing.
//  5. Otherwise write the sorted union as the new content and return the update's success flag.
func (s *Syncer) Sync(ctx context.Context, words []string) (bool, error) {
	res, err := s.SyncResult(ctx, words)
	if err != nil {
		return false, err
	}
	return res.Changed, nil
}

// SyncResult is Sync with a detailed report.
func (s *Syncer) SyncResult(ctx context.Context, words []string) (Result, error) {
	var res Result

	if s.locker != nil {
		unlock, err := s.locker.Lock(ctx, s.client.Title())
		if err != nil {
			return res, fmt.Errorf("locking notepad %q: %w", s.client.Title(), err)
		}
		defer unlock()
	}

	id, found, err := s.client.FindNotepad(ctx)
	if err != nil {
		return res, err
	}
	if !found {
		s.logger.Info("notepad %q not found, creating it", s.client.Title())
		if id, err = s.client.CreateNotepad(ctx); err != nil {
			return res, err
		}
		res.Created = true
	}
	res.NotepadID = id

	existing, err := s.client.ListWords(ctx, id)
	if err != nil {
		return res, err
	}

	baseline := toSet(existing)
	union := Union(existing, words)
	res.Existing = len(baseline)

	// union always contains baseline, so equal sizes mean equal sets
	if len(union) == len(baseline) {
		s.logger.Info("no new words for notepad %q, nothing to update", s.client.Title())
		return res, nil
	}
	res.Added = newWords(baseline, union)

	s.logger.Info("adding %d word(s) to notepad %q", len(res.Added), s.client.Title())
	ok, err := s.client.UpdateNotepad(ctx, id, Join(union))
	if err != nil {
		return res, err
	}
	res.Changed = ok
	return res, nil
}

// Plan is a read-only preview of a Sync.
type Plan struct {
	NotepadID string // empty when the notepad does not exist yet
	Exists    bool
	Existing  int      // distinct words on the notepad
	Added     []string // words a Sync would add, sorted
}

// Plan computes what Sync would do without creating or writing anything.
func (s *Syncer) Plan(ctx context.Context, words []string) (Plan, error) {
	var p Plan

	id, found, err := s.client.FindNotepad(ctx)
	if err != nil {
		return p, err
	}
	p.NotepadID, p.Exists = id, found

	var existing []string
	if found {
		if existing, err = s.client.ListWords(ctx, id); err != nil {
			return p, err
		}
	}

	baseline := toSet(existing)
	p.Existing = len(baseline)
	p.Added = newWords(baseline, Union(existing, words))
	return p, nil
}

// Union returns the distinct words of existing and incoming, sorted.
// Words are compared as-is: no case folding or trimming.
func Union(existing, incoming []string) []string {
	set := toSet(existing)
	for _, w := range incoming {
		set[w] = struct{}{}
	}

	union := make([]string, 0, len(set))
	for w := range set {
		union = append(union, w)
	}
	slices.Sort(union)
	return union
}

// Join builds notepad content from words.
func Join(words []string) string {
	return strings.Join(words, contentSeparator)
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// newWords returns the words of the sorted union that are not in baseline.
func newWords(baseline map[string]struct{}, union []string) []string {
	added := make([]string, 0, len(union)-len(baseline))
	for _, w := range union {
		if _, ok := baseline[w]; !ok {
			added = append(added, w)
		}
	}
	return added
}
