package document

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/MrWong99/voxedit/internal/edit"
	"github.com/MrWong99/voxedit/internal/history"
	"github.com/MrWong99/voxedit/internal/observe"
	"github.com/MrWong99/voxedit/internal/text/segment"
	"github.com/MrWong99/voxedit/internal/text/spell"
	"github.com/MrWong99/voxedit/internal/transcript"
	"github.com/MrWong99/voxedit/internal/voicecmd"
)

// User-facing messages attached to an [Outcome].
const (
	MsgNotUnderstood = "Sorry, I didn't understand"
	MsgNothingToUndo = "Nothing to undo"
	MsgNothingToRedo = "Nothing to redo"
	MsgNoSelection   = "Nothing is selected"
	MsgNoScratch     = "Nothing to scratch"
	MsgNoWord        = "There is no word to capitalize"
)

// Selection is a byte range of the document text. An empty range (Start ==
// End) means nothing is selected.
type Selection struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Outcome reports what a voice command did.
type Outcome struct {
	Command voicecmd.Wire `json:"command"`

	// Text is the document after the command.
	Text string `json:"text"`

	// Changed is set when Text differs from the document before the command.
	Changed bool `json:"changed"`

	// MatchCount and Position come from the edit, when there was one.
	MatchCount int `json:"matchCount,omitempty"`
	Position   int `json:"position,omitempty"`

	// Message is a short status line for the user.
	Message string `json:"message,omitempty"`

	// Speak is text to read aloud.
	Speak string `json:"speak,omitempty"`

	// StopReading asks the client to stop any speech in progress.
	StopReading bool `json:"stopReading,omitempty"`

	WordCount int `json:"wordCount,omitempty"`

	// Status is one of the observe.Status* values.
	Status string `json:"status"`
}

// Dictation reports what a transcript fragment did.
type Dictation struct {
	// Final is false for partial (preview) fragments.
	Final bool `json:"final"`

	// Preview is the pending partial text. Empty after a final fragment.
	Preview string `json:"preview"`

	// Appended is the fragment added to the document, after correction.
	Appended string `json:"appended,omitempty"`

	// Text is the document after the fragment.
	Text string `json:"text"`

	// Corrections lists vocabulary substitutions made in Appended.
	Corrections []transcript.Correction `json:"corrections,omitempty"`
}

// Session is one document being dictated and edited. All methods are safe
// for concurrent use; commands against one session are serialised.
type Session struct {
	id      string
	created time.Time
	kit     func() *Toolkit
	metrics *observe.Metrics

	mu           sync.Mutex
	text         string
	preview      string
	lastFragment string
	history      *history.Stack
	ignored      *spell.Session
}

func newSession(id string, kit func() *Toolkit, historyLimit int, m *observe.Metrics) *Session {
	return &Session{
		id:      id,
		created: time.Now().UTC(),
		kit:     kit,
		metrics: m,
		history: history.New(historyLimit),
		ignored: spell.NewSession(),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// CreatedAt returns when the session was opened.
func (s *Session) CreatedAt() time.Time { return s.created }

// Text returns the current document text.
func (s *Session) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

// Preview returns the pending partial transcript, if any.
func (s *Session) Preview() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preview
}

// CanUndo reports whether an undo command would change the document.
func (s *Session) CanUndo() bool { return s.history.CanUndo() }

// CanRedo reports whether a redo command would change the document.
func (s *Session) CanRedo() bool { return s.history.CanRedo() }

// SetText replaces the whole document, for example after the user typed in
// the editor. The text is normalized so analysis offsets address it
// directly. The previous text goes on the undo history.
func (s *Session) SetText(text string) string {
	text = segment.Normalize(text)

	s.mu.Lock()
	defer s.mu.Unlock()
	if text != s.text {
		s.history.Push(s.text)
		s.text = text
		s.lastFragment = ""
	}
	return s.text
}

// Analyze runs the full analysis on the current text.
func (s *Session) Analyze(ctx context.Context, final bool) (*Analysis, error) {
	return s.kit().Analyzer.Analyze(ctx, s.Text(), s.ignored, final)
}

// IgnoreWord stops word from being flagged in this session.
func (s *Session) IgnoreWord(word string) {
	s.ignored.Ignore(word)
}

// ResetIgnored forgets every ignored word.
func (s *Session) ResetIgnored() {
	s.ignored.Reset()
}

// IgnoredWords returns the ignored words in sorted order.
func (s *Session) IgnoredWords() []string {
	return s.ignored.Words()
}

// Dictate handles a transcript fragment. A partial fragment only replaces
// the preview. A final fragment is optionally corrected against the
// vocabulary and appended to the document, separated by one space.
func (s *Session) Dictate(ctx context.Context, text string, final bool) (*Dictation, error) {
	if s.metrics != nil {
		s.metrics.RecordUtterance(ctx, final)
	}

	if !final {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.preview = text
		return &Dictation{Preview: text, Text: s.text}, nil
	}

	fragment := strings.TrimSpace(segment.Normalize(text))
	var corrections []transcript.Correction
	if kit := s.kit(); kit.Corrector != nil && fragment != "" {
		res, err := kit.Corrector.Correct(ctx, fragment, kit.Terms)
		if err != nil {
			return nil, fmt.Errorf("document: correct dictation: %w", err)
		}
		fragment = res.Corrected
		corrections = res.Corrections
		if len(corrections) > 0 {
			observe.Logger(observe.WithSession(ctx, s.id)).Debug("document: dictation corrected",
				"corrections", len(corrections),
			)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.preview = ""
	if fragment == "" {
		return &Dictation{Final: true, Text: s.text}, nil
	}

	s.history.Push(s.text)
	s.text = appendFragment(s.text, fragment)
	s.lastFragment = fragment
	return &Dictation{
		Final:       true,
		Appended:    fragment,
		Text:        s.text,
		Corrections: corrections,
	}, nil
}

func appendFragment(doc, fragment string) string {
	switch {
	case doc == "":
		return fragment
	case strings.HasSuffix(doc, " ") || strings.HasSuffix(doc, "\n"):
		return doc + fragment
	}
	return doc + " " + fragment
}

// Execute parses utterance as a voice command and runs it against the
// document. sel is only used by "read selection". Failures a user can cause
// (unknown phrasing, missing target, empty history) are reported through
// [Outcome.Message], not as errors.
func (s *Session) Execute(ctx context.Context, utterance string, sel Selection) (*Outcome, error) {
	ctx, span := observe.StartSpan(observe.WithSession(ctx, s.id), "document.Execute")
	defer span.End()

	cmd := s.kit().Parser.Parse(utterance)

	s.mu.Lock()
	out, err := s.execute(cmd, sel)
	s.mu.Unlock()
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordCommand(ctx, string(cmd.Type()), observe.StatusError)
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordCommand(ctx, string(cmd.Type()), out.Status)
	}
	observe.Logger(ctx).Info("document: command executed",
		"type", cmd.Type(),
		"status", out.Status,
		"changed", out.Changed,
	)
	return out, nil
}

// execute runs cmd with s.mu held.
func (s *Session) execute(cmd voicecmd.Command, sel Selection) (*Outcome, error) {
	out := &Outcome{Command: voicecmd.ToWire(cmd), Text: s.text, Status: observe.StatusOK}

	switch c := cmd.(type) {
	case voicecmd.Unknown:
		out.Message = MsgNotUnderstood
		out.Status = observe.StatusUnknown

	case voicecmd.Undo:
		prev, ok := s.history.Undo(s.text)
		if !ok {
			out.Message = MsgNothingToUndo
			out.Status = observe.StatusNoHistory
			break
		}
		s.replaceText(out, prev)

	case voicecmd.Redo:
		next, ok := s.history.Redo(s.text)
		if !ok {
			out.Message = MsgNothingToRedo
			out.Status = observe.StatusNoHistory
			break
		}
		s.replaceText(out, next)

	case voicecmd.WordCount:
		n := segment.Segment(s.text).WordCount()
		out.WordCount = n
		out.Speak = wordCountPhrase(n)
		out.Message = out.Speak

	case voicecmd.Read:
		s.read(out, c.Kind, sel)

	case voicecmd.Scratch:
		if s.lastFragment == "" || !strings.HasSuffix(s.text, s.lastFragment) {
			out.Message = MsgNoScratch
			out.Status = observe.StatusNotFound
			break
		}
		s.history.Push(s.text)
		s.replaceText(out, strings.TrimRight(strings.TrimSuffix(s.text, s.lastFragment), " \n"))
		s.lastFragment = ""

	default:
		res, err := edit.Apply(s.text, cmd)
		if errors.Is(err, edit.ErrNotFound) {
			out.Message = notFoundMessage(cmd)
			out.Status = observe.StatusNotFound
			break
		}
		if err != nil {
			return nil, fmt.Errorf("document: execute %s: %w", cmd.Type(), err)
		}
		s.history.Push(s.text)
		s.replaceText(out, res.NewText)
		out.MatchCount = res.MatchCount
		out.Position = res.Position
		if res.MatchCount > 1 {
			out.Message = fmt.Sprintf("%d matches, used last", res.MatchCount)
		}
	}
	return out, nil
}

// replaceText installs the normalized text as the document and records it
// on out. Edit replacements come straight from the utterance, so they may
// still carry tabs or zero-width characters.
func (s *Session) replaceText(out *Outcome, text string) {
	text = segment.Normalize(text)
	out.Changed = text != s.text
	s.text = text
	out.Text = text
}

func (s *Session) read(out *Outcome, kind voicecmd.ReadKind, sel Selection) {
	switch kind {
	case voicecmd.ReadStop:
		out.StopReading = true
	case voicecmd.ReadAll:
		out.Speak = s.text
	case voicecmd.ReadBack:
		if last, ok := segment.Segment(s.text).LastSentence(); ok {
			out.Speak = last.Text
		}
	case voicecmd.ReadSelection:
		if sel.Start < 0 || sel.End > len(s.text) || sel.Start >= sel.End {
			out.Message = MsgNoSelection
			out.Status = observe.StatusNotFound
			return
		}
		out.Speak = s.text[sel.Start:sel.End]
	}
}

func notFoundMessage(cmd voicecmd.Command) string {
	var target string
	switch c := cmd.(type) {
	case voicecmd.Replace:
		target = c.Target
	case voicecmd.Delete:
		target = c.Target
	case voicecmd.Insert:
		target = c.Anchor
	case voicecmd.Capitalize:
		if c.Target == "" {
			return MsgNoWord
		}
		target = c.Target
	}
	return fmt.Sprintf("Couldn't find %q", target)
}

func wordCountPhrase(n int) string {
	if n == 1 {
		return "1 word"
	}
	return fmt.Sprintf("%d words", n)
}
