package voicecmd

import "fmt"

// Type names a [Command] variant. The values double as the "type" field of
// the JSON form.
type Type string

const (
	TypeReplace    Type = "replace"
	TypeDelete     Type = "delete"
	TypeInsert     Type = "insert"
	TypeCapitalize Type = "capitalize"
	TypeScratch    Type = "scratch"
	TypeWordCount  Type = "word-count"
	TypeRead       Type = "read"
	TypeUndo       Type = "undo"
	TypeRedo       Type = "redo"
	TypeUnknown    Type = "unknown"
)

// Position says on which side of its anchor an [Insert] goes.
type Position string

const (
	Before Position = "before"
	After  Position = "after"
)

// ReadKind selects what a [Read] command reads aloud.
type ReadKind string

const (
	ReadBack      ReadKind = "back"
	ReadAll       ReadKind = "all"
	ReadSelection ReadKind = "selection"
	ReadStop      ReadKind = "stop"
)

// Command is a parsed voice command. The set of implementations is closed:
// it is one of [Replace], [Delete], [Insert], [Capitalize], [Scratch],
// [WordCount], [Read], [Undo], [Redo] or [Unknown].
type Command interface {
	Type() Type
	command()
}

// Replace substitutes the last occurrence of Target with Replacement.
type Replace struct {
	Target      string
	Replacement string
}

// Delete removes the last occurrence of Target.
type Delete struct {
	Target string
}

// Insert places Text next to the last occurrence of Anchor.
type Insert struct {
	Text     string
	Anchor   string
	Position Position
}

// Capitalize upper-cases the first letter of the last occurrence of Target,
// or of the last word in the document when Target is empty.
type Capitalize struct {
	Target string
}

// Scratch removes the most recently dictated fragment.
type Scratch struct{}

// WordCount asks for the number of words in the document.
type WordCount struct{}

// Read controls read-aloud.
type Read struct {
	Kind ReadKind
}

// Undo reverts the last change.
type Undo struct{}

// Redo re-applies the last undone change.
type Redo struct{}

// Unknown is returned for utterances that match no command.
type Unknown struct {
	Utterance string
}

func (Replace) Type() Type    { return TypeReplace }
func (Delete) Type() Type     { return TypeDelete }
func (Insert) Type() Type     { return TypeInsert }
func (Capitalize) Type() Type { return TypeCapitalize }
func (Scratch) Type() Type    { return TypeScratch }
func (WordCount) Type() Type  { return TypeWordCount }
func (Read) Type() Type       { return TypeRead }
func (Undo) Type() Type       { return TypeUndo }
func (Redo) Type() Type       { return TypeRedo }
func (Unknown) Type() Type    { return TypeUnknown }

func (Replace) command()    {}
func (Delete) command()     {}
func (Insert) command()     {}
func (Capitalize) command() {}
func (Scratch) command()    {}
func (WordCount) command()  {}
func (Read) command()       {}
func (Undo) command()       {}
func (Redo) command()       {}
func (Unknown) command()    {}

// Mutating reports whether cmd changes the document text through the edit
// package. Scratch, Undo and Redo also change the text but are resolved by
// the caller from its own history.
func Mutating(cmd Command) bool {
	switch cmd.(type) {
	case Replace, Delete, Insert, Capitalize:
		return true
	}
	return false
}

// Wire is the flat JSON form of a [Command], as exchanged with editor
// clients. Only the fields of the given Type are set.
type Wire struct {
	Type        Type     `json:"type"`
	Target      string   `json:"target,omitempty"`
	Replacement string   `json:"replacement,omitempty"`
	Text        string   `json:"text,omitempty"`
	Anchor      string   `json:"anchor,omitempty"`
	Position    Position `json:"position,omitempty"`
	ReadType    ReadKind `json:"readType,omitempty"`
	Utterance   string   `json:"utterance,omitempty"`
}

// ToWire flattens cmd.
func ToWire(cmd Command) Wire {
	switch c := cmd.(type) {
	case Replace:
		return Wire{Type: TypeReplace, Target: c.Target, Replacement: c.Replacement}
	case Delete:
		return Wire{Type: TypeDelete, Target: c.Target}
	case Insert:
		return Wire{Type: TypeInsert, Text: c.Text, Anchor: c.Anchor, Position: c.Position}
	case Capitalize:
		return Wire{Type: TypeCapitalize, Target: c.Target}
	case Read:
		return Wire{Type: TypeRead, ReadType: c.Kind}
	case Unknown:
		return Wire{Type: TypeUnknown, Utterance: c.Utterance}
	case nil:
		return Wire{Type: TypeUnknown}
	}
	return Wire{Type: cmd.Type()}
}

// Command rebuilds the typed command. It fails when a variant's required
// fields are missing, so a replace without a replacement cannot get through.
func (w Wire) Command() (Command, error) {
	switch w.Type {
	case TypeReplace:
		if w.Target == "" || w.Replacement == "" {
			return nil, fmt.Errorf("voicecmd: replace needs target and replacement")
		}
		return Replace{Target: w.Target, Replacement: w.Replacement}, nil
	case TypeDelete:
		if w.Target == "" {
			return nil, fmt.Errorf("voicecmd: delete needs a target")
		}
		return Delete{Target: w.Target}, nil
	case TypeInsert:
		if w.Text == "" || w.Anchor == "" {
			return nil, fmt.Errorf("voicecmd: insert needs text and anchor")
		}
		if w.Position != Before && w.Position != After {
			return nil, fmt.Errorf("voicecmd: insert position %q is not before or after", w.Position)
		}
		return Insert{Text: w.Text, Anchor: w.Anchor, Position: w.Position}, nil
	case TypeCapitalize:
		return Capitalize{Target: w.Target}, nil
	case TypeScratch:
		return Scratch{}, nil
	case TypeWordCount:
		return WordCount{}, nil
	case TypeRead:
		switch w.ReadType {
		case ReadBack, ReadAll, ReadSelection, ReadStop:
			return Read{Kind: w.ReadType}, nil
		}
		return nil, fmt.Errorf("voicecmd: unknown read type %q", w.ReadType)
	case TypeUndo:
		return Undo{}, nil
	case TypeRedo:
		return Redo{}, nil
	case TypeUnknown:
		return Unknown{Utterance: w.Utterance}, nil
	}
	return nil, fmt.Errorf("voicecmd: unknown command type %q", w.Type)
}
