package domain

import (
	"fmt"
	"strings"
	"time"
)

type Verdict string

const (
	VerdictYes    Verdict = "yes"
	VerdictNo     Verdict = "no"
	VerdictUnable Verdict = "unable"
	VerdictFinal  Verdict = "final"
	VerdictNotSet Verdict = "not_set"
)

func ParseVerdict(s string) (Verdict, bool) {
	switch Verdict(strings.ToLower(strings.TrimSpace(s))) {
	case VerdictYes:
		return VerdictYes, true
	case VerdictNo:
		return VerdictNo, true
	case VerdictUnable:
		return VerdictUnable, true
	case VerdictFinal:
		return VerdictFinal, true
	default:
		return VerdictNotSet, false
	}
}

type Question struct {
	Text string `json:"text"`
}

type Answer struct {
	Verdict   Verdict   `json:"verdict"`
	Comment   string    `json:"comment,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewAnswer(verdict Verdict, comment string, at time.Time) Answer {
	return Answer{Verdict: verdict, Comment: comment, Timestamp: at.UTC().Truncate(time.Second)}
}

// ParseAnswer reads an AI reply of the form "VERDICT; comment". A reply
// without a separator is matched on its first word. Unknown verdicts keep the
// whole reply as the comment.
func ParseAnswer(reply string, at time.Time) Answer {
	answer := NewAnswer(VerdictNotSet, "", at)

	reply = strings.TrimSpace(reply)
	if reply == "" {
		return answer
	}

	head, comment, found := strings.Cut(reply, ";")
	if !found {
		fields := strings.Fields(reply)
		head = fields[0]
		comment = strings.TrimSpace(strings.TrimPrefix(reply, head))
	}

	verdict, ok := ParseVerdict(strings.Trim(head, " .,!:"))
	if !ok {
		answer.Comment = reply
		return answer
	}

	answer.Verdict = verdict
	answer.Comment = strings.TrimSpace(comment)
	return answer
}

type Record struct {
	Question Question `json:"question"`
	Answer   Answer   `json:"answer"`
}

// Game is the per-session state. Identity is the secret the player is trying
// to guess.
type Game struct {
	Identity string    `json:"identity,omitempty"`
	Language Language  `json:"language"`
	Records  []Record  `json:"records"`
	Pending  *Question `json:"pending_question,omitempty"`
	Ended    bool      `json:"ended"`
	Error    string    `json:"error,omitempty"`
	Version  uint64    `json:"version"`
}

func NewGame(identity string, language Language) Game {
	return Game{Identity: identity, Language: language, Records: []Record{}}
}

func (g Game) IsPending() bool {
	return g.Pending != nil
}

func (g *Game) SetPending(text string) error {
	if g.Ended {
		return ErrGameEnded
	}
	if g.Pending != nil {
		return ErrBusy
	}

	g.Pending = &Question{Text: text}
	g.Version++
	return nil
}

func (g *Game) CommitAnswer(answer Answer) error {
	if g.Pending == nil {
		return fmt.Errorf("commit answer: no pending question: %w", ErrInternal)
	}

	g.Records = append(g.Records, Record{Question: *g.Pending, Answer: answer})
	g.Pending = nil
	g.Error = ""
	if answer.Verdict == VerdictFinal {
		g.Ended = true
	}
	g.Version++
	return nil
}

func (g *Game) Fail(message string) {
	g.Pending = nil
	g.Error = message
	g.Version++
}

func (g Game) Clone() Game {
	clone := g
	clone.Records = append([]Record(nil), g.Records...)
	if clone.Records == nil {
		clone.Records = []Record{}
	}
	if g.Pending != nil {
		pending := *g.Pending
		clone.Pending = &pending
	}

	return clone
}

// Redacted is the view handed to players. While the game runs the identity
// and the AI comments are withheld, since comments tend to leak the answer.
func (g Game) Redacted() Game {
	clone := g.Clone()
	if g.Ended {
		return clone
	}

	clone.Identity = ""
	for i := range clone.Records {
		clone.Records[i].Answer.Comment = ""
	}

	return clone
}
