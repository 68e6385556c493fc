package assistant

import (
	"context"
	"regexp"
	"strings"
)

// Match is what a recognizer hands to its handler: the normalized command,
// the text after a matched prefix, and named pattern captures. Groups is nil
// when a Pattern rule's prefix hit but its regexp did not match.
type Match struct {
	Command string
	Rest    string
	Groups  map[string]string
}

// Recognizer decides whether a normalized command selects its rule.
type Recognizer interface {
	Match(cmd string) (Match, bool)
}

// ExactSet matches when the command equals one of its members.
type ExactSet []string

func (s ExactSet) Match(cmd string) (Match, bool) {
	for _, phrase := range s {
		if cmd == phrase {
			return Match{Command: cmd}, true
		}
	}
	return Match{}, false
}

// PrefixAny matches when the command starts with one of its prefixes; Rest is
// the trimmed remainder after the first matching prefix.
type PrefixAny []string

func (p PrefixAny) Match(cmd string) (Match, bool) {
	for _, prefix := range p {
		if strings.HasPrefix(cmd, prefix) {
			return Match{Command: cmd, Rest: strings.TrimSpace(cmd[len(prefix):])}, true
		}
	}
	return Match{}, false
}

// Pattern is a prefix-gated structured recognizer. A command starting with
// one of the prefixes always selects the rule; Groups carries the named
// captures when the regexp matches, and stays nil otherwise so the handler
// can answer with a usage reply.
type Pattern struct {
	Prefixes []string
	Re       *regexp.Regexp
}

func (p Pattern) Match(cmd string) (Match, bool) {
	hit := false
	for _, prefix := range p.Prefixes {
		if strings.HasPrefix(cmd, prefix) {
			hit = true
			break
		}
	}
	if !hit {
		return Match{}, false
	}

	m := Match{Command: cmd}
	sub := p.Re.FindStringSubmatch(cmd)
	if sub == nil {
		return m, true
	}

	m.Groups = map[string]string{}
	for i, name := range p.Re.SubexpNames() {
		if name != "" {
			m.Groups[name] = sub[i]
		}
	}
	return m, true
}

// HandlerFunc turns a match into a reply string. Side effects are limited to
// reminder-store mutation and collaborator calls.
type HandlerFunc func(ctx context.Context, m Match) string

// Rule pairs a recognizer with its handler. Priority is declaration order;
// the first matching rule wins.
type Rule struct {
	Intent string
	Match  Recognizer
	Handle HandlerFunc
}
