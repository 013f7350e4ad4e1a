// Package sequence encodes and parses the human-readable text form of a
// transform sequence:
//
//	Name1(ID:n1)(TR:r1) -> Name2(ID:n2)(TR:r2) -> ... | (GR:g)
package sequence

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rawblock/cryptomunge/internal/registry"
	"github.com/rawblock/cryptomunge/pkg/models"
)

// Options selects which attribute subset Serialize emits.
type Options struct {
	ID                  bool
	TR                  bool
	RightSideAttributes bool // emits "| (GR:g)"
}

// Default serialization: full round-trip fidelity.
var Default = Options{ID: true, TR: true, RightSideAttributes: true}

// Serialize renders seq in the canonical text form using the requested
// attribute subset.
func Serialize(reg *registry.Registry, seq models.ParsedSequence, opt Options) (string, error) {
	parts := make([]string, 0, len(seq.Steps))
	for _, step := range seq.Steps {
		tr, err := reg.Get(step.TransformID)
		if err != nil {
			return "", err
		}
		var b strings.Builder
		b.WriteString(tr.Name)
		if opt.ID {
			fmt.Fprintf(&b, "(ID:%d)", step.TransformID)
		}
		if opt.TR {
			fmt.Fprintf(&b, "(TR:%d)", step.Rounds)
		}
		parts = append(parts, b.String())
	}
	out := strings.Join(parts, " -> ")
	if opt.RightSideAttributes {
		out = fmt.Sprintf("%s | (GR:%d)", out, seq.GlobalRounds)
	}
	return out, nil
}

// Parse parses the canonical text form. currentGlobalRounds supplies the
// default GR when the right-side attribute is omitted.
func Parse(reg *registry.Registry, text string, currentGlobalRounds int) (models.ParsedSequence, error) {
	body := text
	globalRounds := currentGlobalRounds

	if idx := strings.LastIndex(text, "|"); idx >= 0 {
		body = strings.TrimSpace(text[:idx])
		right := strings.TrimSpace(text[idx+1:])
		if right != "" {
			gr, err := parseAttr(right, "GR")
			if err != nil {
				return models.ParsedSequence{}, err
			}
			if gr >= 0 {
				globalRounds = gr
			}
		}
	}

	if strings.TrimSpace(body) == "" {
		return models.ParsedSequence{}, models.ErrSequenceSyntax
	}

	byName := nameIndex(reg)
	rawSteps := strings.Split(body, "->")
	steps := make([]models.SequenceStep, 0, len(rawSteps))
	for _, raw := range rawSteps {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return models.ParsedSequence{}, models.ErrSequenceSyntax
		}
		step, err := parseStep(reg, byName, raw)
		if err != nil {
			return models.ParsedSequence{}, err
		}
		steps = append(steps, step)
	}

	return models.ParsedSequence{Steps: steps, GlobalRounds: globalRounds}, nil
}

func parseStep(reg *registry.Registry, byName map[string][]byte, raw string) (models.SequenceStep, error) {
	name := raw
	id := -1
	rounds := 1 // TR defaults to 1

	if paren := strings.IndexByte(raw, '('); paren >= 0 {
		name = strings.TrimSpace(raw[:paren])
		attrs := raw[paren:]
		if v, err := parseAttr(attrs, "ID"); err != nil {
			return models.SequenceStep{}, err
		} else if v >= 0 {
			id = v
		}
		if v, err := parseAttr(attrs, "TR"); err != nil {
			return models.SequenceStep{}, err
		} else if v >= 0 {
			rounds = v
		}
	}

	var transformID byte
	if id >= 0 {
		if id < 1 || id > 255 {
			return models.SequenceStep{}, fmt.Errorf("%w: id %d out of range", models.ErrArgumentOutOfRange, id)
		}
		transformID = byte(id)
		if _, err := reg.Get(transformID); err != nil {
			return models.SequenceStep{}, err
		}
	} else {
		// IDs may be omitted if names resolve uniquely
		candidates, ok := byName[strings.ToLower(name)]
		if !ok || len(candidates) == 0 {
			return models.SequenceStep{}, fmt.Errorf("%w: %q", models.ErrSequenceUnresolved, name)
		}
		if len(candidates) > 1 {
			return models.SequenceStep{}, fmt.Errorf("%w: %q matches %d transforms", models.ErrSequenceUnresolved, name, len(candidates))
		}
		transformID = candidates[0]
	}

	if rounds < 1 || rounds > 9 {
		return models.SequenceStep{}, fmt.Errorf("%w: TR %d out of range", models.ErrArgumentOutOfRange, rounds)
	}

	return models.SequenceStep{TransformID: transformID, Rounds: rounds}, nil
}

// parseAttr extracts the integer value of "(KEY:n)" from s, returning -1
// if the attribute is absent.
func parseAttr(s, key string) (int, error) {
	marker := "(" + key + ":"
	idx := strings.Index(s, marker)
	if idx < 0 {
		return -1, nil
	}
	rest := s[idx+len(marker):]
	end := strings.IndexByte(rest, ')')
	if end < 0 {
		return -1, fmt.Errorf("%w: unterminated %s attribute", models.ErrSequenceSyntax, key)
	}
	v, err := strconv.Atoi(strings.TrimSpace(rest[:end]))
	if err != nil {
		return -1, fmt.Errorf("%w: %s attribute: %v", models.ErrSequenceSyntax, key, err)
	}
	return v, nil
}

// nameIndex groups registered transform ids by lowercase name, so a
// uniquely-named transform can be referenced without an explicit ID.
func nameIndex(reg *registry.Registry) map[string][]byte {
	idx := make(map[string][]byte)
	for _, tr := range reg.Iterate() {
		key := strings.ToLower(tr.Name)
		idx[key] = append(idx[key], tr.ID)
	}
	for k := range idx {
		sort.Slice(idx[k], func(i, j int) bool { return idx[k][i] < idx[k][j] })
	}
	return idx
}
