package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ErrNoJSONFound indicates that none of the extraction strategies located
// a parseable JSON object in the planner output. The message doubles as
// the user-facing explanation in the discussion timeline.
var ErrNoJSONFound = errors.New("No valid JSON object found in response")

// ErrInvalidOutput indicates the planner returned JSON that does not
// satisfy the planning output schema.
var ErrInvalidOutput = errors.New("invalid planner output")

// fencedBlockRe matches the first markdown code fence, with or without a
// json language tag.
var fencedBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// ExtractJSON locates a JSON object inside raw planner text. Strategies
// are tried in order: the whole trimmed text when it starts with '{', the
// body of the first fenced code block, then the substring from the first
// '{' to the last '}'. The first strategy whose candidate parses as a
// JSON object wins.
func ExtractJSON(text string) (map[string]any, error) {
	for _, candidate := range extractCandidates(text) {
		var decoded map[string]any
		if err := json.Unmarshal([]byte(candidate), &decoded); err == nil {
			return decoded, nil
		}
	}
	return nil, ErrNoJSONFound
}

func extractCandidates(text string) []string {
	var candidates []string

	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "{") {
		candidates = append(candidates, trimmed)
	}
	if m := fencedBlockRe.FindStringSubmatch(text); m != nil {
		candidates = append(candidates, strings.TrimSpace(m[1]))
	}
	first := strings.Index(text, "{")
	last := strings.LastIndex(text, "}")
	if first >= 0 && last > first {
		candidates = append(candidates, text[first:last+1])
	}
	return candidates
}

// Parse validates raw planner output into an Output. Raw may be a string
// (extraction applies), raw JSON bytes, or an already-decoded mapping.
// The decoded object must contain exactly one of "questions" (a single
// non-empty question) or "plan" (a draft with at least one milestone,
// feature, and task, all with titles). A task without a role gets the
// default role "execution".
func Parse(raw any) (*Output, error) {
	decoded, err := decodeRaw(raw)
	if err != nil {
		return nil, err
	}
	return validate(decoded)
}

func decodeRaw(raw any) (map[string]any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, ErrNoJSONFound
	case string:
		return ExtractJSON(v)
	case []byte:
		var decoded map[string]any
		if err := json.Unmarshal(v, &decoded); err != nil {
			return nil, ErrNoJSONFound
		}
		return decoded, nil
	case json.RawMessage:
		var decoded map[string]any
		if err := json.Unmarshal(v, &decoded); err != nil {
			return nil, ErrNoJSONFound
		}
		return decoded, nil
	case map[string]any:
		return v, nil
	default:
		// Already-structured values from in-process callers round-trip
		// through encoding/json so their tags apply.
		data, err := json.Marshal(v)
		if err != nil {
			return nil, ErrNoJSONFound
		}
		var decoded map[string]any
		if err := json.Unmarshal(data, &decoded); err != nil {
			return nil, ErrNoJSONFound
		}
		return decoded, nil
	}
}

func validate(decoded map[string]any) (*Output, error) {
	qRaw, hasQuestions := decoded["questions"]
	if qRaw == nil {
		hasQuestions = false
	}
	pRaw, hasPlan := decoded["plan"]
	if pRaw == nil {
		hasPlan = false
	}

	if hasQuestions && hasPlan {
		return nil, fmt.Errorf("%w: contains both questions and plan", ErrInvalidOutput)
	}
	if !hasQuestions && !hasPlan {
		return nil, fmt.Errorf("%w: contains neither questions nor plan", ErrInvalidOutput)
	}

	out := &Output{}
	out.Discussion = parseDiscussion(decoded["discussion"])

	if hasQuestions {
		question, err := validateQuestions(qRaw)
		if err != nil {
			return nil, err
		}
		out.Questions = []string{question}
		return out, nil
	}

	draft, err := validateDraft(pRaw)
	if err != nil {
		return nil, err
	}
	out.Draft = draft
	return out, nil
}

func validateQuestions(raw any) (string, error) {
	var entries []any
	switch v := raw.(type) {
	case []any:
		entries = v
	case []string:
		for _, s := range v {
			entries = append(entries, s)
		}
	default:
		return "", fmt.Errorf("%w: questions must be an array", ErrInvalidOutput)
	}
	if len(entries) != 1 {
		return "", fmt.Errorf("%w: questions must contain exactly one entry, got %d", ErrInvalidOutput, len(entries))
	}
	s, ok := entries[0].(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("%w: question must be a non-empty string", ErrInvalidOutput)
	}
	return strings.TrimSpace(s), nil
}

func validateDraft(raw any) (*Draft, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: plan is not an object", ErrInvalidOutput)
	}
	var draft Draft
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, fmt.Errorf("%w: plan is not an object", ErrInvalidOutput)
	}

	if len(draft.Roadmap) == 0 {
		return nil, fmt.Errorf("%w: plan requires at least one milestone", ErrInvalidOutput)
	}
	if len(draft.Features) == 0 {
		return nil, fmt.Errorf("%w: plan requires at least one feature", ErrInvalidOutput)
	}
	if len(draft.Tasks) == 0 {
		return nil, fmt.Errorf("%w: plan requires at least one task", ErrInvalidOutput)
	}
	for i, m := range draft.Roadmap {
		if strings.TrimSpace(m.Title) == "" {
			return nil, fmt.Errorf("%w: milestone %d is missing a title", ErrInvalidOutput, i+1)
		}
	}
	for i, f := range draft.Features {
		if strings.TrimSpace(f.Title) == "" {
			return nil, fmt.Errorf("%w: feature %d is missing a title", ErrInvalidOutput, i+1)
		}
	}
	for i := range draft.Tasks {
		if strings.TrimSpace(draft.Tasks[i].Title) == "" {
			return nil, fmt.Errorf("%w: task %d is missing a title", ErrInvalidOutput, i+1)
		}
		if strings.TrimSpace(draft.Tasks[i].Role) == "" {
			draft.Tasks[i].Role = DefaultRole
		}
	}
	return &draft, nil
}

// parseDiscussion tolerates both plain strings and structured objects;
// entries of any other shape are dropped.
func parseDiscussion(raw any) []DiscussionNote {
	entries, ok := raw.([]any)
	if !ok {
		return nil
	}
	var notes []DiscussionNote
	for _, e := range entries {
		switch v := e.(type) {
		case string:
			if strings.TrimSpace(v) == "" {
				continue
			}
			notes = append(notes, DiscussionNote{Message: v})
		case map[string]any:
			msg, _ := v["message"].(string)
			if strings.TrimSpace(msg) == "" {
				continue
			}
			note := DiscussionNote{Message: msg}
			if t, ok := v["type"].(string); ok {
				note.Type = t
			}
			if ts, ok := v["timestamp"].(string); ok {
				if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
					parsed = parsed.UTC()
					note.Timestamp = &parsed
				}
			}
			if md, ok := v["metadata"].(map[string]any); ok {
				note.Metadata = md
			}
			notes = append(notes, note)
		}
	}
	return notes
}
