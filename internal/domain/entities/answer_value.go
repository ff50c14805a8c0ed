package entities

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnparseableAnswer marks stored or submitted values that do not fit their question type.
var ErrUnparseableAnswer = errors.New("unparseable answer value")

// AnswerValue is a tagged variant keyed by the owning question's type.
// Only the field matching Type is meaningful.
type AnswerValue struct {
	Type        QuestionType       `json:"type"`
	Number      float64            `json:"number,omitempty"`
	Percentages map[string]float64 `json:"percentages,omitempty"`
	Choice      string             `json:"choice,omitempty"`
	Selections  []string           `json:"selections,omitempty"`
	Ranking     []string           `json:"ranking,omitempty"`
	Text        string             `json:"text,omitempty"`
}

// LikertValue builds a likert answer.
func LikertValue(n float64) AnswerValue { return AnswerValue{Type: QuestionLikert, Number: n} }

func PercentageValue(m map[string]float64) AnswerValue {
	return AnswerValue{Type: QuestionPercentage, Percentages: m}
}

func ChoiceValue(s string) AnswerValue { return AnswerValue{Type: QuestionMultipleChoice, Choice: s} }

func CheckboxValue(sel []string) AnswerValue {
	return AnswerValue{Type: QuestionCheckbox, Selections: sel}
}

func RankingValue(order []string) AnswerValue {
	return AnswerValue{Type: QuestionRanking, Ranking: order}
}

func TextValue(s string) AnswerValue { return AnswerValue{Type: QuestionText, Text: s} }

// Encode returns the storage form: answer_value text plus answer_numeric for likert answers.
func (v AnswerValue) Encode() (string, *float64, error) {
	switch v.Type {
	case QuestionLikert:
		n := v.Number
		return strconv.FormatFloat(n, 'f', -1, 64), &n, nil
	case QuestionPercentage:
		b, err := json.Marshal(v.Percentages)
		return string(b), nil, err
	case QuestionMultipleChoice:
		return v.Choice, nil, nil
	case QuestionCheckbox:
		b, err := json.Marshal(nonNil(v.Selections))
		return string(b), nil, err
	case QuestionRanking:
		b, err := json.Marshal(nonNil(v.Ranking))
		return string(b), nil, err
	case QuestionText:
		return v.Text, nil, nil
	}
	return "", nil, fmt.Errorf("encode answer: unknown question type %q", v.Type)
}

// ParseStoredAnswer decodes an answers row for a question of type t.
func ParseStoredAnswer(t QuestionType, raw string, numeric *float64) (AnswerValue, error) {
	switch t {
	case QuestionLikert:
		if numeric != nil {
			return LikertValue(*numeric), nil
		}
		n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return AnswerValue{}, fmt.Errorf("%w: likert %q", ErrUnparseableAnswer, raw)
		}
		return LikertValue(n), nil
	case QuestionPercentage:
		m, err := parsePercentages([]byte(raw))
		if err != nil {
			return AnswerValue{}, err
		}
		return PercentageValue(m), nil
	case QuestionMultipleChoice:
		s := unquote(raw)
		if s == "" {
			return AnswerValue{}, fmt.Errorf("%w: empty choice", ErrUnparseableAnswer)
		}
		return ChoiceValue(s), nil
	case QuestionCheckbox:
		trimmed := strings.TrimSpace(raw)
		if !strings.HasPrefix(trimmed, "[") {
			// legacy rows stored a single selection as plain text
			if s := unquote(trimmed); s != "" {
				return CheckboxValue([]string{s}), nil
			}
			return AnswerValue{}, fmt.Errorf("%w: empty checkbox", ErrUnparseableAnswer)
		}
		list, err := parseStringList([]byte(trimmed))
		if err != nil {
			return AnswerValue{}, err
		}
		return CheckboxValue(list), nil
	case QuestionRanking:
		list, err := parseStringList([]byte(raw))
		if err != nil {
			return AnswerValue{}, err
		}
		return RankingValue(list), nil
	case QuestionText:
		return TextValue(raw), nil
	}
	return AnswerValue{}, fmt.Errorf("%w: unknown question type %q", ErrUnparseableAnswer, t)
}

// DecodeSubmittedAnswer decodes the JSON value sent by the survey UI for a question of type t.
// Clients sometimes send structured values pre-stringified; both shapes are accepted.
func DecodeSubmittedAnswer(t QuestionType, raw json.RawMessage) (AnswerValue, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return AnswerValue{}, fmt.Errorf("%w: missing value", ErrUnparseableAnswer)
	}

	var asString string
	isString := json.Unmarshal(raw, &asString) == nil

	switch t {
	case QuestionLikert:
		var n float64
		if err := json.Unmarshal(raw, &n); err == nil {
			return LikertValue(n), nil
		}
		if isString {
			if n, err := strconv.ParseFloat(strings.TrimSpace(asString), 64); err == nil {
				return LikertValue(n), nil
			}
		}
		return AnswerValue{}, fmt.Errorf("%w: likert value must be a number", ErrUnparseableAnswer)
	case QuestionPercentage:
		if isString {
			raw = json.RawMessage(asString)
		}
		m, err := parsePercentages(raw)
		if err != nil {
			return AnswerValue{}, err
		}
		return PercentageValue(m), nil
	case QuestionMultipleChoice:
		if !isString || strings.TrimSpace(asString) == "" {
			return AnswerValue{}, fmt.Errorf("%w: choice must be a non-empty string", ErrUnparseableAnswer)
		}
		return ChoiceValue(strings.TrimSpace(asString)), nil
	case QuestionCheckbox, QuestionRanking:
		if isString {
			raw = json.RawMessage(asString)
		}
		list, err := parseStringList(raw)
		if err != nil {
			return AnswerValue{}, err
		}
		if t == QuestionCheckbox {
			return CheckboxValue(list), nil
		}
		return RankingValue(list), nil
	case QuestionText:
		if !isString {
			return AnswerValue{}, fmt.Errorf("%w: text must be a string", ErrUnparseableAnswer)
		}
		return TextValue(asString), nil
	}
	return AnswerValue{}, fmt.Errorf("%w: unknown question type %q", ErrUnparseableAnswer, t)
}

// ParsePercent parses "80", "80%", " 12,5 % " into a number.
func ParsePercent(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: percentage %q", ErrUnparseableAnswer, s)
	}
	return n, nil
}

func parsePercentages(data []byte) (map[string]float64, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return nil, fmt.Errorf("%w: percentage answer must be a JSON object", ErrUnparseableAnswer)
	}
	out := make(map[string]float64, len(fields))
	for label, rawVal := range fields {
		var n float64
		if err := json.Unmarshal(rawVal, &n); err != nil {
			var s string
			if err := json.Unmarshal(rawVal, &s); err != nil {
				return nil, fmt.Errorf("%w: percentage for %q", ErrUnparseableAnswer, label)
			}
			if n, err = ParsePercent(s); err != nil {
				return nil, err
			}
		}
		if n < 0 {
			return nil, fmt.Errorf("%w: negative percentage for %q", ErrUnparseableAnswer, label)
		}
		out[label] = n
	}
	return out, nil
}

func parseStringList(data []byte) ([]string, error) {
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("%w: expected a JSON array of strings", ErrUnparseableAnswer)
	}
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

func unquote(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, `"`) {
		var s string
		if json.Unmarshal([]byte(raw), &s) == nil {
			return strings.TrimSpace(s)
		}
	}
	return raw
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
