package transport

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// DefaultFailureMessage is used when a failed response carries nothing readable.
const DefaultFailureMessage = "request failed"

// Issue is one validation problem reported by the backend.
type Issue struct {
	Path    string
	Message string
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

type failureBody struct {
	Message string          `json:"message"`
	Errors  json.RawMessage `json:"errors"`
	Error   json.RawMessage `json:"error"`
}

// NormalizeMessage turns a failed response body into one readable string.
// Validation lists are joined as "<message> - <path>: <message>; ...".
func NormalizeMessage(body []byte) string {
	var parsed failureBody
	if len(body) == 0 || json.Unmarshal(body, &parsed) != nil {
		return DefaultFailureMessage
	}

	top := strings.TrimSpace(parsed.Message)
	if top == "" {
		top = nestedErrorMessage(parsed.Error)
	}

	issues := ParseIssues(parsed.Errors)
	if len(issues) > 0 {
		parts := make([]string, 0, len(issues))
		for _, issue := range issues {
			if s := issue.String(); s != "" {
				parts = append(parts, s)
			}
		}
		joined := strings.Join(parts, "; ")
		switch {
		case joined == "" && top == "":
			return DefaultFailureMessage
		case joined == "":
			return top
		case top == "":
			return joined
		default:
			return top + " - " + joined
		}
	}

	if top != "" {
		return top
	}
	return DefaultFailureMessage
}

// ParseIssues accepts a list of strings, a list of {path, message} objects
// (path may be a string or a path array) or a field -> message object.
func ParseIssues(raw json.RawMessage) []Issue {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		issues := make([]Issue, 0, len(list))
		for _, item := range list {
			if issue, ok := parseIssue(item); ok {
				issues = append(issues, issue)
			}
		}
		return issues
	}

	var byField map[string]string
	if err := json.Unmarshal(raw, &byField); err == nil {
		keys := make([]string, 0, len(byField))
		for k := range byField {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		issues := make([]Issue, 0, len(keys))
		for _, k := range keys {
			issues = append(issues, Issue{Path: k, Message: byField[k]})
		}
		return issues
	}

	return nil
}

func parseIssue(raw json.RawMessage) (Issue, bool) {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		text = strings.TrimSpace(text)
		return Issue{Message: text}, text != ""
	}

	var obj struct {
		Path    interface{} `json:"path"`
		Field   string      `json:"field"`
		Message string      `json:"message"`
		Msg     string      `json:"msg"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return Issue{}, false
	}
	issue := Issue{Path: formatPath(obj.Path), Message: obj.Message}
	if issue.Path == "" {
		issue.Path = obj.Field
	}
	if issue.Message == "" {
		issue.Message = obj.Msg
	}
	return issue, issue.Message != ""
}

func formatPath(path interface{}) string {
	switch p := path.(type) {
	case nil:
		return ""
	case string:
		return p
	case []interface{}:
		parts := make([]string, 0, len(p))
		for _, seg := range p {
			parts = append(parts, fmt.Sprint(seg))
		}
		return strings.Join(parts, ".")
	default:
		return fmt.Sprint(p)
	}
}

func nestedErrorMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return strings.TrimSpace(text)
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return strings.TrimSpace(obj.Message)
	}
	return ""
}
