package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ericfisherdev/unreadwatch/internal/domain/model"
)

// Inbound method names.
const (
	MethodRemoveAPIKey     = "remove_api_key"
	MethodSetSnapState     = "set_snap_state"
	MethodIsSignedIn       = "is_signed_in"
	MethodAuthenticatedReq = "make_authenticated_request"
	MethodInAppNotify      = "inAppNotify"
	MethodFireCronjob      = "fireCronjob"
)

// MethodError is a rejected inbound call. Message is the user-facing text;
// Err is one of the package sentinels.
type MethodError struct {
	Err     error
	Message string
}

func (e *MethodError) Error() string { return fmt.Sprintf("%v: %s", e.Err, e.Message) }

func (e *MethodError) Unwrap() error { return e.Err }

var (
	errMissingAPIKey = &MethodError{Err: ErrInvalidParams, Message: "Must provide params.apiKey."}
	errSignInFirst   = &MethodError{Err: ErrNotSignedIn, Message: "Must SIWE before making request."}
	errUnknownMethod = &MethodError{Err: ErrMethodNotFound, Message: "Method not found."}
)

// DecisionResult is the fireCronjob reply.
type DecisionResult struct {
	Decision string `json:"decision"`
	Count    int    `json:"count"`
	Polled   bool   `json:"polled"`
}

// Call dispatches one inbound method. The returned value is JSON-encodable;
// a nil value with a nil error encodes as null.
func (s *AgentService) Call(ctx context.Context, method string, params json.RawMessage) (any, error) {
	switch method {
	case MethodRemoveAPIKey:
		if err := s.RemoveCredentials(ctx); err != nil {
			return nil, err
		}
		return true, nil

	case MethodSetSnapState:
		apiKey, address, ok := credentialParams(params)
		if !ok {
			return nil, errMissingAPIKey
		}
		if err := s.SetCredentials(ctx, apiKey, address); err != nil {
			return nil, err
		}
		return true, nil

	case MethodIsSignedIn:
		return s.IsSignedIn(ctx), nil

	case MethodAuthenticatedReq:
		n, err := s.FetchUnread(ctx)
		if err != nil {
			if errors.Is(err, ErrNotSignedIn) {
				return nil, errSignInFirst
			}
			return nil, err
		}
		return n, nil

	case MethodInAppNotify:
		if err := s.InAppNotify(ctx); err != nil {
			return nil, err
		}
		return nil, nil

	case MethodFireCronjob:
		result, err := s.Tick(ctx)
		if err != nil {
			return nil, err
		}
		return NewDecisionResult(result), nil

	default:
		return nil, errUnknownMethod
	}
}

// NewDecisionResult summarizes a tick for callers.
func NewDecisionResult(r TickResult) DecisionResult {
	kind := r.Decision.Kind
	if kind == "" {
		kind = model.DecisionNone
	}
	return DecisionResult{Decision: string(kind), Count: r.Decision.Count, Polled: r.Polled}
}

// credentialParams extracts apiKey and address. Both must be non-empty
// JSON strings.
func credentialParams(raw json.RawMessage) (apiKey, address string, ok bool) {
	var p map[string]any
	if len(raw) == 0 || json.Unmarshal(raw, &p) != nil || p == nil {
		return "", "", false
	}
	apiKey, ok1 := p["apiKey"].(string)
	address, ok2 := p["address"].(string)
	if !ok1 || !ok2 || apiKey == "" || address == "" {
		return "", "", false
	}
	return apiKey, address, true
}
