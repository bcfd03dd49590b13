package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/forumforge/reputation/internal/karma"
	"github.com/forumforge/reputation/internal/trust"
)

func newTestEngine(handler *JSONRPCHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.POST("/", handler.Handle)
	return engine
}

func postRPC(t *testing.T, engine *gin.Engine, body string) JSONRPCResponse {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected HTTP status %d", rec.Code)
	}

	var resp JSONRPCResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func TestHandleDispatch(t *testing.T) {
	handler := NewJSONRPCHandler()
	handler.RegisterMethod("test.echo", func(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
		var p struct {
			Value string `json:"value"`
		}
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", errBadParams, err)
		}
		return gin.H{"value": p.Value}, nil
	})
	engine := newTestEngine(handler)

	resp := postRPC(t, engine, `{"jsonrpc":"2.0","id":1,"method":"test.echo","params":{"value":"hello"}}`)
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected result type %T", resp.Result)
	}
	if result["value"] != "hello" {
		t.Errorf("expected echoed value, got %v", result["value"])
	}
}

func TestHandleProtocolErrors(t *testing.T) {
	handler := NewJSONRPCHandler()
	engine := newTestEngine(handler)

	tests := []struct {
		name string
		body string
		code int
	}{
		{
			name: "malformed JSON",
			body: `{"jsonrpc":"2.0",`,
			code: ErrParseError,
		},
		{
			name: "wrong version",
			body: `{"jsonrpc":"1.0","id":1,"method":"test.echo"}`,
			code: ErrInvalidRequest,
		},
		{
			name: "unknown method",
			body: `{"jsonrpc":"2.0","id":1,"method":"no.such_method"}`,
			code: ErrMethodNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postRPC(t, engine, tt.body)
			if resp.Error == nil {
				t.Fatal("expected an error response")
			}
			if resp.Error.Code != tt.code {
				t.Errorf("expected code %d, got %d", tt.code, resp.Error.Code)
			}
		})
	}
}

func TestHandleDomainErrorMapping(t *testing.T) {
	handler := NewJSONRPCHandler()
	handler.RegisterMethod("test.fail", func(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
		var p struct {
			Err string `json:"err"`
		}
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, err
		}
		switch p.Err {
		case "self_vote":
			return nil, karma.ErrSelfVote
		case "bad_value":
			return nil, fmt.Errorf("checking vote: %w", karma.ErrInvalidVoteValue)
		case "missing":
			return nil, karma.ErrTargetNotFound
		default:
			return nil, errors.New("boom")
		}
	})
	engine := newTestEngine(handler)

	tests := []struct {
		name string
		err  string
		code int
	}{
		{name: "policy violation", err: "self_vote", code: ErrPolicyViolation},
		{name: "wrapped validation error", err: "bad_value", code: ErrInvalidParams},
		{name: "not found", err: "missing", code: ErrTargetNotFound},
		{name: "unexpected error", err: "other", code: ErrServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := fmt.Sprintf(`{"jsonrpc":"2.0","id":1,"method":"test.fail","params":{"err":%q}}`, tt.err)
			resp := postRPC(t, engine, body)
			if resp.Error == nil {
				t.Fatal("expected an error response")
			}
			if resp.Error.Code != tt.code {
				t.Errorf("expected code %d, got %d", tt.code, resp.Error.Code)
			}
		})
	}
}

func TestParseParams(t *testing.T) {
	if _, err := parseUserID(json.RawMessage(`{"user_id":42}`)); err != nil {
		t.Errorf("valid user_id rejected: %v", err)
	}
	if _, err := parseUserID(json.RawMessage(`{}`)); !errors.Is(err, errBadParams) {
		t.Errorf("missing user_id should be a params error, got %v", err)
	}
	if _, err := parseUserID(json.RawMessage(`{"user_id":-1}`)); !errors.Is(err, errBadParams) {
		t.Errorf("negative user_id should be a params error, got %v", err)
	}

	if _, _, err := parseUserCommunity(json.RawMessage(`{"user_id":1,"community_id":2}`)); err != nil {
		t.Errorf("valid pair rejected: %v", err)
	}
	if _, _, err := parseUserCommunity(json.RawMessage(`{"user_id":1}`)); !errors.Is(err, errBadParams) {
		t.Errorf("missing community_id should be a params error, got %v", err)
	}
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{name: "invalid vote value", err: karma.ErrInvalidVoteValue, code: ErrInvalidParams},
		{name: "invalid target type", err: karma.ErrInvalidTargetType, code: ErrInvalidParams},
		{name: "invalid trust level", err: trust.ErrInvalidTrustLevel, code: ErrInvalidParams},
		{name: "bad params", err: fmt.Errorf("%w: user_id is required", errBadParams), code: ErrInvalidParams},
		{name: "self vote", err: karma.ErrSelfVote, code: ErrPolicyViolation},
		{name: "target not found", err: karma.ErrTargetNotFound, code: ErrTargetNotFound},
		{name: "ledger user not found", err: karma.ErrUserNotFound, code: ErrTargetNotFound},
		{name: "trust user not found", err: trust.ErrUserNotFound, code: ErrTargetNotFound},
		{name: "anything else", err: errors.New("disk on fire"), code: ErrServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := mapError(tt.err)
			if code != tt.code {
				t.Errorf("expected code %d, got %d", tt.code, code)
			}
		})
	}
}
