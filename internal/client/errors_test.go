// ABOUTME: Tests for the error-message resolution cascade and APIError helpers

package client

import (
	"net/http"
	"testing"
)

func TestResolveErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		fallback string
		want     string
	}{
		{
			name:     "first entry of errors array wins",
			body:     `{"errors":["title is required","content is required"],"message":"validation failed"}`,
			fallback: "an error occurred",
			want:     "title is required",
		},
		{
			name:     "empty errors array falls through to error field",
			body:     `{"errors":[],"error":"bad credentials"}`,
			fallback: "an error occurred",
			want:     "bad credentials",
		},
		{
			name:     "blank first entry falls through",
			body:     `{"errors":["  "],"message":"validation failed"}`,
			fallback: "an error occurred",
			want:     "validation failed",
		},
		{
			name:     "error field before message",
			body:     `{"error":"forbidden","message":"you shall not pass"}`,
			fallback: "an error occurred",
			want:     "forbidden",
		},
		{
			name:     "message field alone",
			body:     `{"message":"post not found"}`,
			fallback: "an error occurred",
			want:     "post not found",
		},
		{
			name:     "non-string message falls back",
			body:     `{"message":42}`,
			fallback: "an error occurred while loading posts",
			want:     "an error occurred while loading posts",
		},
		{
			name:     "non-JSON body falls back",
			body:     `<html>502 Bad Gateway</html>`,
			fallback: "an error occurred while loading posts",
			want:     "an error occurred while loading posts",
		},
		{
			name:     "empty body falls back",
			body:     "",
			fallback: "an error occurred while deleting the post",
			want:     "an error occurred while deleting the post",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveErrorMessage([]byte(tt.body), tt.fallback)
			if got != tt.want {
				t.Errorf("resolveErrorMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsUnauthorized(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"401 api error", &APIError{Status: http.StatusUnauthorized, Message: "expired"}, true},
		{"403 api error", &APIError{Status: http.StatusForbidden, Message: "forbidden"}, false},
		{"plain error", http.ErrHandlerTimeout, false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUnauthorized(tt.err); got != tt.want {
				t.Errorf("IsUnauthorized() = %v, want %v", got, tt.want)
			}
		})
	}
}
