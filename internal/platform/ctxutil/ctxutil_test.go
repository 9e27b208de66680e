// Copyright (c) 2026 Allsoft PIMS. All rights reserved.

package ctxutil

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/allsoft/pims/internal/platform/sec"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-123")
	assert.Equal(t, "req-123", GetRequestID(ctx))
}

func TestGetRequestIDMissing(t *testing.T) {
	assert.Equal(t, "", GetRequestID(context.Background()))
}

func TestLoggerRoundTrip(t *testing.T) {
	logger := slog.Default().With(slog.String("component", "test"))
	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, GetLogger(ctx))
}

func TestGetLoggerFallsBackToDefault(t *testing.T) {
	assert.NotNil(t, GetLogger(context.Background()))
}

func TestAuthUserRoundTrip(t *testing.T) {
	claims := &sec.AuthClaims{UserID: "1", UserName: "admin"}
	ctx := WithAuthUser(context.Background(), claims)
	assert.Same(t, claims, GetAuthUser(ctx))
}

func TestGetAuthUserMissing(t *testing.T) {
	assert.Nil(t, GetAuthUser(context.Background()))
}
