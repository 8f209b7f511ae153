package mylog

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/MarcGrol/deliverybackend/lib/mycontext"
)

func TestCloudLogger(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.DebugLevel)

	t.Run("entry with trace and aggregate", func(t *testing.T) {
		// given
		out := &bytes.Buffer{}
		c := context.WithValue(context.TODO(), mycontext.CtxTraceContext{}, "projects/p/traces/t")

		// when
		newCloudLogger("checkout", out).Log(c, "order-123", SeverityWarn, "Order %s placed", "order-123")

		// then
		parsed := map[string]any{}
		assert.NoError(t, json.Unmarshal(out.Bytes(), &parsed))
		assert.Equal(t, "WARN", parsed["severity"])
		assert.Equal(t, "checkout", parsed["component"])
		assert.Equal(t, "projects/p/traces/t", parsed[cloudTraceField])
		assert.Equal(t, map[string]any{"aggregate": "order-123"}, parsed[cloudLabelsField])
		assert.Equal(t, "Order order-123 placed", parsed["message"])
		assert.NotContains(t, parsed, "level")
	})

	t.Run("entry without trace", func(t *testing.T) {
		// given
		out := &bytes.Buffer{}
		c := context.WithValue(context.TODO(), mycontext.CtxTraceContext{}, 42)

		// when
		newCloudLogger("checkout", out).Log(c, "", SeverityInfo, "hello")

		// then
		parsed := map[string]any{}
		assert.NoError(t, json.Unmarshal(out.Bytes(), &parsed))
		assert.NotContains(t, parsed, cloudTraceField)
		assert.NotContains(t, parsed, cloudLabelsField)
	})

	t.Run("below global level", func(t *testing.T) {
		// given
		out := &bytes.Buffer{}
		SetLevel("error")

		// when
		newCloudLogger("checkout", out).Log(context.TODO(), "", SeverityInfo, "dropped")

		// then
		assert.Empty(t, out.String())
	})
}

func TestConsoleLogger(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.DebugLevel)
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	out := &bytes.Buffer{}
	newConsoleLogger("onboarding", out).Log(context.TODO(), "driver-1", SeverityDebug, "hello %s", "world")

	assert.Contains(t, out.String(), "hello world")
	assert.Contains(t, out.String(), "aggregate=driver-1")
	assert.Contains(t, out.String(), "component=onboarding")
}

func TestSetLevel(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.DebugLevel)

	SetLevel("WARN")
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	SetLevel("nonsense")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestSeverityLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, SeverityDebug.level())
	assert.Equal(t, zerolog.InfoLevel, SeverityInfo.level())
	assert.Equal(t, zerolog.WarnLevel, SeverityWarn.level())
	assert.Equal(t, zerolog.ErrorLevel, SeverityError.level())
}
