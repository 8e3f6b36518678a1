package brief

import (
	"bytes"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aplus/internal/models"
)

func chartService() *Service {
	return NewService(newMockStorage(), nil, testLogger())
}

func TestRenderLevelsChart_PNG(t *testing.T) {
	msg := briefMessage("m1", briefDate.Add(15*time.Hour), spySetupNew(), tslaSetup())
	svc := chartService()

	data, err := svc.RenderLevelsChart(msg, "SPY")
	require.NoError(t, err)
	require.NotEmpty(t, data)

	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 900, cfg.Width)
	assert.Equal(t, 400, cfg.Height)
}

func TestRenderLevelsChart_SymbolNormalized(t *testing.T) {
	msg := briefMessage("m1", briefDate.Add(15*time.Hour), spySetupNew())
	svc := chartService()

	data, err := svc.RenderLevelsChart(msg, "  spy ")
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestRenderLevelsChart_UnknownSymbol(t *testing.T) {
	msg := briefMessage("m1", briefDate.Add(15*time.Hour), spySetupNew())
	svc := chartService()

	_, err := svc.RenderLevelsChart(msg, "NVDA")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no setup for 'NVDA'")
}

func TestRenderLevelsChart_NilMessage(t *testing.T) {
	_, err := chartService().RenderLevelsChart(nil, "SPY")
	require.Error(t, err)
}

func TestRenderLevelsChart_SingleLevel(t *testing.T) {
	setup := models.TickerSetup{
		Symbol: "QQQ",
		Signals: []models.Signal{{
			Category:   models.CategoryRejection,
			Comparison: models.ComparisonNear,
			Trigger:    models.SingleTrigger(480),
		}},
	}
	msg := briefMessage("m1", briefDate.Add(15*time.Hour), setup)

	data, err := chartService().RenderLevelsChart(msg, "QQQ")
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestRenderLevelsChart_RangeTrigger(t *testing.T) {
	setup := models.TickerSetup{
		Symbol: "SPY",
		Signals: []models.Signal{{
			Category:   models.CategoryBounce,
			Comparison: models.ComparisonRange,
			Trigger:    models.RangeTrigger(578, 579),
		}},
	}
	msg := briefMessage("m1", briefDate.Add(15*time.Hour), setup)

	data, err := chartService().RenderLevelsChart(msg, "SPY")
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
