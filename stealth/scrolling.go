package stealth

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// Scroller moves a page's viewport vertically by dy pixels
type Scroller interface {
	ScrollBy(ctx context.Context, dy float64) error
}

// ScrollConfig holds configuration for human-like scrolling
type ScrollConfig struct {
	// Base scroll amount in pixels
	BaseScrollMin int
	BaseScrollMax int

	// Delay between scroll steps in ms
	ScrollSpeedMin int
	ScrollSpeedMax int

	// Steps for acceleration/deceleration
	AccelSteps int

	// Number of scroll gestures over the results page
	Passes int
}

// DefaultScrollConfig returns sensible defaults for a results page
func DefaultScrollConfig() *ScrollConfig {
	return &ScrollConfig{
		BaseScrollMin:  300,
		BaseScrollMax:  700,
		ScrollSpeedMin: 15,
		ScrollSpeedMax: 50,
		AccelSteps:     5,
		Passes:         3,
	}
}

// ScrollSteps splits distance into eased steps: slow at the ends, fast in
// the middle. Every step is at least 10px.
func ScrollSteps(distance int, cfg *ScrollConfig) []int {
	steps := cfg.AccelSteps * 2
	if steps < 4 {
		steps = 4
	}

	base := float64(distance) / float64(steps)
	out := make([]int, 0, steps)

	for i := 0; i < steps; i++ {
		progress := float64(i) / float64(steps-1)
		ease := easeInOutSine(progress)

		var step int
		if i < steps/2 {
			step = int(base * (0.5 + ease))
		} else {
			step = int(base * (1.5 - ease))
		}
		if step < 10 {
			step = 10
		}
		out = append(out, step)
	}
	return out
}

// ScrollResults scrolls down the results page a few times so that lazily
// rendered result blocks are in the DOM before extraction.
func ScrollResults(ctx context.Context, s Scroller, cfg *ScrollConfig) error {
	if cfg == nil {
		cfg = DefaultScrollConfig()
	}

	for pass := 0; pass < cfg.Passes; pass++ {
		distance := cfg.BaseScrollMin
		if cfg.BaseScrollMax > cfg.BaseScrollMin {
			distance += rand.Intn(cfg.BaseScrollMax - cfg.BaseScrollMin + 1)
		}

		for _, step := range ScrollSteps(distance, cfg) {
			if err := s.ScrollBy(ctx, float64(step)); err != nil {
				return err
			}
			delay := time.Duration(cfg.ScrollSpeedMin) * time.Millisecond
			if cfg.ScrollSpeedMax > cfg.ScrollSpeedMin {
				delay = Jitter(delay, time.Duration(cfg.ScrollSpeedMax)*time.Millisecond)
			}
			if err := Wait(ctx, delay, delay); err != nil {
				return err
			}
		}
	}
	return nil
}

// easeInOutSine provides smooth acceleration/deceleration curve
func easeInOutSine(x float64) float64 {
	return -(math.Cos(math.Pi*x) - 1) / 2
}
