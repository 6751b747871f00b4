package application

import "time"

type GameConfig struct {
	// WaitBudget bounds how long State blocks on a pending question.
	WaitBudget time.Duration
	// ResolveTimeout bounds one background resolution, including the wait for
	// a pooled client.
	ResolveTimeout  time.Duration
	SessionTTL      time.Duration
	JanitorInterval time.Duration
}

func DefaultGameConfig() GameConfig {
	return GameConfig{
		WaitBudget:      5 * time.Second,
		ResolveTimeout:  time.Minute,
		SessionTTL:      time.Hour,
		JanitorInterval: time.Minute,
	}
}

func (c GameConfig) withDefaults() GameConfig {
	defaults := DefaultGameConfig()
	if c.WaitBudget <= 0 {
		c.WaitBudget = defaults.WaitBudget
	}
	if c.ResolveTimeout <= 0 {
		c.ResolveTimeout = defaults.ResolveTimeout
	}

	return c
}

type StateOptions struct {
	// Wait blocks until the pending question resolves or the wait budget
	// runs out.
	Wait bool
	// Quiet omits the game body while a question is still pending.
	Quiet bool
}
