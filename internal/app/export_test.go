package app

import "go.trai.ch/press/internal/core/domain"

// SetPassHook observes the report of every watch pass.
func (a *App) SetPassHook(fn func(*domain.BuildReport)) {
	a.onPass = fn
}
