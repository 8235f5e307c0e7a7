package inject

import (
	"context"

	"go.viam.com/waypointnav/services/navigation"
)

// SingleGoalNavigator is an injectable single goal navigator.
type SingleGoalNavigator struct {
	navigation.SingleGoalNavigator
	NavigateToFunc func(ctx context.Context, params navigation.NavigationParams) error
	StepFunc       func(ctx context.Context) error
	CancelFunc     func(ctx context.Context) error
}

// NavigateTo calls the injected NavigateTo or the real version.
func (n *SingleGoalNavigator) NavigateTo(ctx context.Context, params navigation.NavigationParams) error {
	if n.NavigateToFunc == nil {
		return n.SingleGoalNavigator.NavigateTo(ctx, params)
	}
	return n.NavigateToFunc(ctx, params)
}

// Step calls the injected Step or the real version.
func (n *SingleGoalNavigator) Step(ctx context.Context) error {
	if n.StepFunc == nil {
		return n.SingleGoalNavigator.Step(ctx)
	}
	return n.StepFunc(ctx)
}

// Cancel calls the injected Cancel or the real version.
func (n *SingleGoalNavigator) Cancel(ctx context.Context) error {
	if n.CancelFunc == nil {
		return n.SingleGoalNavigator.Cancel(ctx)
	}
	return n.CancelFunc(ctx)
}
