package auth

import "context"

type stateKey struct{}

// WithState returns a copy of ctx carrying state.
func WithState(ctx context.Context, state State) context.Context {
	return context.WithValue(ctx, stateKey{}, state)
}

// FromContext returns the state stored by WithState.
func FromContext(ctx context.Context) (State, bool) {
	s, ok := ctx.Value(stateKey{}).(State)
	return s, ok
}
