package httpclient

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// LoginPath is where unauthorized responses send the user.
const LoginPath = "/auth/login"

// Navigator moves the user to another route.
type Navigator interface {
	Navigate(ctx context.Context, path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, path string)

func (f NavigatorFunc) Navigate(ctx context.Context, path string) { f(ctx, path) }

// Redirect records the navigation requested while serving one request.
type Redirect struct {
	mu   sync.Mutex
	path string
}

// Path returns the last requested path, or "".
func (r *Redirect) Path() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.path
}

type redirectKey struct{}

// WithRedirect attaches an empty Redirect to ctx.
func WithRedirect(ctx context.Context) (context.Context, *Redirect) {
	r := &Redirect{}
	return context.WithValue(ctx, redirectKey{}, r), r
}

// RedirectFrom returns the path recorded in ctx, if any.
func RedirectFrom(ctx context.Context) (string, bool) {
	r, ok := ctx.Value(redirectKey{}).(*Redirect)
	if !ok {
		return "", false
	}
	p := r.Path()
	return p, p != ""
}

// ContextNavigator records navigation in the request context so the server
// can turn it into an HTTP redirect once the handler returns.
type ContextNavigator struct{}

func (ContextNavigator) Navigate(ctx context.Context, path string) {
	if r, ok := ctx.Value(redirectKey{}).(*Redirect); ok {
		r.mu.Lock()
		r.path = path
		r.mu.Unlock()
	}
}

// WriterNavigator prints a hint instead of navigating. Used by the CLI.
type WriterNavigator struct {
	Out     io.Writer
	Command string
}

func (n WriterNavigator) Navigate(_ context.Context, path string) {
	if path == LoginPath {
		fmt.Fprintf(n.Out, "Session expired or invalid. Run `%s login` to sign in again.\n", n.Command)
		return
	}
	fmt.Fprintf(n.Out, "Navigate to %s\n", path)
}
