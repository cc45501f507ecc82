package common

import "context"

type contextKey int

const subjectContextKey contextKey = iota

// WithSubject stores the authenticated subject in the request context.
// The security filter is the only writer; everything downstream reads.
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectContextKey, subject)
}

// SubjectFromContext retrieves the authenticated subject from context.
// The second return is false for anonymous requests.
func SubjectFromContext(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(subjectContextKey).(string)
	if !ok || subject == "" {
		return "", false
	}
	return subject, true
}
