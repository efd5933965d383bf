package errors

import "context"

type tagsKey struct{}

// WithTags returns a context carrying tracker tags; tags already on ctx are kept
// unless overridden.
func WithTags(ctx context.Context, tags map[string]string) context.Context {
	merged := make(map[string]string, len(tags))
	for k, v := range TagsFromContext(ctx) {
		merged[k] = v
	}
	for k, v := range tags {
		merged[k] = v
	}
	return context.WithValue(ctx, tagsKey{}, merged)
}

// TagsFromContext returns the tags attached with WithTags (nil when none)
func TagsFromContext(ctx context.Context) map[string]string {
	if ctx == nil {
		return nil
	}
	tags, _ := ctx.Value(tagsKey{}).(map[string]string)
	return tags
}
