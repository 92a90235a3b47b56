package reqctx

import "context"

type ctxKey string

const (
	keyRID      ctxKey = "req_rid"
	keyActorUID ctxKey = "req_actor_uid"
)

// WithRID stores the request correlation id used in log lines.
func WithRID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, keyRID, rid)
}

// RID returns correlation id if present.
func RID(ctx context.Context) string {
	v, _ := ctx.Value(keyRID).(string)
	return v
}

// WithActor stores the uid of the signed-in staff member.
func WithActor(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, keyActorUID, uid)
}

// Actor returns the staff uid if present.
func Actor(ctx context.Context) string {
	v, _ := ctx.Value(keyActorUID).(string)
	return v
}
