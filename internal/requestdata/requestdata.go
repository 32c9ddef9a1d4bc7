package requestdata

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey struct{}

type RequestData struct {
	UserID uuid.UUID
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, ctxKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	rd, ok := ctx.Value(ctxKey{}).(*RequestData)
	if !ok {
		return nil
	}
	return rd
}
