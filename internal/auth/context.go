package auth

import (
	"context"

	"github.com/edi-app/edi-intake/internal/policy"
)

type ctxKey string

const (
	principalKey  ctxKey = "principal"
	capabilityKey ctxKey = "capability"
)

func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	if ctx == nil {
		return nil, false
	}
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok && p != nil
}

func ContextWithCapability(ctx context.Context, c policy.Capability) context.Context {
	return context.WithValue(ctx, capabilityKey, c)
}

// CapabilityFromContext returns the stored capability, or the zero
// capability when none was attached.
func CapabilityFromContext(ctx context.Context) policy.Capability {
	if ctx == nil {
		return policy.Capability{}
	}
	if c, ok := ctx.Value(capabilityKey).(policy.Capability); ok {
		return c
	}
	return policy.Capability{}
}
