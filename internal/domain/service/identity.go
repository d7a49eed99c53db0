package service

import "context"

// Identity 调用方身份，来自外部身份提供方签发的令牌声明
type Identity struct {
	UserID string
	Email  string
}

// IsAnonymous 是否缺少用户标识
func (i Identity) IsAnonymous() bool {
	return i.UserID == ""
}

type identityCtxKey struct{}

// WithIdentity 将身份注入 context
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, id)
}

// IdentityFromContext 读取身份，未设置时返回匿名身份
func IdentityFromContext(ctx context.Context) Identity {
	if ctx == nil {
		return Identity{}
	}
	id, _ := ctx.Value(identityCtxKey{}).(Identity)
	return id
}
